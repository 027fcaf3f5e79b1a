package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, Status(""), s)

	s, err = ParseStatus("COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)

	_, err = ParseStatus("refunded")
	assert.Error(t, err)
}

func TestTotalRevenue_CompletedOnly(t *testing.T) {
	assert.Equal(t, 8500.0, TotalRevenue(DemoPayments()))
	assert.Equal(t, 0.0, TotalRevenue(nil))
}

func TestMemoryLedger_List(t *testing.T) {
	l := NewMemoryLedger(DemoPayments()...)
	ctx := context.Background()

	all, err := l.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "AutoCare Plus", all[0].Garage)
	assert.Equal(t, "Pro Mechanics", all[3].Garage)

	failed, err := l.List(ctx, StatusFailed)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "TXN789123456", failed[0].TransactionID)
}

func TestMemoryLedger_Record(t *testing.T) {
	l := NewMemoryLedger(DemoPayments()...)
	ctx := context.Background()

	p, err := l.Record(ctx, Payment{Garage: "New Garage", Amount: 999, Status: StatusPending})
	require.NoError(t, err)
	assert.Equal(t, 5, p.ID)
	assert.False(t, p.Date.IsZero())

	pending, err := l.List(ctx, StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
	assert.Equal(t, "New Garage", pending[0].Garage)
}
