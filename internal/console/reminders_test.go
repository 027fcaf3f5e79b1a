package console

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"garageadmin/internal/expiry"
	"garageadmin/internal/garage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReminderAPI struct {
	mu    sync.Mutex
	sent  []expiry.SendRequest
	err   error
	block chan struct{}
}

func (f *fakeReminderAPI) SendExpiryEmail(_ context.Context, req expiry.SendRequest) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	return f.err
}

func TestReminderBoard_SentThenCleared(t *testing.T) {
	api := &fakeReminderAPI{}
	b := NewReminderBoard(api, 50*time.Millisecond)
	defer b.Close()
	g := garage.Garage{ID: uuid.New(), Name: "Pro Mechanics", Email: "pm@test"}

	require.NoError(t, b.Send(context.Background(), g))

	state, ok := b.State(g.ID)
	require.True(t, ok)
	assert.Equal(t, ReminderSent, state)
	require.Len(t, api.sent, 1)
	assert.Equal(t, "pm@test", api.sent[0].To)
	assert.Contains(t, api.sent[0].HTML, "Hi Pro Mechanics,")

	assert.Eventually(t, func() bool {
		_, ok := b.State(g.ID)
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestReminderBoard_Error(t *testing.T) {
	api := &fakeReminderAPI{err: errors.New("queue down")}
	b := NewReminderBoard(api, time.Hour)
	defer b.Close()
	id := uuid.New()

	assert.Error(t, b.Send(context.Background(), garage.Garage{ID: id, Email: "x@test"}))

	state, ok := b.State(id)
	require.True(t, ok)
	assert.Equal(t, ReminderError, state)
	assert.Len(t, api.sent, 1)
}

func TestReminderBoard_SendingWhileInFlight(t *testing.T) {
	api := &fakeReminderAPI{block: make(chan struct{})}
	b := NewReminderBoard(api, time.Hour)
	defer b.Close()
	id := uuid.New()

	done := make(chan error, 1)
	go func() { done <- b.Send(context.Background(), garage.Garage{ID: id}) }()

	assert.Eventually(t, func() bool {
		s, ok := b.State(id)
		return ok && s == ReminderSending
	}, time.Second, 5*time.Millisecond)

	close(api.block)
	require.NoError(t, <-done)
	s, _ := b.State(id)
	assert.Equal(t, ReminderSent, s)
}

func TestReminderBoard_DefaultClear(t *testing.T) {
	b := NewReminderBoard(&fakeReminderAPI{}, 0)
	assert.Equal(t, DefaultReminderClear, b.clearAfter)
}
