package payment

import (
	"context"
	"sort"
	"sync"
	"time"
)

type Ledger interface {
	List(ctx context.Context, status Status) ([]Payment, error)
	Record(ctx context.Context, p Payment) (Payment, error)
}

// memoryLedger keeps payment history in process. There is no payments table yet.
type memoryLedger struct {
	mu       sync.RWMutex
	payments []Payment
	nextID   int
}

func NewMemoryLedger(seed ...Payment) Ledger {
	l := &memoryLedger{nextID: 1}
	for _, p := range seed {
		l.payments = append(l.payments, p)
		if p.ID >= l.nextID {
			l.nextID = p.ID + 1
		}
	}
	return l
}

// List returns payments newest first, optionally filtered by status.
func (l *memoryLedger) List(_ context.Context, status Status) ([]Payment, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Payment, 0, len(l.payments))
	for _, p := range l.payments {
		if status == "" || p.Status == status {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (l *memoryLedger) Record(_ context.Context, p Payment) (Payment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p.ID = l.nextID
	l.nextID++
	if p.Date.IsZero() {
		p.Date = time.Now()
	}
	l.payments = append(l.payments, p)
	return p, nil
}

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

// DemoPayments is the history shown until a billing provider is connected.
func DemoPayments() []Payment {
	return []Payment{
		{ID: 1, Garage: "AutoCare Plus", Amount: 5000, Date: day("2024-06-01"), Method: "UPI", Status: StatusCompleted, TransactionID: "TXN123456789"},
		{ID: 2, Garage: "Quick Fix Motors", Amount: 3500, Date: day("2024-05-28"), Method: "Credit Card", Status: StatusCompleted, TransactionID: "TXN987654321"},
		{ID: 3, Garage: "Elite Auto Service", Amount: 7500, Date: day("2024-05-25"), Method: "Bank Transfer", Status: StatusPending, TransactionID: "TXN456789123"},
		{ID: 4, Garage: "Pro Mechanics", Amount: 4200, Date: day("2024-05-20"), Method: "UPI", Status: StatusFailed, TransactionID: "TXN789123456"},
	}
}
