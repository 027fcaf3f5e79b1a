package console

import (
	"context"
	"errors"
	"strings"
	"sync"

	"garageadmin/internal/garage"
	"garageadmin/internal/logger"

	"github.com/google/uuid"
)

var (
	ErrReasonRequired = errors.New("a rejection reason is required")
	ErrInFlight       = errors.New("a decision for this garage is already in flight")
)

type ReviewAPI interface {
	ListPending(ctx context.Context) ([]garage.Garage, error)
	Approve(ctx context.Context, id uuid.UUID) error
	Reject(ctx context.Context, id uuid.UUID, reason string) error
}

// ReviewQueue mirrors the server's pending list. A successful decision removes
// the garage locally without re-fetching; a failed one leaves the list alone.
type ReviewQueue struct {
	api ReviewAPI

	mu       sync.Mutex
	pending  []garage.Garage
	inFlight map[uuid.UUID]struct{}
}

func NewReviewQueue(api ReviewAPI) *ReviewQueue {
	return &ReviewQueue{
		api:      api,
		inFlight: make(map[uuid.UUID]struct{}),
	}
}

// Refresh replaces the local list with the server's. On error the list is untouched.
func (q *ReviewQueue) Refresh(ctx context.Context) error {
	garages, err := q.api.ListPending(ctx)
	if err != nil {
		logger.Error("failed to fetch pending garages", "error", err)
		return err
	}

	q.mu.Lock()
	q.pending = garages
	q.mu.Unlock()
	return nil
}

// Pending returns a snapshot of the local list.
func (q *ReviewQueue) Pending() []garage.Garage {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]garage.Garage, len(q.pending))
	copy(out, q.pending)
	return out
}

func (q *ReviewQueue) Approve(ctx context.Context, id uuid.UUID) error {
	return q.decide(id, "approve", func() error {
		return q.api.Approve(ctx, id)
	})
}

func (q *ReviewQueue) Reject(ctx context.Context, id uuid.UUID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	return q.decide(id, "reject", func() error {
		return q.api.Reject(ctx, id, reason)
	})
}

func (q *ReviewQueue) decide(id uuid.UUID, action string, call func() error) error {
	q.mu.Lock()
	if _, busy := q.inFlight[id]; busy {
		q.mu.Unlock()
		return ErrInFlight
	}
	q.inFlight[id] = struct{}{}
	q.mu.Unlock()

	err := call()

	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.inFlight, id)

	if err != nil {
		logger.Error("garage review failed", "action", action, "garage_id", id.String(), "error", err)
		return err
	}

	for i, g := range q.pending {
		if g.ID == id {
			q.pending = append(q.pending[:i:i], q.pending[i+1:]...)
			break
		}
	}
	return nil
}
