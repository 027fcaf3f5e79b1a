package console

import (
	"context"
	"sync"
	"time"

	"garageadmin/internal/expiry"
	"garageadmin/internal/garage"
	"garageadmin/internal/logger"

	"github.com/google/uuid"
)

type ReminderState string

const (
	ReminderSending ReminderState = "sending"
	ReminderSent    ReminderState = "sent"
	ReminderError   ReminderState = "error"
)

const DefaultReminderClear = 3 * time.Second

type ReminderAPI interface {
	SendExpiryEmail(ctx context.Context, req expiry.SendRequest) error
}

// ReminderBoard tracks one send status per garage. Final states clear
// themselves after clearAfter. Failed sends are not retried.
type ReminderBoard struct {
	api        ReminderAPI
	clearAfter time.Duration

	mu     sync.Mutex
	states map[uuid.UUID]ReminderState
	timers map[uuid.UUID]*time.Timer
}

func NewReminderBoard(api ReminderAPI, clearAfter time.Duration) *ReminderBoard {
	if clearAfter <= 0 {
		clearAfter = DefaultReminderClear
	}
	return &ReminderBoard{
		api:        api,
		clearAfter: clearAfter,
		states:     make(map[uuid.UUID]ReminderState),
		timers:     make(map[uuid.UUID]*time.Timer),
	}
}

func (b *ReminderBoard) Send(ctx context.Context, g garage.Garage) error {
	b.set(g.ID, ReminderSending)

	err := b.api.SendExpiryEmail(ctx, expiry.SendRequest{
		To:      g.Email,
		Subject: expiry.ReminderSubject,
		HTML:    expiry.ReminderHTML(g.Name),
	})
	if err != nil {
		logger.Error("reminder email failed", "garage_id", g.ID.String(), "error", err)
		b.finish(g.ID, ReminderError)
		return err
	}

	b.finish(g.ID, ReminderSent)
	return nil
}

// State reports the current status; false means idle.
func (b *ReminderBoard) State(id uuid.UUID) (ReminderState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.states[id]
	return s, ok
}

// Close stops pending clear timers.
func (b *ReminderBoard) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, t := range b.timers {
		t.Stop()
		delete(b.timers, id)
	}
}

func (b *ReminderBoard) set(id uuid.UUID, s ReminderState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.timers[id]; ok {
		t.Stop()
		delete(b.timers, id)
	}
	b.states[id] = s
}

func (b *ReminderBoard) finish(id uuid.UUID, s ReminderState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.states[id] = s

	var t *time.Timer
	t = time.AfterFunc(b.clearAfter, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		// a newer send owns the slot
		if b.timers[id] != t {
			return
		}
		delete(b.timers, id)
		delete(b.states, id)
	})
	b.timers[id] = t
}
