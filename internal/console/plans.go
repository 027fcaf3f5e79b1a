package console

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"garageadmin/internal/plan"

	"github.com/google/uuid"
)

var (
	ErrNoDraft      = errors.New("no plan is being edited")
	ErrNotConfirmed = errors.New("deletion not confirmed")
)

type PlanAPI interface {
	UpdatePlan(ctx context.Context, id uuid.UUID, d plan.Draft) (*plan.Plan, error)
	DeletePlan(ctx context.Context, id uuid.UUID) error
}

// PlanEditor keeps a dirty copy of one plan. Setters only touch the copy; the
// server sees nothing until Save.
type PlanEditor struct {
	api PlanAPI

	mu    sync.Mutex
	id    uuid.UUID
	draft *plan.Draft
}

func NewPlanEditor(api PlanAPI) *PlanEditor {
	return &PlanEditor{api: api}
}

func (e *PlanEditor) Begin(p plan.Plan) {
	d := plan.DraftFrom(p)

	e.mu.Lock()
	e.id = p.ID
	e.draft = &d
	e.mu.Unlock()
}

func (e *PlanEditor) Editing() (uuid.UUID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.id, e.draft != nil
}

// Draft returns a copy of the current draft.
func (e *PlanEditor) Draft() (plan.Draft, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft == nil {
		return plan.Draft{}, false
	}
	d := *e.draft
	d.Features = append([]string(nil), e.draft.Features...)
	return d, true
}

func (e *PlanEditor) edit(fn func(d *plan.Draft)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft == nil {
		return ErrNoDraft
	}
	fn(e.draft)
	return nil
}

func (e *PlanEditor) SetName(name string) error {
	return e.edit(func(d *plan.Draft) { d.Name = name })
}

func (e *PlanEditor) SetPrice(price string) error {
	return e.edit(func(d *plan.Draft) { d.Price = price })
}

// SetAmount stores raw input; it is coerced on save.
func (e *PlanEditor) SetAmount(raw string) error {
	return e.edit(func(d *plan.Draft) { d.Amount = plan.Loose(raw) })
}

func (e *PlanEditor) SetDuration(raw string) error {
	return e.edit(func(d *plan.Draft) { d.DurationInMonths = plan.Loose(raw) })
}

func (e *PlanEditor) SetSubscriptionType(t string) error {
	return e.edit(func(d *plan.Draft) { d.SubscriptionType = t })
}

func (e *PlanEditor) SetFeatures(features []string) error {
	return e.edit(func(d *plan.Draft) { d.Features = append([]string(nil), features...) })
}

func (e *PlanEditor) SetPopular(popular bool) error {
	return e.edit(func(d *plan.Draft) { d.Popular = popular })
}

// Save PUTs the whole draft. On success the draft is dropped; on failure it is kept.
func (e *PlanEditor) Save(ctx context.Context) (*plan.Plan, error) {
	e.mu.Lock()
	if e.draft == nil {
		e.mu.Unlock()
		return nil, ErrNoDraft
	}
	id, d := e.id, *e.draft
	e.mu.Unlock()

	// coerce the same way the server does so the response matches the draft
	d.Amount = plan.Loose(strconv.FormatFloat(plan.CoerceAmount(string(d.Amount)), 'f', -1, 64))
	d.DurationInMonths = plan.Loose(strconv.Itoa(plan.CoerceDuration(string(d.DurationInMonths))))

	saved, err := e.api.UpdatePlan(ctx, id, d)
	if err != nil {
		return nil, err
	}

	e.Discard()
	return saved, nil
}

func (e *PlanEditor) Discard() {
	e.mu.Lock()
	e.id = uuid.Nil
	e.draft = nil
	e.mu.Unlock()
}

// Delete removes a plan once confirm returns true.
func (e *PlanEditor) Delete(ctx context.Context, id uuid.UUID, confirm func() bool) error {
	if confirm == nil || !confirm() {
		return ErrNotConfirmed
	}
	if err := e.api.DeletePlan(ctx, id); err != nil {
		return err
	}

	e.mu.Lock()
	if e.id == id {
		e.id = uuid.Nil
		e.draft = nil
	}
	e.mu.Unlock()
	return nil
}
