package garage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrGarageNotFound    = errors.New("garage not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrReasonRequired    = errors.New("rejection reason is required")
)

// Status is the single source of truth for a garage's lifecycle stage.
type Status string

const (
	StatusUnsubscribed    Status = "unsubscribed"
	StatusPendingApproval Status = "pending_approval"
	StatusActive          Status = "active"
)

// Classify maps the legacy (isSubscribed, approved) pair onto a Status.
// approved without a subscription has no meaning and is treated as unsubscribed.
func Classify(isSubscribed, approved bool) Status {
	switch {
	case isSubscribed && approved:
		return StatusActive
	case isSubscribed:
		return StatusPendingApproval
	default:
		return StatusUnsubscribed
	}
}

func (s Status) Valid() bool {
	switch s {
	case StatusUnsubscribed, StatusPendingApproval, StatusActive:
		return true
	}
	return false
}

func (s Status) IsSubscribed() bool {
	return s == StatusPendingApproval || s == StatusActive
}

func (s Status) Approved() bool {
	return s == StatusActive
}

func (s Status) Label() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusPendingApproval:
		return "Pending Approval"
	default:
		return "Not Subscribed"
	}
}

type Event string

const (
	EventSubscribe Event = "subscribe"
	EventApprove   Event = "approve"
	EventReject    Event = "reject"
	EventRenew     Event = "renew"
)

var transitions = map[Status]map[Event]Status{
	StatusUnsubscribed: {
		EventSubscribe: StatusPendingApproval,
	},
	StatusPendingApproval: {
		EventApprove: StatusActive,
		EventReject:  StatusUnsubscribed,
	},
	StatusActive: {
		EventRenew: StatusActive,
	},
}

// Next returns the status reached from s by ev, or ErrInvalidTransition.
func (s Status) Next(ev Event) (Status, error) {
	if next, ok := transitions[s][ev]; ok {
		return next, nil
	}
	return s, fmt.Errorf("%w: cannot %s a garage that is %s", ErrInvalidTransition, ev, s)
}

type PaymentDetails struct {
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Status    string  `json:"status"`
	PaymentID string  `json:"paymentId"`
}

type Garage struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone"`
	Address           string          `json:"address"`
	Status            Status          `json:"status"`
	SubscriptionType  string          `json:"subscriptionType,omitempty"`
	SubscriptionStart *time.Time      `json:"subscriptionStart,omitempty"`
	SubscriptionEnd   *time.Time      `json:"subscriptionEnd,omitempty"`
	PaymentDetails    *PaymentDetails `json:"paymentDetails,omitempty"`
	RejectionReason   string          `json:"rejectionReason,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// MarshalJSON adds the derived isSubscribed/approved flags to the wire form.
func (g Garage) MarshalJSON() ([]byte, error) {
	type alias Garage
	return json.Marshal(struct {
		alias
		IsSubscribed bool `json:"isSubscribed"`
		Approved     bool `json:"approved"`
	}{
		alias:        alias(g),
		IsSubscribed: g.Status.IsSubscribed(),
		Approved:     g.Status.Approved(),
	})
}

// UnmarshalJSON accepts payloads that carry only the legacy flags and derives Status from them.
func (g *Garage) UnmarshalJSON(data []byte) error {
	type alias Garage
	aux := struct {
		*alias
		IsSubscribed bool `json:"isSubscribed"`
		Approved     bool `json:"approved"`
	}{alias: (*alias)(g)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if g.Status == "" {
		g.Status = Classify(aux.IsSubscribed, aux.Approved)
	}
	if !g.Status.Valid() {
		return fmt.Errorf("unknown garage status %q", g.Status)
	}
	return nil
}

type Subscription struct {
	Type    string
	Start   time.Time
	End     time.Time
	Payment *PaymentDetails
}

func (g *Garage) apply(ev Event) error {
	next, err := g.Status.Next(ev)
	if err != nil {
		return err
	}
	g.Status = next
	return nil
}

func (g *Garage) Subscribe(sub Subscription) error {
	if err := g.apply(EventSubscribe); err != nil {
		return err
	}
	start, end := sub.Start, sub.End
	g.SubscriptionType = sub.Type
	g.SubscriptionStart = &start
	g.SubscriptionEnd = &end
	g.PaymentDetails = sub.Payment
	g.RejectionReason = ""
	return nil
}

func (g *Garage) Approve() error {
	return g.apply(EventApprove)
}

// Reject sends a pending garage back to unsubscribed and clears its subscription
// window and payment details.
func (g *Garage) Reject(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	if err := g.apply(EventReject); err != nil {
		return err
	}
	g.RejectionReason = reason
	g.SubscriptionType = ""
	g.SubscriptionStart = nil
	g.SubscriptionEnd = nil
	g.PaymentDetails = nil
	return nil
}

func (g *Garage) Renew(end time.Time) error {
	if err := g.apply(EventRenew); err != nil {
		return err
	}
	if g.SubscriptionEnd != nil && !end.After(*g.SubscriptionEnd) {
		return fmt.Errorf("%w: new end %s is not after current end", ErrInvalidTransition, end.Format(time.DateOnly))
	}
	g.SubscriptionEnd = &end
	return nil
}

type Filter string

const (
	FilterAll      Filter = "all"
	FilterActive   Filter = "active"
	FilterPending  Filter = "pending"
	FilterInactive Filter = "inactive"
)

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive, FilterPending, FilterInactive:
		return f, nil
	}
	return "", fmt.Errorf("unknown filter %q (want all, active, pending or inactive)", s)
}

func (f Filter) Match(g Garage) bool {
	switch f {
	case FilterActive:
		return g.Status == StatusActive
	case FilterPending:
		return g.Status == StatusPendingApproval
	case FilterInactive:
		return g.Status == StatusUnsubscribed
	default:
		return true
	}
}

func FilterGarages(garages []Garage, f Filter) []Garage {
	out := make([]Garage, 0, len(garages))
	for _, g := range garages {
		if f.Match(g) {
			out = append(out, g)
		}
	}
	return out
}

type Summary struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Pending  int `json:"pending"`
	Inactive int `json:"inactive"`
}

func Summarize(garages []Garage) Summary {
	s := Summary{Total: len(garages)}
	for _, g := range garages {
		switch g.Status {
		case StatusActive:
			s.Active++
		case StatusPendingApproval:
			s.Pending++
		default:
			s.Inactive++
		}
	}
	return s
}

type ListResponse struct {
	Garages []Garage `json:"garages"`
}

type SignUpRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type SubscribeRequest struct {
	PlanID        uuid.UUID `json:"planId" binding:"required"`
	PaymentMethod string    `json:"paymentMethod" binding:"required"`
	PaymentID     string    `json:"paymentId"`
}

type ApproveRequest struct {
	Status string `json:"status"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}
