package expiry

import (
	"errors"
	"fmt"
	"html"
	"math"
	"time"

	"garageadmin/internal/garage"
)

var ErrNoSubscription = errors.New("garage has no subscription end date")

// Window is the look-ahead used by the expiring list, in days.
const Window = 30

const ReminderSubject = "Subscription Renewal Reminder"

// ReminderHTML is the single reminder body sent to garages close to expiry.
func ReminderHTML(garageName string) string {
	return fmt.Sprintf(`<h2>Hi %s,</h2>
<p>Your subscription is expiring soon. Please renew it to continue services.</p>`, html.EscapeString(garageName))
}

type Band string

const (
	BandExpired        Band = "Expired"
	BandCritical       Band = "Critical"
	BandWarning        Band = "Warning"
	BandActive         Band = "Active"
	BandNoSubscription Band = "No Subscription"
)

var Bands = []Band{BandExpired, BandCritical, BandWarning, BandActive, BandNoSubscription}

// DaysUntil returns ceil((end-now)/24h), or nil when there is no end date.
func DaysUntil(end *time.Time, now time.Time) *int {
	if end == nil {
		return nil
	}
	days := int(math.Ceil(end.Sub(now).Hours() / 24))
	return &days
}

func BandFor(days *int) Band {
	switch {
	case days == nil:
		return BandNoSubscription
	case *days < 0:
		return BandExpired
	case *days <= 7:
		return BandCritical
	case *days <= Window:
		return BandWarning
	default:
		return BandActive
	}
}

type Entry struct {
	Garage   garage.Garage `json:"garage"`
	DaysLeft *int          `json:"daysLeft"`
	Band     Band          `json:"band"`
}

type ListResponse struct {
	Garages []Entry `json:"garages"`
}

// SendRequest is the body of POST /api/send-expiry-email.
type SendRequest struct {
	To      string `json:"to" binding:"required,email"`
	Subject string `json:"subject" binding:"required"`
	HTML    string `json:"html" binding:"required"`
}

func Annotate(g garage.Garage, now time.Time) Entry {
	days := DaysUntil(g.SubscriptionEnd, now)
	return Entry{Garage: g, DaysLeft: days, Band: BandFor(days)}
}

// Count tallies garages per band. Every band is present in the result.
func Count(garages []garage.Garage, now time.Time) map[Band]int {
	counts := make(map[Band]int, len(Bands))
	for _, b := range Bands {
		counts[b] = 0
	}
	for _, g := range garages {
		counts[BandFor(DaysUntil(g.SubscriptionEnd, now))]++
	}
	return counts
}
