package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var ErrPlanNotFound = errors.New("plan not found")

type Plan struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	Name             string         `db:"name" json:"name"`
	Price            string         `db:"price" json:"price"`
	Amount           float64        `db:"amount" json:"amount"`
	SubscriptionType string         `db:"subscription_type" json:"subscriptionType"`
	DurationInMonths int            `db:"duration_in_months" json:"durationInMonths"`
	Features         pq.StringArray `db:"features" json:"features"`
	Popular          bool           `db:"popular" json:"popular"`
	CreatedAt        time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updatedAt"`
}

// Loose holds a form value that may arrive as a JSON number or a JSON string.
type Loose string

func (l *Loose) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Loose(s)
		return nil
	}
	*l = Loose(data)
	return nil
}

// Draft is an editable, uncoerced copy of a plan. Numeric fields stay text until Plan() is called.
type Draft struct {
	Name             string   `json:"name" binding:"required"`
	Price            string   `json:"price"`
	Amount           Loose    `json:"amount"`
	SubscriptionType string   `json:"subscriptionType"`
	DurationInMonths Loose    `json:"durationInMonths"`
	Features         []string `json:"features"`
	Popular          bool     `json:"popular"`
}

func DraftFrom(p Plan) Draft {
	return Draft{
		Name:             p.Name,
		Price:            p.Price,
		Amount:           Loose(strconv.FormatFloat(p.Amount, 'f', -1, 64)),
		SubscriptionType: p.SubscriptionType,
		DurationInMonths: Loose(strconv.Itoa(p.DurationInMonths)),
		Features:         append([]string(nil), p.Features...),
		Popular:          p.Popular,
	}
}

// Plan coerces the draft into a storable record. Invalid numbers never fail:
// amount falls back to 0 and duration to 1.
func (d Draft) Plan(id uuid.UUID) Plan {
	features := make(pq.StringArray, 0, len(d.Features))
	for _, f := range d.Features {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}

	return Plan{
		ID:               id,
		Name:             strings.TrimSpace(d.Name),
		Price:            d.Price,
		Amount:           CoerceAmount(string(d.Amount)),
		SubscriptionType: d.SubscriptionType,
		DurationInMonths: CoerceDuration(string(d.DurationInMonths)),
		Features:         features,
		Popular:          d.Popular,
	}
}

// Column limits of plans.amount NUMERIC(12, 2) and plans.duration_in_months INTEGER.
const (
	MaxAmount         = 9_999_999_999.99
	MaxDurationMonths = math.MaxInt32
)

var (
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
)

// CoerceAmount reads the leading decimal number of s rounded to cents, returning 0
// when there is none or it does not fit in MaxAmount.
func CoerceAmount(s string) float64 {
	m := floatPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	f = math.Round(f*100) / 100
	if math.IsInf(f, 0) || math.IsNaN(f) || math.Abs(f) > MaxAmount {
		return 0
	}
	return f
}

// CoerceDuration reads the leading integer of s. Missing, zero, negative or
// out-of-range values become 1.
func CoerceDuration(s string) int {
	m := intPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 1
	}
	n, err := strconv.Atoi(m)
	if err != nil || n < 1 || n > MaxDurationMonths {
		return 1
	}
	return n
}
