package payment

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusCompleted Status = "Completed"
	StatusPending   Status = "Pending"
	StatusFailed    Status = "Failed"
)

// ParseStatus accepts any casing; "" and "all" mean no filter and return "".
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return "", nil
	case "completed":
		return StatusCompleted, nil
	case "pending":
		return StatusPending, nil
	case "failed":
		return StatusFailed, nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

type Payment struct {
	ID            int       `json:"id"`
	Garage        string    `json:"garage"`
	Amount        float64   `json:"amount"`
	Date          time.Time `json:"date"`
	Method        string    `json:"method"`
	Status        Status    `json:"status"`
	TransactionID string    `json:"transactionId"`
}

type History struct {
	Payments     []Payment `json:"payments"`
	TotalRevenue float64   `json:"totalRevenue"`
}

// TotalRevenue sums completed payments only.
func TotalRevenue(payments []Payment) float64 {
	var total float64
	for _, p := range payments {
		if p.Status == StatusCompleted {
			total += p.Amount
		}
	}
	return total
}
