package payment

import (
	"strings"
	"time"
)

type Status string

const (
	StatusInitiating Status = "INITIATING"
	StatusPending    Status = "PENDING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusTimedOut   Status = "TIMED_OUT"
)

// Terminal reports whether no further transitions can occur.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusTimedOut:
		return true
	}
	return false
}

// Config bounds the polling protocol. Both caps are enforced
// independently: whichever is reached first times the session out.
type Config struct {
	PollInterval  time.Duration
	MaxAttempts   int
	MaxDuration   time.Duration
	AmountCeiling float64
}

func DefaultConfig() Config {
	return Config{
		PollInterval:  5 * time.Second,
		MaxAttempts:   60,
		MaxDuration:   300 * time.Second,
		AmountCeiling: 150000,
	}
}

type InitiateRequest struct {
	Phone   string  `json:"phone"`
	Amount  float64 `json:"amount"`
	OrderID string  `json:"orderId"`
}

type InitiateResult struct {
	CheckoutRequestID string `json:"checkoutRequestId"`
	OrderID           string `json:"orderId"`
}

// StatusResult is one poll response from the gateway.
type StatusResult struct {
	Status            string             `json:"status"`
	TransactionDetail *TransactionDetail `json:"transactionDetail,omitempty"`
}

type TransactionDetail struct {
	Description string `json:"description,omitempty"`
	Receipt     string `json:"receipt,omitempty"`
}

type outcome int

const (
	outcomePending outcome = iota
	outcomeCompleted
	outcomeFailed
	outcomeCancelled
)

// classify maps the gateway's status strings onto the poll outcomes.
// Anything unrecognized counts as still pending; only a definitive
// terminal classification stops the loop early.
func (r *StatusResult) classify() outcome {
	switch strings.ToUpper(r.Status) {
	case "COMPLETED", "SUCCESS", "PAID":
		return outcomeCompleted
	case "FAILED", "DECLINED":
		return outcomeFailed
	case "CANCELLED", "CANCELED":
		return outcomeCancelled
	}
	return outcomePending
}

func (r *StatusResult) description() string {
	if r.TransactionDetail != nil {
		return r.TransactionDetail.Description
	}
	return ""
}
