package models

import "github.com/shopspring/decimal"

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusPending   PaymentStatus = "Pending"
)

// Payment represents one attempt to settle a penalty.
// Status is decided when the payment is recorded and never changes.
type Payment struct {
	ID         int64           `json:"id"`
	PenaltyID  int64           `json:"penalty_id"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Status     PaymentStatus   `json:"status"`
}
