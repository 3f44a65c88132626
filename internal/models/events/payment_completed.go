package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentCompleted struct {
	EventID       uuid.UUID       `json:"event_id"`
	PenaltyID     int64           `json:"penalty_id"`
	PaymentID     int64           `json:"payment_id"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	PenaltyAmount decimal.Decimal `json:"penalty_amount"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
