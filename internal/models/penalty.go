package models

import "github.com/shopspring/decimal"

// Penalty represents an owed traffic fine
type Penalty struct {
	ID          int64           `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	IsPaid      bool            `json:"is_paid"`
}

// PenaltyUpdate carries the fields to overwrite on a penalty.
// A nil field keeps its current value.
type PenaltyUpdate struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
}
