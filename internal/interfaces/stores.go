package interfaces

import "github.com/sheikh-saqib/traffic-penalty-ledger/internal/models"

// PenaltyStore keeps penalties in insertion order.
type PenaltyStore interface {
	Save(penalty models.Penalty)
	Get(id int64) (models.Penalty, bool)
	Delete(id int64) (models.Penalty, bool)
	List() []models.Penalty
}

// PaymentStore keeps payments in insertion order. Payments are never removed.
type PaymentStore interface {
	Save(payment models.Payment)
	ListByPenalty(penaltyID int64) []models.Payment
	List() []models.Payment
}
