package memory

import (
	interfaces "github.com/sheikh-saqib/traffic-penalty-ledger/internal/interfaces"
	"github.com/sheikh-saqib/traffic-penalty-ledger/internal/models"
)

// PaymentStore is an append-only in-memory implementation of interfaces.PaymentStore.
type PaymentStore struct {
	payments []models.Payment // payments in insertion order
}

func NewPaymentStore() *PaymentStore {
	return &PaymentStore{
		payments: make([]models.Payment, 0),
	}
}

func (m *PaymentStore) Save(payment models.Payment) {
	m.payments = append(m.payments, payment)
}

// ListByPenalty returns the payments recorded against penaltyID, oldest first.
// An unknown penalty yields an empty slice.
func (m *PaymentStore) ListByPenalty(penaltyID int64) []models.Payment {
	result := make([]models.Payment, 0)
	for _, p := range m.payments {
		if p.PenaltyID == penaltyID {
			result = append(result, p)
		}
	}
	return result
}

// List returns a copy so external code can't modify internal state
func (m *PaymentStore) List() []models.Payment {
	copied := make([]models.Payment, len(m.payments))
	copy(copied, m.payments)
	return copied
}

var _ interfaces.PaymentStore = (*PaymentStore)(nil)
