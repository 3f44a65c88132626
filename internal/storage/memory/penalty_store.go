package memory

import (
	interfaces "github.com/sheikh-saqib/traffic-penalty-ledger/internal/interfaces"
	"github.com/sheikh-saqib/traffic-penalty-ledger/internal/models"
)

// PenaltyStore is an in-memory implementation of interfaces.PenaltyStore.
// It is not safe for concurrent use; callers serialize access.
type PenaltyStore struct {
	penalties map[int64]models.Penalty // penalties by id
	order     []int64                  // ids in insertion order
}

// NewPenaltyStore creates and returns an empty PenaltyStore
func NewPenaltyStore() *PenaltyStore {
	return &PenaltyStore{
		penalties: make(map[int64]models.Penalty),
		order:     make([]int64, 0),
	}
}

// Save inserts a penalty or overwrites the existing one with the same id.
// Overwriting keeps the original insertion position.
func (m *PenaltyStore) Save(penalty models.Penalty) {
	if _, exists := m.penalties[penalty.ID]; !exists {
		m.order = append(m.order, penalty.ID)
	}
	m.penalties[penalty.ID] = penalty
}

func (m *PenaltyStore) Get(id int64) (models.Penalty, bool) {
	penalty, exists := m.penalties[id]
	return penalty, exists
}

// Delete removes the penalty and returns what was stored.
func (m *PenaltyStore) Delete(id int64) (models.Penalty, bool) {
	penalty, exists := m.penalties[id]
	if !exists {
		return models.Penalty{}, false
	}

	delete(m.penalties, id)
	for i, storedID := range m.order {
		if storedID == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return penalty, true
}

// List returns a copy of all penalties in insertion order.
func (m *PenaltyStore) List() []models.Penalty {
	result := make([]models.Penalty, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.penalties[id])
	}
	return result
}

// Compile-time check: ensure PenaltyStore implements the interface
var _ interfaces.PenaltyStore = (*PenaltyStore)(nil)
