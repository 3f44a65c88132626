package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/sheikh-saqib/traffic-penalty-ledger/internal/ledger"
	"github.com/sheikh-saqib/traffic-penalty-ledger/internal/models"
)

// Handler exposes a PenaltyLedger over HTTP. The ledger is single-caller,
// so every request holds mu for the duration of its ledger calls.
type Handler struct {
	mu     sync.Mutex
	ledger *ledger.PenaltyLedger
	log    logrus.FieldLogger
}

func NewHandler(l *ledger.PenaltyLedger, log logrus.FieldLogger) *Handler {
	return &Handler{ledger: l, log: log}
}

// Router registers all routes on a new mux.Router.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	r.HandleFunc("/penalties", h.CreatePenalty).Methods(http.MethodPost)
	r.HandleFunc("/penalties", h.ListPenalties).Methods(http.MethodGet)
	r.HandleFunc("/penalties/{id:[0-9]+}", h.ReadPenalty).Methods(http.MethodGet)
	r.HandleFunc("/penalties/{id:[0-9]+}", h.UpdatePenalty).Methods(http.MethodPatch)
	r.HandleFunc("/penalties/{id:[0-9]+}", h.DeletePenalty).Methods(http.MethodDelete)
	r.HandleFunc("/penalties/{id:[0-9]+}/payments", h.ProcessPayment).Methods(http.MethodPost)
	r.HandleFunc("/penalties/{id:[0-9]+}/payments", h.TrackPayments).Methods(http.MethodGet)

	r.HandleFunc("/payments", h.ListPayments).Methods(http.MethodGet)
	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createPenaltyRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (h *Handler) CreatePenalty(w http.ResponseWriter, r *http.Request) {
	var req createPenaltyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	penalty := h.ledger.CreatePenalty(req.Amount, req.Description)
	h.mu.Unlock()

	h.writeJSON(w, http.StatusCreated, penalty)
}

func (h *Handler) ListPenalties(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	penalties := h.ledger.GetAllPenalties()
	h.mu.Unlock()

	h.writeJSON(w, http.StatusOK, penalties)
}

func (h *Handler) ReadPenalty(w http.ResponseWriter, r *http.Request) {
	id, ok := penaltyID(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	penalty, found := h.ledger.ReadPenalty(id)
	h.mu.Unlock()

	if !found {
		http.Error(w, "penalty not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, penalty)
}

func (h *Handler) UpdatePenalty(w http.ResponseWriter, r *http.Request) {
	id, ok := penaltyID(w, r)
	if !ok {
		return
	}

	var upd models.PenaltyUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	penalty, found := h.ledger.UpdatePenalty(id, upd)
	h.mu.Unlock()

	if !found {
		http.Error(w, "penalty not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, penalty)
}

func (h *Handler) DeletePenalty(w http.ResponseWriter, r *http.Request) {
	id, ok := penaltyID(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	penalty, found := h.ledger.DeletePenalty(id)
	h.mu.Unlock()

	if !found {
		http.Error(w, "penalty not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, penalty)
}

type paymentRequest struct {
	AmountPaid decimal.Decimal `json:"amount_paid"`
}

func (h *Handler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := penaltyID(w, r)
	if !ok {
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// The ledger reports not-found and already-paid the same way; look first
	// so the response can tell them apart.
	penalty, found := h.ledger.ReadPenalty(id)
	if !found {
		http.Error(w, "penalty not found", http.StatusNotFound)
		return
	}
	if penalty.IsPaid {
		http.Error(w, "penalty already paid", http.StatusConflict)
		return
	}

	payment, accepted := h.ledger.ProcessPayment(id, req.AmountPaid)
	if !accepted {
		// unreachable while mu is held: the penalty was just read as unpaid
		h.log.WithField("penalty_id", id).Error("ledger rejected payment for an unpaid penalty")
		http.Error(w, "payment rejected", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusCreated, payment)
}

func (h *Handler) TrackPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := penaltyID(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	payments := h.ledger.TrackPayments(id)
	h.mu.Unlock()

	h.writeJSON(w, http.StatusOK, payments)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	payments := h.ledger.GetAllPayments()
	h.mu.Unlock()

	h.writeJSON(w, http.StatusOK, payments)
}

func penaltyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid penalty id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WithError(err).Error("failed to encode response")
	}
}
