package ledger

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	interfaces "github.com/sheikh-saqib/traffic-penalty-ledger/internal/interfaces"
	"github.com/sheikh-saqib/traffic-penalty-ledger/internal/models"
	"github.com/sheikh-saqib/traffic-penalty-ledger/internal/models/events"
)

const defaultPublishTimeout = 5 * time.Second

// PenaltyLedger records penalties and the payments made against them.
// Ids for each record type come from counters owned by the ledger and are
// never reused. A PenaltyLedger is meant for a single caller; embedders that
// share one across goroutines must serialize access themselves.
type PenaltyLedger struct {
	penalties interfaces.PenaltyStore
	payments  interfaces.PaymentStore

	nextPenaltyID int64
	nextPaymentID int64

	publisher      interfaces.EventPublisher
	publishTimeout time.Duration
	log            logrus.FieldLogger
	now            func() time.Time
}

type Option func(*PenaltyLedger)

// WithPublisher emits a PaymentCompleted event whenever a payment settles a
// penalty. Publish runs on the caller's goroutine; front slow brokers with
// events.Dispatcher.
func WithPublisher(p interfaces.EventPublisher, timeout time.Duration) Option {
	return func(l *PenaltyLedger) {
		l.publisher = p
		if timeout > 0 {
			l.publishTimeout = timeout
		}
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(l *PenaltyLedger) {
		if log != nil {
			l.log = log
		}
	}
}

// NewPenaltyLedger builds a ledger over the given stores.
func NewPenaltyLedger(penalties interfaces.PenaltyStore, payments interfaces.PaymentStore, opts ...Option) *PenaltyLedger {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	l := &PenaltyLedger{
		penalties:      penalties,
		payments:       payments,
		nextPenaltyID:  1,
		nextPaymentID:  1,
		publishTimeout: defaultPublishTimeout,
		log:            discard,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *PenaltyLedger) CreatePenalty(amount decimal.Decimal, description string) models.Penalty {
	penalty := models.Penalty{
		ID:          l.nextPenaltyID,
		Amount:      amount,
		Description: description,
		IsPaid:      false,
	}
	l.penalties.Save(penalty)
	l.nextPenaltyID++

	l.log.WithFields(logrus.Fields{
		"penalty_id": penalty.ID,
		"amount":     penalty.Amount.String(),
	}).Info("penalty created")
	return penalty
}

// ReadPenalty returns false when no penalty has the given id.
func (l *PenaltyLedger) ReadPenalty(id int64) (models.Penalty, bool) {
	return l.penalties.Get(id)
}

// UpdatePenalty overwrites only the fields set in upd. IsPaid is never touched.
func (l *PenaltyLedger) UpdatePenalty(id int64, upd models.PenaltyUpdate) (models.Penalty, bool) {
	penalty, exists := l.penalties.Get(id)
	if !exists {
		l.log.WithField("penalty_id", id).Debug("update of unknown penalty")
		return models.Penalty{}, false
	}

	if upd.Amount != nil {
		penalty.Amount = *upd.Amount
	}
	if upd.Description != nil {
		penalty.Description = *upd.Description
	}
	l.penalties.Save(penalty)

	l.log.WithField("penalty_id", id).Info("penalty updated")
	return penalty, true
}

// DeletePenalty removes the penalty and returns it. Payments made against it
// are kept and stay visible through TrackPayments and GetAllPayments.
func (l *PenaltyLedger) DeletePenalty(id int64) (models.Penalty, bool) {
	penalty, exists := l.penalties.Delete(id)
	if exists {
		l.log.WithField("penalty_id", id).Info("penalty deleted")
	}
	return penalty, exists
}

// ProcessPayment records a payment against an unpaid penalty.
//
// A payment of at least the full penalty amount is Completed and marks the
// penalty paid; anything less is Pending. Each call is judged on its own,
// earlier pending payments do not count toward the amount. The call is
// rejected (false) when the penalty does not exist or is already paid.
func (l *PenaltyLedger) ProcessPayment(penaltyID int64, amountPaid decimal.Decimal) (models.Payment, bool) {
	penalty, exists := l.penalties.Get(penaltyID)
	if !exists || penalty.IsPaid {
		l.log.WithFields(logrus.Fields{
			"penalty_id": penaltyID,
			"found":      exists,
		}).Debug("payment rejected")
		return models.Payment{}, false
	}

	status := models.PaymentStatusPending
	if amountPaid.GreaterThanOrEqual(penalty.Amount) {
		status = models.PaymentStatusCompleted
	}

	payment := models.Payment{
		ID:         l.nextPaymentID,
		PenaltyID:  penaltyID,
		AmountPaid: amountPaid,
		Status:     status,
	}
	l.payments.Save(payment)

	if status == models.PaymentStatusCompleted {
		penalty.IsPaid = true
		l.penalties.Save(penalty)
	}
	l.nextPaymentID++

	l.log.WithFields(logrus.Fields{
		"penalty_id": penaltyID,
		"payment_id": payment.ID,
		"status":     payment.Status,
	}).Info("payment processed")

	if status == models.PaymentStatusCompleted {
		l.publishCompleted(penalty, payment)
	}
	return payment, true
}

// TrackPayments lists payments made against penaltyID in the order they were
// recorded. Unknown penalties and penalties without payments both yield an
// empty slice.
func (l *PenaltyLedger) TrackPayments(penaltyID int64) []models.Payment {
	return l.payments.ListByPenalty(penaltyID)
}

func (l *PenaltyLedger) GetAllPenalties() []models.Penalty {
	return l.penalties.List()
}

func (l *PenaltyLedger) GetAllPayments() []models.Payment {
	return l.payments.List()
}

// publishCompleted is best effort: a failed publish is logged and the
// payment stands.
func (l *PenaltyLedger) publishCompleted(penalty models.Penalty, payment models.Payment) {
	if l.publisher == nil {
		return
	}

	event := events.PaymentCompleted{
		EventID:       uuid.New(),
		PenaltyID:     penalty.ID,
		PaymentID:     payment.ID,
		AmountPaid:    payment.AmountPaid,
		PenaltyAmount: penalty.Amount,
		OccurredAt:    l.now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.publishTimeout)
	defer cancel()

	if err := l.publisher.Publish(ctx, strconv.FormatInt(penalty.ID, 10), event); err != nil {
		l.log.WithError(err).WithFields(logrus.Fields{
			"penalty_id": penalty.ID,
			"payment_id": payment.ID,
		}).Error("failed to publish payment completed event")
	}
}
