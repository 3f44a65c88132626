package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	interfaces "github.com/sheikh-saqib/traffic-penalty-ledger/internal/interfaces"
)

var (
	ErrQueueFull = errors.New("event queue is full")
	ErrClosed    = errors.New("event dispatcher is closed")
)

type envelope struct {
	key   string
	event any
}

// Dispatcher queues events and hands them to the wrapped publisher on its
// own goroutine, so Publish never waits on the broker. Events are delivered
// in the order they were queued.
type Dispatcher struct {
	next    interfaces.EventPublisher
	queue   chan envelope
	timeout time.Duration
	log     logrus.FieldLogger

	mu     sync.RWMutex // guards closed against sends on a closed queue
	closed bool
	done   chan struct{}
}

// NewDispatcher starts a dispatcher holding up to size queued events. Each
// delivery to next is bounded by timeout.
func NewDispatcher(next interfaces.EventPublisher, size int, timeout time.Duration, log logrus.FieldLogger) *Dispatcher {
	if size < 1 {
		size = 1
	}
	d := &Dispatcher{
		next:    next,
		queue:   make(chan envelope, size),
		timeout: timeout,
		log:     log,
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish queues event without blocking. ctx is only checked for
// cancellation; delivery uses the dispatcher's own timeout.
func (d *Dispatcher) Publish(ctx context.Context, key string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	select {
	case d.queue <- envelope{key: key, event: event}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for env := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.next.Publish(ctx, env.key, env.event)
		cancel()
		if err != nil {
			d.log.WithError(err).WithField("key", env.key).Error("failed to deliver event")
		}
	}
}

// Close stops accepting events and waits for the queue to drain or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ interfaces.EventPublisher = (*Dispatcher)(nil)
