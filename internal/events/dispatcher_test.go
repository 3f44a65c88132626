package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedPublisher blocks every delivery until release is closed.
type gatedPublisher struct {
	mu      sync.Mutex
	keys    []string
	started chan string
	release chan struct{}
	err     error
}

func newGatedPublisher() *gatedPublisher {
	return &gatedPublisher{
		started: make(chan string, 16),
		release: make(chan struct{}),
	}
}

func (p *gatedPublisher) Publish(ctx context.Context, key string, _ any) error {
	p.started <- key
	select {
	case <-p.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return p.err
}

func (p *gatedPublisher) delivered() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

func waitStarted(t *testing.T, p *gatedPublisher) string {
	t.Helper()
	select {
	case key := <-p.started:
		return key
	case <-time.After(2 * time.Second):
		t.Fatal("delivery never started")
		return ""
	}
}

func nullLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

func TestPublishDoesNotWaitForDelivery(t *testing.T) {
	next := newGatedPublisher()
	d := NewDispatcher(next, 4, time.Minute, nullLogger())

	start := time.Now()
	require.NoError(t, d.Publish(context.Background(), "1", "event"))
	assert.Less(t, time.Since(start), time.Second)

	assert.Equal(t, "1", waitStarted(t, next))
	assert.Empty(t, next.delivered())

	close(next.release)
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, []string{"1"}, next.delivered())
}

func TestDeliversInQueueOrder(t *testing.T) {
	next := newGatedPublisher()
	close(next.release)
	d := NewDispatcher(next, 8, time.Second, nullLogger())

	for _, key := range []string{"1", "2", "3"} {
		require.NoError(t, d.Publish(context.Background(), key, key))
	}
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, []string{"1", "2", "3"}, next.delivered())
}

func TestPublishReportsFullQueue(t *testing.T) {
	next := newGatedPublisher()
	d := NewDispatcher(next, 1, time.Minute, nullLogger())

	require.NoError(t, d.Publish(context.Background(), "1", nil))
	waitStarted(t, next)
	require.NoError(t, d.Publish(context.Background(), "2", nil))

	err := d.Publish(context.Background(), "3", nil)
	assert.ErrorIs(t, err, ErrQueueFull)

	close(next.release)
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, []string{"1", "2"}, next.delivered())
}

func TestPublishAfterClose(t *testing.T) {
	next := newGatedPublisher()
	close(next.release)
	d := NewDispatcher(next, 1, time.Second, nullLogger())

	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))

	err := d.Publish(context.Background(), "1", nil)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPublishHonoursCancelledContext(t *testing.T) {
	next := newGatedPublisher()
	close(next.release)
	d := NewDispatcher(next, 1, time.Second, nullLogger())
	defer d.Close(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, d.Publish(ctx, "1", nil), context.Canceled)
}

func TestCloseGivesUpWhenContextEnds(t *testing.T) {
	next := newGatedPublisher()
	d := NewDispatcher(next, 1, time.Minute, nullLogger())

	require.NoError(t, d.Publish(context.Background(), "1", nil))
	waitStarted(t, next)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)

	close(next.release)
	require.NoError(t, d.Close(context.Background()))
}

func TestDeliveryFailureIsLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	next := newGatedPublisher()
	next.err = errors.New("broker down")
	close(next.release)
	d := NewDispatcher(next, 1, time.Second, logger)

	require.NoError(t, d.Publish(context.Background(), "7", nil))
	require.NoError(t, d.Close(context.Background()))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "7", entry.Data["key"])
}
