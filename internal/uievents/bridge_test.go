package uievents

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookkeeping/internal/log"
	"bookkeeping/internal/ui"
	"bookkeeping/internal/ui/uitest"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	mu         sync.Mutex
	declared   []string
	bindings   []string
	published  []published
	publishErr error
	deliveries chan amqp091.Delivery
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error) {
	return amqp091.Queue{Name: name}, nil
}

func (f *fakeChannel) QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error {
	f.bindings = append(f.bindings, key)
	return nil
}

func (f *fakeChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error) {
	return f.deliveries, nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{exchange, key, msg})
	return nil
}

func (f *fakeChannel) Close() error { return nil }

func newBridge(t *testing.T) (*Bridge, *fakeChannel) {
	t.Helper()
	ch := &fakeChannel{}
	b, err := NewBridge(ch, "bookkeeping.ui", log.Discard())
	require.NoError(t, err)
	return b, ch
}

func TestNewBridgeDeclaresDirectExchange(t *testing.T) {
	_, ch := newBridge(t)
	assert.Equal(t, []string{"bookkeeping.ui:direct"}, ch.declared)
}

func TestBridgePublishesSurfaceCalls(t *testing.T) {
	b, ch := newBridge(t)
	ctx := context.Background()

	b.ShowLoading(ctx, true)
	b.HideLoading(ctx)
	b.Toast(ctx, ui.Toast{Title: "登录过期，请重新登录", Duration: 2 * time.Second, Icon: ui.IconNone})
	b.Redirect(ctx, "pages/login/login")

	require.Len(t, ch.published, 4)
	keys := make([]string, 0, 4)
	for _, p := range ch.published {
		assert.Equal(t, "bookkeeping.ui", p.exchange)
		assert.Equal(t, "application/json", p.msg.ContentType)
		keys = append(keys, p.key)
	}
	assert.Equal(t, []string{KeyLoading, KeyLoading, KeyToast, KeyRedirect}, keys)

	e, err := EventFromJSON(ch.published[2].msg.Body)
	require.NoError(t, err)
	assert.Equal(t, "登录过期，请重新登录", e.Title)
	assert.Equal(t, int64(2000), e.DurationMs)

	e, err = EventFromJSON(ch.published[0].msg.Body)
	require.NoError(t, err)
	assert.True(t, e.Visible)
	assert.True(t, e.Mask)
}

func TestBridgePublishRespectsCancellation(t *testing.T) {
	b, ch := newBridge(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Publish(ctx, RedirectEvent("x"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ch.published)
}

func TestBridgeCircuitBreaker(t *testing.T) {
	b, ch := newBridge(t)
	ch.publishErr = errors.New("connection reset by peer")
	ctx := context.Background()

	for i := 0; i < maxFailures; i++ {
		err := b.Publish(ctx, LoadingEvent(false, false))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen)
	}
	assert.Equal(t, StateOpen, atomic.LoadInt32(&b.state))

	err := b.Publish(ctx, LoadingEvent(false, false))
	assert.ErrorIs(t, err, ErrCircuitOpen)

	// After the open timeout one trial publish goes through.
	b.mu.Lock()
	b.lastFailure = time.Now().Add(-openTimeout - time.Second)
	b.mu.Unlock()
	ch.publishErr = nil
	require.NoError(t, b.Publish(ctx, LoadingEvent(false, false)))
	assert.Equal(t, StateClosed, atomic.LoadInt32(&b.state))
	assert.Zero(t, atomic.LoadInt64(&b.failureCount))
}

func TestBridgeNonConnectionErrorsDoNotTrip(t *testing.T) {
	b, ch := newBridge(t)
	ch.publishErr = errors.New("exchange not found")

	for i := 0; i < maxFailures+1; i++ {
		assert.Error(t, b.Publish(context.Background(), RedirectEvent("x")))
	}
	assert.Equal(t, StateClosed, atomic.LoadInt32(&b.state))
}

func TestBridgeConsumeReplaysOntoSurface(t *testing.T) {
	b, ch := newBridge(t)
	ch.deliveries = make(chan amqp091.Delivery, 4)

	for _, e := range []*Event{LoadingEvent(true, true), ToastEvent(ui.Toast{Title: "hi"}), RedirectEvent("pages/login/login")} {
		body, err := e.ToJSON()
		require.NoError(t, err)
		ch.deliveries <- amqp091.Delivery{Body: body}
	}
	ch.deliveries <- amqp091.Delivery{Body: []byte(`{"kind":"ui.bogus"}`)}
	close(ch.deliveries)

	rec := &uitest.Recorder{}
	err := b.Consume(context.Background(), "ui-watch", rec)
	assert.EqualError(t, err, "message channel closed")

	assert.Equal(t, []string{KeyToast, KeyLoading, KeyRedirect}, ch.bindings)
	assert.Equal(t, []string{"show", "toast", "redirect"}, rec.Events())
	assert.Equal(t, []string{"pages/login/login"}, rec.Redirects())
}

func TestBridgeConsumeStopsOnCancel(t *testing.T) {
	b, ch := newBridge(t)
	ch.deliveries = make(chan amqp091.Delivery)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Consume(ctx, "ui-watch", ui.Nop{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"amqp closed", amqp091.ErrClosed, true},
		{"other", errors.New("invalid input"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isConnectionError(tt.err))
		})
	}
}

func TestEventFromJSON(t *testing.T) {
	_, err := EventFromJSON([]byte(`{"kind": 3}`))
	assert.Error(t, err)

	_, err = EventFromJSON([]byte(`{"kind":"ui.unknown"}`))
	assert.Error(t, err)

	e, err := EventFromJSON([]byte(`{"kind":"ui.redirect","path":"pages/index/index","timestamp":"2024-01-01T12:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, "pages/index/index", e.Path)
	assert.Equal(t, 2024, e.Timestamp.Year())
}
