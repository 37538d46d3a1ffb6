// Package uievents carries UI side effects over AMQP so a front end running
// in another process can render what the data-access layer asks for.
package uievents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"bookkeeping/internal/log"
	"bookkeeping/internal/ui"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	publishTimeout = 5 * time.Second
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

// Channel is the subset of *amqp091.Channel the bridge uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Bridge publishes UI events to a direct exchange and implements ui.Surface,
// so it can stand anywhere a surface is expected. Publishing is fire and
// forget from the surface's point of view: failures are logged, and after
// repeated connection failures the breaker opens and events are dropped.
type Bridge struct {
	conn     io.Closer
	channel  Channel
	exchange string
	logger   *log.Logger

	state        int32
	failureCount int64
	mu           sync.Mutex
	lastFailure  time.Time
}

var _ ui.Surface = (*Bridge)(nil)

// Dial connects to the broker and declares the exchange.
func Dial(url, exchange string, logger *log.Logger) (*Bridge, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	b, err := NewBridge(channel, exchange, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	b.conn = conn
	return b, nil
}

// NewBridge wraps an open channel.
func NewBridge(channel Channel, exchange string, logger *log.Logger) (*Bridge, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	b := &Bridge{
		channel:  channel,
		exchange: exchange,
		logger:   logger.WithComponent(log.ComponentAMQP),
	}
	err := channel.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return b, nil
}

// Publish sends one event under its kind as routing key.
func (b *Bridge) Publish(ctx context.Context, e *Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.isCircuitOpen() {
		return fmt.Errorf("publish %s: %w", e.Kind, ErrCircuitOpen)
	}

	body, err := e.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = b.channel.PublishWithContext(
		ctx,
		b.exchange, // exchange
		e.Kind,     // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   e.Timestamp,
			Body:        body,
		},
	)
	if err != nil {
		if isConnectionError(err) {
			b.recordFailure()
		}
		return fmt.Errorf("publish message: %w", err)
	}
	b.recordSuccess()

	b.logger.DebugContext(ctx, "Published UI event",
		log.FieldOperation, log.OpPublish,
		"kind", e.Kind,
		"exchange", b.exchange)
	return nil
}

func (b *Bridge) Toast(ctx context.Context, t ui.Toast) {
	b.publish(ctx, ToastEvent(t))
}

func (b *Bridge) ShowLoading(ctx context.Context, mask bool) {
	b.publish(ctx, LoadingEvent(true, mask))
}

func (b *Bridge) HideLoading(ctx context.Context) {
	b.publish(ctx, LoadingEvent(false, false))
}

func (b *Bridge) Redirect(ctx context.Context, path string) {
	b.publish(ctx, RedirectEvent(path))
}

func (b *Bridge) publish(ctx context.Context, e *Event) {
	if err := b.Publish(ctx, e); err != nil {
		b.logger.WarnContext(ctx, "Dropped UI event", "kind", e.Kind, log.FieldError, err.Error())
	}
}

// Consume binds queue to every event kind and replays deliveries onto s
// until ctx is done. Malformed messages are rejected without requeue.
func (b *Bridge) Consume(ctx context.Context, queue string, s ui.Surface) error {
	_, err := b.channel.QueueDeclare(
		queue, // name
		false, // durable
		true,  // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	for _, key := range []string{KeyToast, KeyLoading, KeyRedirect} {
		if err := b.channel.QueueBind(queue, key, b.exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue to %s: %w", key, err)
		}
	}

	msgs, err := b.channel.Consume(
		queue, // queue
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	b.logger.InfoContext(ctx, "Started consuming UI events", "queue", queue)

	for {
		select {
		case <-ctx.Done():
			b.logger.InfoContext(ctx, "Stopping UI event consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			e, err := EventFromJSON(delivery.Body)
			if err != nil {
				b.logger.ErrorContext(ctx, "Failed to unmarshal UI event", log.FieldError, err.Error())
				delivery.Nack(false, false)
				continue
			}
			e.Apply(ctx, s)
			delivery.Ack(false)
		}
	}
}

func (b *Bridge) Close() error {
	if b.channel != nil {
		b.channel.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}

func (b *Bridge) isCircuitOpen() bool {
	switch atomic.LoadInt32(&b.state) {
	case StateOpen:
		b.mu.Lock()
		elapsed := time.Since(b.lastFailure)
		b.mu.Unlock()
		if elapsed > openTimeout {
			atomic.CompareAndSwapInt32(&b.state, StateOpen, StateHalfOpen)
			return false
		}
		return true
	default:
		return false
	}
}

func (b *Bridge) recordSuccess() {
	atomic.StoreInt64(&b.failureCount, 0)
	atomic.StoreInt32(&b.state, StateClosed)
}

func (b *Bridge) recordFailure() {
	b.mu.Lock()
	b.lastFailure = time.Now()
	b.mu.Unlock()

	if atomic.AddInt64(&b.failureCount, 1) >= maxFailures || atomic.LoadInt32(&b.state) == StateHalfOpen {
		if atomic.SwapInt32(&b.state, StateOpen) != StateOpen {
			b.logger.Warn("UI event circuit opened", "failures", atomic.LoadInt64(&b.failureCount))
		}
	}
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe", "closed network"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
