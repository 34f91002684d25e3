package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ledgerbook/backend/internal/domain/shared"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DefaultQueueSize bounds the forwarder's in-memory backlog
const DefaultQueueSize = 256

// ErrForwarderStopped is returned when publishing after Stop
var ErrForwarderStopped = errors.New("event forwarder stopped")

// Publisher is the part of *amqp.Channel the forwarder uses
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPForwarder is a wildcard event handler that copies every domain event
// to a topic exchange. Handle only enqueues; a single goroutine started by
// Start drains the queue, so a slow broker never blocks a request. When the
// queue is full the event is dropped and counted.
type AMQPForwarder struct {
	publisher Publisher
	exchange  string
	logger    *zap.Logger
	timeout   time.Duration

	// mu guards stopped so Handle never sends on a closed queue
	mu      sync.RWMutex
	stopped bool
	queue   chan *Envelope
	done    chan struct{}
	started atomic.Bool

	forwarded atomic.Int64
	dropped   atomic.Int64
}

// ForwarderOption configures an AMQPForwarder
type ForwarderOption func(*AMQPForwarder)

// WithPublishTimeout bounds a single broker publish
func WithPublishTimeout(d time.Duration) ForwarderOption {
	return func(f *AMQPForwarder) {
		f.timeout = d
	}
}

// NewAMQPForwarder creates a forwarder publishing to exchange
func NewAMQPForwarder(publisher Publisher, exchange string, queueSize int, logger *zap.Logger, opts ...ForwarderOption) *AMQPForwarder {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &AMQPForwarder{
		publisher: publisher,
		exchange:  exchange,
		logger:    logger.With(zap.String("component", "amqp_forwarder")),
		timeout:   5 * time.Second,
		queue:     make(chan *Envelope, queueSize),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// EventTypes returns nil: the forwarder receives all events
func (f *AMQPForwarder) EventTypes() []string {
	return nil
}

// Handle enqueues the event without waiting for the broker
func (f *AMQPForwarder) Handle(ctx context.Context, event shared.DomainEvent) error {
	env, err := NewEnvelope(event, shared.ActorID(ctx))
	if err != nil {
		return err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.stopped {
		return ErrForwarderStopped
	}

	select {
	case f.queue <- env:
		return nil
	default:
		f.dropped.Add(1)
		f.logger.Warn("Event queue full, dropping event",
			zap.String("event_type", env.EventType),
			zap.String("event_id", env.EventID.String()))
		return nil
	}
}

// Start launches the drain goroutine
func (f *AMQPForwarder) Start() {
	if !f.started.CompareAndSwap(false, true) {
		return
	}
	go f.run()
}

func (f *AMQPForwarder) run() {
	defer close(f.done)
	for env := range f.queue {
		f.publish(env)
	}
}

func (f *AMQPForwarder) publish(env *Envelope) {
	body, err := env.Marshal()
	if err != nil {
		f.logger.Error("Failed to encode event", zap.String("event_id", env.EventID.String()), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	err = f.publisher.PublishWithContext(ctx, f.exchange, env.RoutingKey(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.EventID.String(),
		Type:         env.EventType,
		Timestamp:    env.OccurredAt,
		Body:         body,
	})
	if err != nil {
		f.logger.Error("Failed to forward event",
			zap.String("event_type", env.EventType),
			zap.String("event_id", env.EventID.String()),
			zap.Error(err))
		return
	}
	f.forwarded.Add(1)
}

// Stop closes the queue and waits for the backlog to drain or ctx to expire
func (f *AMQPForwarder) Stop(ctx context.Context) error {
	f.mu.Lock()
	if !f.stopped {
		f.stopped = true
		close(f.queue)
	}
	f.mu.Unlock()

	if !f.started.Load() {
		return nil
	}

	select {
	case <-f.done:
		f.logger.Info("Event forwarder stopped",
			zap.Int64("forwarded", f.forwarded.Load()),
			zap.Int64("dropped", f.dropped.Load()))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event forwarder did not drain: %w", ctx.Err())
	}
}

// Stats returns forwarded and dropped counters
func (f *AMQPForwarder) Stats() (forwarded, dropped int64) {
	return f.forwarded.Load(), f.dropped.Load()
}

var _ shared.EventHandler = (*AMQPForwarder)(nil)

// AMQPConnection owns the broker connection and the publishing channel
type AMQPConnection struct {
	conn    *amqp.Connection
	Channel *amqp.Channel
}

// DialAMQP connects to the broker with retries and declares a durable topic exchange
func DialAMQP(ctx context.Context, url, exchange string, logger *zap.Logger) (*AMQPConnection, error) {
	var conn *amqp.Connection
	err := retry.Do(
		func() error {
			var dialErr error
			conn, dialErr = amqp.Dial(url)
			return dialErr
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("AMQP broker not reachable, retrying", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	logger.Info("Connected to AMQP broker", zap.String("exchange", exchange))
	return &AMQPConnection{conn: conn, Channel: ch}, nil
}

// Close closes the channel and the connection
func (c *AMQPConnection) Close() error {
	if c.Channel != nil {
		_ = c.Channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
