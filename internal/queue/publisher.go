package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// DialTimeout caps connection setup, TCP and AMQP handshake together.
	DialTimeout = 2 * time.Second
	// redialAfter is how long a failed dial keeps the publisher from trying
	// again. Publishes in that window fail fast with ErrBrokerUnavailable.
	redialAfter = 5 * time.Second
)

// ErrBrokerUnavailable is returned while the publisher waits out a failed
// dial.
var ErrBrokerUnavailable = errors.New("activity broker unavailable")

// Publisher delivers activity events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev ActivityEvent) error
}

// NopPublisher drops every event. Used when RABBITMQ_URL is unset and in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ActivityEvent) error { return nil }

type dialFunc func(url string, cfg amqp.Config) (*amqp.Connection, error)

// dialConfig bounds the whole connection setup by timeout.
func dialConfig(timeout time.Duration) amqp.Config {
	return amqp.Config{
		Dial:      amqp.DefaultDial(timeout),
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
	}
}

// AMQPPublisher publishes each event as a persistent JSON message on a
// durable queue. It keeps one connection and channel open and reopens them
// on the next publish after either closes.
type AMQPPublisher struct {
	url    string
	queue  string
	logger *slog.Logger
	dial   dialFunc
	now    func() time.Time

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	retryAt time.Time
}

func NewAMQPPublisher(url, queue string, logger *slog.Logger) *AMQPPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &AMQPPublisher{
		url:    url,
		queue:  queue,
		logger: logger.With("component", "activity-publisher"),
		dial:   amqp.DialConfig,
		now:    time.Now,
	}
}

// Publish sends ev. It never blocks longer than ctx allows, and at most
// DialTimeout when a connection has to be opened. Errors are logged and
// returned so the caller can choose to ignore them.
func (p *AMQPPublisher) Publish(ctx context.Context, ev ActivityEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		p.logger.Warn("publish failed", "type", ev.Type, "error", err)
		p.reset()
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// channel returns the open channel, dialing when there is none. Callers
// hold p.mu.
func (p *AMQPPublisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	if p.now().Before(p.retryAt) {
		return nil, ErrBrokerUnavailable
	}
	timeout := DialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := deadline.Sub(p.now()); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("dial: %w", context.DeadlineExceeded)
	}

	conn, err := p.dial(p.url, dialConfig(timeout))
	if err != nil {
		p.retryAt = p.now().Add(redialAfter)
		p.logger.Warn("dial failed", "error", err, "retry_in", redialAfter)
		return nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		p.logger.Warn("channel open failed", "error", err)
		return nil, fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		p.logger.Warn("queue declare failed", "queue", p.queue, "error", err)
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close releases the connection. A later Publish reconnects.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
