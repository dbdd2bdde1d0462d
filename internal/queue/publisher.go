package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// CatalogQueueName is the durable queue catalog events are routed to.
const CatalogQueueName = "catalog.events"

const (
	defaultDialTimeout    = 2 * time.Second
	defaultRedialCooldown = 15 * time.Second
)

// ErrBrokerUnavailable is returned without dialling while the publisher
// waits out the cooldown after a failed dial.
var ErrBrokerUnavailable = errors.New("rabbitmq: broker unavailable")

// Publisher sends catalog events to RabbitMQ over a single long-lived
// connection that is re-dialled lazily after the broker drops it. Errors
// are logged and returned so callers can choose to ignore them.
//
// A dial is bounded by DialTimeout. After a failed dial, Publish fails
// fast with ErrBrokerUnavailable until RedialCooldown has passed, so a
// broker outage costs a write at most one short dial.
type Publisher struct {
	url string
	log *zap.Logger

	DialTimeout    time.Duration
	RedialCooldown time.Duration

	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	nextDial time.Time
	now      func() time.Time
	dialAMQP func(url string, timeout time.Duration) (*amqp.Connection, error)
}

// NewPublisher returns a publisher for the broker at url. No connection is
// made until the first Publish.
func NewPublisher(url string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{
		url:            url,
		log:            log,
		DialTimeout:    defaultDialTimeout,
		RedialCooldown: defaultRedialCooldown,
		now:            time.Now,
		dialAMQP:       dial,
	}
}

func dial(url string, timeout time.Duration) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// channel returns an open channel, dialling and declaring the queue when
// needed. Callers must hold p.mu.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if p.conn == nil || p.conn.IsClosed() {
		if p.now().Before(p.nextDial) {
			return nil, ErrBrokerUnavailable
		}
		conn, err := p.dialAMQP(p.url, p.DialTimeout)
		if err != nil {
			p.nextDial = p.now().Add(p.RedialCooldown)
			return nil, fmt.Errorf("dial: %w", err)
		}
		p.nextDial = time.Time{}
		p.conn = conn
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("channel open: %w", err)
	}
	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(CatalogQueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.ch = ch
	return ch, nil
}

// Publish marshals ev and publishes it as a persistent message on the
// default exchange, routed to CatalogQueueName.
func (p *Publisher) Publish(ctx context.Context, ev CatalogEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("rabbitmq: marshal event failed", zap.Error(err))
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		p.log.Warn("rabbitmq: broker unavailable", zap.String("event", ev.Type), zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", CatalogQueueName, false, false, pub); err != nil {
		p.log.Warn("rabbitmq: publish failed", zap.String("event", ev.Type), zap.Error(err))
		return err
	}
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
		p.ch = nil
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
		p.conn = nil
	}
	return errors.Join(errs...)
}

// Discard is used when events are disabled.
type Discard struct{}

func (Discard) Publish(context.Context, CatalogEvent) error { return nil }
