// Package events publishes domain events to RabbitMQ. Publishing is best
// effort: failures are logged and never fail the originating request.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mikepea/astroclub/pkg/astroclub/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	UserSignedUp        = "user.signed_up"
	MemberJoined        = "member.joined"
	ObservationCreated  = "observation.created"
	ArticleCreated      = "article.created"
	publishTimeout      = 5 * time.Second
	defaultExchangeName = ""
)

// Event is the JSON envelope sent to the broker
type Event struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// Publisher sends events somewhere
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Emit publishes an event of the given type and logs any failure.
// A nil publisher is treated as Nop.
func Emit(ctx context.Context, p Publisher, eventType string, payload interface{}) {
	if p == nil {
		return
	}
	e := Event{Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload}
	if err := p.Publish(ctx, e); err != nil {
		logger.Warn().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}

// AMQPPublisher dials the broker for every publish and declares the
// durable queue before sending a persistent message to it.
// Each publish, dial included, is bounded by timeout.
type AMQPPublisher struct {
	url     string
	queue   string
	timeout time.Duration
}

func NewAMQPPublisher(url, queue string) *AMQPPublisher {
	return &AMQPPublisher{url: url, queue: queue, timeout: publishTimeout}
}

// New returns an AMQPPublisher, or Nop when url is empty
func New(url, queue string) Publisher {
	if url == "" {
		return Nop{}
	}
	return NewAMQPPublisher(url, queue)
}

func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	deadline, _ := ctx.Deadline()
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(time.Until(deadline)),
	})
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, defaultExchangeName, p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    e.OccurredAt,
		Type:         e.Type,
		Body:         body,
	})
}
