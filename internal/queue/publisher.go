package queue

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const bookingQueueName = "booking.events"

// Publisher sends booking events to RabbitMQ. A nil Publisher silently
// drops events so the API works without a broker in development.
type Publisher struct {
	url string
	log *logrus.Logger
}

// NewPublisher returns a Publisher for the given AMQP URL, or nil when
// the URL is empty.
func NewPublisher(url string, log *logrus.Logger) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url, log: log}
}

// Publish declares the durable booking queue and sends one persistent
// JSON message. Broker failures are logged and swallowed; an event is
// advisory and must never fail the booking that produced it.
func (p *Publisher) Publish(ctx context.Context, ev BookingEvent) {
	if p == nil {
		return
	}
	if err := p.publish(ctx, ev); err != nil {
		p.log.WithError(err).WithField("booking_id", ev.BookingID).
			Warn("booking event publish failed")
	}
}

func (p *Publisher) publish(ctx context.Context, ev BookingEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(bookingQueueName, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", bookingQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}
