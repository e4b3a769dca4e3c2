// Package service holds the schedule generator and the collaborators it
// drives: the transactional store, the catalog and the event publisher.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/watch-rotation-scheduler/internal/queue"
)

// EventPublisher announces committed generation runs.  Failures never
// affect the run itself.
type EventPublisher interface {
	PublishScheduleGenerated(ctx context.Context, ev queue.ScheduleGeneratedEvent) error
}

// RabbitPublisher publishes events to RabbitMQ, dialing per message.
// Generation runs are rare enough that a pooled channel is not worth the
// reconnect handling.
type RabbitPublisher struct {
	url string
	log zerolog.Logger
}

// NewRabbitPublisher returns a publisher for the broker at url.
func NewRabbitPublisher(url string, log zerolog.Logger) *RabbitPublisher {
	return &RabbitPublisher{url: url, log: log}
}

// PublishScheduleGenerated publishes ev to the schedule.generated queue as
// a persistent JSON message.  Errors are logged and returned so the
// caller can choose to ignore them.
func (p *RabbitPublisher) PublishScheduleGenerated(ctx context.Context, ev queue.ScheduleGeneratedEvent) error {
	log := p.log.With().Str("generation_id", ev.GenerationID).Logger()
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(3 * time.Second),
	})
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queue.ScheduleGeneratedQueue, // name
		true,                         // durable
		false,                        // autoDelete
		false,                        // exclusive
		false,                        // noWait
		nil,                          // args
	); err != nil {
		log.Warn().Err(err).Msg("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		MessageId:    ev.GenerationID,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",                           // default exchange
		queue.ScheduleGeneratedQueue, // routing key = queue name
		false,                        // mandatory
		false,                        // immediate
		pub,
	); err != nil {
		log.Warn().Err(err).Msg("rabbitmq: publish failed")
		return err
	}
	return nil
}

// nopPublisher drops every event.  Used when no broker is configured.
type nopPublisher struct{}

func (nopPublisher) PublishScheduleGenerated(context.Context, queue.ScheduleGeneratedEvent) error {
	return nil
}
