package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// StartScheduleConsumer connects to RabbitMQ, declares the
// schedule.generated queue (durable) and appends one line per event to
// out.  It runs a reconnect loop with exponential backoff and only returns
// once ctx is cancelled.  A message that cannot be handled is rejected
// without requeue so the consumer keeps operating.
func StartScheduleConsumer(ctx context.Context, url string, out io.Writer, log zerolog.Logger) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("failed to dial broker")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(ctx, conn, out, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn().Err(err).Msg("consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, out io.Writer, log zerolog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn().Err(err).Msg("set QoS failed")
	}
	if _, err := ch.QueueDeclare(ScheduleGeneratedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(ScheduleGeneratedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := HandleMessage(d.Body, out); err != nil {
				log.Error().Err(err).Msg("handle message failed")
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one event and writes its log line to out.
func HandleMessage(body []byte, out io.Writer) error {
	var ev ScheduleGeneratedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if _, err := io.WriteString(out, FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders an event as a single human-friendly line.
func FormatLine(ev ScheduleGeneratedEvent) string {
	skipped := "[]"
	if len(ev.SkippedIDs) > 0 {
		ids := make([]string, len(ev.SkippedIDs))
		for i, id := range ev.SkippedIDs {
			ids[i] = fmt.Sprint(id)
		}
		skipped = fmt.Sprintf("[%s]", strings.Join(ids, ","))
	}
	return fmt.Sprintf("[%s] Schedule generated | generation_id=%s | user_id=%d | source=%s:%d | range=%s..%s | created=%d | superseded=%d | reruns=%d | skipped=%s\n",
		ev.GeneratedAt, ev.GenerationID, ev.UserID, ev.SourceType, ev.SourceID, ev.StartDate, ev.EndDate,
		ev.Created, ev.Deleted, ev.Reruns, skipped)
}
