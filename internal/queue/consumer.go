// Package queue also contains the background consumer that listens to the
// lead.created queue and hands each event to a delivery function, normally
// the new-lead mailer.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// LeadCreatedFunc delivers one event.  A returned error rejects the message.
type LeadCreatedFunc func(ctx context.Context, ev LeadCreatedEvent) error

// deliverTimeout bounds a single delivery.
const deliverTimeout = 30 * time.Second

// StartLeadConsumer connects to RabbitMQ, declares the lead.created queue
// (durable) and passes every message to handle.  It runs a reconnect loop
// with exponential backoff and only returns once ctx is cancelled.  A
// message that cannot be decoded or delivered is rejected without requeue
// so a poison message cannot spin the loop.
func StartLeadConsumer(ctx context.Context, url string, handle LeadCreatedFunc, log *zap.Logger) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("lead consumer: dial broker failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, handle, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("lead consumer: consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

// sleep waits for d and reports false when ctx ended first.
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

func consumeLoop(ctx context.Context, conn *amqp.Connection, handle LeadCreatedFunc, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		log.Warn("lead consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(LeadCreatedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, LeadCreatedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(ctx, d.Body, handle); err != nil {
			log.Error("lead consumer: handle message failed", zap.Error(err))
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(ctx context.Context, body []byte, handle LeadCreatedFunc) error {
	var ev LeadCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.LeadID == "" {
		return errors.New("event without lead_id")
	}
	ctx, cancel := context.WithTimeout(ctx, deliverTimeout)
	defer cancel()
	if err := handle(ctx, ev); err != nil {
		return fmt.Errorf("deliver lead %s: %w", ev.LeadID, err)
	}
	return nil
}
