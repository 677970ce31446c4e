package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/septic-crm/internal/model"
	q "github.com/iliyamo/septic-crm/internal/queue"
)

// PublishLeadCreated publishes event to the durable "lead.created" queue.
// It dials per call, which is fine at contact-form volume.  Messages are
// marked persistent.
func PublishLeadCreated(ctx context.Context, url string, event q.LeadCreatedEvent) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		q.LeadCreatedQueue, // name
		true,               // durable
		false,              // autoDelete
		false,              // exclusive
		false,              // noWait
		nil,                // args
	); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", q.LeadCreatedQueue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

// QueueNotifier hands new-lead notifications to RabbitMQ; the lead consumer
// sends the mail.  When publishing fails and Fallback is set, the
// notification is delivered through Fallback instead of being lost.
type QueueNotifier struct {
	URL      string
	Fallback interface {
		NotifyNewLead(ctx context.Context, lead model.Lead) error
	}
	Log *zap.Logger

	publish func(ctx context.Context, url string, event q.LeadCreatedEvent) error
}

func NewQueueNotifier(url string, fallback *Mailer, log *zap.Logger) *QueueNotifier {
	n := &QueueNotifier{URL: url, Log: log, publish: PublishLeadCreated}
	if fallback != nil {
		n.Fallback = fallback
	}
	return n
}

func (n *QueueNotifier) NotifyNewLead(ctx context.Context, lead model.Lead) error {
	err := n.publish(ctx, n.URL, q.NewLeadCreatedEvent(lead))
	if err == nil {
		return nil
	}
	if n.Fallback == nil {
		return err
	}
	n.Log.Warn("publish lead.created failed, notifying directly", zap.String("lead_id", lead.ID), zap.Error(err))
	return n.Fallback.NotifyNewLead(ctx, lead)
}
