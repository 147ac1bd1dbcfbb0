package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeJobSubmitted MessageType = "job.submitted"
	MessageTypeJobCancel    MessageType = "job.cancel"
	MessageTypeJobProgress  MessageType = "job.progress"
	MessageTypeJobFinished  MessageType = "job.finished"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// JobSubmittedPayload — payload команды на постановку job в очередь.
type JobSubmittedPayload struct {
	JobID uuid.UUID `json:"job_id"`
}

// JobCancelPayload — payload команды на отмену job.
type JobCancelPayload struct {
	JobID uuid.UUID `json:"job_id"`
}

// JobProgressPayload — payload наблюдения прогресса обучения.
type JobProgressPayload struct {
	JobID        uuid.UUID `json:"job_id"`
	Progress     int       `json:"progress"`
	CurrentEpoch int       `json:"current_epoch"`
	TotalEpochs  int       `json:"total_epochs"`
}

// JobFinishedPayload — payload о завершении pipeline'а для job.
type JobFinishedPayload struct {
	JobID  uuid.UUID `json:"job_id"`
	Status string    `json:"status"` // COMPLETED, FAILED или CANCELLED
	Error  string    `json:"error,omitempty"`
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// PublishJobSubmitted публикует команду на постановку job в очередь pipeline'а.
// Потребитель: pipeline controller.
func (p *Publisher) PublishJobSubmitted(ctx context.Context, jobID uuid.UUID) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeJobSubmitted,
		Payload:   JobSubmittedPayload{JobID: jobID},
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeJobs, RoutingKeySubmitted, msg)
}

// PublishJobCancel публикует команду на отмену job.
// Потребитель: pipeline controller.
func (p *Publisher) PublishJobCancel(ctx context.Context, jobID uuid.UUID) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeJobCancel,
		Payload:   JobCancelPayload{JobID: jobID},
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeJobs, RoutingKeyCancel, msg)
}

// PublishJobProgress публикует наблюдение прогресса для внешней телеметрии.
func (p *Publisher) PublishJobProgress(ctx context.Context, payload JobProgressPayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeJobProgress,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeEvents, RoutingKeyProgress, msg)
}

// PublishJobFinished публикует событие о завершении pipeline'а для job.
func (p *Publisher) PublishJobFinished(ctx context.Context, payload JobFinishedPayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeJobFinished,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeEvents, RoutingKeyFinished, msg)
}
