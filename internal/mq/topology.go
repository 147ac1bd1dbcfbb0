package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	// ExchangeJobs — команды для pipeline'а (submit/cancel).
	ExchangeJobs Exchange = "modelka.jobs"

	// ExchangeEvents — телеметрия для внешних подписчиков.
	ExchangeEvents Exchange = "modelka.events"

	// ExchangeDLQ — dead letter exchange.
	ExchangeDLQ Exchange = "modelka.dlq"
)

// Queues — имена очередей.
const (
	QueueJobsSubmitted Queue = "jobs.submitted"
	QueueJobsCancel    Queue = "jobs.cancel"
	QueueDLQJobs       Queue = "dlq.jobs"
)

// Routing keys.
const (
	RoutingKeySubmitted RoutingKey = "submitted"
	RoutingKeyCancel    RoutingKey = "cancel"
	RoutingKeyProgress  RoutingKey = "progress"
	RoutingKeyFinished  RoutingKey = "finished"
	RoutingKeyDLQJobs   RoutingKey = "jobs"
)

// SetupTopology создаёт exchanges, queues и bindings.
// Идемпотентно: повторный вызов на существующей топологии безопасен.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		if err := declareExchanges(ch); err != nil {
			return err
		}
		if err := declareQueues(ch); err != nil {
			return err
		}
		return bindQueues(ch)
	})
}

// declareExchanges создаёт обменники.
func declareExchanges(ch *amqp.Channel) error {
	exchanges := []struct {
		name Exchange
		kind string
	}{
		{ExchangeJobs, "direct"},
		{ExchangeEvents, "fanout"},
		{ExchangeDLQ, "direct"},
	}

	for _, ex := range exchanges {
		err := ch.ExchangeDeclare(
			string(ex.name), // name
			ex.kind,         // type
			true,            // durable
			false,           // auto-deleted
			false,           // internal
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	return nil
}

// declareQueues создаёт очереди команд с DLQ.
func declareQueues(ch *amqp.Channel) error {
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQJobs),
	}

	queues := []struct {
		name Queue
		args amqp.Table
	}{
		{QueueJobsSubmitted, dlqArgs},
		{QueueJobsCancel, dlqArgs},
		{QueueDLQJobs, nil},
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // auto-delete
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}

	return nil
}

// bindQueues привязывает очереди к обменникам.
func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue    Queue
		key      RoutingKey
		exchange Exchange
	}{
		{QueueJobsSubmitted, RoutingKeySubmitted, ExchangeJobs},
		{QueueJobsCancel, RoutingKeyCancel, ExchangeJobs},
		{QueueDLQJobs, RoutingKeyDLQJobs, ExchangeDLQ},
	}

	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),    // queue
			string(b.key),      // routing key
			string(b.exchange), // exchange
			false,              // no-wait
			nil,                // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s: %w", b.queue, err)
		}
	}

	return nil
}
