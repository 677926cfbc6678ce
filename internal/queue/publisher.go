package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const activityQueueName = "prompt.activity"

// Publisher emits activity events to RabbitMQ. Publishing is strictly best
// effort: every error is logged and returned, and callers ignore it so a
// missing broker never affects a user request. A Publisher built with an
// empty URL is permanently disabled.
type Publisher struct {
	url string
}

// NewPublisher returns a publisher for the given broker URL. An empty URL
// yields a disabled publisher whose Publish is a no-op.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// Publish sends one event to the activity queue. The queue is declared
// durable and messages persistent so events survive a broker restart.
func (p *Publisher) Publish(ctx context.Context, ev ActivityEvent) error {
	if p.url == "" {
		return nil
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("queue: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("queue: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(activityQueueName, true, false, false, false, nil); err != nil {
		log.Printf("queue: declare failed: %v", err)
		return err
	}

	if ev.OccurredAt == "" {
		ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	}
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("queue: marshal event failed: %v", err)
		return err
	}

	err = ch.PublishWithContext(ctx, "", activityQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		log.Printf("queue: publish failed: %v", err)
	}
	return err
}
