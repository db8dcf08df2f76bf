package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends persistent JSON messages to one queue through the default exchange.
type Publisher struct {
	pool  *ChannelPool
	queue string
	now   func() time.Time
}

func NewPublisher(pool *ChannelPool, queue string) *Publisher {
	return &Publisher{pool: pool, queue: queue, now: time.Now}
}

// Publish delivers body with the given message id.
func (p *Publisher) Publish(ctx context.Context, messageID string, body []byte) error {
	ch, err := p.pool.Acquire()
	if err != nil {
		return fmt.Errorf("get channel from pool: %w", err)
	}
	defer p.pool.Release(ch)

	err = ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    messageID,
			Timestamp:    p.now().UTC(),
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publish to %q: %w", p.queue, err)
	}
	return nil
}
