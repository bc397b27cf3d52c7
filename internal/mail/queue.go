package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher is the part of *amqp.Channel the queue sender uses.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// QueueSender publishes messages as JSON to a durable queue.
type QueueSender struct {
	mu    sync.Mutex
	ch    Publisher
	queue string
}

// DeclareQueue declares the durable mail queue on ch.
func DeclareQueue(ch *amqp.Channel, queue string) error {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("mail: declare queue %q: %w", queue, err)
	}
	return nil
}

// NewQueueSender opens a channel on conn and declares queue.
func NewQueueSender(conn *amqp.Connection, queue string) (*QueueSender, *amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("mail: open channel: %w", err)
	}
	if err := DeclareQueue(ch, queue); err != nil {
		ch.Close()
		return nil, nil, err
	}
	return &QueueSender{ch: ch, queue: queue}, ch, nil
}

// NewQueueSenderWithPublisher wraps an existing publisher.
func NewQueueSenderWithPublisher(p Publisher, queue string) *QueueSender {
	return &QueueSender{ch: p, queue: queue}
}

func (s *QueueSender) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("mail: encode message: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.ch.PublishWithContext(ctx, "", s.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("mail: publish to %s: %w", s.queue, err)
	}
	return nil
}

// Consumer drains the mail queue into a Sender.
type Consumer struct {
	sender Sender
	logger *zap.Logger
}

func NewConsumer(sender Sender, logger *zap.Logger) *Consumer {
	return &Consumer{sender: sender, logger: logger}
}

// Run handles deliveries until ctx is done or the channel closes.
func (c *Consumer) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("mail: delivery channel closed")
			}
			c.Handle(ctx, d)
		}
	}
}

// Handle sends one delivery. Malformed messages are dropped. A failed send
// is requeued once; a second failure drops it.
func (c *Consumer) Handle(ctx context.Context, d amqp.Delivery) {
	var msg Message
	if err := json.Unmarshal(d.Body, &msg); err != nil || msg.To == "" {
		c.logger.Warn("dropping malformed mail message", zap.Error(err), zap.Uint64("delivery_tag", d.DeliveryTag))
		if err := d.Nack(false, false); err != nil {
			c.logger.Error("failed to nack message", zap.Error(err))
		}
		return
	}

	if err := c.sender.Send(ctx, msg); err != nil {
		requeue := !d.Redelivered
		c.logger.Error("mail delivery failed",
			zap.String("to", msg.To),
			zap.Bool("requeue", requeue),
			zap.Error(err))
		if err := d.Nack(false, requeue); err != nil {
			c.logger.Error("failed to nack message", zap.Error(err))
		}
		return
	}

	c.logger.Info("mail delivered", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	if err := d.Ack(false); err != nil {
		c.logger.Error("failed to ack message", zap.Error(err))
	}
}
