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

// Consumer reads booking events from the notification queue and mails
// them.  Messages that cannot be decoded or rendered are rejected without
// requeue; delivery failures are requeued once.
type Consumer struct {
	url    string
	mailer Mailer
	log    *zap.Logger
}

// NewConsumer returns a Consumer for the broker at url.
func NewConsumer(url string, mailer Mailer, log *zap.Logger) *Consumer {
	return &Consumer{url: url, mailer: mailer, log: log}
}

// Run connects, consumes and reconnects with exponential backoff until
// ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("notification consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("notification consumer: consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("notification consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(NotificationQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(NotificationQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.log.Info("notification consumer started", zap.String("queue", NotificationQueue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.deliver(ctx, d)
		}
	}
}

func (c *Consumer) deliver(ctx context.Context, d amqp.Delivery) {
	err := c.Handle(ctx, d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, errPoison):
		c.log.Error("notification dropped", zap.Error(err))
		_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
	default:
		c.log.Warn("notification delivery failed", zap.Error(err), zap.Bool("redelivered", d.Redelivered))
		_ = d.Nack(false, !d.Redelivered)
	}
}

var errPoison = errors.New("undeliverable message")

// Handle decodes, renders and mails one message body.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: unmarshal: %v", errPoison, err)
	}
	mail, err := Render(ev)
	if err != nil {
		return fmt.Errorf("%w: %v", errPoison, err)
	}
	if err := c.mailer.Send(ctx, mail); err != nil {
		return err
	}
	c.log.Info("notification sent", zap.String("kind", ev.Kind), zap.Uint64("ticket_id", ev.TicketID), zap.String("to", ev.Email))
	return nil
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
