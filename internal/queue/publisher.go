package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/service"
)

// Publisher publishes booking events to the durable notification queue.
// It keeps one connection and channel open and redials after a failure.
type Publisher struct {
	url string
	log *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher returns a Publisher for the broker at url.  It does not
// connect until the first publish.
func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

var _ service.Notifier = (*Publisher)(nil)

func (p *Publisher) BookingConfirmed(ctx context.Context, n service.BookingNotice) error {
	return p.Publish(ctx, EventFromNotice(KindBookingConfirmed, n, time.Now()))
}

func (p *Publisher) BookingCancelled(ctx context.Context, n service.BookingNotice) error {
	return p.Publish(ctx, EventFromNotice(KindBookingCancelled, n, time.Now()))
}

// Publish sends ev as a persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, ev BookingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	ch, err := p.channel()
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Type:         ev.Kind,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	}
	// default exchange, routing key = queue name
	if err := ch.PublishWithContext(ctx, "", NotificationQueue, false, false, pub); err != nil {
		p.reset()
		return fmt.Errorf("publish %s: %w", ev.Kind, err)
	}
	p.log.Debug("notification published", zap.String("kind", ev.Kind), zap.Uint64("ticket_id", ev.TicketID))
	return nil
}

// channel returns the open channel, dialing when needed.  p.mu is held.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(NotificationQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

// Close closes the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

// Inline is a Notifier that renders and mails notifications in-process.
// It is used when no broker is configured.
type Inline struct {
	Mailer Mailer
}

func (n Inline) BookingConfirmed(ctx context.Context, notice service.BookingNotice) error {
	return n.send(ctx, EventFromNotice(KindBookingConfirmed, notice, time.Now()))
}

func (n Inline) BookingCancelled(ctx context.Context, notice service.BookingNotice) error {
	return n.send(ctx, EventFromNotice(KindBookingCancelled, notice, time.Now()))
}

func (n Inline) send(ctx context.Context, ev BookingEvent) error {
	mail, err := Render(ev)
	if err != nil {
		return err
	}
	return n.Mailer.Send(ctx, mail)
}
