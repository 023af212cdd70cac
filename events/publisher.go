// Package events publishes booking lifecycle events to RabbitMQ. Publishing is
// best effort: callers log failures and carry on.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	bk "github.com/hanksha/turf-booking-backend/booking"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Type string

const (
	BookingConfirmed Type = "booking.confirmed"
	BookingCancelled Type = "booking.cancelled"
)

type Event struct {
	Type       Type      `json:"type"`
	BookingID  string    `json:"bookingId"`
	VenueID    string    `json:"venueId"`
	UserID     string    `json:"userId"`
	Date       string    `json:"date"`
	TimeSlot   string    `json:"timeSlot"`
	TotalPrice float64   `json:"totalPrice"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewBookingEvent(t Type, b bk.Booking) Event {
	return Event{
		Type:       t,
		BookingID:  b.ID,
		VenueID:    b.VenueID,
		UserID:     b.UserID,
		Date:       b.Date,
		TimeSlot:   b.TimeSlot,
		TotalPrice: b.TotalPrice,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher struct {
	conn     *amqp.Connection
	mu       sync.Mutex
	ch       *amqp.Channel
	exchange string
}

// Dial connects to the broker and declares the durable topic exchange events
// are routed through, keyed by event type.
func Dial(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel open failed: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare failed: %w", err)
	}

	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *Publisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    e.OccurredAt,
		Type:         string(e.Type),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, p.exchange, string(e.Type), false, false, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", e.Type, err)
	}

	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// Noop is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
