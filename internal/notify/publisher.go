package notify

import (
	"context"
	"sudsy/pkg/kafka"
	"sudsy/pkg/logger"
	"sudsy/pkg/model"
	"time"
)

// All fulfillment events share one topic, keyed by booking id so a
// booking's events stay ordered within a partition.
const (
	Topic    = "fulfillment.events"
	DLQTopic = "fulfillment.events.dlq"
)

// Event types emitted on the fulfillment topic.
const (
	EventOfferBroadcast       = "offer.broadcast"
	EventBookingMatched       = "booking.matched"
	EventBookingCancelled     = "booking.cancelled"
	EventBookingStatusChanged = "booking.status_changed"
)

const Source = "fulfillment-engine"

// OfferBroadcastEvent tells eligible providers a job is up for grabs.
// ExpiresAt is advisory display information, not an engine-enforced
// lock.
type OfferBroadcastEvent struct {
	BookingID     string                `json:"booking_id"`
	ServiceTypeID string                `json:"service_type_id"`
	Candidates    []model.CandidateSlot `json:"candidates"`
	ProviderIDs   []string              `json:"provider_ids"`
	ExpiresAt     time.Time             `json:"expires_at"`
}

type BookingMatchedEvent struct {
	BookingID  string              `json:"booking_id"`
	CustomerID string              `json:"customer_id"`
	ProviderID string              `json:"provider_id"`
	ChosenSlot model.CandidateSlot `json:"chosen_slot"`
	// LosingProviderIDs lets the notifier tell everyone else the job is
	// gone.
	LosingProviderIDs []string `json:"losing_provider_ids,omitempty"`
}

type BookingCancelledEvent struct {
	BookingID  string `json:"booking_id"`
	CustomerID string `json:"customer_id"`
	ProviderID string `json:"provider_id,omitempty"`
}

type BookingStatusChangedEvent struct {
	BookingID  string `json:"booking_id"`
	CustomerID string `json:"customer_id"`
	ProviderID string `json:"provider_id,omitempty"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

// Publisher is the fire-and-forget notification sink. Delivery is best
// effort: a publish failure is logged and swallowed so it can never
// fail or block the transaction that produced the event.
type Publisher interface {
	Publish(ctx context.Context, eventType string, key string, payload any)
	Close() error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		log:      log.Component("notify"),
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType string, key string, payload any) {
	msg := kafka.NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventType(eventType).
		WithSource(Source).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish notification", "event_type", eventType, "key", key, "error", err)
		return
	}

	p.log.Debug("Notification published", "event_type", eventType, "key", key)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// NopPublisher drops every event. Used in tests and when the broker is
// not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, eventType string, key string, payload any) {}

func (NopPublisher) Close() error { return nil }
