package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"sudsy/internal/notify"
	"sudsy/pkg/kafka"
	kafka_config "sudsy/pkg/kafka/config"
	"sudsy/pkg/logger"
)

const (
	ServiceName     = "notifier"
	ConsumerGroupID = "notifier"
)

// The notifier fans fulfillment events out to providers and customers.
// Actual delivery channels (push, SMS, email) plug in behind deliver;
// for now every event lands in the structured log.
func main() {
	log := logger.New(logger.Config{
		Level:   getEnv("LOG_LEVEL", "info"),
		Format:  logger.JSON,
		Service: ServiceName,
	})

	consumer, err := kafka.NewConsumer(
		kafka_config.Load(),
		notify.Topic,
		ConsumerGroupID,
		notify.DLQTopic,
		handleEvent(log),
	)
	if err != nil {
		log.Fatal("Failed to initialize Kafka consumer", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	log.Info("Notifier consuming", "topic", notify.Topic, "group", ConsumerGroupID)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Consumer stopped", "error", err)
	}

	if err := consumer.Close(); err != nil {
		log.Error("Failed to close consumer", "error", err)
	}
	log.Info("Notifier stopped")
}

func handleEvent(log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		switch msg.GetEventType() {
		case notify.EventOfferBroadcast:
			var event notify.OfferBroadcastEvent
			if err := msg.DecodeValue(&event); err != nil {
				return err
			}
			for _, providerID := range event.ProviderIDs {
				deliver(log, providerID, "New job available",
					"booking_id", event.BookingID,
					"service_type", event.ServiceTypeID,
					"expires_at", event.ExpiresAt,
				)
			}
			return nil

		case notify.EventBookingMatched:
			var event notify.BookingMatchedEvent
			if err := msg.DecodeValue(&event); err != nil {
				return err
			}
			deliver(log, event.CustomerID, "Your cleaning is booked",
				"booking_id", event.BookingID,
				"provider_id", event.ProviderID,
				"date", event.ChosenSlot.Date,
				"shift", event.ChosenSlot.Shift,
			)
			deliver(log, event.ProviderID, "Job confirmed",
				"booking_id", event.BookingID,
				"date", event.ChosenSlot.Date,
				"shift", event.ChosenSlot.Shift,
			)
			for _, loserID := range event.LosingProviderIDs {
				deliver(log, loserID, "Job no longer available",
					"booking_id", event.BookingID,
				)
			}
			return nil

		case notify.EventBookingCancelled:
			var event notify.BookingCancelledEvent
			if err := msg.DecodeValue(&event); err != nil {
				return err
			}
			deliver(log, event.CustomerID, "Booking cancelled", "booking_id", event.BookingID)
			if event.ProviderID != "" {
				deliver(log, event.ProviderID, "Job cancelled", "booking_id", event.BookingID)
			}
			return nil

		case notify.EventBookingStatusChanged:
			var event notify.BookingStatusChangedEvent
			if err := msg.DecodeValue(&event); err != nil {
				return err
			}
			deliver(log, event.CustomerID, "Booking update",
				"booking_id", event.BookingID,
				"from", event.FromStatus,
				"to", event.ToStatus,
			)
			return nil

		default:
			log.Warn("Unknown event type, skipping",
				"event_type", msg.GetEventType(),
				"event_id", msg.GetEventID(),
			)
			return nil
		}
	}
}

func deliver(log *logger.Logger, recipientID, title string, args ...any) {
	fields := append([]any{"recipient_id", recipientID, "title", title}, args...)
	log.Info("Notification delivered", fields...)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
