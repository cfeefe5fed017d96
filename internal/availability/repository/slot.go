package repository

import (
	"context"
	"errors"
	"fmt"
	availabilityerrors "sudsy/internal/availability/errors"
	"sudsy/pkg/config"
	"sudsy/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SlotCollectionName = "AvailabilitySlots"
)

// SlotRepository persists availability slots keyed by the composite
// (provider, date, shift) id. A missing document means the slot is
// implicitly available; documents exist only for blocked and booked
// slots and for slots explicitly re-marked available.
type SlotRepository interface {
	Find(ctx context.Context, providerID, date, shift string) (*model.AvailabilitySlot, error)
	FindByProvider(ctx context.Context, providerID string, fromDate, toDate string) ([]*model.AvailabilitySlot, error)
	// SetStatus writes available or blocked, refusing to touch a booked
	// slot.
	SetStatus(ctx context.Context, providerID, date, shift, status string) error
	// Book flips a slot to booked for the given booking, failing if the
	// slot is blocked or already booked. Safe under concurrent callers:
	// losers surface ErrSlotUnavailable.
	Book(ctx context.Context, providerID, date, shift, bookingID string) error
	// Release returns a booked slot to available, but only when it is
	// held by the given booking.
	Release(ctx context.Context, providerID, date, shift, bookingID string) error
}

type mongoSlotRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSlotRepository(cfg *config.Config) SlotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotRepository{
		cfg:        cfg,
		collection: db.Collection(SlotCollectionName),
	}
}

func (r *mongoSlotRepository) Find(ctx context.Context, providerID, date, shift string) (*model.AvailabilitySlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var slot model.AvailabilitySlot
	err := r.collection.FindOne(ctx, bson.M{"_id": model.SlotKey(providerID, date, shift)}).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, availabilityerrors.ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to find slot: %w", err)
	}

	return &slot, nil
}

func (r *mongoSlotRepository) FindByProvider(ctx context.Context, providerID string, fromDate, toDate string) ([]*model.AvailabilitySlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"provider_id": providerID}
	if fromDate != "" || toDate != "" {
		dateFilter := bson.M{}
		if fromDate != "" {
			dateFilter["$gte"] = fromDate
		}
		if toDate != "" {
			dateFilter["$lte"] = toDate
		}
		filter["date"] = dateFilter
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "shift", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.AvailabilitySlot
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}

	return slots, nil
}

// SetStatus upserts with a filter that excludes booked documents. When
// the slot is booked the filter misses, the upsert tries to insert a
// second document with the same _id, and the duplicate-key failure is
// the booked-slot signal. That keeps the check-and-write atomic.
func (r *mongoSlotRepository) SetStatus(ctx context.Context, providerID, date, shift, status string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	key := model.SlotKey(providerID, date, shift)
	filter := bson.M{
		"_id":    key,
		"status": bson.M{"$ne": model.SlotBooked},
	}
	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
		"$setOnInsert": bson.M{
			"provider_id": providerID,
			"date":        date,
			"shift":       shift,
		},
		"$unset": bson.M{"booking_id": ""},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return availabilityerrors.ErrCannotModifyBookedSlot
		}
		return fmt.Errorf("failed to set slot status: %w", err)
	}

	return nil
}

// Book uses the same upsert trick as SetStatus with a stricter filter:
// only a document already marked available matches, and a missing
// document (implicitly available) inserts. A blocked or booked slot
// surfaces as a duplicate-key failure.
func (r *mongoSlotRepository) Book(ctx context.Context, providerID, date, shift, bookingID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	key := model.SlotKey(providerID, date, shift)
	filter := bson.M{
		"_id":    key,
		"status": model.SlotAvailable,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     model.SlotBooked,
			"booking_id": bookingID,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
		"$setOnInsert": bson.M{
			"provider_id": providerID,
			"date":        date,
			"shift":       shift,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return availabilityerrors.ErrSlotUnavailable
		}
		return fmt.Errorf("failed to book slot: %w", err)
	}

	return nil
}

func (r *mongoSlotRepository) Release(ctx context.Context, providerID, date, shift, bookingID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id":        model.SlotKey(providerID, date, shift),
		"status":     model.SlotBooked,
		"booking_id": bookingID,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     model.SlotAvailable,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
		"$unset": bson.M{"booking_id": ""},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}
	if result.MatchedCount == 0 {
		return availabilityerrors.ErrSlotNotFound
	}

	return nil
}

// withTimeout wraps the context with a timeout unless it is already a
// transaction session context, which must not be re-wrapped.
func (r *mongoSlotRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
