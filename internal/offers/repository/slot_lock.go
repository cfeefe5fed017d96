package repository

import (
	"context"
	"fmt"
	offerserrors "sudsy/internal/offers/errors"
	"sudsy/pkg/config"
	"sudsy/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	SlotLockCollectionName = "SlotLocks"
)

// SlotLockRepository manages the advisory locks that serialize
// acceptance attempts on one provider slot. The unique _id insert is
// the serialization point; a TTL index on expires_at reaps locks
// orphaned by crashes.
type SlotLockRepository interface {
	Create(ctx context.Context, lock *model.SlotLock) error
	Delete(ctx context.Context, id string) error
}

type mongoSlotLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		cfg:        cfg,
		collection: db.Collection(SlotLockCollectionName),
	}
}

func (r *mongoSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	lock.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return offerserrors.ErrLockHeld
		}
		return fmt.Errorf("failed to create slot lock: %w", err)
	}
	return nil
}

func (r *mongoSlotLockRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete slot lock: %w", err)
	}
	return nil
}
