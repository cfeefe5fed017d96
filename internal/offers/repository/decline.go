package repository

import (
	"context"
	"fmt"
	"sudsy/pkg/config"
	"sudsy/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DeclineCollectionName = "OfferDeclines"
)

// DeclineRepository stores per-provider offer dismissals. Declines are
// a view preference only and never touch booking state.
type DeclineRepository interface {
	Save(ctx context.Context, decline *model.OfferDecline) error
	FindByProvider(ctx context.Context, providerID string) ([]*model.OfferDecline, error)
}

type mongoDeclineRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoDeclineRepository(cfg *config.Config) DeclineRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoDeclineRepository{
		cfg:        cfg,
		collection: db.Collection(DeclineCollectionName),
	}
}

// Save upserts so declining twice is a no-op.
func (r *mongoDeclineRepository) Save(ctx context.Context, decline *model.OfferDecline) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	decline.ID = model.DeclineKey(decline.BookingID, decline.ProviderID)

	filter := bson.M{"_id": decline.ID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"booking_id":  decline.BookingID,
			"provider_id": decline.ProviderID,
			"created_at":  time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	if _, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to save offer decline: %w", err)
	}
	return nil
}

func (r *mongoDeclineRepository) FindByProvider(ctx context.Context, providerID string) ([]*model.OfferDecline, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"provider_id": providerID})
	if err != nil {
		return nil, fmt.Errorf("failed to find declines: %w", err)
	}
	defer cursor.Close(ctx)

	var declines []*model.OfferDecline
	if err = cursor.All(ctx, &declines); err != nil {
		return nil, fmt.Errorf("failed to decode declines: %w", err)
	}

	return declines, nil
}
