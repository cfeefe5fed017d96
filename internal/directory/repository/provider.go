package repository

import (
	"context"
	"errors"
	"fmt"
	directoryerrors "sudsy/internal/directory/errors"
	"sudsy/pkg/config"
	"sudsy/pkg/model"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ProviderCollectionName = "Providers"
)

type ProviderRepository interface {
	Create(ctx context.Context, provider *model.Provider) error
	FindByID(ctx context.Context, id string) (*model.Provider, error)
	// FindActive returns the snapshot of active providers the matcher
	// evaluates for a booking.
	FindActive(ctx context.Context) ([]*model.Provider, error)
	UpdateStatus(ctx context.Context, id string, status string) error
}

type mongoProviderRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoProviderRepository(cfg *config.Config) ProviderRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoProviderRepository{
		cfg:        cfg,
		collection: db.Collection(ProviderCollectionName),
	}
}

func (r *mongoProviderRepository) Create(ctx context.Context, provider *model.Provider) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if provider.ID == "" {
		provider.ID = uuid.NewString()
	}
	provider.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, provider); err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}
	return nil
}

func (r *mongoProviderRepository) FindByID(ctx context.Context, id string) (*model.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var provider model.Provider
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&provider)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, directoryerrors.ErrProviderNotFound
		}
		return nil, fmt.Errorf("failed to find provider: %w", err)
	}

	return &provider, nil
}

func (r *mongoProviderRepository) FindActive(ctx context.Context) ([]*model.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"status": model.ProviderActive}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find active providers: %w", err)
	}
	defer cursor.Close(ctx)

	var providers []*model.Provider
	if err = cursor.All(ctx, &providers); err != nil {
		return nil, fmt.Errorf("failed to decode providers: %w", err)
	}

	return providers, nil
}

func (r *mongoProviderRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("failed to update provider status: %w", err)
	}
	if result.MatchedCount == 0 {
		return directoryerrors.ErrProviderNotFound
	}
	return nil
}
