package repository

import (
	"context"
	"errors"
	"fmt"
	pricingerrors "sudsy/internal/pricing/errors"
	"sudsy/pkg/config"
	"sudsy/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	PromoCollectionName = "PromoCodes"
)

type PromoRepository interface {
	Create(ctx context.Context, promo *model.PromoCode) error
	FindByCode(ctx context.Context, code string) (*model.PromoCode, error)
	// Redeem increments the use count, guarded so the count can never
	// exceed max_uses under concurrent redemptions. It is called inside
	// the booking-commit transaction, never at quote time.
	Redeem(ctx context.Context, code string) error
}

type mongoPromoRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPromoRepository(cfg *config.Config) PromoRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPromoRepository{
		cfg:        cfg,
		collection: db.Collection(PromoCollectionName),
	}
}

func (r *mongoPromoRepository) Create(ctx context.Context, promo *model.PromoCode) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	promo.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.collection.InsertOne(ctx, promo); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return pricingerrors.ErrPromoExists
		}
		return fmt.Errorf("failed to create promo code: %w", err)
	}
	return nil
}

func (r *mongoPromoRepository) FindByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var promo model.PromoCode
	err := r.collection.FindOne(ctx, bson.M{"_id": code}).Decode(&promo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pricingerrors.ErrPromoNotFound
		}
		return nil, fmt.Errorf("failed to find promo code: %w", err)
	}

	return &promo, nil
}

func (r *mongoPromoRepository) Redeem(ctx context.Context, code string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id":   code,
		"$expr": bson.M{"$lt": bson.A{"$current_uses", "$max_uses"}},
	}
	update := bson.M{"$inc": bson.M{"current_uses": 1}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to redeem promo code: %w", err)
	}

	if result.MatchedCount == 0 {
		// Either the code is gone or another commit just took the last
		// use. Distinguish for the caller.
		if _, findErr := r.FindByCode(ctx, code); findErr != nil {
			return findErr
		}
		return pricingerrors.ErrPromoExhausted
	}

	return nil
}

// withTimeout wraps the context with a timeout unless it is already a
// transaction session context, which must not be re-wrapped.
func (r *mongoPromoRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
