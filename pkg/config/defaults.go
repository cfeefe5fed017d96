package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "sudsy"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	// Pricing policy. The tax rate applies to the post-rounding
	// subtotal; base price and each add-on round up to the step.
	DefaultTaxRateBps        = 800  // 8%
	DefaultPetSurchargeCents = 2000 // flat $20 when the property has pets
	DefaultPriceRoundStep    = 1000 // ceil to the nearest $10

	// Availability policy. Slots outside the horizon are rejected;
	// the soft offer expiry is advisory metadata only.
	DefaultHorizonWeeks       = 25
	DefaultOfferExpiryMinutes = 30
	DefaultAcceptLockTTL      = 10 * time.Second
)
