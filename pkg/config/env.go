package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvCatalogPath = "CATALOG_PATH"

	EnvTaxRateBps         = "TAX_RATE_BPS"
	EnvPetSurchargeCents  = "PET_SURCHARGE_CENTS"
	EnvPriceRoundStep     = "PRICE_ROUND_STEP_CENTS"
	EnvHorizonWeeks       = "AVAILABILITY_HORIZON_WEEKS"
	EnvOfferExpiryMinutes = "OFFER_EXPIRY_MINUTES"
	EnvAcceptLockTTL      = "ACCEPT_LOCK_TTL"
)
