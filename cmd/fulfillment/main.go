package main

import (
	"os"

	availabilityhandler "sudsy/internal/availability/handler"
	availabilityrepo "sudsy/internal/availability/repository"
	availabilityservice "sudsy/internal/availability/service"
	bookingshandler "sudsy/internal/bookings/handler"
	bookingsrepo "sudsy/internal/bookings/repository"
	bookingsservice "sudsy/internal/bookings/service"
	bookingsvalidator "sudsy/internal/bookings/validator"
	"sudsy/internal/catalog"
	directoryhandler "sudsy/internal/directory/handler"
	directoryrepo "sudsy/internal/directory/repository"
	directoryservice "sudsy/internal/directory/service"
	directoryvalidator "sudsy/internal/directory/validator"
	matchingservice "sudsy/internal/matching/service"
	"sudsy/internal/notify"
	offershandler "sudsy/internal/offers/handler"
	offersrepo "sudsy/internal/offers/repository"
	offersservice "sudsy/internal/offers/service"
	pricinghandler "sudsy/internal/pricing/handler"
	pricingrepo "sudsy/internal/pricing/repository"
	pricingservice "sudsy/internal/pricing/service"
	"sudsy/pkg/app"
	"sudsy/pkg/config"
	"sudsy/pkg/contracts"
	"sudsy/pkg/kafka"
	kafka_config "sudsy/pkg/kafka/config"
)

const ServiceName = "fulfillment-engine"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting fulfillment engine")

	publisher := initPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close notification publisher", "error", err)
		}
	}()

	handlers := initHandlers(cfg, publisher)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handlers...)
	serverApp.Run()
}

// initPublisher falls back to a no-op sink when no broker is
// configured, so the engine stays usable in local development.
func initPublisher(cfg *config.Config) notify.Publisher {
	if os.Getenv(kafka_config.EnvKafkaBrokers) == "" {
		cfg.Log.Warn("Kafka brokers not configured, notifications disabled")
		return notify.NopPublisher{}
	}

	producer, err := kafka.NewProducer(kafka_config.Load(), notify.Topic, notify.DLQTopic)
	if err != nil {
		cfg.Log.Error("Failed to initialize Kafka producer, notifications disabled", "error", err)
		return notify.NopPublisher{}
	}

	cfg.Log.Info("Notification publisher initialized", "topic", notify.Topic)
	return notify.NewKafkaPublisher(producer, cfg.Log)
}

func initHandlers(cfg *config.Config, publisher notify.Publisher) []contracts.Handler {
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		cfg.Log.Fatal("Failed to load service catalog", "path", cfg.CatalogPath, "error", err)
	}

	providerRepo := directoryrepo.NewMongoProviderRepository(cfg)
	propertyRepo := directoryrepo.NewMongoPropertyRepository(cfg)
	promoRepo := pricingrepo.NewMongoPromoRepository(cfg)
	slotRepo := availabilityrepo.NewMongoSlotRepository(cfg)
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	lockRepo := offersrepo.NewMongoSlotLockRepository(cfg)
	declineRepo := offersrepo.NewMongoDeclineRepository(cfg)

	engine := pricingservice.NewEngine(cat, cfg.TaxRateBps, cfg.PetSurchargeCents, cfg.PriceRoundStep)
	promoValidator := pricingservice.NewPromoValidator(promoRepo)

	directorySvc := directoryservice.NewDirectoryService(
		providerRepo,
		propertyRepo,
		directoryvalidator.NewDirectoryValidator(cfg.Log),
		cfg,
	)
	pricingSvc := pricingservice.NewPricingService(engine, promoValidator, promoRepo, propertyRepo, cfg)
	availabilitySvc := availabilityservice.NewAvailabilityService(slotRepo, cfg)
	matcherSvc := matchingservice.NewMatcherService(providerRepo, propertyRepo, cfg)
	bookingSvc := bookingsservice.NewBookingService(
		bookingRepo,
		promoRepo,
		propertyRepo,
		availabilitySvc,
		engine,
		promoValidator,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)
	offerSvc := offersservice.NewOfferService(
		bookingRepo,
		slotRepo,
		lockRepo,
		declineRepo,
		matcherSvc,
		publisher,
		cfg,
	)

	cfg.Log.Info("Fulfillment services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		directoryhandler.NewDirectoryHandler(directorySvc, cfg.Log),
		pricinghandler.NewQuoteHandler(pricingSvc, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availabilitySvc, cfg.Log),
		bookingshandler.NewBookingHandler(bookingSvc, cfg.Log),
		offershandler.NewOfferHandler(offerSvc, cfg.Log),
	}
}
