package app

import (
	"database/sql"
	"net/http"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"travel/internal/chapa"
	"travel/internal/config"
	"travel/internal/email"
	internalRedis "travel/internal/redis"
	"travel/internal/repository/postgres"
	"travel/internal/service"
)

// Services holds the wired application services.
type Services struct {
	Users    *service.UserService
	Listings *service.ListingService
	Bookings *service.BookingService
	Reviews  *service.ReviewService
	Payments *service.PaymentService
}

// NewServices wires repositories, Redis stores and external clients into services.
func NewServices(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, logger *zap.Logger) *Services {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	userRepo := postgres.NewUserRepository(db)
	listingRepo := postgres.NewListingRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	transactor := postgres.NewTransactor(db)

	return &Services{
		Users:    service.NewUserService(userRepo),
		Listings: service.NewListingService(listingRepo, userRepo, cacheStore, logger),
		Bookings: service.NewBookingService(transactor, bookingRepo, listingRepo, lockStore, logger),
		Reviews:  service.NewReviewService(reviewRepo, bookingRepo),
		Payments: NewPaymentService(db, nrApp, cfg, logger),
	}
}

// NewPaymentService wires the payment workflow alone. It needs no Redis.
func NewPaymentService(db *sql.DB, nrApp *newrelic.Application, cfg *config.Config, logger *zap.Logger) *service.PaymentService {
	var transport http.RoundTripper = http.DefaultTransport
	if nrApp != nil {
		transport = newrelic.NewRoundTripper(transport)
	}

	gateway := chapa.NewClient(chapa.Config{
		BaseURL:          cfg.Chapa.BaseURL,
		SecretKey:        cfg.Chapa.SecretKey,
		Timeout:          cfg.Chapa.Timeout,
		MaxAttempts:      cfg.Chapa.MaxAttempts,
		RetryInterval:    cfg.Chapa.RetryInterval,
		BreakerThreshold: cfg.Chapa.BreakerThreshold,
	}, transport, logger.Named("chapa"))

	var sender service.EmailSender
	if cfg.SendGrid.APIKey != "" {
		sender = email.NewSendGridSender(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	} else {
		logger.Info("SENDGRID_API_KEY not set, notifications are logged only")
		sender = email.NewLogSender(logger.Named("email"))
	}

	return service.NewPaymentService(
		service.PaymentConfig{
			Currency:         cfg.Payment.Currency,
			CallbackURL:      cfg.Payment.CallbackURL,
			DefaultReturnURL: cfg.Payment.DefaultReturnURL,
			WebhookSecret:    cfg.Chapa.WebhookSecret,
			CheckoutTitle:    cfg.Payment.CheckoutTitle,
		},
		gateway,
		postgres.NewTransactor(db),
		postgres.NewPaymentRepository(db),
		postgres.NewBookingRepository(db),
		postgres.NewListingRepository(db),
		postgres.NewUserRepository(db),
		service.NewNotificationService(sender, logger.Named("notification")),
		logger,
	)
}
