package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"hotelms/docs"
	"hotelms/internal/auth"
	"hotelms/internal/cache"
	"hotelms/internal/config"
	"hotelms/internal/db"
	"hotelms/internal/events"
	"hotelms/internal/handler"
	"hotelms/internal/logger"
	"hotelms/internal/mailer"
	"hotelms/internal/payment"
	"hotelms/internal/repository"
	"hotelms/internal/router"
	"hotelms/internal/scheduler"
	"hotelms/internal/service"
	"hotelms/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// @title Hotel Reservation API
// @version 1.0
// @description Room inventory, bookings with payment holds, and customer accounts.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Init(cfg.LogLevel, cfg.LogFormat)

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		return err
	}
	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			return err
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(context.Background()); err != nil {
		log.Warn("redis unavailable, caching disabled until it recovers", "error", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	otpRepo := repository.NewOTPRepository(gormDB)
	roomTypeRepo := repository.NewRoomTypeRepository(gormDB)
	roomRepo := repository.NewRoomRepository(gormDB)
	bookingRepo := repository.NewBookingRepository(gormDB)
	paymentRepo := repository.NewPaymentRepository(gormDB)
	paymentLogRepo := repository.NewPaymentLogRepository(gormDB)
	tx := repository.NewTransactor(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize integrations
	gateway, err := newGateway(cfg, log)
	if err != nil {
		return err
	}
	mail, err := newMailer(cfg, log)
	if err != nil {
		return err
	}
	publisher := newPublisher(cfg, log)
	defer publisher.Close()
	uploader := newUploader(cfg, log)

	// Initialize services
	logWriter := service.NewPaymentLogWriter(paymentLogRepo)
	defer logWriter.Close()

	otpService := service.NewOTPService(otpRepo, userRepo, cacheClient, mail, service.OTPConfig{
		TTL:            cfg.OTPTTL,
		ResendCooldown: cfg.OTPResendCooldown,
		MaxAttempts:    cfg.OTPMaxAttempts,
	})
	authService := service.NewAuthService(userRepo, otpService, jwtService, tokenStore, cfg.AdminSignupKey)
	roomTypeService := service.NewRoomTypeService(roomTypeRepo, roomRepo, cacheClient, uploader)
	roomService := service.NewRoomService(tx, roomRepo, roomTypeRepo)
	canceller := service.NewIntentCanceller(paymentRepo, gateway, logWriter)
	bookingService := service.NewBookingService(tx, bookingRepo, userRepo, canceller, publisher, mail, service.BookingConfig{
		HoldTTL:  cfg.BookingHoldTTL,
		Currency: cfg.Currency,
	})
	paymentService := service.NewPaymentService(paymentRepo, bookingRepo, userRepo, gateway, canceller, bookingService, logWriter)
	catalogService := service.NewCatalogService(roomTypeRepo, roomRepo, userRepo, cacheClient)

	jobs, err := scheduler.New(log, cfg.ExpirySweepSpec, bookingService, otpService)
	if err != nil {
		return err
	}

	// Register routes
	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Security{JWT: jwtService, Tokens: tokenStore}, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		OTP:      handler.NewOTPHandler(otpService),
		RoomType: handler.NewRoomTypeHandler(roomTypeService),
		Room:     handler.NewRoomHandler(roomService),
		Booking:  handler.NewBookingHandler(bookingService, paymentService),
		Payment:  handler.NewPaymentHandler(paymentService),
		Seed:     handler.NewSeedHandler(catalogService),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	jobs.Start()

	addr := ":" + cfg.ServerPort
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", addr, "gateway", gateway.Name(), "swagger", "/swagger/index.html")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	jobs.Stop(shutdownCtx)
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "error", err)
	}
	return nil
}

func newGateway(cfg *config.Config, log *slog.Logger) (payment.Gateway, error) {
	if cfg.Stripe.SecretKey != "" {
		return payment.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	}
	if cfg.IsProduction() {
		return nil, errors.New("STRIPE_SECRET_KEY must be set in production")
	}
	log.Warn("STRIPE_SECRET_KEY not set, using the local payment gateway")
	if cfg.Stripe.WebhookSecret == "" {
		log.Warn("STRIPE_WEBHOOK_SECRET not set, local webhooks are signed with a random key")
	}
	return payment.NewLocalGateway(cfg.Stripe.WebhookSecret), nil
}

func newMailer(cfg *config.Config, log *slog.Logger) (mailer.Mailer, error) {
	if cfg.Mail.APIKey == "" {
		log.Warn("MAILERSEND_API_KEY not set, emails are logged instead of sent")
		return mailer.NewLogMailer(log), nil
	}
	return mailer.NewMailerSend(cfg.Mail.APIKey, cfg.Mail.FromName, cfg.Mail.FromEmail)
}

func newPublisher(cfg *config.Config, log *slog.Logger) events.Publisher {
	if cfg.NATSURL != "" {
		p, err := events.NewNATSPublisher(cfg.NATSURL, "hotel")
		if err == nil {
			return p
		}
		log.Error("nats unavailable, events are logged instead", "error", err)
	}
	return events.NewLogPublisher(log)
}

// newUploader returns nil when no bucket is configured, which disables image uploads.
func newUploader(cfg *config.Config, log *slog.Logger) storage.Uploader {
	if cfg.S3.Bucket == "" {
		return nil
	}
	u, err := storage.NewS3Uploader(context.Background(), storage.S3Config{
		Bucket:          cfg.S3.Bucket,
		Region:          cfg.S3.Region,
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		PublicBaseURL:   cfg.S3.PublicBaseURL,
	})
	if err != nil {
		log.Error("s3 unavailable, image uploads disabled", "error", err)
		return nil
	}
	return u
}
