package main // Entry point package

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/config"
	"github.com/iliyamo/movie-booking/internal/handler"
	"github.com/iliyamo/movie-booking/internal/logger"
	"github.com/iliyamo/movie-booking/internal/middleware"
	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/queue"
	"github.com/iliyamo/movie-booking/internal/repository"
	"github.com/iliyamo/movie-booking/internal/router"
	"github.com/iliyamo/movie-booking/internal/service"
	"github.com/iliyamo/movie-booking/internal/telemetry"
	"github.com/iliyamo/movie-booking/internal/worker"
)

func main() {
	_ = godotenv.Load() // .env is optional
	cfg := config.Load()

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		stdlog.Fatalf("init logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:       cfg.Telemetry.Enabled,
		ServiceName:   cfg.Telemetry.ServiceName,
		Environment:   cfg.Env,
		CollectorAddr: cfg.Telemetry.CollectorAddr,
	})
	if err != nil {
		log.Fatal("init tracing", zap.Error(err))
	}

	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal("open storage", zap.Error(err))
	}
	st := be.stores

	rdb := config.NewRedisClient(ctx)
	if rdb == nil {
		log.Warn("redis unavailable; seat map cache and rate limiting disabled")
	}

	var mailer queue.Mailer = queue.NewFileMailer(cfg.SMTP.LogPath)
	if cfg.SMTP.Host != "" {
		mailer = queue.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Pass, cfg.SMTP.From)
	}

	var (
		notifier  service.Notifier = queue.Inline{Mailer: mailer}
		publisher *queue.Publisher
	)
	if cfg.RabbitURL != "" {
		publisher = queue.NewPublisher(cfg.RabbitURL, log.Named("publisher"))
		notifier = publisher
		consumer := queue.NewConsumer(cfg.RabbitURL, mailer, log.Named("consumer"))
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("notification consumer stopped", zap.Error(err))
			}
		}()
	}

	clock := service.SystemClock()
	reservations := service.NewReservations(st.Tx, st.Seats, clock, log.Named("reservations"))
	pricing := service.NewPricing(st.Seats, st.SeatTypes, st.Promos, clock, log.Named("pricing"))
	checkout := service.NewCheckout(service.CheckoutConfig{
		Hold:        cfg.Booking.HoldDuration,
		TokenSecret: cfg.Booking.TokenSecret,
		StaleBatch:  cfg.Booking.StaleBatch,
	}, st, reservations, pricing, notifier, clock, log.Named("checkout"))
	cancellation := service.NewCancellation(st, reservations, notifier, clock, cfg.Booking.CancelCutoff, log.Named("cancellation"))
	tickets := service.NewTickets(st)
	catalog := service.NewCatalog(st, clock, log.Named("catalog"))
	seating := service.NewSeating(st, reservations, clock, log.Named("seating"))

	if err := bootstrapAdmin(ctx, cfg, be.users, log); err != nil {
		log.Fatal("bootstrap admin", zap.Error(err))
	}

	cache := middleware.NewSeatMapCache(config.LoadCacheConfig(), rdb, "id", log.Named("cache"))
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log.Named("ratelimit"))

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(log.Named("http")))
	e.Use(echomw.Recover())

	checkoutH := handler.NewCheckoutHandler(checkout, cache, log)
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, be.users, be.tokens, log), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(catalog, seating, log), cache)
	router.RegisterCustomer(e, checkoutH, handler.NewTicketHandler(tickets, cancellation, cache, log), cfg.JWTSecret, limiter)
	router.RegisterGateway(e, checkoutH, middleware.GatewayAuth(cfg.JWTSecret, cfg.Gateway.User, cfg.Gateway.Pass))
	router.RegisterAdmin(e, handler.NewAdminHandler(catalog, seating, cache, log), cfg.JWTSecret)

	if cfg.Booking.SweepInterval > 0 {
		go worker.NewExpiryWorker(reservations, checkout, cfg.Booking.SweepInterval, log.Named("expiry")).Start(ctx)
	}

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.Store))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	if publisher != nil {
		_ = publisher.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := be.close(); err != nil {
		log.Error("close storage", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("flush traces", zap.Error(err))
	}
}

// bootstrapAdmin creates the configured ADMIN account on first start.
func bootstrapAdmin(ctx context.Context, cfg config.Config, users handler.UserStore, log *zap.Logger) error {
	b := cfg.Bootstrap
	if b.AdminEmail == "" || b.AdminPassword == "" {
		return nil
	}
	_, err := users.GetByEmail(ctx, b.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	id, err := users.Create(ctx, b.AdminEmail, "Administrator", b.AdminPassword, model.RoleAdmin, cfg.BcryptCost)
	if err != nil {
		return err
	}
	log.Info("admin account created", zap.Uint64("user_id", id), zap.String("email", b.AdminEmail))
	return nil
}
