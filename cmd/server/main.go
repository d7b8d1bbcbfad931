package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"                   // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // request logging and panic recovery
	"github.com/labstack/gommon/log"                // process-level logging
	"github.com/redis/go-redis/v9"                  // session store, rate limiter and cache backend

	"github.com/iliyamo/hotel-booking-web/internal/client"
	"github.com/iliyamo/hotel-booking-web/internal/config"
	"github.com/iliyamo/hotel-booking-web/internal/database"
	"github.com/iliyamo/hotel-booking-web/internal/flow"
	"github.com/iliyamo/hotel-booking-web/internal/handler"
	"github.com/iliyamo/hotel-booking-web/internal/middleware"
	"github.com/iliyamo/hotel-booking-web/internal/repository"
	"github.com/iliyamo/hotel-booking-web/internal/router"
	"github.com/iliyamo/hotel-booking-web/internal/service"
	"github.com/iliyamo/hotel-booking-web/internal/session"
)

func main() {
	cfg := config.Load() // Load environment config

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Logger.SetLevel(config.ParseLogLevel(cfg.LogLevel))
	e.Use(echomw.RequestID(), echomw.Logger(), echomw.Recover())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]handler.Check{}

	// Redis is mandatory for the redis session store; the rate limiter and
	// response cache use it when present.
	var rdb *redis.Client
	var store session.Store
	switch cfg.SessionStore {
	case "memory":
		e.Logger.Warn("session store: memory (drafts are lost on restart)")
		store = session.NewMemoryStore()
	default:
		var err error
		rdb, err = config.NewRedisClient(ctx)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		store = session.NewRedisStore(rdb, "", cfg.SessionTTL)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	opts := client.Options{Timeout: cfg.ServiceTimeout}
	deps := flow.Deps{
		Store:    store,
		Rooms:    client.NewRoomsClient(cfg.RoomsURL, opts),
		Guests:   client.NewGuestClient(cfg.GuestURL, opts),
		Bookings: client.NewBookingClient(cfg.BookingURL, opts),
		Payments: client.NewPaymentClient(client.PaymentConfig{
			IntentURL:      cfg.PaymentIntentURL,
			ProcessorURL:   cfg.PaymentProcessorURL,
			PublishableKey: cfg.PaymentPublishableKey,
		}, opts),
		Logger: e.Logger,
	}

	// Confirmation records are optional.
	var confirmations handler.ConfirmationLookup
	if cfg.DatabaseEnabled() {
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("mysql: %v", err)
		}
		defer db.Close()
		if err := database.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("mysql: %v", err)
		}
		repo := repository.NewConfirmationRepo(db)
		deps.Confirmations = repo
		confirmations = repo
		checks["mysql"] = pingDB(db)
	} else {
		e.Logger.Info("DB_HOST not set: confirmation records disabled")
	}

	if cfg.RabbitURL != "" {
		deps.Events = service.NewPublisher(cfg.RabbitURL)
	} else {
		e.Logger.Info("RABBITMQ_URL not set: booking.confirmed events disabled")
	}

	f := flow.New(deps, flow.Policy{
		DateShiftDays:   cfg.DateShiftDays,
		StrictRoomTypes: cfg.StrictRoomTypes,
		Currency:        cfg.PaymentCurrency,
	})

	mws := router.Middlewares{
		Session: middleware.SessionCookie(middleware.SessionCookieConfig{
			Secret: cfg.SessionSecret,
			Name:   cfg.SessionCookie,
			TTL:    cfg.SessionTTL,
			Secure: cfg.Env == "prod" || cfg.Env == "production",
		}),
	}
	if rdb != nil {
		mws.RateLimit = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
		mws.Cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}

	router.RegisterRoutes(e, &handler.HealthHandler{Checks: checks}) // Register health check
	router.RegisterBooking(e, handler.NewBookingHandler(f, confirmations), mws)

	addr := ":" + cfg.Port
	go func() {
		e.Logger.Infof("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	e.Logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Errorf("graceful shutdown failed: %v", err)
		os.Exit(1)
	}
}

func pingDB(db *sql.DB) handler.Check {
	return func(ctx context.Context) error { return db.PingContext(ctx) }
}
