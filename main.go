package main

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hanksha/turf-booking-backend/api"
	"github.com/hanksha/turf-booking-backend/catalog"
	"github.com/hanksha/turf-booking-backend/config"
	"github.com/hanksha/turf-booking-backend/enrichment"
	"github.com/hanksha/turf-booking-backend/events"
	"github.com/hanksha/turf-booking-backend/identity"
	"github.com/hanksha/turf-booking-backend/reservation"
	"github.com/hanksha/turf-booking-backend/store"
	"github.com/hanksha/turf-booking-backend/workflow"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

//go:embed database/setup.sql
var setupSQL string

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file loaded", "err", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)
	logger = logger.With("component", "main")
	logger.Info("starting turf booking backend", "environment", cfg.Environment, "store", cfg.StoreBackend)

	ctx := context.Background()

	remote, profiles, closeRemote, err := connectStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to the primary store", "err", err)
		os.Exit(1)
	}
	defer closeRemote()

	local, err := store.OpenLocal(cfg.FallbackPath)
	if err != nil {
		logger.Error("failed to open fallback store", "path", cfg.FallbackPath, "err", err)
		os.Exit(1)
	}
	defer local.Close()

	gateway := store.NewGateway(remote, local)

	rdb := connectRedis(ctx, cfg, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	var publisher workflow.EventPublisher = events.Noop{}
	if cfg.RabbitMQURL != "" {
		p, err := events.Dial(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			logger.Warn("booking events disabled", "err", err)
		} else {
			defer p.Close()
			publisher = p
			logger.Info("connected to RabbitMQ", "exchange", cfg.EventsExchange)
		}
	}

	gemini := enrichment.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)

	supabaseClient, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, nil)
	if err != nil {
		logger.Error("failed to create Supabase client", "err", err)
		os.Exit(1)
	}

	identityService := identity.NewService(identity.NewSupabaseProvider(supabaseClient, cfg.SupabaseServiceKey), profiles, gateway)
	catalogService := catalog.NewService(gateway)
	reservationService := reservation.NewService(gateway, publisher)
	workflows := workflow.NewManager(
		workflow.Deps{
			Gateway:   gateway,
			Enricher:  gemini,
			Publisher: publisher,
			Holder:    store.NewSlotLock(rdb),
		},
		workflow.Options{
			SettlementDelay: cfg.SettlementDelay,
			WindowDays:      cfg.BookingWindowDays,
			HoldTTL:         cfg.SlotHoldTTL,
		},
		cfg.WorkflowTTL,
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", api.SourceHeader},
		AllowCredentials: true,
	}))
	r.Use(api.RequestID())
	r.Use(api.StructuredLogger(slog.Default().With("component", "http")))
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	session := api.SessionAuth(identityService)

	// AUTH API

	api.NewAuthHandler(identityService).Register(v1.Group("/auth"))

	// VENUE API

	venueRouter := v1.Group("/venues")
	venueRouter.Use(session)
	api.NewVenueHandler(catalogService, reservationService).Register(venueRouter)

	// BOOKING API

	bookingRouter := v1.Group("/bookings")
	bookingRouter.Use(session)
	api.NewBookingHandler(reservationService).Register(bookingRouter)

	// RESERVATION API

	reservationRouter := v1.Group("/reservations")
	reservationRouter.Use(session, api.RequireRole(identity.RolePlayer))
	api.NewReservationHandler(workflows).Register(reservationRouter)

	// ASSIST API

	assistRouter := v1.Group("")
	assistRouter.Use(session)
	api.NewAssistHandler(gemini).Register(assistRouter)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server is shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "err", err)
	}

	if err := workflows.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to drain reservations", "err", err)
	}

	logger.Info("server exited")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// connectStore opens the primary store selected by STORE_BACKEND along with
// the profile repository living next to it.
func connectStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Backend, identity.ProfileRepository, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		logger.Info("connecting to MongoDB")
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDBURI))
		if err != nil {
			return nil, nil, nil, err
		}

		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			return nil, nil, nil, err
		}

		db := client.Database(cfg.MongoDBDatabase)
		backend := store.NewMongo(db)
		if err := backend.EnsureIndexes(ctx); err != nil {
			return nil, nil, nil, err
		}
		logger.Info("initialized MongoDB indexes", "database", cfg.MongoDBDatabase)

		closer := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Error("error disconnecting from MongoDB", "err", err)
			}
		}
		return backend, identity.NewMongoProfiles(db), closer, nil

	default:
		logger.Info("connecting to PostgreSQL database")
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}

		if _, err := pool.Exec(ctx, setupSQL); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		logger.Info("initialized database tables")

		return store.NewPostgres(pool), identity.NewPostgresProfiles(pool), pool.Close, nil
	}
}

// connectRedis returns nil when Redis is not configured or unreachable. Slot
// holds are skipped in that case.
func connectRedis(ctx context.Context, cfg *config.Config, logger *slog.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		logger.Info("redis not configured, slot holds disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, slot holds disabled", "addr", cfg.RedisAddr, "err", err)
		rdb.Close()
		return nil
	}

	logger.Info("connected to Redis", "addr", cfg.RedisAddr)
	return rdb
}
