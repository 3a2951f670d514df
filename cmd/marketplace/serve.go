package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/kyzmat/marketplace/internal/api"
	"github.com/kyzmat/marketplace/internal/core/ports"
	"github.com/kyzmat/marketplace/internal/core/service"
	"github.com/kyzmat/marketplace/internal/i18n"
	"github.com/kyzmat/marketplace/internal/infrastructure/db/memory"
	mongostore "github.com/kyzmat/marketplace/internal/infrastructure/db/mongo"
	redisstore "github.com/kyzmat/marketplace/internal/infrastructure/db/redis"
	"github.com/kyzmat/marketplace/internal/infrastructure/queue"
	"github.com/kyzmat/marketplace/internal/infrastructure/realtime"
	"github.com/kyzmat/marketplace/internal/infrastructure/scheduler"
	"github.com/kyzmat/marketplace/internal/infrastructure/seed"
	"github.com/kyzmat/marketplace/internal/pkg/config"
	"github.com/kyzmat/marketplace/pkg/logger"
)

const (
	shutdownTimeout = 15 * time.Second
	devJWTSecret    = "dev-secret-change-me"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "marketplace",
	})
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty, using the development secret")
		cfg.JWTSecret = devJWTSecret
	}

	tr, err := i18n.New(cfg.DefaultLanguage)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, mongoDB, closeStorage, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	var rdb goredis.Cmdable
	if cfg.Redis.Enabled {
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
			Timeout:  cfg.Redis.Timeout,
		})
		if err != nil {
			return err
		}
		defer client.Close()
		rdb = client
		repos.Preferences = redisstore.NewPreferenceStore(client)
		repos.Idempotency = redisstore.NewIdempotencyStore(client)
		log.Info().Str("addr", cfg.Redis.Addr).Int("db", cfg.Redis.DB).Int("pool_size", cfg.Redis.PoolSize).
			Msg("redis enabled for preferences and idempotency keys")
	}

	if cfg.SeedFile != "" {
		fixture, err := seed.Load(cfg.SeedFile)
		if err != nil {
			return err
		}
		res, err := seed.Apply(ctx, repos, fixture, seed.Options{})
		if err != nil {
			return err
		}
		log.Info().Str("file", cfg.SeedFile).Int("users", res.Users).Int("jobs", res.Jobs).
			Int("reports", res.Reports).Msg("seed applied")
	}

	// --- Services ---
	notifications := service.NewNotificationService(repos.Notifications, logger.Component("notifications"))
	dispatcher := queue.NewDispatcher(cfg.Notifications.Workers, notifications, logger.Component("dispatcher"))
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher.Start(workerCtx)

	hub := realtime.NewHub(logger.Component("realtime"))
	limiter := service.NewKeyedLimiter(cfg.Chat.RatePerSec, cfg.Chat.Burst)

	auth := service.NewAuthService(repos.Users, cfg.JWTSecret, cfg.TokenTTL)
	jobs := service.NewJobService(repos.Jobs, repos.Idempotency, dispatcher, logger.Component("jobs"))
	chat := service.NewChatService(repos.Chats, repos.Jobs, repos.Users, hub, dispatcher, limiter, logger.Component("chat"))
	moderation := service.NewModerationService(repos.Users, repos.Jobs, repos.Reports, logger.Component("moderation"))

	refresher, err := scheduler.NewStatsRefresher(cfg.Stats.Schedule, moderation, logger.Component("scheduler"))
	if err != nil {
		stopWorkers()
		return err
	}
	refresher.Start(ctx)

	deps := api.Dependencies{
		Auth:          auth,
		Jobs:          jobs,
		Chat:          chat,
		Notifications: notifications,
		Moderation:    moderation,
		Preferences:   service.NewPreferenceService(repos.Preferences),
		Streamer:      hub,
		Translator:    tr,
		JWTSecret:     cfg.JWTSecret,
		Version:       version,
		Mongo:         mongoDB,
		Redis:         rdb,
		Log:           log,
	}
	e := api.NewRouter(deps)
	// Request contexts derive from ctx so open chat streams end on shutdown.
	e.Server.BaseContext = func(net.Listener) context.Context { return ctx }

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("storage", cfg.StorageDriver).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		refresher.Stop(shutdownCtx)
		return e.Shutdown(shutdownCtx)
	})
	err = g.Wait()

	stopWorkers()
	dispatcher.Wait()
	log.Info().Msg("server stopped")
	return err
}

// openStorage builds the repositories for cfg.StorageDriver. Preferences and
// idempotency keys always start in memory; Redis replaces them when enabled.
func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*ports.Repositories, *mongo.Database, func(), error) {
	if cfg.StorageDriver != config.StorageMongo {
		log.Info().Msg("using in-memory storage")
		return memory.NewRepositories(), nil, func() {}, nil
	}

	client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}

	store := mongostore.NewStore(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		closeFn()
		return nil, nil, nil, fmt.Errorf("mongo indexes: %w", err)
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")

	return &ports.Repositories{
		Users:         store.Users,
		Jobs:          store.Jobs,
		Chats:         store.Chats,
		Notifications: store.Notifications,
		Reports:       store.Reports,
		Preferences:   memory.NewPreferenceStore(),
		Idempotency:   memory.NewIdempotencyStore(),
	}, db, closeFn, nil
}
