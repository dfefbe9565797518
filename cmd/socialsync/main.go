package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"social_sync/internal/api"
	"social_sync/internal/config"
	"social_sync/internal/domain"
	"social_sync/internal/lock"
	"social_sync/internal/publisher"
	"social_sync/internal/scheduler"
	"social_sync/internal/scraper/apify"
	"social_sync/internal/service"
	"social_sync/internal/source"
	"social_sync/internal/source/instagram"
	"social_sync/internal/source/tiktok"
	"social_sync/internal/source/twitter"
	"social_sync/internal/source/youtube"
	"social_sync/internal/storage/memory"
	"social_sync/internal/storage/postgres"
)

type adapterFactory func(backend source.Backend, cfg source.Config, logger *slog.Logger) service.Adapter

type platformEntry struct {
	platform domain.Platform
	input    apify.InputFunc
	build    adapterFactory
}

var platforms = []platformEntry{
	{
		platform: domain.PlatformTwitter,
		input:    twitter.ActorInput,
		build: func(b source.Backend, c source.Config, l *slog.Logger) service.Adapter {
			return twitter.New(b, c, l)
		},
	},
	{
		platform: domain.PlatformInstagram,
		input:    instagram.ActorInput,
		build: func(b source.Backend, c source.Config, l *slog.Logger) service.Adapter {
			return instagram.New(b, c, l)
		},
	},
	{
		platform: domain.PlatformTikTok,
		input:    tiktok.ActorInput,
		build: func(b source.Backend, c source.Config, l *slog.Logger) service.Adapter {
			return tiktok.New(b, c, l)
		},
	},
	{
		platform: domain.PlatformYouTube,
		input:    youtube.ActorInput,
		build: func(b source.Backend, c source.Config, l *slog.Logger) service.Adapter {
			return youtube.New(b, c, l)
		},
	},
}

type redisPinger struct {
	rdb *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	health := make(map[string]api.Pinger)

	// Account store
	var store service.AccountStore
	switch cfg.Storage.Driver {
	case "memory":
		logger.Warn("using in-memory store; data is lost on restart")
		store = memory.New()
	default:
		db, err := postgres.Connect(cfg.Database.DSN())
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		logger.Info("connected to database")

		if err := postgres.Migrate(db.DB, logger); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		store = postgres.NewStore(db)
		health["database"] = db
	}

	// Event publisher
	var pub service.Publisher
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	} else {
		logger.Info("rabbitmq not configured; account events are not published")
	}

	// Sync locks
	var locker service.Locker
	if cfg.Redis.URL != "" {
		rdb, err := lock.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		locker = lock.NewRedis(rdb, cfg.Redis.KeyPrefix, logger)
		health["redis"] = redisPinger{rdb: rdb}
	} else {
		locker = lock.NewLocal()
	}

	// Scraping backend and platform adapters
	client := apify.New(apify.Config{
		BaseURL:        cfg.Scraper.BaseURL,
		Token:          cfg.Scraper.Token,
		Timeout:        cfg.Scraper.Timeout,
		RatePerSecond:  cfg.Scraper.Rate.PerSecond,
		Burst:          cfg.Scraper.Rate.Burst,
		MaxAttempts:    cfg.Scraper.Retry.MaxAttempts,
		InitialBackoff: cfg.Scraper.Retry.InitialBackoff,
		MaxBackoff:     cfg.Scraper.Retry.MaxBackoff,
	}, logger)

	adapters := make([]service.Adapter, 0, len(platforms))
	for _, p := range platforms {
		pc := cfg.Platform(p.platform)
		actor := apify.NewActor(client, apify.ActorConfig{
			ActorID:       pc.ActorID,
			Input:         p.input,
			WaitForFinish: cfg.Scraper.WaitForFinish,
			RunTimeout:    cfg.Scraper.RunTimeout,
			DatasetLimit:  pc.MaxItems * 2,
		}, logger)
		adapters = append(adapters, p.build(actor, source.Config{MaxItems: pc.MaxItems}, logger))

		logger.Info("platform enabled",
			"platform", p.platform,
			"actor", pc.ActorID,
			"max_items", pc.MaxItems,
			"ttl", pc.TTL,
		)
	}

	accounts := service.NewAccountService(adapters, store, locker, pub, cfg.TTLs(), logger, cfg.Sync)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	sched := scheduler.NewScheduler(accounts, cfg.Sync.RefreshInterval, 0, logger)
	go func() {
		if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("scheduler error", "error", err)
		}
	}()

	handler := api.NewHandler(accounts, health, logger)
	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      api.NewRouter(handler, api.NewLimiter(cfg.HTTP.RatePerMinute)),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown error", "error", err)
		}
	}()

	logger.Info("starting social sync",
		"addr", cfg.HTTP.Addr,
		"storage", cfg.Storage.Driver,
		"refresh_interval", cfg.Sync.RefreshInterval,
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server error", "error", err)
		cancel()
		return
	}
	<-shutdownDone
	logger.Info("stopped")
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
