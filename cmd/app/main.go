package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"langsense-bot/internal/cache"
	"langsense-bot/internal/config"
	"langsense-bot/internal/convo"
	"langsense-bot/internal/gateway"
	"langsense-bot/internal/httpserver"
	"langsense-bot/internal/logging"
	"langsense-bot/internal/metrics"
	"langsense-bot/internal/repo"
	"langsense-bot/internal/router"
	"langsense-bot/internal/store"
	"langsense-bot/migrations"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel)
	logger.Info("starting langsense-bot", "env", cfg.AppEnv, "storage", cfg.StorageDriver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricRegistry := metrics.Registry(cfg.MetricsNamespace)

	recordStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init record store: %w", err)
	}
	defer recordStore.Close()
	recordStore = store.WithMetrics(recordStore, metricRegistry)

	var redisClient *cache.Redis
	if cfg.RedisEnabled {
		redisClient = cache.New(cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			UseTLS:   cfg.RedisTLS,
		}, logger)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("failed closing redis", "error", err)
			}
		}()
		if err := redisClient.Ping(ctx); err != nil {
			logger.Warn("redis ping failed", "error", err)
		}
	}

	repository, err := repo.New(ctx, recordStore, redisClient, logger)
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	if err := repository.Seed(ctx); err != nil {
		return fmt.Errorf("seed defaults: %w", err)
	}

	telegram, err := gateway.NewTelegram(gateway.TelegramConfig{
		Token:         cfg.TelegramToken,
		UpdateTimeout: cfg.UpdateTimeout,
		SendTimeout:   cfg.SendTimeout,
	}, logger, metricRegistry)
	if err != nil {
		return fmt.Errorf("init telegram: %w", err)
	}

	notifier := gateway.NewNotifier(telegram, cfg.AdminIDs, cfg.BroadcastConcurrency, logger, metricRegistry)
	states := convo.NewManager(cfg.ConversationTTL, metricRegistry)
	engine := convo.NewEngine(repository, telegram, notifier, states, logger, metricRegistry)
	rt := router.New(cfg, repository, engine, telegram, logger, metricRegistry)
	telegram.SetHandler(rt.Handle)

	botCtx, botCancel := context.WithCancel(ctx)
	defer botCancel()
	go func() {
		if err := telegram.Start(botCtx); err != nil {
			logger.Error("telegram client stopped", "error", err)
			stop()
		}
	}()

	httpSrv := httpserver.New(cfg.HTTPListenAddr, logger, metricRegistry, repository)
	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Start(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	return nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.StorageDriver {
	case "csv":
		return store.NewCSV(cfg.DataDir, logger)
	case "sqlite":
		s, err := store.NewSQLite(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		if err := s.RunMigrations(ctx, migrations.Files); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := store.NewPostgres(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		if err := s.RunMigrations(ctx, migrations.Files); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case "memory":
		return store.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
