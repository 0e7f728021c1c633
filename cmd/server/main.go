package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/you/go-ramadan-transfers/internal/cache"
	"github.com/you/go-ramadan-transfers/internal/catalog"
	"github.com/you/go-ramadan-transfers/internal/config"
	"github.com/you/go-ramadan-transfers/internal/httpx"
	"github.com/you/go-ramadan-transfers/internal/logger"
	"github.com/you/go-ramadan-transfers/internal/providers"
	"github.com/you/go-ramadan-transfers/internal/scheduler"
	"github.com/you/go-ramadan-transfers/internal/service"
)

func main() {

	// Loading config
	cfg := config.Load()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	// Cache storage
	kv, closeKV, err := openKV(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.CacheBackend).Msg("Cannot open cache storage")
	}
	defer closeKV()
	store := cache.NewStore(kv, cfg.CacheDuration, log)

	// Calendar resolution and pricing
	resolver := service.NewResolver(providers.NewAladhan(cfg), store, log, cfg.DedupeInflight)

	cat, err := loadCatalog(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load catalog")
	}
	pricingCfg := service.PricingConfig{WindowStartDay: cfg.WindowStartDay, WindowEndDay: cfg.WindowEndDay}
	pricingSvc, err := service.NewPricingService(cat, resolver, pricingCfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Bad pricing window")
	}

	// Warmup of this and next year's Ramadan dates
	sched := scheduler.New(log)
	if cfg.WarmupSchedule != "" {
		warmup := service.NewWarmupJob(resolver, log)
		if err := sched.AddJob(cfg.WarmupSchedule, warmup); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.WarmupSchedule).Msg("Bad warmup schedule")
		}
		sched.Start()
		defer sched.Stop()
		go func() {
			if err := sched.RunNow(warmup); err != nil {
				log.Warn().Err(err).Msg("Initial warmup incomplete")
			}
		}()
	}

	// Creation of HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.NewRouter(pricingSvc, cfg, log),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      0,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Running http server on a secondary thread
	go func() {
		log.Info().Str("addr", srv.Addr).Str("cache", cfg.CacheBackend).Msg("Server listening")
		var err error
		if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
			log.Info().Msg("TLS enabled")
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Shutdown incomplete")
	}
	log.Info().Msg("Server stopped")
}

func openKV(cfg *config.Config) (cache.KV, func(), error) {
	switch cfg.CacheBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return cache.NewRedisKV(client), func() { _ = client.Close() }, nil
	case config.BackendMemory:
		return cache.NewMemoryKV(), func() {}, nil
	default:
		kv, err := cache.OpenSQLiteKV(cfg.CachePath())
		if err != nil {
			return nil, nil, err
		}
		return kv, func() { _ = kv.Close() }, nil
	}
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogFile != "" {
		return catalog.LoadFile(cfg.CatalogFile)
	}
	return catalog.Default()
}

