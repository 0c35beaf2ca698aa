package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"houseselect/internal/config"
	httpapi "houseselect/internal/http"
	"houseselect/internal/logger"
	"houseselect/internal/repository"
	"houseselect/internal/service"
	"houseselect/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "houseselect")
	if err != nil {
		log, _ = zap.NewProduction()
	}
	defer log.Sync()

	// Sessions live in Redis; without it the service still runs with
	// in-memory persistence so local dev never blocks on infra.
	var kv store.KV
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			log.Warn("redis unavailable, sessions are in-memory only", zap.Error(err))
			_ = redisClient.Close()
			redisClient = nil
			kv = store.NewMemoryKV()
		} else {
			kv = store.NewRedisKV(redisClient)
		}
	} else {
		kv = store.NewMemoryKV()
	}

	ttl := time.Duration(cfg.Session.TTLHours) * time.Hour
	repo := repository.NewKVSessionsRepo(kv, cfg.Session.KeyPrefix, ttl, log)

	selection := service.NewSelectionService(repo, log)
	importer := service.NewImportService(time.Duration(cfg.Import.FetchTimeoutSeconds)*time.Second, log)
	exporter := service.NewExportService(log)

	handler := httpapi.NewSelectionHandler(selection, importer, exporter, cfg.Import.MaxUploadBytes, log)
	router := httpapi.NewRouter(log)
	router.RegisterSelectionRoutes(handler)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error("server stopped", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
