package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clipcap/internal/caption"
	"clipcap/internal/config"
	"clipcap/internal/queue"
	"clipcap/internal/server"
	"clipcap/internal/storage"
	"clipcap/pkg/cache"
	"clipcap/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	debug := os.Getenv("DEBUG") == "true"
	if err := logger.Init(debug); err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	presets, err := caption.LoadPresets(cfg.Captions.PresetsPath)
	if err != nil {
		logger.Fatal("Failed to load style presets", zap.Error(err))
	}
	logger.Info("Style presets loaded", zap.Strings("ids", presets.IDs()))

	db, err := storage.NewPostgresStorage(cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, time.Minute)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisCache.Close()

	rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer rabbit.Close()

	srv := server.NewServer(cfg.Server.Addr, db, rabbit, redisCache, presets, server.FontBounds{
		MinPx: cfg.Captions.MinFontSizePx,
		MaxPx: cfg.Captions.MaxFontSizePx,
	})

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}
