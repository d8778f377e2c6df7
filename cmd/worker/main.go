package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clipcap/internal/align"
	"clipcap/internal/asr"
	"clipcap/internal/caption"
	"clipcap/internal/config"
	"clipcap/internal/media"
	"clipcap/internal/notify"
	"clipcap/internal/queue"
	"clipcap/internal/storage"
	"clipcap/internal/worker"
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

	s3Store, err := storage.NewS3Storage(
		cfg.S3.Endpoint,
		cfg.S3.Region,
		cfg.S3.AccessKey,
		cfg.S3.SecretKey,
		cfg.S3.Bucket,
	)
	if err != nil {
		logger.Fatal("Failed to initialize S3 storage", zap.Error(err))
	}

	notifier, err := notify.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID)
	if err != nil {
		logger.Fatal("Failed to initialize telegram notifier", zap.Error(err))
	}

	processor := worker.NewProcessor(
		db,
		s3Store,
		redisCache,
		media.NewTools(cfg.Media.FFmpegBinary, cfg.Media.FFprobeBinary),
		asr.NewClient(cfg.ASR.Binary, cfg.ASR.ModelPath),
		align.NewClient(cfg.Align.URL),
		notifier,
		presets,
		cfg.Captions.WorkDir,
		cfg.Align.Enabled,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := worker.NewRetentionSweeper(db, time.Duration(cfg.Captions.RetentionHours)*time.Hour)
	go sweeper.Run(ctx)

	go func() {
		if err := rabbit.Consume(queue.QueueNameCaptionJobs, cfg.Worker.Concurrency, processor.HandleMessage); err != nil {
			logger.Fatal("Consumer failed", zap.Error(err))
		}
	}()

	logger.Info("Worker started",
		zap.Int("concurrency", cfg.Worker.Concurrency),
		zap.Bool("alignment_enabled", cfg.Align.Enabled))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()
	time.Sleep(time.Second)
	logger.Info("Worker stopped")
}
