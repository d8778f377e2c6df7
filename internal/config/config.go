package config

import (
	"fmt"

	"clipcap/pkg/logger"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr" env:"SERVER_ADDR" env-default:":8080"`
	} `yaml:"server"`

	Postgres struct {
		DSN string `yaml:"dsn" env:"POSTGRES_DSN"`
	} `yaml:"postgres"`

	RabbitMQ struct {
		URL string `yaml:"url" env:"RABBITMQ_URL"`
	} `yaml:"rabbitmq"`

	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
		Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
		DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	} `yaml:"redis"`

	S3 struct {
		Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
		Region    string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
		AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
		SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
		Bucket    string `yaml:"bucket" env:"S3_BUCKET"`
	} `yaml:"s3"`

	ASR struct {
		Binary    string `yaml:"binary" env:"WHISPER_BINARY" env-default:"whisper-cli"`
		ModelPath string `yaml:"model_path" env:"WHISPER_MODEL_PATH" env-default:"models/ggml-base.bin"`
	} `yaml:"asr"`

	Align struct {
		URL     string `yaml:"url" env:"ALIGN_URL" env-default:"http://localhost:8765"`
		Enabled bool   `yaml:"enabled" env:"ALIGN_ENABLED" env-default:"true"`
	} `yaml:"align"`

	Media struct {
		FFmpegBinary  string `yaml:"ffmpeg_binary" env:"FFMPEG_BINARY" env-default:"ffmpeg"`
		FFprobeBinary string `yaml:"ffprobe_binary" env:"FFPROBE_BINARY" env-default:"ffprobe"`
	} `yaml:"media"`

	Captions struct {
		PresetsPath    string `yaml:"presets_path" env:"PRESETS_PATH" env-default:"configs/presets.yaml"`
		MinFontSizePx  int    `yaml:"min_font_size_px" env:"MIN_FONT_SIZE_PX" env-default:"24"`
		MaxFontSizePx  int    `yaml:"max_font_size_px" env:"MAX_FONT_SIZE_PX" env-default:"96"`
		WorkDir        string `yaml:"work_dir" env:"WORK_DIR" env-default:"/tmp/clipcap"`
		RetentionHours int    `yaml:"retention_hours" env:"RETENTION_HOURS" env-default:"72"`
	} `yaml:"captions"`

	Worker struct {
		Concurrency int `yaml:"concurrency" env:"WORKER_CONCURRENCY" env-default:"4"`
	} `yaml:"worker"`

	Telegram struct {
		Token  string `yaml:"token" env:"TELEGRAM_BOT_TOKEN" env-default:""`
		ChatID int64  `yaml:"chat_id" env:"TELEGRAM_CHAT_ID" env-default:"0"`
	} `yaml:"telegram"`
}

func LoadConfig() (*Config, error) {
	// Load .env file
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadConfig("configs/config.yaml", &cfg); err != nil {
		return nil, err
	}

	if err := cleanenv.UpdateEnv(&cfg); err != nil {
		return nil, err
	}

	if cfg.Worker.Concurrency <= 0 {
		return nil, fmt.Errorf("worker concurrency must be positive, got %d", cfg.Worker.Concurrency)
	}
	if cfg.Captions.MinFontSizePx <= 0 || cfg.Captions.MaxFontSizePx < cfg.Captions.MinFontSizePx {
		return nil, fmt.Errorf("invalid font size bounds %d..%d",
			cfg.Captions.MinFontSizePx, cfg.Captions.MaxFontSizePx)
	}

	logger.Info("Config loaded successfully")
	return &cfg, nil
}
