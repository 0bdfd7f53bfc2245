package config

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	// WebServer Configuration
	WebServerPort      int    `mapstructure:"WEBSERVER_PORT"`
	SessionSecret      string `mapstructure:"SESSION_SECRET" validate:"required,min=32"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE" validate:"min=1"`

	// Database Configuration
	DatabaseDSN     string `mapstructure:"DATABASE_DSN" validate:"required"`
	DatabaseRetries int    `mapstructure:"DATABASE_RETRIES"`

	// Download Configuration
	DownloadRoot    string `mapstructure:"DOWNLOAD_ROOT" validate:"required"`
	DownloadWorkers int    `mapstructure:"DOWNLOAD_WORKERS" validate:"min=1"`
	YtdlpPath       string `mapstructure:"YTDLP_PATH"`

	// Stream Selection Configuration
	AudioPreferredQuality string   `mapstructure:"AUDIO_PREFERRED_QUALITY" validate:"oneof=low medium high"`
	AudioPreferredFormats []string `mapstructure:"AUDIO_PREFERRED_FORMATS" validate:"min=1"`
	VideoPreferredQuality string   `mapstructure:"VIDEO_PREFERRED_QUALITY" validate:"oneof=480p 720p 1080p"`
	VideoPreferredFormats []string `mapstructure:"VIDEO_PREFERRED_FORMATS" validate:"min=1"`
	MaxFallbackAttempts   int      `mapstructure:"MAX_FALLBACK_ATTEMPTS" validate:"min=1"`

	// Retry Configuration
	MaxRetries        int `mapstructure:"MAX_RETRIES" validate:"min=0"`
	RetryDelaySeconds int `mapstructure:"RETRY_DELAY_SECONDS" validate:"min=1"`
}

// RetryDelay returns the configured initial retry delay as a duration.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	val := reflect.ValueOf(c)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag != "" {
			viper.BindEnv(tag)
		}
	}
}

func LoadConfig(ctx context.Context) (*Config, error) {
	bindEnv(Config{})
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("WEBSERVER_PORT", 8080)
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 30)
	viper.SetDefault("DATABASE_RETRIES", 10)
	viper.SetDefault("DOWNLOAD_WORKERS", 2)
	viper.SetDefault("YTDLP_PATH", "yt-dlp")
	viper.SetDefault("AUDIO_PREFERRED_QUALITY", "high")
	viper.SetDefault("AUDIO_PREFERRED_FORMATS", []string{"mp3", "m4a", "webm"})
	viper.SetDefault("VIDEO_PREFERRED_QUALITY", "720p")
	viper.SetDefault("VIDEO_PREFERRED_FORMATS", []string{"mp4", "webm", "mkv"})
	viper.SetDefault("MAX_FALLBACK_ATTEMPTS", 3)
	viper.SetDefault("MAX_RETRIES", 3)
	viper.SetDefault("RETRY_DELAY_SECONDS", 2)

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	slog.Info("Loaded configuration",
		"port", cfg.WebServerPort,
		"download_root", cfg.DownloadRoot,
		"workers", cfg.DownloadWorkers)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
