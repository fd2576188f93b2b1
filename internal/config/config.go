package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration settings.
type Config struct {
	Environment string `envconfig:"STILLCAST_ENV" default:"development"`

	HTTPPort      int           `envconfig:"STILLCAST_HTTP_PORT" default:"8080"`
	PublicBaseURL string        `envconfig:"STILLCAST_PUBLIC_BASE_URL" default:"http://localhost:8080"`
	HTTPTimeout   time.Duration `envconfig:"STILLCAST_HTTP_TIMEOUT" default:"15s"`

	TempDir        string `envconfig:"STILLCAST_TEMP_DIR" default:"./tmp"`
	MaxUploadBytes int64  `envconfig:"STILLCAST_MAX_UPLOAD_BYTES" default:"52428800"`

	FFmpegPath           string        `envconfig:"STILLCAST_FFMPEG_PATH" default:"ffmpeg"`
	EncodeTimeout        time.Duration `envconfig:"STILLCAST_ENCODE_TIMEOUT" default:"120s"`
	VideoBitrate         string        `envconfig:"STILLCAST_VIDEO_BITRATE" default:"1M"`
	AudioBitrate         string        `envconfig:"STILLCAST_AUDIO_BITRATE" default:"192k"`
	PixelFormat          string        `envconfig:"STILLCAST_PIXEL_FORMAT" default:"yuv420p"`
	Threads              int           `envconfig:"STILLCAST_THREADS" default:"0"`
	MaxConcurrentEncodes int           `envconfig:"STILLCAST_MAX_CONCURRENT_ENCODES" default:"0"`

	StderrTailBytes    int `envconfig:"STILLCAST_STDERR_TAIL_BYTES" default:"8192"`
	StderrExcerptBytes int `envconfig:"STILLCAST_STDERR_EXCERPT_BYTES" default:"4000"`

	DownloadTTL   time.Duration `envconfig:"STILLCAST_DOWNLOAD_TTL" default:"1h"`
	SweepInterval time.Duration `envconfig:"STILLCAST_SWEEP_INTERVAL" default:"1m"`

	ShutdownTimeout time.Duration `envconfig:"STILLCAST_SHUTDOWN_TIMEOUT" default:"30s"`

	LogLevel  string `envconfig:"STILLCAST_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"STILLCAST_LOG_FORMAT" default:"json"`
}

// Validate checks the configuration for invalid or missing values.
// Returns an error describing the first invalid setting found.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	if c.PublicBaseURL == "" {
		return fmt.Errorf("public base URL cannot be empty")
	}

	if c.TempDir == "" {
		return fmt.Errorf("temp directory cannot be empty")
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive: %d", c.MaxUploadBytes)
	}

	if c.FFmpegPath == "" {
		return fmt.Errorf("ffmpeg path cannot be empty")
	}

	if c.EncodeTimeout <= 0 {
		return fmt.Errorf("encode timeout must be positive: %s", c.EncodeTimeout)
	}

	if c.MaxConcurrentEncodes < 0 {
		return fmt.Errorf("max concurrent encodes cannot be negative: %d", c.MaxConcurrentEncodes)
	}

	if c.StderrTailBytes <= 0 {
		return fmt.Errorf("stderr tail size must be positive: %d", c.StderrTailBytes)
	}

	if c.StderrExcerptBytes <= 0 {
		return fmt.Errorf("stderr excerpt size must be positive: %d", c.StderrExcerptBytes)
	}

	if c.DownloadTTL <= 0 {
		return fmt.Errorf("download TTL must be positive: %s", c.DownloadTTL)
	}

	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive: %s", c.SweepInterval)
	}

	return nil
}
