package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Environment:        "test",
		HTTPPort:           8080,
		PublicBaseURL:      "http://localhost:8080",
		HTTPTimeout:        15 * time.Second,
		TempDir:            "./tmp",
		MaxUploadBytes:     1 << 20,
		FFmpegPath:         "ffmpeg",
		EncodeTimeout:      2 * time.Minute,
		VideoBitrate:       "1M",
		AudioBitrate:       "192k",
		PixelFormat:        "yuv420p",
		StderrTailBytes:    8192,
		StderrExcerptBytes: 4000,
		DownloadTTL:        time.Hour,
		SweepInterval:      time.Minute,
		ShutdownTimeout:    30 * time.Second,
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.HTTPPort = 0 }},
		{"port out of range", func(c *Config) { c.HTTPPort = 70000 }},
		{"empty base URL", func(c *Config) { c.PublicBaseURL = "" }},
		{"empty temp dir", func(c *Config) { c.TempDir = "" }},
		{"zero upload limit", func(c *Config) { c.MaxUploadBytes = 0 }},
		{"empty ffmpeg path", func(c *Config) { c.FFmpegPath = "" }},
		{"zero encode timeout", func(c *Config) { c.EncodeTimeout = 0 }},
		{"negative concurrency cap", func(c *Config) { c.MaxConcurrentEncodes = -1 }},
		{"zero stderr tail", func(c *Config) { c.StderrTailBytes = 0 }},
		{"zero stderr excerpt", func(c *Config) { c.StderrExcerptBytes = 0 }},
		{"zero TTL", func(c *Config) { c.DownloadTTL = 0 }},
		{"zero sweep interval", func(c *Config) { c.SweepInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateAllowsUncappedEncodes(t *testing.T) {
	cfg := validConfig()
	cfg.MaxConcurrentEncodes = 0
	assert.NoError(t, cfg.Validate())
}
