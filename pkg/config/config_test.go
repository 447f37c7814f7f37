package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("デフォルト設定が不正です: %v", err)
	}
	if cfg.MaxFileSizeBytes() != 10*1024*1024 {
		t.Errorf("MaxFileSizeBytes = %d", cfg.MaxFileSizeBytes())
	}
	if cfg.Workers != 2 || cfg.MaxRetries != 3 || cfg.APITimeout != 30*time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	// デフォルトの許可リストが呼び出し元から書き換えられないこと
	cfg.SupportedFormats[0] = "image/gif"
	if DefaultSupportedFormats[0] != "image/jpeg" {
		t.Error("DefaultSupportedFormats が書き換えられました")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"model", func(c *Config) { c.ImageModel = "" }},
		{"file size", func(c *Config) { c.MaxFileSizeMB = 0 }},
		{"formats", func(c *Config) { c.SupportedFormats = nil }},
		{"dimension", func(c *Config) { c.MaxDimensionPx = -1 }},
		{"jpeg quality", func(c *Config) { c.JPEGQuality = 101 }},
		{"album quality", func(c *Config) { c.AlbumQuality = 0 }},
		{"timeout", func(c *Config) { c.APITimeout = 0 }},
		{"retries", func(c *Config) { c.MaxRetries = 0 }},
		{"delay", func(c *Config) { c.BaseDelay = -time.Second }},
		{"workers", func(c *Config) { c.Workers = 0 }},
		{"rate", func(c *Config) { c.RateInterval = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("不正な設定でエラーが発生しませんでした")
			}
		})
	}
}
