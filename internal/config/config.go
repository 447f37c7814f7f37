package config

import (
	"log/slog"
	"strconv"
	"time"

	kitconfig "github.com/shouni/go-portrait-kit/pkg/config"

	"github.com/joho/godotenv"
	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultOutputDir = "output"
	DefaultLocale    = "en"
)

// Config はアプリケーション全体の環境設定（APIキーやクラウド設定）を保持する構造体なのだ。
type Config struct {
	ProjectID    string
	LocationID   string
	GeminiAPIKey string

	// Kit は生成パイプラインに明示的に渡すコア設定なのだ。
	Kit kitconfig.Config

	Options GenerateOptions
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
// ゼロ値のフィールドは「未指定」として扱い、環境変数の値を優先するのだ。
type GenerateOptions struct {
	// 入出力
	InputFile   string // --input
	OutputDir   string // --output-dir
	StylesFile  string // --styles
	PromptFile  string // --prompt-file
	MetricsFile string // --metrics-file

	// アルバム
	Album         bool   // --album
	AlbumTitle    string // --title
	AlbumSubtitle string // --subtitle
	FontFile      string // --font-file
	Locale        string // --locale

	// AI挙動・実行制御
	ImageModel   string        // --image-model
	Workers      int           // --workers
	MaxRetries   int           // --max-retries
	APITimeout   time.Duration // --api-timeout
	RateInterval time.Duration // --rate-interval
}

// LoadConfig は .env と環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	// .env が無いのは普通のことなので、エラーは無視するのだ
	_ = godotenv.Load()

	kit := kitconfig.DefaultConfig()
	kit.ImageModel = envutil.GetEnv("IMAGE_GEMINI_MODEL", kit.ImageModel)
	kit.Workers = envInt("PORTRAIT_WORKERS", kit.Workers)
	kit.MaxRetries = envInt("PORTRAIT_MAX_RETRIES", kit.MaxRetries)
	kit.MaxFileSizeMB = envInt("PORTRAIT_MAX_FILE_SIZE_MB", kit.MaxFileSizeMB)
	kit.MaxDimensionPx = envInt("PORTRAIT_MAX_DIMENSION", kit.MaxDimensionPx)
	kit.APITimeout = envDuration("PORTRAIT_API_TIMEOUT", kit.APITimeout)
	kit.BaseDelay = envDuration("PORTRAIT_BASE_DELAY", kit.BaseDelay)
	kit.RateInterval = envDuration("PORTRAIT_RATE_INTERVAL", kit.RateInterval)

	return &Config{
		ProjectID:    envutil.GetEnv("PROJECT_ID", ""),
		LocationID:   envutil.GetEnv("REGION", ""),
		GeminiAPIKey: envutil.GetEnv("GEMINI_API_KEY", ""),
		Kit:          kit,
		Options: GenerateOptions{
			OutputDir: DefaultOutputDir,
			Locale:    DefaultLocale,
		},
	}
}

// ApplyOptions は CLI で指定された値をコア設定に上書きするのだ。
func (c *Config) ApplyOptions(opts GenerateOptions) {
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOutputDir
	}
	if opts.Locale == "" {
		opts.Locale = DefaultLocale
	}
	if opts.ImageModel != "" {
		c.Kit.ImageModel = opts.ImageModel
	}
	if opts.Workers > 0 {
		c.Kit.Workers = opts.Workers
	}
	if opts.MaxRetries > 0 {
		c.Kit.MaxRetries = opts.MaxRetries
	}
	if opts.APITimeout > 0 {
		c.Kit.APITimeout = opts.APITimeout
	}
	if opts.RateInterval > 0 {
		c.Kit.RateInterval = opts.RateInterval
	}
	c.Options = opts
}

func envInt(key string, def int) int {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("環境変数の値が整数ではないので既定値を使うのだ", "key", key, "value", raw)
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("環境変数の値が時間として解釈できないので既定値を使うのだ", "key", key, "value", raw)
		return def
	}
	return v
}
