package config

import (
	"fmt"
	"time"
)

// デフォルト値の定義
const (
	DefaultImageModel     = "gemini-2.5-flash-image"
	DefaultMaxFileSizeMB  = 10
	DefaultMaxDimensionPx = 2048
	DefaultAPITimeout     = 30 * time.Second
	DefaultMaxRetries     = 3
	DefaultBaseDelay      = 1 * time.Second
	DefaultWorkers        = 2
	DefaultJPEGQuality    = 90
	DefaultAlbumQuality   = 95
)

// DefaultSupportedFormats はアップロードを許可する MIME タイプです。
var DefaultSupportedFormats = []string{"image/jpeg", "image/png"}

// Config は Go Portrait Kit の各コンポーネントを動作させるための基本設定です。
// 初期化時に明示的に渡され、グローバルな状態は持ちません。
type Config struct {
	// --- AI Model Settings ---
	ImageModel string

	// --- Validation Settings ---
	MaxFileSizeMB    int
	SupportedFormats []string

	// --- Image Processing Settings ---
	MaxDimensionPx int // 長辺がこの値を超える場合は縮小してからアップロードする
	JPEGQuality    int // 縮小後の再エンコード品質
	AlbumQuality   int // アルバムページの JPEG 品質

	// --- Timeout & Retries ---
	APITimeout time.Duration // 1回の試行あたりの制限時間
	MaxRetries int           // 1ジョブあたりの最大試行回数
	BaseDelay  time.Duration // 2回目の試行前の待機時間（以降は倍々）

	// --- Concurrency Settings ---
	Workers      int
	RateInterval time.Duration // 0 の場合は流量制限なし
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	formats := make([]string, len(DefaultSupportedFormats))
	copy(formats, DefaultSupportedFormats)

	return Config{
		ImageModel:       DefaultImageModel,
		MaxFileSizeMB:    DefaultMaxFileSizeMB,
		SupportedFormats: formats,
		MaxDimensionPx:   DefaultMaxDimensionPx,
		JPEGQuality:      DefaultJPEGQuality,
		AlbumQuality:     DefaultAlbumQuality,
		APITimeout:       DefaultAPITimeout,
		MaxRetries:       DefaultMaxRetries,
		BaseDelay:        DefaultBaseDelay,
		Workers:          DefaultWorkers,
	}
}

// MaxFileSizeBytes はファイルサイズ上限をバイト単位で返します。
func (c Config) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

// Validate は設定値の整合性を確認します。
func (c Config) Validate() error {
	switch {
	case c.ImageModel == "":
		return fmt.Errorf("ImageModel は必須です")
	case c.MaxFileSizeMB <= 0:
		return fmt.Errorf("MaxFileSizeMB は正の値である必要があります: %d", c.MaxFileSizeMB)
	case len(c.SupportedFormats) == 0:
		return fmt.Errorf("SupportedFormats が空です")
	case c.MaxDimensionPx <= 0:
		return fmt.Errorf("MaxDimensionPx は正の値である必要があります: %d", c.MaxDimensionPx)
	case c.JPEGQuality < 1 || c.JPEGQuality > 100:
		return fmt.Errorf("JPEGQuality は 1〜100 の範囲で指定してください: %d", c.JPEGQuality)
	case c.AlbumQuality < 1 || c.AlbumQuality > 100:
		return fmt.Errorf("AlbumQuality は 1〜100 の範囲で指定してください: %d", c.AlbumQuality)
	case c.APITimeout <= 0:
		return fmt.Errorf("APITimeout は正の値である必要があります: %s", c.APITimeout)
	case c.MaxRetries < 1:
		return fmt.Errorf("MaxRetries は 1 以上である必要があります: %d", c.MaxRetries)
	case c.BaseDelay < 0:
		return fmt.Errorf("BaseDelay は負の値にできません: %s", c.BaseDelay)
	case c.Workers < 1:
		return fmt.Errorf("Workers は 1 以上である必要があります: %d", c.Workers)
	case c.RateInterval < 0:
		return fmt.Errorf("RateInterval は負の値にできません: %s", c.RateInterval)
	}
	return nil
}
