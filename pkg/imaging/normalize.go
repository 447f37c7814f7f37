package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/shouni/go-portrait-kit/pkg/config"
	"github.com/shouni/go-portrait-kit/pkg/domain"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxDecodePixels はデコードを許可する画素数の上限です。
// 高圧縮の PNG がファイルサイズ上限内でも巨大なビットマップに展開されるのを防ぎます。
const MaxDecodePixels = 50_000_000

// Normalizer はアップロード前に大きすぎる画像を縮小します。
type Normalizer struct {
	maxDimension int
	quality      int
	maxPixels    int64
}

// NewNormalizer は設定から Normalizer を生成します。
func NewNormalizer(cfg config.Config) *Normalizer {
	return &Normalizer{
		maxDimension: cfg.MaxDimensionPx,
		quality:      cfg.JPEGQuality,
		maxPixels:    MaxDecodePixels,
	}
}

// Normalize は画像をデコードし、長辺が上限を超える場合はアスペクト比を保って縮小します。
// 上限以内の画像はバイト列をそのまま返します。
// 再エンコード時は PNG は PNG のまま、それ以外は JPEG になります。
func (n *Normalizer) Normalize(raw []byte, mimeType string) (domain.SourceImage, error) {
	header, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return domain.SourceImage{}, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	if header.Width <= 0 || header.Height <= 0 || int64(header.Width)*int64(header.Height) > n.maxPixels {
		return domain.SourceImage{}, fmt.Errorf("%w: %dx%d exceeds %d pixels", domain.ErrDecode, header.Width, header.Height, n.maxPixels)
	}

	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return domain.SourceImage{}, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}

	b := src.Bounds()
	width, height := b.Dx(), b.Dy()
	if mimeType == "" {
		mimeType = "image/" + format
	}

	if width <= n.maxDimension && height <= n.maxDimension {
		return domain.SourceImage{
			Data:     raw,
			MIMEType: normalizeMIME(mimeType),
			Width:    width,
			Height:   height,
		}, nil
	}

	newWidth, newHeight := ScaledSize(width, height, n.maxDimension)
	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	var buf bytes.Buffer
	outType := domain.MimeTypeJPEG
	if format == "png" {
		outType = domain.MimeTypePNG
		err = png.Encode(&buf, dst)
	} else {
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: n.quality})
	}
	if err != nil {
		return domain.SourceImage{}, fmt.Errorf("縮小画像のエンコードに失敗しました: %w", err)
	}

	return domain.SourceImage{
		Data:     buf.Bytes(),
		MIMEType: outType,
		Width:    newWidth,
		Height:   newHeight,
	}, nil
}

// ScaledSize は長辺が maxDimension になるように縮小後のサイズを計算します。
// 短辺は maxDimension * 短辺 / 長辺 を四捨五入（0.5 は切り上げ）した値です。
func ScaledSize(width, height, maxDimension int) (int, int) {
	if width <= maxDimension && height <= maxDimension {
		return width, height
	}
	if width >= height {
		return maxDimension, roundHalfUp(maxDimension*height, width)
	}
	return roundHalfUp(maxDimension*width, height), maxDimension
}

// roundHalfUp は num/den を四捨五入した整数を返します（num, den は正）。
func roundHalfUp(num, den int) int {
	v := (2*num + den) / (2 * den)
	if v < 1 {
		return 1
	}
	return v
}
