// Package album は生成済みの画像を1枚の印刷用ページに合成します。
package album

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-portrait-kit/pkg/config"
	"github.com/shouni/go-portrait-kit/pkg/domain"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// アルバムの既定のタイトルです。
const (
	DefaultTitle    = "My Professional Digital Identity"
	DefaultSubtitle = "Generated on Google AI Studio"
)

var backgroundColor = color.RGBA{R: 0xF5, G: 0xF5, B: 0xDC, A: 0xFF}

// Compositor は画像をグリッド状に並べたアルバムページを描画します。
// ファイルの入出力は行わず、JPEG のバイト列を返します。
type Compositor struct {
	layout  Layout
	quality int
	fonts   *Fonts
	decoded *cache.Cache

	// mu は描画（font.Face と影マスクの共有）を直列化します。
	mu      sync.Mutex
	shadows map[image.Point]*image.Alpha
}

// Option は Compositor の任意設定です。
type Option func(*Compositor)

// WithFonts は描画に使う書体を差し替えます。
func WithFonts(f *Fonts) Option {
	return func(c *Compositor) {
		if f != nil {
			c.fonts = f
		}
	}
}

// WithLayout はページレイアウトを差し替えます。
func WithLayout(l Layout) Option {
	return func(c *Compositor) {
		c.layout = l
	}
}

// NewCompositor は Compositor を生成します。
func NewCompositor(cfg config.Config, opts ...Option) (*Compositor, error) {
	c := &Compositor{
		layout:  DefaultLayout(),
		quality: cfg.AlbumQuality,
		decoded: cache.New(10*time.Minute, 20*time.Minute),
		shadows: make(map[image.Point]*image.Alpha),
	}
	if c.quality < 1 || c.quality > 100 {
		c.quality = config.DefaultAlbumQuality
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fonts == nil {
		fonts, err := DefaultFonts()
		if err != nil {
			return nil, err
		}
		c.fonts = fonts
	}
	return c, nil
}

// Compose は order の順に images を並べたページを描画し、JPEG で返します。
// order のキャプションが images に1つでも欠けている場合は ErrIncompleteBatch、
// 画像をデコードできない場合は ErrImageLoad を返し、何も出力しません。
func (c *Compositor) Compose(ctx context.Context, images map[string]*domain.ImageData, order []string, title, subtitle string) ([]byte, error) {
	if len(order) == 0 {
		return nil, fmt.Errorf("%w: アルバムに含める画像がありません", domain.ErrIncompleteBatch)
	}
	var missing []string
	for _, caption := range order {
		if img, ok := images[caption]; !ok || img == nil || len(img.Data) == 0 {
			missing = append(missing, caption)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %d of %d images missing (%s)", domain.ErrIncompleteBatch, len(missing), len(order), strings.Join(missing, ", "))
	}

	decoded, err := c.decodeAll(ctx, images, order)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = DefaultTitle
	}
	if subtitle == "" {
		subtitle = DefaultSubtitle
	}

	start := time.Now()
	canvas := c.render(decoded, order, title, subtitle)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: c.quality}); err != nil {
		return nil, fmt.Errorf("アルバムのエンコードに失敗しました: %w", err)
	}
	slog.InfoContext(ctx, "アルバムを合成しました",
		slog.Int("images", len(order)),
		slog.Int("bytes", buf.Len()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return buf.Bytes(), nil
}

// ComposeBatch は完了したバッチをスタイルの定義順にアルバムへ合成します。
// キャプションは locale の表示名を使います。
func (c *Compositor) ComposeBatch(ctx context.Context, snap domain.BatchSnapshot, jobs []domain.StyleJob, locale, title, subtitle string) ([]byte, error) {
	keys := domain.StyleCatalog(jobs).Keys()
	if missing := snap.MissingDone(keys); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %d of %d styles not done (%s)", domain.ErrIncompleteBatch, len(missing), len(keys), strings.Join(missing, ", "))
	}

	images := make(map[string]*domain.ImageData, len(jobs))
	order := make([]string, 0, len(jobs))
	for _, job := range jobs {
		caption := job.Caption(locale)
		if _, dup := images[caption]; dup {
			caption = job.String()
		}
		images[caption] = snap[job.Key].Image
		order = append(order, caption)
	}
	return c.Compose(ctx, images, order, title, subtitle)
}

// decodeAll は画像を並行してデコードします。同じ内容の画像はキャッシュから返します。
func (c *Compositor) decodeAll(ctx context.Context, images map[string]*domain.ImageData, order []string) ([]image.Image, error) {
	decoded := make([]image.Image, len(order))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, caption := range order {
		data := images[caption].Data
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			img, err := c.decode(data)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", domain.ErrImageLoad, caption, err)
			}
			decoded[i] = img
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return decoded, nil
}

func (c *Compositor) decode(data []byte) (image.Image, error) {
	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])
	if v, ok := c.decoded.Get(key); ok {
		if img, ok := v.(image.Image); ok {
			return img, nil
		}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	c.decoded.Set(key, img, cache.DefaultExpiration)
	return img, nil
}

func (c *Compositor) render(images []image.Image, captions []string, title, subtitle string) *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()

	l := c.layout
	canvas := image.NewRGBA(image.Rect(0, 0, l.Width, l.Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	cx := l.Width / 2
	drawCentered(canvas, c.fonts.Title, title, cx, TitleBaseline, titleColor)
	drawCentered(canvas, c.fonts.Subtitle, subtitle, cx, SubtitleBaseline, subtitleColor)

	cells := l.Cells(len(images))
	for i, cell := range cells {
		c.drawShadow(canvas, cell.Frame)
		draw.Draw(canvas, cell.Frame, image.White, image.Point{}, draw.Src)

		src := images[i]
		b := src.Bounds()
		dst := FitRect(b.Dx(), b.Dy(), cell.Photo)
		draw.BiLinear.Scale(canvas, dst, src, b, draw.Over, nil)

		drawMiddle(canvas, c.fonts.Caption, captions[i], cell.CaptionCenter.X, cell.CaptionCenter.Y, titleColor)
	}
	return canvas
}

// drawShadow は frame の下にぼかした影を描きます。同じ大きさのマスクは使い回します。
func (c *Compositor) drawShadow(dst draw.Image, frame image.Rectangle) {
	size := frame.Size()
	mask, ok := c.shadows[size]
	if !ok {
		mask = shadowMask(size.X, size.Y, ShadowBlur, ShadowOpacity)
		c.shadows[size] = mask
	}
	offset := frame.Min.Add(image.Pt(0, ShadowOffsetY))
	draw.DrawMask(dst, mask.Bounds().Add(offset), image.Black, image.Point{}, mask, mask.Bounds().Min, draw.Over)
}
