package album

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// 文字サイズ（px）です。
const (
	TitleSize    = 120
	SubtitleSize = 60
	CaptionSize  = 60
)

var (
	titleColor    = color.RGBA{R: 0x0B, G: 0x3D, B: 0x2C, A: 0xFF}
	subtitleColor = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xFF}
)

// Fonts はタイトル・サブタイトル・キャプションの書体です。
// font.Face は並行利用できないため、Compositor がロックして使います。
type Fonts struct {
	Title    font.Face
	Subtitle font.Face
	Caption  font.Face
}

// DefaultFonts は Go フォント（太字・標準）から書体を生成します。
func DefaultFonts() (*Fonts, error) {
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("太字フォントの解析に失敗しました: %w", err)
	}
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("標準フォントの解析に失敗しました: %w", err)
	}
	return newFonts(bold, regular)
}

// LoadFonts は TTF / OTF ファイルから全ての書体を生成します。
// Go フォントに含まれない文字（アラビア文字など）のキャプションに使います。
func LoadFonts(path string) (*Fonts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("フォントファイルの読み込みに失敗しました: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("フォントファイルの解析に失敗しました (%s): %w", path, err)
	}
	return newFonts(f, f)
}

func newFonts(bold, regular *opentype.Font) (*Fonts, error) {
	title, err := newFace(bold, TitleSize)
	if err != nil {
		return nil, err
	}
	subtitle, err := newFace(regular, SubtitleSize)
	if err != nil {
		return nil, err
	}
	caption, err := newFace(bold, CaptionSize)
	if err != nil {
		return nil, err
	}
	return &Fonts{Title: title, Subtitle: subtitle, Caption: caption}, nil
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("フォントフェイスの生成に失敗しました: %w", err)
	}
	return face, nil
}

// drawCentered は baseline 上に cx を中心としてテキストを描画します。
func drawCentered(dst draw.Image, face font.Face, text string, cx, baseline int, col color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
	}
	width := d.MeasureString(text)
	d.Dot = fixed.Point26_6{
		X: fixed.I(cx) - width/2,
		Y: fixed.I(baseline),
	}
	d.DrawString(text)
}

// drawMiddle はテキストの縦方向の中心が cy になるように描画します。
func drawMiddle(dst draw.Image, face font.Face, text string, cx, cy int, col color.Color) {
	m := face.Metrics()
	baseline := (fixed.I(cy) + (m.Ascent-m.Descent)/2).Round()
	drawCentered(dst, face, text, cx, baseline, col)
}
