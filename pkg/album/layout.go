package album

import (
	"image"
	"math"
)

// ページとグリッドの既定値です。2480x3508 は A4 を 300dpi で出力したサイズです。
const (
	PageWidth    = 2480
	PageHeight   = 3508
	Columns      = 2
	GridPadding  = 120
	ContentTop   = 400
	FramePadding = 30
	CaptionBand  = 100
	CaptionInset = 60

	TitleBaseline    = 200
	SubtitleBaseline = 300
)

// Layout はアルバムページの寸法とグリッドの設定です。
type Layout struct {
	Width        int
	Height       int
	Columns      int
	Padding      int
	TopMargin    int
	FramePadding int
	CaptionBand  int
}

// Cell はグリッドの1マス分の描画領域です。
type Cell struct {
	// Frame は影付きの白い枠です。
	Frame image.Rectangle
	// Photo は枠の内側で画像を収める領域です。
	Photo image.Rectangle
	// CaptionCenter はキャプションの中心座標です。
	CaptionCenter image.Point
}

// DefaultLayout は既定のページレイアウトを返します。
func DefaultLayout() Layout {
	return Layout{
		Width:        PageWidth,
		Height:       PageHeight,
		Columns:      Columns,
		Padding:      GridPadding,
		TopMargin:    ContentTop,
		FramePadding: FramePadding,
		CaptionBand:  CaptionBand,
	}
}

// Rows は n 枚の画像をちょうど収める行数を返します。
func (l Layout) Rows(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + l.Columns - 1) / l.Columns
}

// CellSize は1マスの幅と高さを返します。
// 各軸とも (寸法 - padding*(マス数+1)) / マス数 です。
func (l Layout) CellSize(n int) (int, int) {
	rows := l.Rows(n)
	contentHeight := l.Height - l.TopMargin
	w := (l.Width - l.Padding*(l.Columns+1)) / l.Columns
	h := (contentHeight - l.Padding*(rows+1)) / rows
	return w, h
}

// Cells は n 枚分のマスを左上から行優先の順で返します。
func (l Layout) Cells(n int) []Cell {
	cw, ch := l.CellSize(n)
	photoW := cw - l.FramePadding*2
	photoH := ch - l.FramePadding*2 - l.CaptionBand

	cells := make([]Cell, n)
	for i := range cells {
		row, col := i/l.Columns, i%l.Columns
		x := l.Padding*(col+1) + cw*col
		y := l.TopMargin + l.Padding*(row+1) + ch*row

		photo := image.Rect(0, 0, photoW, photoH).Add(image.Pt(x+l.FramePadding, y+l.FramePadding))
		cells[i] = Cell{
			Frame:         image.Rect(x, y, x+cw, y+ch),
			Photo:         photo,
			CaptionCenter: image.Pt(x+cw/2, photo.Max.Y+CaptionInset),
		}
	}
	return cells
}

// FitRect は w x h の画像を box に収まるように拡大縮小し、中央に配置した領域を返します。
// 縦横比を保ち、余裕の少ない軸に合わせます。
func FitRect(w, h int, box image.Rectangle) image.Rectangle {
	if w <= 0 || h <= 0 || box.Empty() {
		return image.Rectangle{Min: box.Min, Max: box.Min}
	}
	scale := math.Min(float64(box.Dx())/float64(w), float64(box.Dy())/float64(h))
	dw := min(int(math.Round(float64(w)*scale)), box.Dx())
	dh := min(int(math.Round(float64(h)*scale)), box.Dy())

	x := box.Min.X + (box.Dx()-dw)/2
	y := box.Min.Y + (box.Dy()-dh)/2
	return image.Rect(x, y, x+dw, y+dh)
}
