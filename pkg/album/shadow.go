package album

import (
	"image"
	"math"
)

// ドロップシャドウの設定です。
const (
	ShadowBlur    = 40
	ShadowOffsetY = 15
	ShadowOpacity = 0.2
)

// shadowMask は w x h の矩形をぼかした影のマスクを返します。
// マスクの原点は矩形の左上で、ぼかしの分だけ外側に広がります。
// ぼかしは半径 blur/2 の箱型フィルタを3回かけてガウスぼかしを近似します。
func shadowMask(w, h int, blur int, opacity float64) *image.Alpha {
	r := blur / 2
	margin := r * 3
	mw, mh := w+margin*2, h+margin*2

	buf := make([]float32, mw*mh)
	for y := margin; y < margin+h; y++ {
		row := buf[y*mw : (y+1)*mw]
		for x := margin; x < margin+w; x++ {
			row[x] = 1
		}
	}

	if r > 0 {
		tmp := make([]float32, len(buf))
		for i := 0; i < 3; i++ {
			boxBlur(buf, tmp, mw, mh, 1, mw, r)
			boxBlur(tmp, buf, mh, mw, mw, 1, r)
		}
	}

	mask := image.NewAlpha(image.Rect(-margin, -margin, w+margin, h+margin))
	for i, v := range buf {
		a := math.Round(float64(v) * opacity * 255)
		mask.Pix[i] = uint8(math.Max(0, math.Min(255, a)))
	}
	return mask
}

// boxBlur は lines 本のラインそれぞれに長さ n の移動平均をかけます。
// step はライン内の隣接要素の間隔、lineStride はライン同士の間隔です。
func boxBlur(src, dst []float32, n, lines, step, lineStride, r int) {
	norm := 1 / float32(2*r+1)
	for l := 0; l < lines; l++ {
		base := l * lineStride
		at := func(i int) float32 {
			if i < 0 || i >= n {
				return 0
			}
			return src[base+i*step]
		}

		var sum float32
		for i := -r; i <= r; i++ {
			sum += at(i)
		}
		for i := 0; i < n; i++ {
			dst[base+i*step] = sum * norm
			sum += at(i+r+1) - at(i-r)
		}
	}
}
