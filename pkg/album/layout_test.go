package album

import (
	"image"
	"testing"
)

func TestLayout_Cells(t *testing.T) {
	l := DefaultLayout()

	t.Run("6枚は2x3のグリッドになること", func(t *testing.T) {
		if rows := l.Rows(6); rows != 3 {
			t.Fatalf("rows = %d, want 3", rows)
		}
		w, h := l.CellSize(6)
		// (2480 - 120*3) / 2 = 1060, (3108 - 120*4) / 3 = 876
		if w != 1060 || h != 876 {
			t.Fatalf("cell = %dx%d, want 1060x876", w, h)
		}

		cells := l.Cells(6)
		if got, want := cells[0].Frame, image.Rect(120, 520, 1180, 1396); got != want {
			t.Errorf("cells[0].Frame = %v, want %v", got, want)
		}
		if got, want := cells[5].Frame, image.Rect(1300, 2512, 2360, 3388); got != want {
			t.Errorf("cells[5].Frame = %v, want %v", got, want)
		}
		if got, want := cells[0].Photo, image.Rect(150, 550, 1150, 1266); got != want {
			t.Errorf("cells[0].Photo = %v, want %v", got, want)
		}
		if got, want := cells[0].CaptionCenter, image.Pt(650, 1326); got != want {
			t.Errorf("cells[0].CaptionCenter = %v, want %v", got, want)
		}
	})

	t.Run("全てのマスがページ内に収まること", func(t *testing.T) {
		page := image.Rect(0, 0, l.Width, l.Height)
		for _, n := range []int{1, 2, 3, 5, 6, 8} {
			cells := l.Cells(n)
			if len(cells) != n {
				t.Fatalf("n=%d: len = %d", n, len(cells))
			}
			for i, c := range cells {
				if !c.Frame.In(page) || !c.Photo.In(c.Frame) {
					t.Errorf("n=%d: cell %d がはみ出しています: %+v", n, i, c)
				}
				if c.Frame.Min.Y < l.TopMargin {
					t.Errorf("n=%d: cell %d がタイトル領域に重なっています", n, i)
				}
			}
		}
	})
}

func TestFitRect(t *testing.T) {
	box := image.Rect(0, 0, 1000, 716)
	tests := []struct {
		name string
		w, h int
		want image.Rectangle
	}{
		{"縦長は高さに合わせる", 100, 200, image.Rect(321, 0, 679, 716)},
		{"横長は幅に合わせる", 2000, 1000, image.Rect(0, 108, 1000, 608)},
		{"同じ比率はぴったり", 1000, 716, box},
		{"大きな画像は縮小", 4000, 2864, box},
		{"空の画像", 0, 10, image.Rect(0, 0, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FitRect(tt.w, tt.h, box); got != tt.want {
				t.Errorf("FitRect(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
			}
		})
	}
}

func TestShadowMask(t *testing.T) {
	m := shadowMask(400, 300, ShadowBlur, ShadowOpacity)
	if m.Bounds() != image.Rect(-60, -60, 460, 360) {
		t.Fatalf("bounds = %v", m.Bounds())
	}
	center := m.AlphaAt(200, 150).A
	if center != 51 {
		t.Errorf("中央の濃さ = %d, want 51", center)
	}
	if edge := m.AlphaAt(-60, -60).A; edge != 0 {
		t.Errorf("外周の濃さ = %d, want 0", edge)
	}
	if mid := m.AlphaAt(0, 150).A; mid == 0 || mid >= center {
		t.Errorf("境界はぼけているはずです: %d", mid)
	}
}
