package publisher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shouni/go-portrait-kit/pkg/domain"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func TestImageFileName(t *testing.T) {
	tests := []struct {
		key, mime, want string
	}{
		{"formal-bisht", domain.MimeTypePNG, "professional-attire-formal-bisht.png"},
		{"formal-bisht", domain.MimeTypeJPEG, "professional-attire-formal-bisht.jpg"},
		{"a/b c", "", "professional-attire-a_b_c.png"},
	}
	for _, tt := range tests {
		if got := ImageFileName(tt.key, tt.mime); got != tt.want {
			t.Errorf("ImageFileName(%q, %q) = %q, want %q", tt.key, tt.mime, got, tt.want)
		}
	}
}

func TestPublisher_SaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	jobs := []domain.StyleJob{{Key: "formal-bisht"}, {Key: "white-thobe"}, {Key: "modern-shemagh"}}
	snap := domain.BatchSnapshot{
		"formal-bisht":   domain.Done(&domain.ImageData{Data: pngHeader, MimeType: domain.MimeTypePNG}),
		"white-thobe":    domain.Failed("boom"),
		"modern-shemagh": domain.Done(&domain.ImageData{Data: []byte{0xff, 0xd8, 0xff, 0xe0}, MimeType: domain.MimeTypeJPEG}),
	}

	p := NewPublisher(nil, dir)
	result, err := p.SaveImages(context.Background(), snap, jobs)
	if err != nil {
		t.Fatalf("SaveImages failed: %v", err)
	}
	if len(result.ImagePaths) != 2 || len(result.Skipped) != 1 || result.Skipped[0] != "white-thobe" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if _, err := os.Stat(filepath.Join(dir, "professional-attire-modern-shemagh.jpg")); err != nil {
		t.Errorf("JPEG が保存されていません: %v", err)
	}

	albumPath, err := p.SaveAlbum(context.Background(), []byte("album"))
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(albumPath) != AlbumFileName {
		t.Errorf("album path = %s", albumPath)
	}

	loaded, err := LoadImages(dir, jobs)
	if err != nil {
		t.Fatalf("LoadImages failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("読み込んだ画像数 = %d, want 2", len(loaded))
	}
	if r := loaded["formal-bisht"]; !r.IsDone() || r.Image.MimeType != domain.MimeTypePNG {
		t.Errorf("formal-bisht: %+v", r)
	}
	if _, ok := loaded["white-thobe"]; ok {
		t.Error("保存していない画像が読み込まれています")
	}
	if missing := loaded.MissingDone(domain.StyleCatalog(jobs).Keys()); len(missing) != 1 {
		t.Errorf("MissingDone = %v", missing)
	}
}

func TestLocalWriter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (LocalWriter{}).Write(ctx, filepath.Join(t.TempDir(), "x"), nil); err == nil {
		t.Error("キャンセル済みのコンテキストでエラーが発生しませんでした")
	}
}

func TestPublisher_SaveImages_RemovesStaleFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	jobs := []domain.StyleJob{{Key: "formal-bisht"}}
	jpegData := []byte{0xff, 0xd8, 0xff, 0xe0, 'N', 'E', 'W'}
	p := NewPublisher(nil, dir)

	// 1回目は PNG、2回目は JPEG で保存されたとき、新しい JPEG だけが残ること
	if _, err := p.SaveImages(ctx, domain.BatchSnapshot{
		"formal-bisht": domain.Done(&domain.ImageData{Data: pngHeader, MimeType: domain.MimeTypePNG}),
	}, jobs); err != nil {
		t.Fatal(err)
	}
	if _, err := p.SaveImages(ctx, domain.BatchSnapshot{
		"formal-bisht": domain.Done(&domain.ImageData{Data: jpegData, MimeType: domain.MimeTypeJPEG}),
	}, jobs); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "professional-attire-formal-bisht.png")); !os.IsNotExist(err) {
		t.Errorf("古い PNG が残っています: %v", err)
	}
	loaded, err := LoadImages(dir, jobs)
	if err != nil {
		t.Fatal(err)
	}
	if r := loaded["formal-bisht"]; !r.IsDone() || string(r.Image.Data) != string(jpegData) {
		t.Errorf("新しい画像が読み込まれていません: %+v", r)
	}

	// 3回目に失敗したら、以前の画像は読み込まれないこと
	if _, err := p.SaveImages(ctx, domain.BatchSnapshot{"formal-bisht": domain.Failed("boom")}, jobs); err != nil {
		t.Fatal(err)
	}
	loaded, err = LoadImages(dir, jobs)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := loaded["formal-bisht"]; ok {
		t.Error("失敗したスタイルに前回の画像が使われています")
	}
}

func TestLocalWriter_Remove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.png")
	if err := (LocalWriter{}).Remove(context.Background(), path); err != nil {
		t.Errorf("存在しないファイルの削除でエラーが発生しました: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := (LocalWriter{}).Remove(context.Background(), path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("ファイルが削除されていません: %v", err)
	}
}
