package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shouni/go-portrait-kit/pkg/domain"
)

func TestTemplate_Build(t *testing.T) {
	job := domain.StyleJob{
		Key:                   "formal-bisht",
		StyleDescription:      "a luxurious black bisht",
		BackgroundDescription: "a deep charcoal grey background",
	}

	t.Run("組み込みテンプレートに説明が埋め込まれること", func(t *testing.T) {
		got := DefaultTemplate().Build(job)
		if !strings.Contains(got, "Dress them in a luxurious black bisht.") {
			t.Errorf("衣装の説明が埋め込まれていません: %s", got)
		}
		if !strings.Contains(got, "The background should be a deep charcoal grey background.") {
			t.Errorf("背景の説明が埋め込まれていません: %s", got)
		}
		if strings.Contains(got, "{") {
			t.Errorf("プレースホルダーが残っています: %s", got)
		}
	})

	t.Run("全ての出現箇所が置換されること", func(t *testing.T) {
		tmpl, err := NewTemplate("{styleDescription} / {styleDescription} on {backgroundDescription}")
		if err != nil {
			t.Fatal(err)
		}
		want := "a luxurious black bisht / a luxurious black bisht on a deep charcoal grey background"
		if got := tmpl.Build(job); got != want {
			t.Errorf("期待値 %q, 実際の値 %q", want, got)
		}
	})
}

func TestNewTemplate(t *testing.T) {
	if _, err := NewTemplate("   "); err == nil {
		t.Error("空のテンプレートでエラーが発生しませんでした")
	}
	if _, err := NewTemplate("no placeholders here"); err == nil {
		t.Error("プレースホルダーなしのテンプレートでエラーが発生しませんでした")
	}
	if _, err := Lookup("unknown"); err == nil {
		t.Error("不明なモードでエラーが発生しませんでした")
	}
}

func TestLoadTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.txt")
	if err := os.WriteFile(path, []byte("Wear {styleDescription}.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tmpl, err := LoadTemplate(path)
	if err != nil {
		t.Fatalf("LoadTemplate failed: %v", err)
	}
	if got := tmpl.Build(domain.StyleJob{StyleDescription: "a navy thobe"}); got != "Wear a navy thobe." {
		t.Errorf("unexpected prompt: %q", got)
	}
}
