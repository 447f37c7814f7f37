package domain

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseStyles(t *testing.T) {
	t.Run("JSONからカタログを読み込めること", func(t *testing.T) {
		input := []byte(`[
			{
				"key": "executive-thobe",
				"name": {"en": "Executive Thobe", "ar": "الثوب التنفيذي"},
				"style_description": "a pristine white thobe",
				"background_description": "a light grey studio background"
			},
			{
				"key": "formal-bisht",
				"name": {"en": "Formal Bisht"},
				"style_description": "a luxurious black bisht",
				"background_description": "a deep charcoal background"
			}
		]`)

		styles, err := ParseStyles(input, "json")
		if err != nil {
			t.Fatalf("正常なJSONでエラーが発生しました: %v", err)
		}
		if got := styles.Keys(); len(got) != 2 || got[0] != "executive-thobe" || got[1] != "formal-bisht" {
			t.Errorf("カタログ順が保持されていません: %v", got)
		}
		if styles[0].StyleDescription != "a pristine white thobe" {
			t.Errorf("style_description が違います: %q", styles[0].StyleDescription)
		}
	})

	t.Run("YAMLからカタログを読み込めること", func(t *testing.T) {
		input := []byte(`
- key: classic-ghutra
  name:
    en: Classic Ghutra
  style_description: a classic white thobe
  background_description: a soft off-white background
`)
		styles, err := ParseStyles(input, "yaml")
		if err != nil {
			t.Fatalf("正常なYAMLでエラーが発生しました: %v", err)
		}
		if styles[0].Caption("en") != "Classic Ghutra" {
			t.Errorf("期待値 'Classic Ghutra', 実際の値 '%s'", styles[0].Caption("en"))
		}
	})

	t.Run("重複したキーはエラーになること", func(t *testing.T) {
		input := []byte(`[{"key": "a"}, {"key": "a"}]`)
		_, err := ParseStyles(input, "json")
		if !errors.Is(err, ErrDuplicateStyle) {
			t.Errorf("ErrDuplicateStyle を期待しましたが %v でした", err)
		}
	})

	t.Run("空のキーはエラーになること", func(t *testing.T) {
		_, err := ParseStyles([]byte(`[{"key": " "}]`), "json")
		if !errors.Is(err, ErrEmptyStyleKey) {
			t.Errorf("ErrEmptyStyleKey を期待しましたが %v でした", err)
		}
	})

	t.Run("不正な入力はエラーになること", func(t *testing.T) {
		if _, err := ParseStyles([]byte(`{ invalid json }`), "json"); err == nil {
			t.Error("不正なJSONでエラーが発生しませんでした")
		}
		if _, err := ParseStyles([]byte(`[]`), "json"); err == nil {
			t.Error("空のカタログでエラーが発生しませんでした")
		}
		if _, err := ParseStyles([]byte(`[]`), "toml"); err == nil {
			t.Error("未対応フォーマットでエラーが発生しませんでした")
		}
	})
}

func TestLoadStyles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "styles.yml")
	content := "- key: subtle-luxury\n  style_description: a beige thobe\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	styles, err := LoadStyles(path)
	if err != nil {
		t.Fatalf("LoadStyles failed: %v", err)
	}
	if len(styles) != 1 || styles[0].Key != "subtle-luxury" {
		t.Errorf("unexpected catalog: %+v", styles)
	}

	if _, err := LoadStyles(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("存在しないファイルでエラーが発生しませんでした")
	}
}

func TestStyleJob_Caption(t *testing.T) {
	s := StyleJob{Key: "formal-bisht", Name: map[string]string{"en": "Formal Bisht", "ar": "البشت الرسمي"}}

	tests := []struct {
		name   string
		style  StyleJob
		locale string
		want   string
	}{
		{"指定ロケール", s, "ar", "البشت الرسمي"},
		{"英語へのフォールバック", s, "fr", "Formal Bisht"},
		{"キーへのフォールバック", StyleJob{Key: "bare"}, "ar", "bare"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.style.Caption(tt.locale); got != tt.want {
				t.Errorf("期待値 '%s', 実際の値 '%s'", tt.want, got)
			}
		})
	}

	if s.String() != "Formal Bisht (formal-bisht)" {
		t.Errorf("String() = %q", s.String())
	}
}

func TestStyleCatalog_Find(t *testing.T) {
	c := StyleCatalog{{Key: "a"}, {Key: "b"}}
	if s, ok := c.Find("b"); !ok || s.Key != "b" {
		t.Errorf("Find(b) = %+v, %v", s, ok)
	}
	if _, ok := c.Find("z"); ok {
		t.Error("存在しないキーが見つかりました")
	}
}
