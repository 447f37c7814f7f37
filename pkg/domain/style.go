package domain

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLocale はキャプションのフォールバックに使うロケールです。
const DefaultLocale = "en"

// StyleJob は1つの生成スタイル（衣装と背景）の定義です。
// 起動時に定義され、以降は変更されません。
type StyleJob struct {
	Key                   string            `json:"key" yaml:"key"`
	Name                  map[string]string `json:"name" yaml:"name"` // ロケールごとの表示名（アルバムのキャプション）
	StyleDescription      string            `json:"style_description" yaml:"style_description"`
	BackgroundDescription string            `json:"background_description" yaml:"background_description"`
}

// Caption は指定ロケールの表示名を返します。
// 見つからない場合は DefaultLocale、それもなければ Key を返します。
func (s StyleJob) Caption(locale string) string {
	if name := s.Name[locale]; name != "" {
		return name
	}
	if name := s.Name[DefaultLocale]; name != "" {
		return name
	}
	return s.Key
}

// String はスタイルの情報を文字列で返します。
func (s StyleJob) String() string {
	return fmt.Sprintf("%s (%s)", s.Caption(DefaultLocale), s.Key)
}

// StyleCatalog は正規順序を持つスタイルの一覧です。
// アルバムのグリッド配置などはこの順序に従います。
type StyleCatalog []StyleJob

// Keys はカタログ順のスタイルキーを返します。
func (c StyleCatalog) Keys() []string {
	keys := make([]string, 0, len(c))
	for _, s := range c {
		keys = append(keys, s.Key)
	}
	return keys
}

// Find はキーに一致するスタイルを返します。
func (c StyleCatalog) Find(key string) (StyleJob, bool) {
	for _, s := range c {
		if s.Key == key {
			return s, true
		}
	}
	return StyleJob{}, false
}

// Validate はキーが空でなく一意であることを確認します。
func (c StyleCatalog) Validate() error {
	seen := make(map[string]struct{}, len(c))
	for i, s := range c {
		if strings.TrimSpace(s.Key) == "" {
			return fmt.Errorf("%w: index %d", ErrEmptyStyleKey, i)
		}
		if _, ok := seen[s.Key]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateStyle, s.Key)
		}
		seen[s.Key] = struct{}{}
	}
	return nil
}

// LoadStyles は指定されたファイルパスからスタイル定義を読み込みます。
// 拡張子が .yaml / .yml の場合は YAML、それ以外は JSON として扱います。
func LoadStyles(path string) (StyleCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("スタイル定義ファイルの読み込みに失敗しました: %w", err)
	}

	format := "json"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}
	return ParseStyles(data, format)
}

// ParseStyles はバイト列からスタイル定義をパースします。
// この関数はステートレスであり、キャッシュを行いません。
func ParseStyles(data []byte, format string) (StyleCatalog, error) {
	var styles StyleCatalog
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &styles); err != nil {
			return nil, fmt.Errorf("スタイル定義のYAMLパースに失敗しました: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &styles); err != nil {
			return nil, fmt.Errorf("スタイル定義のJSONパースに失敗しました: %w", err)
		}
	default:
		return nil, fmt.Errorf("不明なフォーマットです: '%s'", format)
	}

	if len(styles) == 0 {
		return nil, fmt.Errorf("スタイル定義が空です")
	}
	if err := styles.Validate(); err != nil {
		return nil, err
	}
	return styles, nil
}
