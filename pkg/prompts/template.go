package prompts

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/shouni/go-portrait-kit/pkg/domain"
)

// テンプレート内のプレースホルダーです。
const (
	PlaceholderStyle      = "{styleDescription}"
	PlaceholderBackground = "{backgroundDescription}"
)

const ModePortrait = "portrait"

var (
	//go:embed portrait.md
	PortraitPrompt string
)

// allTemplates はモードとテンプレート文字列を紐づけるマップです。
var allTemplates = map[string]string{
	ModePortrait: PortraitPrompt,
}

// Template はスタイルの説明を埋め込んで生成指示を組み立てます。
type Template struct {
	text string
}

// NewTemplate はテンプレート文字列を検証して Template を生成します。
// 衣装のプレースホルダーを含まないテンプレートはスタイルを区別できないため拒否します。
func NewTemplate(text string) (Template, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Template{}, fmt.Errorf("プロンプトテンプレートが空です")
	}
	if !strings.Contains(text, PlaceholderStyle) {
		return Template{}, fmt.Errorf("プロンプトテンプレートに %s が含まれていません", PlaceholderStyle)
	}
	return Template{text: text}, nil
}

// DefaultTemplate は組み込みのポートレート用テンプレートを返します。
func DefaultTemplate() Template {
	t, err := Lookup(ModePortrait)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup はモード名に対応する組み込みテンプレートを返します。
func Lookup(mode string) (Template, error) {
	content, ok := allTemplates[mode]
	if !ok {
		return Template{}, fmt.Errorf("不明なモードです: '%s'", mode)
	}
	t, err := NewTemplate(content)
	if err != nil {
		return Template{}, fmt.Errorf("プロンプトテンプレート '%s' (go:embed) の読み込みに失敗しました: %w", mode, err)
	}
	return t, nil
}

// LoadTemplate はファイルからテンプレートを読み込みます。
func LoadTemplate(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("プロンプトテンプレートの読み込みに失敗しました: %w", err)
	}
	return NewTemplate(string(data))
}

// Build はスタイルの説明をプレースホルダーに埋め込んだ指示文を返します。
func (t Template) Build(job domain.StyleJob) string {
	r := strings.NewReplacer(
		PlaceholderStyle, job.StyleDescription,
		PlaceholderBackground, job.BackgroundDescription,
	)
	return r.Replace(t.text)
}

// String はテンプレート本文を返します。
func (t Template) String() string {
	return t.text
}
