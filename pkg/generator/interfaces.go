package generator

import (
	"context"

	"github.com/shouni/go-portrait-kit/pkg/domain"
	"google.golang.org/genai"
)

// ContentGenerator は画像生成 API の呼び出しを抽象化するインターフェースです。
// *genai.Models がこのインターフェースを満たします。
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ImageGenerator は元画像とスタイルから1枚の画像を生成します。
// 実装はリトライとタイムアウトを内部で処理し、最終的な失敗のみを返します。
type ImageGenerator interface {
	Generate(ctx context.Context, src domain.SourceImage, job domain.StyleJob) (*domain.ImageData, error)
}
