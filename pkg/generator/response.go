package generator

import (
	"strings"

	"github.com/shouni/go-portrait-kit/pkg/domain"
	"google.golang.org/genai"
)

// Payload は API レスポンスをデコードした結果です。
// ImagePayload か TextOnlyResponse のどちらかになります。
type Payload interface {
	payload()
}

// ImagePayload は画像を含むレスポンスです。
type ImagePayload struct {
	MIMEType string
	Data     []byte
}

// TextOnlyResponse は画像を含まずテキストのみを返したレスポンスです。
type TextOnlyResponse struct {
	Text string
}

func (ImagePayload) payload()     {}
func (TextOnlyResponse) payload() {}

// DecodeResponse は最初の候補から画像パートを探し、見つからなければテキストとして扱います。
func DecodeResponse(resp *genai.GenerateContentResponse) Payload {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return TextOnlyResponse{}
	}

	var texts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			mimeType := part.InlineData.MIMEType
			if mimeType == "" {
				mimeType = domain.MimeTypePNG
			}
			return ImagePayload{MIMEType: mimeType, Data: part.InlineData.Data}
		}
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return TextOnlyResponse{Text: strings.Join(texts, "\n")}
}
