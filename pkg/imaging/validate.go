package imaging

import (
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/shouni/go-portrait-kit/pkg/config"
	"github.com/shouni/go-portrait-kit/pkg/domain"
)

// FileInfo はアップロードされたファイルのメタデータです。
type FileInfo struct {
	Name     string
	Size     int64
	MIMEType string
}

// Validator はファイルサイズと形式を検証します。I/O は行いません。
type Validator struct {
	maxBytes int64
	formats  map[string]struct{}
}

// NewValidator は設定から Validator を生成します。
func NewValidator(cfg config.Config) *Validator {
	formats := make(map[string]struct{}, len(cfg.SupportedFormats))
	for _, f := range cfg.SupportedFormats {
		formats[normalizeMIME(f)] = struct{}{}
	}
	return &Validator{
		maxBytes: cfg.MaxFileSizeBytes(),
		formats:  formats,
	}
}

// Validate はサイズ上限と許可リストを確認します。
// 上限ちょうどのサイズは有効で、1バイトでも超えると ErrTooLarge になります。
func (v *Validator) Validate(f FileInfo) error {
	if f.Size > v.maxBytes {
		return fmt.Errorf("%w: %s is %d bytes (max %d)", domain.ErrTooLarge, displayName(f), f.Size, v.maxBytes)
	}
	if _, ok := v.formats[normalizeMIME(f.MIMEType)]; !ok {
		return fmt.Errorf("%w: %s has type %q", domain.ErrInvalidFormat, displayName(f), f.MIMEType)
	}
	return nil
}

// ValidateBytes は内容から MIME タイプを推定してから Validate を実行します。
func (v *Validator) ValidateBytes(name string, data []byte) (FileInfo, error) {
	info := FileInfo{
		Name:     name,
		Size:     int64(len(data)),
		MIMEType: DetectMIMEType(data),
	}
	return info, v.Validate(info)
}

// DetectMIMEType はバイト列の先頭から MIME タイプを推定します。
func DetectMIMEType(data []byte) string {
	return normalizeMIME(http.DetectContentType(data))
}

// normalizeMIME はパラメータを取り除き小文字に揃えます。
func normalizeMIME(s string) string {
	if mt, _, err := mime.ParseMediaType(s); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(s))
}

func displayName(f FileInfo) string {
	if f.Name == "" {
		return "file"
	}
	return f.Name
}
