package domain

import (
	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"
)

// MIME タイプ定数です。
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeWebP = "image/webp"
)

// SourceImage は検証・縮小済みの元画像です。
// 生成後は変更されず、バッチ内の全ワーカーから読み取り専用で共有されます。
type SourceImage struct {
	Data     []byte
	MIMEType string
	Width    int
	Height   int
}

// ImageData は生成された画像データです。
type ImageData = imagedom.ImageResponse

// ExtensionForMIME は MIME タイプに対応するファイル拡張子を返します。
func ExtensionForMIME(mimeType string) string {
	switch mimeType {
	case MimeTypeJPEG:
		return ".jpg"
	case MimeTypeWebP:
		return ".webp"
	default:
		return ".png"
	}
}
