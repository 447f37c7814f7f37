package publisher

import (
	"path/filepath"
	"strings"

	"github.com/shouni/go-portrait-kit/pkg/domain"
)

const (
	imageFilePrefix = "professional-attire-"
	// AlbumFileName はアルバムページのファイル名です。
	AlbumFileName = "professional-attire-album.jpg"
)

// fileNameSanitizer はファイル名として使用できない文字を置換します。
var fileNameSanitizer = strings.NewReplacer(
	"/", "_",
	`\`, "_",
	":", "_",
	"*", "_",
	"?", "_",
	`"`, "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "_",
)

// ResolveOutputPath はベースディレクトリとファイル名から出力パスを生成します。
func ResolveOutputPath(baseDir, fileName string) string {
	return filepath.Join(baseDir, fileName)
}

// ImageFileName はスタイルキーと MIME タイプから professional-attire-<key>.<ext> 形式のファイル名を返します。
func ImageFileName(key, mimeType string) string {
	return imageFilePrefix + fileNameSanitizer.Replace(key) + domain.ExtensionForMIME(mimeType)
}
