package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/shouni/go-portrait-kit/pkg/domain"
	"github.com/shouni/go-portrait-kit/pkg/imaging"
)

// PublishResult は保存したファイルの情報です。
type PublishResult struct {
	// ImagePaths はスタイルキーと保存先パスの対応です。
	ImagePaths map[string]string
	// Skipped は done でなかったため保存しなかったスタイルキーです（定義順）。
	Skipped []string
}

// Publisher は生成結果を出力ディレクトリに保存します。
type Publisher struct {
	writer    OutputWriter
	outputDir string
}

// NewPublisher は Publisher を生成します。writer が nil の場合は LocalWriter を使います。
func NewPublisher(writer OutputWriter, outputDir string) *Publisher {
	if writer == nil {
		writer = LocalWriter{}
	}
	return &Publisher{
		writer:    writer,
		outputDir: outputDir,
	}
}

// OutputDir は出力先ディレクトリを返します。
func (p *Publisher) OutputDir() string {
	return p.outputDir
}

// SaveImages は done のスタイルの画像を professional-attire-<key>.<ext> として保存します。
// 以前のバッチで保存された同じキーのファイルは、拡張子が違うものも含めて削除します。
// done でないスタイルのファイルは残さないため、LoadImages が古い画像を返すことはありません。
func (p *Publisher) SaveImages(ctx context.Context, snap domain.BatchSnapshot, jobs []domain.StyleJob) (PublishResult, error) {
	result := PublishResult{ImagePaths: make(map[string]string, len(jobs))}
	for _, job := range jobs {
		r, ok := snap[job.Key]
		if !ok || !r.IsDone() {
			if err := p.removeStale(ctx, job.Key, ""); err != nil {
				return result, err
			}
			result.Skipped = append(result.Skipped, job.Key)
			continue
		}
		fullPath := ResolveOutputPath(p.outputDir, ImageFileName(job.Key, r.Image.MimeType))
		if err := p.removeStale(ctx, job.Key, fullPath); err != nil {
			return result, err
		}
		if err := p.writer.Write(ctx, fullPath, r.Image.Data); err != nil {
			return result, fmt.Errorf("画像の書き込みに失敗しました %s: %w", fullPath, err)
		}
		result.ImagePaths[job.Key] = fullPath
		slog.InfoContext(ctx, "画像を保存しました", slog.String("style", job.Key), slog.String("path", fullPath))
	}
	return result, nil
}

// removeStale は key の画像ファイルのうち keep 以外を削除します。
func (p *Publisher) removeStale(ctx context.Context, key, keep string) error {
	for _, mimeType := range candidateMIMETypes {
		path := ResolveOutputPath(p.outputDir, ImageFileName(key, mimeType))
		if path == keep {
			continue
		}
		if err := p.writer.Remove(ctx, path); err != nil {
			return fmt.Errorf("古い画像の削除に失敗しました %s: %w", path, err)
		}
	}
	return nil
}

// SaveAlbum はアルバムページを professional-attire-album.jpg として保存し、そのパスを返します。
func (p *Publisher) SaveAlbum(ctx context.Context, data []byte) (string, error) {
	fullPath := ResolveOutputPath(p.outputDir, AlbumFileName)
	if err := p.writer.Write(ctx, fullPath, data); err != nil {
		return "", fmt.Errorf("アルバムの書き込みに失敗しました: %w", err)
	}
	slog.InfoContext(ctx, "アルバムを保存しました", slog.String("path", fullPath))
	return fullPath, nil
}

// candidateMIMETypes は LoadImages が探す拡張子の順序です。
var candidateMIMETypes = []string{domain.MimeTypePNG, domain.MimeTypeJPEG, domain.MimeTypeWebP}

// LoadImages は SaveImages で保存した画像をディレクトリから読み込み、スナップショットとして返します。
// ファイルが見つからないスタイルはスナップショットに含めません。
func LoadImages(dir string, jobs []domain.StyleJob) (domain.BatchSnapshot, error) {
	snap := make(domain.BatchSnapshot, len(jobs))
	for _, job := range jobs {
		for _, mimeType := range candidateMIMETypes {
			fullPath := ResolveOutputPath(dir, ImageFileName(job.Key, mimeType))
			data, err := os.ReadFile(fullPath)
			if os.IsNotExist(err) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("画像の読み込みに失敗しました %s: %w", fullPath, err)
			}
			snap[job.Key] = domain.Done(&domain.ImageData{Data: data, MimeType: imaging.DetectMIMEType(data)})
			break
		}
	}
	return snap, nil
}
