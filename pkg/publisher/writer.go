package publisher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// OutputWriter はデータを保存先に書き込むためのインターフェースです。
type OutputWriter interface {
	Write(ctx context.Context, path string, data []byte) error
	// Remove はファイルを削除します。存在しない場合はエラーにしません。
	Remove(ctx context.Context, path string) error
}

// LocalWriter はローカルファイルシステムに書き込む OutputWriter です。
// 親ディレクトリが存在しない場合は作成します。
type LocalWriter struct{}

func (LocalWriter) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ディレクトリの作成に失敗しました: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("ファイルの書き込みに失敗しました: %w", err)
	}
	return nil
}

func (LocalWriter) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("ファイルの削除に失敗しました: %w", err)
	}
	return nil
}
