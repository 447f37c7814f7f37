package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/shouni/go-portrait-kit/pkg/domain"
)

// RenderSummary はスタイルごとの生成結果を表にして出力するのだ。
// 成功したスタイルは保存先、失敗したスタイルはエラーを表示するのだ。
func RenderSummary(w io.Writer, styles []domain.StyleJob, snap domain.BatchSnapshot, paths map[string]string, locale string) error {
	table := tablewriter.NewWriter(w)
	table.Header("Style", "Name", "Status", "File / Error")

	for _, job := range styles {
		result := snap[job.Key]
		detail := ""
		switch result.Status {
		case domain.StatusDone:
			detail = paths[job.Key]
		case domain.StatusError:
			detail = result.Error
		}
		if err := table.Append(job.Key, job.Caption(locale), strings.ToUpper(string(result.Status)), detail); err != nil {
			return fmt.Errorf("結果表の行の追加に失敗したのだ (%s): %w", job.Key, err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("結果表の描画に失敗したのだ: %w", err)
	}

	_, err := fmt.Fprintf(w, "\nDone: %d / Failed: %d / Total: %d\n",
		snap.Count(domain.StatusDone), snap.Count(domain.StatusError), len(styles))
	return err
}

// RenderStyles はスタイルカタログの一覧を表にして出力するのだ。
func RenderStyles(w io.Writer, styles []domain.StyleJob, locale string) error {
	table := tablewriter.NewWriter(w)
	table.Header("#", "Key", "Name", "Style", "Background")
	for i, job := range styles {
		if err := table.Append(fmt.Sprintf("%d", i+1), job.Key, job.Caption(locale), job.StyleDescription, job.BackgroundDescription); err != nil {
			return fmt.Errorf("スタイル表の行の追加に失敗したのだ (%s): %w", job.Key, err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("スタイル表の描画に失敗したのだ: %w", err)
	}
	_, err := fmt.Fprintf(w, "\nTotal styles: %d\n", len(styles))
	return err
}

// RenderSource は検証済みの入力画像の情報を表にして出力するのだ。
func RenderSource(w io.Writer, path string, src domain.SourceImage) error {
	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")
	rows := [][]any{
		{"File", path},
		{"MIME", src.MIMEType},
		{"Size", fmt.Sprintf("%d bytes", len(src.Data))},
		{"Dimensions", fmt.Sprintf("%dx%d", src.Width, src.Height)},
	}
	for _, row := range rows {
		if err := table.Append(row...); err != nil {
			return fmt.Errorf("入力画像表の行の追加に失敗したのだ: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("入力画像表の描画に失敗したのだ: %w", err)
	}
	return nil
}
