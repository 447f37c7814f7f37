package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/shouni/go-portrait-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// generateCmd は、元画像から全スタイルのポートレートを生成するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "写真から全スタイルのポートレートを生成するのだ。",
	Long: `入力画像を検証・縮小してから、スタイルごとの生成をワーカープールで並行実行するのだ。
成功した画像は出力ディレクトリに保存し、--album を付けると全スタイルをまとめたアルバムも作るのだよ。`,
	RunE: generateCommand,
}

func init() {
	generateCmd.Flags().StringVarP(&opts.InputFile, "input", "i", "", "元になる人物写真（JPEG / PNG）のパスなのだ。")
	generateCmd.Flags().StringVar(&opts.PromptFile, "prompt-file", "", "プロンプトテンプレートのパスなのだ。省略時は組み込みのテンプレートを使うのだ。")
	generateCmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Prometheus テキスト形式でメトリクスを書き出すパスなのだ。")
	generateCmd.Flags().BoolVar(&opts.Album, "album", false, "全スタイルが完成したらアルバムページも作るのだ。")

	// --- AI挙動・実行制御 ---
	generateCmd.Flags().StringVar(&opts.ImageModel, "image-model", "", "使用する Gemini 画像モデル名なのだ。")
	generateCmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "同時に生成するワーカー数なのだ（既定は 2）。")
	generateCmd.Flags().IntVar(&opts.MaxRetries, "max-retries", 0, "1スタイルあたりの最大試行回数なのだ（既定は 3）。")
	generateCmd.Flags().DurationVar(&opts.APITimeout, "api-timeout", 0, "1回の API 呼び出しの制限時間なのだ（既定は 30s）。")
	generateCmd.Flags().DurationVar(&opts.RateInterval, "rate-interval", 0, "API 呼び出しの最小間隔なのだ（0 で制限なし）。")

	addAlbumFlags(generateCmd)
	_ = generateCmd.MarkFlagRequired("input")
}

func generateCommand(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := loadConfig()

	slog.Info("ポートレート生成パイプラインを起動するのだ！",
		"input", opts.InputFile,
		"image_model", cfg.Kit.ImageModel,
		"workers", cfg.Kit.Workers,
		"output", opts.OutputDir)

	if err := pipeline.Execute(ctx, cfg, os.Stdout); err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("すべての生成工程が完了したのだ！")
	return nil
}
