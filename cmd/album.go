package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-portrait-kit/internal/pipeline"
	"github.com/shouni/go-portrait-kit/pkg/album"

	"github.com/spf13/cobra"
)

var albumDir string

// albumCmd は、保存済みの画像からアルバムページだけを作り直すのだ。
var albumCmd = &cobra.Command{
	Use:   "album",
	Short: "保存済みのポートレートからアルバムページを作るのだ。",
	Long: `generate で保存した professional-attire-<key>.<ext> を読み込み、スタイルの定義順にグリッドへ並べるのだ。
1つでも欠けているスタイルがあればアルバムは作らないのだよ。`,
	RunE: albumCommand,
}

func init() {
	albumCmd.Flags().StringVarP(&albumDir, "dir", "d", "", "画像を読み込むディレクトリなのだ（既定は --output-dir）。")
	addAlbumFlags(albumCmd)
}

// addAlbumFlags はアルバムの見た目に関するフラグを追加するのだ。
func addAlbumFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&opts.AlbumTitle, "title", album.DefaultTitle, "アルバムのタイトルなのだ。")
	cmd.Flags().StringVar(&opts.AlbumSubtitle, "subtitle", album.DefaultSubtitle, "アルバムのサブタイトルなのだ。")
	cmd.Flags().StringVar(&opts.FontFile, "font-file", "", "キャプションに使う TrueType/OpenType フォントなのだ（アラビア語などに必要なのだ）。")
}

func albumCommand(cmd *cobra.Command, _ []string) error {
	if albumDir != "" {
		opts.OutputDir = albumDir
	}
	cfg := loadConfig()

	path, err := pipeline.ExecuteAlbum(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("アルバムの作成に失敗したのだ: %w", err)
	}

	slog.Info("アルバムを保存したのだ！", "path", path)
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
