package cmd

import (
	"github.com/shouni/go-portrait-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

var validateInput string

// validateCmd は、API を呼ばずに入力画像の検証と縮小だけを試すのだ。
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "入力画像がアップロード可能か確認するのだ。",
	Long:  `ファイルサイズと形式を検証し、長辺が上限を超える場合は縮小後のサイズを表示するのだ。`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts.InputFile = validateInput
		return pipeline.ExecuteValidate(cmd.Context(), loadConfig(), cmd.OutOrStdout())
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "input", "i", "", "検証する画像のパスなのだ。")
	_ = validateCmd.MarkFlagRequired("input")
}
