package cmd

import (
	"github.com/shouni/go-portrait-kit/internal/builder"
	"github.com/shouni/go-portrait-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// stylesCmd は、生成に使うスタイルの一覧を表示するのだ。
var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "スタイルカタログを一覧表示するのだ。",
	RunE: func(cmd *cobra.Command, _ []string) error {
		styles, err := builder.LoadStyles(opts)
		if err != nil {
			return err
		}
		return pipeline.RenderStyles(cmd.OutOrStdout(), styles, opts.Locale)
	},
}
