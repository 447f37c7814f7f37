package builder

import (
	"github.com/shouni/go-portrait-kit/internal/config"
	"github.com/shouni/go-portrait-kit/pkg/domain"
	"github.com/shouni/go-portrait-kit/pkg/generator"
	"github.com/shouni/go-portrait-kit/pkg/metrics"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各Build関数に渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config  *config.Config         // Configは、環境変数とCLIフラグを反映した設定です。
	Options config.GenerateOptions // Optionsは、コマンドラインから渡された実行時の設定です。
	Styles  domain.StyleCatalog    // Stylesは、生成するスタイルの一覧（カタログ順）です。
	Metrics *metrics.Prometheus    // Metricsは、試行回数やバッチ時間の記録先です。
	models  generator.ContentGenerator
}

// NewAppContext は AppContext の新しいインスタンスを生成する
func NewAppContext(
	cfg *config.Config,
	models generator.ContentGenerator,
	styles domain.StyleCatalog,
	rec *metrics.Prometheus,
) AppContext {
	return AppContext{
		Config:  cfg,
		Options: cfg.Options,
		Styles:  styles,
		Metrics: rec,
		models:  models,
	}
}
