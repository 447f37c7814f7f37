package builder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-portrait-kit/examples"
	"github.com/shouni/go-portrait-kit/internal/config"
	"github.com/shouni/go-portrait-kit/pkg/album"
	"github.com/shouni/go-portrait-kit/pkg/domain"
	"github.com/shouni/go-portrait-kit/pkg/generator"
	"github.com/shouni/go-portrait-kit/pkg/pipeline"
	"github.com/shouni/go-portrait-kit/pkg/prompts"
	"github.com/shouni/go-portrait-kit/pkg/publisher"

	"google.golang.org/genai"
)

// InitializeAIClient は genai クライアントを初期化します。
// APIキーがあれば Gemini API を、なければ PROJECT_ID と REGION で Vertex AI を使います。
func InitializeAIClient(ctx context.Context, cfg *config.Config) (*genai.Client, error) {
	clientConfig := &genai.ClientConfig{}
	switch {
	case cfg.GeminiAPIKey != "":
		clientConfig.APIKey = cfg.GeminiAPIKey
		clientConfig.Backend = genai.BackendGeminiAPI
	case cfg.ProjectID != "":
		clientConfig.Project = cfg.ProjectID
		clientConfig.Location = cfg.LocationID
		clientConfig.Backend = genai.BackendVertexAI
	default:
		return nil, fmt.Errorf("GEMINI_API_KEY または PROJECT_ID を設定してほしいのだ")
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return client, nil
}

// LoadStyles は --styles で指定されたファイル、なければ組み込みのカタログを読み込みます。
func LoadStyles(opts config.GenerateOptions) (domain.StyleCatalog, error) {
	if opts.StylesFile == "" {
		return examples.DefaultStyles()
	}
	styles, err := domain.LoadStyles(opts.StylesFile)
	if err != nil {
		return nil, fmt.Errorf("スタイル定義の取得に失敗しました: %w", err)
	}
	return styles, nil
}

// LoadPrompt は --prompt-file で指定されたテンプレート、なければ組み込みのテンプレートを返します。
func LoadPrompt(opts config.GenerateOptions) (prompts.Template, error) {
	if opts.PromptFile == "" {
		return prompts.DefaultTemplate(), nil
	}
	return prompts.LoadTemplate(opts.PromptFile)
}

// BuildGenerator はリトライとタイムアウトを備えた画像生成クライアントを構築します。
func BuildGenerator(appCtx *AppContext) (*generator.Client, error) {
	if appCtx.models == nil {
		return nil, fmt.Errorf("AIクライアントが初期化されていないのだ")
	}
	tmpl, err := LoadPrompt(appCtx.Options)
	if err != nil {
		return nil, fmt.Errorf("プロンプトテンプレートの取得に失敗しました: %w", err)
	}

	var opts []generator.Option
	if appCtx.Metrics != nil {
		opts = append(opts, generator.WithRecorder(appCtx.Metrics))
	}
	client, err := generator.NewClient(appCtx.models, appCtx.Config.Kit, tmpl, opts...)
	if err != nil {
		return nil, fmt.Errorf("画像生成クライアントの初期化に失敗したのだ: %w", err)
	}
	return client, nil
}

// BuildScheduler はワーカープールによるバッチスケジューラを構築します。
func BuildScheduler(appCtx *AppContext, observers ...pipeline.Observer) (*pipeline.Scheduler, error) {
	gen, err := BuildGenerator(appCtx)
	if err != nil {
		return nil, err
	}

	opts := make([]pipeline.SchedulerOption, 0, len(observers)+1)
	for _, o := range observers {
		opts = append(opts, pipeline.WithObserver(o))
	}
	if appCtx.Metrics != nil {
		opts = append(opts, pipeline.WithMetrics(appCtx.Metrics))
	}
	return pipeline.NewScheduler(gen, appCtx.Config.Kit.Workers, opts...)
}

// BuildCompositor はアルバム合成器を構築します。--font-file があればその書体を使います。
func BuildCompositor(appCtx *AppContext) (*album.Compositor, error) {
	var opts []album.Option
	if appCtx.Options.FontFile != "" {
		fonts, err := album.LoadFonts(appCtx.Options.FontFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, album.WithFonts(fonts))
	} else if appCtx.Options.Locale != domain.DefaultLocale {
		slog.Warn("組み込みフォントはラテン文字のみなのだ。キャプションが表示されない場合は --font-file を指定してほしいのだ",
			"locale", appCtx.Options.Locale)
	}
	return album.NewCompositor(appCtx.Config.Kit, opts...)
}

// BuildPublisher は出力ディレクトリに書き込む Publisher を構築します。
func BuildPublisher(appCtx *AppContext) *publisher.Publisher {
	return publisher.NewPublisher(publisher.LocalWriter{}, appCtx.Options.OutputDir)
}
