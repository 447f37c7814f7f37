package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shouni/go-portrait-kit/internal/builder"
	"github.com/shouni/go-portrait-kit/internal/config"
	"github.com/shouni/go-portrait-kit/pkg/domain"
	"github.com/shouni/go-portrait-kit/pkg/imaging"
	"github.com/shouni/go-portrait-kit/pkg/metrics"
	kitpipeline "github.com/shouni/go-portrait-kit/pkg/pipeline"
	"github.com/shouni/go-portrait-kit/pkg/publisher"

	kitconfig "github.com/shouni/go-portrait-kit/pkg/config"
)

// Execute は入力画像の検証から、全スタイルの生成、保存、アルバム合成までを実行するのだ。
func Execute(ctx context.Context, cfg *config.Config, out io.Writer) error {
	opts := cfg.Options
	if err := cfg.Kit.Validate(); err != nil {
		return fmt.Errorf("設定が不正なのだ: %w", err)
	}

	// --- Phase 1: Input Phase (入力画像の検証と縮小) ---
	src, err := LoadSource(cfg.Kit, opts.InputFile)
	if err != nil {
		return err
	}

	styles, err := builder.LoadStyles(opts)
	if err != nil {
		return err
	}

	client, err := builder.InitializeAIClient(ctx, cfg)
	if err != nil {
		return err
	}
	appCtx := builder.NewAppContext(cfg, client.Models, styles, metrics.NewPrometheus())

	// --- Phase 2: Generate Phase (ワーカープールで生成) ---
	scheduler, err := builder.BuildScheduler(&appCtx, progressObserver(len(styles)))
	if err != nil {
		return fmt.Errorf("スケジューラの構築に失敗したのだ: %w", err)
	}
	session := kitpipeline.NewSession(scheduler)
	batch, err := session.Start(ctx, src, styles)
	if err != nil {
		return fmt.Errorf("生成を開始できなかったのだ: %w", err)
	}
	snap, waitErr := batch.Wait(ctx)
	if waitErr != nil {
		// 取り消されたジョブも error として確定するまで待ってから、完成した分だけ保存するのだ
		<-batch.Done()
		slog.WarnContext(ctx, "生成が中断されたのだ。確定済みの画像だけ保存するのだ", "error", waitErr)
		snap = batch.Snapshot()
		ctx = context.WithoutCancel(ctx)
	}

	// --- Phase 3: Publish Phase (保存とアルバム) ---
	if err := publish(ctx, &appCtx, snap, out); err != nil {
		return err
	}
	if waitErr != nil {
		return fmt.Errorf("生成が中断されたのだ: %w", waitErr)
	}
	return nil
}

// ExecuteAlbum は出力ディレクトリに保存済みの画像からアルバムだけを作り直すのだ。
func ExecuteAlbum(ctx context.Context, cfg *config.Config) (string, error) {
	styles, err := builder.LoadStyles(cfg.Options)
	if err != nil {
		return "", err
	}
	appCtx := builder.NewAppContext(cfg, nil, styles, nil)

	snap, err := publisher.LoadImages(cfg.Options.OutputDir, styles)
	if err != nil {
		return "", err
	}
	return composeAlbum(ctx, &appCtx, snap)
}

// ExecuteValidate は入力画像の検証と縮小だけを行い、結果を表示するのだ。
func ExecuteValidate(ctx context.Context, cfg *config.Config, out io.Writer) error {
	src, err := LoadSource(cfg.Kit, cfg.Options.InputFile)
	if err != nil {
		return err
	}
	if err := RenderSource(out, cfg.Options.InputFile, src); err != nil {
		return err
	}
	slog.InfoContext(ctx, "入力画像は有効なのだ", "width", src.Width, "height", src.Height)
	return nil
}

// LoadSource はファイルを読み込み、サイズと形式を検証してから必要に応じて縮小するのだ。
func LoadSource(kit kitconfig.Config, path string) (domain.SourceImage, error) {
	if path == "" {
		return domain.SourceImage{}, fmt.Errorf("%w: 入力画像（--input）を指定してほしいのだ", domain.ErrInvalidInput)
	}
	validator := imaging.NewValidator(kit)

	// 読み込む前にサイズだけ確認して、巨大なファイルを避けるのだ
	stat, err := os.Stat(path)
	if err != nil {
		return domain.SourceImage{}, fmt.Errorf("入力画像 '%s' を開けなかったのだ: %w", path, err)
	}
	if stat.Size() > kit.MaxFileSizeBytes() {
		return domain.SourceImage{}, validator.Validate(imaging.FileInfo{Name: filepath.Base(path), Size: stat.Size()})
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.SourceImage{}, fmt.Errorf("入力画像 '%s' の読み込みに失敗したのだ: %w", path, err)
	}
	info, err := validator.ValidateBytes(filepath.Base(path), data)
	if err != nil {
		return domain.SourceImage{}, err
	}
	src, err := imaging.NewNormalizer(kit).Normalize(data, info.MIMEType)
	if err != nil {
		return domain.SourceImage{}, fmt.Errorf("入力画像 '%s' を処理できなかったのだ: %w", path, err)
	}
	return src, nil
}

func publish(ctx context.Context, appCtx *builder.AppContext, snap domain.BatchSnapshot, out io.Writer) error {
	opts := appCtx.Options
	pub := builder.BuildPublisher(appCtx)
	result, err := pub.SaveImages(ctx, snap, appCtx.Styles)
	if err != nil {
		return err
	}
	if err := RenderSummary(out, appCtx.Styles, snap, result.ImagePaths, opts.Locale); err != nil {
		return err
	}

	var albumErr error
	if opts.Album {
		var albumPath string
		albumPath, albumErr = composeAlbum(ctx, appCtx, snap)
		if albumErr == nil {
			fmt.Fprintf(out, "\nAlbum: %s\n", albumPath)
		}
	}

	if opts.MetricsFile != "" && appCtx.Metrics != nil {
		if err := appCtx.Metrics.WriteTextfile(opts.MetricsFile); err != nil {
			slog.WarnContext(ctx, "メトリクスの書き出しに失敗したのだ", "error", err)
		}
	}
	return albumErr
}

func composeAlbum(ctx context.Context, appCtx *builder.AppContext, snap domain.BatchSnapshot) (string, error) {
	compositor, err := builder.BuildCompositor(appCtx)
	if err != nil {
		return "", fmt.Errorf("アルバム合成器の構築に失敗したのだ: %w", err)
	}
	opts := appCtx.Options
	data, err := compositor.ComposeBatch(ctx, snap, appCtx.Styles, opts.Locale, opts.AlbumTitle, opts.AlbumSubtitle)
	if err != nil {
		if errors.Is(err, domain.ErrIncompleteBatch) {
			return "", fmt.Errorf("全てのスタイルが完成するまでアルバムは作れないのだ: %w", err)
		}
		return "", fmt.Errorf("アルバムの合成に失敗したのだ: %w", err)
	}
	return builder.BuildPublisher(appCtx).SaveAlbum(ctx, data)
}

// progressObserver はスタイルが確定するたびに進捗をログに出すのだ。
func progressObserver(total int) kitpipeline.Observer {
	resolved := 0
	return func(e kitpipeline.Event) {
		switch e.Type {
		case kitpipeline.EventBatchStarted:
			slog.Info("生成を開始したのだ", "batch_id", e.BatchID, "styles", total)
		case kitpipeline.EventJobCompleted:
			resolved++
			slog.Info("スタイルが確定したのだ",
				"style", e.Key,
				"status", string(e.Result.Status),
				"progress", fmt.Sprintf("%d/%d", resolved, total),
			)
		case kitpipeline.EventBatchCompleted:
			slog.Info("全てのスタイルが確定したのだ",
				"done", e.Snapshot.Count(domain.StatusDone),
				"failed", e.Snapshot.Count(domain.StatusError),
			)
		}
	}
}
