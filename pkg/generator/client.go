package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-portrait-kit/pkg/config"
	"github.com/shouni/go-portrait-kit/pkg/domain"
	"github.com/shouni/go-portrait-kit/pkg/metrics"
	"github.com/shouni/go-portrait-kit/pkg/prompts"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// Client は1スタイル分の画像生成をタイムアウトとリトライ付きで実行します。
// 呼び出し間で状態を持たないため、複数のワーカーから同時に利用できます。
type Client struct {
	models      ContentGenerator
	model       string
	prompt      prompts.Template
	timeout     time.Duration
	maxAttempts int
	baseDelay   time.Duration
	limiter     *rate.Limiter
	recorder    metrics.Recorder
	sleep       func(ctx context.Context, d time.Duration) error
}

// Option は Client の任意設定です。
type Option func(*Client)

// WithRecorder は試行結果の記録先を設定します。
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithLimiter は API 呼び出しの流量制限を設定します。
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// NewClient は Client を生成します。
// cfg.RateInterval が正の場合は呼び出し間隔を制限するリミッターを設定します（バースト数はワーカー数）。
func NewClient(models ContentGenerator, cfg config.Config, tmpl prompts.Template, opts ...Option) (*Client, error) {
	if models == nil {
		return nil, fmt.Errorf("ContentGenerator が nil です")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定が不正です: %w", err)
	}

	c := &Client{
		models:      models,
		model:       cfg.ImageModel,
		prompt:      tmpl,
		timeout:     cfg.APITimeout,
		maxAttempts: cfg.MaxRetries,
		baseDelay:   cfg.BaseDelay,
		recorder:    metrics.Nop{},
		sleep:       sleepContext,
	}
	if cfg.RateInterval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(cfg.RateInterval), cfg.Workers)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate は元画像とスタイルから画像を生成します。
// 一時的な障害とタイムアウトは指数バックオフで再試行し、
// 再試行を使い切るか再試行できない失敗が起きた場合は *domain.GenerationFailedError を返します。
func (c *Client) Generate(ctx context.Context, src domain.SourceImage, job domain.StyleJob) (*domain.ImageData, error) {
	contents := c.buildContents(src, job)

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		attempts = attempt

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				lastErr = fmt.Errorf("リミッター待機中にエラーが発生しました: %w", err)
				break
			}
		}

		img, err := c.attempt(ctx, contents)
		if err == nil {
			c.recorder.ObserveAttempt(job.Key, metrics.OutcomeSuccess)
			slog.InfoContext(ctx, "画像を生成しました",
				slog.String("style", job.Key),
				slog.Int("attempt", attempt),
				slog.Int("bytes", len(img.Data)),
			)
			return img, nil
		}
		lastErr = err

		slog.WarnContext(ctx, "画像生成 API の呼び出しに失敗しました",
			slog.String("style", job.Key),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", c.maxAttempts),
			slog.Any("error", err),
		)

		if ctx.Err() != nil {
			c.recorder.ObserveAttempt(job.Key, metrics.OutcomeCancelled)
			break
		}
		if !IsRetriable(err) || attempt == c.maxAttempts {
			c.recorder.ObserveAttempt(job.Key, outcomeFor(err, true))
			break
		}
		c.recorder.ObserveAttempt(job.Key, outcomeFor(err, false))

		delay := BackoffDelay(c.baseDelay, attempt)
		c.recorder.ObserveBackoff(delay)
		slog.InfoContext(ctx, "一時的なエラーのため再試行します",
			slog.String("style", job.Key),
			slog.Duration("delay", delay),
		)
		if err := c.sleep(ctx, delay); err != nil {
			break
		}
	}

	return nil, &domain.GenerationFailedError{
		Style:    job.Key,
		Attempts: attempts,
		Last:     lastErr,
	}
}

// attempt は1回分の API 呼び出しを制限時間と競争させます。
// 制限時間が先に来た場合は呼び出しのコンテキストを取り消して ErrTimeout を返します。
func (c *Client) attempt(ctx context.Context, contents []*genai.Content) (*domain.ImageData, error) {
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		resp *genai.GenerateContentResponse
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		resp, err := c.models.GenerateContent(callCtx, c.model, contents, requestConfig())
		ch <- result{resp: resp, err: err}
	}()

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, classify(r.err)
		}
		return toImage(ctx, r.resp)
	case <-timer.C:
		return nil, fmt.Errorf("%w after %s", domain.ErrTimeout, c.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) buildContents(src domain.SourceImage, job domain.StyleJob) []*genai.Content {
	parts := []*genai.Part{
		genai.NewPartFromBytes(src.Data, src.MIMEType),
		genai.NewPartFromText(c.prompt.Build(job)),
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

func requestConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityImage), string(genai.ModalityText)},
	}
}

// toImage はレスポンスを分岐し、テキストのみの場合は再試行しない ErrNoImageReturned を返します。
func toImage(ctx context.Context, resp *genai.GenerateContentResponse) (*domain.ImageData, error) {
	switch p := DecodeResponse(resp).(type) {
	case ImagePayload:
		return &domain.ImageData{Data: p.Data, MimeType: p.MIMEType}, nil
	case TextOnlyResponse:
		slog.ErrorContext(ctx, "API が画像を返しませんでした", slog.String("text", p.Text))
		return nil, domain.ErrNoImageReturned
	default:
		return nil, fmt.Errorf("未知のレスポンス形式です: %T", p)
	}
}

func outcomeFor(err error, final bool) string {
	switch {
	case errors.Is(err, domain.ErrTimeout):
		return metrics.OutcomeTimeout
	case final:
		return metrics.OutcomeFailure
	default:
		return metrics.OutcomeRetry
	}
}
