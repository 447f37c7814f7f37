package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-portrait-kit/pkg/domain"
	"github.com/shouni/go-portrait-kit/pkg/generator"
	"github.com/shouni/go-portrait-kit/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

// Scheduler は共有キューと固定数のワーカーでスタイルジョブを処理します。
type Scheduler struct {
	gen       generator.ImageGenerator
	workers   int
	recorder  metrics.Recorder
	observers []Observer
}

// SchedulerOption は Scheduler の任意設定です。
type SchedulerOption func(*Scheduler)

// WithObserver はバッチの状態遷移を受け取る Observer を追加します。
func WithObserver(o Observer) SchedulerOption {
	return func(s *Scheduler) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// WithMetrics はジョブとバッチの所要時間の記録先を設定します。
func WithMetrics(r metrics.Recorder) SchedulerOption {
	return func(s *Scheduler) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewScheduler は Scheduler を生成します。
func NewScheduler(gen generator.ImageGenerator, workers int, opts ...SchedulerOption) (*Scheduler, error) {
	if gen == nil {
		return nil, fmt.Errorf("ImageGenerator が nil です")
	}
	if workers < 1 {
		return nil, fmt.Errorf("ワーカー数は 1 以上である必要があります: %d", workers)
	}
	s := &Scheduler{
		gen:      gen,
		workers:  workers,
		recorder: metrics.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start は全キーを pending で初期化したバッチを返し、バックグラウンドで生成を開始します。
// 返された Batch は Snapshot で随時参照でき、Done で終了を待てます。
func (s *Scheduler) Start(ctx context.Context, src domain.SourceImage, jobs []domain.StyleJob) (*Batch, error) {
	b, run, err := s.prepare(ctx, src, jobs)
	if err != nil {
		return nil, err
	}
	run()
	return b, nil
}

// prepare は入力を検証して pending のバッチを作り、生成を始める関数と一緒に返します。
// 返された関数を呼ぶまで Observer への通知もワーカーの起動も行いません。
// 呼び出し側は自分のロックを解放してから関数を呼んでください。
func (s *Scheduler) prepare(ctx context.Context, src domain.SourceImage, jobs []domain.StyleJob) (*Batch, func(), error) {
	if len(jobs) == 0 {
		return nil, nil, fmt.Errorf("%w: スタイルが指定されていません", domain.ErrInvalidInput)
	}
	if err := domain.StyleCatalog(jobs).Validate(); err != nil {
		return nil, nil, err
	}
	if len(src.Data) == 0 {
		return nil, nil, fmt.Errorf("%w: 元画像が空です", domain.ErrInvalidInput)
	}

	batchCtx, cancel := context.WithCancel(ctx)
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	b := newBatch(jobs, observers, cancel)

	run := func() {
		s.launch(ctx, batchCtx, b, src)
	}
	return b, run, nil
}

// launch は BatchStarted を通知してからワーカーを起動します。
func (s *Scheduler) launch(ctx, batchCtx context.Context, b *Batch, src domain.SourceImage) {
	jobs := b.jobs

	// 全ジョブを先に積んでから閉じるので、ワーカーは空になるまで取り出すだけで済む
	queue := make(chan domain.StyleJob, len(jobs))
	for _, job := range jobs {
		queue <- job
	}
	close(queue)

	workers := min(s.workers, len(jobs))
	slog.InfoContext(ctx, "生成バッチを開始します",
		slog.String("batch_id", b.id),
		slog.Int("jobs", len(jobs)),
		slog.Int("workers", workers),
	)
	b.emit(Event{Type: EventBatchStarted, BatchID: b.id, Snapshot: b.Snapshot()})

	var eg errgroup.Group
	for i := 0; i < workers; i++ {
		workerID := i + 1
		eg.Go(func() error {
			s.work(batchCtx, b, workerID, src, queue)
			return nil
		})
	}

	go func() {
		_ = eg.Wait()
		snap := b.Snapshot()
		elapsed := time.Since(b.startedAt)
		done, failed := snap.Count(domain.StatusDone), snap.Count(domain.StatusError)
		s.recorder.ObserveBatch(elapsed, done, failed)
		slog.Info("生成バッチが完了しました",
			slog.String("batch_id", b.id),
			slog.Int("done", done),
			slog.Int("failed", failed),
			slog.Duration("elapsed", elapsed),
		)
		// Observer から Wait を呼べるように、通知より先に done を閉じる
		close(b.done)
		b.cancel()
		b.emit(Event{Type: EventBatchCompleted, BatchID: b.id, Snapshot: snap})
	}()
}

// Run はバッチを開始し、全てのジョブが確定するまで待ちます。
// 1つのジョブの失敗は他のジョブに影響せず、そのキーの error として記録されます。
func (s *Scheduler) Run(ctx context.Context, src domain.SourceImage, jobs []domain.StyleJob) (domain.BatchSnapshot, error) {
	b, err := s.Start(ctx, src, jobs)
	if err != nil {
		return nil, err
	}
	<-b.Done()
	return b.Snapshot(), ctx.Err()
}

// work はキューが空になるまでジョブを取り出して処理します。
// ジョブとワーカーの対応は固定されず、空いたワーカーが次のジョブを取ります。
func (s *Scheduler) work(ctx context.Context, b *Batch, workerID int, src domain.SourceImage, queue <-chan domain.StyleJob) {
	for job := range queue {
		start := time.Now()
		result := s.generate(ctx, src, job)
		s.recorder.ObserveJob(string(result.Status), time.Since(start))

		attrs := []any{
			slog.String("batch_id", b.id),
			slog.Int("worker", workerID),
			slog.String("style", job.Key),
			slog.Duration("elapsed", time.Since(start)),
		}
		if result.Status == domain.StatusDone {
			slog.InfoContext(ctx, "スタイルの生成が完了しました", attrs...)
		} else {
			slog.WarnContext(ctx, "スタイルの生成に失敗しました", append(attrs, slog.String("error", result.Error))...)
		}
		b.resolve(job.Key, result)
	}
}

func (s *Scheduler) generate(ctx context.Context, src domain.SourceImage, job domain.StyleJob) domain.GenerationResult {
	if err := ctx.Err(); err != nil {
		return domain.Failed(err.Error())
	}
	img, err := s.gen.Generate(ctx, src, job)
	switch {
	case err != nil:
		return domain.Failed(err.Error())
	case img == nil || len(img.Data) == 0:
		return domain.Failed(domain.ErrNoImageReturned.Error())
	default:
		return domain.Done(img)
	}
}
