package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shouni/go-portrait-kit/pkg/domain"
)

// fakeGenerator は一定時間待ってからスタイルキーを画像データとして返します。
type fakeGenerator struct {
	latency time.Duration
	fail    map[string]bool
	gate    chan struct{}

	mu          sync.Mutex
	inFlight    int
	maxInFlight int
	calls       []string
}

func (f *fakeGenerator) Generate(ctx context.Context, _ domain.SourceImage, job domain.StyleJob) (*domain.ImageData, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.calls = append(f.calls, job.Key)
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	select {
	case <-time.After(f.latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if f.fail[job.Key] {
		return nil, &domain.GenerationFailedError{Style: job.Key, Attempts: 3, Last: errors.New("server returned 500")}
	}
	return &domain.ImageData{Data: []byte(job.Key), MimeType: domain.MimeTypePNG}, nil
}

func sixJobs() []domain.StyleJob {
	keys := []string{"formal-bisht", "white-thobe", "traditional-shemagh", "business-casual", "modern-thobe", "executive-suit"}
	jobs := make([]domain.StyleJob, len(keys))
	for i, k := range keys {
		jobs[i] = domain.StyleJob{Key: k, StyleDescription: k, BackgroundDescription: "grey"}
	}
	return jobs
}

var source = domain.SourceImage{Data: []byte("face"), MIMEType: domain.MimeTypeJPEG, Width: 1, Height: 1}

func TestScheduler_Run(t *testing.T) {
	for _, workers := range []int{1, 2, 3, 6, 10} {
		gen := &fakeGenerator{latency: time.Millisecond}
		s, err := NewScheduler(gen, workers)
		if err != nil {
			t.Fatal(err)
		}

		snap, err := s.Run(context.Background(), source, sixJobs())
		if err != nil {
			t.Fatalf("workers=%d: Run failed: %v", workers, err)
		}
		if len(snap) != 6 || !snap.Complete() {
			t.Errorf("workers=%d: pending が残っています: %+v", workers, snap)
		}
		if snap.Count(domain.StatusDone) != 6 {
			t.Errorf("workers=%d: done = %d", workers, snap.Count(domain.StatusDone))
		}
		if len(gen.calls) != 6 {
			t.Errorf("workers=%d: 各ジョブは一度だけ処理されるはずです: %v", workers, gen.calls)
		}
	}
}

func TestScheduler_FailuresIsolated(t *testing.T) {
	gen := &fakeGenerator{
		latency: time.Millisecond,
		fail:    map[string]bool{"white-thobe": true, "modern-thobe": true},
	}
	s, _ := NewScheduler(gen, 2)

	snap, err := s.Run(context.Background(), source, sixJobs())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if snap.Count(domain.StatusDone) != 4 || snap.Count(domain.StatusError) != 2 {
		t.Fatalf("done=%d error=%d", snap.Count(domain.StatusDone), snap.Count(domain.StatusError))
	}
	r := snap["white-thobe"]
	if r.Status != domain.StatusError || !strings.Contains(r.Error, "server returned 500") {
		t.Errorf("エラー内容が記録されていません: %+v", r)
	}
	if got := snap.MissingDone([]string{"formal-bisht", "white-thobe", "modern-thobe"}); len(got) != 2 {
		t.Errorf("MissingDone = %v", got)
	}
}

func TestScheduler_BoundedParallelism(t *testing.T) {
	const latency = 50 * time.Millisecond
	gen := &fakeGenerator{latency: latency}
	s, _ := NewScheduler(gen, 2)

	start := time.Now()
	if _, err := s.Run(context.Background(), source, sixJobs()); err != nil {
		t.Fatal(err)
	}
	elapsed := time.Since(start)

	if elapsed < 3*latency {
		t.Errorf("ワーカー数の上限を超えて並列実行されています: %s", elapsed)
	}
	if elapsed >= 6*latency {
		t.Errorf("並列実行されていません: %s", elapsed)
	}
	if gen.maxInFlight != 2 {
		t.Errorf("最大同時実行数 = %d, want 2", gen.maxInFlight)
	}
}

func TestScheduler_Start(t *testing.T) {
	t.Run("開始直後は全てのキーがpendingであること", func(t *testing.T) {
		gen := &fakeGenerator{gate: make(chan struct{})}
		s, _ := NewScheduler(gen, 2)

		b, err := s.Start(context.Background(), source, sixJobs())
		if err != nil {
			t.Fatal(err)
		}
		snap := b.Snapshot()
		if len(snap) != 6 || snap.Count(domain.StatusPending) != 6 {
			t.Errorf("初期状態が不正です: %+v", snap)
		}
		if b.Complete() {
			t.Error("開始直後に完了扱いになっています")
		}

		close(gen.gate)
		snap, err = b.Wait(context.Background())
		if err != nil || snap.Count(domain.StatusDone) != 6 {
			t.Errorf("Wait = %v, done=%d", err, snap.Count(domain.StatusDone))
		}
	})

	t.Run("取り消すと未処理のジョブはerrorで確定すること", func(t *testing.T) {
		gen := &fakeGenerator{gate: make(chan struct{})}
		s, _ := NewScheduler(gen, 2)

		b, _ := s.Start(context.Background(), source, sixJobs())
		b.Cancel()
		<-b.Done()

		snap := b.Snapshot()
		if snap.Count(domain.StatusError) != 6 {
			t.Errorf("全て error になるはずです: %+v", snap)
		}
		if r, _ := b.Result("formal-bisht"); !strings.Contains(r.Error, context.Canceled.Error()) {
			t.Errorf("取り消しの理由が記録されていません: %q", r.Error)
		}
	})

	t.Run("不正なジョブは拒否されること", func(t *testing.T) {
		s, _ := NewScheduler(&fakeGenerator{}, 2)
		if _, err := s.Start(context.Background(), source, nil); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("空のジョブ: %v", err)
		}
		dup := append(sixJobs(), domain.StyleJob{Key: "formal-bisht"})
		if _, err := s.Start(context.Background(), source, dup); !errors.Is(err, domain.ErrDuplicateStyle) {
			t.Errorf("重複キー: %v", err)
		}
		if _, err := s.Start(context.Background(), domain.SourceImage{}, sixJobs()); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("空の元画像: %v", err)
		}
	})
}

func TestScheduler_Events(t *testing.T) {
	var (
		mu     sync.Mutex
		events []Event
	)
	completed := make(chan struct{})
	observer := func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
		if e.Type == EventBatchCompleted {
			close(completed)
		}
	}

	s, _ := NewScheduler(&fakeGenerator{latency: time.Millisecond}, 2, WithObserver(observer))
	b, err := s.Start(context.Background(), source, sixJobs())
	if err != nil {
		t.Fatal(err)
	}
	select {
	case <-completed:
	case <-time.After(time.Second):
		t.Fatal("BatchCompleted が通知されませんでした")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 8 {
		t.Fatalf("イベント数 = %d, want 8", len(events))
	}
	if events[0].Type != EventBatchStarted || events[0].Snapshot.Count(domain.StatusPending) != 6 {
		t.Errorf("最初のイベントが不正です: %+v", events[0])
	}
	if last := events[len(events)-1]; last.Type != EventBatchCompleted || !last.Snapshot.Complete() {
		t.Errorf("最後のイベントが不正です: %+v", last)
	}

	seen := map[string]int{}
	for _, e := range events[1:7] {
		if e.Type != EventJobCompleted || e.BatchID != b.ID() {
			t.Errorf("unexpected event: %+v", e)
		}
		seen[e.Key]++
	}
	for _, job := range sixJobs() {
		if seen[job.Key] != 1 {
			t.Errorf("%s の通知回数 = %d", job.Key, seen[job.Key])
		}
	}
}

func TestBatch_ResolveOnce(t *testing.T) {
	b := newBatch(sixJobs()[:1], nil, nil)
	if !b.resolve("formal-bisht", domain.Failed("boom")) {
		t.Fatal("最初の確定に失敗しました")
	}
	if b.resolve("formal-bisht", domain.Done(&domain.ImageData{Data: []byte{1}})) {
		t.Error("確定済みのキーが上書きされました")
	}
	if b.resolve("unknown", domain.Failed("x")) {
		t.Error("存在しないキーが追加されました")
	}
	if r, _ := b.Result("formal-bisht"); r.Status != domain.StatusError {
		t.Errorf("status = %s", r.Status)
	}
}

func TestNewScheduler_Errors(t *testing.T) {
	if _, err := NewScheduler(nil, 2); err == nil {
		t.Error("nil の ImageGenerator でエラーが発生しませんでした")
	}
	if _, err := NewScheduler(&fakeGenerator{}, 0); err == nil {
		t.Error("ワーカー数 0 でエラーが発生しませんでした")
	}
}
