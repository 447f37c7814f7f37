package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shouni/go-portrait-kit/pkg/domain"
)

// Batch は1回分の全スタイルの生成状況を保持します。
// 結果は Scheduler のワーカーだけが書き込み、呼び出し側はスナップショットを読み取ります。
type Batch struct {
	id        string
	jobs      []domain.StyleJob
	startedAt time.Time

	mu      sync.RWMutex
	results map[string]domain.GenerationResult

	notifyMu  sync.Mutex
	observers []Observer

	done   chan struct{}
	cancel context.CancelFunc
}

func newBatch(jobs []domain.StyleJob, observers []Observer, cancel context.CancelFunc) *Batch {
	results := make(map[string]domain.GenerationResult, len(jobs))
	for _, job := range jobs {
		results[job.Key] = domain.Pending()
	}
	copied := make([]domain.StyleJob, len(jobs))
	copy(copied, jobs)

	return &Batch{
		id:        uuid.NewString(),
		jobs:      copied,
		startedAt: time.Now(),
		results:   results,
		observers: observers,
		done:      make(chan struct{}),
		cancel:    cancel,
	}
}

// ID はバッチの識別子を返します。
func (b *Batch) ID() string { return b.id }

// StartedAt はバッチの開始時刻を返します。
func (b *Batch) StartedAt() time.Time { return b.startedAt }

// Jobs はバッチのスタイルを定義順で返します。
func (b *Batch) Jobs() []domain.StyleJob {
	jobs := make([]domain.StyleJob, len(b.jobs))
	copy(jobs, b.jobs)
	return jobs
}

// Keys はスタイルキーを定義順で返します。
func (b *Batch) Keys() []string {
	keys := make([]string, len(b.jobs))
	for i, job := range b.jobs {
		keys[i] = job.Key
	}
	return keys
}

// Snapshot は現時点の結果のコピーを返します。
func (b *Batch) Snapshot() domain.BatchSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked()
}

func (b *Batch) snapshotLocked() domain.BatchSnapshot {
	snap := make(domain.BatchSnapshot, len(b.results))
	for k, v := range b.results {
		snap[k] = v
	}
	return snap
}

// Result は指定されたキーの現在の結果を返します。
func (b *Batch) Result(key string) (domain.GenerationResult, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, ok := b.results[key]
	return r, ok
}

// Complete は全てのキーが pending 以外になっているかどうかを返します。
func (b *Batch) Complete() bool {
	return b.Snapshot().Complete()
}

// Done は全てのワーカーが終了したときに閉じられるチャネルを返します。
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Wait はバッチの終了か ctx の終了まで待ち、その時点のスナップショットを返します。
func (b *Batch) Wait(ctx context.Context) (domain.BatchSnapshot, error) {
	select {
	case <-b.done:
		return b.Snapshot(), nil
	case <-ctx.Done():
		return b.Snapshot(), ctx.Err()
	}
}

// Cancel は実行中の API 呼び出しを取り消します。
// 未処理のジョブは error として確定します。
func (b *Batch) Cancel() {
	if b.cancel != nil {
		b.cancel()
	}
}

// resolve は pending のキーを一度だけ確定させ、Observer に通知します。
// 既に確定済みのキーに対しては何もせず false を返します。
func (b *Batch) resolve(key string, result domain.GenerationResult) bool {
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()

	b.mu.Lock()
	current, ok := b.results[key]
	if !ok || !current.IsPending() {
		b.mu.Unlock()
		return false
	}
	b.results[key] = result
	snap := b.snapshotLocked()
	b.mu.Unlock()

	b.emitLocked(Event{Type: EventJobCompleted, BatchID: b.id, Key: key, Result: result, Snapshot: snap})
	return true
}

func (b *Batch) emit(evt Event) {
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()
	b.emitLocked(evt)
}

func (b *Batch) emitLocked(evt Event) {
	for _, o := range b.observers {
		o(evt)
	}
}
