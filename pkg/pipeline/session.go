package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/shouni/go-portrait-kit/pkg/domain"
)

// ErrNoSource は元画像が登録される前に再生成が要求されたことを示します。
var ErrNoSource = errors.New("no source image has been set")

// Session は現在の元画像と最新のバッチを保持します。
// 新しいバッチを開始すると、前のバッチは取り消されて破棄されます。
type Session struct {
	scheduler *Scheduler

	mu      sync.Mutex
	source  *domain.SourceImage
	jobs    []domain.StyleJob
	current *Batch
}

// NewSession は Session を生成します。
func NewSession(scheduler *Scheduler) *Session {
	return &Session{scheduler: scheduler}
}

// Start は元画像とスタイルを登録して新しいバッチを開始します。
func (s *Session) Start(ctx context.Context, src domain.SourceImage, jobs []domain.StyleJob) (*Batch, error) {
	s.mu.Lock()
	b, run, err := s.scheduler.prepare(ctx, src, jobs)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	copied := make([]domain.StyleJob, len(jobs))
	copy(copied, jobs)
	s.source = &src
	s.jobs = copied
	s.replaceLocked(b)
	s.mu.Unlock()

	// Observer が Current を呼べるように、ロックを外してから通知と生成を始める
	run()
	return b, nil
}

// Regenerate は登録済みの元画像で全スタイルを最初から生成し直します。
// 前回の結果は done であっても再利用しません。
func (s *Session) Regenerate(ctx context.Context) (*Batch, error) {
	s.mu.Lock()
	if s.source == nil {
		s.mu.Unlock()
		return nil, ErrNoSource
	}
	b, run, err := s.scheduler.prepare(ctx, *s.source, s.jobs)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.replaceLocked(b)
	s.mu.Unlock()

	run()
	return b, nil
}

// Current は最新のバッチを返します。まだ開始していない場合は nil です。
func (s *Session) Current() *Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Reset は実行中のバッチを取り消し、元画像の登録を解除します。
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.Cancel()
	}
	s.current = nil
	s.source = nil
	s.jobs = nil
}

// replaceLocked は前のバッチを取り消して b を現在のバッチにします。
func (s *Session) replaceLocked(b *Batch) {
	if s.current != nil {
		s.current.Cancel()
	}
	s.current = b
}
