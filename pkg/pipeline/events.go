package pipeline

import (
	"github.com/shouni/go-portrait-kit/pkg/domain"
)

// EventType はバッチの状態遷移の種類です。
type EventType string

const (
	// EventBatchStarted は全てのキーが pending で初期化された直後に通知されます。
	EventBatchStarted EventType = "batch_started"
	// EventJobCompleted は1つのキーが done または error に遷移したときに通知されます。
	EventJobCompleted EventType = "job_completed"
	// EventBatchCompleted は全てのワーカーがキューを処理し終えたときに通知されます。
	EventBatchCompleted EventType = "batch_completed"
)

// Event は Observer に渡される通知です。
// Key と Result は EventJobCompleted の場合のみ設定されます。
type Event struct {
	Type     EventType
	BatchID  string
	Key      string
	Result   domain.GenerationResult
	Snapshot domain.BatchSnapshot
}

// Observer はバッチの状態遷移を受け取る関数です。
// 同じバッチの通知は直列に呼び出されるため、Observer 側でのロックは不要です。
type Observer func(Event)
