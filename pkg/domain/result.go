package domain

// Status は1スタイル分の生成状態です。
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// GenerationResult は pending / done(image) / error(message) のいずれかを表します。
// pending から done または error へ一度だけ遷移します。
type GenerationResult struct {
	Status Status
	Image  *ImageData
	Error  string
}

// Pending は待機中の結果を返します。
func Pending() GenerationResult {
	return GenerationResult{Status: StatusPending}
}

// Done は生成に成功した結果を返します。
func Done(img *ImageData) GenerationResult {
	return GenerationResult{Status: StatusDone, Image: img}
}

// Failed は生成に失敗した結果を返します。
func Failed(message string) GenerationResult {
	return GenerationResult{Status: StatusError, Error: message}
}

// IsPending は結果がまだ確定していないかどうかを返します。
func (r GenerationResult) IsPending() bool {
	return r.Status == "" || r.Status == StatusPending
}

// IsDone は画像が利用可能かどうかを返します。
func (r GenerationResult) IsDone() bool {
	return r.Status == StatusDone && r.Image != nil && len(r.Image.Data) > 0
}

// BatchSnapshot はある時点のスタイルキーと結果の対応表です。
// 呼び出し元が自由に読めるように、常にコピーとして渡されます。
type BatchSnapshot map[string]GenerationResult

// Complete は全てのキーが pending 以外になっているかどうかを返します。
func (s BatchSnapshot) Complete() bool {
	for _, r := range s {
		if r.IsPending() {
			return false
		}
	}
	return true
}

// Count は指定された状態のエントリ数を返します。
func (s BatchSnapshot) Count(status Status) int {
	n := 0
	for _, r := range s {
		if r.Status == status {
			n++
		}
	}
	return n
}

// MissingDone は keys のうち done になっていないキーを順序どおりに返します。
func (s BatchSnapshot) MissingDone(keys []string) []string {
	var missing []string
	for _, k := range keys {
		if r, ok := s[k]; !ok || !r.IsDone() {
			missing = append(missing, k)
		}
	}
	return missing
}
