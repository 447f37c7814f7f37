package domain

import (
	"errors"
	"fmt"
)

// 入力検証・生成・合成の各工程で返されるエラー分類です。
// 呼び出し側は errors.Is で判定してください。
var (
	// ErrInvalidInput はネットワーク通信前に検出された不正な入力です。
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidFormat は許可リストにない MIME タイプです。
	ErrInvalidFormat = fmt.Errorf("%w: unsupported image format", ErrInvalidInput)
	// ErrTooLarge はファイルサイズが上限を超えていることを示します。
	ErrTooLarge = fmt.Errorf("%w: file too large", ErrInvalidInput)

	// ErrDecode は画像のデコードに失敗したことを示します。
	ErrDecode = errors.New("image decode failed")

	// ErrTimeout は1回の生成試行が制限時間を超えたことを示します（リトライ対象）。
	ErrTimeout = errors.New("api call timed out")
	// ErrTransientProvider はサーバー側の一時的な障害です（リトライ対象）。
	ErrTransientProvider = errors.New("transient provider error")
	// ErrNoImageReturned はモデルが画像ではなくテキストのみを返したことを示します（リトライ対象外）。
	ErrNoImageReturned = errors.New("the AI model responded with text instead of an image")
	// ErrGenerationFailed はリトライを使い切ったか、リトライ不可能なエラーで終了したことを示します。
	ErrGenerationFailed = errors.New("the AI model failed to generate an image")

	// ErrIncompleteBatch は全スタイルの生成が完了する前にアルバム合成が要求されたことを示します。
	ErrIncompleteBatch = errors.New("batch is incomplete")
	// ErrImageLoad はアルバムに含める画像を読み込めなかったことを示します。
	ErrImageLoad = fmt.Errorf("%w: failed to load image", ErrDecode)

	// ErrDuplicateStyle はスタイルキーが重複していることを示します。
	ErrDuplicateStyle = errors.New("duplicate style key")
	// ErrEmptyStyleKey はスタイルキーが空であることを示します。
	ErrEmptyStyleKey = errors.New("empty style key")
)

// GenerationFailedError は1ジョブの最終的な失敗を表します。
// 最後に発生したエラーのメッセージを含むため、原因の調査に使えます。
type GenerationFailedError struct {
	Style    string
	Attempts int
	Last     error
}

func (e *GenerationFailedError) Error() string {
	last := "unknown error"
	if e.Last != nil {
		last = e.Last.Error()
	}
	return fmt.Sprintf("%s (style: %s, attempts: %d): %s", ErrGenerationFailed, e.Style, e.Attempts, last)
}

// Unwrap は ErrGenerationFailed と最後のエラーの両方を返します。
func (e *GenerationFailedError) Unwrap() []error {
	if e.Last == nil {
		return []error{ErrGenerationFailed}
	}
	return []error{ErrGenerationFailed, e.Last}
}
