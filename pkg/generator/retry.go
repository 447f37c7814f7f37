package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/go-portrait-kit/pkg/domain"
	"google.golang.org/genai"
)

// BackoffDelay は failedAttempt 回目の試行が失敗した後の待機時間を返します。
// base * 2^(failedAttempt-1) なので、base が 1 秒なら 1s, 2s, 4s... となります。
func BackoffDelay(base time.Duration, failedAttempt int) time.Duration {
	if failedAttempt < 1 {
		failedAttempt = 1
	}
	return base << (failedAttempt - 1)
}

// IsRetriable はエラーが再試行の対象かどうかを判定します。
func IsRetriable(err error) bool {
	return errors.Is(err, domain.ErrTransientProvider) || errors.Is(err, domain.ErrTimeout)
}

// classify は API 呼び出しのエラーを分類し、一時的な障害なら ErrTransientProvider で包みます。
func classify(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if isTransient(err) {
		return fmt.Errorf("%w: %w", domain.ErrTransientProvider, err)
	}
	return err
}

func isTransient(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && transientAPIError(apiErr) {
		return true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil && transientAPIError(*apiErrPtr) {
		return true
	}
	// SDK を経由しないエラーはメッセージで判定する
	msg := err.Error()
	return strings.Contains(msg, "500") || strings.Contains(msg, "INTERNAL")
}

func transientAPIError(e genai.APIError) bool {
	if e.Code >= http.StatusInternalServerError {
		return true
	}
	switch e.Status {
	case "INTERNAL", "UNAVAILABLE":
		return true
	}
	return false
}

// sleepContext は d だけ待機します。待機中に ctx がキャンセルされた場合はそのエラーを返します。
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
