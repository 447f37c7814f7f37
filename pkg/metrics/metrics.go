// Package metrics は生成処理の試行回数や所要時間を記録します。
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 試行結果のラベル値です。
const (
	OutcomeSuccess   = "success"
	OutcomeRetry     = "retry"
	OutcomeTimeout   = "timeout"
	OutcomeFailure   = "failure"
	OutcomeCancelled = "cancelled"
)

// Recorder は生成パイプラインから呼び出される計測インターフェースです。
type Recorder interface {
	ObserveAttempt(style, outcome string)
	ObserveBackoff(d time.Duration)
	ObserveJob(status string, d time.Duration)
	ObserveBatch(d time.Duration, done, failed int)
}

// Nop は何も記録しない Recorder です。
type Nop struct{}

func (Nop) ObserveAttempt(string, string)        {}
func (Nop) ObserveBackoff(time.Duration)         {}
func (Nop) ObserveJob(string, time.Duration)     {}
func (Nop) ObserveBatch(time.Duration, int, int) {}

// Prometheus は専用のレジストリに指標を登録する Recorder です。
type Prometheus struct {
	registry *prometheus.Registry

	attempts     *prometheus.CounterVec
	backoff      prometheus.Histogram
	jobDuration  *prometheus.HistogramVec
	batchSeconds prometheus.Histogram
	lastDone     prometheus.Gauge
	lastFailed   prometheus.Gauge
}

// NewPrometheus は指標を登録した Prometheus レコーダーを生成します。
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portrait",
			Name:      "generation_attempts_total",
			Help:      "Number of image generation attempts by style and outcome.",
		}, []string{"style", "outcome"}),
		backoff: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "portrait",
			Name:      "retry_backoff_seconds",
			Help:      "Backoff delays waited before a retry.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 6),
		}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portrait",
			Name:      "job_duration_seconds",
			Help:      "Wall time of a style job from dequeue to terminal state.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}, []string{"status"}),
		batchSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "portrait",
			Name:      "batch_duration_seconds",
			Help:      "Wall time of a full generation batch.",
			Buckets:   prometheus.ExponentialBuckets(5, 2, 8),
		}),
		lastDone: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "portrait",
			Name:      "last_batch_done",
			Help:      "Number of styles that finished successfully in the last batch.",
		}),
		lastFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "portrait",
			Name:      "last_batch_failed",
			Help:      "Number of styles that failed in the last batch.",
		}),
	}
	p.registry.MustRegister(p.attempts, p.backoff, p.jobDuration, p.batchSeconds, p.lastDone, p.lastFailed)
	return p
}

func (p *Prometheus) ObserveAttempt(style, outcome string) {
	p.attempts.WithLabelValues(style, outcome).Inc()
}

func (p *Prometheus) ObserveBackoff(d time.Duration) {
	p.backoff.Observe(d.Seconds())
}

func (p *Prometheus) ObserveJob(status string, d time.Duration) {
	p.jobDuration.WithLabelValues(status).Observe(d.Seconds())
}

func (p *Prometheus) ObserveBatch(d time.Duration, done, failed int) {
	p.batchSeconds.Observe(d.Seconds())
	p.lastDone.Set(float64(done))
	p.lastFailed.Set(float64(failed))
}

// Registry は指標が登録されたレジストリを返します。
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// WriteTextfile は node_exporter の textfile collector 形式で指標を書き出します。
func (p *Prometheus) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("メトリクスの書き出しに失敗しました: %w", err)
	}
	return nil
}
