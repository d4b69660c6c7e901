// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// プロバイダクライアントやサービス層から利用する。
type MetricsCollector interface {
	RecordProviderRequest(operation string)
	RecordProviderFailure(operation string, reason string)
	RecordProviderStatus(statusCode int)
	RecordProviderLatency(duration time.Duration)
	RecordCacheHit(kind string)
	RecordCacheMiss(kind string)
	RecordQuotaRejected()
	RecordEntriesLogged(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	providerRequests *prometheus.CounterVec
	providerFailures *prometheus.CounterVec
	providerStatus   *prometheus.CounterVec
	providerLatency  prometheus.Histogram
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	quotaRejected    prometheus.Counter
	entriesLogged    prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nutrilog_provider_requests_total",
			Help: "栄養データプロバイダへのリクエスト合計数",
		}, []string{"operation"}),
		providerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nutrilog_provider_failures_total",
			Help: "栄養データプロバイダのリクエスト失敗合計数",
		}, []string{"operation", "reason"}),
		providerStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nutrilog_provider_status_total",
			Help: "プロバイダのHTTPステータスコード別レスポンス数",
		}, []string{"status_code"}),
		providerLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nutrilog_provider_latency_seconds",
			Help:    "プロバイダリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nutrilog_cache_hits_total",
			Help: "プロバイダレスポンスキャッシュのヒット合計数",
		}, []string{"kind"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nutrilog_cache_misses_total",
			Help: "プロバイダレスポンスキャッシュのミス合計数",
		}, []string{"kind"}),
		quotaRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nutrilog_quota_rejected_total",
			Help: "プロバイダレート制限により拒否されたリクエストの合計数",
		}),
		entriesLogged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nutrilog_entries_logged_total",
			Help: "記録された食事エントリの合計数",
		}),
	}

	reg.MustRegister(
		c.providerRequests,
		c.providerFailures,
		c.providerStatus,
		c.providerLatency,
		c.cacheHits,
		c.cacheMisses,
		c.quotaRejected,
		c.entriesLogged,
	)

	return c
}

// RecordProviderRequest はプロバイダへのリクエストを記録する。
func (c *Collector) RecordProviderRequest(operation string) {
	c.providerRequests.WithLabelValues(operation).Inc()
}

// RecordProviderFailure はプロバイダのリクエスト失敗を記録する。
func (c *Collector) RecordProviderFailure(operation string, reason string) {
	c.providerFailures.WithLabelValues(operation, reason).Inc()
}

// RecordProviderStatus はプロバイダのHTTPステータスコードを記録する。
func (c *Collector) RecordProviderStatus(statusCode int) {
	c.providerStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordProviderLatency はプロバイダリクエストのレイテンシを記録する。
func (c *Collector) RecordProviderLatency(duration time.Duration) {
	c.providerLatency.Observe(duration.Seconds())
}

// RecordCacheHit はキャッシュヒットを記録する。
func (c *Collector) RecordCacheHit(kind string) {
	c.cacheHits.WithLabelValues(kind).Inc()
}

// RecordCacheMiss はキャッシュミスを記録する。
func (c *Collector) RecordCacheMiss(kind string) {
	c.cacheMisses.WithLabelValues(kind).Inc()
}

// RecordQuotaRejected はレート制限による拒否を記録する。
func (c *Collector) RecordQuotaRejected() {
	c.quotaRejected.Inc()
}

// RecordEntriesLogged は記録された食事エントリ数を記録する。
func (c *Collector) RecordEntriesLogged(count int) {
	c.entriesLogged.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
