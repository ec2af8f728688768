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
// 認証サービスやワーカーから利用する。
type MetricsCollector interface {
	RecordSignInSuccess()
	RecordSignInFailure(reason string)
	RecordProvisioningFailure(table string)
	RecordBootstrapLatency(duration time.Duration)
	RecordHTTPStatus(statusCode int)
	RecordPayrollDraftsGenerated(count int)
	RecordSessionsPurged(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	signinSuccess    prometheus.Counter
	signinFail       *prometheus.CounterVec
	provisioningFail *prometheus.CounterVec
	bootstrapLatency prometheus.Histogram
	httpStatus       *prometheus.CounterVec
	payrollDrafts    prometheus.Counter
	sessionsPurged   prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signinSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "teamify_signin_success_total",
			Help: "サインイン成功の合計数",
		}),
		signinFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teamify_signin_fail_total",
			Help: "サインイン失敗の理由別合計数",
		}, []string{"reason"}),
		provisioningFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teamify_provisioning_fail_total",
			Help: "アカウントプロビジョニング失敗のテーブル別合計数",
		}, []string{"table"}),
		bootstrapLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "teamify_bootstrap_latency_seconds",
			Help:    "セッションブートストラップのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teamify_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		payrollDrafts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "teamify_payroll_drafts_generated_total",
			Help: "自動生成された給与ドラフトの合計数",
		}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "teamify_sessions_purged_total",
			Help: "クリーンアップで削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.signinSuccess,
		c.signinFail,
		c.provisioningFail,
		c.bootstrapLatency,
		c.httpStatus,
		c.payrollDrafts,
		c.sessionsPurged,
	)

	return c
}

// RecordSignInSuccess はサインイン成功を記録する。
func (c *Collector) RecordSignInSuccess() {
	c.signinSuccess.Inc()
}

// RecordSignInFailure はサインイン失敗を理由付きで記録する。
func (c *Collector) RecordSignInFailure(reason string) {
	c.signinFail.WithLabelValues(reason).Inc()
}

// RecordProvisioningFailure はプロビジョニング失敗をテーブル名付きで記録する。
func (c *Collector) RecordProvisioningFailure(table string) {
	c.provisioningFail.WithLabelValues(table).Inc()
}

// RecordBootstrapLatency はブートストラップのレイテンシを記録する。
func (c *Collector) RecordBootstrapLatency(duration time.Duration) {
	c.bootstrapLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordPayrollDraftsGenerated は自動生成された給与ドラフト数を記録する。
func (c *Collector) RecordPayrollDraftsGenerated(count int) {
	c.payrollDrafts.Add(float64(count))
}

// RecordSessionsPurged は削除された期限切れセッション数を記録する。
func (c *Collector) RecordSessionsPurged(count int) {
	c.sessionsPurged.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
// ルーターが/metricsにマウントする。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
