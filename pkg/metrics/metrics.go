// Package metrics 定义推荐链路的 Prometheus 指标。
//
// 指标分类：
//   - 请求：按路径（scored / coldstart）与结果统计次数和耗时
//   - 特征：缺失特征列零填充次数
//   - 冷启动：各降级阶段命中次数
//   - 召回：召回源失败次数
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 请求路径
const (
	PathScored    = "scored"
	PathColdStart = "coldstart"
)

// 请求结果
const (
	OutcomeOK           = "ok"
	OutcomeUnknownUser  = "unknown_user"
	OutcomeNoCandidates = "no_candidates"
	OutcomeError        = "error"
)

var (
	// RecommendRequestsTotal 按路径与结果统计推荐请求
	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"path", "outcome"},
	)

	// RecommendDuration 推荐请求耗时
	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movierec_recommend_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"path"},
	)

	// FeatureFillTotal 统计 schema 中缺失、被零填充的特征列
	FeatureFillTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_feature_fill_total",
			Help: "Total number of feature columns zero-filled because they were not produced",
		},
		[]string{"feature"},
	)

	// ColdStartResolutionsTotal 统计冷启动各阶段命中次数
	ColdStartResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_coldstart_resolutions_total",
			Help: "Total number of cold-start requests by resolution stage",
		},
		[]string{"stage"},
	)

	// RecallSourceErrorsTotal 统计召回源失败次数，失败的召回源被跳过
	RecallSourceErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_recall_source_errors_total",
			Help: "Total number of candidate source failures",
		},
		[]string{"source"},
	)
)

// RecordRequest 记录一次推荐请求
func RecordRequest(path, outcome string, d time.Duration) {
	RecommendRequestsTotal.WithLabelValues(path, outcome).Inc()
	RecommendDuration.WithLabelValues(path).Observe(d.Seconds())
}

// RecordFeatureFill 记录一次缺失特征零填充
func RecordFeatureFill(feature string) {
	FeatureFillTotal.WithLabelValues(feature).Inc()
}

// RecordColdStart 记录冷启动命中阶段
func RecordColdStart(stage string) {
	ColdStartResolutionsTotal.WithLabelValues(stage).Inc()
}

// RecordRecallError 记录召回源失败
func RecordRecallError(source string) {
	RecallSourceErrorsTotal.WithLabelValues(source).Inc()
}
