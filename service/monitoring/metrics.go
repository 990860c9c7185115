/*
 * @module service/monitoring/metrics
 * @description Prometheus指标定义，覆盖图表请求、上传和会话存储
 * @architecture 可观测性 - 指标层
 * @stateFlow 控制器埋点 -> promauto注册表 -> /metrics暴露
 * @rules 指标统一dataviz前缀；标签维度保持低基数
 * @dependencies github.com/prometheus/client_golang/prometheus, promauto
 * @refs main.go
 */

package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChartRequestsTotal 图表请求计数，按最终图表类型与结果分类
	ChartRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataviz_chart_requests_total",
			Help: "Total number of natural-language chart requests",
		},
		[]string{"chart_type", "status"},
	)

	// ChartBuildDuration 单次图表构建耗时
	ChartBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dataviz_chart_build_duration_seconds",
			Help:    "Duration of chart interpretation and aggregation in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// UploadsTotal 文件上传计数，按格式与结果分类
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataviz_uploads_total",
			Help: "Total number of dataset uploads",
		},
		[]string{"format", "status"},
	)

	// UploadRows 最近一次上传的行数分布
	UploadRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dataviz_upload_rows",
			Help:    "Row counts of uploaded datasets",
			Buckets: []float64{10, 100, 1000, 10000, 100000},
		},
	)

	// StoreSessions 内存存储中的会话数量
	StoreSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataviz_store_sessions",
			Help: "Number of live dataset sessions held in memory",
		},
	)

	// CleaningTasksTotal 清洗任务计数
	CleaningTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataviz_cleaning_tasks_total",
			Help: "Total number of cleaning tasks executed",
		},
		[]string{"task", "status"},
	)
)
