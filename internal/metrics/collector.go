// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	// 实例指标
	instancesLive     prometheus.Gauge
	instancesCreated  *prometheus.CounterVec
	instancesReleased *prometheus.CounterVec
	createFailures    *prometheus.CounterVec
	createDuration    prometheus.Histogram

	// 操作指标
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec

	// 卸载指标
	unloadReleased prometheus.Histogram

	logger *zap.Logger
}

// NewCollector 创建指标收集器
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.instancesLive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "editor_instances_live",
			Help:      "Number of editor instances owned by the plugin",
		},
	)

	c.instancesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "editor_instances_created_total",
			Help:      "Total number of editor instances created",
		},
		[]string{"editor_id"},
	)

	c.instancesReleased = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "editor_instances_released_total",
			Help:      "Total number of editor instances released",
		},
		[]string{"reason"}, // reason: unload, remove
	)

	c.createFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "editor_create_failures_total",
			Help:      "Total number of failed create_editor requests",
		},
		[]string{"code"},
	)

	c.createDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "editor_create_duration_seconds",
			Help:      "Editor creation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	c.operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "editor_operations_total",
			Help:      "Total number of control-handle operations",
		},
		[]string{"operation", "status"},
	)

	c.operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "editor_operation_duration_seconds",
			Help:      "Control-handle operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	c.unloadReleased = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plugin_unload_released_instances",
			Help:      "Number of instances released per plugin unload",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		},
	)

	c.logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🧩 实例指标记录
// =============================================================================

// RecordInstanceCreated 记录实例创建
func (c *Collector) RecordInstanceCreated(editorID string, duration time.Duration) {
	if c == nil {
		return
	}
	c.instancesCreated.WithLabelValues(editorID).Inc()
	c.createDuration.Observe(duration.Seconds())
	c.instancesLive.Inc()
}

// RecordCreateFailure 记录创建失败
func (c *Collector) RecordCreateFailure(code string) {
	if c == nil {
		return
	}
	if code == "" {
		code = "unknown"
	}
	c.createFailures.WithLabelValues(code).Inc()
}

// RecordInstancesReleased 记录实例释放
func (c *Collector) RecordInstancesReleased(reason string, count int) {
	if c == nil || count <= 0 {
		return
	}
	c.instancesReleased.WithLabelValues(reason).Add(float64(count))
	c.instancesLive.Sub(float64(count))
}

// RecordUnload 记录一次卸载
func (c *Collector) RecordUnload(released int) {
	if c == nil {
		return
	}
	c.unloadReleased.Observe(float64(released))
	c.RecordInstancesReleased("unload", released)
}

// =============================================================================
// 💾 操作指标记录
// =============================================================================

// RecordOperation 记录 save / reload 操作
func (c *Collector) RecordOperation(operation string, err error, duration time.Duration) {
	if c == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.operationsTotal.WithLabelValues(operation, status).Inc()
	c.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
