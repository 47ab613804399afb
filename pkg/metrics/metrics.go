package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	// 慢查询计数
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of queries slower than the configured threshold",
		},
		[]string{"statement"},
	)

	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 资源变更计数
	ResourceMutationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resource_mutation_count",
			Help: "Total number of successful resource mutations",
		},
		[]string{"resource", "action"}, // resource: project, stage, task; action: create, update, delete
	)

	// 树形数据缓存命中
	OverviewCacheCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overview_cache_count",
			Help: "Overview cache lookups by result",
		},
		[]string{"result"}, // result: hit, miss, error, stale
	)

	// 缓存熔断器状态：0 closed, 1 open, 2 half_open
	CacheBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "overview_cache_breaker_state",
			Help: "State of the overview cache circuit breaker",
		},
	)
)

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// IncrementSlowQuery 增加慢查询计数
// statement 只取 SQL 的第一个关键字，避免标签基数过大
func IncrementSlowQuery(statement string) {
	SlowQueryCount.WithLabelValues(statement).Inc()
}

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementMutation 增加资源变更计数
func IncrementMutation(resource, action string) {
	ResourceMutationCount.WithLabelValues(resource, action).Inc()
}

// IncrementOverviewCache 记录缓存查询结果
func IncrementOverviewCache(result string) {
	OverviewCacheCount.WithLabelValues(result).Inc()
}

// SetCacheBreakerState 记录缓存熔断器状态
func SetCacheBreakerState(state int) {
	CacheBreakerState.Set(float64(state))
}
