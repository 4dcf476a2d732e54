package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 状态分类计数
	StatusClassifiedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_status_classified_total",
			Help: "Total number of forum/topic status classifications",
		},
		[]string{"kind", "tag"}, // kind: forum, topic
	)

	// Gravatar 查询计数
	GravatarLookupCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gravatar_lookup_total",
			Help: "Gravatar resolutions by outcome",
		},
		[]string{"result"}, // result: hit, negative_hit, found, not_found, error
	)

	// Gravatar 外部请求延迟（秒）
	GravatarFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gravatar_fetch_duration_seconds",
			Help:    "Outbound gravatar request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
		[]string{"status"},
	)

	// MQ 消费延迟（毫秒）
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10),
		},
		[]string{"routing_key", "queue"},
	)

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
	SlowQueryCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "db_slow_query_total",
			Help: "Number of queries slower than the configured threshold",
		},
	)

	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)
)

// IncrementStatusClassified 记录一次分类结果
func IncrementStatusClassified(kind, tag string) {
	StatusClassifiedCount.WithLabelValues(kind, tag).Inc()
}

// IncrementGravatarLookup 记录一次 gravatar 查询结果
func IncrementGravatarLookup(result string) {
	GravatarLookupCount.WithLabelValues(result).Inc()
}

// RecordGravatarFetch 记录外部请求延迟
func RecordGravatarFetch(status string, duration time.Duration) {
	GravatarFetchDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordMQConsumeLatency 记录 MQ 消费延迟
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// IncrementSlowQuery 记录慢查询；SQL 只写日志，不做 label（基数太高）
func IncrementSlowQuery(_ string, _ time.Duration) {
	SlowQueryCount.Inc()
}

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
