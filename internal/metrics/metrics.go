// Package metrics provides Prometheus metrics for the studio server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studio_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Archive metrics
	archivesIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_archives_ingested_total",
			Help: "Total archives registered from uploaded ZIPs",
		},
		[]string{"status"},
	)

	archiveEntries = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "studio_archive_entries",
			Help:    "Number of entries per ingested archive",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	archiveModifyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_archive_modify_total",
			Help: "Total copy-on-write archive edits",
		},
		[]string{"status"},
	)

	archiveMergeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_archive_merge_total",
			Help: "Total multi-archive merges",
		},
		[]string{"status"},
	)

	// Bundler metrics
	bundleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "studio_bundle_duration_seconds",
			Help:    "Time to assemble a self-contained bundle",
			Buckets: prometheus.DefBuckets,
		},
	)

	bundleCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_bundle_cache_total",
			Help: "Bundle cache lookups",
		},
		[]string{"result"},
	)

	// Scanner metrics
	scannerIssuesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_scanner_issues_total",
			Help: "Total issues reported by the heuristic scanner",
		},
		[]string{"severity"},
	)

	// Workspace metrics
	workspacesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "studio_workspaces_active",
			Help: "Number of live editing sessions",
		},
	)

	// Storage metrics
	storageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studio_storage_operation_duration_seconds",
			Help:    "Object storage operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	storageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_storage_operations_total",
			Help: "Total object storage operations",
		},
		[]string{"operation", "status"},
	)

	// Database metrics
	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studio_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	// Auth metrics
	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_auth_attempts_total",
			Help: "Total authentication attempts",
		},
		[]string{"result"},
	)

	// SSE metrics
	sseConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "studio_sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	sseEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_sse_events_total",
			Help: "Total SSE events published",
		},
		[]string{"type"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordArchiveIngest records an archive registration attempt.
func RecordArchiveIngest(entries int, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	archivesIngestedTotal.WithLabelValues(status).Inc()
	if success {
		archiveEntries.Observe(float64(entries))
	}
}

// RecordArchiveModify records a copy-on-write edit.
func RecordArchiveModify(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	archiveModifyTotal.WithLabelValues(status).Inc()
}

// RecordArchiveMerge records a merge operation.
func RecordArchiveMerge(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	archiveMergeTotal.WithLabelValues(status).Inc()
}

// RecordBundle records bundle assembly duration.
func RecordBundle(duration time.Duration) {
	bundleDuration.Observe(duration.Seconds())
}

// RecordBundleCache records a bundle cache lookup.
func RecordBundleCache(hit bool) {
	result := "hit"
	if !hit {
		result = "miss"
	}
	bundleCacheTotal.WithLabelValues(result).Inc()
}

// RecordScannerIssue records one reported issue.
func RecordScannerIssue(severity string) {
	scannerIssuesTotal.WithLabelValues(severity).Inc()
}

// SetWorkspacesActive sets the number of live editing sessions.
func SetWorkspacesActive(count int) {
	workspacesActive.Set(float64(count))
}

// RecordStorageOperation records an object storage operation.
func RecordStorageOperation(operation string, duration time.Duration, success bool) {
	storageOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	status := "success"
	if !success {
		status = "error"
	}
	storageOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDBQuery records a database query duration.
func RecordDBQuery(query string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
}

// RecordAuthAttempt records an authentication attempt.
func RecordAuthAttempt(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	authAttemptsTotal.WithLabelValues(result).Inc()
}

// SetSSEConnectionsActive sets the number of active SSE connections.
func SetSSEConnectionsActive(count int64) {
	sseConnectionsActive.Set(float64(count))
}

// RecordSSEEvent records an SSE event publication.
func RecordSSEEvent(eventType string) {
	sseEventsTotal.WithLabelValues(eventType).Inc()
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware returns HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		RecordHTTPRequest(r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}
