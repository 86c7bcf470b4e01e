package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	kbQueriesTotal     *prometheus.CounterVec
	kbRetrievalHits    *prometheus.CounterVec
	kbNoContextTotal   *prometheus.CounterVec
	kbRetrievedChunks  *prometheus.HistogramVec
	kbQueryDuration    *prometheus.HistogramVec
	kbBackfilledChunks *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studyassist",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "studyassist",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "studyassist",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	kbQueriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studyassist",
			Subsystem: "kb",
			Name:      "queries_total",
			Help:      "Total successful knowledge base queries.",
		},
		[]string{"service"},
	)
	kbRetrievalHits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studyassist",
			Subsystem: "kb",
			Name:      "retrieval_hit_total",
			Help:      "Total queries with at least one retrieved source.",
		},
		[]string{"service"},
	)
	kbNoContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studyassist",
			Subsystem: "kb",
			Name:      "no_context_total",
			Help:      "Total queries answered without retrieved sources.",
		},
		[]string{"service"},
	)
	kbRetrievedChunks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "studyassist",
			Subsystem: "kb",
			Name:      "retrieved_chunks",
			Help:      "Distribution of retrieved chunks per successful query.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)
	kbQueryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "studyassist",
			Subsystem: "kb",
			Name:      "query_duration_seconds",
			Help:      "Knowledge base query duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	kbBackfilledChunks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studyassist",
			Subsystem: "kb",
			Name:      "backfilled_chunks_total",
			Help:      "Total zero-score chunks appended to fill short result sets.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		kbQueriesTotal,
		kbRetrievalHits,
		kbNoContextTotal,
		kbRetrievedChunks,
		kbQueryDuration,
		kbBackfilledChunks,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		kbQueriesTotal:     kbQueriesTotal,
		kbRetrievalHits:    kbRetrievalHits,
		kbNoContextTotal:   kbNoContextTotal,
		kbRetrievedChunks:  kbRetrievedChunks,
		kbQueryDuration:    kbQueryDuration,
		kbBackfilledChunks: kbBackfilledChunks,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	case strings.HasPrefix(path, "/v1/tasks/"):
		return "/v1/tasks/{task_id}"
	default:
		return path
	}
}

// RecordQueryObservation tracks one successful /v1/kb/query round trip.
// backfilled counts the zero-score chunks appended after ranking.
func (m *HTTPServerMetrics) RecordQueryObservation(service string, sourceCount, backfilled int, duration time.Duration) {
	m.kbQueriesTotal.WithLabelValues(service).Inc()
	m.kbRetrievedChunks.WithLabelValues(service).Observe(float64(sourceCount))
	m.kbQueryDuration.WithLabelValues(service).Observe(duration.Seconds())
	if backfilled > 0 {
		m.kbBackfilledChunks.WithLabelValues(service).Add(float64(backfilled))
	}

	if sourceCount > 0 {
		m.kbRetrievalHits.WithLabelValues(service).Inc()
		return
	}
	m.kbNoContextTotal.WithLabelValues(service).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
