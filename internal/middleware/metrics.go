package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	domain "github.com/bryanwahyu/codeguard/internal/domain/analyses"
)

// Metrics holds process-wide counters served by /metrics
type Metrics struct {
	requests   atomic.Uint64
	inFlight   atomic.Int64
	clientErrs atomic.Uint64 // 4xx
	serverErrs atomic.Uint64 // 5xx

	analyses  atomic.Uint64
	running   atomic.Int64
	completed atomic.Uint64
	failed    atomic.Uint64

	started time.Time
}

var globalMetrics = &Metrics{started: time.Now()}

// AnalysisMetrics feeds the analysis counters from the processing pipeline.
type AnalysisMetrics struct{}

func (AnalysisMetrics) AnalysisStarted() {
	globalMetrics.analyses.Add(1)
	globalMetrics.running.Add(1)
}

func (AnalysisMetrics) AnalysisFinished(status domain.Status) {
	globalMetrics.running.Add(-1)
	if status == domain.StatusCompleted {
		globalMetrics.completed.Add(1)
		return
	}
	globalMetrics.failed.Add(1)
}

// Snapshot returns the counters plus runtime stats as a JSON-ready map
func (m *Metrics) Snapshot() map[string]any {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return map[string]any{
		"requests": map[string]any{
			"total":        m.requests.Load(),
			"in_progress":  m.inFlight.Load(),
			"client_error": m.clientErrs.Load(),
			"server_error": m.serverErrs.Load(),
		},
		"analyses": map[string]any{
			"total":     m.analyses.Load(),
			"running":   m.running.Load(),
			"completed": m.completed.Load(),
			"failed":    m.failed.Load(),
		},
		"uptime_seconds": time.Since(m.started).Seconds(),
		"memory": map[string]any{
			"alloc_bytes": mem.Alloc,
			"sys_bytes":   mem.Sys,
			"num_gc":      mem.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware counts requests by outcome
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		globalMetrics.requests.Add(1)
		globalMetrics.inFlight.Add(1)
		defer globalMetrics.inFlight.Add(-1)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		switch {
		case wrapped.statusCode >= 500:
			globalMetrics.serverErrs.Add(1)
		case wrapped.statusCode >= 400:
			globalMetrics.clientErrs.Add(1)
		}
	})
}

func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(globalMetrics.Snapshot())
}
