package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthChecker is one dependency probed by /health
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a ping function (store, object storage) to HealthChecker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return f(ctx)
}

type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
}

type CheckStatus struct {
	Status    string `json:"status"`
	LatencyMs int64  `json:"latencyMs"`
	Message   string `json:"message,omitempty"`
}

// HealthHandler probes every checker in parallel; any failure gives 503.
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		checks := make(map[string]CheckStatus, len(checkers))
		for name, checker := range checkers {
			wg.Add(1)
			go func(name string, c HealthChecker) {
				defer wg.Done()
				start := time.Now()
				st := CheckStatus{Status: "healthy"}
				if err := c.Check(ctx); err != nil {
					st = CheckStatus{Status: "unhealthy", Message: err.Error()}
				}
				st.LatencyMs = time.Since(start).Milliseconds()
				mu.Lock()
				checks[name] = st
				mu.Unlock()
			}(name, checker)
		}
		wg.Wait()

		health := HealthStatus{Status: "healthy", Timestamp: time.Now().UTC(), Checks: checks}
		code := http.StatusOK
		for _, c := range checks {
			if c.Status != "healthy" {
				health.Status = "unhealthy"
				code = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(health)
	}
}

// ReadinessHandler answers once the router is serving
func ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
	})
}

// LivenessHandler: proses masih hidup
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}
