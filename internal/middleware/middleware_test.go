package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	domain "github.com/bryanwahyu/codeguard/internal/domain/analyses"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(GetClientFromContext(r.Context())))
})

func TestAPIKeyAuth(t *testing.T) {
	h := APIKeyAuth([]string{"alpha", "beta"})(okHandler)

	tests := []struct {
		name   string
		path   string
		header map[string]string
		code   int
		client string
	}{
		{"missing", "/api/stats", nil, http.StatusUnauthorized, ""},
		{"invalid", "/api/stats", map[string]string{"X-API-Key": "gamma"}, http.StatusUnauthorized, ""},
		{"bearer", "/api/stats", map[string]string{"Authorization": "Bearer beta"}, http.StatusOK, "key-1"},
		{"raw header", "/api/stats", map[string]string{"X-API-Key": "alpha"}, http.StatusOK, "key-0"},
		{"public", "/health", nil, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.code {
				t.Fatalf("code = %d, want %d", rec.Code, tt.code)
			}
			if tt.code == http.StatusOK && rec.Body.String() != tt.client {
				t.Errorf("client = %q, want %q", rec.Body.String(), tt.client)
			}
		})
	}

	// no keys = auth disabled
	rec := httptest.NewRecorder()
	APIKeyAuth(nil)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("disabled auth code = %d", rec.Code)
	}
}

func TestTokenBucketRefill(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tb := NewTokenBucket(2, 0.5)
	tb.now = func() time.Time { return now }
	tb.lastRefill = now

	if !tb.Allow() || !tb.Allow() {
		t.Fatal("full bucket must allow capacity requests")
	}
	if tb.Allow() {
		t.Fatal("empty bucket allowed a request")
	}
	now = now.Add(time.Second)
	if tb.Allow() {
		t.Fatal("half a token must not allow a request")
	}
	now = now.Add(time.Second)
	if !tb.Allow() {
		t.Fatal("refilled bucket must allow a request")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	h := RateLimitMiddleware(2)(okHandler)
	call := func(path, addr string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	for i := 0; i < 2; i++ {
		if c := call("/api/stats", "10.0.0.1:5000"); c != http.StatusOK {
			t.Fatalf("request %d code = %d", i, c)
		}
	}
	if c := call("/api/stats", "10.0.0.1:5001"); c != http.StatusTooManyRequests {
		t.Fatalf("third request code = %d", c)
	}
	if c := call("/api/stats", "10.0.0.2:5000"); c != http.StatusOK {
		t.Fatalf("other client code = %d", c)
	}
	if c := call("/health", "10.0.0.1:5000"); c != http.StatusOK {
		t.Fatalf("public path code = %d", c)
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", 5, false},
		{"3", 3, false},
		{"0", 5, false},
		{"-2", 5, false},
		{"500", 100, false},
		{"ten", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLimit(tt.raw)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLimit(%q) = %d, %v", tt.raw, got, err)
		}
	}
}

func TestValidateAndSanitize(t *testing.T) {
	if err := ValidateAnalysisID("0b6f6c3e-6f7e-4c4e-9d55-3f1f0e2d7a10"); err != nil {
		t.Errorf("uuid rejected: %v", err)
	}
	for _, bad := range []string{"", "a b", "../etc", strings.Repeat("x", 65)} {
		if ValidateAnalysisID(bad) == nil {
			t.Errorf("ValidateAnalysisID(%q) accepted", bad)
		}
	}

	tests := map[string]string{
		"app.py":            "app.py",
		"../../etc/passwd":  "passwd",
		`C:\Users\me\a.sol`: "a.sol",
		" spaced.js\x00 ":   "spaced.js",
		"dir/sub/Token.sol": "Token.sol",
	}
	for in, want := range tests {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeFilenameKeepsUTF8(t *testing.T) {
	// 3-byte runes put the 255 byte cut inside a rune
	name := strings.Repeat("文", 100) + ".sol"
	got := SanitizeFilename(name)
	if !utf8.ValidString(got) {
		t.Fatalf("SanitizeFilename produced invalid UTF-8: %q", got)
	}
	if len(got) > 255 || !strings.HasSuffix(got, "文.sol") {
		t.Fatalf("SanitizeFilename = %q (%d bytes)", got, len(got))
	}
}

func TestHealthHandler(t *testing.T) {
	checkers := map[string]HealthChecker{
		"store": CheckerFunc(func(ctx context.Context) error { return nil }),
	}
	rec := httptest.NewRecorder()
	HealthHandler(checkers)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"healthy"`) {
		t.Fatalf("healthy = %d %s", rec.Code, rec.Body.String())
	}

	checkers["storage"] = CheckerFunc(func(ctx context.Context) error { return errors.New("bucket gone") })
	rec = httptest.NewRecorder()
	HealthHandler(checkers)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "bucket gone") {
		t.Fatalf("unhealthy = %d %s", rec.Code, rec.Body.String())
	}
}

func TestAnalysisMetrics(t *testing.T) {
	completed := globalMetrics.completed.Load()
	failed := globalMetrics.failed.Load()

	var m AnalysisMetrics
	m.AnalysisStarted()
	m.AnalysisFinished(domain.StatusCompleted)
	m.AnalysisStarted()
	m.AnalysisFinished(domain.StatusFailed)

	if got := globalMetrics.completed.Load(); got != completed+1 {
		t.Errorf("completed = %d, want %d", got, completed+1)
	}
	if got := globalMetrics.failed.Load(); got != failed+1 {
		t.Errorf("failed = %d, want %d", got, failed+1)
	}
	if globalMetrics.running.Load() != 0 {
		t.Error("running gauge not back to zero")
	}

	rec := httptest.NewRecorder()
	MetricsMiddleware(http.HandlerFunc(MetricsHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	var snap struct {
		Analyses struct {
			Completed uint64 `json:"completed"`
		} `json:"analyses"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode metrics: %v", err)
	}
	if snap.Analyses.Completed != completed+1 {
		t.Errorf("snapshot completed = %d", snap.Analyses.Completed)
	}
}
