package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appai "github.com/bryanwahyu/codeguard/internal/application/ai"
	appanalyses "github.com/bryanwahyu/codeguard/internal/application/analyses"
	domai "github.com/bryanwahyu/codeguard/internal/domain/ai"
	domain "github.com/bryanwahyu/codeguard/internal/domain/analyses"
	"github.com/bryanwahyu/codeguard/internal/domain/reviews"
	"github.com/bryanwahyu/codeguard/internal/logger"
	"github.com/bryanwahyu/codeguard/internal/middleware"
)

// Options tunes the HTTP front door.
type Options struct {
	APIKeys        []string
	RateLimit      int // per minute per client, 0 = off
	CORSOrigins    []string
	MaxUploadBytes int64
	Checkers       map[string]middleware.HealthChecker
	Logger         *logger.Logger
}

type Router struct {
	analysesSvc *appanalyses.Service
	aiSvc       *appai.Service
	maxUpload   int64
}

func NewRouter(analysesSvc *appanalyses.Service, aiSvc *appai.Service, opts Options) http.Handler {
	r := &Router{analysesSvc: analysesSvc, aiSvc: aiSvc, maxUpload: opts.MaxUploadBytes}
	if r.maxUpload <= 0 {
		r.maxUpload = 10 << 20
	}
	base := opts.Logger
	if base == nil {
		base = logger.Default()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestLogger(base))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	mux.Use(middleware.APIKeyAuth(opts.APIKeys))
	mux.Use(middleware.RateLimitMiddleware(opts.RateLimit))

	mux.Get("/health", middleware.HealthHandler(opts.Checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/api", func(rt chi.Router) {
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Post("/analyze/upload", r.wrap(r.handleUpload))
		rt.Get("/analyses", r.wrap(r.handleList))
		rt.Get("/analyses/recent", r.wrap(r.handleRecent))
		rt.Get("/analyses/{id}", r.wrap(r.handleGet))
		rt.Get("/analyses/{id}/errors", r.wrap(r.handleErrors))
		rt.Post("/analyses/{id}/review", r.wrap(r.handleReview))
		rt.Get("/analyses/{id}/review", r.wrap(r.handleLatestReview))
		rt.Get("/stats", r.wrap(r.handleStats))
		rt.Get("/languages", r.wrap(r.handleLanguages))
		rt.Get("/rules", r.wrap(r.handleRules))
		rt.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest is a plain 400 that is not a field validation failure.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var verr *domain.ValidationError
		var bad badRequest
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"message": "Invalid input",
				"errors":  verr.Fields,
			})
		case errors.As(err, &bad):
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": bad.msg})
		case errors.As(err, &tooLarge):
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
				"message": fmt.Sprintf("file exceeds %d bytes", tooLarge.Limit),
			})
		case errors.Is(err, domain.ErrNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Analysis not found"})
		case errors.Is(err, reviews.ErrNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Review not found"})
		case errors.Is(err, appai.ErrNotCompleted):
			writeJSON(w, http.StatusConflict, map[string]string{"message": "Analysis is not completed yet"})
		case errors.Is(err, domai.ErrQuotaExceeded):
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"message": "ai quota exceeded"})
		case errors.Is(err, domai.ErrDisabled):
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "ai review is not configured"})
		default:
			logger.FromContext(req.Context()).WithError(err).Error("request failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// POST /api/analyze
// Body: {"code": "...", "language": "python", "filename": "app.py"}
// filename is stored as given, only multipart uploads are reduced to a base name.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body appanalyses.SubmitCommand
	if err := json.NewDecoder(io.LimitReader(req.Body, r.maxUpload)).Decode(&body); err != nil {
		return badRequest{"request body must be JSON"}
	}

	a, err := r.analysesSvc.Submit(req.Context(), body)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, a)
	return nil
}

// multipartSlack covers multipart headers around the file part
const multipartSlack = 64 << 10

// POST /api/analyze/upload (multipart, field "file")
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	if req.ContentLength > r.maxUpload+multipartSlack {
		return &http.MaxBytesError{Limit: r.maxUpload}
	}
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload+multipartSlack)
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return tooLarge
		}
		return badRequest{"No file uploaded"}
	}
	if req.MultipartForm != nil {
		defer req.MultipartForm.RemoveAll()
	}

	f, hdr, err := req.FormFile("file")
	if err != nil {
		return badRequest{"No file uploaded"}
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if int64(len(content)) > r.maxUpload {
		return &http.MaxBytesError{Limit: r.maxUpload}
	}

	a, err := r.analysesSvc.SubmitUpload(req.Context(), middleware.SanitizeFilename(hdr.Filename), content)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, a)
	return nil
}

// GET /api/analyses
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	list, err := r.analysesSvc.List(req.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// GET /api/analyses/recent?limit=5
func (r *Router) handleRecent(w http.ResponseWriter, req *http.Request) error {
	limit, err := middleware.ParseLimit(req.URL.Query().Get("limit"))
	if err != nil {
		return badRequest{err.Error()}
	}
	list, err := r.analysesSvc.Recent(req.Context(), limit)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

func analysisID(req *http.Request) (domain.AnalysisID, error) {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAnalysisID(id); err != nil {
		// malformed ids can never exist
		return "", domain.ErrNotFound
	}
	return domain.AnalysisID(id), nil
}

// GET /api/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id, err := analysisID(req)
	if err != nil {
		return err
	}
	a, err := r.analysesSvc.Get(req.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, a)
	return nil
}

// GET /api/analyses/{id}/errors?limit=20
func (r *Router) handleErrors(w http.ResponseWriter, req *http.Request) error {
	id, err := analysisID(req)
	if err != nil {
		return err
	}
	limit := 0 // repository default
	if raw := req.URL.Query().Get("limit"); raw != "" {
		if limit, err = middleware.ParseLimit(raw); err != nil {
			return badRequest{err.Error()}
		}
	}
	list, err := r.analysesSvc.Errors(req.Context(), id, limit)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// POST /api/analyses/{id}/review
func (r *Router) handleReview(w http.ResponseWriter, req *http.Request) error {
	id, err := analysisID(req)
	if err != nil {
		return err
	}
	if r.aiSvc == nil {
		return domai.ErrDisabled
	}
	rv, err := r.aiSvc.Review(req.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, rv)
	return nil
}

// GET /api/analyses/{id}/review
func (r *Router) handleLatestReview(w http.ResponseWriter, req *http.Request) error {
	id, err := analysisID(req)
	if err != nil {
		return err
	}
	if r.aiSvc == nil {
		return domai.ErrDisabled
	}
	rv, err := r.aiSvc.Latest(req.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, rv)
	return nil
}

// GET /api/stats
func (r *Router) handleStats(w http.ResponseWriter, req *http.Request) error {
	stats, err := r.analysesSvc.Stats(req.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, stats)
	return nil
}

func (r *Router) handleLanguages(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, r.analysesSvc.Languages())
	return nil
}

func (r *Router) handleRules(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, r.analysesSvc.Rules())
	return nil
}
