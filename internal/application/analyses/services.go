package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/codeguard/internal/application"
	domain "github.com/bryanwahyu/codeguard/internal/domain/analyses"
	"github.com/bryanwahyu/codeguard/internal/domain/rules"
	"github.com/bryanwahyu/codeguard/internal/domain/scanerrors"
	"github.com/bryanwahyu/codeguard/internal/logger"
)

// DefaultPollInterval is how often clients re-read a pending analysis.
const DefaultPollInterval = time.Second

// Queue receives analysis ids to process in the background.
type Queue interface {
	Enqueue(id domain.AnalysisID)
}

// Observer is notified about processing outcomes (metrics).
type Observer interface {
	AnalysisStarted()
	AnalysisFinished(status domain.Status)
}

// Service implements use-cases untuk Analysis
// Service is designed to be used concurrently and is thread-safe
type Service struct {
	Repo       domain.Repository
	Runner     domain.Runner
	ScanErrors scanerrors.Repository // optional
	Reports    domain.ReportStore    // optional, nil = no archive
	Queue      Queue                 // nil = one goroutine per job
	Metrics    Observer              // optional
	Clock      application.Clock

	// Timeout bounds one Process call, 0 = no deadline.
	Timeout      time.Duration
	MaxCodeBytes int
}

//
// ==== USE CASES ====
//

// Command untuk submit analysis
type SubmitCommand struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Filename string `json:"filename"`
}

// Validate returns one FieldError per invalid field, nil when the command is valid.
func (s *Service) Validate(cmd SubmitCommand) error {
	var verr domain.ValidationError
	if cmd.Code == "" {
		verr.Add("code", "code is required")
	} else if s.MaxCodeBytes > 0 && len(cmd.Code) > s.MaxCodeBytes {
		verr.Add("code", fmt.Sprintf("code exceeds %d bytes", s.MaxCodeBytes))
	}
	if _, ok := domain.ParseLanguage(cmd.Language); !ok {
		verr.Add("language", fmt.Sprintf("language must be one of %v", domain.SupportedLanguages()))
	}
	if cmd.Filename == "" {
		verr.Add("filename", "filename is required")
	}
	return verr.OrNil()
}

// Submit validates, stores a pending analysis and schedules it. It never waits for the scan.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (*domain.Analysis, error) {
	if err := s.Validate(cmd); err != nil {
		return nil, err
	}
	lang, _ := domain.ParseLanguage(cmd.Language)

	a := &domain.Analysis{
		ID:        domain.AnalysisID(uuid.NewString()),
		Filename:  cmd.Filename,
		Language:  lang,
		Code:      cmd.Code,
		Status:    domain.StatusPending,
		CreatedAt: s.now().UTC(),
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create analysis: %w", err)
	}
	logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldAnalysisID: a.ID,
		"language":             a.Language,
		"filename":             a.Filename,
	}).Info("analysis submitted")

	s.schedule(a.ID)
	return a, nil
}

// SubmitUpload derives filename and language from an uploaded file.
func (s *Service) SubmitUpload(ctx context.Context, filename string, content []byte) (*domain.Analysis, error) {
	if !domain.AllowedUpload(filename) {
		var verr domain.ValidationError
		verr.Add("file", "Invalid file type. Only .js, .py, .sol, .txt, .ts, .jsx, .tsx files are allowed.")
		return nil, verr.OrNil()
	}
	return s.Submit(ctx, SubmitCommand{
		Code:     string(content),
		Language: string(domain.DetectLanguage(filename)),
		Filename: filename,
	})
}

func (s *Service) schedule(id domain.AnalysisID) {
	if s.Queue != nil {
		s.Queue.Enqueue(id)
		return
	}
	go s.Process(context.Background(), id)
}

// Process jalankan rule engine untuk satu analysis lalu tulis hasil akhirnya.
// Errors are recorded on the analysis, never returned to the submitter.
func (s *Service) Process(ctx context.Context, id domain.AnalysisID) {
	log := logger.FromContext(ctx).WithField(logger.FieldAnalysisID, string(id))
	ctx = log.WithContext(ctx)

	a, err := s.Repo.Get(ctx, id)
	if err != nil {
		log.WithError(err).Error("load analysis for processing")
		return
	}
	if a.Status.Terminal() {
		log.WithField(logger.FieldStatus, a.Status).Debug("analysis already processed")
		return
	}

	if s.Metrics != nil {
		s.Metrics.AnalysisStarted()
	}
	status := domain.StatusFailed
	defer func() {
		if s.Metrics != nil {
			s.Metrics.AnalysisFinished(status)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			s.recordError(ctx, id, scanerrors.PhasePanic, fmt.Sprint(r), map[string]string{"stack": string(debug.Stack())})
			s.fail(ctx, id, domain.ReasonScanFault)
		}
	}()

	runCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	res, err := s.Runner.Run(runCtx, domain.RunRequest{AnalysisID: id, Language: a.Language, Code: a.Code})
	if err != nil {
		reason, phase := domain.ReasonScanFault, scanerrors.PhaseScan
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			reason, phase = domain.ReasonTimeout, scanerrors.PhaseTimeout
		}
		s.recordError(ctx, id, phase, err.Error(), nil)
		s.fail(ctx, id, reason)
		return
	}
	if res.Fault != nil {
		details := map[string]string{}
		var rf *rules.RuleFault
		if errors.As(res.Fault, &rf) {
			details["ruleId"] = rf.RuleID
			details["line"] = fmt.Sprint(rf.Line)
		}
		s.recordError(ctx, id, scanerrors.PhaseScan, res.Fault.Error(), details)
	}

	completed := domain.StatusCompleted
	result := res.Result
	duration := result.AnalysisTime
	updated, err := s.Repo.Update(ctx, id, domain.Patch{Status: &completed, Results: &result, Duration: &duration})
	if err != nil {
		log.WithError(err).Error("store analysis result")
		return
	}
	status = domain.StatusCompleted
	log.WithFields(logger.Fields{
		logger.FieldDurationMs: duration,
		"issues":               result.Summary.Total,
	}).Info("analysis completed")

	s.archive(ctx, updated)
}

func (s *Service) fail(ctx context.Context, id domain.AnalysisID, reason string) {
	failed := domain.StatusFailed
	if _, err := s.Repo.Update(ctx, id, domain.Patch{Status: &failed, FailureReason: &reason}); err != nil {
		logger.FromContext(ctx).WithError(err).Error("mark analysis failed")
		return
	}
	logger.FromContext(ctx).WithField("reason", reason).Warn("analysis failed")
}

// archive uploads the completed report. Failures are logged only.
func (s *Service) archive(ctx context.Context, a *domain.Analysis) {
	if s.Reports == nil || a == nil {
		return
	}
	body, err := json.Marshal(a)
	if err != nil {
		return
	}
	url, err := s.Reports.Put(ctx, domain.ReportKey(a.ID), body, "application/json")
	if err != nil {
		s.recordError(ctx, a.ID, scanerrors.PhaseArchive, err.Error(), nil)
		logger.FromContext(ctx).WithError(err).Warn("archive report")
		return
	}
	if _, err := s.Repo.Update(ctx, a.ID, domain.Patch{ReportURL: &url}); err != nil {
		logger.FromContext(ctx).WithError(err).Warn("store report url")
	}
}

func (s *Service) recordError(ctx context.Context, id domain.AnalysisID, phase, msg string, details map[string]string) {
	if s.ScanErrors == nil {
		return
	}
	e := &scanerrors.ScanError{AnalysisID: string(id), Phase: phase, Message: msg, CreatedAt: s.now().UTC()}
	if len(details) > 0 {
		b, _ := json.Marshal(details)
		e.DetailsJSON = string(b)
	}
	if err := s.ScanErrors.Save(ctx, e); err != nil {
		logger.FromContext(ctx).WithError(err).Warn("save scan error")
	}
}

// Get ambil 1 analysis by id
func (s *Service) Get(ctx context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	return s.Repo.Get(ctx, id)
}

// List semua analysis, terbaru dulu
func (s *Service) List(ctx context.Context) ([]*domain.Analysis, error) {
	return s.Repo.List(ctx)
}

// Recent ambil N analysis terakhir
func (s *Service) Recent(ctx context.Context, limit int) ([]*domain.Analysis, error) {
	return s.Repo.Latest(ctx, limit)
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	return s.Repo.Stats(ctx)
}

func (s *Service) Languages() []domain.Language {
	return domain.SupportedLanguages()
}

func (s *Service) Rules() []rules.Info {
	return rules.Catalogue()
}

// Errors returns the scan-error log of one analysis.
func (s *Service) Errors(ctx context.Context, id domain.AnalysisID, limit int) ([]*scanerrors.ScanError, error) {
	if _, err := s.Repo.Get(ctx, id); err != nil {
		return nil, err
	}
	if s.ScanErrors == nil {
		return []*scanerrors.ScanError{}, nil
	}
	return s.ScanErrors.ListByAnalysis(ctx, string(id), limit)
}

// Poll reads the analysis every interval until it leaves pending or ctx ends.
func (s *Service) Poll(ctx context.Context, id domain.AnalysisID, interval time.Duration) (*domain.Analysis, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		a, err := s.Repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if a.Status.Terminal() {
			return a, nil
		}
		select {
		case <-ctx.Done():
			return a, ctx.Err()
		case <-t.C:
		}
	}
}

// Recover schedules analyses left pending by a previous process.
func (s *Service) Recover(ctx context.Context) (int, error) {
	pending, err := s.Repo.ListPending(ctx)
	if err != nil {
		return 0, err
	}
	for _, a := range pending {
		s.schedule(a.ID)
	}
	if len(pending) > 0 {
		logger.FromContext(ctx).WithField("count", len(pending)).Info("re-queued pending analyses")
	}
	return len(pending), nil
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}
