package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanwahyu/codeguard/internal/application"
	appai "github.com/bryanwahyu/codeguard/internal/application/ai"
	appanalyses "github.com/bryanwahyu/codeguard/internal/application/analyses"
	"github.com/bryanwahyu/codeguard/internal/config"
	domai "github.com/bryanwahyu/codeguard/internal/domain/ai"
	openaiClient "github.com/bryanwahyu/codeguard/internal/infra/ai/openai"
	"github.com/bryanwahyu/codeguard/internal/infra/db"
	"github.com/bryanwahyu/codeguard/internal/infra/executor/local"
	"github.com/bryanwahyu/codeguard/internal/infra/httpserver"
	"github.com/bryanwahyu/codeguard/internal/infra/storage"
	"github.com/bryanwahyu/codeguard/internal/logger"
	"github.com/bryanwahyu/codeguard/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	logger.SetDefault(log)
	defer log.Sync()

	ctx := log.WithContext(context.Background())

	// connect store
	stores, err := db.Open(ctx, cfg)
	if err != nil {
		log.WithError(err).WithField("driver", cfg.Store.Driver).Fatal("store connect error")
	}
	defer stores.Close()

	// init report archive (optional)
	reports, err := storage.Open(ctx, cfg)
	if err != nil {
		log.WithError(err).WithField("driver", cfg.Storage.Driver).Fatal("storage init error")
	}

	// init service
	svc := &appanalyses.Service{
		Repo:         stores.Analyses,
		Runner:       local.NewRunner(nil),
		ScanErrors:   stores.ScanErrors,
		Reports:      reports,
		Metrics:      middleware.AnalysisMetrics{},
		Clock:        application.SystemClock{},
		Timeout:      cfg.Analysis.Timeout,
		MaxCodeBytes: cfg.MaxCodeBytes(),
	}

	// worker pool
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	pool := appanalyses.NewPool(cfg.Analysis.Workers, cfg.Analysis.QueueSize, svc.Process)
	pool.Start(workerCtx)
	svc.Queue = pool

	if _, err := svc.Recover(ctx); err != nil {
		log.WithError(err).Warn("recover pending analyses")
	}

	// AI review, disabled tanpa api key
	var aiClient domai.Client
	if cfg.AI.APIKey != "" {
		aiClient = openaiClient.NewClient(cfg.AI.APIKey, cfg.AI.Model)
	} else {
		log.Info("ai review disabled: no api key configured")
	}
	aiSvc := &appai.Service{
		Analyses: stores.Analyses,
		Reviews:  stores.Reviews,
		Client:   aiClient,
		Clock:    application.SystemClock{},
	}

	// init router
	handler := httpserver.NewRouter(svc, aiSvc, httpserver.Options{
		APIKeys:        cfg.Server.APIKeys,
		RateLimit:      cfg.Server.RateLimit,
		CORSOrigins:    cfg.Server.CORSOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Checkers: map[string]middleware.HealthChecker{
			"store": middleware.CheckerFunc(stores.Ping),
		},
		Logger: log,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.WithFields(logger.Fields{
			"addr":    addr,
			"store":   cfg.Store.Driver,
			"storage": cfg.Storage.Driver,
			"workers": cfg.Analysis.Workers,
		}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.WithError(err).Error("shutdown error")
	}
	pool.Stop()
}
