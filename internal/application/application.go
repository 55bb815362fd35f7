package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fixora/fixora-service/internal/config"
	"github.com/fixora/fixora-service/internal/database"
	"github.com/fixora/fixora-service/internal/handler"
	"github.com/fixora/fixora-service/internal/observability"
	"github.com/fixora/fixora-service/internal/router"
	"go.uber.org/zap"
)

// Version is reported to the tracer resource.
var Version = "dev"

var initTracing = observability.InitTracing

// API is the HTTP server (api mode).
type API struct {
	cfg     *config.Config
	log     *zap.Logger
	svc     *Services
	httpSrv *http.Server
	tracing func(context.Context) error
}

// NewAPI validates config, migrates the database and wires the HTTP server.
func NewAPI(ctx context.Context, cfg *config.Config, log *zap.Logger) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	shutdownTracing, err := initTracing(ctx, cfg.OTel.Endpoint, cfg.OTel.ServiceName, Version)
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}
	fail := func(err error) (*API, error) {
		if serr := shutdownTracing(ctx); serr != nil {
			log.Warn("tracing shutdown", zap.Error(serr))
		}
		return nil, err
	}
	if err := database.MigrateUp(cfg.DatabaseURL(), log); err != nil {
		return fail(fmt.Errorf("migrate: %w", err))
	}
	svc, err := Build(ctx, cfg, log)
	if err != nil {
		return fail(err)
	}

	sqlDB, err := svc.DB.DB()
	if err != nil {
		svc.Close()
		return fail(fmt.Errorf("sql db: %w", err))
	}
	var uploader handler.Uploader
	if svc.Uploader != nil {
		uploader = svc.Uploader
	}
	h := router.New(cfg.OTel.ServiceName, router.Handlers{
		Reports:  handler.NewReportHandler(svc.Reports),
		Feedback: handler.NewFeedbackHandler(svc.Feedback, svc.Reports, svc.Backfill),
		Uploads:  handler.NewUploadHandler(uploader),
		Users:    handler.NewUserHandler(svc.Users),
		Ping:     sqlDB.PingContext,
	})

	return &API{
		cfg: cfg,
		log: log,
		svc: svc,
		httpSrv: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           h,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		tracing: shutdownTracing,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then drains the outbound queue.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	a.log.Info("HTTP server listening",
		zap.String("addr", a.httpSrv.Addr),
		zap.String("swagger", base+"/swagger"),
		zap.String("health", base+"/health"),
		zap.String("api", base+"/api/v1/"))

	errCh := make(chan error, 1)
	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("http shutdown", zap.Error(err))
	}
	a.svc.Close()
	if err := a.tracing(shutdownCtx); err != nil {
		a.log.Warn("tracing shutdown", zap.Error(err))
	}
	if serveErr != nil {
		return fmt.Errorf("http: %w", serveErr)
	}
	return nil
}
