package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DrOst98/fc-koeln-dashboard/internal/adapters/http/api"
	"github.com/DrOst98/fc-koeln-dashboard/internal/adapters/repository"
	service "github.com/DrOst98/fc-koeln-dashboard/internal/app"
	"github.com/DrOst98/fc-koeln-dashboard/internal/config"
	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/cascade"
	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/categories"
	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/tiers"
	"github.com/DrOst98/fc-koeln-dashboard/pkg/logger"
	"github.com/DrOst98/fc-koeln-dashboard/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to flush logs: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Load the fixed, versioned artifacts. All of these are fatal on
	// failure; there is nothing to serve without them.
	registry, err := categories.Load(cfg.CategoriesPath)
	if err != nil {
		log.Error(ctx, "loading category registry", logger.Error(err))
		return
	}
	ensemble, err := cascade.LoadEnsemble(cfg.ModelPath, registry)
	if err != nil {
		log.Error(ctx, "loading base regressor", logger.Error(err))
		return
	}
	calibration, err := cascade.LoadCalibration(cfg.CalibrationPath)
	if err != nil {
		log.Error(ctx, "loading calibration curve", logger.Error(err))
		return
	}
	casc := cascade.New(ensemble, calibration)

	tierTable, err := tierTableFromConfig(cfg)
	if err != nil {
		log.Error(ctx, "building tier table", logger.Error(err))
		return
	}

	store, err := repository.Open(cfg.ReferenceDBPath)
	if err != nil {
		log.Error(ctx, "opening reference dataset", logger.Error(err))
		return
	}

	metrics.SetArtifactInfo(ensemble.Version(), calibration.Version())

	svc := service.New(registry, casc, store,
		service.WithLogger(log),
		service.WithTopN(cfg.TopN),
		service.WithMaxTopN(cfg.MaxTopN),
		service.WithTierTable(tierTable),
		service.WithScorerField(cfg.ScorerField),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "starting service", logger.Error(err))
		return
	}
	defer svc.Stop()

	// HTTP mux and routes.
	mux := http.NewServeMux()
	api.NewServer(svc).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// tierTableFromConfig builds the configured tier table, defaulting to
// the five-tier production table when the config names none.
func tierTableFromConfig(cfg *config.Config) (*tiers.Table, error) {
	if len(cfg.Tiers) == 0 {
		return tiers.Default(), nil
	}
	bands := make([]tiers.Band, len(cfg.Tiers))
	for i, b := range cfg.Tiers {
		bands[i] = tiers.Band{Upper: b.Upper, Label: b.Label, Color: b.Color}
	}
	// tiers.New widens a zero final upper to +Inf.
	return tiers.New(bands)
}
