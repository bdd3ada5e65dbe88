package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/haivler/haivler-cli/internal/api"
	"github.com/haivler/haivler-cli/internal/config"
	"github.com/haivler/haivler-cli/internal/cookie"
	"github.com/haivler/haivler-cli/internal/session"
)

// app wires the config, logger, cookie store, API client, and session
// store together for one command invocation. The session store is an
// explicitly owned object injected into commands, living from newApp until
// process exit.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	cookies *cookie.FileStore
	client  *api.Client
	session *session.Store

	meterProvider *sdkmetric.MeterProvider
}

// newApp loads configuration, builds the component graph, and rehydrates
// the session from the persisted token (no token means no network call).
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	sessionPath := sessionFilePath
	if sessionPath == "" {
		sessionPath = cfg.SessionFile()
	}
	cookies := cookie.NewFileStore(sessionPath, logger)

	a := &app{
		cfg:     cfg,
		logger:  logger,
		cookies: cookies,
	}

	metrics := api.NopMetrics()
	if cfg.Metrics.Enabled {
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(os.Stderr))
		if err != nil {
			return nil, fmt.Errorf("create metrics exporter: %w", err)
		}
		a.meterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		)
		m, err := api.NewMetrics(a.meterProvider.Meter("github.com/haivler/haivler-cli"))
		if err != nil {
			return nil, fmt.Errorf("create metrics: %w", err)
		}
		metrics = m
	}

	// The transport layer emits an auth-failure event on any 401; the
	// application decides what that means: drop the cached user and tell
	// the human to log in again. The token itself is already purged by
	// the time this runs.
	a.client = api.NewClient(
		api.WithBaseURL(cfg.API.BaseURL),
		api.WithTimeout(cfg.TimeoutDuration()),
		api.WithTokenStore(cookies),
		api.WithLogger(logger),
		api.WithMetrics(metrics),
		api.WithAuthFailureHandler(func() {
			if a.session != nil {
				a.session.Invalidate()
			}
			fmt.Fprintln(os.Stderr, "Session expired. Please log in again.")
		}),
	)

	a.session = session.New(a.client, cookies, logger)
	a.session.Init(ctx)

	return a, nil
}

// Close flushes metrics if they were enabled.
func (a *app) Close(ctx context.Context) {
	if a.meterProvider != nil {
		if err := a.meterProvider.Shutdown(ctx); err != nil {
			a.logger.Warn("metrics shutdown failed", "error", err)
		}
	}
}

// requireAuth returns an error when no user is logged in. Purely advisory:
// the backend enforces authorization; this only gives a friendlier message
// than a 401 for commands that cannot possibly succeed anonymously.
func (a *app) requireAuth() error {
	if !a.session.IsAuthenticated() {
		return fmt.Errorf("not logged in, run \"haivler login\" first")
	}
	return nil
}
