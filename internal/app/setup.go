package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/firebase/genkit/go/core/tracing"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/plannerai/planner/internal/agent"
	"github.com/plannerai/planner/internal/config"
	"github.com/plannerai/planner/internal/log"
	"github.com/plannerai/planner/internal/session"
	"github.com/plannerai/planner/internal/state"
)

// Setup creates and initializes the application.
// Returns an App with embedded cleanup; call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	a.otelCleanup = provideOtelShutdown(ctx, cfg, logger)

	g := genkit.Init(ctx,
		genkit.WithPlugins(&googlegenai.GoogleAI{}),
		genkit.WithDefaultModel(cfg.ModelName),
	)
	a.Genkit = g

	policy, err := state.ParsePolicy(cfg.MergePolicy)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("parsing merge policy: %w", err)
	}
	a.Store = session.NewStore(policy, logger.With("component", "store"))
	a.Sessions = session.NewManager(a.Store, cfg.AppName, logger.With("component", "sessions"))

	planner, err := agent.New(agent.Config{
		Genkit:    g,
		Sessions:  a.Sessions,
		Logger:    logger.With("component", "planner"),
		ModelName: cfg.ModelName,
		MaxTurns:  cfg.MaxTurns,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating planner: %w", err)
	}
	a.Planner = planner

	return a, nil
}

// provideOtelShutdown sets up OTLP trace export before Genkit registers
// spans. Disabled tracing returns a no-op cleanup.
func provideOtelShutdown(ctx context.Context, cfg *config.Config, logger log.Logger) func() {
	if !cfg.Trace.Enabled {
		return func() {}
	}

	// Genkit's TracerProvider picks these up when building its resource.
	// os.Setenv is not concurrent-safe, but Setup runs once before any
	// goroutines are spawned.
	if cfg.Trace.ServiceName != "" {
		_ = os.Setenv("OTEL_SERVICE_NAME", cfg.Trace.ServiceName)
	}
	if cfg.Trace.Environment != "" {
		_ = os.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment="+cfg.Trace.Environment)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.Trace.Endpoint),
		otlptracehttp.WithInsecure(), // local collector, no TLS
	)
	if err != nil {
		logger.Warn("creating trace exporter, tracing disabled", "error", err)
		return func() {}
	}

	processor := sdktrace.NewBatchSpanProcessor(exporter)
	tracing.TracerProvider().RegisterSpanProcessor(processor)

	logger.Debug("tracing enabled",
		"endpoint", cfg.Trace.Endpoint,
		"service", cfg.Trace.ServiceName,
		"environment", cfg.Trace.Environment)

	shutdown := tracing.TracerProvider().Shutdown
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("shutting down tracer provider", "error", err)
		}
	}
}
