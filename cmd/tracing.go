package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/spanmark/internal/annotations"
	"github.com/zjrosen/spanmark/internal/config"
	"github.com/zjrosen/spanmark/internal/log"
	"github.com/zjrosen/spanmark/internal/tracing"
)

const tracerName = "github.com/zjrosen/spanmark/cmd"

var tracingProvider *tracing.Provider

// initDiagnostics starts debug logging and tracing before any command runs.
func initDiagnostics(cmd *cobra.Command, args []string) error {
	if err := initLogging(cmd, args); err != nil {
		return err
	}
	return initTracing(cfg.Tracing, debugFlag)
}

// initTracing installs the global tracer provider when tracing is enabled
// in config or debug output was requested.
func initTracing(tc config.TracingConfig, debug bool) error {
	if !tc.Enabled && !debug {
		return nil
	}
	if err := config.ValidateTracing(tc); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	filePath := expandHome(tc.FilePath)
	if filePath == "" && tc.Exporter == "file" {
		filePath = config.DefaultTracesFilePath()
	}
	provider, err := tracing.NewProvider(tracing.Config{
		Enabled:      true,
		Exporter:     tc.Exporter,
		FilePath:     filePath,
		OTLPEndpoint: tc.OTLPEndpoint,
		SampleRate:   tc.SampleRate,
		ServiceName:  tracing.DefaultServiceName,
	})
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	tracingProvider = provider
	log.Debug(log.CatConfig, "tracing enabled", "exporter", tc.Exporter, "file", filePath)
	return nil
}

func shutdownTracing() {
	if tracingProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tracingProvider.Shutdown(ctx); err != nil {
		log.ErrorErr(log.CatConfig, "flushing traces failed", err)
	}
	tracingProvider = nil
}

// withRepository opens the configured store for the length of fn under a
// span named after the command.
func withRepository(ctx context.Context, command string, fn func(context.Context, annotations.Repository) error) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, tracing.SpanPrefixCommand+command,
		trace.WithAttributes(
			attribute.String(tracing.AttrCommand, command),
			attribute.String(tracing.AttrStoreDriver, cfg.Store.Driver),
		))
	defer func() { tracing.Finish(span, err) }()

	repo, err := openRepository(cfg.Store)
	if err != nil {
		return err
	}
	err = fn(ctx, repo)
	if closeErr := repo.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}
