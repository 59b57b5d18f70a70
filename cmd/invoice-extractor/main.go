package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/docuflow/invoice-extractor/internal/acquire"
	"github.com/docuflow/invoice-extractor/internal/batch"
	"github.com/docuflow/invoice-extractor/internal/config"
	"github.com/docuflow/invoice-extractor/internal/extract"
	"github.com/docuflow/invoice-extractor/internal/mcp"
	"github.com/docuflow/invoice-extractor/internal/normalize"
	"github.com/docuflow/invoice-extractor/internal/patterns"
	"github.com/docuflow/invoice-extractor/internal/resolve"
	"github.com/docuflow/invoice-extractor/internal/transcribe"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures slog based on the run mode. In MCP mode stdout
// carries the protocol, so logs go to stderr and quiet down unless debug
// is enabled.
func setupLogging(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if cfg.IsMCPMode() && !cfg.IsDebug() {
		level = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// buildEngine wires the extraction pipeline from configuration
func buildEngine(cfg *config.Config, logger *slog.Logger) (*extract.Engine, error) {
	bank := patterns.DefaultBank()
	if cfg.PatternFile != "" {
		loaded, err := patterns.LoadBankFile(cfg.PatternFile)
		if err != nil {
			return nil, err
		}
		bank = loaded
		logger.Info("custom pattern bank loaded", "path", cfg.PatternFile, "patterns", bank.Size())
	}

	acquirer := acquire.NewAcquirer(acquire.Config{
		YieldThreshold: cfg.YieldThreshold,
		MaxFileSize:    cfg.MaxFileSize,
		OCRDPI:         cfg.OCRDPI,
		PdftoppmBin:    cfg.PdftoppmBin,
		TesseractBin:   cfg.TesseractBin,
		TesseractLang:  cfg.TesseractLang,
	}, logger)

	resolver := resolve.NewResolver(bank, cfg.ResolverWindow, logger)
	normalizer := normalize.NewNormalizer(cfg.MonthFirst)

	return extract.NewEngine(acquirer, resolver, normalizer, logger), nil
}

// newTranscriber selects the configured transcription workflow
func newTranscriber(cfg *config.Config, logger *slog.Logger) (transcribe.Transcriber, error) {
	switch cfg.Transcribe {
	case config.TranscribeExcel:
		return transcribe.NewExcelTranscriber(cfg.ExcelPath, logger)
	case config.TranscribeSheet:
		return transcribe.NewSheetTranscriber(transcribe.SheetConfig{
			URL:      cfg.SheetURL,
			Headless: cfg.SheetHeadless,
		}, logger)
	}
	return nil, nil
}

// runBatchMode extracts the directory, writes the artifact, and feeds the
// records to the configured transcription workflow.
func runBatchMode(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	engine, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	runner := batch.NewRunner(engine, cfg.Workers, logger)

	result, err := runner.Run(ctx, cfg.InputDir)
	if err != nil {
		return err
	}

	if err := batch.WriteArtifact(cfg.Output, result); err != nil {
		return err
	}

	fmt.Printf("Processed %d documents: %d complete, %d partial, %d failed\n",
		result.Summary.Total, result.Summary.Complete, result.Summary.Partial, result.Summary.Failed)
	fmt.Printf("Records written to %s\n", cfg.Output)

	t, err := newTranscriber(cfg, logger)
	if err != nil {
		return err
	}
	if t == nil {
		return nil
	}
	defer func() {
		if err := t.Close(); err != nil {
			logger.Error("transcriber close failed", "error", err)
		}
	}()

	outcomes, err := transcribe.Run(ctx, t, result, logger)
	if err != nil {
		return err
	}
	ok := 0
	for _, o := range outcomes {
		if o.OK {
			ok++
		}
	}
	fmt.Printf("Transcribed %d/%d records via %s\n", ok, len(outcomes), cfg.Transcribe)
	return nil
}

// runMCPMode serves extraction tools over stdio
func runMCPMode(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	engine, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	runner := batch.NewRunner(engine, cfg.Workers, logger)

	server, err := mcp.NewServer(cfg, engine, runner, logger)
	if err != nil {
		return err
	}
	return server.Run(ctx)
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() {
		logger.Debug("starting", "config", cfg.String())
	}

	// Cancel the run on SIGINT/SIGTERM; completed documents keep their
	// records, in-flight ones are abandoned.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.IsMCPMode() {
		err = runMCPMode(ctx, cfg, logger)
	} else {
		err = runBatchMode(ctx, cfg, logger)
	}
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("Invoice Extractor\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
