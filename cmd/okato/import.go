package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazyhaar/okato-places/pkg/config"
	"github.com/hazyhaar/okato-places/pkg/okato"
	"github.com/hazyhaar/okato-places/pkg/store"
	"github.com/schollz/progressbar/v3"
)

func cmdImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	logger := newLogger()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(exitFailure)
	}
	cfg.ApplyArgs(fs.Args())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := runImport(ctx, cfg, logger)
	if err != nil {
		logger.Error("import failed", "input", cfg.Input, "error", err,
			"processed", stats.Processed, "inserted", stats.Inserted)
		stop()
		os.Exit(exitCode(err))
	}
	logger.Info("import complete", "input", cfg.Input,
		"processed", stats.Processed, "skipped", stats.Skipped,
		"inserted", stats.Inserted, "roots", stats.Roots)
}

// runImport loads cfg.Input into the places table and journals the run.
func runImport(ctx context.Context, cfg config.Config, logger *slog.Logger) (okato.Stats, error) {
	src, err := okato.OpenSource(cfg.Input, okato.SourceOptions{Encoding: cfg.Encoding})
	if err != nil {
		return okato.Stats{}, err
	}
	defer src.Close()

	digest, err := okato.Digest(cfg.Input)
	if err != nil {
		return okato.Stats{}, err
	}

	st, err := store.Open(ctx, store.Options{
		URL:          cfg.DatabaseURL,
		Login:        cfg.DatabaseLogin,
		Password:     cfg.DatabasePassword,
		MaxOpenConns: cfg.MaxOpenConns,
	})
	if err != nil {
		return okato.Stats{}, withCode(exitPersistence, fmt.Errorf("open database: %w", err))
	}
	defer st.Close()

	run, err := st.BeginRun(ctx, cfg.Input, digest)
	if err != nil {
		return okato.Stats{}, withCode(exitPersistence, err)
	}
	logger.Info("import started", "run", run.ID, "input", cfg.Input,
		"digest", digest, "backend", st.Dialect().Name)

	syncer := okato.NewSynchronizer(st, logger)
	bar := newProgress(cfg.Progress)
	syncer.OnProgress(cfg.ProgressEvery, func(n int64) {
		logger.Info("parsed rows", "count", n)
		if bar != nil {
			bar.Set64(n)
		}
	})

	stats, runErr := syncer.Run(ctx, src)
	if bar != nil {
		bar.Set64(stats.Processed)
		bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	// The journal row is closed even when ctx was cancelled.
	finishCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := st.FinishRun(finishCtx, run, stats, runErr); err != nil {
		logger.Error("finish run", "run", run.ID, "error", err)
		if runErr == nil {
			return stats, withCode(exitPersistence, err)
		}
	}
	if errors.Is(runErr, context.Canceled) {
		return stats, fmt.Errorf("interrupted: %w", runErr)
	}
	return stats, runErr
}

// newProgress returns a spinner for mode "bar", nil otherwise.
func newProgress(mode string) *progressbar.ProgressBar {
	if mode != "bar" {
		return nil
	}
	return progressbar.NewOptions64(
		-1,
		progressbar.OptionSetDescription("importing okato"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
	)
}
