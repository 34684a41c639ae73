package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazyhaar/okato-places/pkg/api"
	"github.com/hazyhaar/okato-places/pkg/config"
	"github.com/hazyhaar/okato-places/pkg/store"
	"github.com/mark3labs/mcp-go/server"
)

const version = "0.1.0"

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	addr := fs.String("addr", "", "listen address (overrides config)")
	fs.Parse(args)

	logger := newLogger()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(exitFailure)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Options{
		URL:          cfg.DatabaseURL,
		Login:        cfg.DatabaseLogin,
		Password:     cfg.DatabasePassword,
		MaxOpenConns: cfg.MaxOpenConns,
	})
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(exitPersistence)
	}
	defer st.Close()

	if n, err := st.Count(ctx); err == nil {
		logger.Info("places loaded", "count", n, "backend", st.Dialect().Name)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newServeMux(st, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("okato listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

// newServeMux mounts the REST routes and the MCP endpoint on /mcp.
func newServeMux(r api.PlaceReader, logger *slog.Logger) http.Handler {
	mcpSrv := server.NewMCPServer("okato", version, server.WithToolCapabilities(false))
	api.RegisterMCPTools(mcpSrv, r, logger)

	mux := http.NewServeMux()
	mux.Handle("/mcp", server.NewStreamableHTTPServer(mcpSrv))
	mux.Handle("/", api.NewRouter(r, logger))
	return mux
}
