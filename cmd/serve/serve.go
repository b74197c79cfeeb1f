package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/GyrosOfWar/serve"
	"github.com/GyrosOfWar/serve/config"
	"github.com/GyrosOfWar/serve/filesystem"
	servehttp "github.com/GyrosOfWar/serve/http"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	server, root, err := newServer(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = root.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", server.Addr, "root", cfg.Storage.Path, "auth", cfg.Auth.Credentials != "")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "err", err)
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newServer opens the root directory and wires the service and handler into an
// http.Server. The returned closer releases the root.
func newServer(cfg *config.Config) (*http.Server, io.Closer, error) {
	rootPath, err := filepath.Abs(cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve root directory: %w", err)
	}

	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, nil, fmt.Errorf("stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("root %s is not a directory", rootPath)
	}

	root, err := os.OpenRoot(rootPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open root directory: %w", err)
	}

	service, err := serve.NewService(rootPath, filesystem.NewStore(root))
	if err != nil {
		_ = root.Close()
		return nil, nil, fmt.Errorf("create service: %w", err)
	}

	creds, err := cfg.Auth.Parse()
	if err != nil {
		_ = root.Close()
		return nil, nil, fmt.Errorf("parse auth: %w", err)
	}

	handler := servehttp.NewHandler(&servehttp.HandlerConfig{
		Realm:       cfg.Server.Realm,
		Credentials: creds,
		CORS:        cfg.CORS,
	}, service)

	// WriteTimeout stays unset: downloads are unbounded.
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return server, root, nil
}
