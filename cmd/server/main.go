// Package main is the entry point for the NBHub server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CageChen/nbhub/internal/config"
	mfs "github.com/CageChen/nbhub/internal/fs"
	"github.com/CageChen/nbhub/internal/handler"
	"github.com/CageChen/nbhub/internal/notebook"
	"github.com/CageChen/nbhub/internal/render"
	"github.com/CageChen/nbhub/internal/watcher"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// newFileSystem picks the backend for the configured notebook root.
func newFileSystem(cfg *config.Config) mfs.FileSystem {
	if cfg.GitRef != "" {
		return mfs.NewGitFS(cfg.NotebooksDir, cfg.GitRef)
	}
	return mfs.NewLocalFS(cfg.NotebooksDir)
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg.LogLevel)

	store := notebook.NewStore(newFileSystem(cfg))
	logger.Info("NBHub - Notebook Viewer API",
		"config_file", cfg.GetConfigFilePath(),
		"notebooks_dir", store.Root(),
		"directory_exists", store.Exists(),
		"git_ref", cfg.GitRef,
	)
	if !store.Exists() {
		logger.Warn("notebook directory is not reachable; listing will fail until it exists")
	}

	wsHandler := handler.NewWSHandler(cfg, logger)

	// Setup notebook watcher if enabled; git refs never change underneath us
	if cfg.Watch && cfg.GitRef == "" {
		w, err := watcher.New(cfg.NotebooksDir, logger)
		if err != nil {
			logger.Warn("failed to create notebook watcher", "error", err)
		} else {
			w.OnChange(wsHandler.OnNotebookChange)
			if err := w.Start(); err != nil {
				logger.Warn("failed to start notebook watcher", "error", err)
			} else {
				logger.Info("notebook watcher enabled")
			}
			defer func() { _ = w.Stop() }()
		}
	}

	gin.SetMode(gin.ReleaseMode)
	r := handler.NewRouter(handler.RouterOptions{
		Config:   cfg,
		Store:    store,
		Renderer: render.NewRenderer(cfg.CodeStyle),
		WS:       wsHandler,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("server starting", "addr", fmt.Sprintf("http://localhost:%d", cfg.Port))

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
