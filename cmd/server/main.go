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

	"github.com/joho/godotenv"

	h "stillcast/internal/api/http"
	cfgpkg "stillcast/internal/config"
	"stillcast/internal/encoder"
	"stillcast/internal/registry"
	"stillcast/internal/service"
	"stillcast/internal/storage"
)

func main() {

	_ = godotenv.Load()

	cfg, err := cfgpkg.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	cfgpkg.SetupLogger(cfg)
	slog.Info("configuration loaded successfully")

	store := storage.NewFileStore(cfg.TempDir)
	enc := encoder.New(cfg, slog.Default())
	reg := registry.New(cfg.DownloadTTL, slog.Default())
	convertService := service.NewConvertService(cfg, store, enc, reg, slog.Default())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go reg.Run(ctx, cfg.SweepInterval)

	router := h.NewRouter(cfg, convertService, store, slog.Default())
	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:     router,
		ReadTimeout: cfg.EncodeTimeout + cfg.HTTPTimeout,
		// A conversion response is written only after the encoding job
		// terminates, so the write timeout must outlast the watchdog.
		WriteTimeout: cfg.EncodeTimeout + cfg.HTTPTimeout,
		IdleTimeout:  cfg.HTTPTimeout,
	}

	go func() {
		slog.Info("server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	} else {
		slog.Info("server stopped gracefully")
	}
}
