package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dwikikusuma/storefront/internal/records/memserver"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/dwikikusuma/storefront/pkg/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{Service: "recordsvc", Env: cfg.AppEnv, Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	records := memserver.New()
	if cfg.RecordSeedFile != "" {
		seed, err := memserver.LoadSeedFile(cfg.RecordSeedFile)
		if err != nil {
			log.Error("seed load failed", slog.Any("err", err), slog.String("path", cfg.RecordSeedFile))
			os.Exit(1)
		}
		records.Load(seed)
		log.Info("seeded",
			slog.Int("products", len(seed.Products)),
			slog.Int("users", len(seed.Users)),
			slog.Int("cart_items", len(seed.CartItems)),
		)
	}

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           records.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("record service starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}
	log.Info("bye")
}
