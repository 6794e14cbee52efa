package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rol3ert99/CookbookAPP-backend/config"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/logger"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/observability"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/server"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()
	shutdownTracing := observability.Init(ctx, log, observability.Config{
		Enabled:     cfg.OtelEnabled,
		ServiceName: "cookbook-api",
		Environment: string(cfg.Environment),
		Endpoint:    cfg.OtelEndpoint,
		Headers:     observability.ParseHeaders(cfg.OtelHeaders),
		Insecure:    cfg.OtelInsecure,
		SampleRatio: cfg.OtelSampleRatio,
	})

	srv, err := server.Build(ctx, cfg, log, server.Collaborators{})
	if err != nil {
		log.Fatal("failed to build application", "error", err)
	}

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatal("server error", "error", err)
		}
	case sig := <-quit:
		log.Info("received signal", "signal", sig.String())
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracer shutdown error", "error", err)
	}
	log.Info("server stopped")
}
