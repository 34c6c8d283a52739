package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"discharge-assistant-be/internal/bootstrap"
	"discharge-assistant-be/internal/config"
	"discharge-assistant-be/internal/server"
	"discharge-assistant-be/internal/tracer"
	"discharge-assistant-be/pkg/rag"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	sysLogger := container.Logger

	shutdownTracer := tracer.InitTracer(cfg, sysLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, container)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return container.IngestionService.Consume(gctx)
	})
	g.Go(func() error {
		return container.WebSocketHub.Run(gctx)
	})
	if container.InteractionLog != nil {
		g.Go(func() error {
			if err := container.InteractionLog.Start(gctx); err != nil {
				sysLogger.Warn("BOOT", "Interaction log subscription failed", map[string]interface{}{"error": err.Error()})
			}
			return nil
		})
	}
	g.Go(func() error {
		state, err := container.Retriever.EnsureCollection(gctx)
		if err != nil {
			sysLogger.Warn("BOOT", "Vector index not ready", map[string]interface{}{"error": err.Error()})
			return nil
		}
		if state == rag.IndexEmpty {
			if err := container.IngestionService.RequestIngestion(gctx, "", "startup"); err != nil {
				sysLogger.Error("BOOT", "Failed to queue startup ingestion", map[string]interface{}{"error": err.Error()})
			}
		}
		return nil
	})
	g.Go(srv.Run)
	g.Go(func() error {
		<-gctx.Done()
		sysLogger.Info("SERVER", "Shutting down", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		sysLogger.Error("SERVER", "Server stopped with error", map[string]interface{}{"error": err.Error()})
	}

	tracerCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdownTracer(tracerCtx); err != nil {
		sysLogger.Warn("SERVER", "Tracer shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if err := container.Close(); err != nil {
		// The logger is among the closed resources.
		log.Printf("close resources: %v", err)
	}
}
