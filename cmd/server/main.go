package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mesa-rpg/battlemap-backend/internal/config"
	"github.com/mesa-rpg/battlemap-backend/internal/httpapi"
	"github.com/mesa-rpg/battlemap-backend/internal/hub"
	"github.com/mesa-rpg/battlemap-backend/internal/persist"
	"github.com/mesa-rpg/battlemap-backend/internal/upload"
)

func main() {
	ctx := context.Background()

	godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	var snaps persist.Snapshotter
	if cfg.DatabaseURL != "" {
		snaps, err = persist.NewPostgresStore(cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("open postgres snapshots", zap.Error(err))
		}
	} else {
		snaps, err = persist.NewFileStore(cfg.DataDir, logger)
		if err != nil {
			logger.Fatal("open file snapshots", zap.Error(err))
		}
	}

	relay, err := upload.NewRelay(cfg.UploadDir, cfg.PublicBaseURL, logger)
	if err != nil {
		logger.Fatal("init upload relay", zap.Error(err))
	}

	// Build the router *with* the hub injected
	h := hub.NewHub(ctx, snaps, logger)
	handler := httpapi.SetupRoutes(h, relay, logger)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: handler,
	}

	// graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")
		h.Inbox() <- hub.ShutdownHub{}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("port", cfg.ServerPort))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
