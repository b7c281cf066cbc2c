package main

import (
	"context"
	"log"
	"net/http"

	"github.com/Freeeeeet/course_select/internal/app"
	"github.com/Freeeeeet/course_select/internal/checkout"
	"github.com/Freeeeeet/course_select/internal/config"
	"github.com/Freeeeeet/course_select/internal/controller"
	"github.com/Freeeeeet/course_select/internal/remote"
	"github.com/Freeeeeet/course_select/internal/storage"
	"github.com/Freeeeeet/course_select/internal/store"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Sugar().Infow("Starting course select",
		"environment", cfg.Environment,
		"listen_addr", cfg.ListenAddr)

	local, err := storage.NewLocal(cfg.StateDir)
	if err != nil {
		logger.Fatal("Failed to init local storage", zap.Error(err))
	}

	client := remote.NewClient(cfg.RemoteURL, cfg.RemoteAnonKey, logger)
	appState := store.NewApp(client, local, logger)

	ctx := context.Background()

	// The catalog loads regardless of login state; a failure leaves it empty
	// until an explicit refresh
	if err := appState.Catalog.Load(ctx); err != nil {
		logger.Warn("Catalog unavailable at startup", zap.Error(err))
	}

	// Restore a persisted session without re-validating the token
	if sess, err := appState.Session.Restore(); err != nil {
		logger.Warn("Failed to restore session", zap.Error(err))
	} else if sess != nil {
		appState.LoadStudentData(ctx)
	}

	ctrl := controller.NewController(appState, checkout.NewManager(), logger)

	logger.Info("Listening", zap.String("addr", cfg.ListenAddr))
	if err := http.ListenAndServe(cfg.ListenAddr, ctrl.Router()); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}
