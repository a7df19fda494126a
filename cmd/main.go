// Command mealtracker starts the meal ledger API server.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mealtracker/config"
	"mealtracker/routes"
	"mealtracker/services"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	if err := config.InitDB(); err != nil {
		logger.Fatal("init database", zap.Error(err))
	}

	sessions := services.NewSessionBroker()
	store := services.NewGormEntryStore(config.DB)
	ledger := services.NewLedgerService(store)
	auth := services.NewAuthService(config.DB, sessions)
	hub := services.NewLedgerHub()

	r := routes.SetupRouter(routes.Deps{
		Auth:     auth,
		Ledger:   ledger,
		Sessions: sessions,
		Store:    store,
		Hub:      hub,
		Log:      logger,
	})

	addr := ":" + config.Port()
	srv := &http.Server{Addr: addr, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		hub.CloseAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		logger.Fatal("server error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}
