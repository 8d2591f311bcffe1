package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"teacherdash/internal/config"
	"teacherdash/internal/logger"
	"teacherdash/internal/web"
)

func main() {
	cfg := config.Load()
	log := logger.New("dashboard", cfg)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, log); err != nil {
		log.Fatal("http server failed", err)
	}
}

func runHTTP(cfg config.App, log logger.Logger) error {
	ctx := context.Background()
	dash, err := web.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := dash.Close(); err != nil {
			log.Warn("closing session backend", err)
		}
	}()

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      dash.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("starting dashboard", map[string]interface{}{"addr": srv.Addr, "api": cfg.APIBaseURL, "sessions": cfg.SessionBackend})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case <-quit:
	}
	log.Info("shutting down dashboard")

	// outstanding requests get 10 seconds
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("forced shutdown", err)
	}
	return nil
}
