// Command devapi serves an in-memory copy of the teacher API seeded with one
// teacher, two groups and their students.
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
	"teacherdash/internal/devapi"
	"teacherdash/internal/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New("devapi", cfg)
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	api := devapi.New(devapi.Seed(), cfg.DevAPISigningKey)
	srv := &http.Server{
		Addr:         ":" + cfg.DevAPIPort,
		Handler:      api.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting devapi", map[string]interface{}{"addr": srv.Addr, "phone": devapi.SeedPhone, "password": devapi.SeedPassword})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("devapi server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("forced shutdown", err)
	}
}
