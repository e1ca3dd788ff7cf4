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

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"

	"github.com/Linattendu/projet-moteur-recherche/api"
	"github.com/Linattendu/projet-moteur-recherche/services"
)

const shutdownTimeout = 10 * time.Second

func serveCommand(c *cli.Context) error {
	cfg, err := commandConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("port") {
		cfg.Server.Port = c.String("port")
	}
	maxBody := c.Int64("max-body-mb")
	if maxBody <= 0 {
		return fmt.Errorf("max-body-mb must be greater than 0")
	}

	eng, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	logger := slog.Default()
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           newRouter(eng, logger, maxBody<<20),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.Server.Port, "store", cfg.Storage.Driver, "data_dir", cfg.Storage.Path,
			"corpora", len(eng.ListCorpora()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// newRouter wires the middleware chain and the API routes.
func newRouter(eng services.AsyncCorpusManager, logger *slog.Logger, maxBodyBytes int64) *gin.Engine {
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		api.RequestIDMiddleware(),
		api.LoggingMiddleware(logger),
		api.CORSMiddleware(),
		api.RequestSizeLimitMiddleware(maxBodyBytes),
	)
	api.SetupRoutes(router, eng)
	return router
}
