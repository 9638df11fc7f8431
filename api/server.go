package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/wordindex/app"
	"github.com/meghashyamc/wordindex/config"
	"github.com/meghashyamc/wordindex/logger"
	"github.com/meghashyamc/wordindex/validation"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	router     *gin.Engine
	httpServer *http.Server
	app        *app.App
	validator  *validation.Validator
	logger     logger.Logger
	port       string
}

// Run serves the HTTP API until ctx is done or the process is interrupted.
func Run(ctx context.Context, cfg *config.Config, logger logger.Logger) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)

	defer cancel()

	s := &server{
		logger: logger,
		port:   cfg.GetPort(),
	}
	if err := s.setupDependencies(ctx, cfg); err != nil {
		return err
	}
	s.setupRouter()

	return s.serve(ctx)
}

func (s *server) setupDependencies(ctx context.Context, cfg *config.Config) error {
	var err error
	s.app, err = app.New(ctx, cfg, s.logger)
	if err != nil {
		return err
	}
	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		s.app.Close()
		return err
	}

	return nil

}

func (s *server) setupRouter() {
	router := newRouter()

	router.Use(loggingMiddleware(s.logger))

	setupRoutes(router, s.logger, s.app, s.validator)

	s.router = router
}

func (s *server) serve(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%s", s.port),
		Handler: s.router.Handler(),
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "port", s.port)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serveErr:
		if runErr != nil {
			s.logger.Error("http server stopped", "err", runErr.Error())
		}
	}

	s.logger.Info("starting to shut down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error shutting down http server", "err", err.Error())
		runErr = errors.Join(runErr, err)
	}
	if err := s.app.Close(); err != nil {
		s.logger.Error("error closing stores", "err", err.Error())
		runErr = errors.Join(runErr, err)
	}
	if runErr == nil {
		s.logger.Info("shut down http server successfully")
	}

	return runErr
}
