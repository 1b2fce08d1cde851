package healthserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hookdeck/redisconnect/internal/logging"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Server runs an HTTP server until its context is cancelled.
type Server struct {
	server *http.Server
	logger *logging.Logger
}

func New(addr string, handler http.Handler, logger *logging.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Run starts the HTTP server and blocks until context is cancelled or server fails.
func (s *Server) Run(ctx context.Context) error {
	logger := s.logger.Ctx(ctx)
	logger.Info("health server listening", zap.String("addr", s.server.Addr))

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down health server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			logger.Error("error shutting down health server", zap.Error(err))
			return err
		}
		logger.Info("health server shut down")
		return nil

	case err := <-errChan:
		logger.Error("health server error", zap.Error(err))
		return err
	}
}
