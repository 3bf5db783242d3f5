package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/yigit/collegeapi/internal/app/services"
	"github.com/yigit/collegeapi/internal/bootstrap"
	"github.com/yigit/collegeapi/internal/config"
)

// tokenCleanupInterval is how often expired and revoked refresh tokens are purged
const tokenCleanupInterval = time.Hour

// Server holds the state for the HTTP server.
type Server struct {
	config *config.Config
	router *gin.Engine
	dbPool *pgxpool.Pool
	auth   *services.AuthService
	logger zerolog.Logger
	http   *http.Server
	stop   context.CancelFunc
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer() (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	dbPool, err := bootstrap.SetupDatabase(cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, dbPool, lgr)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	bootstrap.SeedDefaultData(seedCtx, cfg, deps)
	cancel()

	router := bootstrap.SetupRouter(cfg, deps, lgr)
	setupStaticFileServing(router, cfg, deps.FileStorage.Root(), lgr)

	return &Server{
		config: cfg,
		router: router,
		dbPool: dbPool,
		auth:   deps.AuthService,
		logger: lgr,
	}, nil
}

// setupStaticFileServing serves stored media under the configured URL prefix
func setupStaticFileServing(router *gin.Engine, cfg *config.Config, root string, lgr zerolog.Logger) {
	router.Static(cfg.Media.URLPrefix, root)
	lgr.Info().Str("path", root).Str("prefix", cfg.Media.URLPrefix).Msg("Static file serving configured for media directory")
}

// runTokenCleanup periodically removes expired refresh tokens until ctx ends
func (s *Server) runTokenCleanup(ctx context.Context) {
	ticker := time.NewTicker(tokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.auth.CleanupExpiredTokens(ctx)
			if err != nil {
				s.logger.Error().Err(err).Msg("Refresh token cleanup failed")
				continue
			}
			s.logger.Debug().Int64("removed", removed).Msg("Refresh token cleanup finished")
		}
	}
}

// Run starts the HTTP server and handles graceful shutdown.
func (s *Server) Run() error {
	s.logger.Info().Str("port", s.config.Server.Port).Msg("Starting server...")

	s.http = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	var bgCtx context.Context
	bgCtx, s.stop = context.WithCancel(context.Background())
	go s.runTokenCleanup(bgCtx)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			s.stop()
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the server and closes resources.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if s.stop != nil {
		s.stop()
	}

	shutdownError := false

	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownError = true
		} else {
			s.logger.Info().Msg("HTTP server gracefully stopped.")
		}
	}

	if s.dbPool != nil {
		s.logger.Info().Msg("Closing database connection pool...")
		s.dbPool.Close()
		s.logger.Info().Msg("Database connection pool closed.")
	}

	s.logger.Info().Msg("Server shutdown process complete.")
	if shutdownError {
		return errors.New("server shutdown completed with errors")
	}
	return nil
}
