package main

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
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	authh "github.com/jwalitptl/walkin-api/internal/handler/auth"
	healthh "github.com/jwalitptl/walkin-api/internal/handler/health"
	patienth "github.com/jwalitptl/walkin-api/internal/handler/patient"
	reporth "github.com/jwalitptl/walkin-api/internal/handler/report"
	"github.com/jwalitptl/walkin-api/internal/middleware"
	"github.com/jwalitptl/walkin-api/internal/router"
	authsvc "github.com/jwalitptl/walkin-api/internal/service/auth"
	patientsvc "github.com/jwalitptl/walkin-api/internal/service/patient"
	reportsvc "github.com/jwalitptl/walkin-api/internal/service/report"
	"github.com/jwalitptl/walkin-api/pkg/auth"
	"github.com/jwalitptl/walkin-api/pkg/security"
)

const shutdownTimeout = 30 * time.Second

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(*configPath)
		},
	}
}

func runServer(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg

	if len(cfg.Staff) == 0 {
		a.log.Warn("no staff accounts configured; nobody can log in")
	}

	authService := authsvc.NewService(
		cfg.Staff,
		security.NewBcryptHasher(0),
		auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry(), cfg.JWT.Issuer),
		a.log.With("auth").Zerolog(),
	)
	patientService := patientsvc.NewService(a.store, a.backup,
		patientsvc.WithMetrics(a.metrics),
		patientsvc.WithLogger(a.log.With("patients").Zerolog()),
	)
	reportService := reportsvc.NewService(a.store, a.metrics, a.log.With("reports").Zerolog())

	r, err := router.NewRouter(
		middleware.NewAuthMiddleware(authService, cfg.Server.LoginURL),
		router.Handlers{
			Auth:    authh.NewHandler(authService, cfg.Server.Mode == gin.ReleaseMode),
			Patient: patienth.NewHandler(patientService),
			Report:  reporth.NewHandler(reportService),
			Health:  healthh.NewHandler(a.store, a.metrics.Registry),
		},
		a.metrics,
		*a.log.With("http").Zerolog(),
		router.RouterConfig{
			Mode:             cfg.Server.Mode,
			RequestTimeout:   cfg.Server.WriteTimeout,
			MaxBodySize:      middleware.DefaultMaxBodySize,
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit: middleware.RateLimiterConfig{
				Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
				Burst: cfg.RateLimit.Burst,
			},
			CORSConfig: middleware.DefaultCORSConfig(cfg.CORS.AllowedOrigins),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting server", "addr", srv.Addr, "store", cfg.Database.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	a.log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.log.Info("server exited")
	return nil
}
