// Package server is the composition root: it builds storage, sessions,
// notifications, services and handlers from a config.Config and wires
// them onto one chi router.
//
// DEPENDENCY FLOW:
//
//	config.Config
//	  → repository.Storage   (sqlstore.DB when DATABASE_URL is set, else memory.Store)
//	  → session.Store        (SQL backend on the same DB, else in memory)
//	  → notify.Notifier      (SES when EMAIL_FROM is set, else the log)
//	  → service.*            (business rules; never see HTTP)
//	  → handler.*            (HTTP; never see storage)
//
// Nothing outside this package imports a concrete backend.
package server

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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/jobboard/internal/auth"
	"github.com/sakif/jobboard/internal/config"
	"github.com/sakif/jobboard/internal/handler"
	"github.com/sakif/jobboard/internal/middleware"
	"github.com/sakif/jobboard/internal/notify"
	"github.com/sakif/jobboard/internal/repository"
	"github.com/sakif/jobboard/internal/repository/memory"
	"github.com/sakif/jobboard/internal/repository/sqlstore"
	"github.com/sakif/jobboard/internal/service"
	"github.com/sakif/jobboard/internal/session"
)

// sessionCleanupInterval is how often expired sessions are pruned.
const sessionCleanupInterval = 15 * time.Minute

// Server owns the router and every long-lived resource behind it.
type Server struct {
	router   *chi.Mux
	config   config.Config
	logger   *slog.Logger
	storage  repository.Storage
	sessions *session.Store
	metrics  *middleware.Metrics
}

// New builds the whole dependency graph. On error, anything already opened
// is closed again.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	storage, sessionBackend, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	sessions, err := session.NewStore(sessionBackend, session.Config{
		Secret: []byte(cfg.SessionSecret),
		Secure: cfg.Production,
	})
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("creating session store: %w", err)
	}

	notifier, err := newNotifier(ctx, cfg, logger)
	if err != nil {
		storage.Close()
		return nil, err
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		storage:  storage,
		sessions: sessions,
		metrics:  middleware.NewMetrics(),
	}

	if err := s.setupRoutes(notifier); err != nil {
		storage.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// openStorage picks the backend. Sessions live next to the data so a
// restart keeps users logged in whenever the data survives too.
func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (repository.Storage, session.Backend, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory storage; all data is lost on restart")
		return memory.New(), session.NewMemoryBackend(), nil
	}

	dialect, err := sqlstore.ParseDialect(cfg.DatabaseDriver)
	if err != nil {
		return nil, nil, err
	}
	db, err := sqlstore.Open(ctx, dialect, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	backend, err := session.NewSQLBackend(ctx, db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("creating session table: %w", err)
	}
	logger.Info("database ready", slog.String("driver", string(dialect)))
	return db, backend, nil
}

func newNotifier(ctx context.Context, cfg config.Config, logger *slog.Logger) (notify.Notifier, error) {
	if cfg.EmailFrom == "" {
		logger.Info("EMAIL_FROM not set, emails will be logged instead of sent")
		return notify.NewLogNotifier(logger, cfg.AdminEmail), nil
	}
	n, err := notify.NewSESNotifier(ctx, notify.SESConfig{
		Region: cfg.AWSRegion,
		From:   cfg.EmailFrom,
		Admin:  cfg.AdminEmail,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating SES notifier: %w", err)
	}
	return n, nil
}

// setupRoutes wires services and handlers onto the router.
//
// Middleware runs in the order it is added: request ID, real IP, metrics,
// logging, then panic recovery closest to the handler.
func (s *Server) setupRoutes(notifier notify.Notifier) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(s.metrics.Middleware)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	links, err := auth.NewLinkSigner([]byte(s.config.SessionSecret), auth.DefaultLinkTTL)
	if err != nil {
		return err
	}

	sanitizer := service.NewSanitizer()
	activityService := service.NewActivityService(s.storage, s.logger)
	authService := service.NewAuthService(s.storage, auth.NewPasswordService(), activityService, s.logger)
	jobService := service.NewJobService(s.storage, activityService, sanitizer, s.logger)
	applicationService := service.NewApplicationService(s.storage, jobService, activityService, notifier, sanitizer, s.logger)

	v := handler.NewValidator()
	authHandler := handler.NewAuthHandler(authService, s.sessions, v, s.logger)
	jobHandler := handler.NewJobHandler(jobService, v, s.logger)
	applicationHandler := handler.NewApplicationHandler(applicationService, links, v, s.logger)
	activityHandler := handler.NewActivityHandler(activityService, s.logger)
	uploadHandler, err := handler.NewUploadHandler(s.config.UploadDir, links, s.logger)
	if err != nil {
		return err
	}

	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	s.router.Handle("/metrics", s.metrics.Handler())
	s.router.Get("/uploads/resumes/{name}", uploadHandler.HandleServeResume)

	s.router.Route("/api", func(r chi.Router) {
		// Public
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)
		r.Get("/jobs", jobHandler.HandleList)
		r.Get("/jobs/{id}", jobHandler.HandleGet)
		r.Post("/applications", applicationHandler.HandleSubmit)
		r.Post("/uploads/resume", uploadHandler.HandleUploadResume)

		// Logged-in franchisees
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(s.sessions))

			r.Get("/auth/me", authHandler.HandleMe)

			r.Get("/my/jobs", jobHandler.HandleListMine)
			r.Post("/my/jobs", jobHandler.HandleCreate)
			r.Patch("/my/jobs/{id}", jobHandler.HandleUpdate)
			r.Delete("/my/jobs/{id}", jobHandler.HandleDelete)
			r.Get("/my/jobs/{id}/applications", applicationHandler.HandleListForJob)

			r.Get("/my/applications", applicationHandler.HandleListMine)
			r.Get("/my/applications/{id}", applicationHandler.HandleGet)
			r.Patch("/my/applications/{id}/status", applicationHandler.HandleUpdateStatus)
			r.Get("/my/applications/{id}/resume", applicationHandler.HandleResume)

			r.Get("/my/activities", activityHandler.HandleList)
		})
	})

	return nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases storage. Start calls it on the way out.
func (s *Server) Close() error {
	return s.storage.Close()
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for
// up to 30 seconds and closes storage.
func (s *Server) Start() error {
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.sessions.RunCleanup(ctx, sessionCleanupInterval, s.logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.Bool("production", s.config.Production),
			slog.Bool("database", s.config.DatabaseURL != ""),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancelShutdown()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
