// Package httpapi exposes the JSON HTTP surface of the server: account and
// session endpoints, item storage, and the auxiliary AI and export helpers.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dkravetz/sixtyfix/internal/logging"
	"github.com/dkravetz/sixtyfix/internal/server/aifix"
	"github.com/dkravetz/sixtyfix/internal/server/config"
	"github.com/dkravetz/sixtyfix/internal/server/services"
)

type Server struct {
	address   string
	logger    logging.Logger
	users     *services.UserService
	items     *services.ItemService
	generator *aifix.Generator
	jwtSecret []byte
}

func NewServer(cfg *config.Config, l logging.Logger, us *services.UserService,
	is *services.ItemService, g *aifix.Generator) *Server {
	return &Server{
		address:   cfg.EndpointAddr,
		logger:    l.With("module", "http_server"),
		users:     us,
		items:     is,
		generator: g,
		jwtSecret: []byte(cfg.SecretKey),
	}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)
		r.Get("/verify-email/{token}", s.handleVerifyEmail)
		r.Post("/resend-verification", s.handleResendVerification)
		r.Post("/forgot-password", s.handleForgotPassword)
		r.Post("/reset-password/{token}", s.handleResetPassword)
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthJWT(s.jwtSecret))

		r.Get("/me", s.handleMe)
		r.Delete("/account", s.handleDeleteAccount)

		r.Route("/items", func(r chi.Router) {
			r.Get("/", s.handleListItems)
			r.Post("/save", s.handleSaveItem)
			r.Get("/{id}", s.handleViewItem)
			r.Delete("/{id}", s.handleDeleteItem)
			r.Get("/{id}/pdf", s.handleItemPDF)
		})

		r.Get("/project/export.zip", s.handleExportZip)
		r.Post("/ai/bullets", s.handleAIBullets)
		r.Post("/fallback/clear", s.handleFallbackClear)
	})

	return r
}

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
