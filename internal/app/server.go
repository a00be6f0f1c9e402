package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"textgenai/internal/api/handlers"
	appMiddleware "textgenai/internal/api/middlewares"
	"textgenai/internal/config"
	"textgenai/internal/core"
	"textgenai/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, logger *slog.Logger, db core.DbClient, users *services.UserService, otp *services.OTPService, mailer core.Mailer, llm core.TextGenerator, runner core.ModelRunner) *Server {
	secret := []byte(cfg.JWTSecret)

	authHandler := handlers.NewAuthHandler(users, secret, logger)
	resetHandler := handlers.NewResetHandler(db, users, otp, mailer, logger)
	chatHandler := handlers.NewChatHandler(llm, runner, logger)
	contactHandler := handlers.NewContactHandler(mailer, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Serve the chat UI and the other static pages.
	fileServer := http.FileServer(http.Dir("./web"))
	r.Handle("/*", fileServer)

	// API routes
	r.Route("/api", func(api chi.Router) {
		// 60s is fine for normal handlers but kills streams; the chat
		// endpoints manage their own deadlines.
		api.Group(func(timed chi.Router) {
			timed.Use(middleware.Timeout(60 * time.Second))

			// public endpoints
			timed.Post("/signup", authHandler.Signup)
			timed.Post("/login", authHandler.Login)
			timed.Post("/logout", authHandler.Logout)
			timed.Post("/contact", contactHandler.Send)
			timed.Post("/reset/request", resetHandler.Request)
			timed.Post("/reset/verify", resetHandler.Verify)
			timed.Post("/reset/complete", resetHandler.Complete)
		})

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.SessionMiddleware(secret))
			protected.Get("/me", authHandler.Me)
			protected.Post("/chat/query", chatHandler.Query)
			protected.Post("/chat/stream", chatHandler.Stream)
			protected.Get("/chat/local", chatHandler.Local)
			protected.Post("/chat/local", chatHandler.Local)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, logger: logger}
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
