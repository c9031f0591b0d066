package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rentalhub/apiserver/config"
	"github.com/rentalhub/apiserver/internal/auth"
	"github.com/rentalhub/apiserver/internal/db"
	"github.com/rentalhub/apiserver/internal/events"
	"github.com/rentalhub/apiserver/internal/handlers"
	"github.com/rentalhub/apiserver/internal/services"
	"github.com/rentalhub/apiserver/internal/storage"
	"github.com/rentalhub/apiserver/internal/store"
)

// Server wraps the HTTP server and its owned resources.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	bus        events.Bus
}

// New constructs a fully wired Server.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	codec, err := auth.NewTokenCodec(cfg.JWT.Secret, cfg.JWT.TTL)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pictures, err := storage.FromConfig(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	bus, err := events.FromConfig(ctx, cfg.Broker)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	rentalRepo := store.NewRentalRepository(dbConn)
	messageRepo := store.NewMessageRepository(dbConn)

	userService := services.NewUserService(userRepo)
	rentalService := services.NewRentalService(rentalRepo, pictures, cfg.Storage.PublicBaseURL)

	var publisher services.EventPublisher
	if bus != nil {
		publisher = bus
	}
	messageService := services.NewMessageService(messageRepo, rentalRepo, publisher)

	authenticate := auth.Authenticator(codec, userRepo, handlers.AuthReject)
	requireUser := auth.RequireUser(handlers.AuthReject)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
		authenticate,
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/api/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, codec, requireUser)
	})
	router.Route("/api/user", func(r chi.Router) {
		handlers.UserRouter(r, userService, requireUser)
	})
	router.Route("/api/rentals", func(r chi.Router) {
		handlers.RentalRouter(r, rentalService, messageService, requireUser)
	})
	router.Route("/api/messages", func(r chi.Router) {
		handlers.MessageRouter(r, messageService, requireUser)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		bus:        bus,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown releases the server's resources.
func (s *Server) Shutdown() error {
	if s.bus != nil {
		_ = s.bus.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
