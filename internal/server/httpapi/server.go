// Package httpapi exposes the server's operations over HTTP with JSON bodies.
// It owns the router, the bearer-token middleware, and the mapping from
// service errors to status codes.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/astroadvisor/internal/logging"
	"github.com/dmitrijs2005/astroadvisor/internal/server/advice"
	"github.com/dmitrijs2005/astroadvisor/internal/server/models"
	"github.com/dmitrijs2005/astroadvisor/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// UserService is the subset of the user service the API consumes.
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// ReadingService is the subset of the reading service the API consumes.
type ReadingService interface {
	CreateForUser(ctx context.Context, userID string, in advice.Input) (*models.Reading, error)
	CreateQuick(ctx context.Context, in advice.Input) (*models.Reading, error)
	List(ctx context.Context, userID string, skip, limit int) ([]*models.Reading, error)
	Get(ctx context.Context, userID string, id string) (*models.Reading, error)
}

type Server struct {
	address   string
	logger    logging.Logger
	users     UserService
	readings  ReadingService
	jwtSecret []byte
}

func NewServer(a string, l logging.Logger, us UserService, rs ReadingService, secretKey string) (*Server, error) {
	return &Server{
		address:   a,
		logger:    l.With("module", "http_server"),
		users:     us,
		readings:  rs,
		jwtSecret: []byte(secretKey),
	}, nil
}

// Router builds the chi router with all endpoint routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))

	r.Get("/", s.handleRoot)
	r.Post("/register", s.handleRegister)
	r.Post("/token", s.handleToken)
	r.Post("/quick-advice", s.handleQuickAdvice)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticator)
		r.Get("/users/me", s.handleGetSelf)
		r.Put("/users/me", s.handleUpdateSelf)
		r.Delete("/users/me", s.handleDeleteSelf)
		r.Post("/get-advice", s.handleGetAdvice)
		r.Get("/users/me/readings", s.handleListReadings)
		r.Get("/readings", s.handleListReadings)
		r.Get("/readings/{id}", s.handleGetReading)
	})

	return r
}

// Run starts the HTTP server and shuts it down gracefully when ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
