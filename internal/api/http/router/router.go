package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dtroode/userkeeper-server/internal/api/http/handler"
	"github.com/dtroode/userkeeper-server/internal/api/http/middleware"
	"github.com/dtroode/userkeeper-server/internal/logger"
	"github.com/dtroode/userkeeper-server/internal/model"
)

// Router builds the HTTP/JSON API for user operations.
type Router struct {
	userService   handler.UserService
	healthChecker model.HealthChecker
	logger        *logger.Logger
}

// New creates new HTTP Router instance.
func New(
	userService handler.UserService,
	healthChecker model.HealthChecker,
	logger *logger.Logger,
) *Router {
	return &Router{
		userService:   userService,
		healthChecker: healthChecker,
		logger:        logger,
	}
}

// Register mounts every route with request id, logging and panic recovery
// middleware and returns the resulting handler.
func (r *Router) Register() http.Handler {
	logging := middleware.NewLogging(r.logger)
	users := handler.NewUser(r.userService, r.logger)
	health := handler.NewHealth(r.healthChecker, r.logger)

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(logging.Handle)
	mux.Use(chimw.Recoverer)

	mux.Get("/healthz", health.Check)

	mux.Route("/users", func(ur chi.Router) {
		ur.Post("/", users.Create)
		ur.Get("/", users.List)
		ur.Get("/{id}", users.Get)
		ur.Patch("/{id}", users.Update)
		ur.Delete("/{id}", users.Remove)
	})

	return mux
}
