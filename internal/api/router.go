package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/account-service/internal/api/handlers"
	"github.com/isdelr/account-service/internal/api/respond"
	"github.com/isdelr/account-service/internal/auth"
	"github.com/isdelr/account-service/internal/logger"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(guard *auth.Guard, userHandler *handlers.UserHandler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed)
	})

	r.Post("/signup", userHandler.Signup)
	r.Post("/login", guard.WithCredentials(userHandler.Login))

	r.Route("/self", func(r chi.Router) {
		r.Get("/", guard.WithToken(userHandler.Self))
		r.Patch("/", guard.WithToken(userHandler.UpdateSelf))
		r.Patch("/password", guard.WithCredentials(userHandler.ChangePassword))
	})

	return r
}
