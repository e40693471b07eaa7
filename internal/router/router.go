package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-user-service/internal/config"
	"go-user-service/internal/handler"
	"go-user-service/internal/middleware"
	"go-user-service/internal/model"
)

func New(
	cfg *config.Config,
	gate *middleware.AuthGate,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)
	r.Use(gate.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = writeJSON(w, model.APIResponse{
			Status:  model.StatusSuccess,
			Message: "Server is running",
		})
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", authHandler.Login)
			auth.Post("/register", authHandler.Register)
			auth.Post("/refresh", authHandler.Refresh)
			auth.Post("/logout", authHandler.Logout)
			auth.Get("/me", authHandler.Me)
		})

		api.Route("/users", func(users chi.Router) {
			users.Get("/", userHandler.Get)
			users.Post("/search", userHandler.Search)
			users.Put("/{id}", userHandler.Update)
			users.Delete("/{id}", userHandler.Delete)
			users.Post("/{id}/password", userHandler.ChangePassword)
		})
	})

	return r
}
