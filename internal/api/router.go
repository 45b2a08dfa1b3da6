package api

import (
	"net/http"
	"time"

	"calc_service/internal/api/handler"
	"calc_service/internal/api/middleware"
	"calc_service/internal/app/service"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(
	authService *service.AuthService,
	calcService *service.CalculationService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authenticator := middleware.Authenticator(authService)

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		// Auth routes (public)
		authHandler := handler.NewAuthHandler(authService)
		v1.Route("/auth", authHandler.RegisterRoutes)

		// Account routes (authenticated)
		userHandler := handler.NewUserHandler(authService)
		v1.Route("/users", func(users chi.Router) {
			users.Use(authenticator)
			userHandler.RegisterRoutes(users)
		})

		// Calculation routes (authenticated)
		calcHandler := handler.NewCalculationHandler(calcService)
		v1.Route("/calculations", func(calcs chi.Router) {
			calcs.Use(authenticator)
			calcHandler.RegisterRoutes(calcs)
		})
	})

	return r
}
