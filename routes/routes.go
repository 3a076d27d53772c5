package routes

import (
	"net/http"

	"github.com/Dosada05/pitch-tracker/handlers"
	"github.com/Dosada05/pitch-tracker/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Player  *handlers.PlayerHandler
	Session *handlers.SessionHandler
	Upload  *handlers.UploadHandler
	Compare *handlers.CompareHandler
	Admin   *handlers.AdminHandler
}

// SetupRoutes регистрирует все маршруты API. authenticate - middleware.Authenticate с зависимостями.
func SetupRoutes(router chi.Router, h Handlers, authenticate func(http.Handler) http.Handler, allowedOrigins []string) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Auth.Signup)
		r.Post("/login", h.Auth.Login)
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/me", h.Auth.Me)

		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.Player.ListPlayers)
			r.Post("/", h.Player.CreatePlayer)
			r.Get("/{playerID}", h.Player.GetPlayer)
			r.Delete("/{playerID}", h.Player.DeletePlayer)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.Session.ListSessions)
			r.Get("/{sessionID}", h.Session.GetSession)
			r.Delete("/{sessionID}", h.Session.DeleteSession)
			r.Get("/{sessionID}/kinematics", h.Session.GetKinematics)
		})

		r.Post("/uploads", h.Upload.Upload)
		r.Get("/compare", h.Compare.Compare)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/debug-logs", h.Admin.ListDebugLogs)
			r.Get("/orphan-players", h.Admin.ListOrphanPlayers)
			r.Delete("/orphan-players", h.Admin.DeleteOrphanPlayers)
		})
	})
}
