package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/scribeworks/notes-service/internal/application"
	"github.com/scribeworks/notes-service/internal/domain"
)

// Handler is the HTTP adapter entrypoint for the notes API use-cases.
// Keeping only the application dependency here preserves clean adapter boundaries.
type Handler struct {
	service         *application.Service
	refreshTokenTTL time.Duration
	secureCookies   bool
}

// NewHandler constructs an HTTP handler bound to the application service.
// refreshTokenTTL sizes the refresh cookie's MaxAge; secureCookies should be
// false only in plain-HTTP development setups.
func NewHandler(service *application.Service, refreshTokenTTL time.Duration, secureCookies bool) *Handler {
	if refreshTokenTTL <= 0 {
		refreshTokenTTL = 30 * time.Minute
	}
	return &Handler{
		service:         service,
		refreshTokenTTL: refreshTokenTTL,
		secureCookies:   secureCookies,
	}
}

// NewRouter registers the HTTP routes and middleware stack.
// Centralizing routes here ensures consistent auth and error behavior across endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(metricsMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth/v1", func(r chi.Router) {
		r.Post("/register", handler.register)
		r.Post("/login", handler.login)
		r.Post("/refresh", handler.refresh)
		r.Post("/logout", handler.logout)

		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)
			r.Post("/logout-all", handler.logoutAll)
			r.Get("/login-history", handler.loginHistory)
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(handler.authMiddleware)

		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(requireRoles(domain.RoleAdmin))
				r.Get("/", handler.listUsers)
				r.Post("/", handler.createUser)
				r.Get("/{user_id}", handler.getUser)
				r.Patch("/{user_id}", handler.updateUser)
				r.Delete("/{user_id}", handler.deleteUser)
			})

			r.Get("/{user_id}/profile", handler.getProfile)
			r.Patch("/{user_id}/profile", handler.updateProfile)
			r.Put("/{user_id}/password", handler.changePassword)
			r.Get("/{user_id}/avatar", handler.getAvatar)
			r.Post("/{user_id}/avatar", handler.uploadAvatar)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", handler.listNotes)
			r.Post("/", handler.createNote)
			r.Get("/{note_id}", handler.getNote)
			r.Patch("/{note_id}", handler.updateNote)
			r.Get("/category/{category_id}", handler.listNotesByCategory)

			r.Group(func(r chi.Router) {
				r.Use(requireRoles(domain.RoleAdmin, domain.RoleEditor))
				r.Delete("/{note_id}", handler.deleteNote)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", handler.listCategories)

			r.Group(func(r chi.Router) {
				r.Use(requireRoles(domain.RoleAdmin))
				r.Post("/", handler.createCategory)
			})
			r.Group(func(r chi.Router) {
				r.Use(requireRoles(domain.RoleAdmin, domain.RoleEditor))
				r.Patch("/{category_id}", handler.renameCategory)
				r.Delete("/{category_id}", handler.deleteCategory)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/", handler.listComments)
			r.Post("/", handler.createComment)
			r.Get("/note/{note_id}", handler.listCommentsByNote)
			r.Get("/{comment_id}/replies", handler.listReplies)
			r.Patch("/{comment_id}", handler.updateComment)
			r.Delete("/{comment_id}", handler.deleteComment)
		})
	})

	return r
}
