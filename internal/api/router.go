package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// Public routes
	r.Post("/auth/signup", apiHandler.SignupHandler)
	r.Post("/auth/login", apiHandler.LoginHandler)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Medical data intake
	r.Route("/medical", func(r chi.Router) {
		r.Post("/form", apiHandler.MedicalFormHandler)
		r.Post("/prescriptions", apiHandler.UploadPrescriptionHandler)
	})

	r.Route("/api", func(r chi.Router) {
		// Chat routes: identity travels in the request body
		r.Post("/chat", apiHandler.ChatHandler)
		r.Post("/chat/end_session", apiHandler.EndSessionHandler)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)
			r.Use(apiHandler.AdminOnlyMiddleware)

			r.Get("/admin/distress-users", apiHandler.DistressUsersHandler)
		})
	})

	return r
}
