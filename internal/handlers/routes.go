package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abrezinsky/snackcounter/internal/uploads"
)

// UploadField is the multipart field carrying the snack image
const UploadField = "img"

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// uploadImage stores a single image from multipart requests before the handler runs
func (h *Handlers) uploadImage(next http.Handler) http.Handler {
	if h.Files == nil {
		return next
	}
	return uploads.Single(h.Files, UploadField, h.MaxUploadBytes, h.fail)(next)
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	if h.Metrics != nil {
		r.Use(h.Metrics.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, ErrMethodNotAllowed)
	})

	r.Get("/", h.handleIndex)
	r.Get("/healthz", h.handleHealth)

	// Long-lived, so kept outside the request timeout
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())
	}

	// Uploaded images (disk store only)
	if h.Assets != nil {
		r.Handle(uploads.DefaultURLPrefix+"/*", h.Assets)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(h.requestTimeout()))

		r.Get("/menu/qr", h.handleMenuQR)

		r.Route("/snacks", func(r chi.Router) {
			r.Get("/", h.handleListSnacks)
			r.With(h.uploadImage).Post("/", h.handleCreateSnack)
			r.Get("/{id}", h.handleGetSnack)
			r.With(h.uploadImage).Put("/{id}", h.handleUpdateSnack)
			r.Delete("/{id}", h.handleDeleteSnack)
		})
	})

	return r
}
