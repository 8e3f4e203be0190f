package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/abrezinsky/snackcounter/internal/errors"
	"github.com/abrezinsky/snackcounter/internal/logger"
	"github.com/abrezinsky/snackcounter/internal/metrics"
	"github.com/abrezinsky/snackcounter/internal/services"
	"github.com/abrezinsky/snackcounter/internal/uploads"
	"github.com/abrezinsky/snackcounter/internal/websocket"
)

// DefaultRequestTimeout bounds API handlers when none is configured
const DefaultRequestTimeout = 60 * time.Second

// HealthChecker reports whether the catalog store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Snacks services.SnackServicer
	Menu   services.MenuServicer
	Files  uploads.Store
	Hub    *websocket.Hub
	Log    logger.Logger

	// Optional collaborators, wired by the app when configured
	Assets         http.Handler
	Metrics        *metrics.Metrics
	Health         HealthChecker
	MaxUploadBytes int64
	RequestTimeout time.Duration
}

// New creates a new Handlers instance with its required dependencies
func New(
	snacks services.SnackServicer,
	menu services.MenuServicer,
	files uploads.Store,
	hub *websocket.Hub,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Snacks: snacks,
		Menu:   menu,
		Files:  files,
		Hub:    hub,
		Log:    log,
	}
}

func (h *Handlers) requestTimeout() time.Duration {
	if h.RequestTimeout > 0 {
		return h.RequestTimeout
	}
	return DefaultRequestTimeout
}

// fail logs server-side failures before writing the error response
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if !errors.UserFacing(err) && h.Log != nil {
		h.Log.Error("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}
	respondError(w, err)
}
