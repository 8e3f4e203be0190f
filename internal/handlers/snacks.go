package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Snack API Running"))
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.Health != nil {
		if err := h.Health.Ping(r.Context()); err != nil {
			h.Log.Warn("Health check failed", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respondOK(w, map[string]string{"status": "ok"})
}

// ==================== Snacks ====================

func (h *Handlers) handleListSnacks(w http.ResponseWriter, r *http.Request) {
	snacks, err := h.Snacks.ListSnacks(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondOK(w, snacks)
}

func (h *Handlers) handleGetSnack(w http.ResponseWriter, r *http.Request) {
	snack, err := h.Snacks.GetSnack(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondOK(w, snack)
}

func (h *Handlers) handleCreateSnack(w http.ResponseWriter, r *http.Request) {
	form, err := parseSnackForm(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	snack, err := h.Snacks.CreateSnack(r.Context(), form.createInput())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondCreated(w, snack)
}

func (h *Handlers) handleUpdateSnack(w http.ResponseWriter, r *http.Request) {
	form, err := parseSnackForm(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	snack, err := h.Snacks.UpdateSnack(r.Context(), chi.URLParam(r, "id"), form.updateInput())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondOK(w, snack)
}

func (h *Handlers) handleDeleteSnack(w http.ResponseWriter, r *http.Request) {
	if err := h.Snacks.DeleteSnack(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	respondSuccess(w, "Snack deleted successfully")
}

// ==================== Menu ====================

func (h *Handlers) handleMenuQR(w http.ResponseWriter, r *http.Request) {
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))

	png, err := h.Menu.GenerateMenuQR(size)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}
