package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/activity"
)

// Counter reports how many entities are stored.
type Counter interface {
	Len() int
}

// HealthHandler answers liveness checks with the current entity count.
type HealthHandler struct {
	store Counter
}

func NewHealthHandler(store Counter) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) Routes() []Route {
	return []Route{{Method: http.MethodGet, Path: "/health", Handler: h.ServeHTTP}}
}

// Health is the body of a GET /health response.
type Health struct {
	Status   string `json:"status"`
	Entities int    `json:"entities"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Health{Status: "ok", Entities: h.store.Len()})
}

// ActivityHandler serves the recorded history of one client.
type ActivityHandler struct {
	recorder activity.Recorder
	logger   *log.Logger
}

func NewActivityHandler(recorder activity.Recorder, logger *log.Logger) *ActivityHandler {
	return &ActivityHandler{recorder: recorder, logger: logger}
}

func (h *ActivityHandler) Routes() []Route {
	return []Route{{Method: http.MethodGet, Path: "/activity/{client}", Handler: h.ServeHTTP}}
}

func (h *ActivityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	client := r.PathValue("client")

	entries, err := h.recorder.Recent(r.Context(), client, 0)
	if err != nil {
		h.logger.Error("failed to read activity", "client", client, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
