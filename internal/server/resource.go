package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// DefaultBodyLimit bounds create and replace bodies when no limit is configured.
const DefaultBodyLimit int64 = 16 << 10

// ResourceConfig configures a [ResourceHandler].
type ResourceConfig struct {
	Resource  string // Path segment the routes are mounted under, "entity" when empty
	BodyLimit int64  // Max request body size in bytes, DefaultBodyLimit when not positive
	Logger    *log.Logger
}

// ResourceHandler dispatches the CRUD routes of one resource onto a [models.Repository].
type ResourceHandler[T any, P models.Record[T]] struct {
	repo      models.Repository[T]
	base      string
	bodyLimit int64
	logger    *log.Logger
}

// NewResourceHandler creates a [ResourceHandler] over repo.
func NewResourceHandler[T any, P models.Record[T]](repo models.Repository[T], cfg ResourceConfig) *ResourceHandler[T, P] {
	resource := strings.Trim(cfg.Resource, "/")
	if resource == "" {
		resource = "entity"
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = DefaultBodyLimit
	}
	if cfg.Logger == nil {
		cfg.Logger = shared.NewLogger(nil)
	}

	return &ResourceHandler[T, P]{
		repo:      repo,
		base:      "/" + resource,
		bodyLimit: cfg.BodyLimit,
		logger:    cfg.Logger,
	}
}

// NewItemHandler creates a [ResourceHandler] for [models.Item].
func NewItemHandler(repo models.Repository[models.Item], cfg ResourceConfig) *ResourceHandler[models.Item, *models.Item] {
	return NewResourceHandler[models.Item, *models.Item](repo, cfg)
}

// Routes returns the collection and member routes. The collection also answers with a trailing slash.
func (h *ResourceHandler[T, P]) Routes() []Route {
	collection := h.base
	member := h.base + "/{id}"
	slash := h.base + "/{$}"

	return []Route{
		{Method: http.MethodGet, Path: collection, Handler: h.List},
		{Method: http.MethodGet, Path: slash, Handler: h.List},
		{Method: http.MethodPost, Path: collection, Handler: h.Create},
		{Method: http.MethodPost, Path: slash, Handler: h.Create},
		{Method: http.MethodGet, Path: member, Handler: h.Get},
		{Method: http.MethodPut, Path: member, Handler: h.Replace},
		{Method: http.MethodDelete, Path: member, Handler: h.Delete},
	}
}

func (h *ResourceHandler[T, P]) List(w http.ResponseWriter, r *http.Request) {
	entities, err := h.repo.List()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if entities == nil {
		entities = []T{}
	}
	writeJSON(w, http.StatusOK, entities)
}

func (h *ResourceHandler[T, P]) Get(w http.ResponseWriter, r *http.Request) {
	entity, err := h.repo.Get(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entity)
}

func (h *ResourceHandler[T, P]) Create(w http.ResponseWriter, r *http.Request) {
	entity, err := h.decode(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	stored, err := h.repo.Add(entity)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Debug("created", "resource", h.base, "id", P(&stored).Identity())
	writeJSON(w, http.StatusOK, stored)
}

// Replace stores the body under the path id whether or not an entry exists there.
func (h *ResourceHandler[T, P]) Replace(w http.ResponseWriter, r *http.Request) {
	entity, err := h.decode(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.repo.Update(r.PathValue("id"), entity); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *ResourceHandler[T, P]) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// decode reads at most bodyLimit bytes and rejects bodies that are not a JSON object,
// that omit or null a required field, or whose fields do not fit T.
func (h *ResourceHandler[T, P]) decode(w http.ResponseWriter, r *http.Request) (T, error) {
	var entity T

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.bodyLimit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return entity, fmt.Errorf("%w: body exceeds %d bytes", shared.ErrMalformedInput, tooLarge.Limit)
		}
		return entity, fmt.Errorf("%w: failed to read body: %v", shared.ErrMalformedInput, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return entity, fmt.Errorf("%w: %v", shared.ErrMalformedInput, err)
	}
	for _, name := range P(&entity).RequiredFields() {
		if raw, ok := fields[name]; !ok || string(raw) == "null" {
			return entity, fmt.Errorf("%w: missing field %q", shared.ErrMalformedInput, name)
		}
	}

	if err := json.Unmarshal(data, &entity); err != nil {
		return entity, fmt.Errorf("%w: %v", shared.ErrMalformedInput, err)
	}
	return entity, nil
}

// fail maps store errors onto statuses. Not found responses carry no body.
func (h *ResourceHandler[T, P]) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, shared.ErrAlreadyAssigned), errors.Is(err, shared.ErrMalformedInput):
		h.logger.Debug("rejected request", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadRequest, err)
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}

// errorBody is the JSON shape of client and server error responses.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}
