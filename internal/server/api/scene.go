package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/cmykstudio/internal/app"
	"github.com/ayusman/cmykstudio/internal/parts"
	"github.com/ayusman/cmykstudio/internal/scene"
)

// SceneHandler serves the placed layers.
type SceneHandler struct {
	app *app.App
}

// NewSceneHandler creates a SceneHandler for the studio.
func NewSceneHandler(a *app.App) *SceneHandler {
	return &SceneHandler{app: a}
}

// Routes registers the scene endpoints under r.
func (h *SceneHandler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Post("/drop", h.drop)
	r.Route("/layers/{id}", func(r chi.Router) {
		r.Delete("/", h.remove)
		r.Put("/transform", h.transform)
		r.Post("/tail", h.tail)
	})
}

type dropResponse struct {
	ID string `json:"id"`
}

// get handles GET /api/scene.
func (h *SceneHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Snapshot())
}

// drop handles POST /api/scene/drop. The body is the raw drop payload; a
// payload that names no known part is ignored with 204.
func (h *SceneHandler) drop(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	id, err := h.app.Drop(string(body))
	if errors.Is(err, scene.ErrMalformedDrop) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to place part")
		return
	}
	writeJSON(w, http.StatusCreated, dropResponse{ID: id})
}

// remove handles DELETE /api/scene/layers/{id}.
func (h *SceneHandler) remove(w http.ResponseWriter, r *http.Request) {
	if !h.layerResult(w, h.app.RemoveLayer(chi.URLParam(r, "id"))) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// transform handles PUT /api/scene/layers/{id}/transform.
func (h *SceneHandler) transform(w http.ResponseWriter, r *http.Request) {
	var t parts.Transform
	if !decode(w, r, &t) {
		return
	}

	id := chi.URLParam(r, "id")
	if !h.layerResult(w, h.app.SetTransform(id, t)) {
		return
	}
	h.writeLayer(w, id)
}

// tail handles POST /api/scene/layers/{id}/tail.
func (h *SceneHandler) tail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.layerResult(w, h.app.MoveToTail(id)) {
		return
	}
	h.writeLayer(w, id)
}

func (h *SceneHandler) layerResult(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, scene.ErrNotFound):
		writeError(w, http.StatusNotFound, "Layer not found")
	default:
		writeError(w, http.StatusInternalServerError, "Failed to update layer")
	}
	return false
}

func (h *SceneHandler) writeLayer(w http.ResponseWriter, id string) {
	l, err := h.app.Scene().Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Layer not found")
		return
	}
	writeJSON(w, http.StatusOK, l)
}
