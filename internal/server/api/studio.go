package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/cmykstudio/internal/app"
	"github.com/ayusman/cmykstudio/internal/parts"
	"github.com/ayusman/cmykstudio/internal/tracking"
)

// StudioHandler serves the part catalog and the tracking and canvas
// settings.
type StudioHandler struct {
	app *app.App
}

// NewStudioHandler creates a StudioHandler for the studio.
func NewStudioHandler(a *app.App) *StudioHandler {
	return &StudioHandler{app: a}
}

// Routes registers the endpoints under r.
func (h *StudioHandler) Routes(r chi.Router) {
	r.Get("/parts", h.parts)
	r.Get("/tracking", h.getTracking)
	r.Put("/tracking", h.putTracking)
	r.Get("/canvas", h.getCanvas)
	r.Put("/canvas", h.putCanvas)
}

type partResponse struct {
	Role    parts.Role        `json:"role"`
	Title   string            `json:"title"`
	Assets  map[string]string `json:"assets"`
	Default parts.Transform   `json:"default"`
}

type listPartsResponse struct {
	Parts []partResponse `json:"parts"`
}

type trackingRequest struct {
	Enabled *bool `json:"enabled"`
}

type trackingResponse struct {
	Enabled bool `json:"enabled"`
	Running bool `json:"running"`
}

// parts handles GET /api/parts.
func (h *StudioHandler) parts(w http.ResponseWriter, r *http.Request) {
	defs := h.app.Catalog().All()
	resp := listPartsResponse{Parts: make([]partResponse, 0, len(defs))}
	for _, d := range defs {
		assets := make(map[string]string, len(d.Assets))
		for c, a := range d.Assets {
			assets[c.Key()] = a
		}
		resp.Parts = append(resp.Parts, partResponse{
			Role:    d.Role,
			Title:   d.Title,
			Assets:  assets,
			Default: d.Default,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// getTracking handles GET /api/tracking.
func (h *StudioHandler) getTracking(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, trackingResponse{Enabled: h.app.Tracking(), Running: h.app.Running()})
}

// putTracking handles PUT /api/tracking.
func (h *StudioHandler) putTracking(w http.ResponseWriter, r *http.Request) {
	var req trackingRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled is required")
		return
	}

	if err := h.app.SetTracking(*req.Enabled); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save tracking setting")
		return
	}
	h.getTracking(w, r)
}

// getCanvas handles GET /api/canvas.
func (h *StudioHandler) getCanvas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Canvas())
}

// putCanvas handles PUT /api/canvas.
func (h *StudioHandler) putCanvas(w http.ResponseWriter, r *http.Request) {
	var size tracking.CanvasSize
	if !decode(w, r, &size) {
		return
	}
	if !size.Valid() {
		writeError(w, http.StatusBadRequest, "width and height must be positive")
		return
	}

	if err := h.app.SetCanvas(size); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save canvas size")
		return
	}
	writeJSON(w, http.StatusOK, size)
}
