package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/cmykstudio/internal/app"
	"github.com/ayusman/cmykstudio/internal/archive"
)

// ArchiveHandler serves the reorderable archive grid.
type ArchiveHandler struct {
	app *app.App
}

// NewArchiveHandler creates an ArchiveHandler for the studio.
func NewArchiveHandler(a *app.App) *ArchiveHandler {
	return &ArchiveHandler{app: a}
}

// Routes registers the archive endpoints under r.
func (h *ArchiveHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/drag", h.drag)
}

type archiveResponse struct {
	Items []archive.Item         `json:"items"`
	Drag  archive.GridOrderState `json:"drag"`
}

type dragRequest struct {
	Event string `json:"event"`
	Index int    `json:"index"`
}

type dragResponse struct {
	archiveResponse
	Changed bool `json:"changed"`
}

// list handles GET /api/archive.
func (h *ArchiveHandler) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.current())
}

// drag handles POST /api/archive/drag with one start, enter or drop event.
func (h *ArchiveHandler) drag(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if !decode(w, r, &req) {
		return
	}

	changed, err := h.app.ArchiveDrag(req.Event, req.Index)
	if errors.Is(err, app.ErrUnknownDragEvent) {
		writeError(w, http.StatusBadRequest, "event must be start, enter or drop")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save archive order")
		return
	}
	writeJSON(w, http.StatusOK, dragResponse{archiveResponse: h.current(), Changed: changed})
}

func (h *ArchiveHandler) current() archiveResponse {
	items := h.app.ArchiveItems()
	if items == nil {
		items = []archive.Item{}
	}
	return archiveResponse{Items: items, Drag: h.app.ArchiveState()}
}
