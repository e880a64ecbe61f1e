package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ayusman/cmykstudio/internal/separation"
)

// MaxSourceBytes caps uploaded source images.
const MaxSourceBytes = 20 << 20

// SeparateHandler splits an uploaded image into its four CMYK layers.
type SeparateHandler struct {
	log *slog.Logger
}

// NewSeparateHandler creates a SeparateHandler.
func NewSeparateHandler(log *slog.Logger) *SeparateHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SeparateHandler{log: log}
}

type separateResponse struct {
	Width  int               `json:"width"`
	Height int               `json:"height"`
	Layers map[string]string `json:"layers"` // channel key -> PNG data URL
}

// ServeHTTP handles POST /api/separate. The body is the raw image.
func (h *SeparateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxSourceBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "Image file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	img, err := separation.DecodeBytes(data, separation.MaxSourcePixels)
	if errors.Is(err, separation.ErrTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "Image dimensions too large")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unsupported or corrupt image")
		return
	}

	set := separation.Separate(img)
	urls, err := set.DataURLs()
	if err != nil {
		h.log.Error("encode layers", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to encode layers")
		return
	}

	b := set.Bounds()
	h.log.Debug("image separated", "width", b.Dx(), "height", b.Dy())
	writeJSON(w, http.StatusOK, separateResponse{Width: b.Dx(), Height: b.Dy(), Layers: urls})
}
