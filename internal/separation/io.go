package separation

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/ayusman/cmykstudio/internal/parts"
)

// MaxSourcePixels caps the pixel count of a source image. Separation holds
// the source, its working copy and four layers in memory at once.
const MaxSourcePixels = 40_000_000

// ErrTooLarge is returned for sources with more than MaxSourcePixels pixels.
var ErrTooLarge = errors.New("image too large")

// Open decodes an image file. PNG, JPEG, GIF, BMP, TIFF and WebP are
// supported; EXIF orientation is applied.
func Open(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	img, err := DecodeBytes(data, MaxSourcePixels)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return img, nil
}

// DecodeBytes decodes an image held in memory. The header is read first and
// images with more than maxPixels pixels are rejected with ErrTooLarge
// before any pixel data is decoded.
func DecodeBytes(data []byte, maxPixels int64) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if n := int64(cfg.Width) * int64(cfg.Height); n > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
	}
	return Decode(bytes.NewReader(data))
}

// Decode reads an image from r without a size check. Use DecodeBytes for
// untrusted input.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// EncodePNG writes a channel's layer as PNG.
func (s *LayerSet) EncodePNG(w io.Writer, c parts.Channel) error {
	layer := s.Layer(c)
	if layer == nil {
		return fmt.Errorf("%w: %d", parts.ErrUnknownChannel, uint8(c))
	}
	return imaging.Encode(w, layer, imaging.PNG)
}

// DataURL returns a channel's layer as a base64 PNG data URL.
func (s *LayerSet) DataURL(c parts.Channel) (string, error) {
	var buf bytes.Buffer
	if err := s.EncodePNG(&buf, c); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DataURLs returns all four layers as data URLs keyed by channel key.
func (s *LayerSet) DataURLs() (map[string]string, error) {
	out := make(map[string]string, len(StackOrder))
	for _, c := range StackOrder {
		u, err := s.DataURL(c)
		if err != nil {
			return nil, err
		}
		out[c.Key()] = u
	}
	return out, nil
}

// Save writes the four layers to dir as <base>_c.png ... <base>_k.png and
// returns the written paths in stack order.
func (s *LayerSet) Save(dir, base string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(StackOrder))
	for _, c := range StackOrder {
		p := filepath.Join(dir, fmt.Sprintf("%s_%s.png", base, c.Key()))
		if err := imaging.Save(s.Layer(c), p); err != nil {
			return nil, fmt.Errorf("save %s layer: %w", c, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
