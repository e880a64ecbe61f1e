// Package separation derives four single-hue, alpha-masked print layers
// (cyan, magenta, yellow, black) from a source image.
package separation

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ayusman/cmykstudio/internal/parts"
)

// Luminance weights (ITU-R BT.601).
const (
	LumaR = 0.299
	LumaG = 0.587
	LumaB = 0.114
)

// StackOrder is the order the layers are composed in, bottom first.
var StackOrder = parts.Channels

// Hue returns the fixed color painted by a channel's layer.
func Hue(c parts.Channel) color.NRGBA {
	switch c {
	case parts.Cyan:
		return color.NRGBA{R: 0, G: 255, B: 255}
	case parts.Magenta:
		return color.NRGBA{R: 255, G: 0, B: 255}
	case parts.Yellow:
		return color.NRGBA{R: 255, G: 255, B: 0}
	default:
		return color.NRGBA{}
	}
}

// LayerSet holds the four separated rasters. All share the source bounds.
type LayerSet struct {
	Cyan    *image.NRGBA
	Magenta *image.NRGBA
	Yellow  *image.NRGBA
	Black   *image.NRGBA
}

// Layer returns the raster for a channel.
func (s *LayerSet) Layer(c parts.Channel) *image.NRGBA {
	switch c {
	case parts.Cyan:
		return s.Cyan
	case parts.Magenta:
		return s.Magenta
	case parts.Yellow:
		return s.Yellow
	case parts.Black:
		return s.Black
	}
	return nil
}

// Bounds returns the common bounds of the layers.
func (s *LayerSet) Bounds() image.Rectangle {
	return s.Cyan.Bounds()
}

// Separate splits src into its four channel layers. The source is read as
// straight (non-premultiplied) RGBA. A zero-area source yields four
// zero-area layers.
func Separate(src image.Image) *LayerSet {
	// The clone is rebased to (0,0); layers keep the source origin. Both use
	// a stride of 4*Dx, so pixel offsets match.
	in := imaging.Clone(src)
	b := src.Bounds()

	set := &LayerSet{
		Cyan:    image.NewNRGBA(b),
		Magenta: image.NewNRGBA(b),
		Yellow:  image.NewNRGBA(b),
		Black:   image.NewNRGBA(b),
	}
	if b.Empty() {
		return set
	}

	cyan, magenta, yellow, black := Hue(parts.Cyan), Hue(parts.Magenta), Hue(parts.Yellow), Hue(parts.Black)

	for y := 0; y < b.Dy(); y++ {
		row := y * in.Stride
		for x := 0; x < b.Dx(); x++ {
			i := row + x*4
			r := float64(in.Pix[i]) / 255
			g := float64(in.Pix[i+1]) / 255
			bl := float64(in.Pix[i+2]) / 255
			a := float64(in.Pix[i+3]) / 255

			lum := LumaR*r + LumaG*g + LumaB*bl

			put(set.Cyan.Pix[i:i+4], cyan, (1-r)*a)
			put(set.Magenta.Pix[i:i+4], magenta, (1-g)*a)
			put(set.Yellow.Pix[i:i+4], yellow, (1-bl)*a)
			put(set.Black.Pix[i:i+4], black, (1-lum)*a)
		}
	}

	return set
}

func put(px []uint8, hue color.NRGBA, alpha float64) {
	px[0] = hue.R
	px[1] = hue.G
	px[2] = hue.B
	px[3] = toByte(alpha)
}

// toByte scales a [0,1] weight to 0..255, rounding halves up.
func toByte(v float64) uint8 {
	n := math.Floor(v*255 + 0.5)
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}
