// Package card turns arbitrary source images into print-ready card
// rasters of a fixed pixel footprint.
package card

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"cardsheet/internal/layout"
)

// ErrDecode is returned for files with the image extension that do not
// decode as images.
var ErrDecode = errors.New("not a decodable image")

// Normalize produces a card raster of exactly w x h pixels from src:
// cropPx is stripped from every edge (dropping the bleed border baked
// into source art), the remainder is scaled to fit the footprint without
// distortion, and the result is centered on a white canvas. Sources
// smaller than the footprint are upscaled by the same rule.
func Normalize(src image.Image, w, h, cropPx int) (*image.NRGBA, error) {
	b := src.Bounds()
	if cropPx > 0 {
		if 2*cropPx >= b.Dx() || 2*cropPx >= b.Dy() {
			return nil, fmt.Errorf("%w: crop %dpx leaves nothing of a %dx%d source",
				layout.ErrConfig, cropPx, b.Dx(), b.Dy())
		}
		src = imaging.Crop(src, image.Rect(
			b.Min.X+cropPx, b.Min.Y+cropPx, b.Max.X-cropPx, b.Max.Y-cropPx))
		b = src.Bounds()
	}

	// Fit, not fill: one axis lands exactly on the footprint, the other
	// may fall short and is padded below.
	scale := math.Min(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	dw := clampDim(int(math.Round(float64(b.Dx())*scale)), w)
	dh := clampDim(int(math.Round(float64(b.Dy())*scale)), h)
	scaled := src
	if dw != b.Dx() || dh != b.Dy() {
		scaled = imaging.Resize(src, dw, dh, imaging.Lanczos)
	}

	canvas := imaging.New(w, h, color.White)
	return imaging.PasteCenter(canvas, scaled), nil
}

func clampDim(d, hi int) int {
	if d < 1 {
		return 1
	}
	if d > hi {
		return hi
	}
	return d
}
