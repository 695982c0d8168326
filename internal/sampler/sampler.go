// Package sampler reduces a decoded product image to the flat pixel
// sample used for dominant-colour extraction. Two strategies exist
// behind one interface: a brightness band-pass over the image centre,
// and a foreground mask driven by the optional background-removal
// plugin. The strategy is picked once, at construction.
package sampler

import (
	"context"
	"image"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/image/draw"

	"github.com/huesort/huesort/internal/colour"
	"github.com/huesort/huesort/pkg/matte"
)

// Config holds the preprocessing parameters.
type Config struct {
	ResizeWidth   int     // brightness mode: working width after resize
	ResizeHeight  int     // brightness mode: working height after resize
	CropMargin    int     // pixels trimmed from each edge of the resized image
	MinBrightness float64 // exclusive lower bound on mean channel brightness
	MaxBrightness float64 // exclusive upper bound

	UseForeground  bool  // request the foreground-mask strategy
	ForegroundCap  int   // foreground mode: downscale when either dimension exceeds this
	AlphaThreshold uint8 // foreground mode: keep pixels with opacity above this
}

// DefaultConfig returns the stock preprocessing parameters.
func DefaultConfig() Config {
	return Config{
		ResizeWidth:    100,
		ResizeHeight:   100,
		CropMargin:     30,
		MinBrightness:  20,
		MaxBrightness:  230,
		ForegroundCap:  500,
		AlphaThreshold: 10,
	}
}

// PixelSampler filters an image down to the pixels worth clustering.
// An empty sample means "nothing usable survived", which callers treat
// as unclassifiable, not as an error.
type PixelSampler interface {
	Sample(ctx context.Context, img image.Image) ([]colour.RGB, error)
}

// New selects the sampler strategy. When the foreground strategy is
// requested but no remover is available the brightness filter is used
// instead, with a single warning; there is no per-call fallback.
func New(cfg Config, remover matte.Remover, logger hclog.Logger) PixelSampler {
	if cfg.UseForeground {
		if remover != nil {
			return &ForegroundMask{cfg: cfg, remover: remover}
		}
		logger.Warn("background removal unavailable, falling back to brightness filter")
	}
	return &BrightnessFilter{cfg: cfg}
}

// resize scales img to w×h. Already-right-sized images are copied into
// RGBA without rescaling so pixel values survive exactly.
func resize(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
		return dst
	}
	draw.ApproxBiLinear.Scale(dst, dst.Rect, img, b, draw.Src, nil)
	return dst
}
