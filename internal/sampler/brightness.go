package sampler

import (
	"context"
	"image"

	"github.com/huesort/huesort/internal/colour"
)

// BrightnessFilter is the default strategy: resize to a small working
// size, trim a fixed margin so studio borders drop out, then keep only
// pixels whose mean brightness sits strictly inside the configured
// band. Near-white and near-black background pixels fall outside it.
type BrightnessFilter struct {
	cfg Config
}

// Sample implements PixelSampler.
func (f *BrightnessFilter) Sample(_ context.Context, img image.Image) ([]colour.RGB, error) {
	resized := resize(img, f.cfg.ResizeWidth, f.cfg.ResizeHeight)

	rect := resized.Rect
	margin := f.cfg.CropMargin
	if rect.Dx() > 2*margin && rect.Dy() > 2*margin {
		rect = image.Rect(rect.Min.X+margin, rect.Min.Y+margin, rect.Max.X-margin, rect.Max.Y-margin)
	}

	sample := make([]colour.RGB, 0, rect.Dx()*rect.Dy())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			p := colour.ToRGB(resized.RGBAAt(x, y))
			b := p.Brightness()
			if b > f.cfg.MinBrightness && b < f.cfg.MaxBrightness {
				sample = append(sample, p)
			}
		}
	}

	return sample, nil
}
