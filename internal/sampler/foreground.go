package sampler

import (
	"context"
	"fmt"
	"image"

	"github.com/huesort/huesort/internal/colour"
	"github.com/huesort/huesort/pkg/matte"
)

// ForegroundMask asks the background-removal capability for a per-pixel
// opacity mask and keeps pixels above a small alpha threshold, so soft
// edges are tolerated while transparent background is dropped. No
// brightness filter applies in this mode: foreground pixels may
// legitimately be near-white or near-black, e.g. a white garment.
type ForegroundMask struct {
	cfg     Config
	remover matte.Remover
}

// Sample implements PixelSampler. Large images are downscaled before
// matting; segmentation cost grows with resolution.
func (f *ForegroundMask) Sample(ctx context.Context, img image.Image) ([]colour.RGB, error) {
	b := img.Bounds()
	working := img
	if b.Dx() > f.cfg.ForegroundCap || b.Dy() > f.cfg.ForegroundCap {
		working = resize(img, f.cfg.ForegroundCap, f.cfg.ForegroundCap)
	}

	mask, err := f.remover.Mask(ctx, working)
	if err != nil {
		return nil, fmt.Errorf("background removal failed: %w", err)
	}

	wb := working.Bounds()
	if mask.Width != wb.Dx() || mask.Height != wb.Dy() {
		return nil, fmt.Errorf("mask size %dx%d does not match image %dx%d",
			mask.Width, mask.Height, wb.Dx(), wb.Dy())
	}

	sample := make([]colour.RGB, 0, mask.Width*mask.Height)
	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			if mask.At(x, y) > f.cfg.AlphaThreshold {
				sample = append(sample, colour.ToRGB(working.At(wb.Min.X+x, wb.Min.Y+y)))
			}
		}
	}

	return sample, nil
}
