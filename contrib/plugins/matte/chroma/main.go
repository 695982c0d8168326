// chroma - Border-seeded chroma-key matte (huesort matte plugin)
//
// Estimates the studio background colour from the image border and
// flood-fills from the border, marking every connected pixel within a
// colour tolerance as background. Everything else is foreground.
//
// This is a heuristic matte for uniform studio backdrops, not a
// segmentation model; it exists so the foreground-mask sampling mode
// works out of the box without any ML dependency.
//
// Build:
//   go build -o huesort-matte ./contrib/plugins/matte/chroma
//
// Usage:
//   put huesort-matte on PATH (or set analysis.matte_plugin in the
//   settings file) and enable analysis.use_foreground_mask.
package main

import (
	"context"
	"image"
	"math"
	"os"
	"strconv"

	"github.com/huesort/huesort/pkg/matte"
)

// defaultTolerance is the Euclidean RGB distance within which a
// border-connected pixel counts as background.
const defaultTolerance = 32.0

// ChromaMatte implements the matte.Remover interface.
type ChromaMatte struct {
	tolerance float64
}

// Mask computes the foreground mask for one image.
func (m *ChromaMatte) Mask(_ context.Context, img image.Image) (*matte.Mask, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	px := make([][3]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			px[y*w+x] = [3]float64{float64(r >> 8), float64(g >> 8), float64(bl >> 8)}
		}
	}

	bg := borderMean(px, w, h)

	// Flood fill from every border pixel that looks like background.
	alpha := make([]uint8, w*h)
	for i := range alpha {
		alpha[i] = 255
	}

	var queue []int
	push := func(idx int) {
		if alpha[idx] == 255 && dist(px[idx], bg) <= m.tolerance {
			alpha[idx] = 0
			queue = append(queue, idx)
		}
	}

	for x := 0; x < w; x++ {
		push(x)
		push((h-1)*w + x)
	}
	for y := 0; y < h; y++ {
		push(y * w)
		push(y*w + w - 1)
	}

	for len(queue) > 0 {
		idx := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x, y := idx%w, idx/w
		if x > 0 {
			push(idx - 1)
		}
		if x < w-1 {
			push(idx + 1)
		}
		if y > 0 {
			push(idx - w)
		}
		if y < h-1 {
			push(idx + w)
		}
	}

	return &matte.Mask{Width: w, Height: h, Alpha: alpha}, nil
}

// borderMean averages the outermost pixel ring.
func borderMean(px [][3]float64, w, h int) [3]float64 {
	var sum [3]float64
	n := 0
	add := func(idx int) {
		sum[0] += px[idx][0]
		sum[1] += px[idx][1]
		sum[2] += px[idx][2]
		n++
	}
	for x := 0; x < w; x++ {
		add(x)
		if h > 1 {
			add((h-1)*w + x)
		}
	}
	for y := 1; y < h-1; y++ {
		add(y * w)
		if w > 1 {
			add(y*w + w - 1)
		}
	}
	if n == 0 {
		return [3]float64{}
	}
	return [3]float64{sum[0] / float64(n), sum[1] / float64(n), sum[2] / float64(n)}
}

func dist(a, b [3]float64) float64 {
	dr := a[0] - b[0]
	dg := a[1] - b[1]
	db := a[2] - b[2]
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

func main() {
	tol := defaultTolerance
	if env := os.Getenv("HUESORT_MATTE_TOLERANCE"); env != "" {
		if v, err := strconv.ParseFloat(env, 64); err == nil && v > 0 {
			tol = v
		}
	}
	matte.Serve(&ChromaMatte{tolerance: tol})
}
