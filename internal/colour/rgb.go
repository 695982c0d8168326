// Package colour provides the colour math for classification: the RGB
// value type, HSV conversion, k-means clustering and category matching.
package colour

import (
	"fmt"
	"image/color"
)

// RGB represents a colour in 8-bit RGB.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB colour as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// ToRGB converts a color.Color to RGB.
func ToRGB(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	// RGBA returns values in the range [0, 65535], convert to [0, 255].
	return RGB{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
	}
}

// Brightness returns the mean of the three channels.
func (rgb RGB) Brightness() float64 {
	return (float64(rgb.R) + float64(rgb.G) + float64(rgb.B)) / 3.0
}

// HSV converts to hue-saturation-value space. Hue is in degrees (0-360);
// saturation and value are reported on a 0-255 scale, matching the 8-bit
// convention the vividness thresholds were tuned against.
func (rgb RGB) HSV() (h, s, v float64) {
	r := float64(rgb.R)
	g := float64(rgb.G)
	b := float64(rgb.B)

	maxVal := max(r, g, b)
	minVal := min(r, g, b)
	delta := maxVal - minVal

	v = maxVal

	if maxVal == 0 {
		return 0, 0, 0
	}
	s = delta / maxVal * 255

	if delta == 0 {
		return 0, s, v
	}

	switch maxVal {
	case r:
		h = (g - b) / delta
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/delta + 2
	case b:
		h = (r-g)/delta + 4
	}
	h *= 60

	return h, s, v
}
