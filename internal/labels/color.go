package labels

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit-per-channel color.
type RGB struct {
	R, G, B uint8
}

// RGBFrom converts a configured [r, g, b] triple, clamping each channel
// to 0..255. Missing channels are zero.
func RGBFrom(channels []int) RGB {
	var c [3]uint8
	for i := 0; i < len(channels) && i < 3; i++ {
		c[i] = uint8(min(max(channels[i], 0), 255)) //nolint:gosec // clamped above
	}
	return RGB{R: c[0], G: c[1], B: c[2]}
}

// Hex renders the color as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String renders the color the way CSS would: rgb(r,g,b).
func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// Blend composites c at the given alpha over bg. Terminals have no alpha
// channel, so translucent tints are pre-mixed against the background.
func (c RGB) Blend(bg RGB, alpha float64) RGB {
	alpha = math.Max(0, math.Min(1, alpha))
	r, g, b := bg.colorful().BlendRgb(c.colorful(), alpha).RGB255()
	return RGB{R: r, G: g, B: b}
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Terminal backgrounds tints are mixed over when the real color is unknown.
var (
	DarkBackground  = RGB{}
	LightBackground = RGB{R: 255, G: 255, B: 255}
)

// BackgroundFor returns the background to blend against for a dark or
// light terminal.
func BackgroundFor(dark bool) RGB {
	if dark {
		return DarkBackground
	}
	return LightBackground
}

// Tint and highlight opacities.
const (
	TintAlpha      = 0.25
	HighlightAlpha = 0.5
)

// Opaque returns c at full opacity, the form used for captions.
func (c RGB) Opaque() RGB {
	return c
}
