package soft

import (
	"image"
	"image/color"

	"github.com/Faultbox/lumen2d/internal/engine/device"
)

// Target is a CPU render target with float RGBA storage. Float channels keep
// additive light accumulation unclamped, matching the energy model of the
// lightmap.
type Target struct {
	width, height int32
	pix           []float32
}

// NewTarget allocates a target of the given dimensions, clamped to 1x1.
func NewTarget(width, height int32) *Target {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Target{
		width:  width,
		height: height,
		pix:    make([]float32, width*height*4),
	}
}

// Size returns the target dimensions.
func (t *Target) Size() (int32, int32) {
	return t.width, t.height
}

// At returns the color at pixel (x, y), clamped to the target bounds.
func (t *Target) At(x, y int) device.Color {
	x = clampInt(x, 0, int(t.width)-1)
	y = clampInt(y, 0, int(t.height)-1)
	i := (y*int(t.width) + x) * 4
	return device.Color{R: t.pix[i], G: t.pix[i+1], B: t.pix[i+2], A: t.pix[i+3]}
}

// Fill sets every pixel to c.
func (t *Target) Fill(c device.Color) {
	for i := 0; i < len(t.pix); i += 4 {
		t.pix[i] = c.R
		t.pix[i+1] = c.G
		t.pix[i+2] = c.B
		t.pix[i+3] = c.A
	}
}

// Image converts the target to an 8-bit RGBA image, clamping each channel.
func (t *Target) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(t.width), int(t.height)))
	for y := 0; y < int(t.height); y++ {
		for x := 0; x < int(t.width); x++ {
			c := t.At(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: channelByte(c.R),
				G: channelByte(c.G),
				B: channelByte(c.B),
				A: channelByte(c.A),
			})
		}
	}
	return img
}

func channelByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
