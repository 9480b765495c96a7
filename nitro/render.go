package nitro

import (
	"image"
	"image/color"
	"log"
)

// Background selects what an empty plane is filled with.
type Background int

const (
	BackgroundTransparent Background = iota
	BackgroundColor0                 // palette color 0, fully opaque
)

// RenderContext carries the per-call rendering options. It is passed by value
// so concurrent renders may use different settings.
type RenderContext struct {
	// Opaque draws pixel index 0 with palette color 0 instead of leaving
	// it transparent.
	Opaque bool

	// ShowBounds outlines each cell's bounding rectangle in BoundsColor.
	ShowBounds bool

	Background Background

	// Logger receives diagnostics about degraded lookups. May be nil.
	Logger *log.Logger
}

func (ctx RenderContext) logf(format string, args ...interface{}) {
	if ctx.Logger != nil {
		ctx.Logger.Printf(format, args...)
	}
}

// BoundsColor is reserved for bounding rectangles. Pixels of this color are
// never overwritten by sprite data.
var BoundsColor = color.NRGBA{0xFF, 0x00, 0xFF, 0xFE}

// Plane dimensions. Object coordinates wrap around these.
const (
	PlaneWidth  = 512
	PlaneHeight = 256
)

func newPlane(ctx RenderContext, pal *NCLR) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, PlaneWidth, PlaneHeight))
	if ctx.Background == BackgroundColor0 && pal.Len() > 0 {
		c := pal.Color(0)
		for i := 0; i < len(m.Pix); i += 4 {
			m.Pix[i+0] = c.R
			m.Pix[i+1] = c.G
			m.Pix[i+2] = c.B
			m.Pix[i+3] = c.A
		}
	}
	return m
}

// plot writes c at (x, y) modulo the plane size. Transparent colors and
// bounds markers are left alone.
func plot(m *image.NRGBA, x, y int, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	x = mod(x, PlaneWidth)
	y = mod(y, PlaneHeight)
	i := m.PixOffset(x, y)
	if m.Pix[i+3] == BoundsColor.A && m.Pix[i] == BoundsColor.R && m.Pix[i+1] == BoundsColor.G && m.Pix[i+2] == BoundsColor.B {
		return
	}
	m.Pix[i+0] = c.R
	m.Pix[i+1] = c.G
	m.Pix[i+2] = c.B
	m.Pix[i+3] = c.A
}

// drawBounds outlines r, in plane coordinates relative to origin.
func drawBounds(m *image.NRGBA, r image.Rectangle, origin image.Point) {
	r = r.Add(origin)
	for x := r.Min.X; x <= r.Max.X; x++ {
		plot(m, x, r.Min.Y, BoundsColor)
		plot(m, x, r.Max.Y, BoundsColor)
	}
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		plot(m, r.Min.X, y, BoundsColor)
		plot(m, r.Max.X, y, BoundsColor)
	}
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}

// resolveColor maps a pixel index to a color. Index 0 is transparent unless
// the context asks for opaque rendering.
func resolveColor(ctx RenderContext, pal *NCLR, base int, index uint8) color.NRGBA {
	if index == 0 && !ctx.Opaque {
		return Transparent
	}
	i := base + int(index)
	if i >= pal.Len() {
		if pal != nil {
			ctx.logf("palette index %d out of range (%d colors)", i, pal.Len())
		}
		return Transparent
	}
	return pal.Color(i)
}
