package nitro

import (
	"image"
	"image/color"
)

// Tiled is an image.Image whose pixels are stored as a sequence of 8x8 tiles,
// the way an object's characters sit in memory.
type Tiled struct {
	Pix     []uint8
	Stride  int // number of tiles per row
	Rect    image.Rectangle
	Palette color.Palette
}

func (t *Tiled) ColorModel() color.Model { return t.Palette }
func (t *Tiled) Bounds() image.Rectangle { return t.Rect }

// PixOffset returns the index Pix that corresponds to the pixel at (x, y).
func (t *Tiled) PixOffset(x, y int) int {
	x, y = x-t.Rect.Min.X, y-t.Rect.Min.Y
	return (y/8*t.Stride+x/8)*64 + y%8*8 + x%8
}

func (t *Tiled) ColorIndexAt(x, y int) uint8 {
	if !image.Pt(x, y).In(t.Rect) {
		return 0
	}
	i := t.PixOffset(x, y)
	if i >= len(t.Pix) {
		return 0
	}
	return t.Pix[i]
}

func (t *Tiled) SetColorIndex(x, y int, index uint8) {
	if !image.Pt(x, y).In(t.Rect) {
		return
	}
	i := t.PixOffset(x, y)
	if i >= len(t.Pix) {
		return
	}
	t.Pix[i] = index
}

func (t *Tiled) At(x, y int) color.Color {
	i := t.ColorIndexAt(x, y)
	if int(i) >= len(t.Palette) {
		return Transparent
	}
	return t.Palette[i]
}

func (t *Tiled) Set(x, y int, c color.Color) {
	if len(t.Palette) == 0 {
		return
	}
	t.SetColorIndex(x, y, uint8(t.Palette.Index(c)))
}

// SetTile stores tile n of the image.
func (t *Tiled) SetTile(n int, tile Tile) {
	if n < 0 || n*64+64 > len(t.Pix) {
		return
	}
	copy(t.Pix[n*64:], tile[:])
}

// Flip returns a copy of t mirrored horizontally, vertically, or both.
func (t *Tiled) Flip(h, v bool) *Tiled {
	if !h && !v {
		return t
	}
	m := NewTiled(t.Rect, t.Palette)
	r := t.Rect
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			sx, sy := x, y
			if h {
				sx = r.Max.X - 1 - (x - r.Min.X)
			}
			if v {
				sy = r.Max.Y - 1 - (y - r.Min.Y)
			}
			m.SetColorIndex(x, y, t.ColorIndexAt(sx, sy))
		}
	}
	return m
}

func NewTiled(r image.Rectangle, pal color.Palette) *Tiled {
	return &Tiled{
		Pix:     make([]uint8, r.Dx()*r.Dy()),
		Rect:    r,
		Stride:  r.Dx() / 8,
		Palette: pal,
	}
}
