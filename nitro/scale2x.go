package nitro

import (
	"image"
	"image/draw"
)

// Scale2x doubles m with the scale2x algorithm, which smooths diagonal
// edges without adding colors.
func Scale2x(m image.Image) *image.NRGBA {
	r := m.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx()*2, r.Dy()*2))
	scale2x(dst, image.Point{}, m, r)
	return dst
}

// ScaleN applies Scale2x n times.
func ScaleN(m image.Image, n int) image.Image {
	for i := 0; i < n; i++ {
		m = Scale2x(m)
	}
	return m
}

// TODO: Specialize for *image.Paletted and *Tiled.
func scale2x(dst draw.Image, dp image.Point, src image.Image, r image.Rectangle) {
	xlo, xhi := r.Min.X, r.Max.X
	ylo, yhi := r.Min.Y, r.Max.Y
	for dy, y := dp.Y, ylo; y < yhi; dy, y = dy+2, y+1 {
		for dx, x := dp.X, xlo; x < xhi; dx, x = dx+2, x+1 {
			// Source pixels
			c := src.At(x, y)
			t, l, r, b := c, c, c, c
			if y-1 >= ylo {
				t = src.At(x, y-1)
			}
			if y+1 < yhi {
				b = src.At(x, y+1)
			}
			if x-1 >= xlo {
				l = src.At(x-1, y)
			}
			if x+1 < xhi {
				r = src.At(x+1, y)
			}
			// Destination pixels
			tl, tr, bl, br := c, c, c, c
			if t != b && l != r {
				if t == l {
					tl = t
				}
				if t == r {
					tr = t
				}
				if b == l {
					bl = b
				}
				if b == r {
					br = b
				}
			}
			dst.Set(dx+0, dy+0, tl)
			dst.Set(dx+1, dy+0, tr)
			dst.Set(dx+0, dy+1, bl)
			dst.Set(dx+1, dy+1, br)
		}
	}
}
