package nitro

import "image"

// http://www.problemkaputt.de/gbatek.htm#lcdobjoamattributes

// An OAM entry is the three attribute words of one hardware object.
type OAM [3]uint16

// disabledOAM stands in for cells that declare no objects.
var disabledOAM = OAM{1 << 9, 0, 0}

// Y returns the vertical position, which wraps at 256.
func (obj OAM) Y() int { return int(int8(obj[0])) }

// X returns the horizontal position, which wraps at 512.
func (obj OAM) X() int { return int(int16(obj[1]) << 7 >> 7) }

func (obj OAM) RotScale() bool { return obj[0]>>8&1 == 1 }
func (obj OAM) Double() bool   { return obj[0]>>8&3 == 3 }
func (obj OAM) Disabled() bool { return obj[0]>>8&3 == 2 }

// Mode is the object mode: normal, semi-transparent, window or bitmap.
func (obj OAM) Mode() uint   { return uint(obj[0] >> 10 & 3) }
func (obj OAM) Mosaic() bool { return obj[0]>>12&1 == 1 }
func (obj OAM) Depth8() bool { return obj[0]>>13&1 == 1 }

func (obj OAM) Shape() uint     { return uint(obj[0] >> 14) }
func (obj OAM) SizeClass() uint { return uint(obj[1] >> 14) }

// MatrixParam selects the rotation/scaling parameter group. Parameters live
// in OAM memory proper, not in cell data, so the renderer takes the matrix
// from its caller.
func (obj OAM) MatrixParam() uint {
	if !obj.RotScale() {
		return 0
	}
	return uint(obj[1] >> 9 & 31)
}

func (obj OAM) FlipX() bool { return !obj.RotScale() && obj[1]>>12&1 == 1 }
func (obj OAM) FlipY() bool { return !obj.RotScale() && obj[1]>>13&1 == 1 }

// Tile returns the character name.
func (obj OAM) Tile() int      { return int(obj[2] & 0x3FF) }
func (obj OAM) Priority() uint { return uint(obj[2] >> 10 & 3) }
func (obj OAM) Palette() uint  { return uint(obj[2] >> 12) }

// Shapes: square, long, tall
// Sizes: small, medium-small, medium-large, large

var sizes = [][][2]int{
	{{8, 8}, {16, 16}, {32, 32}, {64, 64}},
	{{16, 8}, {32, 8}, {32, 16}, {64, 32}},
	{{8, 16}, {8, 32}, {16, 32}, {32, 64}},
}

// Size returns the object's width and height in pixels. The prohibited
// fourth shape has no size.
func (obj OAM) Size() (w, h int) {
	shape := obj.Shape()
	if shape == 3 {
		return 0, 0
	}
	s := sizes[shape][obj.SizeClass()]
	return s[0], s[1]
}

// Bounds returns the destination rectangle, doubled for double-size
// objects.
func (obj OAM) Bounds() image.Rectangle {
	w, h := obj.Size()
	if obj.Double() {
		w, h = w*2, h*2
	}
	x := obj.X()
	y := obj.Y()
	return image.Rect(x, y, x+w, y+h)
}
