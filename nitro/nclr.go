package nitro

import (
	"image"
	"image/color"
	"io"

	"github.com/cespare/xxhash/v2"
)

// An NCLR (nitro color resource) defines a color palette.
type NCLR struct {
	header Header
	trailer

	BitDepth   Depth
	Compressed bool
	Colors     []RGB15

	fallback bool
}

// Transparent is returned for palette lookups that miss.
var Transparent = color.NRGBA{}

// DecodeNCLR decodes a palette resource.
func DecodeNCLR(b []byte) (*NCLR, error) {
	return new(Decoder).DecodeNCLR(b)
}

// ReadNCLR reads a palette resource from r.
func ReadNCLR(r io.Reader) (*NCLR, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeNCLR(b)
}

func (d *Decoder) DecodeNCLR(b []byte) (*NCLR, error) {
	h, err := ParseHeader(b, "RLCN")
	if err != nil {
		return nil, err
	}
	s, err := requireSection(b, h, "TTLP")
	if err != nil {
		return nil, err
	}
	nclr := &NCLR{header: h, trailer: readTrailer(b, h)}
	p := s.Bytes(b)
	if err := check(p, 0, 0x18); err != nil {
		return nil, err
	}

	nclr.BitDepth = depthFromCode(uint32(le.Uint16(p[0x8:])))
	nclr.Compressed = p[0xA] != 0
	length := int(le.Uint32(p[0x10:]))
	if length == 0 || length > s.Size {
		d.logf("NCLR: payload length %#x does not fit section of %#x bytes", length, s.Size)
		length = s.Size - 0x18
		if length < 0 {
			length = 0
		}
		nclr.fallback = true
	}

	n := length / 2
	if nominal := nclr.BitDepth.Colors(); n < nominal {
		n = nominal
	}

	start := 8 + int(le.Uint32(p[0x14:]))
	if start <= 8 || start >= len(p) {
		start = 0x18
	}
	nclr.Colors = make([]RGB15, n)
	short := false
	for i := range nclr.Colors {
		off := start + i*2
		if off+2 > len(p) {
			short = true
			break
		}
		nclr.Colors[i] = RGB15(le.Uint16(p[off:]) & 0x7FFF)
	}
	if short {
		d.logf("NCLR: color data truncated; missing colors are black")
	}
	return nclr, nil
}

func (nclr *NCLR) Header() Header { return nclr.header }
func (nclr *NCLR) Kind() Kind     { return KindPalette }

// Len returns the total number of colors in the table.
func (nclr *NCLR) Len() int {
	if nclr == nil {
		return 0
	}
	return len(nclr.Colors)
}

// Color returns the color at index i, or Transparent if there is no such color.
func (nclr *NCLR) Color(i int) color.NRGBA {
	if nclr == nil || i < 0 || i >= len(nclr.Colors) {
		return Transparent
	}
	return nclr.Colors[i].NRGBA()
}

// Palettes splits the table into sub-palettes of 16 or 256 colors, depending
// on the bit depth. It returns nil if the table does not divide evenly.
func (nclr *NCLR) Palettes() []color.Palette {
	per := nclr.BitDepth.Colors()
	if len(nclr.Colors)%per != 0 {
		return nil
	}
	pals := make([]color.Palette, len(nclr.Colors)/per)
	for i := range pals {
		pals[i] = nclr.Palette(i)
	}
	return pals
}

// Palette returns sub-palette n. Entries past the end of the table are
// Transparent.
func (nclr *NCLR) Palette(n int) color.Palette {
	per := nclr.BitDepth.Colors()
	pal := make(color.Palette, per)
	for i := range pal {
		j := n*per + i
		if n < 0 || j >= len(nclr.Colors) {
			pal[i] = Transparent
			continue
		}
		pal[i] = nclr.Colors[j]
	}
	return pal
}

// Image draws the color table as a grid of swatches, 16 to a row. Index 0
// of each sub-palette is drawn transparent unless ctx.Opaque is set.
func (nclr *NCLR) Image(ctx RenderContext) image.Image {
	const swatch, cols = 8, 16
	per := nclr.BitDepth.Colors()
	rows := (len(nclr.Colors) + cols - 1) / cols
	m := image.NewNRGBA(image.Rect(0, 0, cols*swatch, rows*swatch))
	for i := range nclr.Colors {
		c := nclr.Color(i)
		if i%per == 0 && !ctx.Opaque {
			c = Transparent
		}
		x0, y0 := i%cols*swatch, i/cols*swatch
		for y := y0; y < y0+swatch; y++ {
			for x := x0; x < x0+swatch; x++ {
				m.SetNRGBA(x, y, c)
			}
		}
	}
	return m
}

// IsIR reports whether the palette looks like an infrared variant: a whole
// number of sub-palettes followed by one trailing color.
func (nclr *NCLR) IsIR() bool {
	per := nclr.BitDepth.Colors()
	n := len(nclr.Colors)
	return n > per && n%per == 1
}

// PayloadFallback reports whether the declared payload length was unusable
// and the section size was used instead.
func (nclr *NCLR) PayloadFallback() bool { return nclr.fallback }

// Digest returns a hash of the color table. A nil palette hashes to 0.
func (nclr *NCLR) Digest() uint64 {
	if nclr == nil {
		return 0
	}
	b := make([]byte, 2*len(nclr.Colors))
	for i, c := range nclr.Colors {
		le.PutUint16(b[2*i:], uint16(c))
	}
	return xxhash.Sum64(b)
}

// RGB15 is a packed BGR555 color.
type RGB15 uint16

func (rgb RGB15) RGBA() (r, g, b, a uint32) {
	r = (uint32(rgb>>0&31)*0xFFFF + 15) / 31
	g = (uint32(rgb>>5&31)*0xFFFF + 15) / 31
	b = (uint32(rgb>>10&31)*0xFFFF + 15) / 31
	a = 0xFFFF
	return
}

// NRGBA returns the color expanded to 8 bits per channel.
func (rgb RGB15) NRGBA() color.NRGBA {
	r, g, b, _ := rgb.RGBA()
	return color.NRGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 0xFF}
}

func (rgb RGB15) String() string {
	const hex = "0123456789ABCDEF"
	var s [5]byte
	s[0] = '#'
	s[1] = hex[rgb>>12&0xF]
	s[2] = hex[rgb>>8&0xF]
	s[3] = hex[rgb>>4&0xF]
	s[4] = hex[rgb&0xF]
	return string(s[:])
}

// Depth is the number of bits per pixel of indexed graphics.
type Depth int

const (
	Depth4 Depth = 4
	Depth8 Depth = 8
)

// depthFromCode maps the on-disk pixel format code to a bit depth.
func depthFromCode(code uint32) Depth {
	if code == 4 {
		return Depth8
	}
	return Depth4
}

// Colors returns the number of colors addressable by one pixel.
func (d Depth) Colors() int {
	if d == Depth8 {
		return 256
	}
	return 16
}

// TileBytes returns the size in bytes of one 8x8 tile.
func (d Depth) TileBytes() int {
	if d == Depth8 {
		return 64
	}
	return 32
}
