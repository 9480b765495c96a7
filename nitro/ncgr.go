package nitro

import (
	"image"
	"io"
)

// A Tile is an 8x8 block of palette indices, one byte per pixel.
type Tile [64]uint8

// TileOrder is the order in which a tile bank's pixels are stored.
type TileOrder int

const (
	// Horizontal banks store pixels tile by tile; they are rearranged into
	// rows when drawn as a whole image.
	Horizontal TileOrder = iota
	// Lineal banks store pixels row by row across the whole image.
	Lineal
)

func (o TileOrder) String() string {
	if o == Lineal {
		return "lineal"
	}
	return "horizontal"
}

// MappingMode is the OBJ character mapping of the 2D engine. It decides how
// character names in OAM entries translate to tile numbers.
type MappingMode int

const (
	MapDefault MappingMode = iota // use whatever the file declares
	Map1D32K
	Map1D64K
	Map1D128K
	Map1D256K
	Map2D
)

var mappingNames = [...]string{"default", "1D 32K", "1D 64K", "1D 128K", "1D 256K", "2D"}

func (m MappingMode) String() string {
	if m < 0 || int(m) >= len(mappingNames) {
		return mappingNames[0]
	}
	return mappingNames[m]
}

// Boundary returns the number of bytes one step of a character name covers.
func (m MappingMode) Boundary() int {
	switch m {
	case Map1D64K:
		return 64
	case Map1D128K:
		return 128
	case Map1D256K:
		return 256
	}
	return 32
}

// mappingFromGX decodes a GX_OBJVRAMMODE_CHAR value.
func mappingFromGX(v uint32) MappingMode {
	if v&0x10 == 0 {
		return Map2D
	}
	return Map1D32K + MappingMode(v>>20&3)
}

// An NCGR (nitro character graphic resource) is a bank of 8x8 tiles.
type NCGR struct {
	header Header
	trailer

	Width, Height int // in tiles
	Depth         Depth
	Order         TileOrder
	Mapping       MappingMode
	Tiles         []Tile

	// Palette is used by Image. It may be nil or replaced at any time
	// with SetPalette.
	Palette *NCLR

	declaredWidth, declaredHeight int
	data                          []byte
}

// DecodeNCGR decodes a tile bank. A nonzero hint overrides the mapping mode
// declared in the file.
func DecodeNCGR(b []byte, hint MappingMode) (*NCGR, error) {
	d := Decoder{Mapping: hint}
	return d.DecodeNCGR(b)
}

// ReadNCGR reads a tile bank from r.
func ReadNCGR(r io.Reader) (*NCGR, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeNCGR(b, MapDefault)
}

func (d *Decoder) DecodeNCGR(b []byte) (*NCGR, error) {
	h, err := ParseHeader(b, "RGCN")
	if err != nil {
		return nil, err
	}
	s, err := requireSection(b, h, "RAHC")
	if err != nil {
		return nil, err
	}
	p := s.Bytes(b)
	if err := check(p, 0, 0x20); err != nil {
		return nil, err
	}
	ncgr := &NCGR{header: h, trailer: readTrailer(b, h)}
	ncgr.declaredHeight = int(le.Uint16(p[0x8:]))
	ncgr.declaredWidth = int(le.Uint16(p[0xA:]))
	ncgr.Depth = depthFromCode(le.Uint32(p[0xC:]))
	ncgr.Mapping = mappingFromGX(le.Uint32(p[0x10:]))
	if d.Mapping != MapDefault {
		ncgr.Mapping = d.Mapping
	}
	if p[0x14] == 0 {
		ncgr.Order = Horizontal
	} else {
		ncgr.Order = Lineal
	}
	size := int(le.Uint32(p[0x18:]))

	start := 8 + int(le.Uint32(p[0x1C:]))
	if start <= 8 || start > len(p) {
		start = 0x20
	}
	payload := p[start:]
	if size > len(payload) {
		d.logf("NCGR: tile data size %#x exceeds section; truncating to %#x", size, len(payload))
		size = len(payload)
	}
	ncgr.data = append([]byte(nil), payload[:size]...)

	count := size / ncgr.Depth.TileBytes()
	w, h2 := ncgr.declaredWidth, ncgr.declaredHeight
	if w == 0xFFFF || h2 == 0xFFFF || w*h2 != count {
		w, h2 = squarest(count)
		if ncgr.declaredWidth != 0xFFFF {
			d.logf("NCGR: %dx%d tiles declared but %d present; using %dx%d", ncgr.declaredWidth, ncgr.declaredHeight, count, w, h2)
		}
	}
	ncgr.Width, ncgr.Height = w, h2
	ncgr.unpack()
	return ncgr, nil
}

// squarest picks grid dimensions for n tiles: the most square factor pair,
// wider than tall. Multiples of 32 are laid out 32 tiles wide.
func squarest(n int) (w, h int) {
	if n <= 0 {
		return 0, 0
	}
	if n%32 == 0 {
		return 32, n / 32
	}
	f := 1
	for i := 1; i*i <= n; i++ {
		if n%i == 0 {
			f = i
		}
	}
	return n / f, f
}

func (ncgr *NCGR) unpack() {
	ncgr.Tiles = unpackTiles(ncgr.data, ncgr.Depth)
}

func unpackTiles(data []byte, depth Depth) []Tile {
	tiles := make([]Tile, len(data)/depth.TileBytes())
	for i := range tiles {
		t := &tiles[i]
		if depth == Depth8 {
			copy(t[:], data[i*64:])
			continue
		}
		src := data[i*32 : i*32+32]
		for j, v := range src {
			t[j*2] = v & 0xF
			t[j*2+1] = v >> 4
		}
	}
	return tiles
}

// PackTiles4 packs 4bpp tiles two pixels to a byte, low nibble first.
func PackTiles4(tiles []Tile) []byte {
	b := make([]byte, len(tiles)*32)
	for i, t := range tiles {
		for j := 0; j < 32; j++ {
			b[i*32+j] = t[j*2]&0xF | t[j*2+1]<<4
		}
	}
	return b
}

func (ncgr *NCGR) Header() Header { return ncgr.header }
func (ncgr *NCGR) Kind() Kind     { return KindGraphic }

// Len returns the number of tiles.
func (ncgr *NCGR) Len() int { return len(ncgr.Tiles) }

// SetPalette replaces the palette used for rendering.
func (ncgr *NCGR) SetPalette(p *NCLR) { ncgr.Palette = p }

// Bounds returns the size of the bank in pixels.
func (ncgr *NCGR) Bounds() image.Rectangle {
	return image.Rect(0, 0, ncgr.Width*8, ncgr.Height*8)
}

// Pix returns the pixel indices as one flat stream, in storage order.
func (ncgr *NCGR) Pix() []uint8 {
	pix := make([]uint8, len(ncgr.Tiles)*64)
	for i := range ncgr.Tiles {
		copy(pix[i*64:], ncgr.Tiles[i][:])
	}
	return pix
}

// Image renders the whole bank using its own tile order.
func (ncgr *NCGR) Image(ctx RenderContext) image.Image {
	return ncgr.ImageOrder(ctx, ncgr.Order)
}

// ImageOrder renders the whole bank, reading pixels in the given order.
// 4bpp banks use the first sub-palette.
func (ncgr *NCGR) ImageOrder(ctx RenderContext, order TileOrder) *image.NRGBA {
	r := ncgr.Bounds()
	m := image.NewNRGBA(r)
	pix := ncgr.Pix()
	if order == Horizontal {
		pix = LinealToHorizontal(pix, ncgr.Width, ncgr.Height)
	}
	w := r.Dx()
	for i, v := range pix {
		if i >= w*r.Dy() {
			break
		}
		c := resolveColor(ctx, ncgr.Palette, 0, v)
		o := m.PixOffset(i%w, i/w)
		m.Pix[o+0] = c.R
		m.Pix[o+1] = c.G
		m.Pix[o+2] = c.B
		m.Pix[o+3] = c.A
	}
	return m
}

// RenderTile returns the pixel indices of tile i. If w is not nil, i is
// resolved through the transfer window. Tiles that do not exist come back
// blank.
func (ncgr *NCGR) RenderTile(i int, w *VramWindow) Tile {
	return ncgr.renderTile(i, w, RenderContext{})
}

func (ncgr *NCGR) renderTile(i int, w *VramWindow, ctx RenderContext) Tile {
	var out Tile
	if w != nil {
		charSize := ncgr.Depth.TileBytes()
		addr := i * charSize
		if i < 0 || addr >= w.Size {
			ctx.logf("tile %d is outside the VRAM transfer window (%#x bytes)", i, w.Size)
			return out
		}
		for p := range out {
			src := addr + p
			if ncgr.Depth == Depth4 {
				src = addr + p/2
			}
			if src >= w.Size {
				continue
			}
			overlay := w.Offset + src
			tile := overlay / charSize
			off := overlay % charSize
			if ncgr.Depth == Depth4 {
				off = off*2 + p&1
			}
			if tile >= len(ncgr.Tiles) {
				continue
			}
			out[p] = ncgr.Tiles[tile][off]
		}
		return out
	}
	if i < 0 || i >= len(ncgr.Tiles) {
		ctx.logf("tile %d out of range (%d tiles)", i, len(ncgr.Tiles))
		return out
	}
	return ncgr.Tiles[i]
}

// LinealToHorizontal rearranges a stream of pixels stored tile by tile into
// rows spanning the whole image. Pixels that fall outside either buffer are
// dropped.
func LinealToHorizontal(src []uint8, tilesX, tilesY int) []uint8 {
	dst := make([]uint8, len(src))
	pos := 0
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			for h := 0; h < 8; h++ {
				for w := 0; w < 8; w++ {
					i := (w + h*8*tilesX) + tx*8 + ty*tilesX*8*8
					if pos >= len(src) || i >= len(dst) {
						pos++
						continue
					}
					dst[i] = src[pos]
					pos++
				}
			}
		}
	}
	return dst
}

// HorizontalToLineal is the inverse of LinealToHorizontal.
func HorizontalToLineal(src []uint8, tilesX, tilesY int) []uint8 {
	dst := make([]uint8, len(src))
	pos := 0
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			for h := 0; h < 8; h++ {
				for w := 0; w < 8; w++ {
					i := (w + h*8*tilesX) + tx*8 + ty*tilesX*8*8
					if pos >= len(dst) || i >= len(src) {
						pos++
						continue
					}
					dst[pos] = src[i]
					pos++
				}
			}
		}
	}
	return dst
}

// Crypt decrypts (or encrypts) the pixel data in the NCGR. This method is used
// for Pokémon and trainer sprites in D/P and HG/SS.
func (ncgr *NCGR) Crypt() {
	if len(ncgr.data) < 2 {
		return
	}
	seed := uint32(ncgr.data[0]) + uint32(ncgr.data[1])<<8
	for i := 0; i+1 < len(ncgr.data); i += 2 {
		ncgr.data[i] ^= uint8(seed >> 16)
		ncgr.data[i+1] ^= uint8(seed >> 24)
		seed = seed*0x41C64E6D + 0x6073
	}
	ncgr.unpack()
}

// CryptReverse decrypts (or encrypts) the pixel data in the NCGR. This method
// is used for Pokémon sprites in Pt.
func (ncgr *NCGR) CryptReverse() {
	if len(ncgr.data) < 2 {
		return
	}
	n := len(ncgr.data) &^ 1
	seed := uint32(ncgr.data[n-2]) +
		uint32(ncgr.data[n-1])<<8
	for i := n - 2; i >= 0; i -= 2 {
		ncgr.data[i] ^= uint8(seed >> 16)
		ncgr.data[i+1] ^= uint8(seed >> 24)
		seed = seed*0x41C64E6D + 0x6073
	}
	ncgr.unpack()
}
