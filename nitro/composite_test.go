package nitro

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBank returns a cell bank over a 4bpp tile bank whose tile i is filled
// with fill[i], and a 32-color palette.
func testBank(t *testing.T, mapping int, cells []cellSpec, partitions [][2]int, tiles []byte) (*NCER, *NCLR) {
	t.Helper()
	nclr, err := DecodeNCLR(paletteFile(3, grayRamp(32)...))
	require.NoError(t, err)
	ncgr, err := DecodeNCGR(graphicFile(charSpec{width: 0xFFFF, height: 0xFFFF, code: 3, gx: 0x10, data: tiles}), MapDefault)
	require.NoError(t, err)
	ncgr.SetPalette(nclr)
	ncer, err := DecodeNCER(cellFile(0, mapping, cells, partitions))
	require.NoError(t, err)
	ncer.SetGraphic(ncgr)
	return ncer, nclr
}

var atZero = CompositeParams{}

func TestCompositeEmptyCell(t *testing.T) {
	ncer, _ := testBank(t, 0, []cellSpec{{}}, nil, solidTiles4(1))
	m := ncer.Composite(0, RenderContext{}, CompositeParams{Origin: CenterOrigin})
	assert.Equal(t, image.Rect(0, 0, PlaneWidth, PlaneHeight), m.Bounds())
	for i := 3; i < len(m.Pix); i += 4 {
		if m.Pix[i] != 0 {
			t.Fatalf("pixel %d is not transparent", i/4)
		}
	}
}

func TestCompositeNoGraphic(t *testing.T) {
	ncer, err := DecodeNCER(cellFile(0, 0, []cellSpec{{oams: []OAM{oam(0, 0, 0, 0, 0, 0)}}}, nil))
	require.NoError(t, err)
	m := ncer.Composite(0, RenderContext{}, atZero)
	assert.Equal(t, Transparent, m.NRGBAAt(0, 0))
	m = ncer.Composite(7, RenderContext{}, atZero)
	assert.Equal(t, image.Rect(0, 0, PlaneWidth, PlaneHeight), m.Bounds())
}

func TestCompositeSingleObject(t *testing.T) {
	cells := []cellSpec{{oams: []OAM{oam(4, 2, 0, 0, 1, 0)}}}
	ncer, nclr := testBank(t, 0, cells, nil, solidTiles4(1, 6))
	m := ncer.Composite(0, RenderContext{}, atZero)
	assert.Equal(t, nclr.Color(6), m.NRGBAAt(4, 2))
	assert.Equal(t, nclr.Color(6), m.NRGBAAt(11, 9))
	assert.Equal(t, Transparent, m.NRGBAAt(12, 2))
	assert.Equal(t, Transparent, m.NRGBAAt(3, 2))
}

func TestCompositeFirstObjectOnTop(t *testing.T) {
	cells := []cellSpec{{oams: []OAM{
		oam(0, 0, 0, 0, 1, 0),
		oam(4, 0, 0, 0, 2, 0),
	}}}
	ncer, nclr := testBank(t, 0, cells, nil, solidTiles4(0, 1, 2))
	m := ncer.Composite(0, RenderContext{}, atZero)
	assert.Equal(t, nclr.Color(1), m.NRGBAAt(5, 0), "overlap shows the first object")
	assert.Equal(t, nclr.Color(2), m.NRGBAAt(10, 0))
}

func TestCompositeTransparentIndex(t *testing.T) {
	cells := []cellSpec{{oams: []OAM{
		oam(0, 0, 0, 0, 1, 0), // all index 0
		oam(0, 0, 0, 0, 2, 0),
	}}}
	ncer, nclr := testBank(t, 0, cells, nil, solidTiles4(0, 0, 3))
	for _, opaque := range []bool{false, true} {
		m := ncer.Composite(0, RenderContext{Opaque: opaque}, atZero)
		assert.Equal(t, nclr.Color(3), m.NRGBAAt(2, 2))
	}
}

func TestCompositeSubPalette(t *testing.T) {
	cells := []cellSpec{{oams: []OAM{oam(0, 0, 0, 0, 1, 1)}}}
	ncer, nclr := testBank(t, 0, cells, nil, solidTiles4(0, 3))
	m := ncer.Composite(0, RenderContext{}, atZero)
	assert.Equal(t, nclr.Color(16+3), m.NRGBAAt(0, 0))
}

func TestCompositeFlip(t *testing.T) {
	var tile Tile
	for i := range tile {
		tile[i] = 2
	}
	tile[0] = 1 // top left corner
	tiles := cat(solidTiles4(0), PackTiles4([]Tile{tile}))

	for _, tt := range []struct {
		attr1  uint16
		corner image.Point
	}{
		{0, image.Pt(0, 0)},
		{1 << 12, image.Pt(7, 0)},
		{1 << 13, image.Pt(0, 7)},
		{3 << 12, image.Pt(7, 7)},
	} {
		obj := oam(0, 0, 0, 0, 1, 0)
		obj[1] |= tt.attr1
		ncer, nclr := testBank(t, 0, []cellSpec{{oams: []OAM{obj}}}, nil, tiles)
		m := ncer.Composite(0, RenderContext{}, atZero)
		assert.Equal(t, nclr.Color(1), m.NRGBAAt(tt.corner.X, tt.corner.Y), "flip %#x", tt.attr1)
		assert.Equal(t, nclr.Color(2), m.NRGBAAt(3, 3))
	}
}

func TestCompositeWraps(t *testing.T) {
	cells := []cellSpec{{oams: []OAM{oam(-4, -4, 0, 0, 1, 0)}}}
	ncer, nclr := testBank(t, 0, cells, nil, solidTiles4(0, 5))
	m := ncer.Composite(0, RenderContext{}, atZero)
	assert.Equal(t, nclr.Color(5), m.NRGBAAt(PlaneWidth-1, PlaneHeight-1))
	assert.Equal(t, nclr.Color(5), m.NRGBAAt(0, 0))
	assert.Equal(t, nclr.Color(5), m.NRGBAAt(3, 3))
	assert.Equal(t, Transparent, m.NRGBAAt(4, 4))
}

func TestCompositeMapping1D(t *testing.T) {
	// A 16x16 object in 1D mapping uses four consecutive tiles.
	cells := []cellSpec{{oams: []OAM{oam(0, 0, 0, 1, 1, 0)}}}
	ncer, nclr := testBank(t, 0, cells, nil, solidTiles4(0, 1, 2, 3, 4))
	m := ncer.Composite(0, RenderContext{}, atZero)
	assert.Equal(t, nclr.Color(1), m.NRGBAAt(0, 0))
	assert.Equal(t, nclr.Color(2), m.NRGBAAt(8, 0))
	assert.Equal(t, nclr.Color(3), m.NRGBAAt(0, 8))
	assert.Equal(t, nclr.Color(4), m.NRGBAAt(8, 8))

	// 1D 64K doubles the name boundary.
	m = ncer.Composite(0, RenderContext{}, CompositeParams{Mapping: Map1D64K})
	assert.Equal(t, nclr.Color(2), m.NRGBAAt(0, 0))
}

func TestCompositeMapping2D(t *testing.T) {
	fill := make([]uint8, 40)
	fill[1], fill[2], fill[33], fill[34] = 1, 2, 3, 4
	cells := []cellSpec{{oams: []OAM{oam(0, 0, 0, 1, 1, 0)}}}
	ncer, nclr := testBank(t, 4, cells, nil, solidTiles4(fill...))
	require.Equal(t, Map2D, ncer.Mapping)
	m := ncer.Composite(0, RenderContext{}, atZero)
	assert.Equal(t, nclr.Color(1), m.NRGBAAt(0, 0))
	assert.Equal(t, nclr.Color(2), m.NRGBAAt(8, 0))
	assert.Equal(t, nclr.Color(3), m.NRGBAAt(0, 8))
	assert.Equal(t, nclr.Color(4), m.NRGBAAt(8, 8))
}

func TestCompositeVramTransfer(t *testing.T) {
	cells := []cellSpec{
		{oams: []OAM{oam(0, 0, 0, 0, 0, 0)}},
		{oams: []OAM{oam(0, 0, 0, 0, 0, 0), oam(8, 0, 0, 0, 1, 0)}},
	}
	parts := [][2]int{{0, 32}, {64, 32}}
	ncer, nclr := testBank(t, 0, cells, parts, solidTiles4(1, 2, 3, 4))

	m := ncer.Composite(0, RenderContext{}, atZero)
	assert.Equal(t, nclr.Color(1), m.NRGBAAt(0, 0))

	m = ncer.Composite(1, RenderContext{}, atZero)
	assert.Equal(t, nclr.Color(3), m.NRGBAAt(0, 0), "name 0 is the start of the window")
	assert.Equal(t, Transparent, m.NRGBAAt(8, 0), "name 1 is past the window")
}

func TestCompositeBounds(t *testing.T) {
	cells := []cellSpec{{
		oams:   []OAM{oam(-4, -4, 0, 0, 1, 0)},
		bounds: &[4]int{4, 4, -4, -4},
	}}
	nclr, err := DecodeNCLR(paletteFile(3, grayRamp(16)...))
	require.NoError(t, err)
	ncgr, err := DecodeNCGR(graphicFile(charSpec{width: 2, height: 1, code: 3, gx: 0x10, data: solidTiles4(0, 5)}), MapDefault)
	require.NoError(t, err)
	ncgr.SetPalette(nclr)
	ncer, err := DecodeNCER(cellFile(1, 0, cells, nil))
	require.NoError(t, err)
	ncer.SetGraphic(ncgr)

	p := CompositeParams{Origin: CenterOrigin}
	m := ncer.Composite(0, RenderContext{ShowBounds: true}, p)
	o := CenterOrigin
	assert.Equal(t, BoundsColor, m.NRGBAAt(o.X-4, o.Y-4), "sprite pixels do not cover the outline")
	assert.Equal(t, BoundsColor, m.NRGBAAt(o.X+4, o.Y+4))
	assert.Equal(t, nclr.Color(5), m.NRGBAAt(o.X-3, o.Y-3))

	m = ncer.Composite(0, RenderContext{}, p)
	assert.Equal(t, nclr.Color(5), m.NRGBAAt(o.X-4, o.Y-4))
}

func TestCompositeRotScale(t *testing.T) {
	obj := oam(0, 0, 0, 0, 1, 0)
	obj[0] |= 0x0100
	ncer, nclr := testBank(t, 0, []cellSpec{{oams: []OAM{obj}}}, nil, solidTiles4(0, 7))
	m := ncer.Composite(0, RenderContext{}, atZero)
	assert.Equal(t, nclr.Color(7), m.NRGBAAt(0, 0))
	assert.Equal(t, nclr.Color(7), m.NRGBAAt(7, 7))
	assert.Equal(t, Transparent, m.NRGBAAt(8, 8))

	// Double size centers the object in twice the area.
	obj[0] |= 0x0200
	ncer, nclr = testBank(t, 0, []cellSpec{{oams: []OAM{obj}}}, nil, solidTiles4(0, 7))
	m = ncer.Composite(0, RenderContext{}, atZero)
	assert.Equal(t, Transparent, m.NRGBAAt(3, 3))
	assert.Equal(t, nclr.Color(7), m.NRGBAAt(4, 4))
	assert.Equal(t, nclr.Color(7), m.NRGBAAt(11, 11))
	assert.Equal(t, Transparent, m.NRGBAAt(12, 12))

	// Half scale: the 8x8 source fills the 16x16 area.
	m = ncer.Composite(0, RenderContext{}, CompositeParams{Affine: Affine{A: 0.5, D: 0.5}})
	assert.Equal(t, nclr.Color(7), m.NRGBAAt(0, 0))
	assert.Equal(t, nclr.Color(7), m.NRGBAAt(15, 15))
}

func TestNCERImage(t *testing.T) {
	cells := []cellSpec{
		{oams: []OAM{oam(-4, -4, 0, 0, 1, 0)}},
		{oams: []OAM{oam(0, 0, 1, 0, 2, 0)}},
	}
	ncer, nclr := testBank(t, 0, cells, nil, solidTiles4(0, 1, 2, 2))
	m := ncer.Image(RenderContext{})
	assert.Equal(t, image.Rect(0, 0, 8+16, 8), m.Bounds())
	assert.Equal(t, nclr.Color(1), m.At(0, 0))
	assert.Equal(t, nclr.Color(2), m.At(8, 0))
}
