package nitro

import (
	"bytes"
	"log"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spriteFS() fstest.MapFS {
	cells := []cellSpec{{oams: []OAM{oam(0, 0, 0, 0, 1, 0)}}}
	return fstest.MapFS{
		"obj/hero.nclr": {Data: paletteFile(3, grayRamp(16)...)},
		"obj/hero.NCGR": {Data: graphicFile(charSpec{width: 2, height: 1, code: 3, data: solidTiles4(0, 4)})},
		"obj/hero.NCER": {Data: cellFile(0, 0, cells, nil)},
		"obj/hero.NANR": {Data: animFile(seqSpec{PlayLoop, []frameSpec{indexFrame(0, 1)}})},
		"obj/bad.NCER":  {Data: cellFile(0, 0, cells, nil)},
		"obj/bad.NCGR":  {Data: paletteFile(3, grayRamp(16)...)},
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindPalette, KindOf(paletteFile(3)))
	assert.Equal(t, KindCells, KindOf(cellFile(0, 0, nil, nil)))
	assert.Equal(t, KindUnknown, KindOf([]byte("NC")))
	assert.Equal(t, KindUnknown, KindOf(lz10Run))
	assert.Equal(t, "NANR", KindAnimation.String())
	assert.Equal(t, "unknown", Kind(12).String())
}

func TestDecode(t *testing.T) {
	var d Decoder
	for _, tt := range []struct {
		b    []byte
		kind Kind
	}{
		{paletteFile(3, grayRamp(16)...), KindPalette},
		{graphicFile(charSpec{width: 1, height: 1, code: 3, data: solidTiles4(1)}), KindGraphic},
		{cellFile(0, 0, []cellSpec{{}}, nil), KindCells},
		{animFile(seqSpec{PlayForward, []frameSpec{indexFrame(0, 1)}}), KindAnimation},
	} {
		res, err := d.Decode(tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.kind, res.Kind())
		assert.Equal(t, tt.kind, KindOf(tt.b))
		_, ok := res.(Imager)
		assert.True(t, ok, "%v is an Imager", tt.kind)
	}
}

func TestDecoderMappingOverride(t *testing.T) {
	d := Decoder{Mapping: Map1D128K}
	res, err := d.Decode(graphicFile(charSpec{width: 1, height: 1, code: 3, data: solidTiles4(1)}))
	require.NoError(t, err)
	assert.Equal(t, Map1D128K, res.(*NCGR).Mapping)
}

func TestLoadLinksCompanions(t *testing.T) {
	var buf bytes.Buffer
	d := Decoder{Resolver: DirResolver{FS: spriteFS()}, Logger: log.New(&buf, "", 0)}

	res, err := d.Load("obj/hero.NANR")
	require.NoError(t, err)
	nanr := res.(*NANR)
	require.NotNil(t, nanr.Cells)
	require.NotNil(t, nanr.Cells.Graphic)
	require.NotNil(t, nanr.Cells.Graphic.Palette, "found by lowercase extension")

	m := NewAnimation(nanr, RenderContext{}).RenderFrame(0, 0)
	assert.Equal(t, nanr.Cells.Graphic.Palette.Color(4), m.NRGBAAt(CenterOrigin.X, CenterOrigin.Y))

	res, err = d.Load("obj/hero.NCGR")
	require.NoError(t, err)
	assert.NotNil(t, res.(*NCGR).Palette)
}

func TestLoadWrongCompanion(t *testing.T) {
	var buf bytes.Buffer
	d := Decoder{Resolver: DirResolver{FS: spriteFS()}, Logger: log.New(&buf, "", 0)}
	res, err := d.Load("obj/bad.NCER")
	require.NoError(t, err)
	assert.Nil(t, res.(*NCER).Graphic)
	assert.Contains(t, buf.String(), "expected NCGR, got NCLR")
}

func TestLoadErrors(t *testing.T) {
	var d Decoder
	_, err := d.Load("obj/hero.NCER")
	assert.Error(t, err, "no resolver")

	d.Resolver = DirResolver{FS: spriteFS()}
	_, err = d.Load("obj/missing.NCER")
	assert.Error(t, err)

	d.Resolver = ResolverFunc(func(base, ext string) ([]byte, bool) {
		return []byte("junk junk junk"), true
	})
	_, err = d.Load("junk.NCLR")
	assert.ErrorIs(t, err, ErrWrongMagic)
}

func TestResolverFunc(t *testing.T) {
	var asked []string
	files := spriteFS()
	d := Decoder{Resolver: ResolverFunc(func(base, ext string) ([]byte, bool) {
		asked = append(asked, base+ext)
		f, ok := files[base+ext]
		if !ok {
			return nil, false
		}
		return f.Data, true
	})}
	res, err := d.Load("obj/hero.NCER")
	require.NoError(t, err)
	assert.NotNil(t, res.(*NCER).Graphic)
	assert.Equal(t, []string{"obj/hero.NCER", "obj/hero.NCGR", "obj/hero.NCLR", "obj/hero.nclr"}, asked)
}
