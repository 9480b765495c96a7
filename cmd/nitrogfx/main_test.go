package main

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"github.com/zakski/rotom4j-sub002/nitro"
)

// paletteFile returns a 16-color 4bpp NCLR.
func paletteFile() []byte {
	le := binary.LittleEndian
	section := make([]byte, 0x18+32)
	copy(section, "TTLP")
	le.PutUint32(section[4:], uint32(len(section)))
	le.PutUint16(section[8:], 3)
	le.PutUint32(section[0x10:], 32)
	le.PutUint32(section[0x14:], 0x10)
	for i := 0; i < 16; i++ {
		le.PutUint16(section[0x18+2*i:], uint16(i*0x421))
	}
	head := make([]byte, 16)
	copy(head, "RLCN")
	le.PutUint16(head[4:], 0xFEFF)
	le.PutUint16(head[6:], 0x0100)
	le.PutUint32(head[8:], uint32(16+len(section)))
	le.PutUint16(head[12:], 16)
	le.PutUint16(head[14:], 1)
	return append(head, section...)
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"nitrogfx"}, args...))
	return out.String(), err
}

func writeTemp(t *testing.T, name string, b []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, b, 0o644))
	return p
}

func TestInfo(t *testing.T) {
	p := writeTemp(t, "a.NCLR", paletteFile())
	out, err := runApp(t, "info", p)
	require.NoError(t, err)
	assert.Contains(t, out, "NCLR: RLCN v1.0")
	assert.Contains(t, out, "colors: 16 at 4bpp")
	assert.Contains(t, out, "sub-palettes: 1")
}

func TestInfoMissing(t *testing.T) {
	_, err := runApp(t, "info", filepath.Join(t.TempDir(), "missing.NCLR"))
	assert.Error(t, err)
}

func TestPaletteScaled(t *testing.T) {
	p := writeTemp(t, "a.NCLR", paletteFile())
	out := filepath.Join(t.TempDir(), "out.png")
	_, err := runApp(t, "palette", "--scale", "2", "-o", out, p)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	m, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 256, m.Bounds().Dx())
	assert.Equal(t, 16, m.Bounds().Dy())
}

func TestWrongKind(t *testing.T) {
	p := writeTemp(t, "a.NCLR", paletteFile())
	_, err := runApp(t, "tiles", p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected NCGR, got NCLR")
}

func TestParseBackground(t *testing.T) {
	for s, want := range map[string]nitro.Background{
		"":            nitro.BackgroundTransparent,
		"transparent": nitro.BackgroundTransparent,
		"color0":      nitro.BackgroundColor0,
		"Color0":      nitro.BackgroundColor0,
	} {
		bg, err := parseBackground(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, bg, s)
	}
	_, err := parseBackground("black")
	assert.Error(t, err)
}

func TestBackgroundFlag(t *testing.T) {
	p := writeTemp(t, "a.NCLR", paletteFile())
	out := filepath.Join(t.TempDir(), "out.png")
	_, err := runApp(t, "palette", "--background", "color0", "-o", out, p)
	require.NoError(t, err)

	_, err = runApp(t, "palette", "--background", "bogus", "-o", out, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown background "bogus"`)

	t.Setenv("NITRO_BACKGROUND", "bogus")
	_, err = runApp(t, "palette", "-o", out, p)
	assert.Error(t, err)
}
