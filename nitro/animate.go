package nitro

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"

	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// ErrNoSequence is returned when a sequence index is out of range.
var ErrNoSequence = errors.New("no such sequence")

// An Animation renders the sequences of an NANR through its cell bank.
// Rendered cells are cached, so an Animation should be discarded after the
// cell bank, tile bank or palette is swapped. It is safe for concurrent use.
type Animation struct {
	nanr  *NANR
	ctx   RenderContext
	cache *cellCache
}

func NewAnimation(nanr *NANR, ctx RenderContext) *Animation {
	return &Animation{nanr: nanr, ctx: ctx, cache: newCellCache()}
}

func (a *Animation) cells() *NCER {
	if a.nanr == nil {
		return nil
	}
	return a.nanr.Cells
}

func (a *Animation) palette() *NCLR {
	if c := a.cells(); c != nil {
		return c.palette()
	}
	return nil
}

// cell composites cell i, or fetches it from the cache. The result is
// shared and must not be modified.
func (a *Animation) cell(i int, ctx RenderContext) *image.NRGBA {
	ncer := a.cells()
	key := cellKey(i, ctx, ncer.palette())
	if m := a.cache.get(key); m != nil {
		return m
	}
	m := ncer.Composite(i, ctx, CompositeParams{Origin: CenterOrigin})
	a.cache.put(key, m)
	return m
}

// RenderFrame draws the frame of sequence seq that is showing after elapsed
// ticks. Missing sequences, cells or cell banks produce an empty plane.
func (a *Animation) RenderFrame(seq, elapsed int) *image.NRGBA {
	if a.nanr == nil || seq < 0 || seq >= len(a.nanr.Sequences) {
		a.ctx.logf("NANR: no sequence %d", seq)
		return newPlane(a.ctx, a.palette())
	}
	s := &a.nanr.Sequences[seq]
	f, _ := s.FrameAt(elapsed)
	return a.renderFrame(s, f)
}

// renderFrame draws one frame record of s.
func (a *Animation) renderFrame(s *Sequence, f Frame) *image.NRGBA {
	pal := a.palette()
	if a.cells() == nil {
		return newPlane(a.ctx, pal)
	}
	if s.Kind == SequenceMultiCell {
		// Frames name multi-cells, which have no bank to draw from.
		a.ctx.logf("NANR: multi-cell sequence, frame %d not drawn", f.Cell)
		return newPlane(a.ctx, pal)
	}
	if f.Variant == FrameIndex || (f.X == 0 && f.Y == 0 && f.Rotate == 0 && f.ScaleX == 1<<12 && f.ScaleY == 1<<12) {
		return clonePlane(a.cell(f.Cell, a.ctx))
	}

	// Transform the cell on its own and lay it over the background.
	cellCtx := a.ctx
	cellCtx.Background = BackgroundTransparent
	src := a.cell(f.Cell, cellCtx)
	dst := newPlane(a.ctx, pal)
	draw.NearestNeighbor.Transform(dst, frameTransform(f, CenterOrigin), src, src.Bounds(), draw.Over, nil)
	return dst
}

// frameTransform returns the source-to-destination matrix for f: scale,
// then rotate, about origin, then translate.
func frameTransform(f Frame, origin image.Point) f64.Aff3 {
	sx := float64(f.ScaleX) / (1 << 12)
	sy := float64(f.ScaleY) / (1 << 12)
	theta := float64(f.Rotate) / 65536 * 2 * math.Pi
	sin, cos := math.Sincos(theta)
	a, b := cos*sx, -sin*sy
	d, e := sin*sx, cos*sy
	ox, oy := float64(origin.X), float64(origin.Y)
	return f64.Aff3{
		a, b, ox + float64(f.X) - (a*ox + b*oy),
		d, e, oy + float64(f.Y) - (d*ox + e*oy),
	}
}

func clonePlane(m *image.NRGBA) *image.NRGBA {
	c := image.NewNRGBA(m.Rect)
	copy(c.Pix, m.Pix)
	return c
}

// GIF renders one pass of sequence seq, each frame record held for its
// duration. Looping modes produce a looping GIF. Frames are cropped to the
// area any of them draws on and reduced to a shared palette.
func (a *Animation) GIF(seq int) (*gif.GIF, error) {
	if a.nanr == nil || seq < 0 || seq >= len(a.nanr.Sequences) {
		return nil, fmt.Errorf("%w: %d", ErrNoSequence, seq)
	}
	s := &a.nanr.Sequences[seq]

	var frames []*image.NRGBA
	var ticks []int
	for _, i := range s.PlayOrder() {
		f := s.Frames[i]
		if f.Duration <= 0 {
			continue
		}
		frames = append(frames, a.renderFrame(s, f))
		ticks = append(ticks, f.Duration)
	}
	if len(frames) == 0 {
		frames = append(frames, newPlane(a.ctx, a.palette()))
		ticks = append(ticks, 1)
	}

	r := image.Rectangle{}
	for _, m := range frames {
		r = r.Union(opaqueBounds(m))
	}
	if r.Empty() {
		r = image.Rect(0, 0, 1, 1)
	}
	pal := gifPalette(frames, r)

	g := new(gif.GIF)
	t := 0
	for i, m := range frames {
		p := image.NewPaletted(image.Rect(0, 0, r.Dx(), r.Dy()), pal)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				p.SetColorIndex(x-r.Min.X, y-r.Min.Y, paletteIndex(pal, m.NRGBAAt(x, y)))
			}
		}
		tt := t + ticks[i]
		g.Image = append(g.Image, p)
		g.Delay = append(g.Delay, tt*100/60-t*100/60)
		g.Disposal = append(g.Disposal, gif.DisposalBackground)
		t = tt
	}
	if s.Mode != PlayLoop && s.Mode != PlayReverseLoop {
		g.LoopCount = -1
	}
	g.Config = image.Config{ColorModel: pal, Width: r.Dx(), Height: r.Dy()}
	return g, nil
}

// gifPalette collects the colors used inside r. Index 0 is transparent.
// Frames with too many colors are quantized.
func gifPalette(frames []*image.NRGBA, r image.Rectangle) color.Palette {
	seen := map[color.NRGBA]bool{}
	pal := color.Palette{color.NRGBA{}}
	for _, m := range frames {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				c := m.NRGBAAt(x, y)
				if c.A == 0 || seen[c] {
					continue
				}
				seen[c] = true
				pal = append(pal, c)
			}
		}
	}
	if len(pal) <= 256 {
		return pal
	}

	sheet := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()*len(frames)))
	for i, m := range frames {
		dp := image.Pt(0, i*r.Dy())
		draw.Draw(sheet, r.Sub(r.Min).Add(dp), m, r.Min, draw.Src)
	}
	q := quantize.MedianCutQuantizer{}
	return q.Quantize(pal[:1:256], sheet)
}

// opaqueBounds returns the smallest rectangle holding every visible pixel.
func opaqueBounds(m *image.NRGBA) image.Rectangle {
	r := image.Rectangle{}
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if m.Pix[m.PixOffset(x, y)+3] != 0 {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return r
}

// paletteIndex prefers an exact match over the nearest color, and never
// picks the transparent entry for a visible pixel.
func paletteIndex(p color.Palette, c color.NRGBA) uint8 {
	if c.A == 0 {
		return 0
	}
	cr, cg, cb, ca := c.RGBA()
	for i, v := range p {
		vr, vg, vb, va := v.RGBA()
		if cr == vr && cg == vg && cb == vb && ca == va {
			return uint8(i)
		}
	}
	if len(p) < 2 {
		return 0
	}
	return uint8(p[1:].Index(c) + 1)
}
