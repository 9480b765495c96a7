package nitro

import (
	"image"
	"math"
)

// CenterOrigin places object coordinate (0, 0) in the middle of the plane.
var CenterOrigin = image.Pt(PlaneWidth/2, PlaneHeight/2)

// Affine is the 2x2 matrix applied to rotation/scaling objects. It maps
// destination offsets from the object center to source offsets:
//
//	srcX = dx*A + dy*B
//	srcY = dx*C + dy*D
type Affine struct {
	A, B, C, D float64
}

// Identity leaves objects untransformed.
var Identity = Affine{A: 1, D: 1}

// CompositeParams are the per-call inputs of Composite.
type CompositeParams struct {
	// Origin is where object coordinate (0, 0) lands on the plane.
	Origin image.Point

	// Mapping overrides the bank's mapping mode when nonzero.
	Mapping MappingMode

	// Affine is applied to objects with rotation/scaling enabled. The
	// zero value means Identity.
	Affine Affine
}

// Composite draws cell i onto a fresh 512x256 plane. Objects are painted
// from the last to the first, and transparent pixels never replace what is
// underneath. A bank with no graphic, or a cell that does not exist, yields
// an empty plane.
func (ncer *NCER) Composite(i int, ctx RenderContext, p CompositeParams) *image.NRGBA {
	pal := ncer.palette()
	plane := newPlane(ctx, pal)
	if i < 0 || i >= len(ncer.Cells) {
		ctx.logf("NCER: no cell %d (%d cells)", i, len(ncer.Cells))
		return plane
	}
	cell := &ncer.Cells[i]
	if ctx.ShowBounds && cell.HasBounds {
		drawBounds(plane, cell.Bounds, p.Origin)
	}
	g := ncer.Graphic
	if g == nil {
		return plane
	}
	mapping := p.Mapping
	if mapping == MapDefault {
		mapping = ncer.Mapping
	}
	aff := p.Affine
	if aff == (Affine{}) {
		aff = Identity
	}
	win := ncer.Window(i)
	for j := len(cell.OAMs) - 1; j >= 0; j-- {
		drawObj(plane, cell.OAMs[j], g, pal, mapping, win, p.Origin, aff, ctx)
	}
	return plane
}

// charBase converts a character name to a tile number.
func charBase(mapping MappingMode, name int, depth Depth) int {
	return mapping.Boundary() * name / depth.TileBytes()
}

// objBlock assembles the tiles of an object into one image.
func objBlock(g *NCGR, obj OAM, mapping MappingMode, win *VramWindow, ctx RenderContext) *Tiled {
	w, h := obj.Size()
	block := NewTiled(image.Rect(0, 0, w, h), nil)
	base := charBase(mapping, obj.Tile(), g.Depth)
	tw, th := w/8, h/8
	stride := tw
	if mapping == Map2D {
		// character memory is 32 units of 32 bytes wide
		stride = 32 * 32 / g.Depth.TileBytes()
	}
	for ty := 0; ty < th; ty++ {
		for tx := 0; tx < tw; tx++ {
			block.SetTile(ty*tw+tx, g.renderTile(base+ty*stride+tx, win, ctx))
		}
	}
	return block
}

func drawObj(plane *image.NRGBA, obj OAM, g *NCGR, pal *NCLR, mapping MappingMode, win *VramWindow, origin image.Point, aff Affine, ctx RenderContext) {
	if obj.Disabled() {
		return
	}
	w, h := obj.Size()
	if w == 0 {
		return
	}
	block := objBlock(g, obj, mapping, win, ctx)
	palBase := 0
	if g.Depth == Depth4 {
		palBase = int(obj.Palette()) * 16
	}
	x := origin.X + obj.X()
	y := origin.Y + obj.Y()

	if !obj.RotScale() {
		block = block.Flip(obj.FlipX(), obj.FlipY())
		for j := 0; j < h; j++ {
			for k := 0; k < w; k++ {
				idx := block.ColorIndexAt(k, j)
				if idx == 0 {
					continue
				}
				plot(plane, x+k, y+j, resolveColor(ctx, pal, palBase, idx))
			}
		}
		return
	}

	rw, rh := w, h
	if obj.Double() {
		rw, rh = w*2, h*2
	}
	cx, cy := float64(rw)/2, float64(rh)/2
	hw, hh := float64(w)/2, float64(h)/2
	for j := 0; j < rh; j++ {
		for k := 0; k < rw; k++ {
			dx := float64(k) - cx
			dy := float64(j) - cy
			sx := int(math.Floor(dx*aff.A + dy*aff.B + hw))
			sy := int(math.Floor(dx*aff.C + dy*aff.D + hh))
			if sx < 0 || sy < 0 || sx >= w || sy >= h {
				continue
			}
			idx := block.ColorIndexAt(sx, sy)
			if idx == 0 {
				continue
			}
			plot(plane, x+k, y+j, resolveColor(ctx, pal, palBase, idx))
		}
	}
}
