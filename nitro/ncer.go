package nitro

import (
	"image"
	"io"
)

// An NCER (nitro cell resource) describes a bank of cells.
// Cells define subregions of an NCGR.
type NCER struct {
	header Header
	trailer

	Cells      []Cell
	BankType   int
	Mapping    MappingMode
	Partitions []VramPartition // nil unless the bank uses VRAM transfers

	// MaxPartition is the largest transfer, in bytes.
	MaxPartition int

	Graphic *NCGR
	Palette *NCLR // overrides the graphic's palette when set
}

// A Cell is a group of objects drawn together. Objects are drawn from last
// to first, so the first object ends up on top.
type Cell struct {
	OAMs []OAM
	Attr uint16

	// Bounds is the declared bounding rectangle. It is only present in
	// banks of type 1.
	Bounds    image.Rectangle
	HasBounds bool
}

// BoundingRadius returns the bounding sphere radius stored in the cell
// attributes.
func (c *Cell) BoundingRadius() int { return int(c.Attr&0x3F) << 2 }

// Extent returns the union of the cell's object rectangles.
func (c *Cell) Extent() image.Rectangle {
	r := image.ZR
	for _, obj := range c.OAMs {
		if obj.Disabled() {
			continue
		}
		r = r.Union(obj.Bounds())
	}
	return r
}

// mappingTable translates the cell bank's mapping byte.
var mappingTable = [5]MappingMode{Map1D32K, Map1D64K, Map1D128K, Map1D256K, Map2D}

// DecodeNCER decodes a cell bank.
func DecodeNCER(b []byte) (*NCER, error) {
	return new(Decoder).DecodeNCER(b)
}

// ReadNCER reads a cell bank from r.
func ReadNCER(r io.Reader) (*NCER, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeNCER(b)
}

func (d *Decoder) DecodeNCER(b []byte) (*NCER, error) {
	h, err := ParseHeader(b, "RECN")
	if err != nil {
		return nil, err
	}
	s, err := requireSection(b, h, "KBEC")
	if err != nil {
		return nil, err
	}
	p := s.Bytes(b)
	if err := check(p, 0, 0x20); err != nil {
		return nil, err
	}
	ncer := &NCER{header: h, trailer: readTrailer(b, h)}
	count := int(le.Uint16(p[0x8:]))
	ncer.BankType = int(le.Uint16(p[0xA:]))
	dataOffset := int(le.Uint32(p[0xC:]))
	if m := int(p[0x10]); m < len(mappingTable) {
		ncer.Mapping = mappingTable[m]
	} else {
		d.logf("NCER: unknown mapping type %d", m)
		ncer.Mapping = Map1D32K
	}
	partitionOffset := int(le.Uint32(p[0x14:]))

	recSize := 8
	if ncer.BankType == 1 {
		recSize += 8
	}
	table := 8 + dataOffset
	if dataOffset == 0 {
		table = 0x20
	}
	if err := check(p, table, count*recSize); err != nil {
		return nil, err
	}
	objBase := table + count*recSize

	ncer.Cells = make([]Cell, count)
	for i := range ncer.Cells {
		c := &ncer.Cells[i]
		rec := p[table+i*recSize:]
		n := int(le.Uint16(rec[0:]))
		c.Attr = le.Uint16(rec[2:])
		objOffset := int(le.Uint32(rec[4:]))
		if n == 0 {
			c.OAMs = []OAM{disabledOAM}
		} else {
			off := objBase + objOffset
			if err := check(p, off, n*6); err != nil {
				return nil, err
			}
			c.OAMs = make([]OAM, n)
			for j := range c.OAMs {
				o := p[off+j*6:]
				c.OAMs[j] = OAM{le.Uint16(o[0:]), le.Uint16(o[2:]), le.Uint16(o[4:])}
			}
		}
		if ncer.BankType == 1 {
			maxX := int(int16(le.Uint16(rec[8:])))
			maxY := int(int16(le.Uint16(rec[10:])))
			minX := int(int16(le.Uint16(rec[12:])))
			minY := int(int16(le.Uint16(rec[14:])))
			c.Bounds = image.Rectangle{image.Pt(minX, minY), image.Pt(maxX, maxY)}
			c.HasBounds = true
		}
	}

	if partitionOffset != 0 {
		if err := ncer.decodeVramPartitions(p, 8+partitionOffset); err != nil {
			return nil, err
		}
	}
	return ncer, nil
}

func (ncer *NCER) Header() Header { return ncer.header }
func (ncer *NCER) Kind() Kind     { return KindCells }

// Len returns the number of cells in the cell bank.
func (ncer *NCER) Len() int { return len(ncer.Cells) }

// SetGraphic replaces the tile bank cells are drawn from.
func (ncer *NCER) SetGraphic(g *NCGR) { ncer.Graphic = g }

// SetPalette replaces the palette cells are drawn with.
func (ncer *NCER) SetPalette(p *NCLR) { ncer.Palette = p }

func (ncer *NCER) palette() *NCLR {
	if ncer.Palette != nil {
		return ncer.Palette
	}
	if ncer.Graphic != nil {
		return ncer.Graphic.Palette
	}
	return nil
}

// Window returns the VRAM transfer window of cell i, or nil if the bank does
// not use transfers.
func (ncer *NCER) Window(i int) *VramWindow {
	if i < 0 || i >= len(ncer.Partitions) {
		return nil
	}
	part := ncer.Partitions[i]
	return &VramWindow{Offset: part.Offset, Size: part.Size}
}

// Image renders every cell side by side, each cropped to its extent.
func (ncer *NCER) Image(ctx RenderContext) image.Image {
	var rects []image.Rectangle
	width, height := 0, 0
	for i := range ncer.Cells {
		r := ncer.Cells[i].Extent()
		rects = append(rects, r)
		width += r.Dx()
		if r.Dy() > height {
			height = r.Dy()
		}
	}
	sheet := image.NewNRGBA(image.Rect(0, 0, width, height))
	x := 0
	for i, r := range rects {
		m := ncer.Composite(i, ctx, CompositeParams{Origin: CenterOrigin})
		src := r.Add(CenterOrigin)
		for y := 0; y < r.Dy(); y++ {
			for dx := 0; dx < r.Dx(); dx++ {
				c := m.NRGBAAt(mod(src.Min.X+dx, PlaneWidth), mod(src.Min.Y+y, PlaneHeight))
				sheet.SetNRGBA(x+dx, y, c)
			}
		}
		x += r.Dx()
	}
	return sheet
}
