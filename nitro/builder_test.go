package nitro

import (
	"encoding/binary"
)

// Helpers that assemble resource files in memory.

func u16(v int) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(v))
	return b[:]
}

func u32(v int) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	return b[:]
}

func cat(parts ...[]byte) []byte {
	var b []byte
	for _, p := range parts {
		b = append(b, p...)
	}
	return b
}

// section wraps payload in a tagged, length-prefixed section.
func section(magic string, payload []byte) []byte {
	return cat([]byte(magic), u32(8+len(payload)), payload)
}

// file prepends a common header to sections.
func file(magic string, sections ...[]byte) []byte {
	body := cat(sections...)
	return cat(
		[]byte(magic),
		u16(bomLittle),
		u16(0x0100),
		u32(headerSize+len(body)),
		u16(headerSize),
		u16(len(sections)),
		body,
	)
}

// legacyFile is file with the old layout: section lengths exclude their
// prefix and the declared size only counts the prefixes.
func legacyFile(magic string, sections ...[]byte) []byte {
	var body []byte
	for _, s := range sections {
		s = append([]byte(nil), s...)
		binary.LittleEndian.PutUint32(s[4:], uint32(len(s)-8))
		body = append(body, s...)
	}
	return cat(
		[]byte(magic),
		u16(bomLittle),
		u16(0x0100),
		u32(headerSize+8*len(sections)),
		u16(headerSize),
		u16(len(sections)),
		body,
	)
}

// paletteFile builds an NCLR with the given depth code (3 for 4bpp, 4 for
// 8bpp).
func paletteFile(code int, colors ...RGB15) []byte {
	data := make([]byte, 0, 2*len(colors))
	for _, c := range colors {
		data = append(data, u16(int(c))...)
	}
	return file("RLCN", paletteSection(code, len(data), data))
}

func paletteSection(code, length int, data []byte) []byte {
	return section("TTLP", cat(
		u16(code), u16(0),
		u32(0),
		u32(length),
		u32(0x10),
		data,
	))
}

// grayRamp returns n distinct colors.
func grayRamp(n int) []RGB15 {
	colors := make([]RGB15, n)
	for i := range colors {
		v := RGB15(i % 32)
		colors[i] = v | v<<5 | v<<10
	}
	return colors
}

type charSpec struct {
	width, height int // declared, in tiles
	code          int // 3 for 4bpp, 4 for 8bpp
	gx            int
	order         byte
	data          []byte
}

func graphicFile(c charSpec) []byte {
	return file("RGCN", section("RAHC", cat(
		u16(c.height), u16(c.width),
		u32(c.code),
		u32(c.gx),
		[]byte{c.order, 0, 0, 0},
		u32(len(c.data)),
		u32(0x18),
		c.data,
	)))
}

// solidTiles4 returns n packed 4bpp tiles, tile i filled with index fill[i].
func solidTiles4(fill ...uint8) []byte {
	tiles := make([]Tile, len(fill))
	for i, v := range fill {
		for j := range tiles[i] {
			tiles[i][j] = v
		}
	}
	return PackTiles4(tiles)
}

type cellSpec struct {
	oams   []OAM
	bounds *[4]int // maxX, maxY, minX, minY for bank type 1
}

// cellFile builds an NCER. Partitions, when given, are one offset/size pair
// per cell.
func cellFile(bankType, mapping int, cells []cellSpec, partitions [][2]int) []byte {
	var table, objs []byte
	for _, c := range cells {
		table = append(table, cat(u16(len(c.oams)), u16(0), u32(len(objs)))...)
		if bankType == 1 {
			var b [4]int
			if c.bounds != nil {
				b = *c.bounds
			}
			table = append(table, cat(u16(b[0]), u16(b[1]), u16(b[2]), u16(b[3]))...)
		}
		for _, o := range c.oams {
			objs = append(objs, cat(u16(int(o[0])), u16(int(o[1])), u16(int(o[2])))...)
		}
	}
	head := 0x18
	body := cat(table, objs)
	partitionOffset := 0
	var parts []byte
	if partitions != nil {
		partitionOffset = head + len(body)
		largest := 0
		for _, p := range partitions {
			if p[1] > largest {
				largest = p[1]
			}
			parts = append(parts, cat(u32(p[0]), u32(p[1]))...)
		}
		parts = cat(u32(largest), u32(8), parts)
	}
	return file("RECN", section("KBEC", cat(
		u16(len(cells)), u16(bankType),
		u32(head),
		u32(mapping),
		u32(partitionOffset),
		u32(0), u32(0),
		body,
		parts,
	)))
}

type frameSpec struct {
	duration int
	data     []byte
}

func indexFrame(cell, duration int) frameSpec {
	return frameSpec{duration, cat(u16(cell), u16(indexMarker))}
}

func translateFrame(cell, duration, x, y int) frameSpec {
	return frameSpec{duration, cat(u16(cell), u16(translateMarker), u16(x), u16(y))}
}

func srtFrame(cell, duration, rot, sx, sy, x, y int) frameSpec {
	return frameSpec{duration, cat(u16(cell), u16(rot), u32(sx), u32(sy), u16(x), u16(y))}
}

type seqSpec struct {
	mode   PlayMode
	frames []frameSpec
}

func animFile(seqs ...seqSpec) []byte {
	var seqTable, frameTable, data []byte
	total := 0
	for _, s := range seqs {
		seqTable = append(seqTable, cat(
			u16(len(s.frames)), u16(0),
			u16(0), u16(int(SequenceCell)),
			u32(int(s.mode)),
			u32(len(frameTable)),
		)...)
		for _, f := range s.frames {
			frameTable = append(frameTable, cat(u32(len(data)), u16(f.duration), u16(translateMarker))...)
			data = append(data, f.data...)
		}
		total += len(s.frames)
	}
	seqOff := 0x18
	frameOff := seqOff + len(seqTable)
	dataOff := frameOff + len(frameTable)
	return file("RNAN", section("KNBA", cat(
		u16(len(seqs)), u16(total),
		u32(seqOff),
		u32(frameOff),
		u32(dataOff),
		u32(0), u32(0),
		seqTable,
		frameTable,
		data,
	)))
}

// oam assembles attribute words for a normal object.
func oam(x, y int, shape, size uint, tile int, pal uint) OAM {
	return OAM{
		uint16(y&0xFF) | uint16(shape)<<14,
		uint16(x&0x1FF) | uint16(size)<<14,
		uint16(tile&0x3FF) | uint16(pal)<<12,
	}
}
