package nitro

// A VramWindow is the part of character memory filled by a VRAM transfer.
// Character names are resolved relative to the window, which starts Offset
// bytes into the tile data and spans Size bytes.
type VramWindow struct {
	Offset int
	Size   int
}

// A VramPartition is the slice of character data a cell transfers into VRAM
// before it is drawn.
type VramPartition struct {
	Offset int
	Size   int
}

// decodeVramPartitions reads the partition table at off in the cell bank
// section p: the largest partition size, the offset of the first entry
// relative to the table, then one offset/size pair per cell.
func (ncer *NCER) decodeVramPartitions(p []byte, off int) error {
	if err := check(p, off, 8); err != nil {
		return err
	}
	ncer.MaxPartition = int(le.Uint32(p[off:]))
	first := int(le.Uint32(p[off+4:]))
	if first == 0 {
		first = 8
	}
	start := off + first
	if err := check(p, start, len(ncer.Cells)*8); err != nil {
		return err
	}
	ncer.Partitions = make([]VramPartition, len(ncer.Cells))
	for i := range ncer.Partitions {
		e := p[start+i*8:]
		ncer.Partitions[i] = VramPartition{
			Offset: int(le.Uint32(e[0:])),
			Size:   int(le.Uint32(e[4:])),
		}
	}
	return nil
}
