package nitro

import (
	"errors"
	"fmt"
	"io"
)

// A NARC (nitro archive) is a flat container of files, optionally named.
type NARC struct {
	header Header
	fatb   _FATB

	records []fatRecord
	names   []string // by file ID; nil when the archive is unnamed
	data    []byte   // GMIF payload
}

type _FATB struct {
	FileCount uint16
	_         uint16
}

type fatRecord struct {
	Start uint32
	End   uint32
}

// ErrNoFile is returned when an archive member does not exist.
var ErrNoFile = errors.New("no such file")

// DecodeNARC decodes an archive. File contents are not copied.
func DecodeNARC(b []byte) (*NARC, error) {
	h, err := readHeader(b, "NARC")
	if err != nil {
		return nil, err
	}
	narc := &NARC{header: h}

	fat, err := requireSection(b, h, "BTAF")
	if err != nil {
		return nil, err
	}
	p := fat.Bytes(b)
	if err := readRecords(p, 8, &narc.fatb); err != nil {
		return nil, err
	}
	narc.records = make([]fatRecord, narc.fatb.FileCount)
	if err := readRecords(p, 12, narc.records); err != nil {
		return nil, err
	}

	if fnt, ok := LocateSection(b, h, "BTNF"); ok {
		narc.names = readNames(fnt.Data(b), len(narc.records))
	}

	img, err := requireSection(b, h, "GMIF")
	if err != nil {
		return nil, err
	}
	narc.data = img.Data(b)
	return narc, nil
}

// ReadNARC reads an archive from r.
func ReadNARC(r io.Reader) (*NARC, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeNARC(b)
}

// readNames walks the file name table. Directory names become path
// prefixes separated by slashes. Unnamed archives, which only have the root
// entry, yield nil.
func readNames(p []byte, count int) []string {
	if len(p) < 8 {
		return nil
	}
	dirs := int(le.Uint16(p[6:]))
	if dirs == 0 || dirs*8 > len(p) {
		return nil
	}
	names := make([]string, count)
	named := false
	var walk func(dir int, prefix string, depth int)
	walk = func(dir int, prefix string, depth int) {
		if dir >= dirs || depth > dirs {
			return
		}
		off := int(le.Uint32(p[dir*8:]))
		id := int(le.Uint16(p[dir*8+4:]))
		for off < len(p) {
			n := int(p[off])
			off++
			if n == 0 {
				return
			}
			isDir := n&0x80 != 0
			n &= 0x7F
			if off+n > len(p) {
				return
			}
			name := prefix + string(p[off:off+n])
			off += n
			if isDir {
				if off+2 > len(p) {
					return
				}
				sub := int(le.Uint16(p[off:]) & 0xFFF)
				off += 2
				walk(sub, name+"/", depth+1)
				continue
			}
			if id < count {
				names[id] = name
				named = true
			}
			id++
		}
	}
	walk(0, "", 0)
	if !named {
		return nil
	}
	return names
}

func (narc *NARC) Header() Header { return narc.header }

func (narc *NARC) FileCount() int {
	return len(narc.records)
}

// Name returns the name of file n, or "" if the archive is unnamed.
func (narc *NARC) Name(n int) string {
	if n < 0 || n >= len(narc.names) {
		return ""
	}
	return narc.names[n]
}

// Lookup returns the ID of the file called name.
func (narc *NARC) Lookup(name string) (int, bool) {
	for i, s := range narc.names {
		if s == name {
			return i, true
		}
	}
	return 0, false
}

// OpenRaw returns the stored bytes of file n.
func (narc *NARC) OpenRaw(n int) ([]byte, error) {
	if n < 0 || n >= len(narc.records) {
		return nil, fmt.Errorf("NARC.Open: %w: %d", ErrNoFile, n)
	}
	rec := narc.records[n]
	start, end := int(rec.Start), int(rec.End)
	if end < start {
		end = start
	}
	if err := check(narc.data, start, end-start); err != nil {
		return nil, err
	}
	return narc.data[start:end], nil
}

// Open returns the contents of file n, decompressed if it looks compressed.
func (narc *NARC) Open(n int) ([]byte, error) {
	raw, err := narc.OpenRaw(n)
	if err != nil {
		return nil, err
	}
	if KindOf(raw) != KindUnknown {
		return raw, nil
	}
	data, err := Decompress(raw, DefaultCodecs)
	if errors.Is(err, ErrNotCompressed) {
		return raw, nil
	}
	return data, err
}

func (narc *NARC) OpenNCGR(n int) (*NCGR, error) {
	b, err := narc.Open(n)
	if err != nil {
		return nil, err
	}
	return DecodeNCGR(b, MapDefault)
}

func (narc *NARC) OpenNCLR(n int) (*NCLR, error) {
	b, err := narc.Open(n)
	if err != nil {
		return nil, err
	}
	return DecodeNCLR(b)
}

func (narc *NARC) OpenNCER(n int) (*NCER, error) {
	b, err := narc.Open(n)
	if err != nil {
		return nil, err
	}
	return DecodeNCER(b)
}

func (narc *NARC) OpenNANR(n int) (*NANR, error) {
	b, err := narc.Open(n)
	if err != nil {
		return nil, err
	}
	return DecodeNANR(b)
}
