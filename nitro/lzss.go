package nitro

import (
	"errors"
	"io"
)

var errMalformed = errors.New("LZSS: malformed data")

// lzReader hands out input bytes, latching io.ErrUnexpectedEOF once the
// data runs out.
type lzReader struct {
	b   []byte
	off int
	err error
}

func (r *lzReader) next() byte {
	if r.off >= len(r.b) {
		r.err = io.ErrUnexpectedEOF
		return 0
	}
	c := r.b[r.off]
	r.off++
	return c
}

// unLZ expands LZ10 or LZ11 data. The two share a token stream and differ
// only in how a back reference encodes its length.
func unLZ(b []byte, kind byte) ([]byte, error) {
	k, size, ok := lzHeader(b)
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	if k != kind {
		return nil, errMalformed
	}
	r := &lzReader{b: b, off: 4}
	data := make([]byte, 0, size)
	for len(data) < size && r.err == nil {
		flags := r.next()
		for i := 0; i < 8 && len(data) < size && r.err == nil; i, flags = i+1, flags<<1 {
			if flags&0x80 == 0 {
				data = append(data, r.next())
				continue
			}
			var count, disp int
			if kind == 0x10 {
				count, disp = backref10(r)
			} else {
				count, disp = backref11(r)
			}
			if r.err != nil {
				break
			}
			if disp > len(data) {
				return nil, errMalformed
			}
			count = min(count, size-len(data))
			for j := 0; j < count; j++ {
				data = append(data, data[len(data)-disp])
			}
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return data, nil
}

// backref10 reads a two-byte reference: 4 bits of length, 12 of distance.
func backref10(r *lzReader) (count, disp int) {
	n := int(r.next())<<8 | int(r.next())
	return n>>12 + 3, n&0xFFF + 1
}

// backref11 reads a reference whose top nibble selects a one, two or
// three byte length field.
func backref11(r *lzReader) (count, disp int) {
	n := int(r.next())<<8 | int(r.next())
	switch n >> 12 {
	case 0:
		n = n&0xFFF<<8 | int(r.next())
		count = 0x11
	case 1:
		n = n&0xFFF<<16 | int(r.next())<<8 | int(r.next())
		count = 0x111
	default:
		count = 1
	}
	return count + n>>12, n&0xFFF + 1
}

func decode10(b []byte) ([]byte, error) { return unLZ(b, 0x10) }
func decode11(b []byte) ([]byte, error) { return unLZ(b, 0x11) }

// lzHeader reads the 4-byte LZSS header: a type byte followed by the 24-bit
// decompressed size.
func lzHeader(b []byte) (kind byte, size int, ok bool) {
	if len(b) < 4 {
		return 0, 0, false
	}
	size = int(b[1]) | int(b[2])<<8 | int(b[3])<<16
	return b[0], size, true
}

// isLZ reports whether b is likely LZ-compressed with the given type byte.
// Compressed data never expands, so a declared size smaller than the input
// rules it out.
func isLZ(b []byte, kind byte) bool {
	k, size, ok := lzHeader(b)
	if !ok || k != kind {
		return false
	}
	return size >= len(b)
}
