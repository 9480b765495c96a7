// Package nitro decodes and renders the Nintendo DS "nitro" 2D graphics
// resources: palettes (NCLR), character graphics (NCGR), cell banks (NCER)
// and cell animations (NANR).
//
// Every resource starts with a common 16-byte header followed by a chain of
// size-prefixed sections. Decoding is pure with respect to the input buffer;
// rendering allocates a fresh image on every call.
package nitro

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var le = binary.LittleEndian

// Byte-order marks. The swapped form appears in a handful of titles whose
// version field is stored big-endian.
const (
	bomLittle  = 0xFEFF
	bomSwapped = 0xFFFE
)

const headerSize = 16

// Header is the common file header.
type Header struct {
	Magic        [4]byte
	BOM          uint16
	Version      uint16
	Size         uint32
	HeaderSize   uint16
	SectionCount uint16
}

// Legacy reports whether the file uses the old layout in which stored
// section lengths exclude the 8-byte section prefix.
func (h Header) Legacy() bool {
	return int(h.Size) == int(h.HeaderSize)+int(h.SectionCount)*8
}

func (h Header) String() string {
	return fmt.Sprintf("%s v%d.%d size=%d sections=%d", h.Magic[:], h.Version>>8, h.Version&0xFF, h.Size, h.SectionCount)
}

var (
	ErrWrongMagic            = errors.New("wrong magic")
	ErrUnsupportedHeaderSize = errors.New("unsupported header size")
	ErrUnsupportedVersion    = errors.New("unsupported version")
)

// A FormatError reports a structural problem with a file or section.
type FormatError struct {
	Err  error  // one of the Err* values
	Got  string // tag or value found
	Want string // tag or value expected
}

func (err *FormatError) Error() string {
	if err.Want == "" {
		return "nitro: " + err.Err.Error() + ": " + err.Got
	}
	return "nitro: " + err.Err.Error() + ": expected " + err.Want + ", got " + err.Got
}

func (err *FormatError) Unwrap() error { return err.Err }

// A BoundsError is returned when a read would run past the end of a buffer.
type BoundsError struct {
	Off  int
	Len  int
	Size int
}

func (err *BoundsError) Error() string {
	return fmt.Sprintf("nitro: read of %d bytes at %#x out of bounds (size %#x)", err.Len, err.Off, err.Size)
}

// check returns a BoundsError unless b[off:off+n] is valid.
func check(b []byte, off, n int) error {
	if off < 0 || n < 0 || off+n > len(b) {
		return &BoundsError{Off: off, Len: n, Size: len(b)}
	}
	return nil
}

// ParseHeader reads the common header at the start of b and checks that its
// magic matches.
func ParseHeader(b []byte, magic string) (Header, error) {
	h, err := readHeader(b, magic)
	if err != nil {
		return h, err
	}
	if h.Version>>8 != 1 {
		return h, &FormatError{Err: ErrUnsupportedVersion, Got: fmt.Sprintf("%#04x", h.Version)}
	}
	return h, nil
}

// readHeader is ParseHeader without the version check. Archives carry
// versions of their own.
func readHeader(b []byte, magic string) (Header, error) {
	var h Header
	if err := check(b, 0, headerSize); err != nil {
		return h, err
	}
	copy(h.Magic[:], b[0:4])
	if magic != "" && string(h.Magic[:]) != magic {
		return h, &FormatError{Err: ErrWrongMagic, Got: quoteTag(h.Magic[:]), Want: magic}
	}
	h.BOM = le.Uint16(b[4:])
	if h.BOM == bomSwapped {
		h.Version = binary.BigEndian.Uint16(b[6:])
	} else {
		h.Version = le.Uint16(b[6:])
	}
	h.Size = le.Uint32(b[8:])
	h.HeaderSize = le.Uint16(b[12:])
	h.SectionCount = le.Uint16(b[14:])
	if h.HeaderSize != headerSize {
		return h, &FormatError{Err: ErrUnsupportedHeaderSize, Got: fmt.Sprint(h.HeaderSize), Want: fmt.Sprint(headerSize)}
	}
	return h, nil
}

// quoteTag renders a 4-byte tag for error messages.
func quoteTag(b []byte) string {
	for _, c := range b {
		if c < 0x20 || c > 0x7E {
			return fmt.Sprintf("% x", b)
		}
	}
	return string(b)
}
