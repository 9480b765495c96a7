package nitro

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// ErrNotCompressed is returned by Decompress when no codec recognizes the
// input.
var ErrNotCompressed = errors.New("no codec recognizes data")

// A Codec unwraps one compression format.
type Codec interface {
	Name() string

	// Detect reports whether b looks like data in this format.
	Detect(b []byte) bool

	Decompress(b []byte) ([]byte, error)
}

type lzCodec struct {
	kind   byte
	decode func([]byte) ([]byte, error)
}

// LZ10 and LZ11 are the BIOS LZSS variants.
var (
	LZ10 Codec = lzCodec{0x10, decode10}
	LZ11 Codec = lzCodec{0x11, decode11}
)

func (c lzCodec) Name() string         { return fmt.Sprintf("LZ%02x", c.kind) }
func (c lzCodec) Detect(b []byte) bool { return isLZ(b, c.kind) }

func (c lzCodec) Decompress(b []byte) ([]byte, error) {
	return c.decode(b)
}

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

type zstdCodec struct{}

// Zstd unwraps zstandard frames, as produced by repackers.
var Zstd Codec = zstdCodec{}

func (zstdCodec) Name() string         { return "zstd" }
func (zstdCodec) Detect(b []byte) bool { return bytes.HasPrefix(b, zstdMagic) }

func (zstdCodec) Decompress(b []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(b, nil)
}

// DefaultCodecs is used by a Decoder with no codecs of its own.
var DefaultCodecs = []Codec{LZ10, LZ11, Zstd}

// Decompress runs b through the first codec that detects it.
func Decompress(b []byte, codecs []Codec) ([]byte, error) {
	for _, c := range codecs {
		if !c.Detect(b) {
			continue
		}
		data, err := c.Decompress(b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name(), err)
		}
		return data, nil
	}
	return nil, ErrNotCompressed
}
