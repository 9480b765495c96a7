package nitro

import (
	"bytes"
	"encoding/binary"
	"io"
)

// ABNK chunk used in NANR.

type _ABNK struct {
	SequenceCount uint16 // number of sequences
	FrameCount    uint16 // total number of frames

	SequenceOffset  uint32
	FrameOffset     uint32
	FrameDataOffset uint32

	_ uint32
	_ uint32
}

type sequenceRecord struct {
	FrameCount  uint16
	LoopStart   uint16 // index of first frame
	Element     uint16 // frame data layout: index, SRT, translate
	Kind        uint16 // cell or multi-cell
	PlayMode    uint32 // invalid, forward, forward loop, reverse, reverse loop
	FrameOffset uint32
}

type frameRecord struct {
	DataOffset uint32
	Duration   uint16 // 60 fps
	_          uint16 // usually 0xBEEF
}

// Markers stored in the second halfword of frame data.
const (
	indexMarker     = 0xCCCC
	translateMarker = 0xBEEF
)

// readRecords fills v from p[off:], reporting short data as a BoundsError.
func readRecords(p []byte, off int, v interface{}) error {
	n := binary.Size(v)
	if err := check(p, off, n); err != nil {
		return err
	}
	err := binary.Read(bytes.NewReader(p[off:off+n]), le, v)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return &BoundsError{Off: off, Len: n, Size: len(p)}
	}
	return err
}
