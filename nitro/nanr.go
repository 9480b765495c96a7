package nitro

import (
	"image"
	"io"

	"golang.org/x/image/math/fixed"
)

// An NANR (nitro animation resource) sequences cells into animations.
type NANR struct {
	header Header
	trailer
	abnk _ABNK

	Sequences []Sequence

	// Cells is the cell bank frames refer to. It may be nil.
	Cells *NCER
}

// ElementKind is the layout of a sequence's frame data.
type ElementKind int

const (
	ElementIndex ElementKind = iota
	ElementSRT
	ElementTranslate
)

// SequenceKind says whether a sequence animates cells or multi-cells.
type SequenceKind int

const (
	SequenceCell      SequenceKind = 1
	SequenceMultiCell SequenceKind = 2
)

// PlayMode is how a sequence behaves when it runs out of frames.
type PlayMode int

const (
	PlayInvalid     PlayMode = iota
	PlayForward              // stop on the last frame
	PlayLoop                 // start over
	PlayReverse              // play back to the first frame and stop
	PlayReverseLoop          // bounce back and forth
)

var playModeNames = [...]string{"invalid", "forward", "loop", "reverse", "reverse loop"}

func (m PlayMode) String() string {
	if m < 0 || int(m) >= len(playModeNames) {
		return playModeNames[0]
	}
	return playModeNames[m]
}

// An animated cell.
type Sequence struct {
	LoopStart   int
	Element     ElementKind
	Kind        SequenceKind
	Mode        PlayMode
	StartOffset uint32 // offset of the first frame record, as stored

	// StartFrame offsets playback. It is zero after decoding.
	StartFrame int

	Frames []Frame
}

// FrameVariant identifies which fields of a Frame are meaningful.
type FrameVariant int

const (
	FrameIndex     FrameVariant = iota // cell only
	FrameSRT                           // cell, rotation, scale and translation
	FrameTranslate                     // cell and translation
)

// A frame of an animated cell.
type Frame struct {
	DataOffset uint32
	Duration   int // 60 fps
	Variant    FrameVariant
	Cell       int
	Rotate     uint16 // angle in units of (tau/65536)
	ScaleX     fixed.Int52_12
	ScaleY     fixed.Int52_12
	X          int
	Y          int
}

// DecodeNANR decodes an animation bank.
func DecodeNANR(b []byte) (*NANR, error) {
	return new(Decoder).DecodeNANR(b)
}

// ReadNANR reads an animation bank from r.
func ReadNANR(r io.Reader) (*NANR, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeNANR(b)
}

func (d *Decoder) DecodeNANR(b []byte) (*NANR, error) {
	h, err := ParseHeader(b, "RNAN")
	if err != nil {
		return nil, err
	}
	s, err := requireSection(b, h, "KNBA")
	if err != nil {
		return nil, err
	}
	p := s.Bytes(b)
	nanr := &NANR{header: h, trailer: readTrailer(b, h)}
	if err := readRecords(p, 8, &nanr.abnk); err != nil {
		return nil, err
	}
	abnk := &nanr.abnk

	// Table offsets count from the end of the section prefix.
	seqTable := 8 + int(abnk.SequenceOffset)
	frameTable := 8 + int(abnk.FrameOffset)
	dataTable := 8 + int(abnk.FrameDataOffset)

	seqs := make([]sequenceRecord, abnk.SequenceCount)
	if err := readRecords(p, seqTable, seqs); err != nil {
		return nil, err
	}
	nanr.Sequences = make([]Sequence, len(seqs))
	total := 0
	for i, rec := range seqs {
		seq := &nanr.Sequences[i]
		seq.LoopStart = int(rec.LoopStart)
		seq.Element = ElementKind(rec.Element)
		seq.Kind = SequenceKind(rec.Kind)
		seq.Mode = PlayMode(rec.PlayMode)
		seq.StartOffset = rec.FrameOffset

		frames := make([]frameRecord, rec.FrameCount)
		if err := readRecords(p, frameTable+int(rec.FrameOffset), frames); err != nil {
			return nil, err
		}
		seq.Frames = make([]Frame, len(frames))
		for j, fr := range frames {
			f, err := parseFrame(p, dataTable+int(fr.DataOffset))
			if err != nil {
				return nil, err
			}
			f.DataOffset = fr.DataOffset
			f.Duration = int(fr.Duration)
			seq.Frames[j] = f
		}
		total += len(frames)
	}
	if total != int(abnk.FrameCount) {
		d.logf("NANR: %d frames declared, %d referenced", abnk.FrameCount, total)
	}
	return nanr, nil
}

// parseFrame decodes the frame data at p[off:]. The halfword after the cell
// index tells the layouts apart.
func parseFrame(p []byte, off int) (Frame, error) {
	var f Frame
	f.ScaleX = 1 << 12
	f.ScaleY = 1 << 12
	if err := check(p, off, 4); err != nil {
		return f, err
	}
	b := p[off:]
	f.Cell = int(le.Uint16(b[0:]))
	switch le.Uint16(b[2:]) {
	case indexMarker:
		f.Variant = FrameIndex
	case translateMarker:
		if err := check(p, off, 8); err != nil {
			return f, err
		}
		f.Variant = FrameTranslate
		f.X = int(int16(le.Uint16(b[4:])))
		f.Y = int(int16(le.Uint16(b[6:])))
	default:
		if err := check(p, off, 16); err != nil {
			return f, err
		}
		f.Variant = FrameSRT
		f.Rotate = le.Uint16(b[2:])
		f.ScaleX = fixed.Int52_12(int32(le.Uint32(b[4:])))
		f.ScaleY = fixed.Int52_12(int32(le.Uint32(b[8:])))
		f.X = int(int16(le.Uint16(b[12:])))
		f.Y = int(int16(le.Uint16(b[14:])))
	}
	return f, nil
}

func (nanr *NANR) Header() Header { return nanr.header }
func (nanr *NANR) Kind() Kind     { return KindAnimation }

// Len returns the number of sequences.
func (nanr *NANR) Len() int { return len(nanr.Sequences) }

// SetCells replaces the cell bank frames are drawn from.
func (nanr *NANR) SetCells(c *NCER) { nanr.Cells = c }

// Image renders the first frame of the first sequence.
func (nanr *NANR) Image(ctx RenderContext) image.Image {
	return NewAnimation(nanr, ctx).RenderFrame(0, 0)
}
