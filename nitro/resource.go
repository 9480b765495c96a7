package nitro

import (
	"errors"
	"fmt"
	"image"
	"log"
	"path"
	"strings"
)

// Kind identifies the type of a resource.
type Kind int

const (
	KindUnknown Kind = iota
	KindPalette
	KindGraphic
	KindCells
	KindAnimation
)

var kindNames = [...]string{"unknown", "NCLR", "NCGR", "NCER", "NANR"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[0]
	}
	return kindNames[k]
}

// File magics, as they appear on disk.
var magics = map[string]Kind{
	"RLCN": KindPalette,
	"RGCN": KindGraphic,
	"RECN": KindCells,
	"RNAN": KindAnimation,
}

// KindOf returns the kind of resource b starts with.
func KindOf(b []byte) Kind {
	if len(b) < 4 {
		return KindUnknown
	}
	return magics[string(b[:4])]
}

// A Resource is one of *NCLR, *NCGR, *NCER or *NANR.
type Resource interface {
	Header() Header
	Kind() Kind
}

// An Imager is a resource with a renderable surface.
type Imager interface {
	Resource
	Image(ctx RenderContext) image.Image
}

// A PaletteUser renders through a palette that can be swapped.
type PaletteUser interface {
	SetPalette(*NCLR)
}

// A GraphicUser renders through a tile bank that can be swapped.
type GraphicUser interface {
	SetGraphic(*NCGR)
}

// A Decoder turns raw resource files into Resources. The zero value decodes
// uncompressed files and discards diagnostics.
type Decoder struct {
	// Logger receives diagnostics about malformed but recoverable input.
	Logger *log.Logger

	// Codecs are tried, in order, on files whose magic is not recognized.
	// If nil, DefaultCodecs is used.
	Codecs []Codec

	// Resolver finds companion files: the palette of a tile bank, the tile
	// bank of a cell bank, and so on. It may be nil.
	Resolver AssetResolver

	// Mapping overrides the mapping mode declared by tile banks when
	// nonzero.
	Mapping MappingMode
}

func (d *Decoder) logf(format string, args ...interface{}) {
	if d != nil && d.Logger != nil {
		d.Logger.Printf(format, args...)
	}
}

// Decode decodes any supported resource. If the file is not recognized it is
// run through the decoder's codecs first.
func (d *Decoder) Decode(b []byte) (Resource, error) {
	if KindOf(b) == KindUnknown {
		codecs := d.Codecs
		if codecs == nil {
			codecs = DefaultCodecs
		}
		data, err := Decompress(b, codecs)
		switch {
		case err == nil:
			b = data
		case !errors.Is(err, ErrNotCompressed):
			return nil, err
		}
	}
	switch KindOf(b) {
	case KindPalette:
		return d.DecodeNCLR(b)
	case KindGraphic:
		return d.DecodeNCGR(b)
	case KindCells:
		return d.DecodeNCER(b)
	case KindAnimation:
		return d.DecodeNANR(b)
	}
	var tag [4]byte
	copy(tag[:], b)
	return nil, &FormatError{Err: ErrWrongMagic, Got: quoteTag(tag[:])}
}

// Load decodes the file found at name by the decoder's resolver and links it
// to its companions: a tile bank gets its palette, a cell bank its tile bank
// and palette. Missing companions are not an error.
func (d *Decoder) Load(name string) (Resource, error) {
	if d.Resolver == nil {
		return nil, fmt.Errorf("nitro: no resolver to load %s", name)
	}
	ext := path.Ext(name)
	base := name[:len(name)-len(ext)]
	b, ok := d.Resolver.FindSibling(base, ext)
	if !ok {
		return nil, fmt.Errorf("nitro: %s not found", name)
	}
	res, err := d.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	d.link(base, res)
	return res, nil
}

func (d *Decoder) link(base string, res Resource) {
	switch res := res.(type) {
	case *NCGR:
		res.SetPalette(d.sibling(base, ".NCLR", KindPalette).asPalette())
	case *NCER:
		g := d.sibling(base, ".NCGR", KindGraphic).asGraphic()
		if g != nil {
			g.SetPalette(d.sibling(base, ".NCLR", KindPalette).asPalette())
		}
		res.SetGraphic(g)
	case *NANR:
		c := d.sibling(base, ".NCER", KindCells).asCells()
		if c != nil {
			d.link(base, c)
		}
		res.SetCells(c)
	}
}

type found struct{ Resource }

func (f found) asPalette() *NCLR {
	p, _ := f.Resource.(*NCLR)
	return p
}

func (f found) asGraphic() *NCGR {
	g, _ := f.Resource.(*NCGR)
	return g
}

func (f found) asCells() *NCER {
	c, _ := f.Resource.(*NCER)
	return c
}

func (d *Decoder) sibling(base, ext string, want Kind) found {
	for _, e := range []string{ext, strings.ToLower(ext)} {
		b, ok := d.Resolver.FindSibling(base, e)
		if !ok {
			continue
		}
		res, err := d.Decode(b)
		if err != nil {
			d.logf("%s%s: %v", base, e, err)
			return found{}
		}
		if res.Kind() != want {
			d.logf("%s%s: expected %v, got %v", base, e, want, res.Kind())
			return found{}
		}
		return found{res}
	}
	d.logf("%s: no %s companion", base, ext)
	return found{}
}

// requireSection locates a section that a resource cannot do without.
func requireSection(b []byte, h Header, magic string) (Section, error) {
	s, ok := LocateSection(b, h, magic)
	if ok {
		return s, nil
	}
	got := "nothing"
	if list := Sections(b, h); len(list) > 0 {
		got = quoteTag(list[0].Magic[:])
	}
	return s, &FormatError{Err: ErrWrongMagic, Got: got, Want: magic}
}
