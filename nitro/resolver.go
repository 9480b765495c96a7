package nitro

import (
	"io/fs"
	"strconv"
)

// An AssetResolver finds companion files: given the base name of a resource
// and an extension such as ".NCLR", it returns the companion's bytes.
type AssetResolver interface {
	FindSibling(base, ext string) ([]byte, bool)
}

// ResolverFunc adapts a function to AssetResolver.
type ResolverFunc func(base, ext string) ([]byte, bool)

func (f ResolverFunc) FindSibling(base, ext string) ([]byte, bool) {
	return f(base, ext)
}

// DirResolver finds companions in a file system by replacing the extension.
type DirResolver struct {
	FS fs.FS
}

func (r DirResolver) FindSibling(base, ext string) ([]byte, bool) {
	b, err := fs.ReadFile(r.FS, base+ext)
	if err != nil {
		return nil, false
	}
	return b, true
}

// NARCResolver finds companions inside an archive. Named archives are
// searched by name. In unnamed archives base is a file number, and the
// companion is the nearest file within Radius of it whose magic matches
// ext.
type NARCResolver struct {
	Archive *NARC

	// Radius limits the search in unnamed archives. Zero means 4.
	Radius int
}

var extKinds = map[string]Kind{
	".NCLR": KindPalette, ".nclr": KindPalette,
	".NCGR": KindGraphic, ".ncgr": KindGraphic,
	".NCER": KindCells, ".ncer": KindCells,
	".NANR": KindAnimation, ".nanr": KindAnimation,
}

func (r NARCResolver) FindSibling(base, ext string) ([]byte, bool) {
	narc := r.Archive
	if narc == nil {
		return nil, false
	}
	if i, ok := narc.Lookup(base + ext); ok {
		b, err := narc.Open(i)
		return b, err == nil
	}
	n, err := strconv.Atoi(base)
	if err != nil {
		return nil, false
	}
	want, ok := extKinds[ext]
	if !ok {
		return nil, false
	}
	radius := r.Radius
	if radius == 0 {
		radius = 4
	}
	// Look at n itself first, then step outward, preferring later files.
	for d := 0; d <= radius; d++ {
		for _, i := range []int{n + d, n - d} {
			b, err := narc.Open(i)
			if err != nil {
				continue
			}
			if KindOf(b) == want {
				return b, true
			}
		}
	}
	return nil, false
}
