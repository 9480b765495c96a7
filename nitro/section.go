package nitro

// A Section is a magic-tagged, length-prefixed block following the header.
// Size always includes the 8-byte prefix, whatever the file's layout.
type Section struct {
	Magic  [4]byte
	Offset int
	Size   int
}

// Bytes returns the whole section, prefix included, clipped to b.
func (s Section) Bytes(b []byte) []byte {
	end := s.Offset + s.Size
	if end > len(b) {
		end = len(b)
	}
	if s.Offset > end {
		return nil
	}
	return b[s.Offset:end]
}

// Data returns the section payload following the 8-byte prefix.
func (s Section) Data(b []byte) []byte {
	p := s.Bytes(b)
	if len(p) < 8 {
		return nil
	}
	return p[8:]
}

// Sections walks the section chain of b. The walk stops at the first section
// that would run past the declared file size or the end of b.
func Sections(b []byte, h Header) []Section {
	var list []Section
	walkSections(b, h, func(s Section) bool {
		list = append(list, s)
		return true
	})
	return list
}

// LocateSection returns the first section tagged magic.
func LocateSection(b []byte, h Header, magic string) (Section, bool) {
	var found Section
	ok := false
	walkSections(b, h, func(s Section) bool {
		if string(s.Magic[:]) == magic {
			found, ok = s, true
			return false
		}
		return true
	})
	return found, ok
}

func walkSections(b []byte, h Header, fn func(Section) bool) {
	limit := int(h.Size)
	if limit > len(b) || limit == 0 || h.Legacy() {
		limit = len(b)
	}
	off := int(h.HeaderSize)
	for off+8 <= limit {
		var s Section
		copy(s.Magic[:], b[off:off+4])
		s.Offset = off
		s.Size = int(le.Uint32(b[off+4:]))
		if h.Legacy() {
			s.Size += 8
		}
		if s.Size < 8 || off+s.Size > limit {
			return
		}
		if !fn(s) {
			return
		}
		off += s.Size
	}
}

// trailer holds the optional LABL and UEXT sections, which are kept as raw
// bytes and never interpreted.
type trailer struct {
	Labels    []byte
	Extension []byte
}

func readTrailer(b []byte, h Header) trailer {
	var t trailer
	if s, ok := LocateSection(b, h, "LBAL"); ok {
		t.Labels = s.Data(b)
	} else if s, ok := LocateSection(b, h, "LABL"); ok {
		t.Labels = s.Data(b)
	}
	if s, ok := LocateSection(b, h, "TXEU"); ok {
		t.Extension = s.Data(b)
	} else if s, ok := LocateSection(b, h, "UEXT"); ok {
		t.Extension = s.Data(b)
	}
	return t
}
