package nitro

import (
	"image"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// cellCache holds composited cells keyed by cellKey.
type cellCache struct {
	mu sync.Mutex
	m  map[uint64]*image.NRGBA
}

func newCellCache() *cellCache {
	return &cellCache{m: make(map[uint64]*image.NRGBA)}
}

func (c *cellCache) get(key uint64) *image.NRGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m[key]
}

func (c *cellCache) put(key uint64, m *image.NRGBA) {
	c.mu.Lock()
	c.m[key] = m
	c.mu.Unlock()
}

// cellKey identifies a composite by cell, render options and palette
// contents.
func cellKey(cell int, ctx RenderContext, pal *NCLR) uint64 {
	var b [8]byte
	le.PutUint32(b[0:], uint32(cell))
	if ctx.Opaque {
		b[4] = 1
	}
	if ctx.ShowBounds {
		b[5] = 1
	}
	b[6] = byte(ctx.Background)
	d := xxhash.New()
	d.Write(b[:])
	le.PutUint64(b[:], pal.Digest())
	d.Write(b[:])
	return d.Sum64()
}
