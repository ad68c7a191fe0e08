package resolver

import (
	"math"
	"sync/atomic"

	"github.com/ecopia-map/cloud_colorizer/internal/raster"
)

// FallbackColor is given to points that no tile covers
var FallbackColor = [3]uint8{128, 128, 128}

// Stats summarizes where the colors came from
type Stats struct {
	Misses int64   // points outside every tile
	Hits   []int64 // points colored by each tile, in priority order
}

func (s Stats) Resolved() int64 {
	var n int64
	for _, h := range s.Hits {
		n += h
	}
	return n
}

// ColorResolver picks, for every point, the first tile in priority order containing it and samples it.
// It is safe for concurrent use, the counters are the only shared mutable state.
type ColorResolver struct {
	tiles    []*raster.RasterTile
	fallback [3]uint8
	misses   atomic.Int64
	hits     []atomic.Int64
}

func NewColorResolver(catalog *raster.Catalog, fallback [3]uint8) *ColorResolver {
	return &ColorResolver{
		tiles:    catalog.Tiles(),
		fallback: fallback,
		hits:     make([]atomic.Int64, catalog.Len()),
	}
}

// Locate returns the index of the tile coloring (x, y), or -1 when no tile contains it
func (r *ColorResolver) Locate(x, y float64) int {
	for i, t := range r.tiles {
		if t.Contains(x, y) {
			return i
		}
	}
	return -1
}

// Resolve returns the color of a single point
func (r *ColorResolver) Resolve(x, y float64) [3]uint8 {
	i := r.Locate(x, y)
	if i < 0 {
		r.misses.Add(1)
		return r.fallback
	}
	r.hits[i].Add(1)
	return r.tiles[i].SampleWorld(x, y)
}

// ResolveRange colors the points lo..hi-1 writing colors[i] for each of them. Points are grouped
// by the tile that wins them and each group is sampled in one pass over that tile.
// The result is the same as calling Resolve on every point.
func (r *ColorResolver) ResolveRange(xs, ys []float64, lo, hi int, colors [][3]uint8) {
	if hi <= lo {
		return
	}

	pending := make([]int, 0, hi-lo)
	for i := lo; i < hi; i++ {
		pending = append(pending, i)
	}
	chunkLeft, chunkBottom, chunkRight, chunkTop := envelope(xs[lo:hi], ys[lo:hi])

	inside := make([]int, 0, hi-lo)
	rest := make([]int, 0, hi-lo)
	for ti, t := range r.tiles {
		if len(pending) == 0 {
			break
		}
		b := t.Bounds
		if b.Left > chunkRight || b.Right < chunkLeft || b.Bottom > chunkTop || b.Top < chunkBottom {
			continue
		}

		inside, rest = inside[:0], rest[:0]
		for _, i := range pending {
			if b.Contains(xs[i], ys[i]) {
				inside = append(inside, i)
			} else {
				rest = append(rest, i)
			}
		}
		if len(inside) == 0 {
			continue
		}

		t.SampleBatch(xs, ys, inside, colors)
		r.hits[ti].Add(int64(len(inside)))
		pending, rest = rest, pending
	}

	for _, i := range pending {
		colors[i] = r.fallback
	}
	r.misses.Add(int64(len(pending)))
}

func (r *ColorResolver) Misses() int64 {
	return r.misses.Load()
}

func (r *ColorResolver) Stats() Stats {
	s := Stats{
		Misses: r.misses.Load(),
		Hits:   make([]int64, len(r.hits)),
	}
	for i := range r.hits {
		s.Hits[i] = r.hits[i].Load()
	}
	return s
}

func envelope(xs, ys []float64) (left, bottom, right, top float64) {
	left, bottom = math.Inf(1), math.Inf(1)
	right, top = math.Inf(-1), math.Inf(-1)
	for i := range xs {
		left = math.Min(left, xs[i])
		right = math.Max(right, xs[i])
		bottom = math.Min(bottom, ys[i])
		top = math.Max(top, ys[i])
	}
	return
}
