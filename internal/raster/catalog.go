package raster

import (
	"context"
	"runtime"

	"github.com/ecopia-map/cloud_colorizer/internal/geometry"
	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

// Catalog holds the loaded tiles in priority order: when tiles overlap, the one with the lowest index wins
type Catalog struct {
	tiles []*RasterTile
}

func NewCatalog(tiles ...*RasterTile) *Catalog {
	return &Catalog{tiles: tiles}
}

// LoadCatalog decodes every path in parallel, the resulting order is the order of paths.
// Any tile failing to load aborts the whole load.
func LoadCatalog(ctx context.Context, paths []string, workers int) (*Catalog, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	tiles := make([]*RasterTile, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tile, err := LoadTile(path)
			if err != nil {
				return err
			}
			glog.V(1).Infof("loaded tile %d: %s", i, tile)
			tiles[i] = tile
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return NewCatalog(tiles...), nil
}

func (c *Catalog) Tiles() []*RasterTile {
	return c.tiles
}

func (c *Catalog) Len() int {
	return len(c.tiles)
}

func (c *Catalog) Tile(i int) *RasterTile {
	return c.tiles[i]
}

// Bounds is the union of the tile footprints, ok is false for an empty catalog
func (c *Catalog) Bounds() (geometry.BoundingBox, bool) {
	if len(c.tiles) == 0 {
		return geometry.BoundingBox{}, false
	}
	b := c.tiles[0].Bounds
	for _, t := range c.tiles[1:] {
		b = geometry.NewBoundingBox(
			min(b.Left, t.Bounds.Left), min(b.Bottom, t.Bounds.Bottom),
			max(b.Right, t.Bounds.Right), max(b.Top, t.Bounds.Top),
		)
	}
	return b, true
}

// Overlaps returns the indexes of the higher priority tiles whose footprint intersects tile i
func (c *Catalog) Overlaps(i int) []int {
	var out []int
	for j := 0; j < i; j++ {
		if c.tiles[j].Bounds.Intersects(c.tiles[i].Bounds) {
			out = append(out, j)
		}
	}
	return out
}
