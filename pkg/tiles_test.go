package pkg

import (
	"testing"

	"github.com/ecopia-map/cloud_colorizer/internal/raster"
	"github.com/ecopia-map/cloud_colorizer/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridTile(t *testing.T, path string, originX, originY, pixel float64, w, h int) *raster.RasterTile {
	t.Helper()
	tile, err := raster.NewRasterTile(path, w, h, raster.GeoTransform{
		OriginX:     originX,
		OriginY:     originY,
		PixelWidth:  pixel,
		PixelHeight: -pixel,
	}, make([]byte, w*h*3))
	require.NoError(t, err)
	return tile
}

func TestDescribeCatalog(t *testing.T) {
	catalog := raster.NewCatalog(
		gridTile(t, "a.tif", 0, 10, 1, 10, 10),
		gridTile(t, "b.tif", 5, 10, 0.5, 20, 20),
		gridTile(t, "c.tif", 100, 110, 1, 10, 10),
	)

	lines := DescribeCatalog(catalog)
	require.Len(t, lines, 4)
	assert.Equal(t, "#0 a.tif 10x10 pixel 1x1 bounds [0.000 0.000 10.000 10.000]", lines[0])
	assert.Equal(t, "#1 b.tif 20x20 pixel 0.5x0.5 bounds [5.000 0.000 15.000 10.000] shadowed by [0]", lines[1])
	assert.Equal(t, "#2 c.tif 10x10 pixel 1x1 bounds [100.000 100.000 110.000 110.000]", lines[2])
	assert.Equal(t, "coverage [0.000 0.000 110.000 110.000]", lines[3])
}

func TestDescribeEmptyCatalog(t *testing.T) {
	assert.Equal(t, []string{"no tiles"}, DescribeCatalog(raster.NewCatalog()))
}

func TestTileListerRun(t *testing.T) {
	f := newFixture(t, 1)
	f.options.Command = "tiles"
	require.NoError(t, NewTileLister(tools.NewStandardFileFinder()).Run(f.options))

	f.options.TilePriority = []string{"west.tif"}
	assert.Error(t, NewTileLister(tools.NewStandardFileFinder()).Run(f.options))
}
