package pkg

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/ecopia-map/cloud_colorizer/internal/colorizer"
	"github.com/ecopia-map/cloud_colorizer/internal/data"
	"github.com/ecopia-map/cloud_colorizer/internal/io"
	"github.com/ecopia-map/cloud_colorizer/internal/lasread"
	"github.com/ecopia-map/cloud_colorizer/internal/point_loader"
	"github.com/ecopia-map/cloud_colorizer/internal/testutil"
	"github.com/ecopia-map/cloud_colorizer/pkg/algorithm_manager/std_algorithm_manager"
	"github.com/ecopia-map/cloud_colorizer/tools"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = color.RGBA{R: 200, G: 10, B: 10, A: 255}
	blue = color.RGBA{R: 10, G: 20, B: 220, A: 255}
)

type fixture struct {
	dir     string
	input   string
	west    string // red tile over x in [0, 10], y in [0, 10]
	east    string // blue tile over x in [10, 20], y in [0, 10]
	points  []data.PointRecord
	options *colorizer.ColorizerOptions
}

// a row of points at y = 5 walking x from 0.5 to 24.5, the last five columns lie outside both tiles
func newFixture(t *testing.T, n int) *fixture {
	t.Helper()
	dir := t.TempDir()

	points := make([]data.PointRecord, n)
	for i := range points {
		points[i] = data.PointRecord{X: float64(i%25) + 0.5, Y: 5, Z: 100 + float64(i)*0.5}
	}

	f := &fixture{
		dir:    dir,
		input:  testutil.WriteLAS(t, filepath.Join(dir, "cloud.las"), points),
		west:   testutil.WriteGeoTIFF(t, filepath.Join(dir, "west.tif"), testutil.SolidImage(10, 10, red), testutil.GeoReference{OriginX: 0, OriginY: 10, PixelSize: 1}),
		east:   testutil.WriteGeoTIFF(t, filepath.Join(dir, "east.tif"), testutil.SolidImage(20, 20, blue), testutil.GeoReference{OriginX: 10, OriginY: 10, PixelSize: 0.5}),
		points: points,
	}

	opts := colorizer.NewColorizerOptions()
	opts.Input = f.input
	opts.Rasters = []string{f.west, f.east}
	opts.Stride = 1
	opts.Output = filepath.Join(dir, "out", "cloud.bin")
	opts.Workers = 3
	opts.ChunkSize = 7
	f.options = opts

	return f
}

func (f *fixture) run(t *testing.T) {
	t.Helper()
	am := std_algorithm_manager.NewAlgorithmManager(f.options)
	require.NoError(t, NewColorizer(tools.NewStandardFileFinder(), am).Run(f.options))
}

func expectedColor(x float64) [3]uint8 {
	switch {
	case x <= 10:
		return [3]uint8{red.R, red.G, red.B}
	case x <= 20:
		return [3]uint8{blue.R, blue.G, blue.B}
	default:
		return colorizer.DefaultFallbackColor
	}
}

func TestColorizerWritesPositionsThenColors(t *testing.T) {
	f := newFixture(t, 100)
	f.run(t)

	info, err := os.Stat(f.options.Output)
	require.NoError(t, err)
	assert.Equal(t, int64(100*15), info.Size())

	buf, err := io.ReadBufferFile(f.options.Output)
	require.NoError(t, err)
	require.Equal(t, 100, buf.Len())

	wantColors := make([][3]uint8, len(f.points))
	for i, p := range f.points {
		wantColors[i] = expectedColor(p.X)

		got := buf.Positions[i]
		assert.InDelta(t, p.X, got[0], 1e-3, "x of point %d", i)
		assert.InDelta(t, p.Z-100, got[1], 1e-3, "up of point %d", i)
		assert.InDelta(t, p.Y, got[2], 1e-3, "depth of point %d", i)
	}
	assert.Equal(t, float32(0), buf.Positions[0][1])

	if diff := cmp.Diff(wantColors, buf.Colors); diff != "" {
		t.Errorf("colors mismatch (-want +got):\n%s", diff)
	}
}

func TestColorizerOptionalOutputs(t *testing.T) {
	f := newFixture(t, 100)
	f.options.Manifest = filepath.Join(f.dir, "out", "cloud.json")
	f.options.CoveragePlot = filepath.Join(f.dir, "out", "coverage.png")
	f.options.LasOutput = filepath.Join(f.dir, "out", "decimated.las")
	f.options.Stride = 2
	f.run(t)

	m, err := io.ReadManifest(f.options.Manifest)
	require.NoError(t, err)
	assert.Equal(t, 100, m.TotalPoints)
	assert.Equal(t, 50, m.Points)
	assert.Equal(t, 2, m.Stride)
	assert.True(t, m.GroundOffset.Equal(decimal.NewFromInt(100)), "ground offset %s", m.GroundOffset)
	assert.Equal(t, int64(50*12), m.Layout.Colors.ByteOffset)
	assert.Empty(t, m.Region)
	require.Len(t, m.Tiles, 2)
	assert.Equal(t, f.west, m.Tiles[0].Path)

	// even indexes walk x = 0.5, 2.5, ... 24.5 then 1.5, 3.5, ... 23.5
	var west, east, miss int64
	for i := 0; i < len(f.points); i += 2 {
		switch expectedColor(f.points[i].X) {
		case [3]uint8{red.R, red.G, red.B}:
			west++
		case [3]uint8{blue.R, blue.G, blue.B}:
			east++
		default:
			miss++
		}
	}
	assert.Equal(t, west, m.Tiles[0].Hits)
	assert.Equal(t, east, m.Tiles[1].Hits)
	assert.Equal(t, miss, m.FallbackCount)
	assert.Equal(t, int64(50), west+east+miss)

	plotInfo, err := os.Stat(f.options.CoveragePlot)
	require.NoError(t, err)
	assert.Positive(t, plotInfo.Size())

	las, err := lasread.NewLasFile(f.options.LasOutput)
	require.NoError(t, err)
	defer las.Close()
	assert.Equal(t, uint64(50), las.Header.NumberPoints)
	x, _, z, err := las.GetXYZ(1)
	require.NoError(t, err)
	assert.InDelta(t, f.points[2].X, x, 1e-6)
	assert.InDelta(t, f.points[2].Z, z, 1e-6)
}

func TestColorizeDecimationHalvesThePointCount(t *testing.T) {
	f := newFixture(t, 10001)
	f.options.Stride = 2
	f.options.Rasters = nil

	am := std_algorithm_manager.NewAlgorithmManager(f.options)
	result, err := NewColorizer(tools.NewStandardFileFinder(), am).(*Colorizer).Colorize(context.Background(), f.options, nil)
	require.NoError(t, err)

	assert.Equal(t, point_loader.DecimatedLen(10001, 2), result.Output.Len())
	assert.Equal(t, 5001, result.Output.Len())
	assert.Equal(t, 10001, result.TotalPoints)
	assert.Equal(t, io.SerializedSize(5001), int64(len(io.Serialize(result.Output))))

	// no tiles: every point falls back
	assert.Equal(t, int64(5001), result.Stats.Misses)
	for i, c := range result.Output.Colors {
		require.Equal(t, colorizer.DefaultFallbackColor, c, "point %d", i)
	}
}

func TestColorizeTilePriorityDecidesOverlaps(t *testing.T) {
	f := newFixture(t, 25)
	// a green tile over the whole row
	green := color.RGBA{G: 255, A: 255}
	wide := testutil.WriteGeoTIFF(t, filepath.Join(f.dir, "wide.tif"), testutil.SolidImage(30, 10, green), testutil.GeoReference{OriginX: 0, OriginY: 10, PixelSize: 1})
	f.options.Rasters = []string{f.west, wide}

	c := NewColorizer(tools.NewStandardFileFinder(), std_algorithm_manager.NewAlgorithmManager(f.options)).(*Colorizer)

	rasters, err := c.prepareRasterList(f.options)
	require.NoError(t, err)
	result, err := c.Colorize(context.Background(), f.options, rasters)
	require.NoError(t, err)
	for i, p := range f.points {
		want := [3]uint8{0, 255, 0}
		if p.X <= 10 {
			want = [3]uint8{red.R, red.G, red.B}
		}
		assert.Equal(t, want, result.Output.Colors[i], "point %d at x %.1f", i, p.X)
	}
	assert.Zero(t, result.Stats.Misses)

	f.options.TilePriority = []string{"wide.tif", "west.tif"}
	rasters, err = c.prepareRasterList(f.options)
	require.NoError(t, err)
	assert.Equal(t, []string{wide, f.west}, rasters)

	result, err = c.Colorize(context.Background(), f.options, rasters)
	require.NoError(t, err)
	for i := range f.points {
		assert.Equal(t, [3]uint8{0, 255, 0}, result.Output.Colors[i], "point %d", i)
	}
	assert.Equal(t, []int64{25, 0}, result.Stats.Hits)
}

func TestColorizeRejectsEmptyCloud(t *testing.T) {
	f := newFixture(t, 0)

	err := NewColorizer(tools.NewStandardFileFinder(), std_algorithm_manager.NewAlgorithmManager(f.options)).Run(f.options)
	assert.ErrorIs(t, err, colorizer.ErrNoPoints)

	_, statErr := os.Stat(f.options.Output)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestColorizeRejectsInvalidStride(t *testing.T) {
	f := newFixture(t, 10)
	f.options.Stride = 0

	err := NewColorizer(tools.NewStandardFileFinder(), std_algorithm_manager.NewAlgorithmManager(f.options)).Run(f.options)
	assert.ErrorIs(t, err, point_loader.ErrInvalidStride)
}

func TestColorizeFailsOnUnreadableTile(t *testing.T) {
	f := newFixture(t, 10)
	broken := filepath.Join(f.dir, "broken.tif")
	require.NoError(t, os.WriteFile(broken, []byte("not a tiff"), 0644))
	f.options.Rasters = append(f.options.Rasters, broken)

	err := NewColorizer(tools.NewStandardFileFinder(), std_algorithm_manager.NewAlgorithmManager(f.options)).Run(f.options)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.tif")
}

func TestColorizerFailedRunLeavesNoFiles(t *testing.T) {
	f := newFixture(t, 20)
	f.options.LasOutput = filepath.Join(f.dir, "out", "decimated.las")
	// a manifest path that cannot be written as a file
	f.options.Manifest = filepath.Join(f.dir, "manifest_dir")
	require.NoError(t, os.Mkdir(f.options.Manifest, 0755))

	err := NewColorizer(tools.NewStandardFileFinder(), std_algorithm_manager.NewAlgorithmManager(f.options)).Run(f.options)
	require.Error(t, err)

	_, statErr := os.Stat(f.options.Output)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
	_, statErr = os.Stat(f.options.LasOutput)
	assert.ErrorIs(t, statErr, os.ErrNotExist)

	info, statErr := os.Stat(f.options.Manifest)
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())
}
