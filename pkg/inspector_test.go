package pkg

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/ecopia-map/cloud_colorizer/internal/colorizer"
	"github.com/ecopia-map/cloud_colorizer/internal/data"
	"github.com/ecopia-map/cloud_colorizer/internal/io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectReportsAxisStatistics(t *testing.T) {
	buf := data.NewOutputBuffer(4)
	buf.Positions[0] = [3]float32{1, 0, 10}
	buf.Colors[0] = [3]uint8{128, 128, 128}
	buf.Positions[1] = [3]float32{3, 2, 10}
	buf.Colors[1] = [3]uint8{1, 2, 3}
	buf.Positions[2] = [3]float32{5, 4, 10}
	buf.Colors[2] = [3]uint8{128, 128, 128}
	buf.Positions[3] = [3]float32{7, 6, 10}
	buf.Colors[3] = [3]uint8{128, 128, 127}

	path := filepath.Join(t.TempDir(), "cloud.bin")
	require.NoError(t, io.WriteBufferFile(path, buf))

	s, err := Inspect(path, colorizer.DefaultFallbackColor)
	require.NoError(t, err)

	assert.Equal(t, 4, s.Points)
	assert.Equal(t, int64(60), s.Bytes)
	assert.Equal(t, [3]float64{1, 0, 10}, s.Min)
	assert.Equal(t, [3]float64{7, 6, 10}, s.Max)
	assert.Equal(t, [3]float64{4, 3, 10}, s.Mean)
	assert.InDelta(t, math.Sqrt(20.0/3), s.StdDev[0], 1e-12)
	assert.Zero(t, s.StdDev[2])
	assert.True(t, s.GroundNormalized())
	assert.Equal(t, 2, s.FallbackCount)
	assert.Zero(t, s.NonFinite)
}

func TestSummarizeSkipsNonFinitePositions(t *testing.T) {
	buf := data.NewOutputBuffer(3)
	buf.Positions[0] = [3]float32{2, 1, 0}
	buf.Colors[0] = [3]uint8{0, 0, 0}
	buf.Positions[1] = [3]float32{float32(math.NaN()), 5, 0}
	buf.Colors[1] = [3]uint8{0, 0, 0}
	buf.Positions[2] = [3]float32{4, 3, 0}
	buf.Colors[2] = [3]uint8{0, 0, 0}

	s := Summarize(buf, colorizer.DefaultFallbackColor)
	assert.Equal(t, 1, s.NonFinite)
	assert.Equal(t, 2.0, s.Min[0])
	assert.Equal(t, 4.0, s.Max[0])
	assert.Equal(t, 5.0, s.Max[1])
	assert.False(t, s.GroundNormalized())
}

func TestSummarizeEmptyBuffer(t *testing.T) {
	s := Summarize(data.NewOutputBuffer(0), colorizer.DefaultFallbackColor)
	assert.Zero(t, s.Points)
	assert.Zero(t, s.Bytes)
	assert.False(t, s.GroundNormalized())
}

func TestInspectColorizerOutput(t *testing.T) {
	f := newFixture(t, 4)
	f.run(t)

	s, err := Inspect(f.options.Output, colorizer.DefaultFallbackColor)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Points)
	assert.True(t, s.GroundNormalized())

	// 227 header bytes plus 4 records of 20 bytes is not a whole number of points
	_, err = Inspect(f.input, colorizer.DefaultFallbackColor)
	assert.ErrorIs(t, err, io.ErrMalformedBuffer)
}

func TestSummarizeCountsEveryNonFiniteAxis(t *testing.T) {
	buf := data.NewOutputBuffer(3)
	buf.Positions[0] = [3]float32{1, float32(math.Inf(1)), 0}
	buf.Positions[1] = [3]float32{2, 0, float32(math.NaN())}
	buf.Positions[2] = [3]float32{3, 1, 4}

	s := Summarize(buf, colorizer.DefaultFallbackColor)
	assert.Equal(t, 2, s.NonFinite)
	assert.Equal(t, [3]float64{1, 0, 4}, s.Min)
	assert.Equal(t, [3]float64{3, 1, 4}, s.Max)
}

func TestGroundNormalizedTolerance(t *testing.T) {
	assert.True(t, (&BufferSummary{Points: 1, Min: [3]float64{0, 1e-9, 0}}).GroundNormalized())
	assert.False(t, (&BufferSummary{Points: 1, Min: [3]float64{0, 0.01, 0}}).GroundNormalized())
}
