package io

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ecopia-map/cloud_colorizer/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLayout(t *testing.T) {
	l := NewLayout(10)
	assert.Equal(t, int64(0), l.Positions.ByteOffset)
	assert.Equal(t, int64(120), l.Positions.ByteLength)
	assert.Equal(t, int64(120), l.Colors.ByteOffset)
	assert.Equal(t, int64(30), l.Colors.ByteLength)
}

func TestWriteManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.json")
	m := &Manifest{
		Asset:        Asset{Version: "1.0", Generator: "test"},
		Points:       3,
		Stride:       2,
		TotalPoints:  5,
		Layout:       NewLayout(3),
		GroundOffset: Round(101.123456, 3),
		Extent:       RoundBox(geometry.NewBoundingBox(1.00049, 2, 3, 4), 3),
		Tiles: []ManifestTile{
			{Priority: 0, Path: "a.tif", Width: 2, Height: 2, Bounds: RoundBox(geometry.NewBoundingBox(0, 0, 1, 1), 3), Hits: 2},
		},
		FallbackColor: [3]uint8{128, 128, 128},
		FallbackCount: 1,
	}
	require.NoError(t, WriteManifest(path, m))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"groundOffset": 101.123`)
	assert.NotContains(t, string(content), `"region"`)

	got, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Points)
	assert.Equal(t, "1", got.Extent[0].String())
	assert.True(t, got.GroundOffset.Equal(Round(101.123, 3)))
	assert.Equal(t, int64(2), got.Tiles[0].Hits)
}
