package proj4_region_converter

import (
	"testing"

	"github.com/ecopia-map/cloud_colorizer/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertUtmBoxToWGS84(t *testing.T) {
	c, err := NewProj4RegionConverter("+proj=utm +zone=32 +datum=WGS84 +units=m +no_defs")
	require.NoError(t, err)
	defer c.Cleanup()

	// the central meridian of zone 32 is 9°E, false easting 500000
	region, err := c.Convert2DBoundingboxToWGS84Region(geometry.NewBoundingBox(499000, 5000000, 501000, 5002000))
	require.NoError(t, err)

	assert.Less(t, region.Left, 9.0)
	assert.Greater(t, region.Right, 9.0)
	assert.InDelta(t, 45.15, region.Bottom, 0.05)
	assert.Greater(t, region.Top, region.Bottom)
}

func TestConvertLatLongIsIdentity(t *testing.T) {
	c, err := NewProj4RegionConverter("+proj=longlat +datum=WGS84 +no_defs")
	require.NoError(t, err)
	defer c.Cleanup()

	region, err := c.Convert2DBoundingboxToWGS84Region(geometry.NewBoundingBox(11, 46, 11.5, 46.25))
	require.NoError(t, err)

	assert.InDelta(t, 11, region.Left, 1e-9)
	assert.InDelta(t, 46, region.Bottom, 1e-9)
	assert.InDelta(t, 11.5, region.Right, 1e-9)
	assert.InDelta(t, 46.25, region.Top, 1e-9)
}

func TestInvalidDefinition(t *testing.T) {
	_, err := NewProj4RegionConverter("+proj=doesnotexist")
	assert.Error(t, err)
}
