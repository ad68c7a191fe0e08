package proj4_region_converter

import (
	"fmt"
	"math"

	"github.com/ecopia-map/cloud_colorizer/internal/converters"
	"github.com/ecopia-map/cloud_colorizer/internal/geometry"
	proj4 "github.com/xeonx/proj4"
)

const wgs84Definition = "+proj=longlat +datum=WGS84 +no_defs"

const toRadians = math.Pi / 180
const toDegrees = 180 / math.Pi

type proj4RegionConverter struct {
	source *proj4.Proj
	target *proj4.Proj
}

// NewProj4RegionConverter builds a converter from the CRS described by the given proj4 definition to WGS84
func NewProj4RegionConverter(sourceDefinition string) (converters.RegionConverter, error) {
	source, err := proj4.InitPlus(sourceDefinition)
	if err != nil {
		return nil, fmt.Errorf("invalid proj4 definition %q: %w", sourceDefinition, err)
	}
	target, err := proj4.InitPlus(wgs84Definition)
	if err != nil {
		source.Close()
		return nil, err
	}

	return &proj4RegionConverter{
		source: source,
		target: target,
	}, nil
}

// Converts the corners and edge midpoints of the box, then takes their envelope in degrees
func (c *proj4RegionConverter) Convert2DBoundingboxToWGS84Region(bbox geometry.BoundingBox) (geometry.BoundingBox, error) {
	midX := (bbox.Left + bbox.Right) / 2
	midY := (bbox.Bottom + bbox.Top) / 2
	x := []float64{bbox.Left, bbox.Right, bbox.Right, bbox.Left, midX, bbox.Right, midX, bbox.Left}
	y := []float64{bbox.Bottom, bbox.Bottom, bbox.Top, bbox.Top, bbox.Bottom, midY, bbox.Top, midY}
	z := make([]float64, len(x))

	if c.source.IsLatLong() {
		for i := range x {
			x[i] *= toRadians
			y[i] *= toRadians
		}
	}

	if err := proj4.TransformRaw(c.source, c.target, x, y, z); err != nil {
		return geometry.BoundingBox{}, fmt.Errorf("cannot convert %v to WGS84: %w", bbox.GetAsArray(), err)
	}

	lon := math.Inf(1)
	lat := math.Inf(1)
	lonMax := math.Inf(-1)
	latMax := math.Inf(-1)
	for i := range x {
		lon = math.Min(lon, x[i]*toDegrees)
		lonMax = math.Max(lonMax, x[i]*toDegrees)
		lat = math.Min(lat, y[i]*toDegrees)
		latMax = math.Max(latMax, y[i]*toDegrees)
	}

	return geometry.NewBoundingBox(lon, lat, lonMax, latMax), nil
}

func (c *proj4RegionConverter) Cleanup() {
	c.source.Close()
	c.target.Close()
}
