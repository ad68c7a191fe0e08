package converters

import (
	"github.com/ecopia-map/cloud_colorizer/internal/data"
	"github.com/ecopia-map/cloud_colorizer/internal/geometry"
)

// AxisMapper converts a source CRS coordinate into the renderer axis convention,
// returning (x, up, depth)
type AxisMapper interface {
	Transform(x, y, z float64) (float64, float64, float64)
}

// ElevationCorrector returns the corrected up component of a mapped point
type ElevationCorrector interface {
	CorrectElevation(x, depth, up float64) float64
}

// RegionConverter expresses 2D boxes of the source CRS as WGS84 longitude/latitude regions, in degrees.
// It is used for reporting only, points are never reprojected.
type RegionConverter interface {
	Convert2DBoundingboxToWGS84Region(bbox geometry.BoundingBox) (geometry.BoundingBox, error)
	Cleanup()
}

// MappedPoints stores renderer axis coordinates as parallel columns, one entry per point
type MappedPoints struct {
	X     []float64
	Up    []float64
	Depth []float64
}

func (m *MappedPoints) Len() int {
	return len(m.X)
}

// MapAll transforms every point keeping the input order
func MapAll(mapper AxisMapper, points []data.PointRecord) *MappedPoints {
	m := &MappedPoints{
		X:     make([]float64, len(points)),
		Up:    make([]float64, len(points)),
		Depth: make([]float64, len(points)),
	}
	for i, p := range points {
		m.X[i], m.Up[i], m.Depth[i] = mapper.Transform(p.X, p.Y, p.Z)
	}
	return m
}

// CorrectElevation rewrites the up column through the given corrector
func (m *MappedPoints) CorrectElevation(corrector ElevationCorrector) {
	for i := range m.Up {
		m.Up[i] = corrector.CorrectElevation(m.X[i], m.Depth[i], m.Up[i])
	}
}

// Position returns the point at index i narrowed to the float32 layout of the output buffer
func (m *MappedPoints) Position(i int) [3]float32 {
	return [3]float32{float32(m.X[i]), float32(m.Up[i]), float32(m.Depth[i])}
}
