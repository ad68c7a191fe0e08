package geometry

import "math"

// Coordinate is a position expressed in the planar CRS shared by the point cloud and the rasters
type Coordinate struct {
	X float64
	Y float64
	Z float64
}

// BoundingBox is an axis aligned 2D box in world coordinates, named after the
// raster bounds convention (left, bottom, right, top)
type BoundingBox struct {
	Left   float64
	Bottom float64
	Right  float64
	Top    float64
}

func NewBoundingBox(left, bottom, right, top float64) BoundingBox {
	return BoundingBox{
		Left:   math.Min(left, right),
		Bottom: math.Min(bottom, top),
		Right:  math.Max(left, right),
		Top:    math.Max(bottom, top),
	}
}

// Contains reports whether (x, y) falls inside the box, edges included
func (b BoundingBox) Contains(x, y float64) bool {
	return b.Left <= x && x <= b.Right && b.Bottom <= y && y <= b.Top
}

// Intersects reports whether the two boxes share at least one point
func (b BoundingBox) Intersects(other BoundingBox) bool {
	return b.Left <= other.Right && other.Left <= b.Right &&
		b.Bottom <= other.Top && other.Bottom <= b.Top
}

func (b BoundingBox) Width() float64 {
	return b.Right - b.Left
}

func (b BoundingBox) Height() float64 {
	return b.Top - b.Bottom
}

// GetAsArray returns the box as [left, bottom, right, top]
func (b BoundingBox) GetAsArray() []float64 {
	return []float64{b.Left, b.Bottom, b.Right, b.Top}
}

// Extent is a 3D bounding box grown point by point
type Extent struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
	Zmin, Zmax float64
	empty      bool
}

// NewEmptyExtent returns an extent that contains nothing until the first call to Extend
func NewEmptyExtent() *Extent {
	return &Extent{
		Xmin: math.Inf(1), Xmax: math.Inf(-1),
		Ymin: math.Inf(1), Ymax: math.Inf(-1),
		Zmin: math.Inf(1), Zmax: math.Inf(-1),
		empty: true,
	}
}

func (e *Extent) Extend(x, y, z float64) {
	e.Xmin = math.Min(e.Xmin, x)
	e.Xmax = math.Max(e.Xmax, x)
	e.Ymin = math.Min(e.Ymin, y)
	e.Ymax = math.Max(e.Ymax, y)
	e.Zmin = math.Min(e.Zmin, z)
	e.Zmax = math.Max(e.Zmax, z)
	e.empty = false
}

func (e *Extent) IsEmpty() bool {
	return e.empty
}

// Footprint returns the XY projection of the extent
func (e *Extent) Footprint() BoundingBox {
	return BoundingBox{Left: e.Xmin, Bottom: e.Ymin, Right: e.Xmax, Top: e.Ymax}
}
