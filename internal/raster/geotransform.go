package raster

import (
	"errors"
	"math"

	"github.com/ecopia-map/cloud_colorizer/internal/geometry"
)

var (
	ErrNoGeoTransform   = errors.New("no usable geotransform")
	ErrRotatedTransform = errors.New("rotated or sheared geotransforms are not supported")
	ErrNotRGB           = errors.New("raster has no RGB bands")
)

// GeoTransform is a north up affine transform from pixel space to world space.
// Pixel (col, row) has its top left corner at (OriginX + col*PixelWidth, OriginY + row*PixelHeight).
type GeoTransform struct {
	OriginX     float64
	OriginY     float64
	PixelWidth  float64
	PixelHeight float64 // negative for north up images
}

func (g GeoTransform) validate() error {
	if g.PixelWidth == 0 || g.PixelHeight == 0 || math.IsNaN(g.PixelWidth) || math.IsNaN(g.PixelHeight) {
		return ErrNoGeoTransform
	}
	return nil
}

// PixelToWorld returns the world position of a (possibly fractional) pixel coordinate
func (g GeoTransform) PixelToWorld(col, row float64) (float64, float64) {
	return g.OriginX + col*g.PixelWidth, g.OriginY + row*g.PixelHeight
}

// WorldToPixel applies the inverse transform, the result is not rounded
func (g GeoTransform) WorldToPixel(x, y float64) (col, row float64) {
	return (x - g.OriginX) / g.PixelWidth, (y - g.OriginY) / g.PixelHeight
}

// Bounds returns the world footprint of a width x height raster
func (g GeoTransform) Bounds(width, height int) geometry.BoundingBox {
	x0, y0 := g.PixelToWorld(0, 0)
	x1, y1 := g.PixelToWorld(float64(width), float64(height))
	return geometry.NewBoundingBox(x0, y0, x1, y1)
}

// shifts the origin from the center of the first pixel to its corner
func (g GeoTransform) fromPixelCenter() GeoTransform {
	g.OriginX -= g.PixelWidth / 2
	g.OriginY -= g.PixelHeight / 2
	return g
}
