package raster

import (
	"fmt"
	"math"

	"github.com/ecopia-map/cloud_colorizer/internal/geometry"
)

// RasterTile is a georeferenced RGB image held in memory. It is immutable once loaded.
type RasterTile struct {
	Path      string
	Width     int
	Height    int
	Transform GeoTransform
	Bounds    geometry.BoundingBox
	// band major: all red samples, then all green, then all blue, each plane row major
	pixels []byte
}

// NewRasterTile wraps a band major RGB buffer of width*height*3 bytes
func NewRasterTile(path string, width, height int, transform GeoTransform, pixels []byte) (*RasterTile, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%s: empty raster %dx%d", path, width, height)
	}
	if err := transform.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(pixels) != width*height*3 {
		return nil, fmt.Errorf("%s: pixel buffer holds %d bytes, %dx%d RGB needs %d", path, len(pixels), width, height, width*height*3)
	}

	return &RasterTile{
		Path:      path,
		Width:     width,
		Height:    height,
		Transform: transform,
		Bounds:    transform.Bounds(width, height),
		pixels:    pixels,
	}, nil
}

// Contains is the inclusive bounding box test
func (t *RasterTile) Contains(x, y float64) bool {
	return t.Bounds.Contains(x, y)
}

// WorldToPixel floors the inverse transform and clamps the result into the raster, so points
// on the right or bottom edge map to the last column or row
func (t *RasterTile) WorldToPixel(x, y float64) (row, col int) {
	c, r := t.Transform.WorldToPixel(x, y)
	return clampIndex(r, t.Height), clampIndex(c, t.Width)
}

func clampIndex(v float64, size int) int {
	v = math.Floor(v)
	// also catches NaN
	if !(v >= 0) {
		return 0
	}
	if v > float64(size-1) {
		return size - 1
	}
	return int(v)
}

// Sample reads the color of a pixel, row and col must be in range
func (t *RasterTile) Sample(row, col int) (r, g, b uint8) {
	plane := t.Width * t.Height
	i := row*t.Width + col
	return t.pixels[i], t.pixels[plane+i], t.pixels[2*plane+i]
}

// SampleWorld returns the color under a world position, clamped into the raster
func (t *RasterTile) SampleWorld(x, y float64) [3]uint8 {
	row, col := t.WorldToPixel(x, y)
	r, g, b := t.Sample(row, col)
	return [3]uint8{r, g, b}
}

// SampleBatch writes into colors[i] the color under (xs[i], ys[i]) for every i in indexes
func (t *RasterTile) SampleBatch(xs, ys []float64, indexes []int, colors [][3]uint8) {
	plane := t.Width * t.Height
	red, green, blue := t.pixels[:plane], t.pixels[plane:2*plane], t.pixels[2*plane:]

	for _, i := range indexes {
		c, r := t.Transform.WorldToPixel(xs[i], ys[i])
		row, col := clampIndex(r, t.Height), clampIndex(c, t.Width)
		p := row*t.Width + col
		colors[i] = [3]uint8{red[p], green[p], blue[p]}
	}
}

func (t *RasterTile) String() string {
	return fmt.Sprintf("%s (%dx%d, pixel %gx%g, bbox %v)", t.Path, t.Width, t.Height,
		t.Transform.PixelWidth, -t.Transform.PixelHeight, t.Bounds.GetAsArray())
}
