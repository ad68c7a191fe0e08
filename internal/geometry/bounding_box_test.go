package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundingBoxContainsIsInclusive(t *testing.T) {
	box := NewBoundingBox(100, 200, 110, 220)

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"center", 105, 210, true},
		{"left edge", 100, 210, true},
		{"right edge", 110, 210, true},
		{"bottom edge", 105, 200, true},
		{"top edge", 105, 220, true},
		{"top right corner", 110, 220, true},
		{"just outside right", 110.0001, 210, false},
		{"just outside bottom", 105, 199.9999, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, box.Contains(tt.x, tt.y))
		})
	}
}

func TestNewBoundingBoxNormalizesCorners(t *testing.T) {
	box := NewBoundingBox(10, 20, 0, 5)
	assert.Equal(t, []float64{0, 5, 10, 20}, box.GetAsArray())
	assert.Equal(t, 10.0, box.Width())
	assert.Equal(t, 15.0, box.Height())
}

func TestBoundingBoxIntersects(t *testing.T) {
	a := NewBoundingBox(0, 0, 10, 10)
	assert.True(t, a.Intersects(NewBoundingBox(10, 0, 20, 10)), "shared edge")
	assert.True(t, a.Intersects(NewBoundingBox(5, 5, 6, 6)))
	assert.False(t, a.Intersects(NewBoundingBox(10.5, 0, 20, 10)))
}

func TestExtend(t *testing.T) {
	e := NewEmptyExtent()
	assert.True(t, e.IsEmpty())

	e.Extend(1, 2, 3)
	e.Extend(-1, 5, 0)

	assert.False(t, e.IsEmpty())
	assert.Equal(t, -1.0, e.Xmin)
	assert.Equal(t, 1.0, e.Xmax)
	assert.Equal(t, 2.0, e.Ymin)
	assert.Equal(t, 5.0, e.Ymax)
	assert.Equal(t, 0.0, e.Zmin)
	assert.Equal(t, 3.0, e.Zmax)
	assert.Equal(t, NewBoundingBox(-1, 2, 1, 5), e.Footprint())
}
