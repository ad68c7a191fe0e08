package offset_elevation_corrector

import (
	"errors"

	"github.com/ecopia-map/cloud_colorizer/internal/converters"
	"gonum.org/v1/gonum/floats"
)

var ErrNoPoints = errors.New("cannot normalize the ground of an empty point set")

type OffsetElevationCorrector struct {
	Offset float64
}

func NewOffsetElevationCorrector(offset float64) converters.ElevationCorrector {
	return &OffsetElevationCorrector{
		Offset: offset,
	}
}

// NewGroundLevelCorrector returns a corrector that moves the lowest of the given up values to exactly 0
func NewGroundLevelCorrector(ups []float64) (*OffsetElevationCorrector, error) {
	if len(ups) == 0 {
		return nil, ErrNoPoints
	}
	return &OffsetElevationCorrector{
		Offset: -floats.Min(ups),
	}, nil
}

func (c *OffsetElevationCorrector) CorrectElevation(x, depth, up float64) float64 {
	return up + c.Offset
}
