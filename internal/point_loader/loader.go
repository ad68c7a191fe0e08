package point_loader

import (
	"errors"
	"fmt"

	"github.com/ecopia-map/cloud_colorizer/internal/data"
	"github.com/ecopia-map/cloud_colorizer/internal/lasread"
	"github.com/golang/glog"
)

var ErrInvalidStride = errors.New("decimation stride must be a positive integer")

// Loader reads every raw point of a point cloud file, in file order
type Loader interface {
	// Returns the points and the total point count declared by the file header
	Load(filePath string) ([]data.PointRecord, int, error)
}

type LasLoader struct{}

func NewLasLoader() Loader {
	return &LasLoader{}
}

func (l *LasLoader) Load(filePath string) ([]data.PointRecord, int, error) {
	lasFile, err := lasread.NewLasFile(filePath)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = lasFile.Close() }()

	header := lasFile.Header
	glog.Infof("las_file %s version:%s format:%d num_of_points:%d", filePath, header.Version(), header.PointFormatID, header.NumberPoints)

	total := int(header.NumberPoints)
	points := make([]data.PointRecord, total)
	err = lasFile.ReadPoints(func(i int, x, y, z float64) {
		points[i] = data.PointRecord{X: x, Y: y, Z: z}
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", filePath, err)
	}

	return points, total, nil
}

// Decimate keeps the points at ordinal positions 0, stride, 2*stride, ... preserving their order.
// A stride of 1 returns the input unchanged.
func Decimate(points []data.PointRecord, stride int) ([]data.PointRecord, error) {
	if stride < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidStride, stride)
	}
	if stride == 1 {
		return points, nil
	}

	out := make([]data.PointRecord, 0, DecimatedLen(len(points), stride))
	for i := 0; i < len(points); i += stride {
		out = append(out, points[i])
	}
	return out, nil
}

// DecimatedLen returns ceil(n / stride), the number of points surviving a decimation
func DecimatedLen(n, stride int) int {
	if n <= 0 || stride < 1 {
		return 0
	}
	return (n + stride - 1) / stride
}
