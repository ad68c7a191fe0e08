package axis_mapper

import "github.com/ecopia-map/cloud_colorizer/internal/converters"

// ZUpToYUpMapper moves the surveying elevation axis (Z up) into the rendering up axis (Y up):
// x' = x, up' = z, depth' = y
type ZUpToYUpMapper struct{}

func NewZUpToYUpMapper() converters.AxisMapper {
	return &ZUpToYUpMapper{}
}

func (m *ZUpToYUpMapper) Transform(x, y, z float64) (float64, float64, float64) {
	return x, z, y
}
