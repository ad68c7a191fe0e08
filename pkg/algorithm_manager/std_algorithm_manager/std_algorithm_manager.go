package std_algorithm_manager

import (
	"github.com/ecopia-map/cloud_colorizer/internal/colorizer"
	"github.com/ecopia-map/cloud_colorizer/internal/converters"
	"github.com/ecopia-map/cloud_colorizer/internal/converters/axis_mapper"
	"github.com/ecopia-map/cloud_colorizer/internal/converters/elevation/offset_elevation_corrector"
	"github.com/ecopia-map/cloud_colorizer/internal/converters/proj4_region_converter"
	"github.com/ecopia-map/cloud_colorizer/internal/point_loader"
	"github.com/ecopia-map/cloud_colorizer/pkg/algorithm_manager"
)

type StandardAlgorithmManager struct {
	options *colorizer.ColorizerOptions
}

func NewAlgorithmManager(opts *colorizer.ColorizerOptions) algorithm_manager.AlgorithmManager {
	return &StandardAlgorithmManager{
		options: opts,
	}
}

func (am *StandardAlgorithmManager) GetPointLoaderAlgorithm() point_loader.Loader {
	return point_loader.NewLasLoader()
}

func (am *StandardAlgorithmManager) GetAxisMapperAlgorithm() converters.AxisMapper {
	return axis_mapper.NewZUpToYUpMapper()
}

// The ground level corrector moves the lowest point to up = 0
func (am *StandardAlgorithmManager) GetElevationCorrectionAlgorithm(ups []float64) (converters.ElevationCorrector, error) {
	corrector, err := offset_elevation_corrector.NewGroundLevelCorrector(ups)
	if err != nil {
		return nil, err
	}
	return corrector, nil
}

func (am *StandardAlgorithmManager) GetRegionConverterAlgorithm() (converters.RegionConverter, error) {
	if am.options.Proj == "" {
		return nil, nil
	}
	return proj4_region_converter.NewProj4RegionConverter(am.options.Proj)
}
