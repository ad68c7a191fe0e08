package algorithm_manager

import (
	"github.com/ecopia-map/cloud_colorizer/internal/converters"
	"github.com/ecopia-map/cloud_colorizer/internal/point_loader"
)

type AlgorithmManager interface {
	GetPointLoaderAlgorithm() point_loader.Loader
	GetAxisMapperAlgorithm() converters.AxisMapper
	GetElevationCorrectionAlgorithm(ups []float64) (converters.ElevationCorrector, error)
	// Returns nil when no CRS definition is configured
	GetRegionConverterAlgorithm() (converters.RegionConverter, error)
}
