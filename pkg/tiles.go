package pkg

import (
	"context"
	"fmt"

	"github.com/ecopia-map/cloud_colorizer/internal/colorizer"
	"github.com/ecopia-map/cloud_colorizer/internal/raster"
	"github.com/ecopia-map/cloud_colorizer/tools"
)

// TileLister prints the raster catalog in resolution order without touching any point cloud
type TileLister struct {
	fileFinder tools.FileFinder
}

func NewTileLister(fileFinder tools.FileFinder) colorizer.ITool {
	return &TileLister{fileFinder: fileFinder}
}

func (l *TileLister) Run(opts *colorizer.ColorizerOptions) error {
	rasters, err := l.fileFinder.GetRastersToProcess(opts)
	if err != nil {
		return err
	}
	ordered, err := colorizer.OrderByPriority(rasters, opts.TilePriority)
	if err != nil {
		return err
	}

	catalog, err := raster.LoadCatalog(context.Background(), ordered, opts.Workers)
	if err != nil {
		return err
	}

	for _, line := range DescribeCatalog(catalog) {
		tools.LogOutput(line)
	}
	return nil
}

// DescribeCatalog returns one line per tile plus the union of their bounds
func DescribeCatalog(catalog *raster.Catalog) []string {
	lines := make([]string, 0, catalog.Len()+1)
	for i, tile := range catalog.Tiles() {
		line := fmt.Sprintf("#%d %s %dx%d pixel %gx%g bounds [%.3f %.3f %.3f %.3f]",
			i, tile.Path, tile.Width, tile.Height,
			tile.Transform.PixelWidth, -tile.Transform.PixelHeight,
			tile.Bounds.Left, tile.Bounds.Bottom, tile.Bounds.Right, tile.Bounds.Top)
		if overlaps := catalog.Overlaps(i); len(overlaps) > 0 {
			line += fmt.Sprintf(" shadowed by %v", overlaps)
		}
		lines = append(lines, line)
	}

	if bounds, ok := catalog.Bounds(); ok {
		lines = append(lines, fmt.Sprintf("coverage [%.3f %.3f %.3f %.3f]", bounds.Left, bounds.Bottom, bounds.Right, bounds.Top))
	} else {
		lines = append(lines, "no tiles")
	}
	return lines
}
