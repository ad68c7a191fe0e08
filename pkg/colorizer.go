package pkg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ecopia-map/cloud_colorizer/internal/colorizer"
	"github.com/ecopia-map/cloud_colorizer/internal/converters"
	"github.com/ecopia-map/cloud_colorizer/internal/data"
	"github.com/ecopia-map/cloud_colorizer/internal/geometry"
	"github.com/ecopia-map/cloud_colorizer/internal/io"
	"github.com/ecopia-map/cloud_colorizer/internal/lasread"
	"github.com/ecopia-map/cloud_colorizer/internal/point_loader"
	"github.com/ecopia-map/cloud_colorizer/internal/raster"
	"github.com/ecopia-map/cloud_colorizer/internal/report"
	"github.com/ecopia-map/cloud_colorizer/internal/resolver"
	"github.com/ecopia-map/cloud_colorizer/pkg/algorithm_manager"
	"github.com/ecopia-map/cloud_colorizer/tools"
	"github.com/golang/glog"
)

const generator = "cloud_colorizer"

type Colorizer struct {
	fileFinder       tools.FileFinder
	algorithmManager algorithm_manager.AlgorithmManager
}

func NewColorizer(fileFinder tools.FileFinder, algorithmManager algorithm_manager.AlgorithmManager) colorizer.ITool {
	return &Colorizer{
		fileFinder:       fileFinder,
		algorithmManager: algorithmManager,
	}
}

// ColorizeResult holds everything produced by a run before it is written
type ColorizeResult struct {
	Output       *data.OutputBuffer
	Points       *converters.MappedPoints
	Decimated    []data.PointRecord
	Catalog      *raster.Catalog
	Stats        resolver.Stats
	TotalPoints  int
	GroundOffset float64 // minimum up removed by the ground normalization
	Extent       *geometry.Extent
}

// Starts the colorization process. The optional artifacts are written before the buffer,
// and a failing run removes every file it already wrote.
func (c *Colorizer) Run(opts *colorizer.ColorizerOptions) (err error) {
	glog.Infoln("Preparing list of rasters to process...")
	rasters, err := c.prepareRasterList(opts)
	if err != nil {
		return err
	}

	result, err := c.Colorize(context.Background(), opts, rasters)
	if err != nil {
		return err
	}

	var written []string
	defer func() {
		if err != nil {
			removeWritten(written)
		}
	}()

	if opts.LasOutput != "" {
		if err := c.exportDecimatedLas(opts, result.Decimated); err != nil {
			return err
		}
		written = append(written, opts.LasOutput)
	}
	if opts.Manifest != "" {
		if err := c.writeManifest(opts, result); err != nil {
			return err
		}
		written = append(written, opts.Manifest)
	}
	if opts.CoveragePlot != "" {
		tools.LogOutput("> plotting coverage to", opts.CoveragePlot)
		if err := tools.CreateParentDirectory(opts.CoveragePlot); err != nil {
			return err
		}
		plot := report.NewCoveragePlot(tools.GetFilenameWithoutExtension(opts.Input) + " coverage")
		if err := plot.Save(opts.CoveragePlot, result.Points.X, result.Points.Depth, result.Catalog); err != nil {
			return err
		}
		written = append(written, opts.CoveragePlot)
	}

	tools.LogOutput("> writing", result.Output.Len(), "points to", opts.Output)
	if err := tools.CreateParentDirectory(opts.Output); err != nil {
		return err
	}
	if err := io.WriteBufferFile(opts.Output, result.Output); err != nil {
		return err
	}

	c.logSummary(result)
	return nil
}

func removeWritten(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			glog.Warningf("cannot remove %s after the failed run: %v", p, err)
		}
	}
}

// Returns the raster paths in tile_priority order
func (c *Colorizer) prepareRasterList(opts *colorizer.ColorizerOptions) ([]string, error) {
	rasters, err := c.fileFinder.GetRastersToProcess(opts)
	if err != nil {
		return nil, err
	}

	ordered, err := colorizer.OrderByPriority(rasters, opts.TilePriority)
	if err != nil {
		return nil, err
	}
	if len(ordered) == 0 {
		glog.Warningln("no raster given, every point gets the fallback color")
	}
	for i, filePath := range ordered {
		glog.Infof("tile priority %d [%s]", i, filePath)
	}

	return ordered, nil
}

// Colorize runs the whole pipeline in memory. All inputs are loaded before any color is resolved.
func (c *Colorizer) Colorize(ctx context.Context, opts *colorizer.ColorizerOptions, rasters []string) (*ColorizeResult, error) {
	tools.LogOutput("> loading", len(rasters), "tiles...")
	catalog, err := raster.LoadCatalog(ctx, rasters, opts.Workers)
	if err != nil {
		return nil, err
	}

	tools.LogOutput("> reading points from", filepath.Base(opts.Input))
	points, total, err := c.algorithmManager.GetPointLoaderAlgorithm().Load(opts.Input)
	if err != nil {
		return nil, err
	}

	decimated, err := point_loader.Decimate(points, opts.Stride)
	if err != nil {
		return nil, err
	}
	if len(decimated) == 0 {
		return nil, fmt.Errorf("%s: %w", opts.Input, colorizer.ErrNoPoints)
	}
	glog.Infof("decimation stride %d keeps %d of %d points", opts.Stride, len(decimated), total)

	extent := geometry.NewEmptyExtent()
	for _, p := range decimated {
		extent.Extend(p.X, p.Y, p.Z)
	}

	mapped := converters.MapAll(c.algorithmManager.GetAxisMapperAlgorithm(), decimated)
	corrector, err := c.algorithmManager.GetElevationCorrectionAlgorithm(mapped.Up)
	if err != nil {
		return nil, err
	}
	mapped.CorrectElevation(corrector)

	output := data.NewOutputBuffer(mapped.Len())
	colorResolver := resolver.NewColorResolver(catalog, opts.FallbackColor)

	tools.LogOutput("> resolving colors...")
	if err := c.resolveColors(opts, mapped, output, colorResolver); err != nil {
		return nil, err
	}

	return &ColorizeResult{
		Output:       output,
		Points:       mapped,
		Decimated:    decimated,
		Catalog:      catalog,
		Stats:        colorResolver.Stats(),
		TotalPoints:  total,
		GroundOffset: extent.Zmin,
		Extent:       extent,
	}, nil
}

// Fills the output buffer with producer and consumer goroutines, each consumer writing the indexes of its own work units
func (c *Colorizer) resolveColors(opts *colorizer.ColorizerOptions, points *converters.MappedPoints, output *data.OutputBuffer, colorResolver *resolver.ColorResolver) error {
	// a consumer goroutine per CPU unless configured
	numConsumers := opts.Workers
	if numConsumers <= 0 {
		numConsumers = runtime.NumCPU()
	}

	// init channel where to submit work with a buffer 5 times greater than the number of consumer
	workChannel := make(chan *io.WorkUnit, numConsumers*5)

	// init channel where consumers can eventually submit errors that prevented them to finish the job
	errorChannel := make(chan error, numConsumers)

	var waitGroup sync.WaitGroup
	progress := io.NewProgress("color resolution", points.Len())

	// add producer to waitgroup and launch producer goroutine
	waitGroup.Add(1)
	producer := io.NewStandardProducer(opts.ChunkSize)
	go producer.Produce(workChannel, &waitGroup, points.Len())

	// add consumers to waitgroup and launch them
	for i := 0; i < numConsumers; i++ {
		waitGroup.Add(1)
		consumer := io.NewStandardConsumer(colorResolver, points, output, progress)
		go consumer.Consume(workChannel, errorChannel, &waitGroup)
	}

	// wait for producers and consumers to finish
	waitGroup.Wait()

	// close error chan
	close(errorChannel)

	// find if there are errors in the error channel buffer
	var errs []error
	for err := range errorChannel {
		glog.Errorln(err)
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors raised during color resolution: %w", errors.Join(errs...))
	}

	return nil
}

func (c *Colorizer) logSummary(result *ColorizeResult) {
	n := int64(result.Output.Len())
	tools.LogOutput(fmt.Sprintf("> %d points colorized, %d outside every tile (%.2f%%)",
		n, result.Stats.Misses, 100*float64(result.Stats.Misses)/float64(n)))
	for i, tile := range result.Catalog.Tiles() {
		glog.Infof("tile %d [%s] colored %d points", i, tile.Path, result.Stats.Hits[i])
	}
	if result.Stats.Misses > 0 {
		glog.Warningf("%d points fell outside every tile and got the fallback color", result.Stats.Misses)
	}
}

// Writes the decimated source points with the quantization of the input file
func (c *Colorizer) exportDecimatedLas(opts *colorizer.ColorizerOptions, points []data.PointRecord) error {
	tools.LogOutput("> exporting decimated points to", opts.LasOutput)

	source, err := lasread.NewLasFile(opts.Input)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	if err := tools.CreateParentDirectory(opts.LasOutput); err != nil {
		return err
	}
	writer, err := lasread.NewLasWriterFromHeader(opts.LasOutput, source.Header)
	if err != nil {
		return err
	}

	progress := io.NewProgress("las export", len(points))
	for i, p := range points {
		if err := writer.AddPoint(p.X, p.Y, p.Z); err != nil {
			writer.Abort()
			return fmt.Errorf("%s: point %d: %w", opts.LasOutput, i, err)
		}
		if (i+1)%65536 == 0 {
			progress.Add(65536)
		}
	}
	progress.Add(len(points) % 65536)
	if err := writer.Close(); err != nil {
		_ = os.Remove(opts.LasOutput)
		return err
	}

	glog.Infoln("Write las file success.", opts.LasOutput, writer.NumberOfPoints())
	return nil
}

func (c *Colorizer) writeManifest(opts *colorizer.ColorizerOptions, result *ColorizeResult) error {
	tools.LogOutput("> writing manifest", opts.Manifest)

	footprint := result.Extent.Footprint()
	manifest := &io.Manifest{
		Asset:         io.Asset{Version: "1.0", Generator: generator},
		Source:        opts.Input,
		Output:        opts.Output,
		TotalPoints:   result.TotalPoints,
		Stride:        opts.Stride,
		Points:        result.Output.Len(),
		Layout:        io.NewLayout(result.Output.Len()),
		GroundOffset:  io.Round(result.GroundOffset, 3),
		Extent:        io.RoundBox(footprint, 3),
		FallbackColor: opts.FallbackColor,
		FallbackCount: result.Stats.Misses,
	}

	regionConverter, err := c.algorithmManager.GetRegionConverterAlgorithm()
	if err != nil {
		return err
	}
	if regionConverter != nil {
		defer regionConverter.Cleanup()
		region, err := regionConverter.Convert2DBoundingboxToWGS84Region(footprint)
		if err != nil {
			return err
		}
		manifest.Region = io.RoundBox(region, 8)
	}

	for i, tile := range result.Catalog.Tiles() {
		manifest.Tiles = append(manifest.Tiles, io.ManifestTile{
			Priority: i,
			Path:     tile.Path,
			Width:    tile.Width,
			Height:   tile.Height,
			Bounds:   io.RoundBox(tile.Bounds, 3),
			Hits:     result.Stats.Hits[i],
		})
	}

	if err := tools.CreateParentDirectory(opts.Manifest); err != nil {
		return err
	}
	return io.WriteManifest(opts.Manifest, manifest)
}
