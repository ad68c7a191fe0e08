package colorizer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

var ErrNoPoints = errors.New("no points left after decimation")

const (
	CommandColorize = "colorize"
	CommandInspect  = "inspect"
	CommandTiles    = "tiles"
)

// DefaultFallbackColor is the mid gray given to points outside every tile
var DefaultFallbackColor = [3]uint8{128, 128, 128}

// Contains the options needed by the colorizer
type ColorizerOptions struct {
	Input         string   // Input LAS file
	Rasters       []string // Georeferenced RGB tiles, in the order given on the command line
	RasterFolder  string   // Folder whose rasters are appended, sorted by name, after Rasters
	Recursive     bool     // Recursive lookup of rasters in subfolders of RasterFolder
	TilePriority  []string // tile_priority: order used to resolve overlapping tiles, first wins. Empty means raster order
	Stride        int      // Keeps one point every Stride points
	Output        string   // Output binary buffer
	Workers       int      // Number of color resolution workers, 0 means one per CPU
	ChunkSize     int      // Number of points per work unit, 0 means the default
	FallbackColor [3]uint8 // Color of points outside every tile
	Manifest      string   // Optional JSON manifest written next to the output
	CoveragePlot  string   // Optional PNG plot of the tile coverage
	LasOutput     string   // Optional LAS export of the decimated points
	Proj          string   // Optional proj4 definition of the shared CRS, only used to report the WGS84 region

	Command        string
	InspectOptions *InspectOptions
}

type InspectOptions struct {
	Input string // Binary buffer to inspect
}

func NewColorizerOptions() *ColorizerOptions {
	return &ColorizerOptions{
		Stride:        2,
		FallbackColor: DefaultFallbackColor,
		Command:       CommandColorize,
	}
}

func (opt *ColorizerOptions) Copy() *ColorizerOptions {
	newOpt := *opt
	newOpt.Rasters = append([]string(nil), opt.Rasters...)
	newOpt.TilePriority = append([]string(nil), opt.TilePriority...)

	if opt.InspectOptions != nil {
		inspectOpt := *opt.InspectOptions
		newOpt.InspectOptions = &inspectOpt
	}

	return &newOpt
}

// Validate checks the options of the colorize command
func (opt *ColorizerOptions) Validate() error {
	if opt.Input == "" {
		return errors.New("input point cloud is required")
	}
	if opt.Output == "" {
		return errors.New("output file is required")
	}
	if opt.Stride < 1 {
		return fmt.Errorf("stride must be a positive integer, got %d", opt.Stride)
	}
	if opt.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", opt.Workers)
	}
	if opt.ChunkSize < 0 {
		return fmt.Errorf("chunk size must not be negative, got %d", opt.ChunkSize)
	}
	// rasters found in RasterFolder are only known once the folder is scanned
	if opt.RasterFolder == "" {
		if _, err := OrderByPriority(opt.Rasters, opt.TilePriority); err != nil {
			return err
		}
	}
	return nil
}

// OrderByPriority returns the rasters in tile_priority order. An entry of priority matches a raster by
// its path or, when unambiguous, by its file name. Every raster must be named exactly once.
func OrderByPriority(rasters []string, priority []string) ([]string, error) {
	if len(priority) == 0 {
		return append([]string(nil), rasters...), nil
	}
	if len(priority) != len(rasters) {
		return nil, fmt.Errorf("tile_priority names %d tiles but %d rasters are given", len(priority), len(rasters))
	}

	used := make([]bool, len(rasters))
	ordered := make([]string, 0, len(rasters))
	for _, name := range priority {
		i, err := matchRaster(rasters, name)
		if err != nil {
			return nil, err
		}
		if used[i] {
			return nil, fmt.Errorf("tile_priority names %s more than once", rasters[i])
		}
		used[i] = true
		ordered = append(ordered, rasters[i])
	}

	return ordered, nil
}

func matchRaster(rasters []string, name string) (int, error) {
	clean := filepath.Clean(name)
	for i, r := range rasters {
		if filepath.Clean(r) == clean {
			return i, nil
		}
	}

	found := -1
	for i, r := range rasters {
		if filepath.Base(r) == name {
			if found >= 0 {
				return 0, fmt.Errorf("tile_priority entry %q matches both %s and %s", name, rasters[found], r)
			}
			found = i
		}
	}
	if found < 0 {
		return 0, fmt.Errorf("tile_priority entry %q does not match any raster", name)
	}
	return found, nil
}

// ParseColor reads an "r,g,b" triple of 0-255 integers
func ParseColor(value string) ([3]uint8, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return [3]uint8{}, fmt.Errorf("color %q must be given as r,g,b", value)
	}

	var c [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return [3]uint8{}, fmt.Errorf("color %q: %w", value, err)
		}
		c[i] = uint8(v)
	}
	return c, nil
}

// SplitList splits a comma separated list dropping empty entries
func SplitList(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type ITool interface {
	Run(opts *ColorizerOptions) error
}
