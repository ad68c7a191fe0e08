package colorizer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileConfig is the JSON form of the colorize options. Omitted fields keep the command line value.
type FileConfig struct {
	Input         *string   `json:"input,omitempty"`
	Rasters       []string  `json:"rasters,omitempty"`
	RasterFolder  *string   `json:"raster_folder,omitempty"`
	Recursive     *bool     `json:"recursive,omitempty"`
	TilePriority  []string  `json:"tile_priority,omitempty"`
	Stride        *int      `json:"stride,omitempty"`
	Output        *string   `json:"output,omitempty"`
	Workers       *int      `json:"workers,omitempty"`
	FallbackColor *[3]uint8 `json:"fallback_color,omitempty"`
	Manifest      *string   `json:"manifest,omitempty"`
	CoveragePlot  *string   `json:"coverage_plot,omitempty"`
	LasOutput     *string   `json:"las_out,omitempty"`
	Proj          *string   `json:"proj,omitempty"`
}

// LoadConfig loads a FileConfig from a JSON file.
// The file must have a .json extension and be smaller than 1MB.
func LoadConfig(path string) (*FileConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &FileConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the values that are set
func (c *FileConfig) Validate() error {
	if c.Stride != nil && *c.Stride < 1 {
		return fmt.Errorf("stride must be a positive integer, got %d", *c.Stride)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", *c.Workers)
	}
	return nil
}

// Apply copies the configured values into opts, except the ones whose flag was given on the command line.
// setFlags holds the long flag names.
func (c *FileConfig) Apply(opts *ColorizerOptions, setFlags map[string]bool) {
	applyString := func(flagName string, src *string, dst *string) {
		if src != nil && !setFlags[flagName] {
			*dst = *src
		}
	}

	applyString("input", c.Input, &opts.Input)
	applyString("raster-folder", c.RasterFolder, &opts.RasterFolder)
	applyString("output", c.Output, &opts.Output)
	applyString("manifest", c.Manifest, &opts.Manifest)
	applyString("coverage-plot", c.CoveragePlot, &opts.CoveragePlot)
	applyString("las-out", c.LasOutput, &opts.LasOutput)
	applyString("proj", c.Proj, &opts.Proj)

	if c.Rasters != nil && !setFlags["raster"] {
		opts.Rasters = append([]string(nil), c.Rasters...)
	}
	if c.TilePriority != nil && !setFlags["tile-priority"] {
		opts.TilePriority = append([]string(nil), c.TilePriority...)
	}
	if c.Recursive != nil && !setFlags["recursive"] {
		opts.Recursive = *c.Recursive
	}
	if c.Stride != nil && !setFlags["stride"] {
		opts.Stride = *c.Stride
	}
	if c.Workers != nil && !setFlags["workers"] {
		opts.Workers = *c.Workers
	}
	if c.FallbackColor != nil && !setFlags["fallback-color"] {
		opts.FallbackColor = *c.FallbackColor
	}
}
