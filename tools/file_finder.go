package tools

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ecopia-map/cloud_colorizer/internal/colorizer"
)

var rasterExtensions = map[string]bool{
	".tif":  true,
	".tiff": true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

type FileFinder interface {
	GetRastersToProcess(opts *colorizer.ColorizerOptions) ([]string, error)
}

type StandardFileFinder struct{}

func NewStandardFileFinder() FileFinder {
	return &StandardFileFinder{}
}

// Returns the rasters given with -raster followed by the ones found in the raster folder, if any.
// Folder rasters already listed explicitly are not repeated.
func (f *StandardFileFinder) GetRastersToProcess(opts *colorizer.ColorizerOptions) ([]string, error) {
	rasters := append([]string(nil), opts.Rasters...)
	if opts.RasterFolder == "" {
		return rasters, nil
	}

	listed := make(map[string]bool, len(rasters))
	for _, r := range rasters {
		listed[filepath.Clean(r)] = true
	}

	found, err := f.getRastersFromFolder(opts.RasterFolder, opts.Recursive)
	if err != nil {
		return nil, err
	}
	for _, r := range found {
		if !listed[filepath.Clean(r)] {
			rasters = append(rasters, r)
		}
	}

	return rasters, nil
}

// filepath.Walk visits files in lexical order, so the result is sorted within each folder
func (f *StandardFileFinder) getRastersFromFolder(folder string, recursive bool) ([]string, error) {
	var rasters = make([]string, 0)

	baseInfo, err := os.Stat(folder)
	if err != nil {
		return nil, err
	}
	err = filepath.Walk(
		folder,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if !recursive && !os.SameFile(info, baseInfo) {
					return filepath.SkipDir
				}
				return nil
			}
			if rasterExtensions[strings.ToLower(filepath.Ext(info.Name()))] {
				rasters = append(rasters, path)
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	return rasters, nil
}
