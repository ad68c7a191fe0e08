package raster

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// worldFileCandidates lists the sidecar names tried for an image, for "a/b.tif":
// a/b.tfw, a/b.tifw, a/b.wld
func worldFileCandidates(imagePath string) []string {
	ext := filepath.Ext(imagePath)
	base := strings.TrimSuffix(imagePath, ext)

	var candidates []string
	if len(ext) >= 3 {
		candidates = append(candidates, base+ext[:2]+ext[len(ext)-1:]+"w")
	}
	if ext != "" {
		candidates = append(candidates, base+ext+"w")
	}
	candidates = append(candidates, base+".wld")

	return candidates
}

// findWorldFile returns the transform of the first existing sidecar, ErrNoGeoTransform when there is none
func findWorldFile(imagePath string) (GeoTransform, string, error) {
	for _, candidate := range worldFileCandidates(imagePath) {
		content, err := os.ReadFile(candidate)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return GeoTransform{}, candidate, err
		}

		g, err := parseWorldFile(string(content))
		if err != nil {
			return GeoTransform{}, candidate, fmt.Errorf("%s: %w", candidate, err)
		}
		return g, candidate, nil
	}
	return GeoTransform{}, "", ErrNoGeoTransform
}

// parseWorldFile reads the six coefficients A, D, B, E, C, F. C and F locate the center of the first pixel.
func parseWorldFile(content string) (GeoTransform, error) {
	fields := strings.Fields(content)
	if len(fields) < 6 {
		return GeoTransform{}, fmt.Errorf("%w: world file needs 6 values, found %d", ErrNoGeoTransform, len(fields))
	}

	var v [6]float64
	for i := range v {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return GeoTransform{}, fmt.Errorf("%w: world file line %d: %v", ErrNoGeoTransform, i+1, err)
		}
		v[i] = f
	}

	a, d, b, e, c, f := v[0], v[1], v[2], v[3], v[4], v[5]
	if b != 0 || d != 0 {
		return GeoTransform{}, ErrRotatedTransform
	}

	g := GeoTransform{OriginX: c, OriginY: f, PixelWidth: a, PixelHeight: e}.fromPixelCenter()
	return g, g.validate()
}
