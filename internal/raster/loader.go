package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/golang/glog"
	_ "golang.org/x/image/tiff"
)

// LoadTile decodes an image file into memory and georeferences it, from the GeoTIFF tags when
// the file carries them, otherwise from a world file next to it
func LoadTile(path string) (*RasterTile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	transform, err := georeference(path, format, content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	pixels, err := bandMajorRGB(img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	b := img.Bounds()
	return NewRasterTile(path, b.Dx(), b.Dy(), transform, pixels)
}

func georeference(path, format string, content []byte) (GeoTransform, error) {
	if format == "tiff" {
		tags, err := readGeoTags(content)
		if err != nil {
			return GeoTransform{}, err
		}
		g, err := tags.geoTransform()
		if err == nil {
			glog.V(1).Infof("%s: georeferenced from GeoTIFF tags", path)
			return g, nil
		}
		if !errors.Is(err, ErrNoGeoTransform) {
			return GeoTransform{}, err
		}
	}

	g, sidecar, err := findWorldFile(path)
	if err != nil {
		return GeoTransform{}, err
	}
	glog.V(1).Infof("%s: georeferenced from world file %s", path, sidecar)
	return g, nil
}

// bandMajorRGB copies the image into three consecutive 8 bit planes. Alpha is dropped,
// 16 bit samples keep their high byte.
func bandMajorRGB(img image.Image) ([]byte, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	plane := w * h
	out := make([]byte, 3*plane)

	switch src := img.(type) {
	case *image.Gray, *image.Gray16:
		return nil, ErrNotRGB
	case *image.RGBA:
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride:]
			for x := 0; x < w; x++ {
				i := y*w + x
				out[i], out[plane+i], out[2*plane+i] = row[4*x], row[4*x+1], row[4*x+2]
			}
		}
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride:]
			for x := 0; x < w; x++ {
				i := y*w + x
				out[i], out[plane+i], out[2*plane+i] = row[4*x], row[4*x+1], row[4*x+2]
			}
		}
	default:
		if isGrayModel(img.ColorModel()) {
			return nil, ErrNotRGB
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.NRGBA64Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
				i := y*w + x
				out[i], out[plane+i], out[2*plane+i] = uint8(c.R>>8), uint8(c.G>>8), uint8(c.B>>8)
			}
		}
	}

	return out, nil
}

func isGrayModel(m color.Model) bool {
	return m == color.GrayModel || m == color.Gray16Model
}
