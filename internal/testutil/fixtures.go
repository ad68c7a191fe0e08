// Package testutil writes synthetic LAS and georeferenced raster files for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/ecopia-map/cloud_colorizer/internal/data"
	"github.com/ecopia-map/cloud_colorizer/internal/lasread"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

// GeoReference places a north up raster in world coordinates
type GeoReference struct {
	OriginX      float64   // world X of the left edge of the first column
	OriginY      float64   // world Y of the top edge of the first row
	PixelSize    float64   // ground size of a square pixel
	PixelIsPoint bool      // writes GTRasterTypeGeoKey = PixelIsPoint, the tie point is then the pixel center
	Matrix       []float64 // when set, written as ModelTransformationTag instead of tie point and scale
}

// SolidImage returns a w x h image filled with c
func SolidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// WriteLAS writes the points to a LAS 1.2 file with millimeter precision
func WriteLAS(t testing.TB, path string, points []data.PointRecord) string {
	t.Helper()

	w, err := lasread.NewLasWriter(path, [3]float64{0.001, 0.001, 0.001}, [3]float64{0, 0, 0})
	require.NoError(t, err)
	for _, p := range points {
		require.NoError(t, w.AddPoint(p.X, p.Y, p.Z))
	}
	require.NoError(t, w.Close())

	return path
}

// WriteGeoTIFF writes img as an uncompressed 8 bit RGB GeoTIFF
func WriteGeoTIFF(t testing.TB, path string, img image.Image, geo GeoReference) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, EncodeGeoTIFF(img, geo), 0644))
	return path
}

// WritePlainTIFF writes img as a TIFF without any georeferencing tags
func WritePlainTIFF(t testing.TB, path string, img image.Image) string {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, tiff.Encode(f, img, nil))

	return path
}

// WritePNGTile writes img as PNG together with its .pgw world file
func WritePNGTile(t testing.TB, path string, img image.Image, geo GeoReference) string {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	WriteWorldFile(t, strings.TrimSuffix(path, filepath.Ext(path))+".pgw", geo)
	return path
}

// WriteWorldFile writes the six line world file matching geo. World files reference pixel centers.
func WriteWorldFile(t testing.TB, path string, geo GeoReference) {
	t.Helper()

	half := geo.PixelSize / 2
	content := fmt.Sprintf("%.10f\n0.0\n0.0\n%.10f\n%.10f\n%.10f\n",
		geo.PixelSize, -geo.PixelSize, geo.OriginX+half, geo.OriginY-half)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

const (
	tiffShort  = 3
	tiffLong   = 4
	tiffDouble = 12
)

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

// EncodeGeoTIFF builds a little endian, single strip, chunky RGB TIFF carrying GeoTIFF tags
func EncodeGeoTIFF(img image.Image, geo GeoReference) []byte {
	le := binary.LittleEndian
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	pixels := make([]byte, 0, w*h*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			pixels = append(pixels, c.R, c.G, c.B)
		}
	}

	shorts := func(v ...uint16) []byte {
		p := make([]byte, 2*len(v))
		for i, s := range v {
			le.PutUint16(p[2*i:], s)
		}
		return p
	}
	long := func(v int) []byte {
		p := make([]byte, 4)
		le.PutUint32(p, uint32(v))
		return p
	}
	doubles := func(v ...float64) []byte {
		p := make([]byte, 8*len(v))
		for i, d := range v {
			le.PutUint64(p[8*i:], math.Float64bits(d))
		}
		return p
	}

	entries := []ifdEntry{
		{256, tiffLong, 1, long(w)},
		{257, tiffLong, 1, long(h)},
		{258, tiffShort, 3, shorts(8, 8, 8)},
		{259, tiffShort, 1, shorts(1)},
		{262, tiffShort, 1, shorts(2)},
		{273, tiffLong, 1, long(0)},
		{277, tiffShort, 1, shorts(3)},
		{278, tiffLong, 1, long(h)},
		{279, tiffLong, 1, long(len(pixels))},
		{284, tiffShort, 1, shorts(1)},
	}
	if geo.Matrix != nil {
		entries = append(entries, ifdEntry{34264, tiffDouble, uint32(len(geo.Matrix)), doubles(geo.Matrix...)})
	} else {
		tieX, tieY := geo.OriginX, geo.OriginY
		if geo.PixelIsPoint {
			tieX += geo.PixelSize / 2
			tieY -= geo.PixelSize / 2
		}
		entries = append(entries,
			ifdEntry{33550, tiffDouble, 3, doubles(geo.PixelSize, geo.PixelSize, 0)},
			ifdEntry{33922, tiffDouble, 6, doubles(0, 0, 0, tieX, tieY, 0)},
		)
	}
	if geo.PixelIsPoint {
		// header (version 1, revision 1.0, one key) then GTRasterTypeGeoKey = RasterPixelIsPoint
		entries = append(entries, ifdEntry{34735, tiffShort, 8, shorts(1, 1, 0, 1, 1025, 0, 1, 2)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })

	ifdSize := 2 + 12*len(entries) + 4
	cursor := 8 + ifdSize
	offsets := make([]int, len(entries))
	for i, e := range entries {
		if len(e.data) > 4 {
			offsets[i] = cursor
			cursor += len(e.data)
			cursor += cursor % 2
		}
	}
	for i := range entries {
		if entries[i].tag == 273 {
			entries[i].data = long(cursor)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("II")
	buf.Write(shorts(42))
	buf.Write(long(8))
	buf.Write(shorts(uint16(len(entries))))
	for i, e := range entries {
		buf.Write(shorts(e.tag, e.typ))
		buf.Write(long(int(e.count)))
		if len(e.data) > 4 {
			buf.Write(long(offsets[i]))
		} else {
			inline := make([]byte, 4)
			copy(inline, e.data)
			buf.Write(inline)
		}
	}
	buf.Write(long(0))
	for i, e := range entries {
		if len(e.data) > 4 {
			for buf.Len() < offsets[i] {
				buf.WriteByte(0)
			}
			buf.Write(e.data)
		}
	}
	for buf.Len() < cursor {
		buf.WriteByte(0)
	}
	buf.Write(pixels)

	return buf.Bytes()
}
