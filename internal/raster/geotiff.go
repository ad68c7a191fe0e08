package raster

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	tagModelPixelScale     = 33550
	tagModelTiepoint       = 33922
	tagModelTransformation = 34264
	tagGeoKeyDirectory     = 34735

	geoKeyRasterType   = 1025
	rasterPixelIsPoint = 2

	typeShort  = 3
	typeLong   = 4
	typeDouble = 12

	ifdEntryLen = 12
)

var errNotTIFF = errors.New("not a TIFF file")

// georeferencing tags of the first IFD
type geoTags struct {
	pixelScale     []float64
	tiepoint       []float64
	transformation []float64
	rasterType     uint16
}

// readGeoTags scans the first IFD of a classic TIFF for the GeoTIFF tags
func readGeoTags(p []byte) (*geoTags, error) {
	if len(p) < 8 {
		return nil, errNotTIFF
	}

	var order binary.ByteOrder
	switch string(p[0:4]) {
	case "II\x2A\x00":
		order = binary.LittleEndian
	case "MM\x00\x2A":
		order = binary.BigEndian
	default:
		return nil, errNotTIFF
	}

	ifd := int(order.Uint32(p[4:8]))
	if ifd+2 > len(p) {
		return nil, fmt.Errorf("IFD offset %d beyond end of file", ifd)
	}
	n := int(order.Uint16(p[ifd : ifd+2]))
	if ifd+2+n*ifdEntryLen > len(p) {
		return nil, fmt.Errorf("IFD with %d entries beyond end of file", n)
	}

	tags := &geoTags{}
	var geoKeys []float64
	for i := 0; i < n; i++ {
		entry := p[ifd+2+i*ifdEntryLen : ifd+2+(i+1)*ifdEntryLen]
		tag := order.Uint16(entry[0:2])

		var dst *[]float64
		switch tag {
		case tagModelPixelScale:
			dst = &tags.pixelScale
		case tagModelTiepoint:
			dst = &tags.tiepoint
		case tagModelTransformation:
			dst = &tags.transformation
		case tagGeoKeyDirectory:
			dst = &geoKeys
		default:
			continue
		}

		values, err := entryValues(p, entry, order)
		if err != nil {
			return nil, fmt.Errorf("tag %d: %w", tag, err)
		}
		*dst = values
	}

	tags.rasterType = rasterTypeKey(geoKeys)
	return tags, nil
}

func entryValues(p, entry []byte, order binary.ByteOrder) ([]float64, error) {
	typ := order.Uint16(entry[2:4])
	count := int(order.Uint32(entry[4:8]))

	var size int
	switch typ {
	case typeShort:
		size = 2
	case typeLong:
		size = 4
	case typeDouble:
		size = 8
	default:
		return nil, fmt.Errorf("unexpected field type %d", typ)
	}
	if count < 0 || count > len(p)/size {
		return nil, fmt.Errorf("field count %d out of range", count)
	}

	raw := entry[8:12]
	if count*size > 4 {
		off := int(order.Uint32(entry[8:12]))
		if off < 0 || off+count*size > len(p) {
			return nil, fmt.Errorf("field data at %d beyond end of file", off)
		}
		raw = p[off : off+count*size]
	}

	values := make([]float64, count)
	for i := range values {
		switch typ {
		case typeShort:
			values[i] = float64(order.Uint16(raw[2*i:]))
		case typeLong:
			values[i] = float64(order.Uint32(raw[4*i:]))
		case typeDouble:
			values[i] = math.Float64frombits(order.Uint64(raw[8*i:]))
		}
	}
	return values, nil
}

// rasterTypeKey looks up GTRasterTypeGeoKey in the key directory, 0 when absent
func rasterTypeKey(dir []float64) uint16 {
	if len(dir) < 4 {
		return 0
	}
	keys := int(dir[3])
	for i := 0; i < keys && 4+4*i+3 < len(dir); i++ {
		k := dir[4+4*i : 8+4*i]
		// location 0 means the value is stored in the directory itself
		if uint16(k[0]) == geoKeyRasterType && k[1] == 0 {
			return uint16(k[3])
		}
	}
	return 0
}

func (t *geoTags) geoTransform() (GeoTransform, error) {
	var g GeoTransform

	switch {
	case len(t.transformation) >= 8:
		m := t.transformation
		if m[1] != 0 || m[4] != 0 {
			return GeoTransform{}, ErrRotatedTransform
		}
		g = GeoTransform{OriginX: m[3], OriginY: m[7], PixelWidth: m[0], PixelHeight: m[5]}
	case len(t.tiepoint) >= 6 && len(t.pixelScale) >= 2:
		i, j := t.tiepoint[0], t.tiepoint[1]
		x, y := t.tiepoint[3], t.tiepoint[4]
		sx, sy := t.pixelScale[0], t.pixelScale[1]
		g = GeoTransform{OriginX: x - i*sx, OriginY: y + j*sy, PixelWidth: sx, PixelHeight: -sy}
	default:
		return GeoTransform{}, ErrNoGeoTransform
	}

	if t.rasterType == rasterPixelIsPoint {
		g = g.fromPixelCenter()
	}
	return g, g.validate()
}
