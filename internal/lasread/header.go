package lasread

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	lasSignature = "LASF"

	// public header block sizes per version
	headerSizeV12 = 227
	headerSizeV14 = 375

	minPointRecordLength = 12
)

var (
	ErrInvalidSignature  = errors.New("missing LASF file signature")
	ErrTruncated         = errors.New("file is truncated")
	ErrUnsupportedFormat = errors.New("unsupported point data format")
)

// LasHeader contains the fields of the LAS public header block needed to decode point records
type LasHeader struct {
	VersionMajor       uint8
	VersionMinor       uint8
	SystemID           string
	GeneratingSoftware string
	HeaderSize         uint16
	OffsetToPoints     uint32
	NumberOfVLRs       uint32
	PointFormatID      uint8
	PointRecordLength  uint16
	NumberPoints       uint64
	XScaleFactor       float64
	YScaleFactor       float64
	ZScaleFactor       float64
	XOffset            float64
	YOffset            float64
	ZOffset            float64
	MaxX               float64
	MinX               float64
	MaxY               float64
	MinY               float64
	MaxZ               float64
	MinZ               float64
}

func (h *LasHeader) Version() string {
	return fmt.Sprintf("%d.%d", h.VersionMajor, h.VersionMinor)
}

// parses the public header block. p must hold at least the first headerSizeV12 bytes of the file
func parseHeader(p []byte) (*LasHeader, error) {
	if len(p) < 4 || string(p[0:4]) != lasSignature {
		return nil, ErrInvalidSignature
	}
	if len(p) < headerSizeV12 {
		return nil, fmt.Errorf("public header block: %w", ErrTruncated)
	}

	le := binary.LittleEndian
	h := &LasHeader{
		VersionMajor:       p[24],
		VersionMinor:       p[25],
		SystemID:           trimNul(p[26:58]),
		GeneratingSoftware: trimNul(p[58:90]),
		HeaderSize:         le.Uint16(p[94:96]),
		OffsetToPoints:     le.Uint32(p[96:100]),
		NumberOfVLRs:       le.Uint32(p[100:104]),
		PointFormatID:      p[104],
		PointRecordLength:  le.Uint16(p[105:107]),
		NumberPoints:       uint64(le.Uint32(p[107:111])),
		XScaleFactor:       float64At(p, 131),
		YScaleFactor:       float64At(p, 139),
		ZScaleFactor:       float64At(p, 147),
		XOffset:            float64At(p, 155),
		YOffset:            float64At(p, 163),
		ZOffset:            float64At(p, 171),
		MaxX:               float64At(p, 179),
		MinX:               float64At(p, 187),
		MaxY:               float64At(p, 195),
		MinY:               float64At(p, 203),
		MaxZ:               float64At(p, 211),
		MinZ:               float64At(p, 219),
	}

	if h.HeaderSize < headerSizeV12 {
		return nil, fmt.Errorf("header size %d below the LAS minimum of %d", h.HeaderSize, headerSizeV12)
	}
	if uint32(h.HeaderSize) > h.OffsetToPoints {
		return nil, fmt.Errorf("offset to point data %d falls inside the header (%d bytes)", h.OffsetToPoints, h.HeaderSize)
	}

	// LAS 1.4 moved the point count to a 64 bit field, the legacy one is 0 for large files
	if h.VersionMajor == 1 && h.VersionMinor >= 4 && h.NumberPoints == 0 {
		if len(p) < headerSizeV14 || int(h.HeaderSize) < headerSizeV14 {
			return nil, fmt.Errorf("LAS 1.4 header: %w", ErrTruncated)
		}
		h.NumberPoints = le.Uint64(p[247:255])
	}

	// bits 7 and 6 flag compressed (LAZ) records
	if h.PointFormatID&0xC0 != 0 {
		return nil, fmt.Errorf("%w: compressed point format %d", ErrUnsupportedFormat, h.PointFormatID)
	}
	if h.PointFormatID > 10 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, h.PointFormatID)
	}
	if h.PointRecordLength < minPointRecordLength {
		return nil, fmt.Errorf("point record length %d too short", h.PointRecordLength)
	}
	if h.XScaleFactor == 0 || h.YScaleFactor == 0 || h.ZScaleFactor == 0 {
		return nil, errors.New("zero scale factor in header")
	}

	return h, nil
}

// encodes a LAS 1.2 header for point data format 0
func encodeHeaderV12(h *LasHeader) []byte {
	p := make([]byte, headerSizeV12)
	le := binary.LittleEndian

	copy(p[0:4], lasSignature)
	p[24] = 1
	p[25] = 2
	copy(p[26:58], h.SystemID)
	copy(p[58:90], h.GeneratingSoftware)
	le.PutUint16(p[94:96], headerSizeV12)
	le.PutUint32(p[96:100], headerSizeV12)
	le.PutUint32(p[100:104], 0)
	p[104] = 0
	le.PutUint16(p[105:107], h.PointRecordLength)
	le.PutUint32(p[107:111], uint32(h.NumberPoints))
	// every point is a single return
	le.PutUint32(p[111:115], uint32(h.NumberPoints))

	for off, v := range map[int]float64{
		131: h.XScaleFactor, 139: h.YScaleFactor, 147: h.ZScaleFactor,
		155: h.XOffset, 163: h.YOffset, 171: h.ZOffset,
		179: h.MaxX, 187: h.MinX,
		195: h.MaxY, 203: h.MinY,
		211: h.MaxZ, 219: h.MinZ,
	} {
		le.PutUint64(p[off:off+8], math.Float64bits(v))
	}

	return p
}

func float64At(p []byte, off int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(p[off : off+8]))
}

func trimNul(p []byte) string {
	if i := bytes.IndexByte(p, 0); i >= 0 {
		p = p[:i]
	}
	return string(bytes.TrimSpace(p))
}
