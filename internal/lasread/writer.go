package lasread

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
)

const pointFormat0RecordLength = 20

// return number 1 of 1 in the bit field at offset 14 of a format 0 record
const singleReturnBits = 0x09

// LasWriter writes LAS 1.2 files with point data format 0 records.
// The header is rewritten on Close with the final point count and extent.
type LasWriter struct {
	fileName string
	file     *os.File
	writer   *bufio.Writer
	header   LasHeader
	record   []byte
}

// Creates a new LAS file using the given scale factors and offsets for the quantized coordinates
func NewLasWriter(fileName string, scale [3]float64, offset [3]float64) (*LasWriter, error) {
	if scale[0] == 0 || scale[1] == 0 || scale[2] == 0 {
		return nil, errors.New("scale factors must be non zero")
	}

	f, err := os.Create(fileName)
	if err != nil {
		return nil, err
	}

	w := &LasWriter{
		fileName: fileName,
		file:     f,
		writer:   bufio.NewWriterSize(f, 1<<20),
		header: LasHeader{
			GeneratingSoftware: "cloud_colorizer",
			PointRecordLength:  pointFormat0RecordLength,
			XScaleFactor:       scale[0],
			YScaleFactor:       scale[1],
			ZScaleFactor:       scale[2],
			XOffset:            offset[0],
			YOffset:            offset[1],
			ZOffset:            offset[2],
			MinX:               math.Inf(1),
			MinY:               math.Inf(1),
			MinZ:               math.Inf(1),
			MaxX:               math.Inf(-1),
			MaxY:               math.Inf(-1),
			MaxZ:               math.Inf(-1),
		},
		record: make([]byte, pointFormat0RecordLength),
	}
	w.record[14] = singleReturnBits

	// placeholder, the real header is written on Close
	if _, err := w.writer.Write(make([]byte, headerSizeV12)); err != nil {
		_ = f.Close()
		return nil, err
	}

	return w, nil
}

// Creates a writer that reuses the quantization of an existing file
func NewLasWriterFromHeader(fileName string, h *LasHeader) (*LasWriter, error) {
	return NewLasWriter(
		fileName,
		[3]float64{h.XScaleFactor, h.YScaleFactor, h.ZScaleFactor},
		[3]float64{h.XOffset, h.YOffset, h.ZOffset},
	)
}

func (w *LasWriter) AddPoint(x, y, z float64) error {
	if w.header.NumberPoints == math.MaxUint32 {
		return errors.New("LAS 1.2 cannot hold more than 2^32-1 points")
	}

	h := &w.header
	qx, err := quantize(x, h.XScaleFactor, h.XOffset)
	if err != nil {
		return fmt.Errorf("x: %w", err)
	}
	qy, err := quantize(y, h.YScaleFactor, h.YOffset)
	if err != nil {
		return fmt.Errorf("y: %w", err)
	}
	qz, err := quantize(z, h.ZScaleFactor, h.ZOffset)
	if err != nil {
		return fmt.Errorf("z: %w", err)
	}

	le := binary.LittleEndian
	le.PutUint32(w.record[0:4], uint32(qx))
	le.PutUint32(w.record[4:8], uint32(qy))
	le.PutUint32(w.record[8:12], uint32(qz))
	if _, err := w.writer.Write(w.record); err != nil {
		return err
	}

	h.MinX, h.MaxX = math.Min(h.MinX, x), math.Max(h.MaxX, x)
	h.MinY, h.MaxY = math.Min(h.MinY, y), math.Max(h.MaxY, y)
	h.MinZ, h.MaxZ = math.Min(h.MinZ, z), math.Max(h.MaxZ, z)
	h.NumberPoints++

	return nil
}

func (w *LasWriter) NumberOfPoints() uint64 {
	return w.header.NumberPoints
}

// Close flushes the point records and writes the final header
func (w *LasWriter) Close() error {
	if w.file == nil {
		return nil
	}
	defer func() { w.file = nil }()

	if err := w.writer.Flush(); err != nil {
		_ = w.file.Close()
		return err
	}

	if w.header.NumberPoints == 0 {
		w.header.MinX, w.header.MaxX = 0, 0
		w.header.MinY, w.header.MaxY = 0, 0
		w.header.MinZ, w.header.MaxZ = 0, 0
	}

	if _, err := w.file.WriteAt(encodeHeaderV12(&w.header), 0); err != nil {
		_ = w.file.Close()
		return err
	}

	return w.file.Close()
}

// Abort discards a file being written, nothing is left at its path
func (w *LasWriter) Abort() {
	if w.file == nil {
		return
	}
	_ = w.file.Close()
	w.file = nil
	_ = os.Remove(w.fileName)
}

func quantize(v, scale, offset float64) (int32, error) {
	q := math.Round((v - offset) / scale)
	if q < math.MinInt32 || q > math.MaxInt32 {
		return 0, fmt.Errorf("value %f does not fit the scale %g and offset %f", v, scale, offset)
	}
	return int32(q), nil
}
