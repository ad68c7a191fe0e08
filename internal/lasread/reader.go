package lasread

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// LasFile is a LAS file opened for reading. Only the XYZ part of each point record is decoded.
type LasFile struct {
	fileName string
	file     *os.File
	Header   *LasHeader
}

// Opens a LAS file and validates its public header block against the file size
func NewLasFile(fileName string) (*LasFile, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}

	las, err := newLasFile(fileName, f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}

	return las, nil
}

func newLasFile(fileName string, f *os.File) (*LasFile, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	p := make([]byte, headerSizeV14)
	n, err := f.ReadAt(p, 0)
	if err != nil && err != io.EOF {
		return nil, err
	}

	header, err := parseHeader(p[:n])
	if err != nil {
		return nil, err
	}

	required := uint64(header.OffsetToPoints) + header.NumberPoints*uint64(header.PointRecordLength)
	if uint64(info.Size()) < required {
		return nil, fmt.Errorf("%w: %d points need %d bytes, file has %d", ErrTruncated, header.NumberPoints, required, info.Size())
	}

	return &LasFile{
		fileName: fileName,
		file:     f,
		Header:   header,
	}, nil
}

func (las *LasFile) FileName() string {
	return las.fileName
}

func (las *LasFile) Close() error {
	if las.file == nil {
		return nil
	}
	err := las.file.Close()
	las.file = nil
	return err
}

// GetXYZ reads the scaled coordinates of the point at the given index
func (las *LasFile) GetXYZ(index int) (float64, float64, float64, error) {
	if index < 0 || uint64(index) >= las.Header.NumberPoints {
		return 0, 0, 0, fmt.Errorf("point index %d out of range [0, %d)", index, las.Header.NumberPoints)
	}

	p := make([]byte, minPointRecordLength)
	off := int64(las.Header.OffsetToPoints) + int64(index)*int64(las.Header.PointRecordLength)
	if _, err := las.file.ReadAt(p, off); err != nil {
		return 0, 0, 0, err
	}

	x, y, z := las.decodeXYZ(p)
	return x, y, z, nil
}

// ReadPoints decodes all point records in file order and hands their scaled coordinates to fn
func (las *LasFile) ReadPoints(fn func(index int, x, y, z float64)) error {
	if _, err := las.file.Seek(int64(las.Header.OffsetToPoints), io.SeekStart); err != nil {
		return err
	}

	reader := bufio.NewReaderSize(las.file, 1<<20)
	record := make([]byte, las.Header.PointRecordLength)

	for i := uint64(0); i < las.Header.NumberPoints; i++ {
		if _, err := io.ReadFull(reader, record); err != nil {
			return fmt.Errorf("point record %d: %w", i, err)
		}
		x, y, z := las.decodeXYZ(record)
		fn(int(i), x, y, z)
	}

	return nil
}

// every point data format starts with X, Y, Z as little endian int32
func (las *LasFile) decodeXYZ(record []byte) (float64, float64, float64) {
	h := las.Header
	x := int32(binary.LittleEndian.Uint32(record[0:4]))
	y := int32(binary.LittleEndian.Uint32(record[4:8]))
	z := int32(binary.LittleEndian.Uint32(record[8:12]))

	return float64(x)*h.XScaleFactor + h.XOffset,
		float64(y)*h.YScaleFactor + h.YOffset,
		float64(z)*h.ZScaleFactor + h.ZOffset
}
