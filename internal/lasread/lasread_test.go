package lasread

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSample(t *testing.T, points [][3]float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.las")

	w, err := NewLasWriter(path, [3]float64{0.01, 0.01, 0.01}, [3]float64{500000, 4000000, 0})
	require.NoError(t, err)
	for _, p := range points {
		require.NoError(t, w.AddPoint(p[0], p[1], p[2]))
	}
	require.NoError(t, w.Close())

	return path
}

func TestWriteThenReadPoints(t *testing.T) {
	points := [][3]float64{
		{500010.25, 4000020.50, 12.34},
		{500011.00, 4000019.75, 10.01},
		{500009.99, 4000021.00, 15.50},
	}
	path := writeSample(t, points)

	las, err := NewLasFile(path)
	require.NoError(t, err)
	defer las.Close()

	assert.Equal(t, "1.2", las.Header.Version())
	assert.Equal(t, uint64(3), las.Header.NumberPoints)
	assert.Equal(t, uint8(0), las.Header.PointFormatID)
	assert.InDelta(t, 500009.99, las.Header.MinX, 1e-9)
	assert.InDelta(t, 500011.00, las.Header.MaxX, 1e-9)
	assert.InDelta(t, 10.01, las.Header.MinZ, 1e-9)

	var got [][3]float64
	var indexes []int
	err = las.ReadPoints(func(i int, x, y, z float64) {
		indexes = append(indexes, i)
		got = append(got, [3]float64{x, y, z})
	})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, indexes)
	for i := range points {
		for k := 0; k < 3; k++ {
			assert.InDelta(t, points[i][k], got[i][k], 0.005, "point %d axis %d", i, k)
		}
	}

	x, y, z, err := las.GetXYZ(2)
	require.NoError(t, err)
	assert.InDelta(t, 500009.99, x, 0.005)
	assert.InDelta(t, 4000021.00, y, 0.005)
	assert.InDelta(t, 15.50, z, 0.005)

	_, _, _, err = las.GetXYZ(3)
	assert.Error(t, err)
}

func TestNewLasFileRejectsMissingSignature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.las")
	require.NoError(t, os.WriteFile(path, make([]byte, 400), 0644))

	_, err := NewLasFile(path)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestNewLasFileRejectsTruncatedPointData(t *testing.T) {
	path := writeSample(t, [][3]float64{{500000, 4000000, 1}, {500001, 4000001, 2}})

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw[:len(raw)-5], 0644))

	_, err = NewLasFile(path)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestNewLasFileRejectsShortHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.las")
	require.NoError(t, os.WriteFile(path, []byte("LASF\x00\x00"), 0644))

	_, err := NewLasFile(path)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestNewLasFileMissing(t *testing.T) {
	_, err := NewLasFile(filepath.Join(t.TempDir(), "nope.las"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseHeaderUses64BitCountForLas14(t *testing.T) {
	p := make([]byte, headerSizeV14)
	copy(p, encodeHeaderV12(&LasHeader{
		PointRecordLength: 30,
		XScaleFactor:      0.001,
		YScaleFactor:      0.001,
		ZScaleFactor:      0.001,
	}))
	p[25] = 4
	binary.LittleEndian.PutUint16(p[94:96], headerSizeV14)
	binary.LittleEndian.PutUint32(p[96:100], headerSizeV14)
	p[104] = 6
	binary.LittleEndian.PutUint32(p[107:111], 0)
	binary.LittleEndian.PutUint64(p[247:255], 5_000_000_000)

	h, err := parseHeader(p)
	require.NoError(t, err)
	assert.Equal(t, "1.4", h.Version())
	assert.Equal(t, uint64(5_000_000_000), h.NumberPoints)
	assert.Equal(t, uint8(6), h.PointFormatID)
}

func TestParseHeaderRejectsCompressedFormat(t *testing.T) {
	p := encodeHeaderV12(&LasHeader{
		PointRecordLength: 20,
		XScaleFactor:      0.01,
		YScaleFactor:      0.01,
		ZScaleFactor:      0.01,
	})
	p[104] = 0x80 | 3

	_, err := parseHeader(p)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestQuantizeOverflow(t *testing.T) {
	_, err := quantize(1e12, 0.001, 0)
	assert.Error(t, err)

	q, err := quantize(12.5, 0.01, 10)
	require.NoError(t, err)
	assert.Equal(t, int32(250), q)
}

func TestWriterMarksEveryPointAsSingleReturn(t *testing.T) {
	path := writeSample(t, [][3]float64{{500000, 4000000, 1}, {500001, 4000001, 2}})

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		flags := raw[headerSizeV12+i*pointFormat0RecordLength+14]
		assert.Equal(t, byte(1), flags&0x07, "return number of point %d", i)
		assert.Equal(t, byte(1), (flags>>3)&0x07, "number of returns of point %d", i)
	}
}

func TestWriterAbortRemovesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.las")
	w, err := NewLasWriter(path, [3]float64{0.001, 0.001, 0.001}, [3]float64{0, 0, 0})
	require.NoError(t, err)

	require.NoError(t, w.AddPoint(1, 2, 3))
	require.Error(t, w.AddPoint(1e12, 2, 3))
	w.Abort()

	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoError(t, w.Close())
}
