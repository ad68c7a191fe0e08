package io

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	goio "io"
	"math"
	"os"
	"path/filepath"

	"github.com/ecopia-map/cloud_colorizer/internal/data"
)

const (
	PositionBytes = 12 // x, up, depth as little endian float32
	ColorBytes    = 3  // r, g, b
	PointBytes    = PositionBytes + ColorBytes
)

var ErrMalformedBuffer = errors.New("buffer size is not a multiple of 15 bytes")

// SerializedSize is the exact file size for n points
func SerializedSize(n int) int64 {
	return int64(n) * PointBytes
}

// Serialize lays out all positions followed by all colors, without header or padding
func Serialize(buf *data.OutputBuffer) []byte {
	n := buf.Len()
	out := make([]byte, SerializedSize(n))
	putPositions(out[:n*PositionBytes], buf.Positions)
	putColors(out[n*PositionBytes:], buf.Colors)
	return out
}

// WriteBuffer streams the serialized buffer to w
func WriteBuffer(w goio.Writer, buf *data.OutputBuffer) error {
	if len(buf.Positions) != len(buf.Colors) {
		return fmt.Errorf("%d positions but %d colors", len(buf.Positions), len(buf.Colors))
	}

	bw := bufio.NewWriterSize(w, 1<<20)
	chunk := make([]byte, 4096*PositionBytes)

	for start := 0; start < len(buf.Positions); start += 4096 {
		end := min(start+4096, len(buf.Positions))
		p := chunk[:(end-start)*PositionBytes]
		putPositions(p, buf.Positions[start:end])
		if _, err := bw.Write(p); err != nil {
			return err
		}
	}
	for start := 0; start < len(buf.Colors); start += 4096 {
		end := min(start+4096, len(buf.Colors))
		p := chunk[:(end-start)*ColorBytes]
		putColors(p, buf.Colors[start:end])
		if _, err := bw.Write(p); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WriteBufferFile writes the buffer next to filePath under a temporary name and renames it once complete,
// a failed write leaves nothing at filePath
func WriteBufferFile(filePath string, buf *data.OutputBuffer) (err error) {
	dir := filepath.Dir(filePath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("cannot create output in %s: %w", dir, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = WriteBuffer(tmp, buf); err != nil {
		return fmt.Errorf("%s: %w", filePath, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%s: %w", filePath, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", filePath, err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("%s: %w", filePath, err)
	}
	if err = os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("%s: %w", filePath, err)
	}
	return nil
}

// Deserialize splits a serialized buffer back into its position and color arrays
func Deserialize(p []byte) (*data.OutputBuffer, error) {
	if len(p)%PointBytes != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformedBuffer, len(p))
	}

	n := len(p) / PointBytes
	buf := data.NewOutputBuffer(n)
	le := binary.LittleEndian

	for i := range buf.Positions {
		off := i * PositionBytes
		buf.Positions[i] = [3]float32{
			math.Float32frombits(le.Uint32(p[off:])),
			math.Float32frombits(le.Uint32(p[off+4:])),
			math.Float32frombits(le.Uint32(p[off+8:])),
		}
	}
	colors := p[n*PositionBytes:]
	for i := range buf.Colors {
		buf.Colors[i] = [3]uint8{colors[3*i], colors[3*i+1], colors[3*i+2]}
	}

	return buf, nil
}

func ReadBufferFile(filePath string) (*data.OutputBuffer, error) {
	p, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	buf, err := Deserialize(p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return buf, nil
}

func putPositions(p []byte, positions [][3]float32) {
	le := binary.LittleEndian
	for i, pos := range positions {
		off := i * PositionBytes
		le.PutUint32(p[off:], math.Float32bits(pos[0]))
		le.PutUint32(p[off+4:], math.Float32bits(pos[1]))
		le.PutUint32(p[off+8:], math.Float32bits(pos[2]))
	}
}

func putColors(p []byte, colors [][3]uint8) {
	for i, c := range colors {
		copy(p[3*i:3*i+3], c[:])
	}
}
