package pkg

import (
	"fmt"
	"math"

	"github.com/ecopia-map/cloud_colorizer/internal/colorizer"
	"github.com/ecopia-map/cloud_colorizer/internal/data"
	"github.com/ecopia-map/cloud_colorizer/internal/io"
	"github.com/ecopia-map/cloud_colorizer/tools"
	"github.com/golang/glog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var axisNames = [3]string{"x", "up", "depth"}

// BufferSummary describes the content of a serialized buffer
type BufferSummary struct {
	Points        int
	Bytes         int64
	Min           [3]float64
	Max           [3]float64
	Mean          [3]float64
	StdDev        [3]float64
	NonFinite     int // positions holding NaN or infinite components
	FallbackCount int // points colored exactly like the fallback color
}

// GroundNormalized reports whether the lowest up coordinate sits at 0
func (s *BufferSummary) GroundNormalized() bool {
	return s.Points > 0 && tools.IsFloatEqual(s.Min[1], 0)
}

type Inspector struct{}

func NewInspector() colorizer.ITool {
	return &Inspector{}
}

func (i *Inspector) Run(opts *colorizer.ColorizerOptions) error {
	summary, err := Inspect(opts.InspectOptions.Input, opts.FallbackColor)
	if err != nil {
		return err
	}

	tools.LogOutput(fmt.Sprintf("%s: %d points, %d bytes", opts.InspectOptions.Input, summary.Points, summary.Bytes))
	for k, name := range axisNames {
		tools.LogOutput(fmt.Sprintf("  %-5s min %.3f max %.3f mean %.3f stddev %.3f",
			name, summary.Min[k], summary.Max[k], summary.Mean[k], summary.StdDev[k]))
	}
	tools.LogOutput("  ground normalized:", summary.GroundNormalized())
	tools.LogOutput(fmt.Sprintf("  fallback color %v: %d points", opts.FallbackColor, summary.FallbackCount))
	if summary.NonFinite > 0 {
		glog.Warningf("%d positions are not finite", summary.NonFinite)
	}

	return nil
}

// Inspect reads a buffer file and computes per axis statistics over its positions
func Inspect(filePath string, fallback [3]uint8) (*BufferSummary, error) {
	buf, err := io.ReadBufferFile(filePath)
	if err != nil {
		return nil, err
	}
	return Summarize(buf, fallback), nil
}

func Summarize(buf *data.OutputBuffer, fallback [3]uint8) *BufferSummary {
	n := buf.Len()
	summary := &BufferSummary{
		Points: n,
		Bytes:  io.SerializedSize(n),
	}

	for i := 0; i < n; i++ {
		p := buf.At(i)
		if [3]uint8{p.R, p.G, p.B} == fallback {
			summary.FallbackCount++
		}
		if !isFinite(p.X) || !isFinite(p.Up) || !isFinite(p.Depth) {
			summary.NonFinite++
		}
	}
	if n == 0 {
		return summary
	}

	axis := make([]float64, 0, n)
	for k := 0; k < 3; k++ {
		axis = axis[:0]
		for _, p := range buf.Positions {
			if !isFinite(p[k]) {
				continue
			}
			axis = append(axis, float64(p[k]))
		}
		if len(axis) == 0 {
			continue
		}
		summary.Min[k] = floats.Min(axis)
		summary.Max[k] = floats.Max(axis)
		summary.Mean[k], summary.StdDev[k] = stat.MeanStdDev(axis, nil)
	}

	return summary
}

func isFinite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
