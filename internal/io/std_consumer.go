package io

import (
	"fmt"
	"sync"

	"github.com/ecopia-map/cloud_colorizer/internal/converters"
	"github.com/ecopia-map/cloud_colorizer/internal/data"
	"github.com/ecopia-map/cloud_colorizer/internal/resolver"
	"github.com/golang/glog"
)

// StandardConsumer fills the output buffer for the WorkUnits it receives. Every consumer writes only the
// indexes of its own WorkUnits, so many of them can share the same buffer.
type StandardConsumer struct {
	resolver *resolver.ColorResolver
	points   *converters.MappedPoints
	output   *data.OutputBuffer
	progress *Progress
}

func NewStandardConsumer(colorResolver *resolver.ColorResolver, points *converters.MappedPoints, output *data.OutputBuffer, progress *Progress) *StandardConsumer {
	return &StandardConsumer{
		resolver: colorResolver,
		points:   points,
		output:   output,
		progress: progress,
	}
}

// Continually consumes WorkUnits submitted to a work channel, until the channel is closed or an error is raised.
// In this last case submits the error to an error channel before quitting
func (c *StandardConsumer) Consume(workchan chan *WorkUnit, errchan chan error, waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()

	for work := range workchan {
		if err := c.doWork(work); err != nil {
			errchan <- err
			glog.Errorln("consumer stopped:", err)
			// keep draining so that the producer is never blocked
			for range workchan {
			}
			return
		}
	}
}

// Writes positions and colors for the points of the WorkUnit
func (c *StandardConsumer) doWork(workUnit *WorkUnit) error {
	if workUnit.Start < 0 || workUnit.End > c.output.Len() || workUnit.End > c.points.Len() || workUnit.Start > workUnit.End {
		return fmt.Errorf("work unit [%d, %d) outside of the %d points", workUnit.Start, workUnit.End, c.output.Len())
	}

	for i := workUnit.Start; i < workUnit.End; i++ {
		c.output.Positions[i] = c.points.Position(i)
	}

	// colors are looked up in the raster plane: source x is X, source y is Depth
	c.resolver.ResolveRange(c.points.X, c.points.Depth, workUnit.Start, workUnit.End, c.output.Colors)

	if c.progress != nil {
		c.progress.Add(workUnit.Len())
	}
	return nil
}
