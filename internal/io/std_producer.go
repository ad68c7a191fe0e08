package io

import (
	"sync"
)

// DefaultChunkSize is the number of points handed to a consumer at once
const DefaultChunkSize = 16384

type StandardProducer struct {
	chunkSize int
}

func NewStandardProducer(chunkSize int) *StandardProducer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &StandardProducer{
		chunkSize: chunkSize,
	}
}

// Splits the point indexes [0, numPoints) in WorkUnits and submits them to the provided workchannel.
// Closes the channel when all work is submitted.
func (p *StandardProducer) Produce(work chan *WorkUnit, wg *sync.WaitGroup, numPoints int) {
	for start := 0; start < numPoints; start += p.chunkSize {
		work <- &WorkUnit{
			Start: start,
			End:   min(start+p.chunkSize, numPoints),
		}
	}
	close(work)
	wg.Done()
}
