package io

import (
	"sync/atomic"

	"github.com/ecopia-map/cloud_colorizer/tools"
)

// Progress logs a line every time another 10% of the total is done. Safe for concurrent use.
type Progress struct {
	label  string
	total  int64
	done   atomic.Int64
	decile atomic.Int64
}

func NewProgress(label string, total int) *Progress {
	return &Progress{
		label: label,
		total: int64(total),
	}
}

func (p *Progress) Add(n int) {
	done := p.done.Add(int64(n))
	if p.total <= 0 {
		return
	}

	decile := done * 10 / p.total
	for {
		last := p.decile.Load()
		if decile <= last {
			return
		}
		if p.decile.CompareAndSwap(last, decile) {
			tools.LogOutput(p.label, "progress:", decile*10, "%")
			return
		}
	}
}

func (p *Progress) Done() int64 {
	return p.done.Load()
}
