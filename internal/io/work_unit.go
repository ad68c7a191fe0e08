package io

// Contains the minimal data needed to colorize a contiguous run of points, the half open index range [Start, End)
type WorkUnit struct {
	Start int
	End   int
}

func (w *WorkUnit) Len() int {
	return w.End - w.Start
}
