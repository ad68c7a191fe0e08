package data

// Raw point as read from the point cloud file, in the source CRS (Z up)
type PointRecord struct {
	X float64
	Y float64
	Z float64
}

// Point expressed in the renderer axes (Y up) together with the color resolved for it
type ColorizedPoint struct {
	X     float32
	Up    float32
	Depth float32
	R     uint8
	G     uint8
	B     uint8
}

// Parallel position and color arrays addressed by point index.
// Both arrays are allocated once with the final point count so that workers
// can fill them concurrently, each writing only its own indexes.
type OutputBuffer struct {
	Positions [][3]float32
	Colors    [][3]uint8
}

// Builds an OutputBuffer holding n zero valued points
func NewOutputBuffer(n int) *OutputBuffer {
	return &OutputBuffer{
		Positions: make([][3]float32, n),
		Colors:    make([][3]uint8, n),
	}
}

func (b *OutputBuffer) Len() int {
	return len(b.Positions)
}

func (b *OutputBuffer) At(i int) ColorizedPoint {
	pos, col := b.Positions[i], b.Colors[i]
	return ColorizedPoint{
		X:     pos[0],
		Up:    pos[1],
		Depth: pos[2],
		R:     col[0],
		G:     col[1],
		B:     col[2],
	}
}
