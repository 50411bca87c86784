package mesh

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultGrid is the quantization step applied to incoming vertices. It is a
// power of two, so quantized coordinates are exact binary fractions.
const DefaultGrid = 1.0 / (1 << 20)

// Reindexer assigns stable, dense indices to values in order of first
// occurrence. Equal values share an index.
type Reindexer[T comparable] struct {
	index  map[T]int
	values []T
}

// NewReindexer returns an empty table.
func NewReindexer[T comparable]() *Reindexer[T] {
	return &Reindexer[T]{index: make(map[T]int)}
}

// Lookup returns the index of v, inserting it if it has not been seen.
func (r *Reindexer[T]) Lookup(v T) int {
	if i, ok := r.index[v]; ok {
		return i
	}
	i := len(r.values)
	r.index[v] = i
	r.values = append(r.values, v)
	return i
}

// Values returns the distinct values in index order.
func (r *Reindexer[T]) Values() []T {
	return r.values
}

// Len returns the number of distinct values.
func (r *Reindexer[T]) Len() int {
	return len(r.values)
}

// QuantizeVec snaps each coordinate of v to the nearest multiple of grid.
func QuantizeVec(v v3.Vec, grid float64) v3.Vec {
	return v3.Vec{X: snap(v.X, grid), Y: snap(v.Y, grid), Z: snap(v.Z, grid)}
}

func snap(x, grid float64) float64 {
	q := x
	if grid > 0 {
		q = math.Round(x/grid) * grid
	}
	if q == 0 {
		return 0 // drop the sign of -0
	}
	return q
}

// Quantize returns a copy of m whose vertices are snapped to grid and
// merged when their snapped positions coincide. Consecutive repeated indices
// inside a face, including the wrap from last to first, are removed, and
// faces left with fewer than three vertices are dropped.
func (m *Mesh) Quantize(grid float64) *Mesh {
	r := NewReindexer[v3.Vec]()
	out := &Mesh{}
	for i, f := range m.Faces {
		face := make(Face, 0, len(f))
		for _, idx := range f {
			q := r.Lookup(QuantizeVec(m.Vertices[idx], grid))
			if len(face) == 0 || face[len(face)-1] != q {
				face = append(face, q)
			}
		}
		for len(face) > 1 && face[0] == face[len(face)-1] {
			face = face[:len(face)-1]
		}
		if len(face) < 3 {
			continue
		}
		out.AddFace(m.IsMarked(i), face...)
	}
	out.Vertices = r.Values()
	return out
}
