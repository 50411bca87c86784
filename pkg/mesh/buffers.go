package mesh

import v3 "github.com/deadsy/sdfx/vec/v3"

// Buffers is a triangle mesh in the flat arrays external engines take:
// Vertices has 3 floats per vertex (x,y,z), Indices has 3 uint32s per
// triangle.
type Buffers struct {
	Vertices []float32
	Indices  []uint32
}

// VertexCount returns the number of vertices.
func (b *Buffers) VertexCount() int {
	return len(b.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (b *Buffers) TriangleCount() int {
	return len(b.Indices) / 3
}

// IsEmpty returns true if the buffers hold no geometry.
func (b *Buffers) IsEmpty() bool {
	return len(b.Vertices) == 0
}

// Buffers flattens m. Faces with more than three
// vertices are fanned from their first vertex, so callers wanting correct
// output for non-convex faces should pass a tessellated mesh.
func (m *Mesh) Buffers() *Buffers {
	b := &Buffers{
		Vertices: make([]float32, 0, 3*len(m.Vertices)),
	}
	for _, v := range m.Vertices {
		b.Vertices = append(b.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
	}
	for _, f := range m.Faces {
		for j := 1; j+1 < len(f); j++ {
			b.Indices = append(b.Indices, uint32(f[0]), uint32(f[j]), uint32(f[j+1]))
		}
	}
	return b
}

// FromBuffers rebuilds an indexed triangle mesh from flat buffers.
func FromBuffers(b *Buffers) *Mesh {
	m := &Mesh{Vertices: make([]v3.Vec, b.VertexCount())}
	for i := range m.Vertices {
		m.Vertices[i] = v3.Vec{
			X: float64(b.Vertices[3*i]),
			Y: float64(b.Vertices[3*i+1]),
			Z: float64(b.Vertices[3*i+2]),
		}
	}
	for t := 0; t < b.TriangleCount(); t++ {
		m.AddFace(false, int(b.Indices[3*t]), int(b.Indices[3*t+1]), int(b.Indices[3*t+2]))
	}
	return m
}
