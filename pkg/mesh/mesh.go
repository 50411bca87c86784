// Package mesh defines the floating point polygon mesh exchanged with the
// exact solid kernel, together with the utilities that operate directly on
// it: vertex quantization, the approximate convexity test, manifold edge
// accounting and affine transforms.
//
// A Mesh makes no promises about planarity or manifoldness. Faces are loops
// of vertex indices which may be non-planar or non-convex; every consumer in
// this module tolerates that.
package mesh

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Face is an ordered loop of indices into Mesh.Vertices.
type Face []int

// Mesh is an indexed polygon mesh. Marked optionally tags each face; when
// set it has the same length as Faces.
type Mesh struct {
	Vertices []v3.Vec
	Faces    []Face
	Marked   []bool
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// IsEmpty returns true if the mesh has no faces.
func (m *Mesh) IsEmpty() bool {
	return len(m.Faces) == 0
}

// IsMarked reports the tag of face i. Untagged meshes report false.
func (m *Mesh) IsMarked(i int) bool {
	return i < len(m.Marked) && m.Marked[i]
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(v v3.Vec) int {
	m.Vertices = append(m.Vertices, v)
	return len(m.Vertices) - 1
}

// AddFace appends a face referencing existing vertices.
func (m *Mesh) AddFace(marked bool, idx ...int) {
	if marked && m.Marked == nil {
		m.Marked = make([]bool, len(m.Faces), len(m.Faces)+1)
	}
	m.Faces = append(m.Faces, append(Face(nil), idx...))
	if m.Marked != nil {
		m.Marked = append(m.Marked, marked)
	}
}

// AddPolygon appends a face together with fresh copies of its vertices.
func (m *Mesh) AddPolygon(marked bool, pts ...v3.Vec) {
	f := make([]int, len(pts))
	for i, p := range pts {
		f[i] = m.AddVertex(p)
	}
	m.AddFace(marked, f...)
}

// FacePoints returns the vertex positions of face i in loop order.
func (m *Mesh) FacePoints(i int) []v3.Vec {
	f := m.Faces[i]
	pts := make([]v3.Vec, len(f))
	for j, idx := range f {
		pts[j] = m.Vertices[idx]
	}
	return pts
}

// Validate checks that every face has at least three indices and that all
// indices reference existing vertices.
func (m *Mesh) Validate() error {
	if m.Marked != nil && len(m.Marked) != len(m.Faces) {
		return fmt.Errorf("mesh: %d face marks for %d faces", len(m.Marked), len(m.Faces))
	}
	for i, f := range m.Faces {
		if len(f) < 3 {
			return fmt.Errorf("mesh: face %d has %d vertices, want at least 3", i, len(f))
		}
		for _, idx := range f {
			if idx < 0 || idx >= len(m.Vertices) {
				return fmt.Errorf("mesh: face %d references vertex %d, have %d vertices", i, idx, len(m.Vertices))
			}
		}
	}
	return nil
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Vertices: append([]v3.Vec(nil), m.Vertices...),
		Faces:    make([]Face, len(m.Faces)),
	}
	for i, f := range m.Faces {
		c.Faces[i] = append(Face(nil), f...)
	}
	if m.Marked != nil {
		c.Marked = append([]bool(nil), m.Marked...)
	}
	return c
}

// IsTriangles reports whether every face is a triangle.
func (m *Mesh) IsTriangles() bool {
	for _, f := range m.Faces {
		if len(f) != 3 {
			return false
		}
	}
	return true
}

// BoundingBox returns the axis-aligned bounds of the vertices referenced by
// faces. An empty mesh yields a zero box.
func (m *Mesh) BoundingBox() sdf.Box3 {
	first := true
	var bb sdf.Box3
	for _, f := range m.Faces {
		for _, idx := range f {
			v := m.Vertices[idx]
			if first {
				bb = sdf.Box3{Min: v, Max: v}
				first = false
				continue
			}
			bb.Min = v3.Vec{X: math.Min(bb.Min.X, v.X), Y: math.Min(bb.Min.Y, v.Y), Z: math.Min(bb.Min.Z, v.Z)}
			bb.Max = v3.Vec{X: math.Max(bb.Max.X, v.X), Y: math.Max(bb.Max.Y, v.Y), Z: math.Max(bb.Max.Z, v.Z)}
		}
	}
	return bb
}

// Area returns the total surface area. Non-planar faces contribute the
// magnitude of their vector area.
func (m *Mesh) Area() float64 {
	var sum float64
	for i := range m.Faces {
		sum += NewellNormal(m.FacePoints(i)).Length() / 2
	}
	return sum
}

// SignedVolume returns the enclosed volume, positive when faces wind
// counter-clockwise seen from outside.
func (m *Mesh) SignedVolume() float64 {
	var sum float64
	for i := range m.Faces {
		pts := m.FacePoints(i)
		for j := 1; j+1 < len(pts); j++ {
			sum += pts[0].Dot(pts[j].Cross(pts[j+1]))
		}
	}
	return sum / 6
}

// NewellNormal computes the unnormalized polygon normal using Newell's
// method. It uses every vertex, so it stays meaningful for slightly
// non-planar loops and for loops whose first three points are collinear.
// Its length is twice the polygon area.
func NewellNormal(pts []v3.Vec) v3.Vec {
	var n v3.Vec
	for i := range pts {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}
