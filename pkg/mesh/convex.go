package mesh

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultConvexTolerance is the dihedral slack, in degrees, under which a
// slightly reflex edge still counts as convex.
const DefaultConvexTolerance = 0.1

type facePlane struct {
	normal v3.Vec
	origin v3.Vec
	valid  bool
}

func (p facePlane) positiveSide(q v3.Vec) bool {
	return p.valid && p.normal.Dot(q.Sub(p.origin)) > 0
}

// IsApproximatelyConvex reports whether m is a closed, connected,
// edge-manifold shell whose faces are all within DefaultConvexTolerance of
// a convex arrangement. A face with fewer than three vertices makes the
// mesh non-convex.
//
// Non-planar faces can produce false positives; classify a tessellated mesh
// when that matters.
func IsApproximatelyConvex(m *Mesh) bool {
	return ConvexWithin(m, DefaultConvexTolerance)
}

// ConvexWithin is IsApproximatelyConvex with an explicit tolerance in degrees.
func ConvexWithin(m *Mesh, toleranceDeg float64) bool {
	if len(m.Faces) == 0 {
		return false
	}
	threshold := math.Cos(toleranceDeg * math.Pi / 180)

	owner := make(map[edge]int)
	planes := make([]facePlane, len(m.Faces))
	for i, f := range m.Faces {
		n := len(f)
		if n < 3 {
			return false // degenerate face bounds no volume
		}
		for j := range f {
			e := edge{f[j], f[(j+1)%n]}
			if _, dup := owner[e]; dup {
				return false // directed edge used twice: non-manifold
			}
			owner[e] = i
		}
		pts := m.FacePoints(i)
		planes[i] = facePlane{normal: NewellNormal(pts), origin: pts[0], valid: true}
	}

	for i, f := range m.Faces {
		n := len(f)
		for j := range f {
			other, ok := owner[edge{f[(j+1)%n], f[j]}]
			if !ok {
				return false // boundary edge
			}
			p := m.Vertices[f[(j+2)%n]]
			if !planes[other].positiveSide(p) {
				continue
			}
			u := planes[other].normal
			v := planes[i].normal
			cos := u.Dot(v) / (u.Length() * v.Length())
			if cos < threshold {
				return false
			}
		}
	}

	explored := make([]bool, len(m.Faces))
	explored[0] = true
	reached := 1
	queue := []int{0}
	for len(queue) > 0 {
		f := m.Faces[queue[0]]
		queue = queue[1:]
		for i := range f {
			next, ok := owner[edge{f[(i+1)%len(f)], f[i]}]
			if !ok {
				return false
			}
			if !explored[next] {
				explored[next] = true
				reached++
				queue = append(queue, next)
			}
		}
	}
	return reached == len(m.Faces)
}
