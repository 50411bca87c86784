package kernel

import (
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/brep/pkg/brep"
	"github.com/chazu/brep/pkg/mesh"
	"github.com/chazu/brep/pkg/tessellate"
)

// Geometry is one of *MeshGeometry, *SolidGeometry or *Polygon2D. The set
// is closed; conversions switch over it exhaustively.
type Geometry interface {
	// BoundingBox returns the axis-aligned bounds.
	BoundingBox() sdf.Box3
	isGeometry()
}

// MeshGeometry is a polygon mesh, the form geometry arrives in and leaves
// the kernel in.
type MeshGeometry struct {
	Mesh *mesh.Mesh
}

// SolidGeometry is an exact solid.
type SolidGeometry struct {
	Solid *brep.Solid
}

// Polygon2D is a polygon with holes in the XY plane.
type Polygon2D struct {
	Outer []v2.Vec
	Holes [][]v2.Vec
}

func (*MeshGeometry) isGeometry()  {}
func (*SolidGeometry) isGeometry() {}
func (*Polygon2D) isGeometry()     {}

func (g *MeshGeometry) BoundingBox() sdf.Box3 {
	if g.Mesh == nil {
		return sdf.Box3{}
	}
	return g.Mesh.BoundingBox()
}

func (g *SolidGeometry) BoundingBox() sdf.Box3 {
	if g.Solid == nil {
		return sdf.Box3{}
	}
	return g.Solid.BoundingBox()
}

// BoundingBox returns the bounds of the outline with zero height.
func (p *Polygon2D) BoundingBox() sdf.Box3 {
	if len(p.Outer) == 0 {
		return sdf.Box3{}
	}
	lo, hi := p.Outer[0], p.Outer[0]
	for _, q := range p.Outer[1:] {
		lo = lo.Min(q)
		hi = hi.Max(q)
	}
	return sdf.Box3{Min: v3.Vec{X: lo.X, Y: lo.Y}, Max: v3.Vec{X: hi.X, Y: hi.Y}}
}

// signedArea returns twice the signed area of a ring, positive for
// counter-clockwise.
func signedArea(ring []v2.Vec) float64 {
	sum := 0.0
	for i, p := range ring {
		q := ring[(i+1)%len(ring)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum
}

// Mesh triangulates the polygon in the z=0 plane with every triangle
// facing +Z, whichever way the outline winds.
func (p *Polygon2D) Mesh() (*mesh.Mesh, error) {
	m := mesh.New()
	if len(p.Outer) < 3 {
		return m, nil
	}
	ring := func(pts []v2.Vec, ccw bool) []int {
		idx := make([]int, len(pts))
		for i, q := range pts {
			idx[i] = m.AddVertex(v3.Vec{X: q.X, Y: q.Y})
		}
		if (signedArea(pts) > 0) != ccw {
			for i, j := 0, len(idx)-1; i < j; i, j = i+1, j-1 {
				idx[i], idx[j] = idx[j], idx[i]
			}
		}
		return idx
	}
	loops := [][]int{ring(p.Outer, true)}
	for _, h := range p.Holes {
		loops = append(loops, ring(h, false))
	}
	tris, err := tessellate.PolygonWithHoles(m.Vertices, loops)
	if err != nil {
		return nil, err
	}
	for _, t := range tris {
		m.AddFace(false, t[0], t[1], t[2])
	}
	return m, nil
}

// transform maps every point through t, dropping Z. Mesh fixes up the
// winding, so mirrors need no special case.
func (p *Polygon2D) transform(t mgl64.Mat4) *Polygon2D {
	ring := func(r []v2.Vec) []v2.Vec {
		out := make([]v2.Vec, len(r))
		for i, q := range r {
			w := mesh.TransformPoint(t, v3.Vec{X: q.X, Y: q.Y})
			out[i] = v2.Vec{X: w.X, Y: w.Y}
		}
		return out
	}
	out := &Polygon2D{Outer: ring(p.Outer)}
	for _, h := range p.Holes {
		out.Holes = append(out.Holes, ring(h))
	}
	return out
}
