// Package tessellate triangulates planar polygons, with or without holes,
// and converts polygon meshes into triangle meshes.
//
// Polygons are projected onto the coordinate plane most orthogonal to their
// normal and handed to libtess2 with the odd winding rule, so every hole is
// subtracted whatever its orientation. Output triangles keep the winding of
// the outer loop and reference the caller's vertex indices, so vertices
// shared with neighbouring polygons stay shared.
package tessellate

import (
	"errors"
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/hajimehoshi/go-libtess2"

	"github.com/chazu/brep/pkg/exact"
	"github.com/chazu/brep/pkg/mesh"
)

var (
	// ErrDegenerate is returned when the outer loop has no area.
	ErrDegenerate = errors.New("tessellate: degenerate polygon")
	// ErrIncomplete is returned when the triangles do not cover the polygon,
	// typically because its loops self-intersect.
	ErrIncomplete = errors.New("tessellate: triangulation does not cover polygon")
)

// coverageTolerance is the relative area mismatch accepted between a
// polygon and its triangulation. libtess2 works in float32.
const coverageTolerance = 1e-5

func coord(p v3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	}
	return p.Z
}

func dominantAxis(n v3.Vec) int {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case ax >= ay && ax >= az:
		return 0
	case ay >= az:
		return 1
	}
	return 2
}

// projection maps 3D vertices to 2D by dropping the axis along which the
// polygon normal is largest. flip is set when the projection reverses the
// polygon's winding.
type projection struct {
	u, v int
	flip bool
}

func newProjection(n v3.Vec) (projection, bool) {
	axis := dominantAxis(n)
	c := coord(n, axis)
	if c == 0 || math.IsNaN(c) {
		return projection{}, false
	}
	return projection{u: (axis + 1) % 3, v: (axis + 2) % 3, flip: c < 0}, true
}

func (pr projection) apply(p v3.Vec) v2.Vec {
	return v2.Vec{X: coord(p, pr.u), Y: coord(p, pr.v)}
}

// ringArea returns twice the signed area of the projected loop.
func (pr projection) ringArea(verts []v3.Vec, loop []int) float64 {
	a := 0.0
	for k, i := range loop {
		p, q := pr.apply(verts[i]), pr.apply(verts[loop[(k+1)%len(loop)]])
		a += p.X*q.Y - q.X*p.Y
	}
	return a
}

// contours converts loops to libtess2 input, centred on origin to keep the
// float32 coordinates precise. The returned table maps each input
// coordinate back to the first vertex index that produced it.
func (pr projection) contours(verts []v3.Vec, loops [][]int, origin v2.Vec) ([]libtess2.Contour, *mesh.Reindexer[[3]float32], []int) {
	keys := mesh.NewReindexer[[3]float32]()
	var src []int
	cs := make([]libtess2.Contour, 0, len(loops))
	for _, l := range loops {
		c := make(libtess2.Contour, len(l))
		for k, i := range l {
			q := pr.apply(verts[i]).Sub(origin)
			c[k] = libtess2.Vertex{X: float32(q.X), Y: float32(q.Y)}
			if keys.Lookup([3]float32{c[k].X, c[k].Y, 0}) == len(src) {
				src = append(src, i)
			}
		}
		cs = append(cs, c)
	}
	return cs, keys, src
}

// Polygon triangulates a single planar loop of indices into verts.
func Polygon(verts []v3.Vec, loop []int) ([][3]int, error) {
	return PolygonWithHoles(verts, [][]int{loop})
}

// PolygonWithHoles triangulates a planar polygon whose first loop is the
// outer boundary and whose remaining loops are holes. The normal is taken
// from the outer loop, so hole winding does not matter. Triangles follow
// the outer loop's winding. Loops that cross each other need new vertices
// and are reported as ErrIncomplete.
func PolygonWithHoles(verts []v3.Vec, loops [][]int) ([][3]int, error) {
	if len(loops) == 0 || len(loops[0]) < 3 {
		return nil, fmt.Errorf("%w: outer loop too short", ErrDegenerate)
	}
	for _, l := range loops {
		for _, i := range l {
			if i < 0 || i >= len(verts) {
				return nil, fmt.Errorf("tessellate: vertex index %d out of range [0, %d)", i, len(verts))
			}
		}
	}

	outer := make([]v3.Vec, len(loops[0]))
	for k, i := range loops[0] {
		outer[k] = verts[i]
	}
	pr, ok := newProjection(mesh.NewellNormal(outer))
	if !ok {
		return nil, ErrDegenerate
	}

	kept := [][]int{loops[0]}
	want := math.Abs(pr.ringArea(verts, loops[0]))
	for _, l := range loops[1:] {
		if len(l) < 3 {
			continue
		}
		kept = append(kept, l)
		want -= math.Abs(pr.ringArea(verts, l))
	}

	var origin v2.Vec
	for _, p := range outer {
		origin = origin.Add(pr.apply(p))
	}
	origin = origin.DivScalar(float64(len(outer)))

	cs, keys, src := pr.contours(verts, kept, origin)
	elems, out, err := libtess2.Tesselate(cs, libtess2.WindingRuleOdd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncomplete, err)
	}

	// Output vertices are input coordinates unless libtess2 had to split
	// crossing edges.
	idx := make([]int, len(out))
	for k, v := range out {
		id := keys.Lookup([3]float32{v.X, v.Y, v.Z})
		if id >= len(src) {
			return nil, fmt.Errorf("%w: loops intersect at (%g, %g)", ErrIncomplete, v.X, v.Y)
		}
		idx[k] = src[id]
	}

	tris := make([][3]int, 0, len(elems)/3)
	got := 0.0
	for k := 0; k+2 < len(elems); k += 3 {
		e := elems[k : k+3]
		if e[0] < 0 || e[1] < 0 || e[2] < 0 {
			continue
		}
		t := [3]int{idx[e[0]], idx[e[1]], idx[e[2]]}
		a, b, c := pr.apply(verts[t[0]]), pr.apply(verts[t[1]]), pr.apply(verts[t[2]])
		if o := exact.Orient2D(a, b, c); o != 0 && (o < 0) != pr.flip {
			t[1], t[2] = t[2], t[1]
		}
		got += math.Abs((b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X))
		tris = append(tris, t)
	}
	if math.Abs(got-want) > coverageTolerance*math.Max(want, math.SmallestNonzeroFloat64) {
		return tris, fmt.Errorf("%w: area %g of %g", ErrIncomplete, got/2, want/2)
	}
	return tris, nil
}

// Faces returns a triangle mesh with the same vertices as m. Triangles are
// copied unchanged; larger faces are triangulated, falling back to a fan
// when the face cannot be triangulated. Face marks carry over to every
// triangle of the face.
func Faces(m *mesh.Mesh) *mesh.Mesh {
	out := &mesh.Mesh{Vertices: append([]v3.Vec(nil), m.Vertices...)}
	for i, f := range m.Faces {
		marked := m.IsMarked(i)
		if len(f) == 3 {
			out.AddFace(marked, f...)
			continue
		}
		tris, err := Polygon(m.Vertices, f)
		if err != nil {
			tris = fan(f)
		}
		for _, t := range tris {
			out.AddFace(marked, t[:]...)
		}
	}
	return out
}

func fan(f mesh.Face) [][3]int {
	var tris [][3]int
	for k := 1; k+1 < len(f); k++ {
		tris = append(tris, [3]int{f[0], f[k], f[k+1]})
	}
	return tris
}
