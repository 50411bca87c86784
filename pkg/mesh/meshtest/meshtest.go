// Package meshtest provides small closed meshes with known geometry for
// tests across the kernel packages. All shells wind counter-clockwise seen
// from outside.
package meshtest

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/brep/pkg/mesh"
)

// Cube returns an axis-aligned cube from the origin to (s,s,s) with six
// quad faces.
func Cube(s float64) *mesh.Mesh {
	return Box(v3.Vec{}, v3.Vec{X: s, Y: s, Z: s})
}

// Box returns an axis-aligned box between min and max with six quad faces.
func Box(min, max v3.Vec) *mesh.Mesh {
	m := mesh.New()
	for _, p := range []v3.Vec{
		{X: min.X, Y: min.Y, Z: min.Z}, // 0
		{X: max.X, Y: min.Y, Z: min.Z}, // 1
		{X: max.X, Y: max.Y, Z: min.Z}, // 2
		{X: min.X, Y: max.Y, Z: min.Z}, // 3
		{X: min.X, Y: min.Y, Z: max.Z}, // 4
		{X: max.X, Y: min.Y, Z: max.Z}, // 5
		{X: max.X, Y: max.Y, Z: max.Z}, // 6
		{X: min.X, Y: max.Y, Z: max.Z}, // 7
	} {
		m.AddVertex(p)
	}
	m.AddFace(false, 0, 3, 2, 1) // bottom
	m.AddFace(false, 4, 5, 6, 7) // top
	m.AddFace(false, 0, 1, 5, 4) // front (y=min)
	m.AddFace(false, 1, 2, 6, 5) // right
	m.AddFace(false, 2, 3, 7, 6) // back
	m.AddFace(false, 3, 0, 4, 7) // left
	return m
}

// Octahedron returns a regular octahedron with vertices at distance r on
// each axis.
func Octahedron(r float64) *mesh.Mesh {
	m := mesh.New()
	for _, p := range []v3.Vec{
		{X: r}, {X: -r}, {Y: r}, {Y: -r}, {Z: r}, {Z: -r},
	} {
		m.AddVertex(p)
	}
	// 0:+x 1:-x 2:+y 3:-y 4:+z 5:-z
	m.AddFace(false, 0, 2, 4)
	m.AddFace(false, 2, 1, 4)
	m.AddFace(false, 1, 3, 4)
	m.AddFace(false, 3, 0, 4)
	m.AddFace(false, 2, 0, 5)
	m.AddFace(false, 1, 2, 5)
	m.AddFace(false, 3, 1, 5)
	m.AddFace(false, 0, 3, 5)
	return m
}

// Tetrahedron returns the corner tetrahedron (0,0,0),(s,0,0),(0,s,0),(0,0,s).
func Tetrahedron(s float64) *mesh.Mesh {
	m := mesh.New()
	m.AddVertex(v3.Vec{})
	m.AddVertex(v3.Vec{X: s})
	m.AddVertex(v3.Vec{Y: s})
	m.AddVertex(v3.Vec{Z: s})
	m.AddFace(false, 0, 2, 1)
	m.AddFace(false, 0, 1, 3)
	m.AddFace(false, 0, 3, 2)
	m.AddFace(false, 1, 2, 3)
	return m
}

// LPrism returns an L-shaped prism of height h: the 2x2 square [0,2]^2 with
// the [1,2]x[1,2] quadrant removed, extruded along Z. The top and bottom
// faces are planar non-convex hexagons and the edge at (1,1) is reflex.
// Area is 2*3 + 8*h, volume is 3*h.
func LPrism(h float64) *mesh.Mesh {
	outline := []v3.Vec{
		{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2},
	}
	return Extrude(outline, h)
}

// Extrude builds a prism from a counter-clockwise XY outline lifted to
// height h. The caps are single (possibly non-convex) faces.
func Extrude(outline []v3.Vec, h float64) *mesh.Mesh {
	m := mesh.New()
	n := len(outline)
	for _, p := range outline {
		m.AddVertex(v3.Vec{X: p.X, Y: p.Y, Z: 0})
	}
	for _, p := range outline {
		m.AddVertex(v3.Vec{X: p.X, Y: p.Y, Z: h})
	}
	bottom := make([]int, n)
	top := make([]int, n)
	for i := 0; i < n; i++ {
		bottom[i] = n - 1 - i
		top[i] = n + i
	}
	m.AddFace(false, bottom...)
	m.AddFace(false, top...)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		m.AddFace(false, i, j, n+j, n+i)
	}
	return m
}

// Frame returns a square 4x4 block of height 1 with a 2x2 square hole
// through its center. Its top and bottom are each split into four
// trapezoids, so after coplanar merging each cap is a single facet with one
// hole. Area is 48, volume is 12.
func Frame() *mesh.Mesh {
	m := mesh.New()
	outer := []v3.Vec{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}}
	inner := []v3.Vec{{X: 1, Y: 1}, {X: 3, Y: 1}, {X: 3, Y: 3}, {X: 1, Y: 3}}
	idx := func(ring []v3.Vec, z float64) []int {
		out := make([]int, len(ring))
		for i, p := range ring {
			out[i] = m.AddVertex(v3.Vec{X: p.X, Y: p.Y, Z: z})
		}
		return out
	}
	ob, ot := idx(outer, 0), idx(outer, 1)
	ib, it := idx(inner, 0), idx(inner, 1)
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		m.AddFace(false, ot[i], ot[j], it[j], it[i]) // top
		m.AddFace(false, ib[i], ib[j], ob[j], ob[i]) // bottom
		m.AddFace(false, ob[i], ob[j], ot[j], ot[i]) // outer wall
		m.AddFace(false, ib[j], ib[i], it[i], it[j]) // inner wall
	}
	return m
}

// TwoCubes returns two disjoint unit cubes, the second offset by 3 on X.
func TwoCubes() *mesh.Mesh {
	return Join(Cube(1), Box(v3.Vec{X: 3}, v3.Vec{X: 4, Y: 1, Z: 1}))
}

// Join returns a mesh holding the faces of all ms, with vertex lists
// concatenated.
func Join(ms ...*mesh.Mesh) *mesh.Mesh {
	out := mesh.New()
	for _, m := range ms {
		off := len(out.Vertices)
		out.Vertices = append(out.Vertices, m.Vertices...)
		for i, f := range m.Faces {
			g := make([]int, len(f))
			for k, idx := range f {
				g[k] = idx + off
			}
			out.AddFace(m.IsMarked(i), g...)
		}
	}
	return out
}

// Inverted returns a copy of m with every face reversed.
func Inverted(m *mesh.Mesh) *mesh.Mesh {
	c := m.Clone()
	for _, f := range c.Faces {
		for i, j := 0, len(f)-1; i < j; i, j = i+1, j-1 {
			f[i], f[j] = f[j], f[i]
		}
	}
	return c
}
