package brep

import (
	"cmp"
	"slices"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/golang/geo/r3"
	quickhull "github.com/markus-wa/quickhull-go/v2"

	"github.com/chazu/brep/pkg/exact"
	"github.com/chazu/brep/pkg/mesh"
)

type hullFace struct {
	v     [3]int
	alive bool
}

// convexHull returns the convex hull of pts as a mesh of strictly convex
// polygons wound counter-clockwise from outside, or nil when the points do
// not span a volume. pts must be distinct.
func convexHull(pts []v3.Vec) *mesh.Mesh {
	seed, ok := hullSeed(pts)
	if !ok {
		return nil
	}
	if h := quickHull(pts, seed); h != nil {
		return h
	}
	return incrementalHull(pts, seed)
}

// quickHull computes the hull in floating point and re-expresses its
// triangles exactly. It returns nil when rounding left the merged facets
// unclosed.
func quickHull(pts []v3.Vec, seed [4]int) *mesh.Mesh {
	cloud := make([]r3.Vector, len(pts))
	at := make(map[r3.Vector]int, len(pts))
	for i, p := range pts {
		cloud[i] = r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
		at[cloud[i]] = i
	}
	h := new(quickhull.QuickHull).ConvexHull(cloud, true, false, 0)

	faces := make([]hullFace, 0, len(h.Indices)/3)
	for k := 0; k+2 < len(h.Indices); k += 3 {
		f := hullFace{alive: true}
		for j := range f.v {
			i, ok := at[h.Vertices[h.Indices[k+j]]]
			if !ok {
				return nil
			}
			f.v[j] = i
		}
		// Orient by the seed, which lies inside every supporting plane.
		for _, s := range seed {
			o := exact.Orient3D(pts[f.v[0]], pts[f.v[1]], pts[f.v[2]], pts[s])
			if o > 0 {
				f.v[1], f.v[2] = f.v[2], f.v[1]
			}
			if o != 0 {
				break
			}
		}
		faces = append(faces, f)
	}

	m := hullFacets(pts, faces)
	if m.FaceCount() < 4 || mesh.UnconnectedLoopEdges(faceLoops(m)) != 0 {
		return nil
	}
	return m
}

// incrementalHull builds the hull with exact orientation tests only.
func incrementalHull(pts []v3.Vec, seed [4]int) *mesh.Mesh {
	faces := make([]hullFace, 0, 4)
	for _, f := range [4][4]int{{0, 1, 2, 3}, {0, 3, 1, 2}, {0, 2, 3, 1}, {1, 3, 2, 0}} {
		a, b, c, opp := seed[f[0]], seed[f[1]], seed[f[2]], seed[f[3]]
		if exact.Orient3D(pts[a], pts[b], pts[c], pts[opp]) > 0 {
			b, c = c, b
		}
		faces = append(faces, hullFace{v: [3]int{a, b, c}, alive: true})
	}

	inSeed := map[int]bool{seed[0]: true, seed[1]: true, seed[2]: true, seed[3]: true}
	for i, p := range pts {
		if inSeed[i] {
			continue
		}
		// Faces strictly below p are replaced by a cone from p over the
		// boundary of the visible region.
		visible := make(map[dedge]bool)
		for fi := range faces {
			f := &faces[fi]
			if exact.Orient3D(pts[f.v[0]], pts[f.v[1]], pts[f.v[2]], p) <= 0 {
				continue
			}
			f.alive = false
			for k := 0; k < 3; k++ {
				visible[dedge{f.v[k], f.v[(k+1)%3]}] = true
			}
		}
		if len(visible) == 0 {
			continue
		}
		faces = slices.DeleteFunc(faces, func(f hullFace) bool { return !f.alive })
		for e := range visible {
			if !visible[dedge{e.b, e.a}] {
				faces = append(faces, hullFace{v: [3]int{e.a, e.b, i}, alive: true})
			}
		}
	}

	return hullFacets(pts, faces)
}

// faceLoops wraps every face of m as a single-loop facet.
func faceLoops(m *mesh.Mesh) [][]mesh.Face {
	out := make([][]mesh.Face, len(m.Faces))
	for i, f := range m.Faces {
		out[i] = []mesh.Face{f}
	}
	return out
}

// hullSeed finds four points spanning a tetrahedron.
func hullSeed(pts []v3.Vec) ([4]int, bool) {
	var seed [4]int
	if len(pts) < 4 {
		return seed, false
	}
	e := make([]exact.Vec, len(pts))
	for i, p := range pts {
		v, err := exact.FromFloat(p)
		if err != nil {
			return seed, false
		}
		e[i] = v
	}
	seed[1] = -1
	for i := 1; i < len(pts); i++ {
		if !e[i].Equal(e[0]) {
			seed[1] = i
			break
		}
	}
	if seed[1] < 0 {
		return seed, false
	}
	d := e[seed[1]].Sub(e[0])
	seed[2] = -1
	for i := range pts {
		if !d.Cross(e[i].Sub(e[0])).IsZero() {
			seed[2] = i
			break
		}
	}
	if seed[2] < 0 {
		return seed, false
	}
	for i := range pts {
		if exact.Orient3D(pts[seed[0]], pts[seed[1]], pts[seed[2]], pts[i]) != 0 {
			seed[3] = i
			return seed, true
		}
	}
	return seed, false
}

// hullFacets merges the coplanar triangles of the hull and reduces every
// plane to the strictly convex polygon of its extreme points.
func hullFacets(pts []v3.Vec, faces []hullFace) *mesh.Mesh {
	type group struct {
		plane exact.Plane
		verts map[int]bool
	}
	var order []string
	groups := make(map[string]*group)
	for _, f := range faces {
		if !f.alive {
			continue
		}
		tri := make([]exact.Vec, 3)
		for k, i := range f.v {
			tri[k], _ = exact.FromFloat(pts[i])
		}
		pl, err := exact.PlaneThrough(tri)
		if err != nil {
			continue
		}
		key := pl.Key()
		g, ok := groups[key]
		if !ok {
			g = &group{plane: pl, verts: make(map[int]bool)}
			groups[key] = g
			order = append(order, key)
		}
		for _, i := range f.v {
			g.verts[i] = true
		}
	}

	m := &mesh.Mesh{Vertices: pts}
	for _, key := range order {
		g := groups[key]
		idx := make([]int, 0, len(g.verts))
		for i := range g.verts {
			idx = append(idx, i)
		}
		poly := convexPolygon(pts, idx, g.plane)
		if len(poly) >= 3 {
			m.AddFace(false, poly...)
		}
	}
	return m
}

// convexPolygon returns the extreme points among the coplanar points idx as
// a polygon winding counter-clockwise around the plane normal. Points on
// edges are dropped.
func convexPolygon(pts []v3.Vec, idx []int, pl exact.Plane) []int {
	axis := pl.DominantAxis()
	u, v := (axis+1)%3, (axis+2)%3
	at := func(i int) v2.Vec {
		return v2.Vec{X: coordOf(pts[i], u), Y: coordOf(pts[i], v)}
	}
	slices.SortFunc(idx, func(a, b int) int {
		pa, pb := at(a), at(b)
		if c := cmp.Compare(pa.X, pb.X); c != 0 {
			return c
		}
		return cmp.Compare(pa.Y, pb.Y)
	})
	if len(idx) < 3 {
		return nil
	}

	// Andrew's monotone chain, popping collinear points as well.
	hull := make([]int, 0, 2*len(idx))
	for _, i := range idx {
		for len(hull) >= 2 && exact.Orient2D(at(hull[len(hull)-2]), at(hull[len(hull)-1]), at(i)) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, i)
	}
	lower := len(hull) + 1
	for k := len(idx) - 2; k >= 0; k-- {
		i := idx[k]
		for len(hull) >= lower && exact.Orient2D(at(hull[len(hull)-2]), at(hull[len(hull)-1]), at(i)) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, i)
	}
	hull = hull[:len(hull)-1]

	if pl.Normal().Coord(axis).Sign() < 0 {
		slices.Reverse(hull)
	}
	return hull
}

func coordOf(p v3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	}
	return p.Z
}
