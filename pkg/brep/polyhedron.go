package brep

import (
	"cmp"
	"math"
	"math/big"
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/chazu/brep/pkg/exact"
	"github.com/chazu/brep/pkg/mesh"
)

type dedge struct{ a, b int }

// corner is the position of a directed edge in the face list.
type corner struct{ face, pos int }

// polyhedron is the intermediate state of the general construction: the
// mesh with exact vertices and checked topology.
type polyhedron struct {
	verts  []exact.Vec
	faces  [][]int
	marks  []bool
	planes []exact.Plane
	edges  map[dedge]corner
}

// fromMesh builds a solid directly from the faces of m. Every face must be
// planar and the faces must form closed, consistently oriented 2-manifold
// shells.
func fromMesh(m *mesh.Mesh) (*Solid, error) {
	p, err := newPolyhedron(m)
	if err != nil {
		return nil, err
	}
	if err := p.checkTopology(); err != nil {
		return nil, err
	}
	if err := p.computePlanes(); err != nil {
		return nil, err
	}
	return p.assemble()
}

// newPolyhedron converts the referenced vertices of m exactly and
// renumbers them densely.
func newPolyhedron(m *mesh.Mesh) (*polyhedron, error) {
	p := &polyhedron{}
	remap := make(map[int]int)
	for fi, f := range m.Faces {
		if len(f) < 3 {
			return nil, buildErr(Invalid, "face %d has %d vertices", fi, len(f))
		}
		face := make([]int, len(f))
		for k, i := range f {
			if i < 0 || i >= len(m.Vertices) {
				return nil, buildErr(Invalid, "face %d: vertex index %d out of range", fi, i)
			}
			j, ok := remap[i]
			if !ok {
				v, err := exact.FromFloat(m.Vertices[i])
				if err != nil {
					return nil, &BuildError{Kind: KernelFault, Err: err}
				}
				j = len(p.verts)
				remap[i] = j
				p.verts = append(p.verts, v)
			}
			face[k] = j
		}
		p.faces = append(p.faces, face)
		p.marks = append(p.marks, m.IsMarked(fi))
	}
	return p, nil
}

// checkTopology requires every directed edge to be unique and matched by
// its reverse, and every vertex to have a single fan of faces around it.
func (p *polyhedron) checkTopology() error {
	p.edges = make(map[dedge]corner)
	for fi, f := range p.faces {
		seen := make(map[int]bool, len(f))
		for k, a := range f {
			if seen[a] {
				return buildErr(Invalid, "face %d repeats vertex %d", fi, a)
			}
			seen[a] = true
			e := dedge{a, f[(k+1)%len(f)]}
			if c, dup := p.edges[e]; dup {
				return buildErr(Invalid, "directed edge %d->%d used by faces %d and %d", e.a, e.b, c.face, fi)
			}
			p.edges[e] = corner{fi, k}
		}
	}
	for e := range p.edges {
		if _, ok := p.edges[dedge{e.b, e.a}]; !ok {
			return buildErr(NotClosed, "edge %d->%d has no reverse", e.a, e.b)
		}
	}

	// Around vertex v, the corner entered from u leaves towards next[v][u];
	// the following corner is the one entered from there.
	next := make([]map[int]int, len(p.verts))
	for _, f := range p.faces {
		n := len(f)
		for k, v := range f {
			if next[v] == nil {
				next[v] = make(map[int]int)
			}
			next[v][f[(k+n-1)%n]] = f[(k+1)%n]
		}
	}
	for v, around := range next {
		if len(around) == 0 {
			continue
		}
		var start int
		for u := range around {
			start = u
			break
		}
		steps := 0
		for u := start; ; {
			u = around[u]
			steps++
			if u == start || steps > len(around) {
				break
			}
		}
		if steps != len(around) {
			return buildErr(Invalid, "vertex %d is not manifold: %d of %d faces in its fan", v, steps, len(around))
		}
	}
	return nil
}

// computePlanes derives the exact plane of every face.
func (p *polyhedron) computePlanes() error {
	p.planes = make([]exact.Plane, len(p.faces))
	pts := make([]exact.Vec, 0, 8)
	for fi, f := range p.faces {
		pts = pts[:0]
		for _, i := range f {
			pts = append(pts, p.verts[i])
		}
		pl, err := exact.PlaneThrough(pts)
		if err != nil {
			return buildErr(NonPlanarFace, "face %d: %w", fi, err)
		}
		p.planes[fi] = pl
	}
	return nil
}

// components groups faces connected through shared edges that satisfy
// join. Groups are ordered by their lowest face.
func (p *polyhedron) components(join func(f, g int) bool) [][]int {
	g := simple.NewUndirectedGraph()
	for fi := range p.faces {
		g.AddNode(simple.Node(fi))
	}
	for e, c := range p.edges {
		r := p.edges[dedge{e.b, e.a}]
		if c.face < r.face && join(c.face, r.face) && !g.HasEdgeBetween(int64(c.face), int64(r.face)) {
			g.SetEdge(g.NewEdge(simple.Node(c.face), simple.Node(r.face)))
		}
	}
	var out [][]int
	for _, comp := range topo.ConnectedComponents(g) {
		ids := make([]int, len(comp))
		for i, n := range comp {
			ids[i] = int(n.ID())
		}
		slices.Sort(ids)
		out = append(out, ids)
	}
	slices.SortFunc(out, func(a, b []int) int { return cmp.Compare(a[0], b[0]) })
	return out
}

// assemble orients the shells, merges coplanar neighbours into facets and
// emits both sides of every facet.
func (p *polyhedron) assemble() (*Solid, error) {
	shells := p.components(func(int, int) bool { return true })
	shellOf := make([]int, len(p.faces))
	shellVol := make([]*big.Rat, len(shells))
	total := new(big.Rat)
	for si, faces := range shells {
		v := new(big.Rat)
		for _, fi := range faces {
			shellOf[fi] = si
			v.Add(v, cycleVolume(p.verts, p.faces[fi]))
		}
		shellVol[si] = v
		total.Add(total, v)
	}
	switch total.Sign() {
	case 0:
		return nil, buildErr(Invalid, "enclosed volume is zero")
	case -1:
		p.flip()
		for _, v := range shellVol {
			v.Neg(v)
		}
	}

	// Positive shells bound material against the outer volume; negative
	// ones bound a cavity of their own.
	s := &Solid{
		vertices: p.verts,
		volumes:  []Volume{{Mark: false}, {Mark: true}},
	}
	emptySide := make([]int, len(shells))
	for si, v := range shellVol {
		switch v.Sign() {
		case 0:
			return nil, buildErr(Invalid, "shell %d encloses no volume", si)
		case 1:
			emptySide[si] = OuterVolume
		default:
			emptySide[si] = len(s.volumes)
			s.volumes = append(s.volumes, Volume{Mark: false})
		}
	}

	keys := make([]string, len(p.faces))
	for fi, pl := range p.planes {
		keys[fi] = pl.Key()
	}
	groups := p.components(func(f, g int) bool {
		return keys[f] == keys[g] && p.marks[f] == p.marks[g]
	})
	for _, group := range groups {
		plane := p.planes[group[0]]
		cycles, err := p.boundaryCycles(group, plane)
		if err != nil {
			return nil, err
		}
		out := len(s.facets)
		s.facets = append(s.facets,
			HalfFacet{
				Plane:  plane,
				Cycles: cycles,
				Twin:   out + 1,
				Volume: emptySide[shellOf[group[0]]],
				Mark:   p.marks[group[0]],
			},
			HalfFacet{
				Plane:  plane.Opposite(),
				Cycles: reverseAll(cycles),
				Twin:   out,
				Volume: MaterialVolume,
				Mark:   p.marks[group[0]],
			})
	}
	return s, nil
}

// flip reverses every face.
func (p *polyhedron) flip() {
	for fi, f := range p.faces {
		slices.Reverse(f)
		p.planes[fi] = p.planes[fi].Opposite()
	}
	edges := make(map[dedge]corner, len(p.edges))
	for fi, f := range p.faces {
		for k, a := range f {
			edges[dedge{a, f[(k+1)%len(f)]}] = corner{fi, k}
		}
	}
	p.edges = edges
}

// boundaryCycles returns the boundary of a group of coplanar faces as
// cycles, the outer boundary first.
func (p *polyhedron) boundaryCycles(group []int, plane exact.Plane) ([][]int, error) {
	inGroup := make(map[dedge]bool)
	for _, fi := range group {
		f := p.faces[fi]
		for k, a := range f {
			inGroup[dedge{a, f[(k+1)%len(f)]}] = true
		}
	}
	out := make(map[int][]int) // vertex -> targets of boundary edges leaving it
	remaining := 0
	for e := range inGroup {
		if inGroup[dedge{e.b, e.a}] {
			continue
		}
		out[e.a] = append(out[e.a], e.b)
		remaining++
	}
	for _, ts := range out {
		slices.Sort(ts)
	}

	// Start from vertices the boundary passes once, so a cycle is never
	// cut open at a vertex where it touches itself.
	proj := newProjector(plane)
	starts := make([]int, 0, len(out))
	for v := range out {
		starts = append(starts, v)
	}
	slices.SortFunc(starts, func(a, b int) int {
		if c := cmp.Compare(len(out[a]), len(out[b])); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	var cycles [][]int
	for _, v0 := range starts {
		for len(out[v0]) > 0 {
			cycle := []int{v0}
			prev, cur := v0, p.take(out, v0, -1, proj)
			remaining--
			for cur != v0 {
				if len(out[cur]) == 0 {
					return nil, buildErr(KernelFault, "open boundary at vertex %d", cur)
				}
				cycle = append(cycle, cur)
				nxt := p.take(out, cur, prev, proj)
				remaining--
				prev, cur = cur, nxt
			}
			cycles = append(cycles, cycle)
		}
	}
	if remaining != 0 || len(cycles) == 0 {
		return nil, buildErr(KernelFault, "facet boundary of faces %v is inconsistent", group)
	}

	// Largest counter-clockwise cycle first, holes after it.
	n := plane.Normal()
	areas := make([]*big.Rat, len(cycles))
	for i, c := range cycles {
		pts := make([]exact.Vec, len(c))
		for k, vi := range c {
			pts[k] = p.verts[vi]
		}
		areas[i] = exact.NewellNormal(pts).Dot(n)
	}
	order := make([]int, len(cycles))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return areas[b].Cmp(areas[a]) })
	if areas[order[0]].Sign() <= 0 {
		return nil, buildErr(KernelFault, "facet of faces %v has no outer boundary", group)
	}
	sorted := make([][]int, len(cycles))
	for i, k := range order {
		sorted[i] = cycles[k]
	}
	return sorted, nil
}

// take removes and returns the boundary edge target leaving v. When several
// edges leave v it picks the first one clockwise from the direction back
// to prev, which keeps the facet on the left.
func (p *polyhedron) take(out map[int][]int, v, prev int, proj projector) int {
	ts := out[v]
	best := 0
	if len(ts) > 1 && prev >= 0 {
		back := proj.dir(p.verts[v], p.verts[prev])
		bestAngle := math.Inf(1)
		for i, t := range ts {
			a := clockwise(back, proj.dir(p.verts[v], p.verts[t]))
			if a < bestAngle {
				best, bestAngle = i, a
			}
		}
	}
	t := ts[best]
	out[v] = append(ts[:best:best], ts[best+1:]...)
	return t
}

// projector maps points of a plane to 2D so that cycles winding
// counter-clockwise around the plane normal stay counter-clockwise.
type projector struct {
	u, v int
	sign float64
}

func newProjector(pl exact.Plane) projector {
	axis := pl.DominantAxis()
	sign := 1.0
	if pl.Normal().Coord(axis).Sign() < 0 {
		sign = -1
	}
	return projector{u: (axis + 1) % 3, v: (axis + 2) % 3, sign: sign}
}

func (pr projector) dir(from, to exact.Vec) [2]float64 {
	du, _ := new(big.Rat).Sub(to.Coord(pr.u), from.Coord(pr.u)).Float64()
	dv, _ := new(big.Rat).Sub(to.Coord(pr.v), from.Coord(pr.v)).Float64()
	return [2]float64{du, pr.sign * dv}
}

// clockwise returns the clockwise angle in (0, 2pi] from a to b.
func clockwise(a, b [2]float64) float64 {
	ang := math.Atan2(a[1], a[0]) - math.Atan2(b[1], b[0])
	for ang <= 0 {
		ang += 2 * math.Pi
	}
	for ang > 2*math.Pi {
		ang -= 2 * math.Pi
	}
	return ang
}

func reverseAll(cs [][]int) [][]int {
	out := make([][]int, len(cs))
	for i, c := range cs {
		out[i] = reversed(c)
	}
	return out
}
