package brep

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/brep/pkg/mesh"
	"github.com/chazu/brep/pkg/tessellate"
)

// ExtractReport summarizes the defects found while extracting a mesh.
type ExtractReport struct {
	// LoopEdges counts facet loop edges without a reverse edge.
	LoopEdges int
	// TriangleEdges counts triangle edges without a reverse edge.
	TriangleEdges int
	// FailedFacets counts facets that could not be triangulated and were
	// left out.
	FailedFacets int
}

// Defects returns the number of unconnected edges found by both checks.
func (r ExtractReport) Defects() int {
	return r.LoopEdges + r.TriangleEdges
}

type extractFacet struct {
	loops []mesh.Face
	mark  bool
}

// Extract triangulates the visible boundary of s. Vertices are rounded to
// float32 precision and merged, so exact points closer than that become
// one vertex. Defects are logged and reported but never abort the
// extraction; a facet that cannot be triangulated is skipped.
func (c *Converter) Extract(s *Solid) (*mesh.Mesh, ExtractReport) {
	var report ExtractReport
	verts := mesh.NewReindexer[[3]float32]()
	lookup := func(i int) int { return verts.Lookup(s.vertices[i].Float32()) }

	var facets []extractFacet
	for i, f := range s.facets {
		if !s.IsOutward(i) {
			continue
		}
		var loops []mesh.Face
		for _, cyc := range f.Cycles {
			loop := make(mesh.Face, 0, len(cyc))
			for _, vi := range cyc {
				idx := lookup(vi)
				if len(loop) == 0 || loop[len(loop)-1] != idx {
					loop = append(loop, idx)
				}
			}
			if len(loop) > 1 && loop[0] == loop[len(loop)-1] {
				loop = loop[:len(loop)-1]
			}
			if len(loop) < 3 {
				continue
			}
			loops = append(loops, loop)
		}
		if len(loops) == 0 {
			continue
		}
		facets = append(facets, extractFacet{loops: loops, mark: f.Mark})
	}

	loopSets := make([][]mesh.Face, len(facets))
	for i, f := range facets {
		loopSets[i] = f.loops
	}
	if n := mesh.UnconnectedLoopEdges(loopSets); n > 0 {
		report.LoopEdges = n
		c.logger.Error("non-manifold mesh encountered", "unconnected_edges", n)
	}

	points := make([]v3.Vec, verts.Len())
	for i, p := range verts.Values() {
		points[i] = v3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
	}

	out := &mesh.Mesh{Vertices: points}
	var all [][3]int
	for fi, f := range facets {
		loops := make([][]int, len(f.loops))
		for i, l := range f.loops {
			loops[i] = l
		}
		tris, err := tessellate.PolygonWithHoles(points, loops)
		if err != nil {
			report.FailedFacets++
			c.logger.Error("facet triangulation failed", "facet", fi, "loops", len(loops), "err", err)
			continue
		}
		for _, t := range tris {
			all = append(all, t)
			out.AddFace(f.mark, t[0], t[1], t[2])
		}
	}

	if n := mesh.UnconnectedTriangleEdges(all); n > 0 {
		report.TriangleEdges = n
		c.logger.Error("non-manifold mesh created", "unconnected_edges", n)
	}
	return out, report
}
