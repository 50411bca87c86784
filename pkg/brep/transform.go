package brep

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/brep/pkg/exact"
)

// Transform returns s mapped through the affine matrix t. The matrix
// entries are taken exactly, so the result is exact too. A mirroring
// matrix reverses every cycle to keep facets facing their volumes.
// t must be affine and invertible; anything else panics.
func (s *Solid) Transform(t mgl64.Mat4) *Solid {
	a, err := exact.NewAffine(t)
	if err != nil {
		panic(fmt.Sprintf("brep.Solid.Transform: %v", err))
	}
	out := &Solid{
		vertices: make([]exact.Vec, len(s.vertices)),
		facets:   make([]HalfFacet, len(s.facets)),
		volumes:  append([]Volume(nil), s.volumes...),
	}
	for i, v := range s.vertices {
		out.vertices[i] = a.Apply(v)
	}
	mirror := a.Mirrors()
	for i, f := range s.facets {
		g := f
		if mirror {
			g.Cycles = reverseAll(f.Cycles)
		} else {
			g.Cycles = cloneCycles(f.Cycles)
		}
		outer := make([]exact.Vec, len(g.Cycles[0]))
		for k, vi := range g.Cycles[0] {
			outer[k] = out.vertices[vi]
		}
		g.Plane = exact.NewPlane(exact.NewellNormal(outer), outer[0])
		out.facets[i] = g
	}
	return out
}
