// Package brep implements an exact boundary representation of polyhedral
// solids: construction from polygon meshes, extraction back to triangle
// meshes and exact affine transforms.
//
// A Solid partitions space into volumes separated by half-facets. Every
// boundary facet is stored twice, once per side. A half-facet's plane normal
// points into its incident volume and its cycles wind counter-clockwise
// around that normal. Volume 0 is the unbounded outer space, volume 1 is
// the material, and every cavity gets a volume of its own. Only the material
// is marked.
//
// Solids are immutable once built and may be shared between goroutines.
// Operations that change geometry return a new Solid.
package brep

import (
	"math/big"
	"slices"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/brep/pkg/exact"
)

const (
	// OuterVolume is the index of the unbounded empty volume.
	OuterVolume = 0
	// MaterialVolume is the index of the solid's interior.
	MaterialVolume = 1
)

// Volume is a region of space bounded by half-facets.
type Volume struct {
	// Mark is set for volumes inside the solid.
	Mark bool
}

// HalfFacet is one side of a planar boundary facet.
type HalfFacet struct {
	Plane exact.Plane
	// Cycles are vertex index loops. Cycles[0] is the outer boundary, the
	// rest are holes and wind the other way.
	Cycles [][]int
	// Twin is the index of the half-facet on the other side.
	Twin int
	// Volume is the index of the incident volume, the one Plane's normal
	// points into.
	Volume int
	// Mark is carried from the faces of the source mesh.
	Mark bool
}

// Solid is an exact polyhedral solid.
type Solid struct {
	vertices []exact.Vec
	facets   []HalfFacet
	volumes  []Volume
}

// NewEmpty returns the solid with no material.
func NewEmpty() *Solid {
	return &Solid{volumes: []Volume{{Mark: false}}}
}

// IsEmpty reports whether the solid has no facets.
func (s *Solid) IsEmpty() bool {
	return len(s.facets) == 0
}

// VertexCount returns the number of vertices.
func (s *Solid) VertexCount() int {
	return len(s.vertices)
}

// Vertex returns vertex i.
func (s *Solid) Vertex(i int) exact.Vec {
	return s.vertices[i]
}

// FacetCount returns the number of half-facets, twice the number of
// boundary facets.
func (s *Solid) FacetCount() int {
	return len(s.facets)
}

// Facet returns half-facet i. The returned cycles are copies.
func (s *Solid) Facet(i int) HalfFacet {
	f := s.facets[i]
	f.Cycles = cloneCycles(f.Cycles)
	return f
}

// VolumeCount returns the number of volumes including the outer one.
func (s *Solid) VolumeCount() int {
	return len(s.volumes)
}

// Volume returns volume i.
func (s *Solid) Volume(i int) Volume {
	return s.volumes[i]
}

// IsOutward reports whether half-facet i faces empty space, that is,
// whether it is part of the visible boundary.
func (s *Solid) IsOutward(i int) bool {
	return !s.volumes[s.facets[i].Volume].Mark
}

// ExactBounds returns the exact axis-aligned bounds of the vertices. ok is
// false for an empty solid.
func (s *Solid) ExactBounds() (lo, hi exact.Vec, ok bool) {
	if len(s.vertices) == 0 {
		return exact.Vec{}, exact.Vec{}, false
	}
	lo, hi = s.vertices[0], s.vertices[0]
	for _, v := range s.vertices[1:] {
		lo = exact.Min(lo, v)
		hi = exact.Max(hi, v)
	}
	return lo, hi, true
}

// BoundingBox returns the bounds rounded to float64. An empty solid has
// the zero box.
func (s *Solid) BoundingBox() sdf.Box3 {
	lo, hi, ok := s.ExactBounds()
	if !ok {
		return sdf.Box3{}
	}
	return sdf.Box3{Min: lo.Float(), Max: hi.Float()}
}

// EnclosedVolume returns the exact volume of the material.
func (s *Solid) EnclosedVolume() *big.Rat {
	sum := new(big.Rat)
	for i, f := range s.facets {
		if !s.IsOutward(i) {
			continue
		}
		for _, c := range f.Cycles {
			sum.Add(sum, cycleVolume(s.vertices, c))
		}
	}
	return sum.Quo(sum, big.NewRat(6, 1))
}

// cycleVolume returns six times the signed volume of the cone from the
// origin over the cycle.
func cycleVolume(verts []exact.Vec, c []int) *big.Rat {
	sum := new(big.Rat)
	p0 := verts[c[0]]
	for k := 1; k+1 < len(c); k++ {
		sum.Add(sum, exact.Triple(p0, verts[c[k]], verts[c[k+1]]))
	}
	return sum
}

// Points returns the vertices rounded to float64.
func (s *Solid) Points() []v3.Vec {
	out := make([]v3.Vec, len(s.vertices))
	for i, v := range s.vertices {
		out[i] = v.Float()
	}
	return out
}

func cloneCycles(cs [][]int) [][]int {
	out := make([][]int, len(cs))
	for i, c := range cs {
		out[i] = slices.Clone(c)
	}
	return out
}

func reversed(c []int) []int {
	out := slices.Clone(c)
	slices.Reverse(out)
	return out
}
