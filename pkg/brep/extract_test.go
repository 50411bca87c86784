package brep

import (
	"math/big"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/brep/pkg/exact"
	"github.com/chazu/brep/pkg/mesh/meshtest"
)

// flatSolid builds a solid by hand whose outward facets all lie in z=0 and
// are given by cycles. Each gets a twin on the material side.
func flatSolid(t *testing.T, pts []v3.Vec, marked bool, cycles ...[]int) *Solid {
	t.Helper()
	s := &Solid{volumes: []Volume{{Mark: false}, {Mark: true}}}
	for _, p := range pts {
		v, err := exact.FromFloat(p)
		require.NoError(t, err)
		s.vertices = append(s.vertices, v)
	}
	up := exact.NewPlane(exact.NewVec(0, 0, 1), exact.Zero())
	for _, c := range cycles {
		n := len(s.facets)
		s.facets = append(s.facets,
			HalfFacet{Plane: up, Cycles: [][]int{c}, Twin: n + 1, Volume: OuterVolume, Mark: marked},
			HalfFacet{Plane: up.Opposite(), Cycles: [][]int{reversed(c)}, Twin: n, Volume: MaterialVolume, Mark: marked},
		)
	}
	return s
}

func TestExtractMergesInFloat32(t *testing.T) {
	pts := []v3.Vec{
		{X: 0, Y: 0},
		{X: 1, Y: 0},
		{X: 1, Y: 1},
		{X: 0, Y: 1},
		{X: 1, Y: 1 - 1e-12},
	}
	// The sliver collapses to two points and is culled.
	s := flatSolid(t, pts, true, []int{0, 1, 4, 2, 3}, []int{1, 2, 4})

	c, logs := newTestConverter()
	out, report := c.Extract(s)
	assert.Equal(t, 4, out.VertexCount())
	assert.Equal(t, 2, out.FaceCount())
	for i := range out.Faces {
		assert.True(t, out.IsMarked(i))
	}
	assert.InDelta(t, 1, out.Area(), 1e-12)
	assert.Equal(t, 4, report.LoopEdges)
	assert.Equal(t, 4, report.TriangleEdges)
	assert.Zero(t, report.FailedFacets)
	assert.Contains(t, logs.String(), "non-manifold mesh encountered")
	assert.Contains(t, logs.String(), "non-manifold mesh created")
}

func TestExtractSkipsUntriangulableFacets(t *testing.T) {
	pts := []v3.Vec{{X: 0}, {X: 1}, {X: 2}}
	s := flatSolid(t, pts, false, []int{0, 1, 2})

	c, logs := newTestConverter()
	out, report := c.Extract(s)
	assert.Zero(t, out.FaceCount())
	assert.Equal(t, 1, report.FailedFacets)
	assert.Equal(t, 3, report.LoopEdges)
	assert.Zero(t, report.TriangleEdges)
	assert.Contains(t, logs.String(), "facet triangulation failed")
}

func TestExtractRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		solid  func(c *Converter) (*Solid, error)
		volume *big.Rat
	}{
		{"cube", func(c *Converter) (*Solid, error) { return c.Build(meshtest.Cube(1)) }, big.NewRat(1, 1)},
		{"l-prism", func(c *Converter) (*Solid, error) { return c.Build(meshtest.LPrism(1)) }, big.NewRat(3, 1)},
		{"frame", func(c *Converter) (*Solid, error) { return c.Build(meshtest.Frame()) }, big.NewRat(12, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, logs := newTestConverter()
			s, err := tt.solid(c)
			require.NoError(t, err)
			out, report := c.Extract(s)
			require.Zero(t, report.Defects())
			assert.True(t, out.IsTriangles())

			// A triangulated extraction builds back into the same solid.
			again, err := c.Build(out)
			require.NoError(t, err)
			assert.Equal(t, 0, again.EnclosedVolume().Cmp(tt.volume))
			assert.Equal(t, outwardCount(s), outwardCount(again))
			assert.NotContains(t, logs.String(), "level=ERROR")
		})
	}
}
