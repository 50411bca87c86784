package mesh_test

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/brep/pkg/mesh"
	"github.com/chazu/brep/pkg/mesh/meshtest"
)

func TestReindexerFirstOccurrenceOrder(t *testing.T) {
	r := mesh.NewReindexer[string]()
	assert.Equal(t, 0, r.Lookup("b"))
	assert.Equal(t, 1, r.Lookup("a"))
	assert.Equal(t, 0, r.Lookup("b"))
	assert.Equal(t, 2, r.Lookup("c"))
	assert.Equal(t, []string{"b", "a", "c"}, r.Values())
	assert.Equal(t, 3, r.Len())
}

func TestQuantizeVec(t *testing.T) {
	g := mesh.DefaultGrid
	tests := []struct {
		name string
		in   v3.Vec
		want v3.Vec
	}{
		{"on grid", v3.Vec{X: 1, Y: 2, Z: -3}, v3.Vec{X: 1, Y: 2, Z: -3}},
		{"tiny noise", v3.Vec{X: 1 + 1e-9, Y: 2 - 1e-9, Z: 1e-12}, v3.Vec{X: 1, Y: 2, Z: 0}},
		{"half step", v3.Vec{X: 0.25 * g}, v3.Vec{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mesh.QuantizeVec(tt.in, g))
		})
	}

	t.Run("negative zero", func(t *testing.T) {
		q := mesh.QuantizeVec(v3.Vec{X: -1e-12}, g)
		assert.False(t, math.Signbit(q.X), "expected +0, got -0")
	})
}

func TestQuantizeMergesVertices(t *testing.T) {
	m := meshtest.Cube(1)
	// Duplicate vertex 6 with noise and point the top face at the copy.
	noisy := m.AddVertex(v3.Vec{X: 1 + 1e-10, Y: 1 - 1e-10, Z: 1})
	m.Faces[1] = mesh.Face{4, 5, noisy, 7}

	q := m.Quantize(mesh.DefaultGrid)
	assert.Equal(t, 8, q.VertexCount())
	assert.Equal(t, 6, q.FaceCount())
	assert.True(t, mesh.IsApproximatelyConvex(q))
}

func TestQuantizeCleansFaces(t *testing.T) {
	m := mesh.New()
	a := m.AddVertex(v3.Vec{})
	b := m.AddVertex(v3.Vec{X: 1})
	b2 := m.AddVertex(v3.Vec{X: 1, Y: 1e-12})
	c := m.AddVertex(v3.Vec{Y: 1})
	a2 := m.AddVertex(v3.Vec{Z: 1e-12})

	m.AddFace(true, a, b, b2, c, a2) // collapses to a triangle
	m.AddFace(false, a, b, b2)       // collapses to an edge and is dropped
	m.AddFace(true, c, b, a)

	q := m.Quantize(mesh.DefaultGrid)
	require.Equal(t, 2, q.FaceCount())
	assert.Equal(t, mesh.Face{0, 1, 2}, q.Faces[0])
	assert.Equal(t, mesh.Face{2, 1, 0}, q.Faces[1])
	assert.Equal(t, []bool{true, true}, q.Marked)
	assert.Equal(t, 3, q.VertexCount())
}
