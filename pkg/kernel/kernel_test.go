package kernel

import (
	"bytes"
	"errors"
	"log/slog"
	"math/big"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/brep/pkg/brep"
	"github.com/chazu/brep/pkg/mesh"
	"github.com/chazu/brep/pkg/mesh/meshtest"
)

func newTestKernel(t *testing.T) (*Kernel, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	k, err := New(DefaultConfig(), WithLogger(logger))
	require.NoError(t, err)
	return k, &buf
}

// meshShape is a Shape holding a plain mesh.
type meshShape struct {
	m *mesh.Mesh
}

func (s *meshShape) BoundingBox() (min, max [3]float64) {
	bb := s.m.BoundingBox()
	return [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}, [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
}

// fakeEngine is a BooleanEngine on plain meshes. Its union is only correct
// for disjoint operands and its difference ignores the subtrahend.
type fakeEngine struct {
	imported int
}

func (e *fakeEngine) Box(x, y, z float64) Shape {
	return &meshShape{m: meshtest.Box(v3.Vec{}, v3.Vec{X: x, Y: y, Z: z})}
}

func (e *fakeEngine) Cylinder(height, radius float64, _ int) Shape {
	return &meshShape{m: meshtest.Box(v3.Vec{X: -radius, Y: -radius}, v3.Vec{X: radius, Y: radius, Z: height})}
}

func (e *fakeEngine) Union(a, b Shape) Shape {
	return &meshShape{m: meshtest.Join(a.(*meshShape).m, b.(*meshShape).m)}
}

func (e *fakeEngine) Difference(a, _ Shape) Shape { return a }

func (e *fakeEngine) Intersection(_, _ Shape) Shape { return &meshShape{m: mesh.New()} }

func (e *fakeEngine) Translate(s Shape, x, y, z float64) Shape {
	m := s.(*meshShape).m.Clone()
	m.Transform(mgl64.Translate3D(x, y, z))
	return &meshShape{m: m}
}

func (e *fakeEngine) Rotate(s Shape, _, _, _ float64) Shape { return s }

func (e *fakeEngine) ToMesh(s Shape) (*mesh.Mesh, error) {
	return s.(*meshShape).m.Clone(), nil
}

func (e *fakeEngine) FromMesh(m *mesh.Mesh) (Shape, error) {
	e.imported++
	return &meshShape{m: m.Clone()}, nil
}

// brokenModeler fails to mesh anything.
type brokenModeler struct {
	*fakeEngine
}

func (brokenModeler) ToMesh(Shape) (*mesh.Mesh, error) {
	return nil, errors.New("out of cells")
}

// Compile-time checks that the fakes implement the interfaces.
var _ Shape = (*meshShape)(nil)
var _ BooleanEngine = (*fakeEngine)(nil)
var _ Modeler = brokenModeler{}

func solidOf(t *testing.T, k *Kernel, m *mesh.Mesh) *brep.Solid {
	t.Helper()
	s, err := k.ToSolid(&MeshGeometry{Mesh: m})
	require.NoError(t, err)
	return s
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		op     Op
		volume *big.Rat
	}{
		{"union", OpUnion, big.NewRat(9, 1)},
		{"difference", OpDifference, big.NewRat(1, 1)},
		{"intersection", OpIntersection, big.NewRat(0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, logs := newTestKernel(t)
			a := solidOf(t, k, meshtest.Cube(1))
			b := k.Transform(&SolidGeometry{Solid: solidOf(t, k, meshtest.Cube(2))}, mgl64.Translate3D(5, 0, 0))

			e := &fakeEngine{}
			got, err := k.Apply(tt.op, e, a, b.(*SolidGeometry).Solid)
			require.NoError(t, err)
			assert.Equal(t, 2, e.imported)
			assert.Equal(t, 0, got.EnclosedVolume().Cmp(tt.volume), "volume %s", got.EnclosedVolume().RatString())
			assert.Contains(t, logs.String(), "boolean operation")
			assert.NotContains(t, logs.String(), "level=WARN")
		})
	}
}

func TestApplyErrors(t *testing.T) {
	k, _ := newTestKernel(t)
	a := solidOf(t, k, meshtest.Cube(1))

	_, err := k.Apply(OpUnion, nil, a, a)
	assert.ErrorIs(t, err, ErrNoEngine)

	_, err = k.Apply(Op(7), &fakeEngine{}, a, a)
	assert.ErrorContains(t, err, "unknown operation")
}

func TestFromModeler(t *testing.T) {
	k, _ := newTestKernel(t)
	e := &fakeEngine{}
	s, err := k.FromModeler(e, e.Translate(e.Box(1, 2, 3), -1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, s.EnclosedVolume().Cmp(big.NewRat(6, 1)))
	assert.Equal(t, -1.0, s.BoundingBox().Min.X)

	_, err = k.FromModeler(brokenModeler{e}, e.Box(1, 1, 1))
	assert.ErrorContains(t, err, "out of cells")
}

func TestFromModelerBuildFailure(t *testing.T) {
	k, _ := newTestKernel(t)
	e := &fakeEngine{}
	// Two boxes sharing a corner are not a manifold.
	touching := e.Union(e.Box(1, 1, 1), e.Translate(e.Box(1, 1, 1), 1, 1, 1))
	_, err := k.FromModeler(e, touching)
	assert.ErrorIs(t, err, brep.ErrInvalid)
}

func TestParseOp(t *testing.T) {
	for _, o := range []Op{OpUnion, OpDifference, OpIntersection} {
		got, err := ParseOp(o.String())
		require.NoError(t, err)
		assert.Equal(t, o, got)
	}
	_, err := ParseOp("minkowski")
	assert.Error(t, err)
	assert.Equal(t, "Op(9)", Op(9).String())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QuantizeGrid = -1
	_, err := New(cfg)
	assert.Error(t, err)
}
