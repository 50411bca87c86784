package mesh_test

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/brep/pkg/exact"
	"github.com/chazu/brep/pkg/mesh"
	"github.com/chazu/brep/pkg/mesh/meshtest"
)

func TestTransformTranslate(t *testing.T) {
	m := meshtest.Cube(1)
	m.Transform(mgl64.Translate3D(10, 20, 30))
	bb := m.BoundingBox()
	assert.Equal(t, v3.Vec{X: 10, Y: 20, Z: 30}, bb.Min)
	assert.Equal(t, v3.Vec{X: 11, Y: 21, Z: 31}, bb.Max)
	assert.InDelta(t, 1, m.SignedVolume(), 1e-9)
}

func TestTransformMirrorKeepsOrientation(t *testing.T) {
	m := meshtest.LPrism(1)
	m.Transform(mgl64.Scale3D(-1, 1, 1))
	assert.InDelta(t, 3, m.SignedVolume(), 1e-9)
	assert.InDelta(t, -2, m.BoundingBox().Min.X, 1e-12)
}

func TestTransformSingularPanics(t *testing.T) {
	singular := mgl64.Scale3D(1, 0, 1)
	assert.ErrorIs(t, mesh.ValidateTransform(singular), mesh.ErrSingularTransform)
	assert.NoError(t, mesh.ValidateTransform(mgl64.Ident4()))

	m := meshtest.Cube(1)
	require.Panics(t, func() { m.Transform(singular) })
}

func TestValidateTransform(t *testing.T) {
	projective := mgl64.Ident4()
	projective.Set(3, 2, 1)

	tests := []struct {
		name    string
		m       mgl64.Mat4
		wantErr error
	}{
		{"identity", mgl64.Ident4(), nil},
		{"tiny scale", mgl64.Scale3D(1e-110, 1e-110, 1e-110), nil},
		{"zero matrix", mgl64.Mat4{}, mesh.ErrSingularTransform},
		{"projective row", projective, exact.ErrProjective},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mesh.ValidateTransform(tt.m)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			m := meshtest.Cube(1)
			assert.Panics(t, func() { m.Transform(tt.m) })
		})
	}
}

func TestTransformTinyScale(t *testing.T) {
	m := meshtest.Cube(1)
	m.Transform(mgl64.Scale3D(1e-110, 1e-110, -1e-110))
	assert.Equal(t, -1e-110, m.BoundingBox().Min.Z)
	// Mirrored in z, so the old bottom is now the top and faces up.
	assert.Greater(t, mesh.NewellNormal(m.FacePoints(0)).Z, 0.0)
}

func TestMirrors(t *testing.T) {
	assert.False(t, mesh.Mirrors(mgl64.Ident4()))
	assert.True(t, mesh.Mirrors(mgl64.Scale3D(1, 1, -2)))
	assert.False(t, mesh.Mirrors(mgl64.Scale3D(-1, -1, 1)))
	assert.False(t, mesh.Mirrors(mgl64.HomogRotate3DZ(1.2)))
}
