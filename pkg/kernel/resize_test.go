package kernel

import (
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/brep/pkg/mesh/meshtest"
)

func TestResizeTransform(t *testing.T) {
	bb := sdf.Box3{Max: v3.Vec{X: 2, Y: 4, Z: 6}}
	flat := sdf.Box3{Max: v3.Vec{X: 2, Y: 4}}

	tests := []struct {
		name      string
		bb        sdf.Box3
		dimension int
		size      [3]float64
		autosize  [3]bool
		want      mgl64.Mat4
		warns     bool
	}{
		{"autosize from x", bb, 3, [3]float64{4, 0, 0}, [3]bool{false, true, true}, mgl64.Scale3D(2, 2, 2), false},
		{"every axis", bb, 3, [3]float64{1, 1, 3}, [3]bool{}, mgl64.Scale3D(0.5, 0.25, 0.5), false},
		{"no autosize", bb, 3, [3]float64{4, 0, 0}, [3]bool{}, mgl64.Scale3D(2, 1, 1), false},
		{"largest wins", bb, 3, [3]float64{1, 8, 0}, [3]bool{false, false, true}, mgl64.Scale3D(0.5, 2, 2), false},
		{"inactive axis", bb, 2, [3]float64{0, 2, 12}, [3]bool{true, false, true}, mgl64.Scale3D(0.5, 0.5, 1), false},
		{"dimension zero", bb, 0, [3]float64{4, 4, 4}, [3]bool{true, true, true}, mgl64.Ident4(), false},
		{"nothing requested", bb, 3, [3]float64{}, [3]bool{true, true, true}, mgl64.Ident4(), false},
		{"flat axis", flat, 3, [3]float64{0, 0, 5}, [3]bool{}, mgl64.Ident4(), true},
		{"flat axis after scaled one", flat, 3, [3]float64{4, 0, 5}, [3]bool{}, mgl64.Ident4(), true},
		{"flat axis unrequested", flat, 3, [3]float64{4, 0, 0}, [3]bool{false, true, true}, mgl64.Scale3D(2, 2, 2), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, logs := newTestKernel(t)
			got := k.ResizeTransform(tt.bb, tt.dimension, tt.size, tt.autosize)
			assert.Equal(t, tt.want, got)
			if tt.warns {
				assert.Contains(t, logs.String(), "level=WARN")
				assert.Contains(t, logs.String(), "flat object")
			} else {
				assert.NotContains(t, logs.String(), "level=WARN")
			}
		})
	}
}

func TestResizeTransformDimensionPanics(t *testing.T) {
	k, _ := newTestKernel(t)
	bb := sdf.Box3{Max: v3.Vec{X: 1, Y: 1, Z: 1}}
	assert.Panics(t, func() { k.ResizeTransform(bb, 4, [3]float64{}, [3]bool{}) })
	assert.Panics(t, func() { k.ResizeTransform(bb, -1, [3]float64{}, [3]bool{}) })
}

func TestResize(t *testing.T) {
	k, _ := newTestKernel(t)
	s := solidOf(t, k, meshtest.LPrism(1))

	got := k.Resize(&SolidGeometry{Solid: s}, 3, [3]float64{4, 0, 0}, [3]bool{false, true, true})
	bb := got.BoundingBox()
	assert.Equal(t, v3.Vec{X: 4, Y: 4, Z: 2}, bb.Size())

	m, err := k.ToMesh(got)
	require.NoError(t, err)
	assert.InDelta(t, 24, m.SignedVolume(), 1e-9)

	flat := framePolygon()
	assert.Same(t, flat, k.Resize(flat, 3, [3]float64{0, 0, 1}, [3]bool{}))
	assert.Equal(t, v3.Vec{X: 2, Y: 2}, k.Resize(flat, 2, [3]float64{2, 0, 0}, [3]bool{false, true, false}).BoundingBox().Size())
}
