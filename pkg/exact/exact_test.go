package exact_test

import (
	"math"
	"math/big"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/brep/pkg/exact"
)

func vec(t *testing.T, x, y, z float64) exact.Vec {
	t.Helper()
	v, err := exact.FromFloat(v3.Vec{X: x, Y: y, Z: z})
	require.NoError(t, err)
	return v
}

func TestFromFloatIsExact(t *testing.T) {
	v := vec(t, 0.1, -2.5, 1e-300)
	assert.Equal(t, v3.Vec{X: 0.1, Y: -2.5, Z: 1e-300}, v.Float())

	_, err := exact.FromFloat(v3.Vec{X: math.NaN()})
	assert.ErrorIs(t, err, exact.ErrNonFinite)
	_, err = exact.FromFloat(v3.Vec{Z: math.Inf(-1)})
	assert.ErrorIs(t, err, exact.ErrNonFinite)
}

func TestVecArithmetic(t *testing.T) {
	a := exact.NewVec(1, 2, 3)
	b := exact.NewVec(4, 5, 6)
	assert.True(t, a.Add(b).Equal(exact.NewVec(5, 7, 9)))
	assert.True(t, b.Sub(a).Equal(exact.NewVec(3, 3, 3)))
	assert.Equal(t, 0, a.Dot(b).Cmp(big.NewRat(32, 1)))
	assert.True(t, a.Cross(b).Equal(exact.NewVec(-3, 6, -3)))
	assert.True(t, a.Sub(a).IsZero())
	assert.True(t, a.Neg().Add(a).IsZero())
	assert.True(t, exact.Min(a, exact.NewVec(0, 9, 3)).Equal(exact.NewVec(0, 2, 3)))
	assert.True(t, exact.Max(a, exact.NewVec(0, 9, 3)).Equal(exact.NewVec(1, 9, 3)))
	assert.Equal(t, 0, exact.Triple(exact.NewVec(1, 0, 0), exact.NewVec(0, 1, 0), exact.NewVec(0, 0, 1)).Cmp(big.NewRat(1, 1)))
}

func TestVecFloat32Collapse(t *testing.T) {
	a := vec(t, 1, 0, 0)
	b := vec(t, 1+1e-12, 0, 0)
	assert.False(t, a.Equal(b))
	assert.Equal(t, a.Float32(), b.Float32())
}

func TestPlaneThrough(t *testing.T) {
	square := []exact.Vec{
		exact.NewVec(0, 0, 2), exact.NewVec(1, 0, 2),
		exact.NewVec(1, 1, 2), exact.NewVec(0, 1, 2),
	}
	p, err := exact.PlaneThrough(square)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Side(exact.NewVec(5, 5, 3)))
	assert.Equal(t, -1, p.Side(exact.NewVec(5, 5, 1)))
	assert.Equal(t, 0, p.Side(exact.NewVec(-7, 9, 2)))
	assert.Equal(t, 2, p.DominantAxis())
	assert.Equal(t, "0 0 1 -2", p.Key())
	assert.Equal(t, "0 0 -1 2", p.Opposite().Key())
	assert.False(t, p.Equal(p.Opposite()))

	_, err = exact.PlaneThrough([]exact.Vec{exact.NewVec(0, 0, 0), exact.NewVec(1, 0, 0), exact.NewVec(2, 0, 0)})
	assert.ErrorIs(t, err, exact.ErrDegenerate)

	warped := append([]exact.Vec(nil), square...)
	warped[2] = vec(t, 1, 1, 2.001)
	_, err = exact.PlaneThrough(warped)
	assert.ErrorIs(t, err, exact.ErrNonPlanar)

	_, err = exact.PlaneThrough(square[:2])
	assert.ErrorIs(t, err, exact.ErrDegenerate)
}

func TestPlaneKeyIgnoresScale(t *testing.T) {
	n := exact.NewVec(0, 2, 4)
	a := exact.NewPlane(n, exact.NewVec(1, 1, 1))
	b := exact.NewPlane(n.Scale(big.NewRat(3, 7)), exact.NewVec(9, 3, 0))
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())
}

func TestNewellNormalArea(t *testing.T) {
	tri := []exact.Vec{exact.NewVec(0, 0, 0), exact.NewVec(4, 0, 0), exact.NewVec(0, 3, 0)}
	n := exact.NewellNormal(tri)
	// Twice the area of a 3-4-5 triangle.
	assert.True(t, n.Equal(exact.NewVec(0, 0, 12)))
}

func TestOrient3D(t *testing.T) {
	a := v3.Vec{}
	b := v3.Vec{X: 1}
	c := v3.Vec{Y: 1}
	assert.Equal(t, 1, exact.Orient3D(a, b, c, v3.Vec{Z: 1}))
	assert.Equal(t, -1, exact.Orient3D(a, b, c, v3.Vec{Z: -1}))
	assert.Equal(t, 0, exact.Orient3D(a, b, c, v3.Vec{X: 3, Y: -4}))

	// Nearly coplanar inputs where naive float evaluation is unreliable.
	d := v3.Vec{X: 0.5, Y: 0.5, Z: 1e-300}
	assert.Equal(t, 1, exact.Orient3D(a, b, c, d))
	p := v3.Vec{X: 0.1, Y: 0.2, Z: 0.3}
	q := v3.Vec{X: 0.4, Y: 0.5, Z: 0.6}
	r := v3.Vec{X: 0.7, Y: 0.8, Z: 0.9001}
	s := v3.Vec{X: 0.1 + 0.4, Y: 0.2 + 0.5, Z: 0.3 + 0.6}
	want := exact.Orient3DExact(vec(t, p.X, p.Y, p.Z), vec(t, q.X, q.Y, q.Z), vec(t, r.X, r.Y, r.Z), vec(t, s.X, s.Y, s.Z))
	assert.Equal(t, want, exact.Orient3D(p, q, r, s))
}

func TestOrientOverflow(t *testing.T) {
	// Products of these coordinates overflow float64.
	const big = 1e200
	a := v3.Vec{}
	b := v3.Vec{X: big}
	c := v3.Vec{Y: big}
	assert.Equal(t, 1, exact.Orient3D(a, b, c, v3.Vec{Z: big}))
	assert.Equal(t, -1, exact.Orient3D(a, b, c, v3.Vec{Z: -big}))
	assert.Equal(t, 0, exact.Orient3D(a, b, c, v3.Vec{X: big, Y: big}))
	assert.Equal(t, 0, exact.Orient3D(a, b, c, v3.Vec{Z: math.Inf(1)}))

	assert.Equal(t, 1, exact.Orient2D(v2.Vec{}, v2.Vec{X: big}, v2.Vec{Y: big}))
	assert.Equal(t, -1, exact.Orient2D(v2.Vec{}, v2.Vec{X: big}, v2.Vec{Y: -big}))
	assert.Equal(t, 0, exact.Orient2D(v2.Vec{}, v2.Vec{X: big}, v2.Vec{X: math.NaN()}))
}

func TestOrient2D(t *testing.T) {
	a := v2.Vec{X: 0, Y: 0}
	b := v2.Vec{X: 1, Y: 0}
	assert.Equal(t, 1, exact.Orient2D(a, b, v2.Vec{X: 0, Y: 1}))
	assert.Equal(t, -1, exact.Orient2D(a, b, v2.Vec{X: 0, Y: -1}))
	assert.Equal(t, 0, exact.Orient2D(a, b, v2.Vec{X: 7, Y: 0}))
	// On y = x whatever the binary rounding of the coordinates.
	assert.Equal(t, 0, exact.Orient2D(v2.Vec{X: 0.1, Y: 0.1}, v2.Vec{X: 0.2, Y: 0.2}, v2.Vec{X: 0.3, Y: 0.3}))
	// Nearly collinear: the float estimate is below its error bound.
	assert.Equal(t, 1, exact.Orient2D(v2.Vec{X: 0.5, Y: 0.5}, v2.Vec{X: 12, Y: 12}, v2.Vec{X: 24, Y: 24 + 1.0/(1<<47)}))

	assert.Equal(t, 1, exact.Orient2DExact(exact.NewVec(0, 0, 9), exact.NewVec(1, 0, 9), exact.NewVec(0, 1, 9), 2))
}

func TestAffine(t *testing.T) {
	m := mgl64.Translate3D(1, 2, 3).Mul4(mgl64.Scale3D(2, 2, 2))
	a, err := exact.NewAffine(m)
	require.NoError(t, err)
	assert.True(t, a.Apply(exact.NewVec(1, 1, 1)).Equal(exact.NewVec(3, 4, 5)))
	assert.Equal(t, 0, a.Det().Cmp(big.NewRat(8, 1)))
	assert.False(t, a.Mirrors())

	mirror, err := exact.NewAffine(mgl64.Scale3D(-1, 1, 1))
	require.NoError(t, err)
	assert.True(t, mirror.Mirrors())

	// Homogeneous scale divides through by w.
	h := mgl64.Ident4()
	h.Set(3, 3, 2)
	half, err := exact.NewAffine(h)
	require.NoError(t, err)
	assert.True(t, half.Apply(exact.NewVec(2, 4, 6)).Equal(exact.NewVec(1, 2, 3)))

	_, err = exact.NewAffine(mgl64.Scale3D(1, 0, 1))
	assert.ErrorIs(t, err, exact.ErrSingular)
}

func TestAffineRejects(t *testing.T) {
	// The float determinant of this scale underflows to zero.
	tiny := mgl64.Scale3D(1e-110, 1e-110, -1e-110)
	require.Zero(t, tiny.Det())
	a, err := exact.NewAffine(tiny)
	require.NoError(t, err)
	assert.Equal(t, -1, a.Det().Sign())
	assert.True(t, a.Mirrors())

	projective := mgl64.Ident4()
	projective.Set(3, 0, 0.5)
	nan := mgl64.Ident4()
	nan.Set(0, 3, math.NaN())

	tests := []struct {
		name string
		m    mgl64.Mat4
		err  error
	}{
		{"zero matrix", mgl64.Mat4{}, exact.ErrSingular},
		{"flat scale", mgl64.Scale3D(2, 2, 0), exact.ErrSingular},
		{"projective row", projective, exact.ErrProjective},
		{"not finite", nan, exact.ErrNonFinite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := exact.NewAffine(tt.m)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
