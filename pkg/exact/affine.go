package exact

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrSingular is returned for a transform with a zero determinant.
	ErrSingular = errors.New("exact: singular transform")
	// ErrProjective is returned for a matrix whose last row is not
	// (0, 0, 0, w).
	ErrProjective = errors.New("exact: projective transform")
)

// Affine is an exact affine map x -> L*x + t, built from a homogeneous
// 4x4 matrix whose last row is (0, 0, 0, w). The map is divided through by w.
type Affine struct {
	l [3][3]*big.Rat
	t [3]*big.Rat
}

// NewAffine converts t exactly. Singularity is decided on the exact
// determinant, so tiny but invertible scales are accepted.
func NewAffine(t mgl64.Mat4) (Affine, error) {
	if t.At(3, 0) != 0 || t.At(3, 1) != 0 || t.At(3, 2) != 0 {
		return Affine{}, fmt.Errorf("%w: last row %v", ErrProjective, t.Row(3))
	}
	w, err := rat(t.At(3, 3))
	if err != nil {
		return Affine{}, err
	}
	if w.Sign() == 0 {
		return Affine{}, fmt.Errorf("%w: w is zero", ErrSingular)
	}
	inv := new(big.Rat).Inv(w)
	var a Affine
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			x, err := rat(t.At(r, c))
			if err != nil {
				return Affine{}, err
			}
			a.l[r][c] = x.Mul(x, inv)
		}
		x, err := rat(t.At(r, 3))
		if err != nil {
			return Affine{}, err
		}
		a.t[r] = x.Mul(x, inv)
	}
	if a.Det().Sign() == 0 {
		return Affine{}, ErrSingular
	}
	return a, nil
}

// Apply maps p.
func (a Affine) Apply(p Vec) Vec {
	var out [3]*big.Rat
	for r := 0; r < 3; r++ {
		s := new(big.Rat).Set(a.t[r])
		s.Add(s, new(big.Rat).Mul(a.l[r][0], p.X))
		s.Add(s, new(big.Rat).Mul(a.l[r][1], p.Y))
		out[r] = s.Add(s, new(big.Rat).Mul(a.l[r][2], p.Z))
	}
	return Vec{X: out[0], Y: out[1], Z: out[2]}
}

// Det returns the determinant of the linear part.
func (a Affine) Det() *big.Rat {
	m := a.l
	d := new(big.Rat).Mul(m[0][0], mulSub(m[1][1], m[2][2], m[1][2], m[2][1]))
	d.Sub(d, new(big.Rat).Mul(m[0][1], mulSub(m[1][0], m[2][2], m[1][2], m[2][0])))
	return d.Add(d, new(big.Rat).Mul(m[0][2], mulSub(m[1][0], m[2][1], m[1][1], m[2][0])))
}

// Mirrors reports whether the map reverses orientation.
func (a Affine) Mirrors() bool {
	return a.Det().Sign() < 0
}
