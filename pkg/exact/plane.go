package exact

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	// ErrDegenerate is returned for a polygon whose normal vanishes.
	ErrDegenerate = errors.New("exact: degenerate polygon")
	// ErrNonPlanar is returned when a vertex lies off the polygon's plane.
	ErrNonPlanar = errors.New("exact: polygon is not planar")
)

// Plane is the oriented plane A*x + B*y + C*z + D = 0 with outward normal
// (A, B, C).
type Plane struct {
	A, B, C, D *big.Rat
}

// NewellNormal returns the exact Newell normal of a closed polygon. Its
// length is twice the polygon area; its direction follows the right-hand
// rule around the vertex order.
func NewellNormal(pts []Vec) Vec {
	n := Zero()
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		// (ay - by)(az + bz), (az - bz)(ax + bx), (ax - bx)(ay + by)
		n.X.Add(n.X, new(big.Rat).Mul(new(big.Rat).Sub(a.Y, b.Y), new(big.Rat).Add(a.Z, b.Z)))
		n.Y.Add(n.Y, new(big.Rat).Mul(new(big.Rat).Sub(a.Z, b.Z), new(big.Rat).Add(a.X, b.X)))
		n.Z.Add(n.Z, new(big.Rat).Mul(new(big.Rat).Sub(a.X, b.X), new(big.Rat).Add(a.Y, b.Y)))
	}
	return n
}

// NewPlane returns the plane with normal n passing through p.
func NewPlane(n, p Vec) Plane {
	return Plane{
		A: new(big.Rat).Set(n.X),
		B: new(big.Rat).Set(n.Y),
		C: new(big.Rat).Set(n.Z),
		D: new(big.Rat).Neg(n.Dot(p)),
	}
}

// PlaneThrough returns the supporting plane of the polygon pts, oriented by
// its vertex order. Every vertex must lie exactly on it.
func PlaneThrough(pts []Vec) (Plane, error) {
	if len(pts) < 3 {
		return Plane{}, fmt.Errorf("%w: %d vertices", ErrDegenerate, len(pts))
	}
	n := NewellNormal(pts)
	if n.IsZero() {
		return Plane{}, ErrDegenerate
	}
	p := NewPlane(n, pts[0])
	for i, q := range pts {
		if p.Side(q) != 0 {
			return Plane{}, fmt.Errorf("%w: vertex %d at %s", ErrNonPlanar, i, q)
		}
	}
	return p, nil
}

// Normal returns (A, B, C).
func (p Plane) Normal() Vec {
	return Vec{X: p.A, Y: p.B, Z: p.C}
}

// Eval returns A*x + B*y + C*z + D.
func (p Plane) Eval(q Vec) *big.Rat {
	s := p.Normal().Dot(q)
	return s.Add(s, p.D)
}

// Side returns +1 if q lies on the normal side, -1 behind and 0 on the plane.
func (p Plane) Side(q Vec) int {
	return p.Eval(q).Sign()
}

// Opposite returns the same plane with the normal reversed.
func (p Plane) Opposite() Plane {
	return Plane{
		A: new(big.Rat).Neg(p.A),
		B: new(big.Rat).Neg(p.B),
		C: new(big.Rat).Neg(p.C),
		D: new(big.Rat).Neg(p.D),
	}
}

// DominantAxis returns the index of the largest normal component by
// magnitude.
func (p Plane) DominantAxis() int {
	n := p.Normal()
	best := 0
	for i := 1; i < 3; i++ {
		if new(big.Rat).Abs(n.Coord(i)).Cmp(new(big.Rat).Abs(n.Coord(best))) > 0 {
			best = i
		}
	}
	return best
}

// Canonical scales the plane so that its first nonzero normal component
// has magnitude one. Orientation is preserved, so two planes are the same
// oriented plane exactly when their canonical forms are equal.
func (p Plane) Canonical() Plane {
	var s *big.Rat
	for _, c := range []*big.Rat{p.A, p.B, p.C} {
		if c.Sign() != 0 {
			s = new(big.Rat).Abs(c)
			break
		}
	}
	if s == nil {
		return p
	}
	inv := new(big.Rat).Inv(s)
	return Plane{
		A: new(big.Rat).Mul(p.A, inv),
		B: new(big.Rat).Mul(p.B, inv),
		C: new(big.Rat).Mul(p.C, inv),
		D: new(big.Rat).Mul(p.D, inv),
	}
}

// Key returns a string identifying the oriented plane, suitable as a map key.
func (p Plane) Key() string {
	c := p.Canonical()
	var b strings.Builder
	for i, r := range []*big.Rat{c.A, c.B, c.C, c.D} {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(r.RatString())
	}
	return b.String()
}

// Equal reports whether p and q describe the same oriented plane.
func (p Plane) Equal(q Plane) bool {
	return p.Key() == q.Key()
}

func (p Plane) String() string {
	return fmt.Sprintf("[%s]", p.Key())
}
