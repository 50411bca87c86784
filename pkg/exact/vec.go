// Package exact provides the rational arithmetic used by the solid kernel:
// exact 3D vectors, planes, affine maps and orientation predicates that are
// filtered in floating point and fall back to exact evaluation.
//
// Values are immutable. Every operation allocates fresh big.Rat results, so
// a Vec may be shared freely between solids.
package exact

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrNonFinite is returned when a NaN or infinite coordinate is converted.
var ErrNonFinite = errors.New("exact: non-finite coordinate")

// Vec is a point or direction with rational coordinates.
type Vec struct {
	X, Y, Z *big.Rat
}

func rat(x float64) (*big.Rat, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil, ErrNonFinite
	}
	return new(big.Rat).SetFloat64(x), nil
}

// FromFloat converts v exactly. Every finite float64 is a dyadic rational,
// so no rounding happens.
func FromFloat(v v3.Vec) (Vec, error) {
	x, err := rat(v.X)
	if err != nil {
		return Vec{}, fmt.Errorf("%w: %v", err, v)
	}
	y, err := rat(v.Y)
	if err != nil {
		return Vec{}, fmt.Errorf("%w: %v", err, v)
	}
	z, err := rat(v.Z)
	if err != nil {
		return Vec{}, fmt.Errorf("%w: %v", err, v)
	}
	return Vec{X: x, Y: y, Z: z}, nil
}

// Zero returns the origin.
func Zero() Vec {
	return Vec{X: new(big.Rat), Y: new(big.Rat), Z: new(big.Rat)}
}

// NewVec builds a vector from integers.
func NewVec(x, y, z int64) Vec {
	return Vec{X: big.NewRat(x, 1), Y: big.NewRat(y, 1), Z: big.NewRat(z, 1)}
}

// Add returns a+b.
func (a Vec) Add(b Vec) Vec {
	return Vec{
		X: new(big.Rat).Add(a.X, b.X),
		Y: new(big.Rat).Add(a.Y, b.Y),
		Z: new(big.Rat).Add(a.Z, b.Z),
	}
}

// Sub returns a-b.
func (a Vec) Sub(b Vec) Vec {
	return Vec{
		X: new(big.Rat).Sub(a.X, b.X),
		Y: new(big.Rat).Sub(a.Y, b.Y),
		Z: new(big.Rat).Sub(a.Z, b.Z),
	}
}

// Scale returns s*a.
func (a Vec) Scale(s *big.Rat) Vec {
	return Vec{
		X: new(big.Rat).Mul(a.X, s),
		Y: new(big.Rat).Mul(a.Y, s),
		Z: new(big.Rat).Mul(a.Z, s),
	}
}

// Neg returns -a.
func (a Vec) Neg() Vec {
	return Vec{
		X: new(big.Rat).Neg(a.X),
		Y: new(big.Rat).Neg(a.Y),
		Z: new(big.Rat).Neg(a.Z),
	}
}

// Dot returns a·b.
func (a Vec) Dot(b Vec) *big.Rat {
	s := new(big.Rat).Mul(a.X, b.X)
	s.Add(s, new(big.Rat).Mul(a.Y, b.Y))
	return s.Add(s, new(big.Rat).Mul(a.Z, b.Z))
}

// Cross returns a×b.
func (a Vec) Cross(b Vec) Vec {
	return Vec{
		X: mulSub(a.Y, b.Z, a.Z, b.Y),
		Y: mulSub(a.Z, b.X, a.X, b.Z),
		Z: mulSub(a.X, b.Y, a.Y, b.X),
	}
}

// mulSub returns a*b - c*d.
func mulSub(a, b, c, d *big.Rat) *big.Rat {
	l := new(big.Rat).Mul(a, b)
	return l.Sub(l, new(big.Rat).Mul(c, d))
}

// IsZero reports whether all coordinates are zero.
func (a Vec) IsZero() bool {
	return a.X.Sign() == 0 && a.Y.Sign() == 0 && a.Z.Sign() == 0
}

// Equal reports exact equality.
func (a Vec) Equal(b Vec) bool {
	return a.X.Cmp(b.X) == 0 && a.Y.Cmp(b.Y) == 0 && a.Z.Cmp(b.Z) == 0
}

// Coord returns coordinate i (0=X, 1=Y, 2=Z).
func (a Vec) Coord(i int) *big.Rat {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	case 2:
		return a.Z
	}
	panic(fmt.Sprintf("exact.Vec.Coord: axis %d out of range", i))
}

// Float returns the nearest float64 point.
func (a Vec) Float() v3.Vec {
	x, _ := a.X.Float64()
	y, _ := a.Y.Float64()
	z, _ := a.Z.Float64()
	return v3.Vec{X: x, Y: y, Z: z}
}

// Float32 returns the nearest float32 coordinates. Distinct exact points may
// collapse to the same result.
func (a Vec) Float32() [3]float32 {
	x, _ := a.X.Float32()
	y, _ := a.Y.Float32()
	z, _ := a.Z.Float32()
	return [3]float32{x, y, z}
}

func (a Vec) String() string {
	return fmt.Sprintf("(%s, %s, %s)", a.X.RatString(), a.Y.RatString(), a.Z.RatString())
}

// Min returns the componentwise minimum.
func Min(a, b Vec) Vec {
	return Vec{X: minRat(a.X, b.X), Y: minRat(a.Y, b.Y), Z: minRat(a.Z, b.Z)}
}

// Max returns the componentwise maximum.
func Max(a, b Vec) Vec {
	return Vec{X: maxRat(a.X, b.X), Y: maxRat(a.Y, b.Y), Z: maxRat(a.Z, b.Z)}
}

func minRat(a, b *big.Rat) *big.Rat {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

func maxRat(a, b *big.Rat) *big.Rat {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// Triple returns the scalar triple product a·(b×c), six times the signed
// volume of the tetrahedron (0, a, b, c).
func Triple(a, b, c Vec) *big.Rat {
	return a.Dot(b.Cross(c))
}
