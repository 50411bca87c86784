package exact

import (
	"math"
	"math/big"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const epsilon = 1.0 / (1 << 53)

var (
	o3dErrBound = (7 + 56*epsilon) * epsilon
	o2dErrBound = (3 + 16*epsilon) * epsilon
)

// Orient3D returns +1 if d lies on the positive side of the plane through
// a, b, c (the side the right-hand normal of a→b→c points to), -1 on the
// negative side and 0 if the four points are coplanar. The result is exact:
// a floating point estimate is used only when its error bound proves the
// sign.
func Orient3D(a, b, c, d v3.Vec) int {
	adx, ady, adz := a.X-d.X, a.Y-d.Y, a.Z-d.Z
	bdx, bdy, bdz := b.X-d.X, b.Y-d.Y, b.Z-d.Z
	cdx, cdy, cdz := c.X-d.X, c.Y-d.Y, c.Z-d.Z

	bdxcdy, cdxbdy := bdx*cdy, cdx*bdy
	cdxady, adxcdy := cdx*ady, adx*cdy
	adxbdy, bdxady := adx*bdy, bdx*ady

	det := adz*(bdxcdy-cdxbdy) + bdz*(cdxady-adxcdy) + cdz*(adxbdy-bdxady)
	permanent := (math.Abs(bdxcdy)+math.Abs(cdxbdy))*math.Abs(adz) +
		(math.Abs(cdxady)+math.Abs(adxcdy))*math.Abs(bdz) +
		(math.Abs(adxbdy)+math.Abs(bdxady))*math.Abs(cdz)
	bound := o3dErrBound * permanent
	if det > bound {
		return -1
	}
	if -det > bound {
		return 1
	}
	// An overflowed estimate proves nothing; only non-finite input is
	// undecidable.
	for _, p := range [4]v3.Vec{a, b, c, d} {
		if !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
			return 0
		}
	}
	return orient3DExact(a, b, c, d)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func orient3DExact(a, b, c, d v3.Vec) int {
	ea, _ := FromFloat(a)
	eb, _ := FromFloat(b)
	ec, _ := FromFloat(c)
	ed, _ := FromFloat(d)
	return Orient3DExact(ea, eb, ec, ed)
}

// Orient3DExact is Orient3D on rational points.
func Orient3DExact(a, b, c, d Vec) int {
	n := b.Sub(a).Cross(c.Sub(a))
	return n.Dot(d.Sub(a)).Sign()
}

// Orient2D returns +1 if a, b, c turn counterclockwise, -1 if clockwise
// and 0 if collinear. The result is exact.
func Orient2D(a, b, c v2.Vec) int {
	detLeft := (a.X - c.X) * (b.Y - c.Y)
	detRight := (a.Y - c.Y) * (b.X - c.X)
	det := detLeft - detRight
	bound := o2dErrBound * (math.Abs(detLeft) + math.Abs(detRight))
	if det > bound {
		return 1
	}
	if -det > bound {
		return -1
	}
	for _, p := range [3]v2.Vec{a, b, c} {
		if !finite(p.X) || !finite(p.Y) {
			return 0
		}
	}
	return orient2DExact(a, b, c)
}

func orient2DExact(a, b, c v2.Vec) int {
	r := func(x float64) *big.Rat { return new(big.Rat).SetFloat64(x) }
	acx := new(big.Rat).Sub(r(a.X), r(c.X))
	acy := new(big.Rat).Sub(r(a.Y), r(c.Y))
	bcx := new(big.Rat).Sub(r(b.X), r(c.X))
	bcy := new(big.Rat).Sub(r(b.Y), r(c.Y))
	return mulSub(acx, bcy, acy, bcx).Sign()
}

// Orient2DExact returns the turn direction of rational points projected by
// dropping the axis drop.
func Orient2DExact(a, b, c Vec, drop int) int {
	u, v := (drop+1)%3, (drop+2)%3
	acx := new(big.Rat).Sub(a.Coord(u), c.Coord(u))
	acy := new(big.Rat).Sub(a.Coord(v), c.Coord(v))
	bcx := new(big.Rat).Sub(b.Coord(u), c.Coord(u))
	bcy := new(big.Rat).Sub(b.Coord(v), c.Coord(v))
	return mulSub(acx, bcy, acy, bcx).Sign()
}
