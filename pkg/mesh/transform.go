package mesh

import (
	"errors"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/brep/pkg/exact"
)

// ErrSingularTransform is returned by ValidateTransform for matrices with a
// zero determinant.
var ErrSingularTransform = errors.New("mesh: transform matrix is singular")

// ValidateTransform checks the precondition of Transform: t must be affine
// with a nonzero exact determinant. Callers holding untrusted matrices
// should call it first; Transform itself panics.
func ValidateTransform(t mgl64.Mat4) error {
	_, err := exact.NewAffine(t)
	switch {
	case errors.Is(err, exact.ErrSingular):
		return ErrSingularTransform
	case err != nil:
		return fmt.Errorf("mesh: %w", err)
	}
	return nil
}

// Transform applies the homogeneous transform t to every vertex in place.
// Mirroring transforms also reverse every face so the mesh keeps its
// outward orientation. A singular t is a contract violation and panics.
func (m *Mesh) Transform(t mgl64.Mat4) {
	if err := ValidateTransform(t); err != nil {
		panic(fmt.Sprintf("mesh.Transform: %v", err))
	}
	for i, v := range m.Vertices {
		m.Vertices[i] = TransformPoint(t, v)
	}
	if Mirrors(t) {
		for _, f := range m.Faces {
			for i, j := 0, len(f)-1; i < j; i, j = i+1, j-1 {
				f[i], f[j] = f[j], f[i]
			}
		}
	}
}

// Mirrors reports whether the affine map t reverses orientation.
func Mirrors(t mgl64.Mat4) bool {
	a, err := exact.NewAffine(t)
	return err == nil && a.Mirrors()
}

// TransformPoint maps v through t, dividing by the homogeneous coordinate.
func TransformPoint(t mgl64.Mat4, v v3.Vec) v3.Vec {
	p := mgl64.TransformCoordinate(mgl64.Vec3{v.X, v.Y, v.Z}, t)
	return v3.Vec{X: p[0], Y: p[1], Z: p[2]}
}
