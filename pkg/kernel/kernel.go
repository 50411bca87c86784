// Package kernel is the entry point to the exact solid kernel. It converts
// between the Geometry variants (meshes, exact solids and 2D polygons),
// applies transforms and computes resize transforms. Boolean operations
// are delegated to an external engine behind the BooleanEngine interface;
// implementations (sdfx, manifold) live in sub-packages.
package kernel

import (
	"fmt"

	"github.com/chazu/brep/pkg/mesh"
)

// Shape is an opaque handle to a solid of an external modeler.
// Implementations wrap their internal representation.
type Shape interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Modeler is a solid modeler that produces meshes for the exact kernel.
type Modeler interface {
	// Primitives
	Box(x, y, z float64) Shape
	Cylinder(height, radius float64, segments int) Shape

	// Boolean operations
	Union(a, b Shape) Shape
	Difference(a, b Shape) Shape
	Intersection(a, b Shape) Shape

	// Transforms
	Translate(s Shape, x, y, z float64) Shape
	Rotate(s Shape, x, y, z float64) Shape // Euler angles in degrees

	// Mesh output
	ToMesh(s Shape) (*mesh.Mesh, error)
}

// MeshImporter turns closed meshes into shapes.
type MeshImporter interface {
	FromMesh(m *mesh.Mesh) (Shape, error)
}

// BooleanEngine is a modeler that can also import meshes, which is what
// Kernel.Apply needs to round-trip exact solids through it.
type BooleanEngine interface {
	Modeler
	MeshImporter
}

// Op is a Boolean operation.
type Op int

const (
	OpUnion Op = iota
	OpDifference
	OpIntersection
)

func (o Op) String() string {
	switch o {
	case OpUnion:
		return "union"
	case OpDifference:
		return "difference"
	case OpIntersection:
		return "intersection"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// ParseOp returns the operation named s.
func ParseOp(s string) (Op, error) {
	for _, o := range []Op{OpUnion, OpDifference, OpIntersection} {
		if o.String() == s {
			return o, nil
		}
	}
	return 0, fmt.Errorf("kernel: unknown operation %q", s)
}

func (o Op) apply(m Modeler, a, b Shape) (Shape, error) {
	switch o {
	case OpUnion:
		return m.Union(a, b), nil
	case OpDifference:
		return m.Difference(a, b), nil
	case OpIntersection:
		return m.Intersection(a, b), nil
	}
	return nil, fmt.Errorf("kernel: unknown operation %v", o)
}
