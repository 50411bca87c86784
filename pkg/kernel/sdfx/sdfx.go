// Package sdfx implements the kernel.Modeler interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Shapes are meshed with
// marching cubes, so curved and sharp features alike come out as
// approximations; the meshes are quantized so the exact kernel can build
// them.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/brep/pkg/kernel"
	"github.com/chazu/brep/pkg/mesh"
)

// Compile-time interface check.
var _ kernel.Modeler = (*Modeler)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// sdfxShape wraps an sdf.SDF3 to implement kernel.Shape.
type sdfxShape struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxShape) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// Modeler implements kernel.Modeler using sdfx.
type Modeler struct {
	cells int
	grid  float64
}

// Option configures a Modeler.
type Option func(*Modeler)

// WithCells sets the number of marching cubes cells along the longest
// side of a shape's bounding box.
func WithCells(n int) Option {
	return func(m *Modeler) {
		if n > 0 {
			m.cells = n
		}
	}
}

// WithGrid sets the grid mesh vertices are snapped to.
func WithGrid(grid float64) Option {
	return func(m *Modeler) {
		m.grid = grid
	}
}

// New returns a new Modeler.
func New(opts ...Option) *Modeler {
	m := &Modeler{cells: defaultMeshCells, grid: mesh.DefaultGrid}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Shape.
func unwrap(s kernel.Shape) sdf.SDF3 {
	return s.(*sdfxShape).s
}

// wrap creates a kernel.Shape from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Shape {
	return &sdfxShape{s: s}
}

// Box creates a box with the given dimensions and its minimum corner at
// the origin. sdf.Box3D centers the box, so it is shifted by half its size.
func (k *Modeler) Box(x, y, z float64) kernel.Shape {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	return wrap(sdf.Transform3D(s, m))
}

// Cylinder creates a cylinder along Z centered at the origin.
// The segments parameter is ignored since SDF represents smooth surfaces.
func (k *Modeler) Cylinder(height, radius float64, segments int) kernel.Shape {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	return wrap(s)
}

// Union returns the union of two shapes.
func (k *Modeler) Union(a, b kernel.Shape) kernel.Shape {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *Modeler) Difference(a, b kernel.Shape) kernel.Shape {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two shapes.
func (k *Modeler) Intersection(a, b kernel.Shape) kernel.Shape {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Translate moves a shape by (x, y, z).
func (k *Modeler) Translate(s kernel.Shape, x, y, z float64) kernel.Shape {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates a shape by Euler angles (degrees) around X, Y, Z axes.
func (k *Modeler) Rotate(s kernel.Shape, x, y, z float64) kernel.Shape {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh converts a shape to an indexed triangle mesh using marching
// cubes. Triangle corners shared between cells are merged by quantizing
// to the modeler's grid, which also drops collapsed triangles.
func (k *Modeler) ToMesh(s kernel.Shape) (*mesh.Mesh, error) {
	sdf3 := unwrap(s)

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(sdf3, renderer)

	m := &mesh.Mesh{Vertices: make([]v3.Vec, 0, 3*len(triangles))}
	for _, tri := range triangles {
		i := len(m.Vertices)
		m.Vertices = append(m.Vertices, tri[0], tri[1], tri[2])
		m.AddFace(false, i, i+1, i+2)
	}
	return m.Quantize(k.grid), nil
}
