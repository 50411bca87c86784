//go:build manifold

// Package manifold provides a CGo-based Boolean engine binding to the
// Manifold library (https://github.com/elalish/manifold). Exact solids are
// handed to it as meshes and its results are built back into exact solids
// by kernel.Kernel.Apply.
//
// This package requires the Manifold C library (manifoldc) to be installed.
// Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/chazu/brep/pkg/kernel"
	"github.com/chazu/brep/pkg/mesh"
)

// Compile-time interface checks.
var _ kernel.BooleanEngine = (*Engine)(nil)
var _ kernel.Shape = (*manifoldShape)(nil)

// manifoldShape wraps a C ManifoldManifold pointer and implements
// kernel.Shape.
type manifoldShape struct {
	ptr *C.ManifoldManifold
}

// BoundingBox returns the axis-aligned bounding box of the shape.
func (s *manifoldShape) BoundingBox() (min, max [3]float64) {
	alloc := C.manifold_alloc_box()
	bbox := C.manifold_bounding_box(alloc, s.ptr)
	defer C.manifold_delete_box(bbox)

	min[0] = float64(C.manifold_box_min_x(bbox))
	min[1] = float64(C.manifold_box_min_y(bbox))
	min[2] = float64(C.manifold_box_min_z(bbox))
	max[0] = float64(C.manifold_box_max_x(bbox))
	max[1] = float64(C.manifold_box_max_y(bbox))
	max[2] = float64(C.manifold_box_max_z(bbox))
	return min, max
}

// newShape wraps a C ManifoldManifold pointer with a finalizer that frees
// it.
func newShape(ptr *C.ManifoldManifold) *manifoldShape {
	s := &manifoldShape{ptr: ptr}
	runtime.SetFinalizer(s, func(s *manifoldShape) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

// Engine implements kernel.BooleanEngine using the Manifold C library.
type Engine struct{}

// New creates a new Engine.
func New() (kernel.BooleanEngine, error) {
	return &Engine{}, nil
}

// Box creates an axis-aligned box with the given dimensions, centered at
// the origin.
func (k *Engine) Box(x, y, z float64) kernel.Shape {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_cube(alloc,
		C.double(x), C.double(y), C.double(z),
		C.int(1), // center=true
	)
	return newShape(ptr)
}

// Cylinder creates a cylinder along the Z axis centered at the origin.
func (k *Engine) Cylinder(height, radius float64, segments int) kernel.Shape {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_cylinder(alloc,
		C.double(height),
		C.double(radius), // radius_low
		C.double(radius), // radius_high
		C.int(segments),
		C.int(1), // center=true
	)
	return newShape(ptr)
}

// Union returns the boolean union of two shapes.
func (k *Engine) Union(a, b kernel.Shape) kernel.Shape {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_union(alloc, a.(*manifoldShape).ptr, b.(*manifoldShape).ptr)
	return newShape(ptr)
}

// Difference returns the boolean difference (a minus b).
func (k *Engine) Difference(a, b kernel.Shape) kernel.Shape {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_difference(alloc, a.(*manifoldShape).ptr, b.(*manifoldShape).ptr)
	return newShape(ptr)
}

// Intersection returns the boolean intersection of two shapes.
func (k *Engine) Intersection(a, b kernel.Shape) kernel.Shape {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_intersection(alloc, a.(*manifoldShape).ptr, b.(*manifoldShape).ptr)
	return newShape(ptr)
}

// Translate moves the shape by (x, y, z).
func (k *Engine) Translate(s kernel.Shape, x, y, z float64) kernel.Shape {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_translate(alloc, s.(*manifoldShape).ptr,
		C.double(x), C.double(y), C.double(z),
	)
	return newShape(ptr)
}

// Rotate rotates the shape by Euler angles (in degrees) around X, Y, Z.
func (k *Engine) Rotate(s kernel.Shape, x, y, z float64) kernel.Shape {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_rotate(alloc, s.(*manifoldShape).ptr,
		C.double(x), C.double(y), C.double(z),
	)
	return newShape(ptr)
}

// FromMesh imports a closed triangle mesh. Faces with more than three
// vertices are fanned, so callers should pass triangulated meshes.
func (k *Engine) FromMesh(m *mesh.Mesh) (kernel.Shape, error) {
	b := m.Buffers()
	if b.TriangleCount() == 0 {
		return nil, fmt.Errorf("manifold: empty mesh")
	}
	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_meshgl(meshAlloc,
		(*C.float)(unsafe.Pointer(&b.Vertices[0])), C.size_t(b.VertexCount()), C.size_t(3),
		(*C.uint32_t)(unsafe.Pointer(&b.Indices[0])), C.size_t(b.TriangleCount()),
	)
	defer C.manifold_delete_meshgl(meshGL)
	runtime.KeepAlive(b)

	ptr := C.manifold_of_meshgl(C.manifold_alloc_manifold(), meshGL)
	s := newShape(ptr)
	if status := C.manifold_status(ptr); status != C.MANIFOLD_NO_ERROR {
		return nil, fmt.Errorf("manifold: mesh rejected with status %d", int(status))
	}
	return s, nil
}

// ToMesh extracts an indexed triangle mesh from the shape using Manifold's
// MeshGL format. Only the leading position properties are read.
func (k *Engine) ToMesh(s kernel.Shape) (*mesh.Mesh, error) {
	ms := s.(*manifoldShape)

	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_get_meshgl(meshAlloc, ms.ptr)
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))
	if numVert == 0 || numTri == 0 {
		return mesh.New(), nil
	}

	// MeshGL stores numProp floats per vertex; the first three are the
	// position.
	numProp := int(C.manifold_meshgl_num_prop(meshGL))
	propData := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties(
		(*C.float)(unsafe.Pointer(&propData[0])),
		meshGL,
	)

	b := &mesh.Buffers{
		Vertices: make([]float32, numVert*3),
		Indices:  make([]uint32, numTri*3),
	}
	C.manifold_meshgl_tri_verts(
		(*C.uint32_t)(unsafe.Pointer(&b.Indices[0])),
		meshGL,
	)
	for i := 0; i < numVert; i++ {
		copy(b.Vertices[3*i:3*i+3], propData[i*numProp:i*numProp+3])
	}

	if b.VertexCount() != numVert {
		return nil, fmt.Errorf("manifold: vertex count mismatch: got %d, expected %d",
			b.VertexCount(), numVert)
	}
	// Property seams split vertices; merge them again.
	return mesh.FromBuffers(b).Quantize(mesh.DefaultGrid), nil
}
