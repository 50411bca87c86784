package main

import (
	"fmt"
	"io"
	"os"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/hschendel/stl"

	"github.com/chazu/brep/pkg/mesh"
)

// readSTL reads an ASCII or binary STL as a triangle soup. Vertices are not
// merged; the kernel quantizes them on build. The format is sniffed, so r
// must be seekable.
func readSTL(r io.ReadSeeker) (*mesh.Mesh, error) {
	solid, err := stl.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read stl: %w", err)
	}
	m := &mesh.Mesh{Vertices: make([]v3.Vec, 0, 3*len(solid.Triangles))}
	for _, t := range solid.Triangles {
		i := len(m.Vertices)
		for _, v := range t.Vertices {
			m.Vertices = append(m.Vertices, v3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])})
		}
		m.AddFace(false, i, i+1, i+2)
	}
	return m, nil
}

func readSTLFile(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readSTL(f)
}

// writeSTL writes the triangles of m. Faces that are not triangles are an
// error; extract or tessellate the mesh first.
func writeSTL(w io.Writer, name string, m *mesh.Mesh, ascii bool) error {
	solid := &stl.Solid{Name: name, IsAscii: ascii, Triangles: make([]stl.Triangle, 0, m.FaceCount())}
	for i, f := range m.Faces {
		if len(f) != 3 {
			return fmt.Errorf("write stl: face %d has %d vertices", i, len(f))
		}
		pts := m.FacePoints(i)
		var t stl.Triangle
		if n := mesh.NewellNormal(pts); n.Length() > 0 {
			n = n.Normalize()
			t.Normal = stl.Vec3{float32(n.X), float32(n.Y), float32(n.Z)}
		}
		for k, p := range pts {
			t.Vertices[k] = stl.Vec3{float32(p.X), float32(p.Y), float32(p.Z)}
		}
		solid.Triangles = append(solid.Triangles, t)
	}
	if err := solid.WriteAll(w); err != nil {
		return fmt.Errorf("write stl: %w", err)
	}
	return nil
}

func writeSTLFile(path string, m *mesh.Mesh, ascii bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return writeSTL(f, "brepcheck", m, ascii)
}
