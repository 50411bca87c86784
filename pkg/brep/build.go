package brep

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/brep/pkg/mesh"
	"github.com/chazu/brep/pkg/tessellate"
)

// Converter builds solids from meshes and extracts meshes from solids.
// A Converter holds no state between calls and is safe for concurrent use.
type Converter struct {
	logger    *slog.Logger
	grid      float64
	tolerance float64
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithGrid sets the quantization grid applied to input vertices.
func WithGrid(grid float64) Option {
	return func(c *Converter) {
		c.grid = grid
	}
}

// WithConvexTolerance sets the angle in degrees by which an edge may be
// reflex while the mesh still counts as convex.
func WithConvexTolerance(deg float64) Option {
	return func(c *Converter) {
		c.tolerance = deg
	}
}

// NewConverter returns a Converter with the given options.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		logger:    slog.Default(),
		grid:      mesh.DefaultGrid,
		tolerance: mesh.DefaultConvexTolerance,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// buildPath records which construction produced a solid.
type buildPath int

const (
	pathEmpty buildPath = iota
	pathHull
	pathGeneral
	pathRetry
)

func (p buildPath) String() string {
	switch p {
	case pathEmpty:
		return "empty"
	case pathHull:
		return "hull"
	case pathGeneral:
		return "general"
	case pathRetry:
		return "retry"
	}
	return fmt.Sprintf("buildPath(%d)", int(p))
}

// Build converts m into an exact solid. An empty mesh gives an empty
// solid. Convex input takes a convex hull of its vertices; anything else
// is built face by face. If that fails on a non-planar face the build is
// retried once with every face triangulated. Failures are logged and
// returned as *BuildError.
func (c *Converter) Build(m *mesh.Mesh) (*Solid, error) {
	s, _, err := c.build(m)
	return s, err
}

func (c *Converter) build(m *mesh.Mesh) (*Solid, buildPath, error) {
	if m == nil || m.IsEmpty() {
		return NewEmpty(), pathEmpty, nil
	}
	if err := m.Validate(); err != nil {
		c.logger.Error("invalid mesh", "err", err)
		return nil, pathGeneral, &BuildError{Kind: Invalid, Err: err}
	}
	if err := checkFinite(m); err != nil {
		c.logger.Error("invalid mesh", "err", err)
		return nil, pathGeneral, err
	}

	psq := m.Quantize(c.grid)
	if psq.IsEmpty() {
		c.logger.Debug("mesh collapsed under quantization", "faces", m.FaceCount())
		return NewEmpty(), pathEmpty, nil
	}
	psTri := tessellate.Faces(psq)

	if mesh.ConvexWithin(psTri, c.tolerance) {
		pts := referenced(psq)
		c.logger.Debug("convex input, building hull", "points", len(pts))
		s, err := c.safely(func() (*Solid, error) {
			h := convexHull(pts)
			if h == nil {
				return NewEmpty(), nil
			}
			return fromMesh(h)
		})
		if err != nil {
			c.logger.Error("convex hull construction failed", "err", err)
		}
		return s, pathHull, err
	}

	s, err := c.safely(func() (*Solid, error) { return fromMesh(psq) })
	if err == nil {
		return s, pathGeneral, nil
	}
	if !errors.Is(err, ErrNonPlanarFace) {
		c.logger.Error("solid construction failed", "err", err)
		return nil, pathGeneral, err
	}

	c.logger.Info("non-planar face, attempting alternate construction", "err", err)
	s, err = c.safely(func() (*Solid, error) { return fromMesh(psTri) })
	if err != nil {
		c.logger.Error("alternate construction failed", "err", err)
		return nil, pathRetry, err
	}
	return s, pathRetry, nil
}

// safely runs f, turning a panic into a KernelFault.
func (c *Converter) safely(f func() (*Solid, error)) (s *Solid, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, buildErr(KernelFault, "panic: %v", r)
		}
	}()
	return f()
}

func checkFinite(m *mesh.Mesh) error {
	for _, f := range m.Faces {
		for _, i := range f {
			p := m.Vertices[i]
			for _, x := range [3]float64{p.X, p.Y, p.Z} {
				if math.IsNaN(x) || math.IsInf(x, 0) {
					return buildErr(KernelFault, "vertex %d is not finite: %v", i, p)
				}
			}
		}
	}
	return nil
}

// referenced returns the vertices used by faces of m, in first-use order.
func referenced(m *mesh.Mesh) []v3.Vec {
	seen := make(map[int]bool)
	var out []v3.Vec
	for _, f := range m.Faces {
		for _, i := range f {
			if !seen[i] {
				seen[i] = true
				out = append(out, m.Vertices[i])
			}
		}
	}
	return out
}
