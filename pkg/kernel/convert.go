package kernel

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/brep/pkg/brep"
	"github.com/chazu/brep/pkg/mesh"
)

// ErrNoEngine is returned by Apply without a Boolean engine.
var ErrNoEngine = errors.New("kernel: no boolean engine")

// Kernel converts and transforms geometry. It is safe for concurrent use.
type Kernel struct {
	cfg    Config
	logger *slog.Logger
	conv   *brep.Converter
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(k *Kernel) {
		if l != nil {
			k.logger = l
		}
	}
}

// New returns a Kernel for cfg.
func New(cfg Config, opts ...Option) (*Kernel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	k := &Kernel{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(k)
	}
	k.conv = brep.NewConverter(
		brep.WithLogger(k.logger),
		brep.WithGrid(cfg.QuantizeGrid),
		brep.WithConvexTolerance(cfg.ConvexToleranceDeg),
	)
	return k, nil
}

// Config returns the configuration the kernel was created with.
func (k *Kernel) Config() Config {
	return k.cfg
}

// ToSolid returns g as an exact solid. Meshes are built, solids pass
// through and 2D polygons, having no volume, give the empty solid.
func (k *Kernel) ToSolid(g Geometry) (*brep.Solid, error) {
	switch g := g.(type) {
	case *MeshGeometry:
		return k.conv.Build(g.Mesh)
	case *SolidGeometry:
		if g.Solid == nil {
			return brep.NewEmpty(), nil
		}
		return g.Solid, nil
	case *Polygon2D:
		k.logger.Debug("2d polygon has no volume", "points", len(g.Outer))
		return brep.NewEmpty(), nil
	case nil:
		return brep.NewEmpty(), nil
	}
	panic(fmt.Sprintf("kernel.ToSolid: unknown geometry %T", g))
}

// ToMesh returns g as a mesh. Solids are extracted; extraction defects are
// logged and do not fail the call.
func (k *Kernel) ToMesh(g Geometry) (*mesh.Mesh, error) {
	switch g := g.(type) {
	case *MeshGeometry:
		if g.Mesh == nil {
			return mesh.New(), nil
		}
		return g.Mesh, nil
	case *SolidGeometry:
		if g.Solid == nil {
			return mesh.New(), nil
		}
		m, report := k.conv.Extract(g.Solid)
		if report.FailedFacets > 0 {
			k.logger.Warn("facets dropped during extraction", "failed", report.FailedFacets)
		}
		return m, nil
	case *Polygon2D:
		return g.Mesh()
	case nil:
		return mesh.New(), nil
	}
	panic(fmt.Sprintf("kernel.ToMesh: unknown geometry %T", g))
}

// Extract is ToMesh for solids, also returning the defect report.
func (k *Kernel) Extract(s *brep.Solid) (*mesh.Mesh, brep.ExtractReport) {
	return k.conv.Extract(s)
}

// IsApproximatelyConvex reports whether m is a closed, connected surface
// without reflex edges beyond the configured tolerance.
func (k *Kernel) IsApproximatelyConvex(m *mesh.Mesh) bool {
	return mesh.ConvexWithin(m, k.cfg.ConvexToleranceDeg)
}

// Transform returns g mapped through t. Meshes are copied and solids are
// transformed exactly; the argument is never modified. Polygons take the
// XY part of the map. t must be invertible; a singular matrix panics.
func (k *Kernel) Transform(g Geometry, t mgl64.Mat4) Geometry {
	if err := mesh.ValidateTransform(t); err != nil {
		panic(fmt.Sprintf("kernel.Transform: %v", err))
	}
	switch g := g.(type) {
	case *MeshGeometry:
		if g.Mesh == nil {
			return &MeshGeometry{}
		}
		m := g.Mesh.Clone()
		m.Transform(t)
		return &MeshGeometry{Mesh: m}
	case *SolidGeometry:
		if g.Solid == nil {
			return &SolidGeometry{}
		}
		return &SolidGeometry{Solid: g.Solid.Transform(t)}
	case *Polygon2D:
		return g.transform(t)
	}
	panic(fmt.Sprintf("kernel.Transform: unknown geometry %T", g))
}

// Resize scales g so that its bounding box takes the requested size. See
// ResizeTransform for the meaning of the arguments.
func (k *Kernel) Resize(g Geometry, dimension int, newSize [3]float64, autosize [3]bool) Geometry {
	t := k.ResizeTransform(g.BoundingBox(), dimension, newSize, autosize)
	if t == mgl64.Ident4() {
		return g
	}
	return k.Transform(g, t)
}

// FromModeler meshes s with md and builds the result.
func (k *Kernel) FromModeler(md Modeler, s Shape) (*brep.Solid, error) {
	m, err := md.ToMesh(s)
	if err != nil {
		return nil, fmt.Errorf("kernel: modeler mesh: %w", err)
	}
	return k.conv.Build(m)
}

// Apply runs op on a and b through engine: both solids are extracted,
// imported into the engine, combined, and the result is built again.
func (k *Kernel) Apply(op Op, engine BooleanEngine, a, b *brep.Solid) (*brep.Solid, error) {
	if engine == nil {
		return nil, ErrNoEngine
	}
	shapes := make([]Shape, 2)
	for i, s := range []*brep.Solid{a, b} {
		m, report := k.conv.Extract(s)
		if report.Defects() > 0 {
			k.logger.Warn("boolean operand is not manifold", "op", op, "operand", i, "defects", report.Defects())
		}
		sh, err := engine.FromMesh(m)
		if err != nil {
			return nil, fmt.Errorf("kernel: import operand %d: %w", i, err)
		}
		shapes[i] = sh
	}
	res, err := op.apply(engine, shapes[0], shapes[1])
	if err != nil {
		return nil, err
	}
	m, err := engine.ToMesh(res)
	if err != nil {
		return nil, fmt.Errorf("kernel: %v result mesh: %w", op, err)
	}
	k.logger.Debug("boolean operation", "op", op, "faces", m.FaceCount())
	return k.conv.Build(m)
}
