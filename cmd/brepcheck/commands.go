package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/chazu/brep/pkg/brep"
	"github.com/chazu/brep/pkg/kernel"
	"github.com/chazu/brep/pkg/kernel/manifold"
	"github.com/chazu/brep/pkg/kernel/sdfx"
)

// app holds what the commands share once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	ascii      bool

	// newEngine returns the Boolean engine for the boolean command.
	newEngine func() (kernel.BooleanEngine, error)

	k *kernel.Kernel
}

func newRootCmd() *cobra.Command {
	return (&app{newEngine: manifold.New}).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "brepcheck",
		Short:         "Build STL meshes into exact solids and write them back",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")
	root.PersistentFlags().BoolVar(&a.ascii, "ascii", false, "write ASCII instead of binary STL")

	root.AddCommand(
		a.inspectCmd(),
		a.convertCmd(),
		a.resizeCmd(),
		a.sampleCmd(),
		a.booleanCmd(),
	)
	return root
}

func (a *app) init(logOut io.Writer) error {
	cfg, err := kernel.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.Level()}))
	a.k, err = kernel.New(cfg, kernel.WithLogger(logger))
	return err
}

func (a *app) build(path string) (*brep.Solid, error) {
	m, err := readSTLFile(path)
	if err != nil {
		return nil, err
	}
	s, err := a.k.ToSolid(&kernel.MeshGeometry{Mesh: m})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (a *app) write(path string, s *brep.Solid) error {
	m, err := a.k.ToMesh(&kernel.SolidGeometry{Solid: s})
	if err != nil {
		return err
	}
	return writeSTLFile(path, m, a.ascii)
}

func (a *app) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Report the topology and exact measures of an STL solid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := readSTLFile(args[0])
			if err != nil {
				return err
			}
			q := m.Quantize(a.k.Config().QuantizeGrid)
			s, err := a.k.ToSolid(&kernel.MeshGeometry{Mesh: m})
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			out, report := a.k.Extract(s)

			w := cmd.OutOrStdout()
			bb := s.BoundingBox()
			fmt.Fprintf(w, "triangles:   %d\n", m.FaceCount())
			fmt.Fprintf(w, "vertices:    %d\n", q.VertexCount())
			fmt.Fprintf(w, "convex:      %t\n", a.k.IsApproximatelyConvex(q))
			fmt.Fprintf(w, "facets:      %d\n", s.FacetCount()/2)
			fmt.Fprintf(w, "volumes:     %d\n", s.VolumeCount())
			fmt.Fprintf(w, "volume:      %s\n", s.EnclosedVolume().FloatString(6))
			fmt.Fprintf(w, "bounds:      %v %v\n", bb.Min, bb.Max)
			fmt.Fprintf(w, "extracted:   %d triangles\n", out.FaceCount())
			fmt.Fprintf(w, "defects:     %d\n", report.Defects())
			return nil
		},
	}
}

func (a *app) convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Build an STL into an exact solid and extract it again",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			s, err := a.build(args[0])
			if err != nil {
				return err
			}
			return a.write(args[1], s)
		},
	}
}

func (a *app) resizeCmd() *cobra.Command {
	var (
		size     []float64
		autosize []bool
	)
	cmd := &cobra.Command{
		Use:   "resize IN OUT",
		Short: "Scale an STL solid to a target bounding box size",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(size) == 0 || len(size) > 3 {
				return fmt.Errorf("--size takes one to three values, got %d", len(size))
			}
			var newSize [3]float64
			var auto [3]bool
			copy(newSize[:], size)
			copy(auto[:], autosize)

			s, err := a.build(args[0])
			if err != nil {
				return err
			}
			g := a.k.Resize(&kernel.SolidGeometry{Solid: s}, len(size), newSize, auto)
			return a.write(args[1], g.(*kernel.SolidGeometry).Solid)
		},
	}
	cmd.Flags().Float64SliceVar(&size, "size", nil, "target size per axis, 0 to keep (x,y,z)")
	cmd.Flags().BoolSliceVar(&autosize, "autosize", nil, "scale zero-size axes with the largest requested one")
	return cmd
}

func (a *app) sampleCmd() *cobra.Command {
	var (
		dims  []float64
		cells int
	)
	cmd := &cobra.Command{
		Use:   "sample box|cylinder OUT",
		Short: "Mesh an SDF primitive, build it and write the result",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			md := sdfx.New(sdfx.WithCells(cells), sdfx.WithGrid(a.k.Config().QuantizeGrid))
			var shape kernel.Shape
			switch args[0] {
			case "box":
				if len(dims) != 3 {
					return fmt.Errorf("box takes --dims x,y,z")
				}
				shape = md.Box(dims[0], dims[1], dims[2])
			case "cylinder":
				if len(dims) != 2 {
					return fmt.Errorf("cylinder takes --dims height,radius")
				}
				shape = md.Cylinder(dims[0], dims[1], 0)
			default:
				return fmt.Errorf("unknown primitive %q", args[0])
			}
			s, err := a.k.FromModeler(md, shape)
			if err != nil {
				return err
			}
			return a.write(args[1], s)
		},
	}
	cmd.Flags().Float64SliceVar(&dims, "dims", []float64{10, 10, 10}, "primitive dimensions")
	cmd.Flags().IntVar(&cells, "cells", 64, "marching cubes cells along the longest side")
	return cmd
}

func (a *app) booleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "boolean union|difference|intersection A B OUT",
		Short: "Combine two STL solids with the Boolean engine",
		Args:  cobra.ExactArgs(4),
		RunE: func(_ *cobra.Command, args []string) error {
			op, err := kernel.ParseOp(args[0])
			if err != nil {
				return err
			}
			engine, err := a.newEngine()
			if err != nil {
				return err
			}
			x, err := a.build(args[1])
			if err != nil {
				return err
			}
			y, err := a.build(args[2])
			if err != nil {
				return err
			}
			s, err := a.k.Apply(op, engine, x, y)
			if err != nil {
				return err
			}
			return a.write(args[3], s)
		},
	}
}
