package kernel

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/chazu/brep/pkg/mesh"
)

// Config holds the tunables of the kernel.
type Config struct {
	// QuantizeGrid is the grid input vertices are snapped to before a
	// build. Zero disables snapping.
	QuantizeGrid float64 `yaml:"quantize_grid" validate:"gte=0"`

	// ConvexToleranceDeg is how far in degrees an edge may be reflex
	// while the mesh still takes the convex hull path.
	ConvexToleranceDeg float64 `yaml:"convex_tolerance_deg" validate:"gte=0,lt=90"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`
}

var validate = validator.New()

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		QuantizeGrid:       mesh.DefaultGrid,
		ConvexToleranceDeg: mesh.DefaultConvexTolerance,
		LogLevel:           "info",
	}
}

// Validate checks the field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("kernel: invalid config: %w", err)
	}
	return nil
}

// Level returns LogLevel as a slog level.
func (c Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// LoadConfig reads a YAML config file over the defaults and then applies
// BREP_* environment overrides. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("load config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := loadConfigFromEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func loadConfigFromEnv(cfg *Config) error {
	if v := os.Getenv("BREP_QUANTIZE_GRID"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("BREP_QUANTIZE_GRID: %w", err)
		}
		cfg.QuantizeGrid = f
	}
	if v := os.Getenv("BREP_CONVEX_TOLERANCE_DEG"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("BREP_CONVEX_TOLERANCE_DEG: %w", err)
		}
		cfg.ConvexToleranceDeg = f
	}
	if v := os.Getenv("BREP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}
