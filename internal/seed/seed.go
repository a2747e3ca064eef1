// Package seed provides the default reference lists a fresh installation
// starts with.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Lists holds the names to seed into each reference list.
type Lists struct {
	Locations   []string `yaml:"locations"`
	RepairTypes []string `yaml:"repair_types"`
}

// Seeder fills one reference list when it is empty.
type Seeder interface {
	Seed(ctx context.Context, names []string) (int, error)
}

// Defaults returns the built-in lists.
func Defaults() (Lists, error) {
	return parse(defaultsYAML)
}

// Load reads lists from path, or the built-in defaults when path is empty.
func Load(path string) (Lists, error) {
	if path == "" {
		return Defaults()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Lists{}, fmt.Errorf("read seed file: %w", err)
	}
	lists, err := parse(raw)
	if err != nil {
		return Lists{}, fmt.Errorf("seed file %s: %w", path, err)
	}
	return lists, nil
}

func parse(raw []byte) (Lists, error) {
	var lists Lists
	if err := yaml.Unmarshal(raw, &lists); err != nil {
		return Lists{}, fmt.Errorf("parse seed lists: %w", err)
	}
	return lists, nil
}

// Apply seeds both lists. Lists that already hold items are left alone.
func Apply(ctx context.Context, lists Lists, locations, repairTypes Seeder, logger *zap.Logger) error {
	added, err := locations.Seed(ctx, lists.Locations)
	if err != nil {
		return fmt.Errorf("seed locations: %w", err)
	}
	if added > 0 {
		logger.Info("seeded locations", zap.Int("count", added))
	}
	added, err = repairTypes.Seed(ctx, lists.RepairTypes)
	if err != nil {
		return fmt.Errorf("seed repair types: %w", err)
	}
	if added > 0 {
		logger.Info("seeded repair types", zap.Int("count", added))
	}
	return nil
}
