// Package manifest loads the feature manifest: the ordered list of
// (name, kind) pairs declaring which features the drift detector monitors.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"driftwatch/internal/drift"
)

// File is the YAML manifest layout
type File struct {
	Features []Entry `yaml:"features"`
}

// Entry declares one monitored feature
type Entry struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

// Load reads and validates a feature manifest from a YAML file.
func Load(path string) ([]drift.FeatureDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return Parse(data)
}

// Parse validates raw manifest YAML: no duplicate names, every feature has
// exactly one recognized kind.
func Parse(data []byte) ([]drift.FeatureDescriptor, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse manifest YAML: %w", err)
	}
	if len(file.Features) == 0 {
		return nil, fmt.Errorf("manifest declares no features")
	}

	seen := make(map[string]bool, len(file.Features))
	manifest := make([]drift.FeatureDescriptor, 0, len(file.Features))
	for i, entry := range file.Features {
		if entry.Name == "" {
			return nil, fmt.Errorf("manifest entry %d has no name", i)
		}
		if seen[entry.Name] {
			return nil, fmt.Errorf("duplicate manifest entry %q", entry.Name)
		}
		seen[entry.Name] = true

		kind := drift.FeatureKind(entry.Kind)
		if kind != drift.Numeric && kind != drift.Categorical {
			return nil, fmt.Errorf("manifest entry %q has unknown kind %q (want numeric|categorical)", entry.Name, entry.Kind)
		}
		manifest = append(manifest, drift.FeatureDescriptor{Name: entry.Name, Kind: kind})
	}
	return manifest, nil
}
