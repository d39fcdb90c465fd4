package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes the model artifact as JSON. The write goes through a temp file
// and rename so a crashed run never leaves a truncated artifact behind.
func (m *Model) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".model-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write model artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close model artifact: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize model artifact %s: %w", path, err)
	}
	return nil
}

// Load reads a model artifact from disk and validates its shape.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact %s: %w", path, err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact %s: %w", path, err)
	}

	if len(m.Weights) == 0 {
		return nil, fmt.Errorf("model artifact %s has no weights", path)
	}
	if len(m.Weights) != len(m.FeatureNames) || len(m.Weights) != len(m.Means) || len(m.Weights) != len(m.Scales) {
		return nil, fmt.Errorf("model artifact %s has inconsistent shapes (weights=%d names=%d means=%d scales=%d)",
			path, len(m.Weights), len(m.FeatureNames), len(m.Means), len(m.Scales))
	}
	return &m, nil
}
