package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"driftwatch/internal/config"
	"driftwatch/internal/dataset"
	"driftwatch/internal/drift"
	"driftwatch/internal/features"
	"driftwatch/internal/manifest"
	"driftwatch/internal/model"
	"driftwatch/internal/monitor"
)

func newDetectCmd() *cobra.Command {
	var (
		refPath     string
		curPath     string
		datasetName string
		withPerf    bool
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Run drift detection between two datasets",
		Long: `detect compares the reference and current datasets feature by
feature and prints the resulting alert as JSON. With --performance it also
scores both datasets with the trained model and checks for metric
degradation, which requires labeled data and a saved artifact.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			descriptors, err := loadManifest(cfg)
			if err != nil {
				return err
			}

			ref, err := dataset.ReadCSVFile(refPath)
			if err != nil {
				return fmt.Errorf("failed to load reference dataset: %w", err)
			}
			cur, err := dataset.ReadCSVFile(curPath)
			if err != nil {
				return fmt.Errorf("failed to load current dataset: %w", err)
			}

			var perfInput *monitor.PerformanceInput
			if withPerf {
				perfInput, err = buildPerformanceInput(cfg.Model.ArtifactPath, ref, cur)
				if err != nil {
					return err
				}
			}

			service := monitor.New(cfg.Drift, cfg.Performance, cfg.Alerts, monitor.Deps{})
			a, err := service.Run(cmd.Context(), datasetName, ref, cur, descriptors, perfInput)
			if err != nil {
				return err
			}

			if service.ShouldRetrain(a) {
				log.Warn().Str("dataset", datasetName).Msg("retraining recommended")
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(a)
		},
	}

	cmd.Flags().StringVar(&refPath, "reference", "data/reference.csv", "reference dataset (CSV)")
	cmd.Flags().StringVar(&curPath, "current", "data/current.csv", "current dataset (CSV)")
	cmd.Flags().StringVar(&datasetName, "dataset", "transactions", "dataset name used in alerts and storage")
	cmd.Flags().BoolVar(&withPerf, "performance", false, "also check model performance drift (requires labels and a trained model)")
	return cmd
}

// buildPerformanceInput scores both labeled datasets with the saved model.
func buildPerformanceInput(artifactPath string, ref, cur *dataset.Table) (*monitor.PerformanceInput, error) {
	m, err := model.Load(artifactPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load model for performance check: %w", err)
	}

	refX, refY, err := features.Matrix(ref)
	if err != nil {
		return nil, fmt.Errorf("reference dataset: %w", err)
	}
	curX, curY, err := features.Matrix(cur)
	if err != nil {
		return nil, fmt.Errorf("current dataset: %w", err)
	}

	refProbs, err := m.PredictProbaBatch(refX)
	if err != nil {
		return nil, err
	}
	curProbs, err := m.PredictProbaBatch(curX)
	if err != nil {
		return nil, err
	}

	return &monitor.PerformanceInput{
		ReferenceLabels: refY,
		ReferenceProbs:  refProbs,
		CurrentLabels:   curY,
		CurrentProbs:    curProbs,
	}, nil
}

// loadManifest prefers the configured manifest file and falls back to the
// built-in transaction feature set.
func loadManifest(cfg *config.Config) ([]drift.FeatureDescriptor, error) {
	if cfg.Model.ManifestPath != "" {
		if _, err := os.Stat(cfg.Model.ManifestPath); err == nil {
			return manifest.Load(cfg.Model.ManifestPath)
		}
	}
	return features.Manifest(), nil
}
