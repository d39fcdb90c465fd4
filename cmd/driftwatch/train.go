package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"driftwatch/internal/config"
	"driftwatch/internal/dataset"
	"driftwatch/internal/features"
	"driftwatch/internal/model"
)

func newTrainCmd() *cobra.Command {
	var (
		dataPath     string
		outPath      string
		learningRate float64
		epochs       int
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the fraud classifier from a labeled dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = cfg.Model.ArtifactPath
			}

			table, err := dataset.ReadCSVFile(dataPath)
			if err != nil {
				return fmt.Errorf("failed to load training data: %w", err)
			}
			X, y, err := features.Matrix(table)
			if err != nil {
				return fmt.Errorf("failed to build training matrix: %w", err)
			}

			opts := model.DefaultTrainOptions()
			if learningRate > 0 {
				opts.LearningRate = learningRate
			}
			if epochs > 0 {
				opts.Epochs = epochs
			}

			m, err := model.Train(X, y, features.NumericNames(), opts)
			if err != nil {
				return fmt.Errorf("training failed: %w", err)
			}
			if err := m.Save(outPath); err != nil {
				return err
			}

			log.Info().
				Str("artifact", outPath).
				Int("rows", len(X)).
				Int("features", len(features.NumericNames())).
				Msg("model trained")
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "data/reference.csv", "labeled training dataset (CSV)")
	cmd.Flags().StringVar(&outPath, "out", "", "artifact output path (defaults to model.artifact_path)")
	cmd.Flags().Float64Var(&learningRate, "learning-rate", 0, "gradient descent learning rate")
	cmd.Flags().IntVar(&epochs, "epochs", 0, "training epochs")
	return cmd
}
