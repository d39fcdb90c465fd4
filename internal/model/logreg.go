// Package model implements the fraud classifier: logistic regression trained
// by gradient descent with class weighting, plus JSON artifact handling.
// There is no randomness in the training path, so a fixed dataset always
// yields the same weights.
package model

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
)

// TrainOptions holds the gradient descent hyperparameters
type TrainOptions struct {
	LearningRate float64 `yaml:"learning_rate"` // Default: 0.1
	Epochs       int     `yaml:"epochs"`        // Default: 300
	L2           float64 `yaml:"l2"`            // Default: 1e-4
}

// DefaultTrainOptions returns the default hyperparameters
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		LearningRate: 0.1,
		Epochs:       300,
		L2:           1e-4,
	}
}

// Model is a trained logistic regression classifier. Inputs are
// standardized with the stored means and scales before scoring.
type Model struct {
	FeatureNames []string           `json:"feature_names"`
	Weights      []float64          `json:"weights"`
	Bias         float64            `json:"bias"`
	Means        []float64          `json:"means"`
	Scales       []float64          `json:"scales"`
	TrainedAt    time.Time          `json:"trained_at"`
	Baseline     map[string]float64 `json:"baseline_metrics,omitempty"`
}

// Train fits a logistic regression on X (rows of feature vectors aligned
// with featureNames) and binary labels y. Positive examples are reweighted
// by the class imbalance ratio.
func Train(X [][]float64, y []int, featureNames []string, opts TrainOptions) (*Model, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("empty training set")
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("features and labels length mismatch: %d != %d", len(X), len(y))
	}
	nFeatures := len(X[0])
	if len(featureNames) != nFeatures {
		return nil, fmt.Errorf("feature names length %d does not match vector width %d", len(featureNames), nFeatures)
	}

	def := DefaultTrainOptions()
	if opts.LearningRate <= 0 {
		opts.LearningRate = def.LearningRate
	}
	if opts.Epochs <= 0 {
		opts.Epochs = def.Epochs
	}
	if opts.L2 < 0 {
		opts.L2 = def.L2
	}

	pos := 0
	for _, label := range y {
		if label == 1 {
			pos++
		}
	}
	neg := len(y) - pos
	if pos == 0 || neg == 0 {
		return nil, fmt.Errorf("training set contains a single class (%d positive, %d negative)", pos, neg)
	}
	posWeight := float64(neg) / float64(pos)

	means, scales := standardization(X)
	std := make([][]float64, len(X))
	for i, row := range X {
		std[i] = standardize(row, means, scales)
	}

	weights := make([]float64, nFeatures)
	bias := 0.0
	n := float64(len(std))

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		gradW := make([]float64, nFeatures)
		gradB := 0.0
		for i, row := range std {
			p := sigmoid(dot(weights, row) + bias)
			residual := p - float64(y[i])
			if y[i] == 1 {
				residual *= posWeight
			}
			for j, v := range row {
				gradW[j] += residual * v
			}
			gradB += residual
		}
		for j := range weights {
			weights[j] -= opts.LearningRate * (gradW[j]/n + opts.L2*weights[j])
		}
		bias -= opts.LearningRate * gradB / n
	}

	log.Info().
		Int("samples", len(X)).
		Int("features", nFeatures).
		Int("epochs", opts.Epochs).
		Float64("pos_weight", posWeight).
		Msg("logistic regression training complete")

	return &Model{
		FeatureNames: featureNames,
		Weights:      weights,
		Bias:         bias,
		Means:        means,
		Scales:       scales,
		TrainedAt:    time.Now().UTC(),
	}, nil
}

// PredictProba returns the fraud probability for one feature vector.
func (m *Model) PredictProba(x []float64) (float64, error) {
	if len(x) != len(m.Weights) {
		return 0, fmt.Errorf("feature vector width %d does not match model width %d", len(x), len(m.Weights))
	}
	return sigmoid(dot(m.Weights, standardize(x, m.Means, m.Scales)) + m.Bias), nil
}

// PredictProbaBatch scores many feature vectors.
func (m *Model) PredictProbaBatch(X [][]float64) ([]float64, error) {
	probs := make([]float64, len(X))
	for i, x := range X {
		p, err := m.PredictProba(x)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		probs[i] = p
	}
	return probs, nil
}

// Predict applies the decision threshold to the fraud probability.
func (m *Model) Predict(x []float64, threshold float64) (int, error) {
	p, err := m.PredictProba(x)
	if err != nil {
		return 0, err
	}
	if p >= threshold {
		return 1, nil
	}
	return 0, nil
}

func standardization(X [][]float64) (means, scales []float64) {
	n := float64(len(X))
	width := len(X[0])
	means = make([]float64, width)
	scales = make([]float64, width)

	for _, row := range X {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= n
	}
	for _, row := range X {
		for j, v := range row {
			d := v - means[j]
			scales[j] += d * d
		}
	}
	for j := range scales {
		scales[j] = math.Sqrt(scales[j] / n)
		if scales[j] == 0 {
			scales[j] = 1.0 // constant feature contributes nothing either way
		}
	}
	return means, scales
}

func standardize(x, means, scales []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - means[j]) / scales[j]
	}
	return out
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
