package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Artifact file names inside the model directory. Each is independently
// optional; the training side exports them together.
const (
	ClassifierFile = "classifier.json"
	SelectorFile   = "selector.json"
	ScalerFile     = "scaler.json"
)

// Classifier holds logistic-regression weights exported by the training
// pipeline. Read-only after load.
type Classifier struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

// Width is the input width the classifier expects.
func (c *Classifier) Width() int { return len(c.Weights) }

// Proba returns the fraud probability in [0,1] for a transformed vector.
func (c *Classifier) Proba(x []float64) (float64, error) {
	if len(x) != len(c.Weights) {
		return 0, fmt.Errorf("classifier expects width %d, got %d", len(c.Weights), len(x))
	}
	z := c.Intercept
	for i, w := range c.Weights {
		z += w * x[i]
	}
	return 1 / (1 + math.Exp(-z)), nil
}

// Selector reduces and reorders the raw feature vector to the columns the
// classifier was trained on.
type Selector struct {
	Indices []int `json:"indices"`
}

// Apply projects x onto the selected columns.
func (s *Selector) Apply(x []float64) ([]float64, error) {
	out := make([]float64, 0, len(s.Indices))
	for _, idx := range s.Indices {
		if idx < 0 || idx >= len(x) {
			return nil, fmt.Errorf("selector index %d out of range for width %d", idx, len(x))
		}
		out = append(out, x[idx])
	}
	return out, nil
}

// Scaler standardizes features with the training-set mean and scale.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Apply standardizes x in place-order: (x - mean) / scale.
func (s *Scaler) Apply(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) || len(s.Mean) != len(s.Scale) {
		return nil, fmt.Errorf("scaler expects width %d, got %d", len(s.Mean), len(x))
	}
	out := make([]float64, len(x))
	for i := range x {
		div := s.Scale[i]
		if div == 0 {
			div = 1
		}
		out[i] = (x[i] - s.Mean[i]) / div
	}
	return out, nil
}

// loadArtifact reads one JSON artifact. A missing file is not an error to
// the caller beyond the nil result; the bundle degrades instead.
func loadArtifact[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var artifact T
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &artifact, nil
}
