package scoring

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrModelShape = errors.New("window shape does not match model")

// LinearModel is a per-feature linear window model. Each row t of a window
// of n rows is weighted by Decay^(n-1-t), so the candidate step counts most.
//
//	bias: 0.1
//	decay: 0.5
//	weights:
//	  chord.degree.V: 0.4
//	  chord.comp.VII: -0.2
type LinearModel struct {
	Bias    float64            `yaml:"bias"`
	Decay   float64            `yaml:"decay"`
	Weights map[string]float64 `yaml:"weights"`

	dense []float64
}

// Compile maps named weights onto vector positions. Unknown names fail.
func (m *LinearModel) Compile() error {
	index := make(map[string]int, len(featureNames))
	for i, n := range featureNames {
		index[n] = i
	}
	dense := make([]float64, StepDim)
	for name, w := range m.Weights {
		i, ok := index[name]
		if !ok {
			return fmt.Errorf("unknown feature %q", name)
		}
		dense[i] = w
	}
	if m.Decay == 0 {
		m.Decay = 1
	}
	m.dense = dense
	return nil
}

// LoadLinearModel decodes and compiles a YAML model.
func LoadLinearModel(r io.Reader) (*LinearModel, error) {
	var m LinearModel
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode linear model: %w", err)
	}
	if err := m.Compile(); err != nil {
		return nil, err
	}
	return &m, nil
}

func LoadLinearModelFile(path string) (*LinearModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadLinearModel(f)
}

func (m *LinearModel) ScoreWindow(window [][]float64) (float64, error) {
	if m.dense == nil {
		return 0, errors.New("linear model used before Compile")
	}
	total := m.Bias
	n := len(window)
	for t, row := range window {
		if len(row) != StepDim {
			return 0, fmt.Errorf("%w: row %d has %d features, want %d", ErrModelShape, t, len(row), StepDim)
		}
		weight := math.Pow(m.Decay, float64(n-1-t))
		dot := 0.0
		for i, x := range row {
			dot += m.dense[i] * x
		}
		total += weight * dot
	}
	return total, nil
}
