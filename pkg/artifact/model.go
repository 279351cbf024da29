package artifact

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"
)

type modelSpec struct {
	Type            string    `json:"type" yaml:"type"`
	Coef            []float64 `json:"coef" yaml:"coef"`
	Intercept       float64   `json:"intercept" yaml:"intercept"`
	EncodingVersion string    `json:"encoding_version" yaml:"encoding_version"`
}

// LinearModel is a fitted linear regressor: y = coef . x + intercept.
// Ridge and Lasso exports share the same shape.
type LinearModel struct {
	kind            string
	coef            []float64
	intercept       float64
	encodingVersion string
}

// NewLinearModel returns a linear model with the given coefficients.
func NewLinearModel(coef []float64, intercept float64) (*LinearModel, error) {
	return newLinearModel(modelSpec{Coef: coef, Intercept: intercept})
}

func newLinearModel(s modelSpec) (*LinearModel, error) {
	kind := strings.ToLower(s.Type)
	switch kind {
	case "", "linear", "linearregression":
		kind = "linear"
	case "ridge", "lasso", "elasticnet":
	default:
		return nil, fmt.Errorf("unsupported model type: %q", s.Type)
	}

	if len(s.Coef) == 0 {
		return nil, fmt.Errorf("model has no coefficients")
	}
	for i, c := range s.Coef {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("model coefficient %d is not finite", i)
		}
	}
	if math.IsNaN(s.Intercept) || math.IsInf(s.Intercept, 0) {
		return nil, fmt.Errorf("model intercept is not finite")
	}

	return &LinearModel{
		kind:            kind,
		coef:            slices.Clone(s.Coef),
		intercept:       s.Intercept,
		encodingVersion: s.EncodingVersion,
	}, nil
}

// Kind returns the regressor family.
func (m *LinearModel) Kind() string {
	return m.kind
}

// NumFeatures returns the input width the model was fit on.
func (m *LinearModel) NumFeatures() int {
	return len(m.coef)
}

// EncodingVersion returns the ordinal table version the model was trained
// with, or "" when the export did not record one.
func (m *LinearModel) EncodingVersion() string {
	return m.encodingVersion
}

func (m *LinearModel) Predict(x []float64) (float64, error) {
	if len(x) != len(m.coef) {
		return 0, fmt.Errorf("model expects %d features, got %d", len(m.coef), len(x))
	}
	return floats.Dot(m.coef, x) + m.intercept, nil
}
