package artifact

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/mchmarny/examscore/pkg/feature"
	"gonum.org/v1/gonum/floats"
)

const (
	ScalerStandard = "standard"
	ScalerMinMax   = "minmax"
)

type scalerSpec struct {
	Type    string    `json:"type" yaml:"type"`
	Columns []string  `json:"columns" yaml:"columns"`
	Mean    []float64 `json:"mean" yaml:"mean"`
	Min     []float64 `json:"min" yaml:"min"`
	Scale   []float64 `json:"scale" yaml:"scale"`
}

// Scaler is a fitted per-column affine transform. A standard scaler
// computes (x-mean)/scale, a min-max scaler computes x*scale+min, matching
// the fitted attributes of the corresponding sklearn estimators.
type Scaler struct {
	kind    string
	columns []string
	offset  []float64
	scale   []float64
}

// NewStandardScaler returns a fitted standard scaler.
func NewStandardScaler(columns []string, mean, scale []float64) (*Scaler, error) {
	return newScaler(scalerSpec{Type: ScalerStandard, Columns: columns, Mean: mean, Scale: scale})
}

// NewMinMaxScaler returns a fitted min-max scaler.
func NewMinMaxScaler(columns []string, offset, scale []float64) (*Scaler, error) {
	return newScaler(scalerSpec{Type: ScalerMinMax, Columns: columns, Min: offset, Scale: scale})
}

func newScaler(s scalerSpec) (*Scaler, error) {
	kind := strings.ToLower(s.Type)
	switch kind {
	case "", ScalerStandard, "standardscaler":
		kind = ScalerStandard
	case ScalerMinMax, "minmaxscaler":
		kind = ScalerMinMax
	default:
		return nil, fmt.Errorf("unsupported scaler type: %q", s.Type)
	}

	columns := s.Columns
	if len(columns) == 0 {
		columns = feature.NumericColumns()
	}

	offset := s.Mean
	if kind == ScalerMinMax {
		offset = s.Min
	}
	if len(offset) != len(columns) || len(s.Scale) != len(columns) {
		return nil, fmt.Errorf("scaler has %d columns, %d offsets and %d scales",
			len(columns), len(offset), len(s.Scale))
	}
	for i, v := range s.Scale {
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("scaler column %s has invalid scale %v", columns[i], v)
		}
		if math.IsNaN(offset[i]) || math.IsInf(offset[i], 0) {
			return nil, fmt.Errorf("scaler column %s has invalid offset %v", columns[i], offset[i])
		}
	}

	return &Scaler{
		kind:    kind,
		columns: slices.Clone(columns),
		offset:  slices.Clone(offset),
		scale:   slices.Clone(s.Scale),
	}, nil
}

// Kind returns the scaler type.
func (s *Scaler) Kind() string {
	return s.kind
}

// Columns returns the columns the scaler was fit on, in fit order.
func (s *Scaler) Columns() []string {
	return slices.Clone(s.columns)
}

// Transform scales x, which holds the values of Columns in order.
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.columns) {
		return nil, fmt.Errorf("scaler expects %d values, got %d", len(s.columns), len(x))
	}
	out := make([]float64, len(x))
	switch s.kind {
	case ScalerMinMax:
		floats.MulTo(out, x, s.scale)
		floats.Add(out, s.offset)
	default:
		floats.SubTo(out, x, s.offset)
		floats.Div(out, s.scale)
	}
	return out, nil
}
