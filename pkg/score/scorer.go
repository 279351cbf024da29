package score

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/mchmarny/examscore/pkg/feature"
)

const (
	MinScore = 0.0
	MaxScore = 100.0

	LabelLinear = "Linear Regression"
)

// Scaler transforms the values of its fit columns.
type Scaler interface {
	Columns() []string
	Transform(x []float64) ([]float64, error)
}

// Expansion maps a full row to an expanded feature vector.
type Expansion interface {
	Transform(x []float64) ([]float64, error)
	Degree() int
}

// Predictor maps a feature vector to a single value.
type Predictor interface {
	Predict(x []float64) (float64, error)
}

// Result is the outcome of scoring one row.
type Result struct {
	Score    float64     `json:"score" yaml:"score"`
	Raw      float64     `json:"raw" yaml:"raw"`
	Clipped  bool        `json:"clipped" yaml:"clipped"`
	Model    string      `json:"model" yaml:"model"`
	Features feature.Row `json:"features" yaml:"features"`
}

// Scorer applies the fitted transforms and the model to aligned rows.
// It holds no per-request state and is safe for concurrent use.
type Scorer struct {
	scaler Scaler
	poly   Expansion
	model  Predictor
}

// New returns a scorer. poly may be nil, in which case rows go to the
// model unexpanded.
func New(scaler Scaler, poly Expansion, model Predictor) (*Scorer, error) {
	if scaler == nil {
		return nil, errors.New("scaler required")
	}
	if model == nil {
		return nil, errors.New("model required")
	}
	return &Scorer{scaler: scaler, poly: poly, model: model}, nil
}

// PolyLabel names the polynomial model variant of the given degree.
func PolyLabel(degree int) string {
	return fmt.Sprintf("Polynomial (Degree %d)", degree)
}

// ModelLabel names the model variant this scorer runs.
func (s *Scorer) ModelLabel() string {
	if s.poly != nil {
		return PolyLabel(s.poly.Degree())
	}
	return LabelLinear
}

// UsePoly reports whether rows are expanded before prediction.
func (s *Scorer) UsePoly() bool {
	return s.poly != nil
}

// Scale returns a copy of row with the scaler columns replaced by their
// scaled values. All other columns are left untouched.
func (s *Scorer) Scale(row feature.Row) (feature.Row, error) {
	cols := s.scaler.Columns()
	in := make([]float64, len(cols))
	for i, c := range cols {
		v, ok := row.Get(c)
		if !ok {
			return feature.Row{}, &feature.SchemaMismatchError{Column: c, Reason: "scaled column not in row"}
		}
		in[i] = v
	}

	out, err := s.scaler.Transform(in)
	if err != nil {
		return feature.Row{}, fmt.Errorf("scaling: %w", err)
	}
	if len(out) != len(cols) {
		return feature.Row{}, fmt.Errorf("scaling: got %d values for %d columns", len(out), len(cols))
	}

	columns := row.Columns()
	values := row.Values()
	for i, c := range cols {
		values[slices.Index(columns, c)] = out[i]
	}
	return feature.NewRow(columns, values), nil
}

// Score scales row, expands it when a polynomial transform is present,
// predicts and clips the prediction to [MinScore, MaxScore].
func (s *Scorer) Score(row feature.Row) (*Result, error) {
	scaled, err := s.Scale(row)
	if err != nil {
		return nil, err
	}

	x := scaled.Values()
	if s.poly != nil {
		if x, err = s.poly.Transform(x); err != nil {
			return nil, fmt.Errorf("expanding features: %w", err)
		}
	}

	y, err := s.model.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("predicting: %w", err)
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return nil, fmt.Errorf("predicting: model returned non-finite value %v", y)
	}

	clipped := Clip(y)
	return &Result{
		Score:    clipped,
		Raw:      y,
		Clipped:  clipped != y,
		Model:    s.ModelLabel(),
		Features: scaled,
	}, nil
}

// Clip bounds v to the score range.
func Clip(v float64) float64 {
	return math.Max(MinScore, math.Min(MaxScore, v))
}
