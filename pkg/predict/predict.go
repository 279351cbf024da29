package predict

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/mchmarny/examscore/pkg/artifact"
	"github.com/mchmarny/examscore/pkg/feature"
	"github.com/mchmarny/examscore/pkg/metrics"
	"github.com/mchmarny/examscore/pkg/score"
	"github.com/mchmarny/examscore/pkg/student"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultWorkers = 4

	ReasonUnknownCategory = "unknown_category"
	ReasonOutOfRange      = "out_of_range"
	ReasonMissingField    = "missing_field"
	ReasonInvalidNumber   = "invalid_number"
	ReasonDuplicateField  = "duplicate_field"
	ReasonSchemaMismatch  = "schema_mismatch"
	ReasonInternal        = "internal"
)

// Prediction is the presenter-facing result of scoring one record.
type Prediction struct {
	Score    float64         `json:"score" yaml:"score"`
	Display  string          `json:"display" yaml:"display"`
	Model    string          `json:"model" yaml:"model"`
	Clipped  bool            `json:"clipped" yaml:"clipped"`
	Features []feature.Value `json:"features,omitempty" yaml:"features,omitempty"`
}

// Outcome is one entry of a batch run. Exactly one of Prediction and Err
// is set.
type Outcome struct {
	Index      int         `json:"index" yaml:"index"`
	Prediction *Prediction `json:"prediction,omitempty" yaml:"prediction,omitempty"`
	Reason     string      `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error      string      `json:"error,omitempty" yaml:"error,omitempty"`
	Err        error       `json:"-" yaml:"-"`
}

// Predictor runs the full pipeline over one immutable artifact set.
// It is safe for concurrent use.
type Predictor struct {
	arts    *artifact.Artifacts
	encoder *feature.Encoder
	scorer  *score.Scorer
}

// New wires an encoder and scorer over arts. The feature schema must be
// well formed and carry every scaled column.
func New(arts *artifact.Artifacts) (*Predictor, error) {
	if arts == nil {
		return nil, errors.New("artifacts required")
	}

	schema := arts.Columns()
	enc, err := feature.NewEncoder(schema)
	if err != nil {
		return nil, err
	}
	for _, c := range arts.Scaler().Columns() {
		if !slices.Contains(schema, c) {
			return nil, &feature.SchemaMismatchError{Column: c, Reason: "scaled column not in feature columns"}
		}
	}

	// a nil *Polynomial must not reach the scorer as a non-nil interface
	var exp score.Expansion
	if arts.UsePoly() {
		exp = arts.Poly()
	}
	sc, err := score.New(arts.Scaler(), exp, arts.Model())
	if err != nil {
		return nil, fmt.Errorf("building scorer: %w", err)
	}

	return &Predictor{arts: arts, encoder: enc, scorer: sc}, nil
}

// ModelLabel names the model variant in use.
func (p *Predictor) ModelLabel() string {
	return p.scorer.ModelLabel()
}

// Columns returns the training feature schema.
func (p *Predictor) Columns() []string {
	return p.encoder.Schema()
}

// Source describes where the artifacts were loaded from.
func (p *Predictor) Source() string {
	return p.arts.Source()
}

// Predict encodes, aligns and scores r.
func (p *Predictor) Predict(r student.Record) (*Prediction, error) {
	start := time.Now()

	row, err := p.encoder.Encode(r)
	if err != nil {
		metrics.ObserveFailure(Reason(err))
		return nil, err
	}

	res, err := p.scorer.Score(row)
	if err != nil {
		metrics.ObserveFailure(Reason(err))
		return nil, err
	}

	metrics.ObservePrediction(res.Model, time.Since(start), res.Clipped)
	if res.Clipped {
		slog.Debug("prediction clipped", "raw", res.Raw, "score", res.Score)
	}

	return &Prediction{
		Score:    res.Score,
		Display:  Format(res.Score),
		Model:    res.Model,
		Clipped:  res.Clipped,
		Features: res.Features.Entries(),
	}, nil
}

// PredictInput validates in and predicts it.
func (p *Predictor) PredictInput(in student.Input) (*Prediction, error) {
	r, err := student.New(in)
	if err != nil {
		metrics.ObserveFailure(Reason(err))
		return nil, err
	}
	return p.Predict(r)
}

// PredictBatch parses and scores raw field maps with at most workers
// running at once. Outcomes are returned in input order; a bad row is
// recorded on its outcome and does not stop the batch. The returned error
// is non-nil only when ctx is done before all rows were scored.
func (p *Predictor) PredictBatch(ctx context.Context, rows []map[string]string, workers int) ([]*Outcome, error) {
	if workers < 1 {
		workers = DefaultWorkers
	}

	out := make([]*Outcome, len(rows))
	var g errgroup.Group
	g.SetLimit(workers)

	for i, m := range rows {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = p.predictRow(i, m)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch canceled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch canceled: %w", err)
	}
	return out, nil
}

// PredictMap parses raw field values keyed by field or column name and
// predicts the resulting record.
func (p *Predictor) PredictMap(m map[string]string) (*Prediction, error) {
	r, err := student.FromMap(m)
	if err != nil {
		metrics.ObserveFailure(Reason(err))
		return nil, err
	}
	return p.Predict(r)
}

func (p *Predictor) predictRow(i int, m map[string]string) *Outcome {
	o := &Outcome{Index: i}

	res, err := p.PredictMap(m)
	if err != nil {
		o.Err = err
		o.Reason = Reason(err)
		o.Error = err.Error()
		slog.Debug("batch row rejected", "index", i, "reason", o.Reason, "error", err)
		return o
	}
	o.Prediction = res
	return o
}

// Format renders a score with two decimals.
func Format(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// Reason classifies err for metrics and API responses.
func Reason(err error) string {
	var (
		uce *student.UnknownCategoryError
		re  *student.RangeError
		mfe *student.MissingFieldError
		ne  *student.NumberError
		dfe *student.DuplicateFieldError
		sme *feature.SchemaMismatchError
	)
	switch {
	case errors.As(err, &mfe):
		return ReasonMissingField
	case errors.As(err, &ne):
		return ReasonInvalidNumber
	case errors.As(err, &dfe):
		return ReasonDuplicateField
	case errors.As(err, &uce):
		return ReasonUnknownCategory
	case errors.As(err, &re):
		return ReasonOutOfRange
	case errors.As(err, &sme):
		return ReasonSchemaMismatch
	default:
		return ReasonInternal
	}
}

// IsInputError reports whether err was caused by the caller's data rather
// than by the loaded artifacts.
func IsInputError(err error) bool {
	switch Reason(err) {
	case ReasonUnknownCategory, ReasonOutOfRange, ReasonMissingField, ReasonInvalidNumber, ReasonDuplicateField:
		return true
	}
	return false
}
