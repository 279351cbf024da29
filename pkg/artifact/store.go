package artifact

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/mchmarny/examscore/pkg/feature"
	"github.com/mchmarny/examscore/pkg/metrics"
)

// Artifact names, without extension.
const (
	NameScaler         = "scaler"
	NameFeatureColumns = "feature_columns"
	NameModel          = "best_model"
	NamePoly           = "poly_features"
)

// Artifacts is the immutable set of fitted objects a prediction needs.
// It is safe for concurrent use.
type Artifacts struct {
	scaler  *Scaler
	columns []string
	model   *LinearModel
	poly    *Polynomial
	source  string
}

// Scaler returns the numeric column scaler.
func (a *Artifacts) Scaler() *Scaler {
	return a.scaler
}

// Columns returns a copy of the training feature columns.
func (a *Artifacts) Columns() []string {
	return slices.Clone(a.columns)
}

// Model returns the regressor.
func (a *Artifacts) Model() *LinearModel {
	return a.model
}

// Poly returns the polynomial expansion, or nil when none was exported.
func (a *Artifacts) Poly() *Polynomial {
	return a.poly
}

// UsePoly reports whether the polynomial expansion is part of the pipeline.
func (a *Artifacts) UsePoly() bool {
	return a.poly != nil
}

// Source describes where the artifacts were loaded from.
func (a *Artifacts) Source() string {
	return a.source
}

// Load reads and validates all artifacts from src. The polynomial
// expansion is optional; the other three are required.
func Load(src Source) (*Artifacts, error) {
	if src == nil {
		return nil, &LoadError{Artifact: "*", Source: "<nil>", Err: errors.New("source required")}
	}
	label := src.String()
	fail := func(name string, err error) error {
		return &LoadError{Artifact: name, Source: label, Err: err}
	}

	var columns []string
	if err := read(src, NameFeatureColumns, &columns); err != nil {
		return nil, fail(NameFeatureColumns, err)
	}

	var ss scalerSpec
	if err := read(src, NameScaler, &ss); err != nil {
		return nil, fail(NameScaler, err)
	}
	scaler, err := newScaler(ss)
	if err != nil {
		return nil, fail(NameScaler, err)
	}

	var ms modelSpec
	if err := read(src, NameModel, &ms); err != nil {
		return nil, fail(NameModel, err)
	}
	model, err := newLinearModel(ms)
	if err != nil {
		return nil, fail(NameModel, err)
	}
	if v := model.EncodingVersion(); v != "" && v != feature.OrdinalVersion {
		return nil, fail(NameModel, fmt.Errorf("model encoding version %s, encoder version %s", v, feature.OrdinalVersion))
	}

	var poly *Polynomial
	var ps polySpec
	err = read(src, NamePoly, &ps)
	switch {
	case errors.Is(err, ErrNotFound):
		slog.Debug("no polynomial artifact, using linear features", "source", label)
	case err != nil:
		return nil, fail(NamePoly, err)
	default:
		if poly, err = newPolynomial(ps, len(columns)); err != nil {
			return nil, fail(NamePoly, err)
		}
		if poly.NumInputs() != len(columns) {
			return nil, fail(NamePoly, fmt.Errorf("polynomial expects %d features, schema has %d",
				poly.NumInputs(), len(columns)))
		}
	}

	width := len(columns)
	if poly != nil {
		width = poly.NumOutputs()
	}
	if model.NumFeatures() != width {
		return nil, fail(NameModel, fmt.Errorf("model has %d coefficients, pipeline produces %d features",
			model.NumFeatures(), width))
	}

	slog.Debug("artifacts loaded",
		"source", label,
		"columns", len(columns),
		"scaler", scaler.Kind(),
		"poly", poly != nil,
	)

	return &Artifacts{
		scaler:  scaler,
		columns: slices.Clone(columns),
		model:   model,
		poly:    poly,
		source:  label,
	}, nil
}

func read(src Source, name string, v any) error {
	b, f, err := src.Read(name)
	if err != nil {
		return err
	}
	return decode(b, f, v)
}

// Store loads artifacts from its source at most once and caches the
// outcome, including a failure, for the lifetime of the process.
type Store struct {
	src  Source
	once sync.Once
	arts *Artifacts
	err  error
}

// NewStore returns a store over src. Nothing is read until Load.
func NewStore(src Source) *Store {
	return &Store{src: src}
}

// Load returns the cached artifacts, loading them on first call.
// Concurrent first calls block until the single load completes. A failure
// is returned, not logged; callers report it.
func (s *Store) Load() (*Artifacts, error) {
	s.once.Do(func() {
		start := time.Now()
		s.arts, s.err = Load(s.src)
		metrics.ObserveArtifactLoad(time.Since(start), s.err)
	})
	return s.arts, s.err
}
