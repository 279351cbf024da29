package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/mchmarny/examscore/pkg/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	linearDir = "testdata/linear"
	polyDir   = "testdata/poly"
)

func minimalFS() fstest.MapFS {
	return fstest.MapFS{
		"feature_columns.json": {Data: []byte(`["Hours_Studied","Attendance","Sleep_Hours","Previous_Scores","Tutoring_Sessions","Physical_Activity","Gender_Male"]`)},
		"scaler.json":          {Data: []byte(`{"mean":[0,0,0,0,0,0],"scale":[1,1,1,1,1,1]}`)},
		"best_model.json":      {Data: []byte(`{"coef":[1,1,1,1,1,1,1],"intercept":0}`)},
	}
}

func TestLoad_Linear(t *testing.T) {
	a, err := Load(NewDirSource(linearDir))
	require.NoError(t, err)
	assert.False(t, a.UsePoly())
	assert.Nil(t, a.Poly())
	assert.Len(t, a.Columns(), 19)
	assert.Equal(t, "Hours_Studied", a.Columns()[0])
	assert.Equal(t, ScalerStandard, a.Scaler().Kind())
	assert.Equal(t, feature.NumericColumns(), a.Scaler().Columns())
	assert.Equal(t, 19, a.Model().NumFeatures())
	assert.Equal(t, "1", a.Model().EncodingVersion())
	assert.Equal(t, linearDir, a.Source())
}

func TestLoad_Poly(t *testing.T) {
	a, err := Load(NewDirSource(polyDir))
	require.NoError(t, err)
	require.True(t, a.UsePoly())
	assert.Equal(t, 2, a.Poly().Degree())
	assert.Equal(t, 19, a.Poly().NumInputs())
	assert.Equal(t, 210, a.Poly().NumOutputs())
	assert.Equal(t, 210, a.Model().NumFeatures())
	assert.Equal(t, "ridge", a.Model().Kind())
}

func TestLoad_ColumnsAreCopied(t *testing.T) {
	a, err := Load(NewDirSource(linearDir))
	require.NoError(t, err)
	cols := a.Columns()
	cols[0] = "changed"
	assert.Equal(t, "Hours_Studied", a.Columns()[0])
}

func TestLoad_YAML(t *testing.T) {
	fsys := fstest.MapFS{
		"feature_columns.yaml": {Data: []byte("- Attendance\n- Sleep_Hours\n")},
		"scaler.yml":           {Data: []byte("type: minmax\ncolumns: [Attendance, Sleep_Hours]\nmin: [0, 0]\nscale: [0.01, 0.0833]\n")},
		"best_model.yaml":      {Data: []byte("type: LinearRegression\ncoef: [2, 3]\nintercept: 1.5\n")},
	}
	a, err := Load(NewFSSource(fsys, "mem"))
	require.NoError(t, err)
	assert.Equal(t, ScalerMinMax, a.Scaler().Kind())
	assert.Equal(t, []string{"Attendance", "Sleep_Hours"}, a.Columns())
	assert.Equal(t, "linear", a.Model().Kind())
}

func TestLoad_MissingRequired(t *testing.T) {
	for _, name := range []string{NameScaler, NameFeatureColumns, NameModel} {
		t.Run(name, func(t *testing.T) {
			fsys := minimalFS()
			delete(fsys, name+".json")

			_, err := Load(NewFSSource(fsys, "mem"))
			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, name, le.Artifact)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLoad_Corrupt(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		data     string
		artifact string
	}{
		{"columns not json", "feature_columns.json", "{nope", NameFeatureColumns},
		{"columns not a list", "feature_columns.json", `{"a":1}`, NameFeatureColumns},
		{"scaler zero scale", "scaler.json", `{"mean":[0,0,0,0,0,0],"scale":[1,1,0,1,1,1]}`, NameScaler},
		{"scaler short", "scaler.json", `{"mean":[0],"scale":[1]}`, NameScaler},
		{"scaler unknown type", "scaler.json", `{"type":"robust","mean":[0,0,0,0,0,0],"scale":[1,1,1,1,1,1]}`, NameScaler},
		{"model empty", "best_model.json", `{"coef":[]}`, NameModel},
		{"model unknown type", "best_model.json", `{"type":"forest","coef":[1,1,1,1,1,1,1]}`, NameModel},
		{"model width", "best_model.json", `{"coef":[1,2,3]}`, NameModel},
		{"model unknown key", "best_model.json", `{"coef":[0,0,0,0,0,0],"intercep":55}`, NameModel},
		{"model trailing data", "best_model.json", `{"coef":[1,1,1,1,1,1,1]} {"coef":[2]}`, NameModel},
		{"scaler unknown key", "scaler.json", `{"mean":[0,0,0,0,0,0],"scales":[1,1,1,1,1,1]}`, NameScaler},
		{"poly yaml unknown key", "poly_features.yaml", "degree: 2\nbias: false\n", NamePoly},
		{"model encoding version", "best_model.json", `{"coef":[1,1,1,1,1,1,1],"encoding_version":"0"}`, NameModel},
		{"poly width", "poly_features.json", `{"degree":2,"n_features_in":3}`, NamePoly},
		{"poly bad degree", "poly_features.json", `{"degree":0}`, NamePoly},
		{"poly corrupt", "poly_features.json", `[`, NamePoly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := minimalFS()
			fsys[tt.file] = &fstest.MapFile{Data: []byte(tt.data)}

			_, err := Load(NewFSSource(fsys, "mem"))
			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.artifact, le.Artifact)
			assert.Contains(t, err.Error(), "loading artifact "+tt.artifact+" from mem")
		})
	}
}

func TestLoad_PolyModelMismatch(t *testing.T) {
	fsys := minimalFS()
	// bias + 7 linear + 28 quadratic = 36 outputs, model has 7
	fsys["poly_features.json"] = &fstest.MapFile{Data: []byte(`{"degree":2}`)}
	_, err := Load(NewFSSource(fsys, "mem"))
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, NameModel, le.Artifact)
}

func TestLoad_NilSource(t *testing.T) {
	_, err := Load(nil)
	var le *LoadError
	assert.ErrorAs(t, err, &le)
}

func TestLoad_MissingDir(t *testing.T) {
	_, err := Load(NewDirSource(t.TempDir() + "/nope"))
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.ErrorIs(t, err, ErrNotFound)
}

type countingSource struct {
	Source
	reads atomic.Int64
}

func (c *countingSource) Read(name string) ([]byte, Format, error) {
	c.reads.Add(1)
	return c.Source.Read(name)
}

func TestStore_LoadsOnce(t *testing.T) {
	src := &countingSource{Source: NewDirSource(linearDir)}
	store := NewStore(src)

	var wg sync.WaitGroup
	results := make([]*Artifacts, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := store.Load()
			assert.NoError(t, err)
			results[i] = a
		}(i)
	}
	wg.Wait()

	// columns, scaler, model and the absent poly artifact
	assert.Equal(t, int64(4), src.reads.Load())
	for _, a := range results {
		assert.Same(t, results[0], a)
	}

	again, err := store.Load()
	require.NoError(t, err)
	assert.Same(t, results[0], again)
	assert.Equal(t, int64(4), src.reads.Load())
}

func TestStore_CachesError(t *testing.T) {
	fsys := minimalFS()
	delete(fsys, "scaler.json")
	src := &countingSource{Source: NewFSSource(fsys, "mem")}
	store := NewStore(src)

	_, err1 := store.Load()
	_, err2 := store.Load()
	require.Error(t, err1)
	assert.Same(t, err1, err2)
	reads := src.reads.Load()

	_, _ = store.Load()
	assert.Equal(t, reads, src.reads.Load())
}

func TestStore_FailureNotLogged(t *testing.T) {
	defer slog.SetDefault(slog.Default())
	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))

	fsys := minimalFS()
	delete(fsys, "best_model.json")
	_, err := NewStore(NewFSSource(fsys, "mem")).Load()
	require.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestLoadError(t *testing.T) {
	cause := errors.New("boom")
	err := &LoadError{Artifact: NameScaler, Source: "dir", Err: cause}
	assert.Equal(t, "loading artifact scaler from dir: boom", err.Error())
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", err), cause)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{".json": FormatJSON, "JSON": FormatJSON, "yaml": FormatYAML, ".yml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("pkl")
	assert.Error(t, err)
}
