package feature

import (
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/mchmarny/examscore/pkg/student"
)

// Encoder turns validated records into rows aligned to a training schema.
// It is immutable and safe for concurrent use.
type Encoder struct {
	schema []string
}

// NewEncoder returns an encoder for the given training schema.
func NewEncoder(schema []string) (*Encoder, error) {
	if err := ValidateSchema(schema); err != nil {
		return nil, err
	}
	return &Encoder{schema: slices.Clone(schema)}, nil
}

// Schema returns a copy of the training schema.
func (e *Encoder) Schema() []string {
	return slices.Clone(e.schema)
}

// Encode encodes the record and aligns it to the schema.
func (e *Encoder) Encode(r student.Record) (Row, error) {
	row, err := Encode(r)
	if err != nil {
		return Row{}, err
	}
	return align(row, e.schema), nil
}

type labeled struct {
	column string
	label  string
}

// NumericColumns lists the numeric columns in record order. These are the
// columns the scaler is fit on.
func NumericColumns() []string {
	var list []string
	for _, f := range student.Fields() {
		if f.Kind == student.Numeric {
			list = append(list, f.Column)
		}
	}
	return list
}

// IndicatorColumn returns the single drop-first indicator column name for a
// nominal column, e.g. "Gender" -> "Gender_Male", and the baseline level
// that is encoded as all zeros.
func IndicatorColumn(column string) (indicator, baseline string, ok bool) {
	f, found := student.Lookup(column)
	if !found || f.Kind != student.Nominal || len(f.Levels) != 2 {
		return "", "", false
	}
	sorted := slices.Clone(f.Levels)
	sort.Strings(sorted)
	return f.Column + "_" + sorted[1], sorted[0], true
}

// IndicatorColumns lists the indicator columns the nominal fields expand to.
func IndicatorColumns() []string {
	var list []string
	for _, f := range student.Fields() {
		if ind, _, ok := IndicatorColumn(f.Column); ok {
			list = append(list, ind)
		}
	}
	return list
}

// Encode produces the unaligned row: numeric fields verbatim, ordinal
// fields as codes and one 0/1 indicator per nominal field.
func Encode(r student.Record) (Row, error) {
	var row Row

	row.add("Hours_Studied", float64(r.HoursStudied))
	row.add("Attendance", float64(r.Attendance))
	row.add("Sleep_Hours", float64(r.SleepHours))
	row.add("Previous_Scores", float64(r.PreviousScores))
	row.add("Tutoring_Sessions", float64(r.TutoringSessions))
	row.add("Physical_Activity", float64(r.PhysicalActivity))

	ordinals := []labeled{
		{"Motivation_Level", string(r.MotivationLevel)},
		{"Parental_Involvement", string(r.ParentalInvolvement)},
		{"Access_to_Resources", string(r.AccessToResources)},
		{"Family_Income", string(r.FamilyIncome)},
		{"Teacher_Quality", string(r.TeacherQuality)},
		{"Distance_from_Home", string(r.DistanceFromHome)},
		{"Peer_Influence", string(r.PeerInfluence)},
		{"Parental_Education_Level", string(r.ParentalEducationLevel)},
	}
	for _, o := range ordinals {
		code, err := OrdinalCode(o.column, o.label)
		if err != nil {
			return Row{}, err
		}
		row.add(o.column, float64(code))
	}

	nominals := []labeled{
		{"School_Type", string(r.SchoolType)},
		{"Gender", string(r.Gender)},
		{"Internet_Access", string(r.InternetAccess)},
		{"Extracurricular_Activities", string(r.ExtracurricularActivities)},
		{"Learning_Disabilities", string(r.LearningDisabilities)},
	}
	for _, n := range nominals {
		v, err := indicator(n.column, n.label)
		if err != nil {
			return Row{}, err
		}
		ind, _, _ := IndicatorColumn(n.column)
		row.add(ind, v)
	}

	return row, nil
}

func indicator(column, label string) (float64, error) {
	f, _ := student.Lookup(column)
	ind, baseline, _ := IndicatorColumn(column)
	switch label {
	case baseline:
		return 0, nil
	case strings.TrimPrefix(ind, f.Column+"_"):
		return 1, nil
	}
	return 0, &student.UnknownCategoryError{Field: f.Name, Value: label, Levels: f.Levels}
}

// ValidateSchema checks that schema is a usable column list: non-empty,
// no blank names, no duplicates.
func ValidateSchema(schema []string) error {
	if len(schema) == 0 {
		return &SchemaMismatchError{Reason: "schema has no columns"}
	}
	seen := make(map[string]struct{}, len(schema))
	for _, c := range schema {
		if strings.TrimSpace(c) == "" {
			return &SchemaMismatchError{Column: c, Reason: "blank column name"}
		}
		if _, ok := seen[c]; ok {
			return &SchemaMismatchError{Column: c, Reason: "duplicate column"}
		}
		seen[c] = struct{}{}
	}
	return nil
}

// Align reconciles row with schema: columns missing from the row are
// inserted as 0, columns not in the schema are dropped and the result is
// in schema order.
func Align(row Row, schema []string) (Row, error) {
	if err := ValidateSchema(schema); err != nil {
		return Row{}, err
	}
	return align(row, schema), nil
}

func align(row Row, schema []string) Row {
	index := make(map[string]float64, row.Len())
	for i, c := range row.columns {
		index[c] = row.values[i]
	}

	out := Row{
		columns: slices.Clone(schema),
		values:  make([]float64, len(schema)),
	}
	for i, c := range schema {
		v, ok := index[c]
		if !ok {
			slog.Debug("column missing from encoded row, using 0", "column", c)
			continue
		}
		out.values[i] = v
		delete(index, c)
	}
	for c := range index {
		slog.Debug("column not in schema, dropped", "column", c)
	}
	return out
}
