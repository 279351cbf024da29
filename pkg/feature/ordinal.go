package feature

import (
	"github.com/mchmarny/examscore/pkg/student"
)

// OrdinalVersion identifies the ordinal code table. Models are trained
// against one table; changing any code requires a new version and a new
// model.
const OrdinalVersion = "1"

var (
	lowMediumHigh = map[string]int{"Low": 0, "Medium": 1, "High": 2}

	// keyed by training column name
	ordinalCodes = map[string]map[string]int{
		"Parental_Involvement":     lowMediumHigh,
		"Access_to_Resources":      lowMediumHigh,
		"Family_Income":            lowMediumHigh,
		"Teacher_Quality":          lowMediumHigh,
		"Motivation_Level":         lowMediumHigh,
		"Distance_from_Home":       {"Far": 0, "Moderate": 1, "Near": 2},
		"Peer_Influence":           {"Negative": -1, "Neutral": 0, "Positive": 1},
		"Parental_Education_Level": {"High School": 0, "College": 1, "Postgraduate": 2},
	}
)

// OrdinalCode returns the integer code for label in the given ordinal
// column.
func OrdinalCode(column, label string) (int, error) {
	codes, ok := ordinalCodes[column]
	if !ok {
		return 0, &student.UnknownCategoryError{Field: column, Value: label}
	}
	code, ok := codes[label]
	if !ok {
		f, _ := student.Lookup(column)
		return 0, &student.UnknownCategoryError{Field: f.Name, Value: label, Levels: f.Levels}
	}
	return code, nil
}

// OrdinalColumns lists the ordinal columns in record order.
func OrdinalColumns() []string {
	var list []string
	for _, f := range student.Fields() {
		if f.Kind == student.Ordinal {
			list = append(list, f.Column)
		}
	}
	return list
}
