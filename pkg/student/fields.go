package student

import (
	"fmt"
	"strings"
)

// Kind classifies how a field is represented to the model.
type Kind int

const (
	Numeric Kind = iota
	Ordinal
	Nominal
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Ordinal:
		return "ordinal"
	case Nominal:
		return "nominal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	for _, c := range []Kind{Numeric, Ordinal, Nominal} {
		if strings.EqualFold(string(b), c.String()) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown field kind %q", b)
}

// Field describes one attribute of the record.
type Field struct {
	Name    string   `json:"name" yaml:"name"`
	Column  string   `json:"column" yaml:"column"`
	Usage   string   `json:"usage" yaml:"usage"`
	Kind    Kind     `json:"kind" yaml:"kind"`
	Min     int      `json:"min,omitempty" yaml:"min,omitempty"`
	Max     int      `json:"max,omitempty" yaml:"max,omitempty"`
	Levels  []string `json:"levels,omitempty" yaml:"levels,omitempty"`
	Default string   `json:"default" yaml:"default"`
}

const (
	FieldHoursStudied              = "hours_studied"
	FieldAttendance                = "attendance"
	FieldSleepHours                = "sleep_hours"
	FieldPreviousScores            = "previous_scores"
	FieldTutoringSessions          = "tutoring_sessions"
	FieldPhysicalActivity          = "physical_activity"
	FieldMotivationLevel           = "motivation_level"
	FieldParentalInvolvement       = "parental_involvement"
	FieldAccessToResources         = "access_to_resources"
	FieldFamilyIncome              = "family_income"
	FieldTeacherQuality            = "teacher_quality"
	FieldDistanceFromHome          = "distance_from_home"
	FieldPeerInfluence             = "peer_influence"
	FieldParentalEducationLevel    = "parental_education_level"
	FieldGender                    = "gender"
	FieldSchoolType                = "school_type"
	FieldInternetAccess            = "internet_access"
	FieldExtracurricularActivities = "extracurricular_activities"
	FieldLearningDisabilities      = "learning_disabilities"
)

var fields = []Field{
	{Name: FieldHoursStudied, Column: "Hours_Studied", Usage: "Hours studied per week", Kind: Numeric, Min: 0, Max: 50, Default: "20"},
	{Name: FieldAttendance, Column: "Attendance", Usage: "Attendance (%)", Kind: Numeric, Min: 0, Max: 100, Default: "85"},
	{Name: FieldSleepHours, Column: "Sleep_Hours", Usage: "Sleep hours per night", Kind: Numeric, Min: 0, Max: 12, Default: "7"},
	{Name: FieldPreviousScores, Column: "Previous_Scores", Usage: "Previous exam scores", Kind: Numeric, Min: 0, Max: 100, Default: "75"},
	{Name: FieldTutoringSessions, Column: "Tutoring_Sessions", Usage: "Tutoring sessions per month", Kind: Numeric, Min: 0, Max: 10, Default: "1"},
	{Name: FieldPhysicalActivity, Column: "Physical_Activity", Usage: "Physical activity (hrs/week)", Kind: Numeric, Min: 0, Max: 10, Default: "3"},
	{Name: FieldMotivationLevel, Column: "Motivation_Level", Usage: "Motivation level", Kind: Ordinal, Levels: labels(levels), Default: string(Low)},
	{Name: FieldParentalInvolvement, Column: "Parental_Involvement", Usage: "Parental involvement", Kind: Ordinal, Levels: labels(levels), Default: string(Low)},
	{Name: FieldAccessToResources, Column: "Access_to_Resources", Usage: "Access to resources", Kind: Ordinal, Levels: labels(levels), Default: string(Low)},
	{Name: FieldFamilyIncome, Column: "Family_Income", Usage: "Family income", Kind: Ordinal, Levels: labels(levels), Default: string(Low)},
	{Name: FieldTeacherQuality, Column: "Teacher_Quality", Usage: "Teacher quality", Kind: Ordinal, Levels: labels(levels), Default: string(Low)},
	{Name: FieldDistanceFromHome, Column: "Distance_from_Home", Usage: "Distance from home", Kind: Ordinal, Levels: labels(distances), Default: string(Near)},
	{Name: FieldPeerInfluence, Column: "Peer_Influence", Usage: "Peer influence", Kind: Ordinal, Levels: labels(peers), Default: string(Negative)},
	{Name: FieldParentalEducationLevel, Column: "Parental_Education_Level", Usage: "Parental education level", Kind: Ordinal, Levels: labels(educations), Default: string(HighSchool)},
	{Name: FieldGender, Column: "Gender", Usage: "Gender", Kind: Nominal, Levels: labels(genders), Default: string(Male)},
	{Name: FieldSchoolType, Column: "School_Type", Usage: "School type", Kind: Nominal, Levels: labels(schoolTypes), Default: string(Public)},
	{Name: FieldInternetAccess, Column: "Internet_Access", Usage: "Internet access", Kind: Nominal, Levels: labels(yesNos), Default: string(No)},
	{Name: FieldExtracurricularActivities, Column: "Extracurricular_Activities", Usage: "Extracurricular activities", Kind: Nominal, Levels: labels(yesNos), Default: string(No)},
	{Name: FieldLearningDisabilities, Column: "Learning_Disabilities", Usage: "Learning disabilities", Kind: Nominal, Levels: labels(yesNos), Default: string(No)},
}

// Fields returns the record fields in canonical order.
func Fields() []Field {
	list := make([]Field, len(fields))
	for i, f := range fields {
		f.Levels = append([]string(nil), f.Levels...)
		list[i] = f
	}
	return list
}

// Lookup finds a field by its snake_case name or its training column name,
// ignoring case.
func Lookup(name string) (Field, bool) {
	n := strings.TrimSpace(name)
	for _, f := range fields {
		if strings.EqualFold(n, f.Name) || strings.EqualFold(n, f.Column) {
			return f, true
		}
	}
	return Field{}, false
}

func field(name string) Field {
	f, ok := Lookup(name)
	if !ok {
		panic("student: unknown field " + name)
	}
	return f
}
