package student

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() Input {
	return Input{
		HoursStudied:              20,
		Attendance:                85,
		SleepHours:                7,
		PreviousScores:            75,
		TutoringSessions:          1,
		PhysicalActivity:          3,
		MotivationLevel:           "Medium",
		ParentalInvolvement:       "Medium",
		AccessToResources:         "Medium",
		FamilyIncome:              "Medium",
		TeacherQuality:            "Medium",
		DistanceFromHome:          "Moderate",
		PeerInfluence:             "Neutral",
		ParentalEducationLevel:    "College",
		Gender:                    "Male",
		SchoolType:                "Public",
		InternetAccess:            "Yes",
		ExtracurricularActivities: "Yes",
		LearningDisabilities:      "No",
	}
}

func TestNew_Valid(t *testing.T) {
	r, err := New(validInput())
	require.NoError(t, err)
	assert.Equal(t, 20, r.HoursStudied)
	assert.Equal(t, Medium, r.MotivationLevel)
	assert.Equal(t, Moderate, r.DistanceFromHome)
	assert.Equal(t, Neutral, r.PeerInfluence)
	assert.Equal(t, College, r.ParentalEducationLevel)
	assert.Equal(t, Male, r.Gender)
	assert.Equal(t, Public, r.SchoolType)
	assert.Equal(t, Yes, r.InternetAccess)
	assert.Equal(t, No, r.LearningDisabilities)
}

func TestNew_NormalizesLabels(t *testing.T) {
	in := validInput()
	in.ParentalEducationLevel = "  high school "
	in.Gender = "FEMALE"
	r, err := New(in)
	require.NoError(t, err)
	assert.Equal(t, HighSchool, r.ParentalEducationLevel)
	assert.Equal(t, Female, r.Gender)
}

func TestNew_UnknownCategory(t *testing.T) {
	in := validInput()
	in.PeerInfluence = "Hostile"
	_, err := New(in)
	require.Error(t, err)

	var uce *UnknownCategoryError
	require.ErrorAs(t, err, &uce)
	assert.Equal(t, FieldPeerInfluence, uce.Field)
	assert.Equal(t, "Hostile", uce.Value)
	assert.Equal(t, []string{"Negative", "Neutral", "Positive"}, uce.Levels)
}

func TestNew_EmptyCategory(t *testing.T) {
	in := validInput()
	in.SchoolType = ""
	_, err := New(in)
	var uce *UnknownCategoryError
	assert.ErrorAs(t, err, &uce)
}

func TestNew_Range(t *testing.T) {
	tests := []struct {
		name  string
		field string
		mod   func(*Input)
	}{
		{"hours above", FieldHoursStudied, func(in *Input) { in.HoursStudied = 51 }},
		{"hours below", FieldHoursStudied, func(in *Input) { in.HoursStudied = -1 }},
		{"attendance above", FieldAttendance, func(in *Input) { in.Attendance = 101 }},
		{"sleep above", FieldSleepHours, func(in *Input) { in.SleepHours = 13 }},
		{"previous above", FieldPreviousScores, func(in *Input) { in.PreviousScores = 200 }},
		{"tutoring above", FieldTutoringSessions, func(in *Input) { in.TutoringSessions = 11 }},
		{"activity below", FieldPhysicalActivity, func(in *Input) { in.PhysicalActivity = -3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mod(&in)
			_, err := New(in)
			var re *RangeError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.field, re.Field)
		})
	}
}

func TestNew_Bounds(t *testing.T) {
	in := validInput()
	in.HoursStudied = 50
	in.Attendance = 0
	in.SleepHours = 12
	in.PreviousScores = 100
	in.TutoringSessions = 0
	in.PhysicalActivity = 10
	_, err := New(in)
	assert.NoError(t, err)
}

func TestNew_ReportsAllErrors(t *testing.T) {
	in := validInput()
	in.HoursStudied = 99
	in.Gender = "Other"
	_, err := New(in)
	require.Error(t, err)

	var re *RangeError
	var uce *UnknownCategoryError
	assert.ErrorAs(t, err, &re)
	assert.ErrorAs(t, err, &uce)
}

func TestDefaultInput(t *testing.T) {
	in := DefaultInput()
	assert.Equal(t, 20, in.HoursStudied)
	assert.Equal(t, 85, in.Attendance)
	assert.Equal(t, "Near", in.DistanceFromHome)
	assert.Equal(t, "High School", in.ParentalEducationLevel)

	_, err := New(in)
	assert.NoError(t, err)
}

func TestFromMap(t *testing.T) {
	m := map[string]string{
		"Hours_Studied":              "20",
		"attendance":                 "85",
		"SLEEP_HOURS":                "7.0",
		"previous_scores":            "75",
		"tutoring_sessions":          "1",
		"physical_activity":          "3",
		"motivation_level":           "medium",
		"parental_involvement":       "Medium",
		"access_to_resources":        "Medium",
		"family_income":              "Medium",
		"teacher_quality":            "Medium",
		"Distance_from_Home":         "Moderate",
		"peer_influence":             "Neutral",
		"parental_education_level":   "College",
		"gender":                     "Male",
		"school_type":                "Public",
		"internet_access":            "Yes",
		"extracurricular_activities": "Yes",
		"learning_disabilities":      "No",
		"Exam_Score":                 "67",
	}
	r, err := FromMap(m)
	require.NoError(t, err)

	want, err := New(validInput())
	require.NoError(t, err)
	assert.Equal(t, want, r)
}

func TestFromMap_Missing(t *testing.T) {
	_, err := FromMap(map[string]string{"hours_studied": "10"})
	require.Error(t, err)

	var mfe *MissingFieldError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, FieldAttendance, mfe.Field)
}

func TestFromMap_DuplicateField(t *testing.T) {
	m := recordMap(t)
	m["Gender"] = "Female"

	for range 50 {
		_, err := FromMap(m)
		var dfe *DuplicateFieldError
		require.ErrorAs(t, err, &dfe)
		assert.Equal(t, FieldGender, dfe.Field)
		assert.Equal(t, []string{"Gender", "gender"}, dfe.Keys)
	}
	assert.Equal(t, "gender: supplied more than once as [Gender, gender]",
		(&DuplicateFieldError{Field: "gender", Keys: []string{"Gender", "gender"}}).Error())
}

func TestFromMap_BadNumber(t *testing.T) {
	m := recordMap(t)
	m["sleep_hours"] = "7.5"
	_, err := FromMap(m)
	var ne *NumberError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, FieldSleepHours, ne.Field)

	m["sleep_hours"] = "abc"
	_, err = FromMap(m)
	assert.Error(t, err)
}

func TestRecord_InputRoundTrip(t *testing.T) {
	r, err := New(validInput())
	require.NoError(t, err)
	assert.Equal(t, validInput(), r.Input())
}

func TestLookup(t *testing.T) {
	f, ok := Lookup("Distance_from_Home")
	require.True(t, ok)
	assert.Equal(t, FieldDistanceFromHome, f.Name)
	assert.Equal(t, Ordinal, f.Kind)

	_, ok = Lookup("shoe_size")
	assert.False(t, ok)
}

func TestFields(t *testing.T) {
	list := Fields()
	require.Len(t, list, 19)

	counts := map[Kind]int{}
	for _, f := range list {
		counts[f.Kind]++
	}
	assert.Equal(t, 6, counts[Numeric])
	assert.Equal(t, 8, counts[Ordinal])
	assert.Equal(t, 5, counts[Nominal])

	// returned copies must not alias the package table
	list[0].Name = "changed"
	list[6].Levels[0] = "changed"
	assert.Equal(t, FieldHoursStudied, Fields()[0].Name)
	assert.Equal(t, "Low", Fields()[6].Levels[0])
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "numeric", Numeric.String())
	assert.Equal(t, "nominal", Nominal.String())
	assert.Equal(t, "kind(9)", Kind(9).String())

	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("Ordinal")))
	assert.Equal(t, Ordinal, k)
	assert.Error(t, k.UnmarshalText([]byte("kind(9)")))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, `gender: unknown category "X", expected one of [Male, Female]`,
		(&UnknownCategoryError{Field: "gender", Value: "X", Levels: []string{"Male", "Female"}}).Error())
	assert.Equal(t, "attendance: value 101 out of range [0, 100]",
		(&RangeError{Field: "attendance", Value: 101, Min: 0, Max: 100}).Error())
	assert.True(t, errors.As(error(&MissingFieldError{Field: "x"}), new(*MissingFieldError)))
}

func recordMap(t *testing.T) map[string]string {
	t.Helper()
	return map[string]string{
		"hours_studied": "20", "attendance": "85", "sleep_hours": "7", "previous_scores": "75",
		"tutoring_sessions": "1", "physical_activity": "3", "motivation_level": "Medium",
		"parental_involvement": "Medium", "access_to_resources": "Medium", "family_income": "Medium",
		"teacher_quality": "Medium", "distance_from_home": "Moderate", "peer_influence": "Neutral",
		"parental_education_level": "College", "gender": "Male", "school_type": "Public",
		"internet_access": "Yes", "extracurricular_activities": "Yes", "learning_disabilities": "No",
	}
}
