package student

import (
	"errors"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Input holds raw, unvalidated field values as supplied by a presenter.
type Input struct {
	HoursStudied              int    `json:"hours_studied" yaml:"hours_studied"`
	Attendance                int    `json:"attendance" yaml:"attendance"`
	SleepHours                int    `json:"sleep_hours" yaml:"sleep_hours"`
	PreviousScores            int    `json:"previous_scores" yaml:"previous_scores"`
	TutoringSessions          int    `json:"tutoring_sessions" yaml:"tutoring_sessions"`
	PhysicalActivity          int    `json:"physical_activity" yaml:"physical_activity"`
	MotivationLevel           string `json:"motivation_level" yaml:"motivation_level"`
	ParentalInvolvement       string `json:"parental_involvement" yaml:"parental_involvement"`
	AccessToResources         string `json:"access_to_resources" yaml:"access_to_resources"`
	FamilyIncome              string `json:"family_income" yaml:"family_income"`
	TeacherQuality            string `json:"teacher_quality" yaml:"teacher_quality"`
	DistanceFromHome          string `json:"distance_from_home" yaml:"distance_from_home"`
	PeerInfluence             string `json:"peer_influence" yaml:"peer_influence"`
	ParentalEducationLevel    string `json:"parental_education_level" yaml:"parental_education_level"`
	Gender                    string `json:"gender" yaml:"gender"`
	SchoolType                string `json:"school_type" yaml:"school_type"`
	InternetAccess            string `json:"internet_access" yaml:"internet_access"`
	ExtracurricularActivities string `json:"extracurricular_activities" yaml:"extracurricular_activities"`
	LearningDisabilities      string `json:"learning_disabilities" yaml:"learning_disabilities"`
}

// Record is a validated student record. The only way to obtain a valid one
// is New or FromMap; it is passed by value and never modified.
type Record struct {
	HoursStudied              int        `json:"hours_studied" yaml:"hours_studied"`
	Attendance                int        `json:"attendance" yaml:"attendance"`
	SleepHours                int        `json:"sleep_hours" yaml:"sleep_hours"`
	PreviousScores            int        `json:"previous_scores" yaml:"previous_scores"`
	TutoringSessions          int        `json:"tutoring_sessions" yaml:"tutoring_sessions"`
	PhysicalActivity          int        `json:"physical_activity" yaml:"physical_activity"`
	MotivationLevel           Level      `json:"motivation_level" yaml:"motivation_level"`
	ParentalInvolvement       Level      `json:"parental_involvement" yaml:"parental_involvement"`
	AccessToResources         Level      `json:"access_to_resources" yaml:"access_to_resources"`
	FamilyIncome              Level      `json:"family_income" yaml:"family_income"`
	TeacherQuality            Level      `json:"teacher_quality" yaml:"teacher_quality"`
	DistanceFromHome          Distance   `json:"distance_from_home" yaml:"distance_from_home"`
	PeerInfluence             Peer       `json:"peer_influence" yaml:"peer_influence"`
	ParentalEducationLevel    Education  `json:"parental_education_level" yaml:"parental_education_level"`
	Gender                    Gender     `json:"gender" yaml:"gender"`
	SchoolType                SchoolType `json:"school_type" yaml:"school_type"`
	InternetAccess            YesNo      `json:"internet_access" yaml:"internet_access"`
	ExtracurricularActivities YesNo      `json:"extracurricular_activities" yaml:"extracurricular_activities"`
	LearningDisabilities      YesNo      `json:"learning_disabilities" yaml:"learning_disabilities"`
}

// DefaultInput returns the input pre-filled with each field's default.
func DefaultInput() Input {
	in := Input{}
	for _, f := range fields {
		// defaults are static and well formed
		_ = in.set(f, f.Default)
	}
	return in
}

// New validates in and returns the corresponding record. All problems are
// reported together, joined with errors.Join.
func New(in Input) (Record, error) {
	var (
		r    Record
		errs []error
	)

	check := func(name string, v int) int {
		f := field(name)
		if v < f.Min || v > f.Max {
			errs = append(errs, &RangeError{Field: name, Value: v, Min: f.Min, Max: f.Max})
		}
		return v
	}
	r.HoursStudied = check(FieldHoursStudied, in.HoursStudied)
	r.Attendance = check(FieldAttendance, in.Attendance)
	r.SleepHours = check(FieldSleepHours, in.SleepHours)
	r.PreviousScores = check(FieldPreviousScores, in.PreviousScores)
	r.TutoringSessions = check(FieldTutoringSessions, in.TutoringSessions)
	r.PhysicalActivity = check(FieldPhysicalActivity, in.PhysicalActivity)

	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	var err error
	r.MotivationLevel, err = parseLabel(FieldMotivationLevel, in.MotivationLevel, levels)
	collect(err)
	r.ParentalInvolvement, err = parseLabel(FieldParentalInvolvement, in.ParentalInvolvement, levels)
	collect(err)
	r.AccessToResources, err = parseLabel(FieldAccessToResources, in.AccessToResources, levels)
	collect(err)
	r.FamilyIncome, err = parseLabel(FieldFamilyIncome, in.FamilyIncome, levels)
	collect(err)
	r.TeacherQuality, err = parseLabel(FieldTeacherQuality, in.TeacherQuality, levels)
	collect(err)
	r.DistanceFromHome, err = parseLabel(FieldDistanceFromHome, in.DistanceFromHome, distances)
	collect(err)
	r.PeerInfluence, err = parseLabel(FieldPeerInfluence, in.PeerInfluence, peers)
	collect(err)
	r.ParentalEducationLevel, err = parseLabel(FieldParentalEducationLevel, in.ParentalEducationLevel, educations)
	collect(err)
	r.Gender, err = parseLabel(FieldGender, in.Gender, genders)
	collect(err)
	r.SchoolType, err = parseLabel(FieldSchoolType, in.SchoolType, schoolTypes)
	collect(err)
	r.InternetAccess, err = parseLabel(FieldInternetAccess, in.InternetAccess, yesNos)
	collect(err)
	r.ExtracurricularActivities, err = parseLabel(FieldExtracurricularActivities, in.ExtracurricularActivities, yesNos)
	collect(err)
	r.LearningDisabilities, err = parseLabel(FieldLearningDisabilities, in.LearningDisabilities, yesNos)
	collect(err)

	if len(errs) > 0 {
		return Record{}, errors.Join(errs...)
	}
	return r, nil
}

// FromMap builds a record from string values keyed by field name or
// training column name. Every field must be present exactly once; unknown
// keys are ignored.
func FromMap(m map[string]string) (Record, error) {
	byName := make(map[string]string, len(m))
	keys := make(map[string][]string, len(m))
	for k, v := range m {
		if f, ok := Lookup(k); ok {
			byName[f.Name] = v
			keys[f.Name] = append(keys[f.Name], k)
		}
	}

	var (
		in   Input
		errs []error
	)
	for _, f := range fields {
		if ks := keys[f.Name]; len(ks) > 1 {
			slices.Sort(ks)
			errs = append(errs, &DuplicateFieldError{Field: f.Name, Keys: ks})
			continue
		}
		v, ok := byName[f.Name]
		if !ok {
			errs = append(errs, &MissingFieldError{Field: f.Name})
			continue
		}
		if err := in.set(f, v); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return Record{}, errors.Join(errs...)
	}
	return New(in)
}

// Input returns the raw form of the record.
func (r Record) Input() Input {
	return Input{
		HoursStudied:              r.HoursStudied,
		Attendance:                r.Attendance,
		SleepHours:                r.SleepHours,
		PreviousScores:            r.PreviousScores,
		TutoringSessions:          r.TutoringSessions,
		PhysicalActivity:          r.PhysicalActivity,
		MotivationLevel:           string(r.MotivationLevel),
		ParentalInvolvement:       string(r.ParentalInvolvement),
		AccessToResources:         string(r.AccessToResources),
		FamilyIncome:              string(r.FamilyIncome),
		TeacherQuality:            string(r.TeacherQuality),
		DistanceFromHome:          string(r.DistanceFromHome),
		PeerInfluence:             string(r.PeerInfluence),
		ParentalEducationLevel:    string(r.ParentalEducationLevel),
		Gender:                    string(r.Gender),
		SchoolType:                string(r.SchoolType),
		InternetAccess:            string(r.InternetAccess),
		ExtracurricularActivities: string(r.ExtracurricularActivities),
		LearningDisabilities:      string(r.LearningDisabilities),
	}
}

func (in *Input) set(f Field, v string) error {
	if f.Kind == Numeric {
		n, ok := parseInt(v)
		if !ok {
			return &NumberError{Field: f.Name, Value: v}
		}
		*in.numeric(f.Name) = n
		return nil
	}
	*in.category(f.Name) = v
	return nil
}

func (in *Input) numeric(name string) *int {
	switch name {
	case FieldHoursStudied:
		return &in.HoursStudied
	case FieldAttendance:
		return &in.Attendance
	case FieldSleepHours:
		return &in.SleepHours
	case FieldPreviousScores:
		return &in.PreviousScores
	case FieldTutoringSessions:
		return &in.TutoringSessions
	case FieldPhysicalActivity:
		return &in.PhysicalActivity
	}
	panic("student: not a numeric field " + name)
}

func (in *Input) category(name string) *string {
	switch name {
	case FieldMotivationLevel:
		return &in.MotivationLevel
	case FieldParentalInvolvement:
		return &in.ParentalInvolvement
	case FieldAccessToResources:
		return &in.AccessToResources
	case FieldFamilyIncome:
		return &in.FamilyIncome
	case FieldTeacherQuality:
		return &in.TeacherQuality
	case FieldDistanceFromHome:
		return &in.DistanceFromHome
	case FieldPeerInfluence:
		return &in.PeerInfluence
	case FieldParentalEducationLevel:
		return &in.ParentalEducationLevel
	case FieldGender:
		return &in.Gender
	case FieldSchoolType:
		return &in.SchoolType
	case FieldInternetAccess:
		return &in.InternetAccess
	case FieldExtracurricularActivities:
		return &in.ExtracurricularActivities
	case FieldLearningDisabilities:
		return &in.LearningDisabilities
	}
	panic("student: not a categorical field " + name)
}

// parseInt accepts integers and integral decimals such as "7.0".
func parseInt(s string) (int, bool) {
	v := strings.TrimSpace(s)
	if n, err := strconv.Atoi(v); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.Abs(f) > math.MaxInt32 || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
