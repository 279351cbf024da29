package student

import "strings"

// Level is the three-level Low/Medium/High scale shared by the involvement,
// resources, income, teacher quality and motivation fields.
type Level string

const (
	Low    Level = "Low"
	Medium Level = "Medium"
	High   Level = "High"
)

// Distance is the distance-from-home category.
type Distance string

const (
	Near     Distance = "Near"
	Moderate Distance = "Moderate"
	Far      Distance = "Far"
)

// Peer is the peer influence category.
type Peer string

const (
	Negative Peer = "Negative"
	Neutral  Peer = "Neutral"
	Positive Peer = "Positive"
)

// Education is the highest parental education level.
type Education string

const (
	HighSchool   Education = "High School"
	College      Education = "College"
	Postgraduate Education = "Postgraduate"
)

// Gender is the student gender as recorded in the training data.
type Gender string

const (
	Male   Gender = "Male"
	Female Gender = "Female"
)

// SchoolType is public or private school.
type SchoolType string

const (
	Public  SchoolType = "Public"
	Private SchoolType = "Private"
)

// YesNo backs the binary internet, extracurricular and learning
// disability fields.
type YesNo string

const (
	No  YesNo = "No"
	Yes YesNo = "Yes"
)

var (
	levels      = []Level{Low, Medium, High}
	distances   = []Distance{Near, Moderate, Far}
	peers       = []Peer{Negative, Neutral, Positive}
	educations  = []Education{HighSchool, College, Postgraduate}
	genders     = []Gender{Male, Female}
	schoolTypes = []SchoolType{Public, Private}
	yesNos      = []YesNo{No, Yes}
)

// parseLabel matches s against the closed domain ignoring case and
// surrounding whitespace and returns the canonical label.
func parseLabel[T ~string](field, s string, domain []T) (T, error) {
	v := strings.TrimSpace(s)
	for _, d := range domain {
		if strings.EqualFold(v, string(d)) {
			return d, nil
		}
	}
	var zero T
	return zero, &UnknownCategoryError{Field: field, Value: s, Levels: labels(domain)}
}

func labels[T ~string](domain []T) []string {
	list := make([]string, len(domain))
	for i, d := range domain {
		list[i] = string(d)
	}
	return list
}
