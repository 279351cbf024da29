package artifact

import (
	"fmt"
	"slices"
)

type polySpec struct {
	Degree          int     `json:"degree" yaml:"degree"`
	IncludeBias     *bool   `json:"include_bias" yaml:"include_bias"`
	InteractionOnly bool    `json:"interaction_only" yaml:"interaction_only"`
	NFeaturesIn     int     `json:"n_features_in" yaml:"n_features_in"`
	Powers          [][]int `json:"powers" yaml:"powers"`
}

// Polynomial expands a row into all monomials of its features up to a
// degree. Output column j is prod_i x[i]^powers[j][i], in the order sklearn's
// PolynomialFeatures emits them.
type Polynomial struct {
	degree int
	nIn    int
	powers [][]int
}

// NewPolynomial generates the expansion for nIn input features.
func NewPolynomial(nIn, degree int, interactionOnly, includeBias bool) (*Polynomial, error) {
	if nIn <= 0 {
		return nil, fmt.Errorf("polynomial needs at least one input feature, got %d", nIn)
	}
	if degree < 1 {
		return nil, fmt.Errorf("polynomial degree must be at least 1, got %d", degree)
	}
	return &Polynomial{
		degree: degree,
		nIn:    nIn,
		powers: generatePowers(nIn, degree, interactionOnly, includeBias),
	}, nil
}

func newPolynomial(s polySpec, width int) (*Polynomial, error) {
	nIn := s.NFeaturesIn
	if nIn == 0 {
		nIn = width
	}

	if len(s.Powers) == 0 {
		includeBias := true
		if s.IncludeBias != nil {
			includeBias = *s.IncludeBias
		}
		return NewPolynomial(nIn, s.Degree, s.InteractionOnly, includeBias)
	}

	degree := 0
	powers := make([][]int, len(s.Powers))
	for j, p := range s.Powers {
		if len(p) != nIn {
			return nil, fmt.Errorf("polynomial term %d has %d powers, expected %d", j, len(p), nIn)
		}
		sum := 0
		for _, e := range p {
			if e < 0 {
				return nil, fmt.Errorf("polynomial term %d has negative power", j)
			}
			sum += e
		}
		degree = max(degree, sum)
		powers[j] = slices.Clone(p)
	}
	if s.Degree != 0 && s.Degree != degree {
		return nil, fmt.Errorf("polynomial degree %d does not match powers (max %d)", s.Degree, degree)
	}
	return &Polynomial{degree: degree, nIn: nIn, powers: powers}, nil
}

// generatePowers enumerates terms by increasing degree, each degree as
// combinations (with replacement unless interactionOnly) of feature indexes
// in lexicographic order.
func generatePowers(n, degree int, interactionOnly, includeBias bool) [][]int {
	var out [][]int
	if includeBias {
		out = append(out, make([]int, n))
	}

	var walk func(start, left int, term []int)
	walk = func(start, left int, term []int) {
		if left == 0 {
			out = append(out, slices.Clone(term))
			return
		}
		for i := start; i < n; i++ {
			term[i]++
			next := i
			if interactionOnly {
				next = i + 1
			}
			walk(next, left-1, term)
			term[i]--
		}
	}
	for d := 1; d <= degree; d++ {
		walk(0, d, make([]int, n))
	}
	return out
}

// Degree returns the highest total power of any output term.
func (p *Polynomial) Degree() int {
	return p.degree
}

// NumInputs returns the expected input width.
func (p *Polynomial) NumInputs() int {
	return p.nIn
}

// NumOutputs returns the expanded width.
func (p *Polynomial) NumOutputs() int {
	return len(p.powers)
}

// Powers returns a copy of the exponent matrix, one row per output term.
func (p *Polynomial) Powers() [][]int {
	out := make([][]int, len(p.powers))
	for i, r := range p.powers {
		out[i] = slices.Clone(r)
	}
	return out
}

func (p *Polynomial) Transform(x []float64) ([]float64, error) {
	if len(x) != p.nIn {
		return nil, fmt.Errorf("polynomial expects %d features, got %d", p.nIn, len(x))
	}
	out := make([]float64, len(p.powers))
	for j, term := range p.powers {
		v := 1.0
		for i, e := range term {
			for range e {
				v *= x[i]
			}
		}
		out[j] = v
	}
	return out, nil
}
