package main

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

var ErrInvalidInstitution = errors.New("invalid institution")

// InstitutionInput carries unvalidated attributes into NewInstitution.
type InstitutionInput struct {
	Name          string
	Category      string
	Ownership     string
	LGA           string
	Courses       []string
	Accreditation float64
	Tuition       float64
	Population    int
}

// Institution is read-only once built; use NewInstitution.
type Institution struct {
	name          string
	category      Category
	ownership     Ownership
	lga           string
	courses       []string
	accreditation float64
	tuition       float64
	population    int
}

func NewInstitution(in InstitutionInput) (Institution, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Institution{}, invalid("name is required")
	}
	cat, err := ParseCategory(in.Category)
	if err != nil {
		return Institution{}, fmt.Errorf("%w: %w", ErrInvalidInstitution, err)
	}
	own, err := ParseOwnership(in.Ownership)
	if err != nil {
		return Institution{}, fmt.Errorf("%w: %w", ErrInvalidInstitution, err)
	}
	lga := strings.TrimSpace(in.LGA)
	if lga == "" {
		return Institution{}, invalid("lga is required")
	}
	if math.IsNaN(in.Accreditation) || in.Accreditation < 0 || in.Accreditation > accreditationMax {
		return Institution{}, invalid("accreditation %v out of range [0,100]", in.Accreditation)
	}
	if math.IsNaN(in.Tuition) || math.IsInf(in.Tuition, 0) || in.Tuition < 0 {
		return Institution{}, invalid("tuition %v must be a non-negative number", in.Tuition)
	}
	if in.Population < 0 {
		return Institution{}, invalid("population %d must be non-negative", in.Population)
	}

	return Institution{
		name:          name,
		category:      cat,
		ownership:     own,
		lga:           lga,
		courses:       cleanCourses(in.Courses),
		accreditation: in.Accreditation,
		tuition:       in.Tuition,
		population:    in.Population,
	}, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInstitution, fmt.Sprintf(format, args...))
}

// cleanCourses trims, drops blanks and case-insensitive duplicates, keeping
// first-seen order.
func cleanCourses(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		k := strings.ToLower(c)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	return out
}

func (i Institution) Name() string           { return i.name }
func (i Institution) Category() Category     { return i.category }
func (i Institution) Ownership() Ownership   { return i.ownership }
func (i Institution) LGA() string            { return i.lga }
func (i Institution) Accreditation() float64 { return i.accreditation }
func (i Institution) Tuition() float64       { return i.tuition }
func (i Institution) Population() int        { return i.population }
func (i Institution) Courses() []string      { return slices.Clone(i.courses) }
func (i Institution) Weights() Weights       { return categoryWeights[i.category] }
func (i Institution) RankScore() float64     { return i.Weights().Score(i.features()) }
func (i Institution) String() string         { return i.name }

func (i Institution) features() (acc, aff, size float64) {
	return normAccreditation(i.accreditation), normAffordability(i.tuition), normSize(i.population)
}

// OffersCourse reports whether any course contains keyword, ignoring case.
// An empty keyword matches everything.
func (i Institution) OffersCourse(keyword string) bool {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return true
	}
	for _, c := range i.courses {
		if strings.Contains(strings.ToLower(c), kw) {
			return true
		}
	}
	return false
}

// Line is the one-line summary used by the list renderer.
func (i Institution) Line() string {
	return fmt.Sprintf("%s [%s | %s | %s] Accr %.0f/100 • Tuition %s • Students %s",
		i.name,
		titleCase(i.category.Label()),
		titleCase(string(i.ownership)),
		i.lga,
		i.accreditation,
		formatNaira(i.tuition),
		formatCount(i.population),
	)
}
