package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Criteria is a conjunction of optional predicates. Nil pointers and empty
// strings impose no constraint.
type Criteria struct {
	Category         *Category
	Ownership        *Ownership
	LGA              string
	Course           string
	MinAccreditation *float64
	MaxTuition       *float64
}

// CriteriaInput holds raw filter values as they arrive from flags, query
// strings or preset files.
type CriteriaInput struct {
	Category         string
	Ownership        string
	LGA              string
	Course           string
	MinAccreditation string
	MaxTuition       string
}

func ParseCriteria(in CriteriaInput) (Criteria, error) {
	var c Criteria
	if strings.TrimSpace(in.Category) != "" {
		cat, err := ParseCategory(in.Category)
		if err != nil {
			return Criteria{}, err
		}
		c.Category = &cat
	}
	if strings.TrimSpace(in.Ownership) != "" {
		own, err := ParseOwnership(in.Ownership)
		if err != nil {
			return Criteria{}, err
		}
		c.Ownership = &own
	}
	c.LGA = strings.TrimSpace(in.LGA)
	c.Course = strings.TrimSpace(in.Course)

	if v := strings.TrimSpace(in.MinAccreditation); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Criteria{}, fmt.Errorf("min accreditation %q is not a number", in.MinAccreditation)
		}
		c.MinAccreditation = &f
	}
	if v := cleanNumber(in.MaxTuition); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Criteria{}, fmt.Errorf("max tuition %q is not a number", in.MaxTuition)
		}
		c.MaxTuition = &f
	}
	if err := c.Validate(); err != nil {
		return Criteria{}, err
	}
	return c, nil
}

func (c Criteria) Validate() error {
	if c.MinAccreditation != nil {
		if v := *c.MinAccreditation; math.IsNaN(v) || v < 0 || v > accreditationMax {
			return fmt.Errorf("min accreditation %v out of range [0,100]", v)
		}
	}
	if c.MaxTuition != nil {
		if v := *c.MaxTuition; math.IsNaN(v) || v < 0 {
			return fmt.Errorf("max tuition %v must be non-negative", v)
		}
	}
	return nil
}

func (c Criteria) IsZero() bool {
	return c.Category == nil && c.Ownership == nil && c.LGA == "" && c.Course == "" &&
		c.MinAccreditation == nil && c.MaxTuition == nil
}

// Matches reports whether inst satisfies every supplied predicate.
func (c Criteria) Matches(inst Institution) bool {
	if c.Category != nil && inst.Category() != *c.Category {
		return false
	}
	if c.Ownership != nil && inst.Ownership() != *c.Ownership {
		return false
	}
	if c.LGA != "" && !strings.EqualFold(inst.LGA(), strings.TrimSpace(c.LGA)) {
		return false
	}
	if c.Course != "" && !inst.OffersCourse(c.Course) {
		return false
	}
	if c.MinAccreditation != nil && inst.Accreditation() < *c.MinAccreditation {
		return false
	}
	if c.MaxTuition != nil && inst.Tuition() > *c.MaxTuition {
		return false
	}
	return true
}

// Filter keeps the matching institutions in their input order.
func Filter(in []Institution, c Criteria) []Institution {
	out := make([]Institution, 0, len(in))
	for _, inst := range in {
		if c.Matches(inst) {
			out = append(out, inst)
		}
	}
	return out
}

func (c Criteria) String() string {
	if c.IsZero() {
		return "none"
	}
	var parts []string
	if c.Category != nil {
		parts = append(parts, "category="+string(*c.Category))
	}
	if c.Ownership != nil {
		parts = append(parts, "ownership="+string(*c.Ownership))
	}
	if c.LGA != "" {
		parts = append(parts, "lga="+c.LGA)
	}
	if c.Course != "" {
		parts = append(parts, "course="+c.Course)
	}
	if c.MinAccreditation != nil {
		parts = append(parts, fmt.Sprintf("min_accreditation=%g", *c.MinAccreditation))
	}
	if c.MaxTuition != nil {
		parts = append(parts, fmt.Sprintf("max_tuition=%g", *c.MaxTuition))
	}
	return strings.Join(parts, " ")
}
