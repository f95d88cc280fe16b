package main

import (
	"errors"
	"fmt"
	"strings"
)

type Category string

const (
	CategoryUniversity         Category = "university"
	CategoryPolytechnic        Category = "polytechnic"
	CategoryCollegeOfEducation Category = "college_of_education"
)

var ErrUnknownCategory = errors.New("unknown category")

// ParseCategory accepts the canonical names plus the spellings seen in
// hand-maintained datasets ("college", "college of education", "coe").
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "university", "uni":
		return CategoryUniversity, nil
	case "polytechnic", "poly":
		return CategoryPolytechnic, nil
	case "college_of_education", "college", "college of education", "coe":
		return CategoryCollegeOfEducation, nil
	}
	return "", fmt.Errorf("%w %q (want university|polytechnic|college_of_education)", ErrUnknownCategory, s)
}

func (c Category) Label() string {
	switch c {
	case CategoryCollegeOfEducation:
		return "college of education"
	default:
		return string(c)
	}
}

type Ownership string

const (
	OwnershipFederal Ownership = "federal"
	OwnershipState   Ownership = "state"
	OwnershipPrivate Ownership = "private"
)

var ErrUnknownOwnership = errors.New("unknown ownership")

func ParseOwnership(s string) (Ownership, error) {
	switch o := Ownership(strings.ToLower(strings.TrimSpace(s))); o {
	case OwnershipFederal, OwnershipState, OwnershipPrivate:
		return o, nil
	}
	return "", fmt.Errorf("%w %q (want federal|state|private)", ErrUnknownOwnership, s)
}

type SortKey string

const (
	SortByRank          SortKey = "rank"
	SortByAccreditation SortKey = "accreditation"
	SortByTuition       SortKey = "tuition"
	SortByName          SortKey = "name"
	SortByPopulation    SortKey = "population"
)

var ErrUnknownSortKey = errors.New("unknown sort key")

// SortKeys lists every accepted key in help-text order.
var SortKeys = []SortKey{SortByRank, SortByAccreditation, SortByTuition, SortByName, SortByPopulation}

func ParseSortKey(s string) (SortKey, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return SortByRank, nil
	}
	for _, k := range SortKeys {
		if string(k) == v {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w %q (want %s)", ErrUnknownSortKey, s, joinSortKeys("|"))
}

func joinSortKeys(sep string) string {
	parts := make([]string, len(SortKeys))
	for i, k := range SortKeys {
		parts[i] = string(k)
	}
	return strings.Join(parts, sep)
}
