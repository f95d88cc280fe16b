package main

import (
	"errors"
	"sort"
	"strings"
)

var ErrNegativeTop = errors.New("top count must not be negative")

// Sort returns a new slice ordered by key. rank, accreditation and population
// run best-first (descending), tuition cheapest-first, name A-Z. reverse flips
// the direction; equal keys always keep their input order.
func Sort(in []Institution, key SortKey, reverse bool) []Institution {
	out := append([]Institution(nil), in...)
	less := lessFor(key)
	sort.SliceStable(out, func(i, j int) bool {
		if reverse {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func lessFor(key SortKey) func(a, b Institution) bool {
	switch key {
	case SortByAccreditation:
		return func(a, b Institution) bool { return a.Accreditation() > b.Accreditation() }
	case SortByTuition:
		return func(a, b Institution) bool { return a.Tuition() < b.Tuition() }
	case SortByName:
		return func(a, b Institution) bool { return strings.ToLower(a.Name()) < strings.ToLower(b.Name()) }
	case SortByPopulation:
		return func(a, b Institution) bool { return a.Population() > b.Population() }
	default:
		return func(a, b Institution) bool { return a.RankScore() > b.RankScore() }
	}
}

// Top returns the first n elements, or all of them when n exceeds the length.
func Top(in []Institution, n int) ([]Institution, error) {
	if n < 0 {
		return nil, ErrNegativeTop
	}
	if n > len(in) {
		n = len(in)
	}
	return in[:n:n], nil
}
