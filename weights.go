package main

import (
	"fmt"
	"math"
)

// Normalisation scales for the rank score.
const (
	accreditationMax   = 100.0
	tuitionScale       = 1_000_000.0 // naira; affordability halves at this tuition
	populationSaturate = 30_000.0
)

// Weights is the (accreditation, affordability, size) tuple used by RankScore.
// A valid tuple is non-negative and sums to 1.
type Weights struct {
	Accreditation float64
	Affordability float64
	Size          float64
}

var categoryWeights = map[Category]Weights{
	CategoryUniversity:         {Accreditation: 0.60, Affordability: 0.20, Size: 0.20},
	CategoryPolytechnic:        {Accreditation: 0.35, Affordability: 0.45, Size: 0.20},
	CategoryCollegeOfEducation: {Accreditation: 0.35, Affordability: 0.25, Size: 0.40},
}

func WeightsFor(c Category) (Weights, bool) {
	w, ok := categoryWeights[c]
	return w, ok
}

func (w Weights) Sum() float64 {
	return w.Accreditation + w.Affordability + w.Size
}

func (w Weights) Validate() error {
	if w.Accreditation < 0 || w.Affordability < 0 || w.Size < 0 {
		return fmt.Errorf("negative weight in %+v", w)
	}
	if math.Abs(w.Sum()-1.0) > 0.001 {
		return fmt.Errorf("weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	return nil
}

// Score combines already-normalised features.
func (w Weights) Score(acc, aff, size float64) float64 {
	return w.Accreditation*acc + w.Affordability*aff + w.Size*size
}

func normAccreditation(score float64) float64 {
	return clamp01(score / accreditationMax)
}

// normAffordability maps tuition to (0,1]; free tuition scores 1.
func normAffordability(tuition float64) float64 {
	return 1.0 / (1.0 + tuition/tuitionScale)
}

func normSize(population int) float64 {
	return clamp01(float64(population) / populationSaturate)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
