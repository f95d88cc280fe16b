package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrPresetNotFound = errors.New("preset not found")

// Preset is a named, saved query.
type Preset struct {
	Name             string   `yaml:"name"`
	Category         string   `yaml:"category"`
	Ownership        string   `yaml:"ownership"`
	LGA              string   `yaml:"lga"`
	Course           string   `yaml:"course"`
	MinAccreditation *float64 `yaml:"min_accreditation"`
	MaxTuition       *float64 `yaml:"max_tuition"`
	SortBy           string   `yaml:"sort_by"`
	Reverse          bool     `yaml:"reverse"`
	Top              *int     `yaml:"top"`
	Format           string   `yaml:"format"`
}

type presetsFile struct {
	Presets []Preset `yaml:"presets"`
}

// LoadPresets reads a presets file keyed by lower-cased name. The first
// definition of a duplicated name wins.
func LoadPresets(path string) (map[string]Preset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pf presetsFile
	if err := yaml.Unmarshal(b, &pf); err != nil {
		return nil, fmt.Errorf("parse presets %s: %w", path, err)
	}

	out := make(map[string]Preset, len(pf.Presets))
	for _, p := range pf.Presets {
		name := presetKey(p.Name)
		if name == "" {
			continue
		}
		if _, ok := out[name]; ok {
			continue
		}
		p.Name = name
		out[name] = p
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no presets found in %s", path)
	}
	return out, nil
}

func LookupPreset(presets map[string]Preset, name string) (Preset, error) {
	p, ok := presets[presetKey(name)]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	return p, nil
}

func presetKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (p Preset) CriteriaInput() CriteriaInput {
	in := CriteriaInput{
		Category:  p.Category,
		Ownership: p.Ownership,
		LGA:       p.LGA,
		Course:    p.Course,
	}
	if p.MinAccreditation != nil {
		in.MinAccreditation = strconv.FormatFloat(*p.MinAccreditation, 'f', -1, 64)
	}
	if p.MaxTuition != nil {
		in.MaxTuition = strconv.FormatFloat(*p.MaxTuition, 'f', -1, 64)
	}
	return in
}

// Query validates the preset into a runnable query; unset fields keep the
// defaults of DefaultQuery.
func (p Preset) Query() (Query, error) {
	q := DefaultQuery()
	c, err := ParseCriteria(p.CriteriaInput())
	if err != nil {
		return Query{}, fmt.Errorf("preset %s: %w", p.Name, err)
	}
	q.Criteria = c
	if p.SortBy != "" {
		key, err := ParseSortKey(p.SortBy)
		if err != nil {
			return Query{}, fmt.Errorf("preset %s: %w", p.Name, err)
		}
		q.SortBy = key
	}
	q.Reverse = p.Reverse
	if p.Top != nil {
		if *p.Top < 0 {
			return Query{}, fmt.Errorf("preset %s: %w", p.Name, ErrNegativeTop)
		}
		q.Top = *p.Top
	}
	return q, nil
}
