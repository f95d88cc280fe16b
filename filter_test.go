package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCriteria(t *testing.T, in CriteriaInput) Criteria {
	t.Helper()
	c, err := ParseCriteria(in)
	require.NoError(t, err)
	return c
}

func TestFilter_ByCategory(t *testing.T) {
	uni := mustInstitution(t, InstitutionInput{
		Name: "Fed Uni A", Category: "university", Ownership: "federal", LGA: "Yaba",
		Courses: []string{"Computer Science", "Law"}, Accreditation: 80, Tuition: 300000, Population: 20000,
	})
	poly := mustInstitution(t, InstitutionInput{
		Name: "Poly B", Category: "polytechnic", Ownership: "state", LGA: "Ikorodu",
		Courses: []string{"Accountancy"}, Accreditation: 70, Tuition: 150000, Population: 15000,
	})

	got := Filter([]Institution{uni, poly}, mustCriteria(t, CriteriaInput{Category: "university"}))
	assert.Equal(t, []string{"Fed Uni A"}, names(got))
}

func TestFilter_Sample(t *testing.T) {
	all := loadSample(t).All()

	tests := []struct {
		name string
		in   CriteriaInput
		want []string
	}{
		{
			name: "no criteria",
			want: names(all),
		},
		{
			name: "course substring",
			in:   CriteriaInput{Course: "computer"},
			want: []string{
				"University of Lagos", "Lagos State University", "Pan-Atlantic University",
				"Yaba College of Technology", "Federal College of Education (Technical) Akoka",
			},
		},
		{
			name: "lga ignores case",
			in:   CriteriaInput{LGA: "YABA"},
			want: []string{
				"University of Lagos", "Yaba College of Technology",
				"Federal College of Education (Technical) Akoka",
			},
		},
		{
			name: "ownership",
			in:   CriteriaInput{Ownership: "state"},
			want: []string{
				"Lagos State University", "Lagos State Polytechnic",
				"Adeniran Ogunsanya College of Education",
			},
		},
		{
			name: "max tuition inclusive",
			in:   CriteriaInput{MaxTuition: "90,000"},
			want: []string{
				"Yaba College of Technology", "Federal College of Education (Technical) Akoka",
				"Adeniran Ogunsanya College of Education",
			},
		},
		{
			name: "min accreditation inclusive",
			in:   CriteriaInput{MinAccreditation: "80"},
			want: []string{"University of Lagos", "Lagos State University", "Pan-Atlantic University"},
		},
		{
			name: "conjunction",
			in:   CriteriaInput{Category: "uni", LGA: "yaba", Course: "computer"},
			want: []string{"University of Lagos"},
		},
		{
			name: "nothing matches",
			in:   CriteriaInput{Course: "astrophysics"},
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(all, mustCriteria(t, tt.in))
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestFilter_Idempotent(t *testing.T) {
	all := loadSample(t).All()
	c := mustCriteria(t, CriteriaInput{Course: "computer", MaxTuition: "300000"})

	once := Filter(all, c)
	assert.Equal(t, names(once), names(Filter(once, c)))
	for _, inst := range once {
		assert.True(t, c.Matches(inst), inst.Name())
	}
}

func TestParseCriteria_Errors(t *testing.T) {
	for name, in := range map[string]CriteriaInput{
		"unknown category":       {Category: "seminary"},
		"unknown ownership":      {Ownership: "mission"},
		"accreditation text":     {MinAccreditation: "high"},
		"accreditation range":    {MinAccreditation: "101"},
		"negative accreditation": {MinAccreditation: "-1"},
		"tuition text":           {MaxTuition: "cheap"},
		"negative tuition":       {MaxTuition: "-5"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCriteria(in)
			assert.Error(t, err)
		})
	}
}

func TestCriteriaString(t *testing.T) {
	assert.Equal(t, "none", Criteria{}.String())
	c := mustCriteria(t, CriteriaInput{Category: "poly", LGA: "Yaba", MaxTuition: "100000"})
	assert.Equal(t, "category=polytechnic lga=Yaba max_tuition=100000", c.String())
	assert.False(t, c.IsZero())
}
