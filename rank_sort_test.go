package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	unilag    = "University of Lagos"
	lasu      = "Lagos State University"
	pan       = "Pan-Atlantic University"
	yabatech  = "Yaba College of Technology"
	laspotech = "Lagos State Polytechnic"
	fce       = "Federal College of Education (Technical) Akoka"
	aocoed    = "Adeniran Ogunsanya College of Education"
)

func TestSort_Sample(t *testing.T) {
	all := loadSample(t).All()

	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortByRank, []string{unilag, yabatech, lasu, laspotech, aocoed, fce, pan}},
		{SortByAccreditation, []string{unilag, pan, lasu, yabatech, fce, laspotech, aocoed}},
		{SortByTuition, []string{fce, aocoed, yabatech, laspotech, unilag, lasu, pan}},
		{SortByPopulation, []string{unilag, lasu, yabatech, laspotech, aocoed, fce, pan}},
		{SortByName, []string{aocoed, fce, laspotech, lasu, pan, unilag, yabatech}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got := Sort(all, tt.key, false)
			assert.Equal(t, tt.want, names(got))
			assert.Equal(t, names(got), names(Sort(got, tt.key, false)), "sorting is idempotent")
		})
	}
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	all := loadSample(t).All()
	before := names(all)
	_ = Sort(all, SortByName, false)
	assert.Equal(t, before, names(all))
}

func TestSort_Reverse(t *testing.T) {
	all := loadSample(t).All()
	got := Sort(all, SortByTuition, true)
	assert.Equal(t, []string{pan, lasu, unilag, laspotech, yabatech, aocoed, fce}, names(got))
}

func TestSort_TuitionAscending(t *testing.T) {
	in := []Institution{
		mustInstitution(t, InstitutionInput{Name: "X", Category: "university", Ownership: "federal", LGA: "Yaba", Accreditation: 50, Tuition: 500000, Population: 100}),
		mustInstitution(t, InstitutionInput{Name: "Y", Category: "university", Ownership: "federal", LGA: "Yaba", Accreditation: 50, Tuition: 100000, Population: 100}),
	}
	assert.Equal(t, []string{"Y", "X"}, names(Sort(in, SortByTuition, false)))
}

func TestSort_TiesKeepInputOrder(t *testing.T) {
	mk := func(name string, accr float64) Institution {
		return mustInstitution(t, InstitutionInput{
			Name: name, Category: "polytechnic", Ownership: "state", LGA: "Ojo",
			Accreditation: accr, Tuition: 100000, Population: 1000,
		})
	}
	in := []Institution{mk("first", 70), mk("top", 90), mk("second", 70), mk("third", 70)}

	assert.Equal(t, []string{"top", "first", "second", "third"}, names(Sort(in, SortByAccreditation, false)))
	assert.Equal(t, []string{"first", "second", "third", "top"}, names(Sort(in, SortByAccreditation, true)))
	assert.Equal(t, []string{"first", "second", "third", "top"}, names(Sort(in, SortByTuition, false)))
}

func TestSort_NameIgnoresCase(t *testing.T) {
	mk := func(name string) Institution {
		return mustInstitution(t, InstitutionInput{
			Name: name, Category: "university", Ownership: "private", LGA: "Ikeja", Population: 1,
		})
	}
	in := []Institution{mk("beta"), mk("Alpha"), mk("Charlie")}
	assert.Equal(t, []string{"Alpha", "beta", "Charlie"}, names(Sort(in, SortByName, false)))
}

func TestTop(t *testing.T) {
	all := loadSample(t).All()

	got, err := Top(all, 3)
	require.NoError(t, err)
	assert.Equal(t, names(all[:3]), names(got))

	got, err = Top(all, 100)
	require.NoError(t, err)
	assert.Len(t, got, len(all))

	got, err = Top(all, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Top(all, -1)
	assert.ErrorIs(t, err, ErrNegativeTop)
}

func TestTop_Composes(t *testing.T) {
	all := loadSample(t).All()
	for n := 0; n <= len(all); n++ {
		first, err := Top(all, n)
		require.NoError(t, err)
		for m := n; m <= len(all)+1; m++ {
			again, err := Top(first, m)
			require.NoError(t, err)
			assert.Equal(t, names(first), names(again))
		}
	}
}

func TestTop_AppendDoesNotClobberSource(t *testing.T) {
	all := loadSample(t).All()
	head, err := Top(all, 2)
	require.NoError(t, err)
	_ = append(head, all[6])
	assert.Equal(t, lasu, all[1].Name())
	assert.Equal(t, pan, all[2].Name())
}

func TestExecute(t *testing.T) {
	d := loadSample(t)

	q := DefaultQuery()
	got, err := Execute(d, q)
	require.NoError(t, err)
	assert.Equal(t, []string{unilag, yabatech, lasu, laspotech, aocoed, fce, pan}, names(got))

	q.Criteria = mustCriteria(t, CriteriaInput{Course: "computer"})
	q.SortBy = SortByTuition
	q.Top = 2
	got, err = Execute(d, q)
	require.NoError(t, err)
	assert.Equal(t, []string{fce, yabatech}, names(got))

	q.Criteria = mustCriteria(t, CriteriaInput{Category: "polytechnic", Ownership: "private"})
	got, err = Execute(d, q)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExecute_InvalidQuery(t *testing.T) {
	d := loadSample(t)

	q := DefaultQuery()
	q.Top = -1
	_, err := Execute(d, q)
	assert.ErrorIs(t, err, ErrNegativeTop)

	q = DefaultQuery()
	q.SortBy = SortKey("prestige")
	_, err = Execute(d, q)
	assert.ErrorIs(t, err, ErrUnknownSortKey)
}

func TestParseSortKey(t *testing.T) {
	key, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortByRank, key)

	key, err = ParseSortKey(" Tuition ")
	require.NoError(t, err)
	assert.Equal(t, SortByTuition, key)

	_, err = ParseSortKey("prestige")
	assert.ErrorIs(t, err, ErrUnknownSortKey)
}
