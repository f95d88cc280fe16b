package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankedSample(t *testing.T, top int) []Institution {
	t.Helper()
	q := DefaultQuery()
	q.Top = top
	rows, err := Execute(loadSample(t), q)
	require.NoError(t, err)
	return rows
}

func TestRenderList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatList, rankedSample(t, 2)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		" 1. University of Lagos [University | Federal | Yaba] Accr 88/100 • Tuition ₦250,000 • Students 57,000 • RankScore 0.888",
		lines[0])
	assert.True(t, strings.HasPrefix(lines[1], " 2. Yaba College of Technology [Polytechnic | Federal | Yaba]"), lines[1])
	assert.True(t, strings.HasSuffix(lines[1], "RankScore 0.842"), lines[1])
}

func TestRender_NoMatches(t *testing.T) {
	for _, f := range []Format{FormatList, FormatTable} {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, f, nil))
		assert.Equal(t, noMatchMessage+"\n", buf.String(), f)
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, nil))
	assert.JSONEq(t, `[]`, buf.String())
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, rankedSample(t, 3)))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 3)

	first := got[0]
	assert.EqualValues(t, 1, first["position"])
	assert.Equal(t, unilag, first["name"])
	assert.Equal(t, "university", first["category"])
	assert.Equal(t, "federal", first["ownership"])
	assert.Equal(t, []any{"Computer Science", "Law", "Medicine"}, first["courses"])
	assert.EqualValues(t, 250000, first["tuition_avg"])
	assert.EqualValues(t, 57000, first["student_population"])
	assert.InDelta(t, 0.888, first["rank_score"], 1e-9)

	assert.Equal(t, lasu, got[2]["name"])
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatTable, rankedSample(t, 3)))

	out := buf.String()
	for _, want := range []string{"Name", "Rank", unilag, yabatech, lasu, "₦250,000", "57,000", "0.888"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, pan)
}

func TestRender_UnknownFormat(t *testing.T) {
	err := Render(&bytes.Buffer{}, Format("xml"), nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatList, f)

	f, err = ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestViews(t *testing.T) {
	inst := mustInstitution(t, InstitutionInput{
		Name: "No Courses", Category: "coe", Ownership: "private", LGA: "Ikeja", Population: 10,
	})
	v := Views([]Institution{inst})
	require.Len(t, v, 1)
	assert.NotNil(t, v[0].Courses)
	assert.Equal(t, CategoryCollegeOfEducation, v[0].Category)
	assert.Equal(t, 1, v[0].Position)
}
