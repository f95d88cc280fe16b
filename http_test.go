package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *Metrics) {
	t.Helper()
	run := NewRunContext(time.Now())
	m := NewMetrics(run.Start, "test", "abc123", "today")
	hs := &HTTPServer{cfg: HTTPConfig{
		Log: NewNopLogger(),
		Dir: loadSample(t),
		Run: run,
		M:   m,
	}}
	srv := httptest.NewServer(hs.routes())
	t.Cleanup(srv.Close)
	return srv, m
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp
}

type institutionsResponse struct {
	Count        int               `json:"count"`
	SortBy       SortKey           `json:"sort_by"`
	Reverse      bool              `json:"reverse"`
	Institutions []InstitutionView `json:"institutions"`
	Error        string            `json:"error"`
}

func viewNames(in []InstitutionView) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = v.Name
	}
	return out
}

func TestHTTPInstitutions(t *testing.T) {
	srv, m := newTestServer(t)

	var body institutionsResponse
	resp := getJSON(t, srv.URL+"/institutions", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 7, body.Count)
	assert.Equal(t, SortByRank, body.SortBy)
	assert.Equal(t, []string{unilag, yabatech, lasu, laspotech, aocoed, fce, pan}, viewNames(body.Institutions))
	assert.Equal(t, 1, body.Institutions[0].Position)

	body = institutionsResponse{}
	getJSON(t, srv.URL+"/institutions?course=computer&max_tuition=100000&sort_by=tuition&top=1", &body)
	assert.Equal(t, []string{fce}, viewNames(body.Institutions))

	body = institutionsResponse{}
	getJSON(t, srv.URL+"/institutions?sort_by=tuition&reverse=true&top=2", &body)
	assert.True(t, body.Reverse)
	assert.Equal(t, []string{pan, lasu}, viewNames(body.Institutions))

	body = institutionsResponse{}
	getJSON(t, srv.URL+"/institutions?category=polytechnic&ownership=private", &body)
	assert.Equal(t, 0, body.Count)
	assert.NotNil(t, body.Institutions)

	assert.EqualValues(t, 4, m.queries.Load())
}

func TestHTTPInstitutions_BadRequest(t *testing.T) {
	srv, m := newTestServer(t)

	for _, q := range []string{
		"top=-1",
		"top=many",
		"sort_by=prestige",
		"category=seminary",
		"min_accreditation=150",
		"reverse=sometimes",
	} {
		var body institutionsResponse
		resp := getJSON(t, srv.URL+"/institutions?"+q, &body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		assert.NotEmpty(t, body.Error, q)
	}
	assert.EqualValues(t, 6, m.queryErrors.Load())
}

func TestHTTPInstitutions_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/institutions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "GET, HEAD", resp.Header.Get("Allow"))
}

func TestQueryFromValues_CapsTop(t *testing.T) {
	q, err := queryFromValues(map[string][]string{"top": {"100000"}})
	require.NoError(t, err)
	assert.Equal(t, maxHTTPTop, q.Top)

	q, err = queryFromValues(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultQuery(), q)
}

func TestHTTPHealthAndRun(t *testing.T) {
	srv, _ := newTestServer(t)

	var health map[string]any
	resp := getJSON(t, srv.URL+"/health", &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, health["ok"])
	assert.Contains(t, health, "run")
	assert.Contains(t, health, "queries")

	var run map[string]any
	getJSON(t, srv.URL+"/run", &run)
	assert.Len(t, run["run_id"], 36)
	assert.EqualValues(t, 7, run["institutions"])
}
