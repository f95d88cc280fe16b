package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// maxHTTPTop caps result size per request.
const maxHTTPTop = 500

type HTTPConfig struct {
	Addr string
	Log  *Logger
	Dir  *Directory
	Run  RunContext
	M    *Metrics
}

type HTTPServer struct {
	cfg HTTPConfig
	srv *http.Server
}

func NewHTTPServer(cfg HTTPConfig) *http.Server {
	hs := &HTTPServer{cfg: cfg}

	hs.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      hs.routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return hs.srv
}

func (hs *HTTPServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/institutions", hs.handleInstitutions)
	mux.HandleFunc("/health", hs.handleHealth)
	mux.HandleFunc("/run", hs.handleRun)
	return mux
}

func (hs *HTTPServer) handleRun(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":       hs.cfg.Run.ID,
		"run_start":    hs.cfg.Run.Start.Format(time.RFC3339Nano),
		"run_start_ms": hs.cfg.Run.Start.UnixMilli(),
		"institutions": hs.cfg.Dir.Len(),
	})
}

func (hs *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := hs.cfg.M.Snapshot()
	snap["run"] = map[string]any{
		"run_id":    hs.cfg.Run.ID,
		"run_start": hs.cfg.Run.Start.Format(time.RFC3339Nano),
	}
	writeJSON(w, http.StatusOK, snap)
}

func (hs *HTTPServer) handleInstitutions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	q, err := queryFromValues(r.URL.Query())
	if err != nil {
		hs.cfg.M.QueryError()
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	start := time.Now()
	rows, err := Execute(hs.cfg.Dir, q)
	if err != nil {
		hs.cfg.M.QueryError()
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	hs.cfg.M.Query(len(rows), time.Since(start))
	hs.cfg.Log.Debugf("query criteria=[%s] sort_by=%s top=%d results=%d", q.Criteria, q.SortBy, q.Top, len(rows))

	writeJSON(w, http.StatusOK, map[string]any{
		"count":        len(rows),
		"sort_by":      q.SortBy,
		"reverse":      q.Reverse,
		"institutions": Views(rows),
	})
}

// queryFromValues maps query-string parameters onto a Query using the same
// parsing rules as the command line.
func queryFromValues(v url.Values) (Query, error) {
	q := DefaultQuery()

	c, err := ParseCriteria(CriteriaInput{
		Category:         v.Get("category"),
		Ownership:        v.Get("ownership"),
		LGA:              v.Get("lga"),
		Course:           v.Get("course"),
		MinAccreditation: v.Get("min_accreditation"),
		MaxTuition:       v.Get("max_tuition"),
	})
	if err != nil {
		return Query{}, err
	}
	q.Criteria = c

	key, err := ParseSortKey(v.Get("sort_by"))
	if err != nil {
		return Query{}, err
	}
	q.SortBy = key

	if s := strings.TrimSpace(v.Get("reverse")); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Query{}, fmt.Errorf("bad reverse %q", s)
		}
		q.Reverse = b
	}

	if s := strings.TrimSpace(v.Get("top")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Query{}, fmt.Errorf("bad top %q", s)
		}
		if n < 0 {
			return Query{}, ErrNegativeTop
		}
		q.Top = min(n, maxHTTPTop)
	}
	return q, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}
