package main

import (
	"sync/atomic"
	"time"
)

type Metrics struct {
	start time.Time

	version   string
	commit    string
	buildDate string

	rowsLoaded  atomic.Int64
	rowsSkipped atomic.Int64

	queries          atomic.Int64
	queryErrors      atomic.Int64
	lastQueryMicros  atomic.Int64
	lastResultLength atomic.Int64

	// ClickHouse export metrics
	chInsertedRows        atomic.Int64
	chInsertErrors        atomic.Int64
	chDropped             atomic.Int64
	chLastInsertLatencyMs atomic.Int64
	chLastInsertAtMs      atomic.Int64
}

func NewMetrics(start time.Time, version, commit, buildDate string) *Metrics {
	return &Metrics{
		start:     start,
		version:   version,
		commit:    commit,
		buildDate: buildDate,
	}
}

func (m *Metrics) Loaded(rep LoadReport) {
	m.rowsLoaded.Add(int64(rep.Loaded))
	m.rowsSkipped.Add(int64(len(rep.Skipped)))
}

func (m *Metrics) Query(results int, latency time.Duration) {
	m.queries.Add(1)
	m.lastQueryMicros.Store(latency.Microseconds())
	m.lastResultLength.Store(int64(results))
}

func (m *Metrics) QueryError() { m.queryErrors.Add(1) }

func (m *Metrics) CHInserted(n int64, latency time.Duration) {
	m.chInsertedRows.Add(n)
	m.chLastInsertLatencyMs.Store(latency.Milliseconds())
	m.chLastInsertAtMs.Store(time.Now().UnixMilli())
}
func (m *Metrics) CHInsertError()    { m.chInsertErrors.Add(1) }
func (m *Metrics) CHDropped(n int64) { m.chDropped.Add(n) }

func (m *Metrics) Snapshot() map[string]any {
	uptime := time.Since(m.start)

	return map[string]any{
		"ok": true,

		"uptime_ms": uptime.Milliseconds(),
		"uptime":    uptime.String(),

		"build": map[string]any{
			"version":    m.version,
			"commit":     m.commit,
			"build_date": m.buildDate,
		},

		"directory": map[string]any{
			"rows_loaded":  m.rowsLoaded.Load(),
			"rows_skipped": m.rowsSkipped.Load(),
		},

		"queries": map[string]any{
			"total":              m.queries.Load(),
			"errors_total":       m.queryErrors.Load(),
			"last_latency_us":    m.lastQueryMicros.Load(),
			"last_result_length": m.lastResultLength.Load(),
		},

		"clickhouse": map[string]any{
			"inserted_rows_total":    m.chInsertedRows.Load(),
			"insert_errors_total":    m.chInsertErrors.Load(),
			"dropped_total":          m.chDropped.Load(),
			"last_insert_latency_ms": m.chLastInsertLatencyMs.Load(),
			"last_insert_at_unix_ms": m.chLastInsertAtMs.Load(),
		},
	}
}
