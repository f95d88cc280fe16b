package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// batchConn is the part of clickhouse.Conn the writer needs.
type batchConn interface {
	PrepareBatch(ctx context.Context, query string) (driver.Batch, error)
}

type ClickHouseWriterConfig struct {
	Table       string
	BatchSize   int
	MaxAttempts int
}

// ClickHouseWriter exports one ranked result set per run.
type ClickHouseWriter struct {
	cfg  ClickHouseWriterConfig
	conn batchConn
	run  RunContext
	log  *Logger
	m    *Metrics
}

func NewClickHouseWriter(cfg ClickHouseWriterConfig, conn batchConn, run RunContext, m *Metrics, log *Logger) *ClickHouseWriter {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Table == "" {
		cfg.Table = "institution_rankings"
	}
	return &ClickHouseWriter{
		cfg:  cfg,
		conn: conn,
		run:  run,
		log:  log,
		m:    m,
	}
}

// Export inserts rows in batches. A batch that still fails after
// MaxAttempts is dropped and counted; the first such error is returned
// once every batch has been tried.
func (w *ClickHouseWriter) Export(ctx context.Context, q Query, rows []InstitutionView) error {
	var firstErr error
	for _, batch := range chunkViews(rows, w.cfg.BatchSize) {
		if err := w.flush(ctx, q, batch); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (w *ClickHouseWriter) flush(ctx context.Context, q Query, buf []InstitutionView) error {
	if len(buf) == 0 {
		return nil
	}

	var lastErr error
	for attempt := 0; attempt < w.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		ctxIns, cancel := context.WithTimeout(ctx, 5*time.Second)
		start := time.Now()
		err := w.insertBatch(ctxIns, q, buf)
		cancel()
		lat := time.Since(start)

		if err == nil {
			w.m.CHInserted(int64(len(buf)), lat)
			return nil
		}

		lastErr = err
		w.m.CHInsertError()
		if attempt == w.cfg.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff(attempt)):
		}
	}

	w.m.CHDropped(int64(len(buf)))
	w.log.Errorf("clickhouse insert failed; dropped %d rows: %v", len(buf), lastErr)
	return fmt.Errorf("clickhouse export: %w", lastErr)
}

// backoff is bounded exponential: 100ms, 200ms, 400ms ... capped at 1.5s.
func backoff(attempt int) time.Duration {
	d := time.Duration(100*(1<<attempt)) * time.Millisecond
	if d > 1500*time.Millisecond {
		d = 1500 * time.Millisecond
	}
	return d
}

func chunkViews(rows []InstitutionView, size int) [][]InstitutionView {
	if size <= 0 {
		size = len(rows)
	}
	var out [][]InstitutionView
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[start:end])
	}
	return out
}

func insertSQL(table string) string {
	return fmt.Sprintf(`
INSERT INTO `+"`%s`"+`
(run_id, run_start, position, name, category, ownership, lga, courses,
 accreditation_score, tuition_avg, student_population, rank_score, sort_by, criteria)
`, table)
}

func (w *ClickHouseWriter) insertBatch(ctx context.Context, q Query, buf []InstitutionView) error {
	if w.conn == nil {
		return fmt.Errorf("no clickhouse conn")
	}

	b, err := w.conn.PrepareBatch(ctx, insertSQL(w.cfg.Table))
	if err != nil {
		return err
	}

	criteria := q.Criteria.String()
	for _, v := range buf {
		if err := b.Append(
			w.run.ID,
			w.run.Start,
			uint32(v.Position),
			v.Name,
			string(v.Category),
			string(v.Ownership),
			v.LGA,
			v.Courses,
			v.Accreditation,
			v.Tuition,
			uint64(v.Population),
			v.RankScore,
			string(q.SortBy),
			criteria,
		); err != nil {
			_ = b.Abort()
			return err
		}
	}

	return b.Send()
}
