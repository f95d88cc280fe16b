package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// usageError marks failures caused by bad invocation; the command's usage is
// printed after the message.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func main() {
	loadDotEnv()
	os.Exit(execute(newRootCmd(os.Stdout, os.Stderr), os.Stderr))
}

func execute(root *cobra.Command, stderr io.Writer) int {
	cmd, err := root.ExecuteC()
	if err == nil {
		return 0
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprint(stderr, cmd.UsageString())
	}
	return 1
}

type app struct {
	cfg    CLIConfig
	log    *Logger
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		cfg:    defaultCLIConfig(),
		log:    NewLoggerTo(stderr, "info"),
		stdout: stdout,
		stderr: stderr,
	}

	root := &cobra.Command{
		Use:   "instdir",
		Short: "Tertiary institution directory: filter, sort and rank institutions from a CSV",
		Long: `instdir loads a CSV of tertiary institutions (universities, polytechnics and
colleges of education) and lists the ones matching the given filters, ordered
by the chosen key.

Rank score weights accreditation, affordability and size differently per
category: universities favour accreditation, polytechnics affordability and
colleges of education size.

Example:
  instdir --csv institutions.csv --category university --course computer \
    --max-tuition 400000 --sort-by accreditation --top 10`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.log = NewLoggerTo(a.stderr, a.cfg.LogLevel)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.log.Sync()
		},
		RunE: a.runQuery,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfg.CSV, "csv", a.cfg.CSV, "Path to the institutions CSV (required; env INSTDIR_CSV)")
	pf.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "Log level: debug|info|warn|error")
	pf.StringVar(&a.cfg.PresetsFile, "presets", a.cfg.PresetsFile, "Path to presets.yaml")

	f := root.Flags()
	f.StringVar(&a.cfg.Category, "category", "", "Filter by category: university|polytechnic|college_of_education")
	f.StringVar(&a.cfg.Ownership, "ownership", "", "Filter by ownership: federal|state|private")
	f.StringVar(&a.cfg.LGA, "lga", "", "Filter by local government area (e.g. Yaba, Ikeja)")
	f.StringVar(&a.cfg.Course, "course", "", "Keyword contained in an offered course (e.g. computer)")
	f.StringVar(&a.cfg.MinAccreditation, "min-accreditation", "", "Minimum accreditation score (0-100)")
	f.StringVar(&a.cfg.MinAccreditation, "min-accr", "", "Alias of --min-accreditation")
	f.StringVar(&a.cfg.MaxTuition, "max-tuition", "", "Maximum average annual tuition")
	f.StringVar(&a.cfg.SortBy, "sort-by", a.cfg.SortBy, "Sort key: "+joinSortKeys("|"))
	f.BoolVar(&a.cfg.Reverse, "reverse", false, "Reverse the sort key's natural direction")
	f.BoolVar(&a.cfg.Reverse, "asc", false, "Alias of --reverse")
	f.IntVar(&a.cfg.Top, "top", a.cfg.Top, "Show at most N results")
	f.StringVar(&a.cfg.Format, "format", a.cfg.Format, "Output format: list|table|json")
	f.StringVar(&a.cfg.Preset, "preset", "", "Start from a named preset in the presets file")

	f.BoolVar(&a.cfg.ClickHouseEnabled, "clickhouse", a.cfg.ClickHouseEnabled, "Export the result set to ClickHouse")
	f.StringVar(&a.cfg.CHHost, "ch-host", a.cfg.CHHost, "ClickHouse host")
	f.IntVar(&a.cfg.CHPort, "ch-port", a.cfg.CHPort, "ClickHouse native port")
	f.StringVar(&a.cfg.CHUser, "ch-user", a.cfg.CHUser, "ClickHouse user")
	f.StringVar(&a.cfg.CHPass, "ch-pass", a.cfg.CHPass, "ClickHouse password")
	f.StringVar(&a.cfg.CHDB, "ch-db", a.cfg.CHDB, "ClickHouse database")
	f.StringVar(&a.cfg.CHTable, "ch-table", a.cfg.CHTable, "ClickHouse table")
	f.BoolVar(&a.cfg.CHSecure, "ch-secure", a.cfg.CHSecure, "Use TLS to ClickHouse")
	f.IntVar(&a.cfg.CHBatchSize, "ch-batch-size", a.cfg.CHBatchSize, "ClickHouse insert batch size")

	_ = f.MarkHidden("min-accr")
	_ = f.MarkHidden("asc")

	root.AddCommand(a.serveCmd(), a.presetsCmd())
	return root
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the directory as a read-only JSON API",
		Long: `Loads the CSV once and answers queries over HTTP.

Endpoints:
  GET /institutions?category=&ownership=&lga=&course=&min_accreditation=&max_tuition=&sort_by=&reverse=&top=
  GET /health
  GET /run`,
		Args: cobra.NoArgs,
		RunE: a.runServe,
	}
	cmd.Flags().IntVar(&a.cfg.Port, "port", a.cfg.Port, "HTTP port")
	return cmd
}

func (a *app) presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the presets defined in the presets file",
		Args:  cobra.NoArgs,
		RunE:  a.listPresets,
	}
}

func (a *app) requireCSV() error {
	if strings.TrimSpace(a.cfg.CSV) == "" {
		return usageError{errors.New("--csv is required (or set INSTDIR_CSV)")}
	}
	return nil
}

func (a *app) runQuery(cmd *cobra.Command, args []string) error {
	q, format, err := a.buildQuery(cmd)
	if err != nil {
		return usageError{err}
	}
	if err := a.requireCSV(); err != nil {
		return err
	}

	run := NewRunContext(time.Now())
	m := NewMetrics(run.Start, version, commit, buildDate)

	dir, rep, err := LoadFile(a.cfg.CSV, a.log)
	if err != nil {
		return err
	}
	m.Loaded(rep)

	start := time.Now()
	rows, err := Execute(dir, q)
	if err != nil {
		return usageError{err}
	}
	m.Query(len(rows), time.Since(start))
	a.log.Debugf("query criteria=[%s] sort_by=%s reverse=%v top=%d matched=%d", q.Criteria, q.SortBy, q.Reverse, q.Top, len(rows))

	if err := Render(a.stdout, format, rows); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if a.cfg.ClickHouseEnabled {
		a.exportClickHouse(cmd.Context(), run, m, q, rows)
	}
	return nil
}

// buildQuery merges, lowest to highest precedence: env defaults, the
// selected preset, flags given on the command line.
func (a *app) buildQuery(cmd *cobra.Command) (Query, Format, error) {
	changed := cmd.Flags().Changed
	cfg := a.cfg

	in := cfg.CriteriaInput()
	sortName, top, reverse, formatName := cfg.SortBy, cfg.Top, cfg.Reverse, cfg.Format

	if strings.TrimSpace(cfg.Preset) != "" {
		presets, err := LoadPresets(cfg.PresetsFile)
		if err != nil {
			return Query{}, "", fmt.Errorf("load presets: %w", err)
		}
		p, err := LookupPreset(presets, cfg.Preset)
		if err != nil {
			return Query{}, "", err
		}
		in = overlayCriteria(p.CriteriaInput(), in)
		if p.SortBy != "" && !changed("sort-by") {
			sortName = p.SortBy
		}
		if p.Top != nil && !changed("top") {
			top = *p.Top
		}
		if !changed("reverse") && !changed("asc") {
			reverse = p.Reverse
		}
		if p.Format != "" && !changed("format") {
			formatName = p.Format
		}
	}

	crit, err := ParseCriteria(in)
	if err != nil {
		return Query{}, "", err
	}
	key, err := ParseSortKey(sortName)
	if err != nil {
		return Query{}, "", err
	}
	if top < 0 {
		return Query{}, "", ErrNegativeTop
	}
	format, err := ParseFormat(formatName)
	if err != nil {
		return Query{}, "", err
	}
	return Query{Criteria: crit, SortBy: key, Reverse: reverse, Top: top}, format, nil
}

// overlayCriteria lets every non-empty field of top replace the one in base.
func overlayCriteria(base, top CriteriaInput) CriteriaInput {
	pick := func(b, t string) string {
		if strings.TrimSpace(t) != "" {
			return t
		}
		return b
	}
	return CriteriaInput{
		Category:         pick(base.Category, top.Category),
		Ownership:        pick(base.Ownership, top.Ownership),
		LGA:              pick(base.LGA, top.LGA),
		Course:           pick(base.Course, top.Course),
		MinAccreditation: pick(base.MinAccreditation, top.MinAccreditation),
		MaxTuition:       pick(base.MaxTuition, top.MaxTuition),
	}
}

func (a *app) exportClickHouse(ctx context.Context, run RunContext, m *Metrics, q Query, rows []Institution) {
	ctxInit, cancel := context.WithTimeout(ctx, 20*time.Second)
	ch, err := NewClickHouseClient(ctxInit, a.cfg.ClickHouse(), a.log)
	cancel()
	if err != nil {
		a.log.Errorf("clickhouse init failed (skipping export): %v", err)
		return
	}
	defer ch.Close()

	w := NewClickHouseWriter(ClickHouseWriterConfig{
		Table:     ch.Table(),
		BatchSize: a.cfg.CHBatchSize,
	}, ch.NativeConn(), run, m, a.log.With("run_id", run.ID))

	if err := w.Export(ctx, q, Views(rows)); err != nil {
		a.log.Errorf("clickhouse export incomplete: %v", err)
		return
	}
	a.log.Infof("exported rows=%d run_id=%s to %s.%s", len(rows), run.ID, ch.Database(), ch.Table())
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	if err := a.requireCSV(); err != nil {
		return err
	}
	if a.cfg.Port <= 0 || a.cfg.Port > 65535 {
		return usageError{fmt.Errorf("invalid port %d", a.cfg.Port)}
	}

	run := NewRunContext(time.Now())
	m := NewMetrics(run.Start, version, commit, buildDate)

	dir, rep, err := LoadFile(a.cfg.CSV, a.log)
	if err != nil {
		return err
	}
	m.Loaded(rep)

	httpSrv := NewHTTPServer(HTTPConfig{
		Addr: fmt.Sprintf(":%d", a.cfg.Port),
		Log:  a.log.With("run_id", run.ID),
		Dir:  dir,
		Run:  run,
		M:    m,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		a.log.Infof("http listening on http://localhost:%d run_id=%s", a.cfg.Port, run.ID)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// graceful shutdown
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.log.Infof("shutting down...")
	if err := httpSrv.Shutdown(shCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.log.Infof("bye")
	return nil
}

func (a *app) listPresets(cmd *cobra.Command, args []string) error {
	presets, err := LoadPresets(a.cfg.PresetsFile)
	if err != nil {
		return fmt.Errorf("load presets: %w", err)
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		q, err := presets[name].Query()
		if err != nil {
			fmt.Fprintf(a.stdout, "%s\tINVALID: %v\n", name, err)
			continue
		}
		fmt.Fprintf(a.stdout, "%s\tfilters=[%s] sort_by=%s reverse=%v top=%d\n", name, q.Criteria, q.SortBy, q.Reverse, q.Top)
	}
	return nil
}
