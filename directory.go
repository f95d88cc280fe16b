package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
)

// Row is one raw CSV record. Every cell is kept as text so that a bad value
// fails only its own row during Load.
type Row struct {
	Name          string `csv:"name"`
	Category      string `csv:"category"`
	Ownership     string `csv:"ownership"`
	LGA           string `csv:"lga"`
	Courses       string `csv:"courses"`
	Tuition       string `csv:"tuition_avg"`
	Accreditation string `csv:"accreditation_score"`
	Population    string `csv:"student_population"`

	// Missing lists required columns absent from the header or cut off by a
	// short record.
	Missing []string `csv:"-"`
	// Malformed is set when the record itself could not be parsed.
	Malformed error `csv:"-"`
}

// RequiredColumns are the header names a dataset must carry.
var RequiredColumns = []string{
	"name", "category", "ownership", "lga", "courses",
	"tuition_avg", "accreditation_score", "student_population",
}

const courseSeparator = "|"

// ReadRows decodes a CSV stream with a header line. Ragged records are padded
// or cut to the header width instead of aborting the whole read; a row whose
// required cells are absent carries them in Missing, and a record that cannot
// be parsed carries the parse error in Malformed. Both fail in Load.
func ReadRows(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	records, parseErrs := readRecords(data)
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv: missing header line")
	}
	if parseErrs[0] != nil {
		return nil, fmt.Errorf("read csv header: %w", parseErrs[0])
	}

	header := make([]string, len(records[0]))
	pos := make(map[string]int, len(header))
	for i, h := range records[0] {
		header[i] = normalizeHeader(h)
		if _, dup := pos[header[i]]; !dup {
			pos[header[i]] = i
		}
	}

	body := make([][]string, 0, len(records))
	body = append(body, header)
	missing := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		missing = append(missing, missingColumns(pos, len(rec)))
		body = append(body, fitWidth(rec, len(header)))
	}

	var rows []Row
	if err := gocsv.UnmarshalCSV(&recordReader{records: body}, &rows); err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	if len(rows) != len(missing) {
		return nil, fmt.Errorf("decode csv: got %d rows from %d records", len(rows), len(missing))
	}
	for i := range rows {
		if perr := parseErrs[i+1]; perr != nil {
			rows[i].Malformed = perr
			continue
		}
		rows[i].Missing = missing[i]
	}
	return rows, nil
}

// readRecords parses data record by record. A record that fails to parse
// yields a nil record and its error; reading resumes on the line after the
// one the bad record started on, so an unterminated quote costs one row.
func readRecords(data []byte) ([][]string, []error) {
	var (
		records [][]string
		errs    []error
	)
	for len(data) > 0 {
		cr := csv.NewReader(bytes.NewReader(data))
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true

		var consumed int64
		for {
			rec, err := cr.Read()
			if err == io.EOF {
				return records, errs
			}
			if err != nil {
				var pe *csv.ParseError
				if errors.As(err, &pe) {
					err = pe.Err
				}
				records = append(records, nil)
				errs = append(errs, err)
				break
			}
			records = append(records, rec)
			errs = append(errs, nil)
			consumed = cr.InputOffset()
		}

		rest := bytes.TrimLeft(data[consumed:], "\r\n")
		nl := bytes.IndexByte(rest, '\n')
		if nl < 0 {
			break
		}
		data = rest[nl+1:]
	}
	return records, errs
}

// missingColumns reports required columns that a record of width n does not
// reach, in RequiredColumns order.
func missingColumns(pos map[string]int, n int) []string {
	var out []string
	for _, col := range RequiredColumns {
		if i, ok := pos[col]; !ok || i >= n {
			out = append(out, col)
		}
	}
	return out
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

func fitWidth(rec []string, n int) []string {
	if len(rec) == n {
		return rec
	}
	out := make([]string, n)
	copy(out, rec)
	return out
}

// recordReader replays already-parsed records through gocsv.
type recordReader struct {
	records [][]string
	pos     int
}

func (r *recordReader) Read() ([]string, error) {
	if r.pos >= len(r.records) {
		return nil, io.EOF
	}
	rec := r.records[r.pos]
	r.pos++
	return rec, nil
}

func (r *recordReader) ReadAll() ([][]string, error) {
	out := r.records[r.pos:]
	r.pos = len(r.records)
	return out, nil
}

// RowError describes a skipped data row. Row is 1-based and excludes the header.
type RowError struct {
	Row  int
	Name string
	Err  error
}

func (e RowError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("row %d (%s): %v", e.Row, e.Name, e.Err)
	}
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

type LoadReport struct {
	Loaded  int
	Skipped []RowError
}

type Directory struct {
	inst []Institution
}

// NewDirectory keeps its own copy of inst.
func NewDirectory(inst []Institution) *Directory {
	return &Directory{inst: append([]Institution(nil), inst...)}
}

// All returns the loaded institutions in file order.
func (d *Directory) All() []Institution {
	if d == nil {
		return nil
	}
	return append([]Institution(nil), d.inst...)
}

func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.inst)
}

// Load builds one Institution per valid row. Invalid rows are skipped,
// reported and logged; they never abort the load.
func Load(rows []Row, log *Logger) (*Directory, LoadReport) {
	loaded := make([]Institution, 0, len(rows))
	var rep LoadReport
	for i, row := range rows {
		inst, err := row.Institution()
		if err != nil {
			re := RowError{Row: i + 1, Name: strings.TrimSpace(row.Name), Err: err}
			rep.Skipped = append(rep.Skipped, re)
			log.Warnf("skipping %v", re)
			continue
		}
		loaded = append(loaded, inst)
	}
	rep.Loaded = len(loaded)
	return NewDirectory(loaded), rep
}

// LoadFile opens path and loads it. File-level failures are returned as
// errors; row-level failures only appear in the report.
func LoadFile(path string, log *Logger) (*Directory, LoadReport, error) {
	if strings.TrimSpace(path) == "" {
		return nil, LoadReport{}, errors.New("csv path is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadReport{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	rows, err := ReadRows(f)
	if err != nil {
		return nil, LoadReport{}, fmt.Errorf("%s: %w", path, err)
	}
	d, rep := Load(rows, log)
	log.Infof("loaded institutions=%d skipped=%d from %s", rep.Loaded, len(rep.Skipped), path)
	return d, rep, nil
}

// Institution validates the row and converts it.
func (r Row) Institution() (Institution, error) {
	if r.Malformed != nil {
		return Institution{}, invalid("malformed csv record: %v", r.Malformed)
	}
	if len(r.Missing) > 0 {
		return Institution{}, invalid("missing required column(s): %s", strings.Join(r.Missing, ", "))
	}
	tuition, err := parseNumber("tuition_avg", r.Tuition)
	if err != nil {
		return Institution{}, err
	}
	accr, err := parseNumber("accreditation_score", r.Accreditation)
	if err != nil {
		return Institution{}, err
	}
	pop, err := parseCount("student_population", r.Population)
	if err != nil {
		return Institution{}, err
	}
	return NewInstitution(InstitutionInput{
		Name:          r.Name,
		Category:      r.Category,
		Ownership:     r.Ownership,
		LGA:           r.LGA,
		Courses:       strings.Split(r.Courses, courseSeparator),
		Accreditation: accr,
		Tuition:       tuition,
		Population:    pop,
	})
}

func parseNumber(col, s string) (float64, error) {
	v := cleanNumber(s)
	if v == "" {
		return 0, invalid("%s is required", col)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, invalid("%s %q is not a number", col, s)
	}
	return f, nil
}

func parseCount(col, s string) (int, error) {
	f, err := parseNumber(col, s)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, invalid("%s %q is not a whole number", col, s)
	}
	return int(f), nil
}

// cleanNumber strips surrounding space, thousands separators and a leading
// naira sign.
func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₦")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "_", "")
	return strings.TrimSpace(s)
}
