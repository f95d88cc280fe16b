package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Format string

const (
	FormatList  Format = "list"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

var ErrUnknownFormat = errors.New("unknown output format")

const noMatchMessage = "No institutions matched your criteria."

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatList, nil
	case FormatList, FormatTable, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("%w %q (want list|table|json)", ErrUnknownFormat, s)
}

// InstitutionView is the serialised shape shared by the json renderer, the
// HTTP API and the ClickHouse export.
type InstitutionView struct {
	Position      int       `json:"position"`
	Name          string    `json:"name"`
	Category      Category  `json:"category"`
	Ownership     Ownership `json:"ownership"`
	LGA           string    `json:"lga"`
	Courses       []string  `json:"courses"`
	Accreditation float64   `json:"accreditation_score"`
	Tuition       float64   `json:"tuition_avg"`
	Population    int       `json:"student_population"`
	RankScore     float64   `json:"rank_score"`
}

func Views(rows []Institution) []InstitutionView {
	out := make([]InstitutionView, len(rows))
	for i, inst := range rows {
		courses := inst.Courses()
		if courses == nil {
			courses = []string{}
		}
		out[i] = InstitutionView{
			Position:      i + 1,
			Name:          inst.Name(),
			Category:      inst.Category(),
			Ownership:     inst.Ownership(),
			LGA:           inst.LGA(),
			Courses:       courses,
			Accreditation: inst.Accreditation(),
			Tuition:       inst.Tuition(),
			Population:    inst.Population(),
			RankScore:     roundTo(inst.RankScore(), 6),
		}
	}
	return out
}

func Render(w io.Writer, format Format, rows []Institution) error {
	switch format {
	case FormatList, "":
		return renderList(w, rows)
	case FormatTable:
		return renderTable(w, rows)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(Views(rows))
	}
	return fmt.Errorf("%w %q", ErrUnknownFormat, format)
}

func renderList(w io.Writer, rows []Institution) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, noMatchMessage)
		return err
	}
	for i, inst := range rows {
		if _, err := fmt.Fprintf(w, "%2d. %s • RankScore %.3f\n", i+1, inst.Line(), inst.RankScore()); err != nil {
			return err
		}
	}
	return nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numStyle    = cellStyle.Align(lipgloss.Right)
)

// numeric columns in the table renderer
var rightAligned = map[int]bool{0: true, 5: true, 6: true, 7: true, 8: true}

func renderTable(w io.Writer, rows []Institution) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, noMatchMessage)
		return err
	}
	body := make([][]string, len(rows))
	for i, inst := range rows {
		body[i] = []string{
			strconv.Itoa(i + 1),
			inst.Name(),
			titleCase(inst.Category().Label()),
			titleCase(string(inst.Ownership())),
			inst.LGA(),
			fmt.Sprintf("%.0f", inst.Accreditation()),
			formatNaira(inst.Tuition()),
			formatCount(inst.Population()),
			fmt.Sprintf("%.3f", inst.RankScore()),
		}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Name", "Category", "Ownership", "LGA", "Accreditation", "Tuition", "Students", "Rank").
		Rows(body...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case rightAligned[col]:
				return numStyle
			default:
				return cellStyle
			}
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// cases.Caser keeps state between calls, so each call gets its own.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func formatNaira(v float64) string {
	return "₦" + humanize.Commaf(math.Round(v))
}

func formatCount(n int) string {
	return humanize.Comma(int64(n))
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
