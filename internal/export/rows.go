package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/JaimeStill/screener/internal/compare"
	"github.com/JaimeStill/screener/internal/criteria"
)

// Row is one document's comparison flattened for spreadsheets.
type Row struct {
	DocumentID        string
	Title             string
	PrimaryDecision   string
	PrimaryRule       string
	PrimaryEntity     string
	PrimaryError      string
	SecondaryDecision string
	SecondaryRule     string
	SecondaryEntity   string
	SecondaryError    string
	Agreement         bool
	Priority          compare.Priority
	// Criteria holds "<primary>/<secondary>" verdicts keyed by criterion.
	Criteria map[criteria.Criterion]string
}

// Rows flattens results in order.
func Rows(results []compare.DualResult) []Row {
	rows := make([]Row, 0, len(results))
	for _, r := range results {
		row := Row{
			DocumentID:        r.DocumentID,
			Title:             r.Title,
			PrimaryDecision:   r.Primary.Decision(),
			PrimaryError:      r.Primary.Error,
			SecondaryDecision: r.Secondary.Decision(),
			SecondaryError:    r.Secondary.Error,
			Agreement:         r.Agreement,
			Priority:          r.Priority,
			Criteria:          make(map[criteria.Criterion]string, len(criteria.Required())),
		}
		if r.Primary.OK() {
			row.PrimaryRule = string(r.Primary.Result.Rule)
			row.PrimaryEntity = r.Primary.Result.Entity.Entity
		}
		if r.Secondary.OK() {
			row.SecondaryRule = string(r.Secondary.Result.Rule)
			row.SecondaryEntity = r.Secondary.Result.Entity.Entity
		}
		for _, c := range criteria.Required() {
			row.Criteria[c] = verdict(r.Primary, c) + "/" + verdict(r.Secondary, c)
		}
		rows = append(rows, row)
	}
	return rows
}

func verdict(o compare.Outcome, c criteria.Criterion) string {
	if !o.OK() {
		return "ERROR"
	}
	v, ok := o.Result.Assessments.Verdict(c)
	if !ok {
		return "MISSING"
	}
	return string(v)
}

func header() []string {
	h := []string{
		"document_id", "title",
		"primary_decision", "primary_rule", "primary_entity", "primary_error",
		"secondary_decision", "secondary_rule", "secondary_entity", "secondary_error",
		"agreement", "priority",
	}
	for _, c := range criteria.Required() {
		h = append(h, string(c))
	}
	return h
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range rows {
		record := []string{
			r.DocumentID, r.Title,
			r.PrimaryDecision, r.PrimaryRule, r.PrimaryEntity, r.PrimaryError,
			r.SecondaryDecision, r.SecondaryRule, r.SecondaryEntity, r.SecondaryError,
			strconv.FormatBool(r.Agreement), string(r.Priority),
		}
		for _, c := range criteria.Required() {
			record = append(record, r.Criteria[c])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", r.DocumentID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes rows to path.
func WriteCSVFile(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create rows file: %w", err)
	}

	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
