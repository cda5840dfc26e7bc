// Package documents defines the screening input record and reads corpora
// from JSON or JSON Lines files.
package documents

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Document is one immutable screening input.
type Document struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Body            string   `json:"body"`
	Year            *int     `json:"year,omitempty"`
	Authors         []string `json:"authors,omitempty"`
	Journal         string   `json:"journal,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	DOI             string   `json:"doi,omitempty"`
	PublicationType string   `json:"publication_type,omitempty"`
	Source          string   `json:"source,omitempty"`
}

type wire struct {
	ID              string          `json:"id"`
	PaperID         string          `json:"paper_id"`
	Title           string          `json:"title"`
	Body            string          `json:"body"`
	Abstract        string          `json:"abstract"`
	Year            json.RawMessage `json:"year"`
	Authors         []string        `json:"authors"`
	Journal         string          `json:"journal"`
	Keywords        []string        `json:"keywords"`
	DOI             string          `json:"doi"`
	PublicationType string          `json:"publication_type"`
	Source          string          `json:"source"`
}

// UnmarshalJSON accepts paper_id and abstract as aliases for id and body,
// and a year given as either a number or a numeric string.
func (d *Document) UnmarshalJSON(data []byte) error {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*d = Document{
		ID:              strings.TrimSpace(firstNonEmpty(w.ID, w.PaperID)),
		Title:           w.Title,
		Body:            firstNonEmpty(w.Body, w.Abstract),
		Authors:         w.Authors,
		Journal:         w.Journal,
		Keywords:        w.Keywords,
		DOI:             w.DOI,
		PublicationType: w.PublicationType,
		Source:          w.Source,
	}

	year, err := parseYear(w.Year)
	if err != nil {
		return fmt.Errorf("document %s: %w", d.ID, err)
	}
	d.Year = year
	return nil
}

func parseYear(raw json.RawMessage) (*int, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" || s == `""` {
		return nil, nil
	}
	s = strings.Trim(s, `"`)

	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid year %s", raw)
	}
	return &y, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
