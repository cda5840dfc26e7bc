// Package export writes run results as a JSON report and as flattened
// per-document rows.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/JaimeStill/screener/internal/batch"
	"github.com/JaimeStill/screener/internal/compare"
)

// Metadata describes how a run was executed.
type Metadata struct {
	Workers           int           `json:"workers"`
	BatchSize         int           `json:"batch_size"`
	Classifiers       []string      `json:"classifiers"`
	DictionaryVersion string        `json:"dictionary_version,omitempty"`
	FollowUp          bool          `json:"follow_up"`
	Elapsed           time.Duration `json:"elapsed_ns"`
	// Throughput is documents per minute screened in this invocation.
	Throughput float64 `json:"throughput_per_minute"`
}

// Report is the exported result of one run.
type Report struct {
	RunID       string               `json:"run_id"`
	GeneratedAt time.Time            `json:"generated_at"`
	Metadata    Metadata             `json:"metadata"`
	Stats       batch.Stats          `json:"stats"`
	Results     []compare.DualResult `json:"results"`
}

// Throughput returns documents per minute, or zero for an empty interval.
func Throughput(documents int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(documents) / elapsed.Minutes()
}

// Write encodes r as indented JSON.
func Write(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteFile writes r to path, replacing any existing file.
func WriteFile(path string, r *Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	if err := Write(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile decodes a report written by WriteFile.
func ReadFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", path, err)
	}
	return &r, nil
}

// Restat recomputes statistics from the report's results. Totals recorded
// in the report are kept when they cover at least the stored results.
func Restat(r *Report) batch.Stats {
	total := max(r.Stats.Total, len(r.Results))
	batches := r.Stats.Batches
	completed := r.Stats.CompletedBatches
	if batches == 0 && r.Metadata.BatchSize > 0 {
		batches = (total + r.Metadata.BatchSize - 1) / r.Metadata.BatchSize
		completed = (len(r.Results) + r.Metadata.BatchSize - 1) / r.Metadata.BatchSize
	}
	return batch.Summarize(r.Results, total, batches, completed)
}
