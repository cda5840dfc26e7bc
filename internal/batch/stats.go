package batch

import (
	"time"

	"github.com/JaimeStill/screener/internal/compare"
	"github.com/JaimeStill/screener/internal/rules"
)

// Stats summarizes run progress and agreement between classifiers.
type Stats struct {
	Total            int                        `json:"total"`
	Completed        int                        `json:"completed"`
	Batches          int                        `json:"batches"`
	CompletedBatches int                        `json:"completed_batches"`
	Agreements       int                        `json:"agreements"`
	Disagreements    int                        `json:"disagreements"`
	Errors           int                        `json:"errors"`
	AgreementRate    float64                    `json:"agreement_rate"`
	Percent          float64                    `json:"percent"`
	Priorities       map[compare.Priority]int   `json:"priorities"`
	Classifiers      map[string]ClassifierStats `json:"classifiers"`
}

// ClassifierStats summarizes one classifier's outcomes.
type ClassifierStats struct {
	Documents   int                    `json:"documents"`
	Errors      int                    `json:"errors"`
	Decisions   map[rules.Decision]int `json:"decisions"`
	AvgDuration time.Duration          `json:"avg_duration_ns"`
}

// Summarize computes statistics over results. total and batches describe
// the whole run; completedBatches counts committed batches. Disagreements
// count documents where both classifiers returned different decisions;
// documents with an error outcome are counted under Errors only.
// AgreementRate is agreements over completed documents.
func Summarize(results []compare.DualResult, total, batches, completedBatches int) Stats {
	s := Stats{
		Total:            total,
		Completed:        len(results),
		Batches:          batches,
		CompletedBatches: completedBatches,
		Priorities:       make(map[compare.Priority]int, 3),
		Classifiers:      make(map[string]ClassifierStats, 2),
	}
	for _, p := range compare.Priorities() {
		s.Priorities[p] = 0
	}

	durations := make(map[string]time.Duration, 2)

	for _, r := range results {
		switch {
		case r.Agreement:
			s.Agreements++
		case r.Errored():
			s.Errors++
		default:
			s.Disagreements++
		}
		s.Priorities[r.Priority]++

		for _, o := range []compare.Outcome{r.Primary, r.Secondary} {
			cs := s.Classifiers[o.Classifier]
			if cs.Decisions == nil {
				cs.Decisions = make(map[rules.Decision]int, 3)
			}
			cs.Documents++
			if o.OK() {
				cs.Decisions[o.Result.Decision]++
			} else {
				cs.Errors++
			}
			durations[o.Classifier] += o.Duration
			s.Classifiers[o.Classifier] = cs
		}
	}

	for name, cs := range s.Classifiers {
		cs.AvgDuration = durations[name] / time.Duration(cs.Documents)
		s.Classifiers[name] = cs
	}

	if s.Completed > 0 {
		s.AgreementRate = float64(s.Agreements) / float64(s.Completed)
	}
	if s.Total > 0 {
		s.Percent = 100 * float64(s.Completed) / float64(s.Total)
	}

	return s
}
