package export

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/JaimeStill/screener/internal/batch"
	"github.com/JaimeStill/screener/internal/compare"
	"github.com/JaimeStill/screener/internal/rules"
)

// WriteSummary prints s as an aligned text table.
func WriteSummary(w io.Writer, s batch.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "documents\t%d/%d\t(%.1f%%)\n", s.Completed, s.Total, s.Percent)
	fmt.Fprintf(tw, "batches\t%d/%d\t\n", s.CompletedBatches, s.Batches)
	fmt.Fprintf(tw, "agreements\t%d\t(%.1f%%)\n", s.Agreements, 100*s.AgreementRate)
	fmt.Fprintf(tw, "disagreements\t%d\t\n", s.Disagreements)
	fmt.Fprintf(tw, "errors\t%d\t\n", s.Errors)

	for _, p := range compare.Priorities() {
		fmt.Fprintf(tw, "priority %s\t%d\t\n", p, s.Priorities[p])
	}

	names := make([]string, 0, len(s.Classifiers))
	for name := range s.Classifiers {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		cs := s.Classifiers[name]
		fmt.Fprintf(tw, "%s\taccept %d reject %d uncertain %d errors %d\tavg %s\n",
			name,
			cs.Decisions[rules.Accept], cs.Decisions[rules.Reject], cs.Decisions[rules.Uncertain],
			cs.Errors, cs.AvgDuration,
		)
	}

	return tw.Flush()
}
