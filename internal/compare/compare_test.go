package compare_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/JaimeStill/screener/internal/compare"
	"github.com/JaimeStill/screener/internal/documents"
	"github.com/JaimeStill/screener/internal/rules"
)

type classifierFunc struct {
	name string
	fn   func(ctx context.Context, doc documents.Document) (*rules.Result, error)
}

func (c classifierFunc) Name() string { return c.name }

func (c classifierFunc) Classify(ctx context.Context, doc documents.Document) (*rules.Result, error) {
	return c.fn(ctx, doc)
}

func decided(name string, d rules.Decision) classifierFunc {
	return classifierFunc{name: name, fn: func(context.Context, documents.Document) (*rules.Result, error) {
		return &rules.Result{Decision: d}, nil
	}}
}

func failing(name string, err error) classifierFunc {
	return classifierFunc{name: name, fn: func(context.Context, documents.Document) (*rules.Result, error) {
		return nil, err
	}}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var doc = documents.Document{ID: "d-1", Title: "A paper"}

func TestClassifyBoth(t *testing.T) {
	tests := []struct {
		name          string
		primary       compare.Classifier
		secondary     compare.Classifier
		wantAgreement bool
		wantPriority  compare.Priority
	}{
		{"agree accept", decided("p", rules.Accept), decided("s", rules.Accept), true, compare.PriorityLow},
		{"agree uncertain", decided("p", rules.Uncertain), decided("s", rules.Uncertain), true, compare.PriorityLow},
		{"accept vs reject", decided("p", rules.Accept), decided("s", rules.Reject), false, compare.PriorityHigh},
		{"uncertain vs accept", decided("p", rules.Uncertain), decided("s", rules.Accept), false, compare.PriorityHigh},
		{"reject vs uncertain", decided("p", rules.Reject), decided("s", rules.Uncertain), false, compare.PriorityMedium},
		{"primary error", failing("p", errors.New("timeout")), decided("s", rules.Accept), false, compare.PriorityMedium},
		{"both error", failing("p", errors.New("a")), failing("s", errors.New("b")), false, compare.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := compare.New(tt.primary, tt.secondary, 3, discard())
			got := c.ClassifyBoth(context.Background(), doc)

			if got.Agreement != tt.wantAgreement {
				t.Errorf("Agreement = %v, want %v", got.Agreement, tt.wantAgreement)
			}
			if got.Priority != tt.wantPriority {
				t.Errorf("Priority = %s, want %s", got.Priority, tt.wantPriority)
			}
			if got.DocumentID != doc.ID || got.Worker != 3 {
				t.Errorf("record fields = %+v", got)
			}
		})
	}
}

func TestErrorOutcomeIsNotUncertain(t *testing.T) {
	c := compare.New(failing("p", errors.New("connection refused")), decided("s", rules.Uncertain), 0, discard())
	got := c.ClassifyBoth(context.Background(), doc)

	if got.Primary.Status != compare.StatusError || got.Primary.Result != nil {
		t.Errorf("primary = %+v, want error outcome without result", got.Primary)
	}
	if got.Primary.Error != "connection refused" {
		t.Errorf("Error = %q", got.Primary.Error)
	}
	if got.Agreement {
		t.Error("an error outcome must never agree")
	}
	if !got.Errored() {
		t.Error("Errored should report true")
	}
}

func TestClassifyBothRunsConcurrently(t *testing.T) {
	started := make(chan struct{}, 2)
	both := func(name string) classifierFunc {
		return classifierFunc{name: name, fn: func(ctx context.Context, _ documents.Document) (*rules.Result, error) {
			started <- struct{}{}
			deadline := time.After(2 * time.Second)
			for len(started) < 2 {
				select {
				case <-deadline:
					return nil, errors.New("other classifier never started")
				case <-time.After(time.Millisecond):
				}
			}
			return &rules.Result{Decision: rules.Accept}, nil
		}}
	}

	c := compare.New(both("p"), both("s"), 0, discard())
	got := c.ClassifyBoth(context.Background(), doc)
	if !got.Agreement {
		t.Errorf("classifiers did not overlap: %+v / %+v", got.Primary, got.Secondary)
	}
}

func TestFailureDoesNotCancelOtherSide(t *testing.T) {
	slow := classifierFunc{name: "s", fn: func(ctx context.Context, _ documents.Document) (*rules.Result, error) {
		time.Sleep(20 * time.Millisecond)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return &rules.Result{Decision: rules.Reject}, nil
	}}

	c := compare.New(failing("p", errors.New("boom")), slow, 0, discard())
	got := c.ClassifyBoth(context.Background(), doc)

	if !got.Secondary.OK() {
		t.Errorf("secondary = %+v, want ok", got.Secondary)
	}
}

func TestPanicBecomesErrorOutcome(t *testing.T) {
	panicky := classifierFunc{name: "p", fn: func(context.Context, documents.Document) (*rules.Result, error) {
		panic("nil map")
	}}

	c := compare.New(panicky, decided("s", rules.Accept), 0, discard())
	got := c.ClassifyBoth(context.Background(), doc)

	if got.Primary.Status != compare.StatusError || got.Primary.Classifier != "p" {
		t.Errorf("primary = %+v", got.Primary)
	}
	if !got.Secondary.OK() {
		t.Error("secondary should be unaffected")
	}
}

func TestOutcomeDecision(t *testing.T) {
	if got := (compare.Outcome{Status: compare.StatusError}).Decision(); got != "ERROR" {
		t.Errorf("Decision = %q", got)
	}
	ok := compare.Outcome{Status: compare.StatusOK, Result: &rules.Result{Decision: rules.Reject}}
	if got := ok.Decision(); got != "REJECT" {
		t.Errorf("Decision = %q", got)
	}
}
