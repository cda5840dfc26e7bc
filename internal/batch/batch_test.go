package batch_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/JaimeStill/screener/internal/batch"
	"github.com/JaimeStill/screener/internal/checkpoint"
	"github.com/JaimeStill/screener/internal/compare"
	"github.com/JaimeStill/screener/internal/documents"
	"github.com/JaimeStill/screener/internal/rules"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func corpus(n int) []documents.Document {
	docs := make([]documents.Document, n)
	for i := range docs {
		docs[i] = documents.Document{ID: fmt.Sprintf("doc-%02d", i), Title: fmt.Sprintf("Paper %d", i)}
	}
	return docs
}

var processedAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

// fake produces a deterministic DualResult from the document identifier.
type fake struct {
	calls  *atomic.Int32
	busy   atomic.Bool
	shared *atomic.Int32
	delay  func(doc documents.Document) time.Duration
}

func (f *fake) ClassifyBoth(_ context.Context, doc documents.Document) compare.DualResult {
	if !f.busy.CompareAndSwap(false, true) {
		f.shared.Add(1)
	}
	defer f.busy.Store(false)

	f.calls.Add(1)
	if f.delay != nil {
		time.Sleep(f.delay(doc))
	}

	decisions := []rules.Decision{rules.Accept, rules.Reject, rules.Uncertain}
	n := int(doc.ID[len(doc.ID)-1] - '0')

	primary := compare.Outcome{Classifier: "primary", Status: compare.StatusOK,
		Result: &rules.Result{Decision: decisions[n%3]}, Duration: time.Second}
	secondary := compare.Outcome{Classifier: "secondary", Status: compare.StatusOK,
		Result: &rules.Result{Decision: decisions[(n/2)%3]}, Duration: 3 * time.Second}
	if n == 7 {
		secondary = compare.Outcome{Classifier: "secondary", Status: compare.StatusError, Error: "timeout", Duration: 3 * time.Second}
	}

	return compare.DualResult{
		DocumentID:  doc.ID,
		Title:       doc.Title,
		Primary:     primary,
		Secondary:   secondary,
		Agreement:   compare.Agree(primary, secondary),
		Priority:    compare.Prioritize(primary, secondary),
		ProcessedAt: processedAt,
	}
}

type harness struct {
	calls   atomic.Int32
	shared  atomic.Int32
	workers sync.Map
	delay   func(doc documents.Document) time.Duration
}

func (h *harness) factory() batch.ComparatorFactory {
	return func(worker int) (batch.Comparer, error) {
		if _, loaded := h.workers.LoadOrStore(worker, true); loaded {
			return nil, fmt.Errorf("worker %d created twice", worker)
		}
		return &fake{calls: &h.calls, shared: &h.shared, delay: h.delay}, nil
	}
}

func fileStore(t *testing.T) *checkpoint.FileStore {
	t.Helper()
	store, err := checkpoint.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestPartition(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		size  int
		sizes []int
	}{
		{"even", 6, 2, []int{2, 2, 2}},
		{"remainder", 7, 3, []int{3, 3, 1}},
		{"size exceeds input", 2, 10, []int{2}},
		{"empty", 0, 3, nil},
		{"invalid size", 4, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := corpus(tt.n)
			got := batch.Partition(docs, tt.size)

			var sizes []int
			next := 0
			for i, b := range got {
				if b.Index != i {
					t.Errorf("batch %d has index %d", i, b.Index)
				}
				for _, d := range b.Documents {
					if d.ID != docs[next].ID {
						t.Fatalf("order broken at %s", d.ID)
					}
					next++
				}
				sizes = append(sizes, len(b.Documents))
			}
			if diff := cmp.Diff(tt.sizes, sizes); diff != "" {
				t.Errorf("sizes (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunPreservesInputOrder(t *testing.T) {
	docs := corpus(10)
	h := &harness{delay: func(d documents.Document) time.Duration {
		// later documents finish first
		return time.Duration(10-int(d.ID[len(d.ID)-1]-'0')) * time.Millisecond
	}}
	store := fileStore(t)
	o := batch.New(store, h.factory(), discard())

	var progress []batch.Stats
	results, err := o.Run(context.Background(), docs, batch.Options{
		BatchSize:  3,
		Workers:    4,
		RunID:      "ordered",
		OnProgress: func(s batch.Stats) { progress = append(progress, s) },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(results) != len(docs) {
		t.Fatalf("results = %d, want %d", len(results), len(docs))
	}
	for i, r := range results {
		if r.DocumentID != docs[i].ID {
			t.Errorf("results[%d] = %s, want %s", i, r.DocumentID, docs[i].ID)
		}
	}

	if len(progress) != 4 || progress[3].Completed != 10 || progress[3].CompletedBatches != 4 {
		t.Errorf("progress = %+v", progress)
	}
	if p := o.Progress(); p.Percent != 100 {
		t.Errorf("Progress().Percent = %v", p.Percent)
	}
	if diff := cmp.Diff(results, o.Results()); diff != "" {
		t.Errorf("Results() mismatch (-run +snapshot):\n%s", diff)
	}
	if h.shared.Load() != 0 {
		t.Error("a comparer was used by more than one goroutine")
	}

	if _, err := store.Load(context.Background(), "ordered"); !errors.Is(err, checkpoint.ErrNotFound) {
		t.Errorf("checkpoint should be deleted after success: %v", err)
	}
}

func TestRunWorkerPoolBounded(t *testing.T) {
	h := &harness{}
	o := batch.New(fileStore(t), h.factory(), discard())

	if _, err := o.Run(context.Background(), corpus(9), batch.Options{BatchSize: 1, Workers: 3, RunID: "pool"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	count := 0
	h.workers.Range(func(any, any) bool { count++; return true })
	if count != 3 {
		t.Errorf("comparers created = %d, want 3", count)
	}
	if h.calls.Load() != 9 {
		t.Errorf("calls = %d, want 9", h.calls.Load())
	}
}

func TestRunResumeEquivalence(t *testing.T) {
	docs := corpus(6)
	opts := batch.Options{BatchSize: 2, Workers: 1}

	baselineOpts := opts
	baselineOpts.RunID = "baseline"
	baseline, err := batch.New(fileStore(t), (&harness{}).factory(), discard()).Run(context.Background(), docs, baselineOpts)
	if err != nil {
		t.Fatalf("baseline Run: %v", err)
	}

	store := fileStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupted := opts
	interrupted.RunID = "resume"
	interrupted.OnProgress = func(batch.Stats) { cancel() }

	first := &harness{}
	partial, err := batch.New(store, first.factory(), discard()).Run(ctx, docs, interrupted)
	if !errors.Is(err, batch.ErrInterrupted) {
		t.Fatalf("interrupted Run: err = %v, want ErrInterrupted", err)
	}
	if len(partial) != 2 {
		t.Fatalf("partial results = %d, want 2", len(partial))
	}

	cp, err := store.Load(context.Background(), "resume")
	if err != nil {
		t.Fatalf("checkpoint should remain after interrupt: %v", err)
	}
	if cp.CompletedBatches != 1 || cp.TotalBatches != 3 || len(cp.Results) != 2 {
		t.Errorf("checkpoint = %d/%d batches, %d results", cp.CompletedBatches, cp.TotalBatches, len(cp.Results))
	}

	resumedOpts := opts
	resumedOpts.RunID = "resume"
	resumedOpts.RequireCheckpoint = true

	second := &harness{}
	resumed, err := batch.New(store, second.factory(), discard()).Run(context.Background(), docs, resumedOpts)
	if err != nil {
		t.Fatalf("resumed Run: %v", err)
	}

	if second.calls.Load() != 4 {
		t.Errorf("resumed run screened %d documents, want 4", second.calls.Load())
	}
	if diff := cmp.Diff(baseline, resumed); diff != "" {
		t.Errorf("resumed results differ from uninterrupted run (-want +got):\n%s", diff)
	}
	if _, err := store.Load(context.Background(), "resume"); !errors.Is(err, checkpoint.ErrNotFound) {
		t.Errorf("checkpoint should be deleted after resumed run: %v", err)
	}
}

func TestRunFinishesInFlightBatchesOnCancel(t *testing.T) {
	h := &harness{delay: func(documents.Document) time.Duration { return 50 * time.Millisecond }}
	store := fileStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(30*time.Millisecond, cancel)

	docs := corpus(6)
	results, err := batch.New(store, h.factory(), discard()).Run(ctx, docs, batch.Options{
		BatchSize: 2,
		Workers:   2,
		RunID:     "in-flight",
	})
	if !errors.Is(err, batch.ErrInterrupted) {
		t.Fatalf("err = %v, want ErrInterrupted", err)
	}

	if len(results) != 4 {
		t.Fatalf("results = %d, want 4 (both in-flight batches)", len(results))
	}
	for i, r := range results {
		if r.DocumentID != docs[i].ID {
			t.Errorf("results[%d] = %s, want %s", i, r.DocumentID, docs[i].ID)
		}
	}
	if h.calls.Load() != 4 {
		t.Errorf("documents screened = %d, want 4", h.calls.Load())
	}

	cp, err := store.Load(context.Background(), "in-flight")
	if err != nil {
		t.Fatalf("checkpoint should remain after interrupt: %v", err)
	}
	if cp.CompletedBatches != 2 || cp.TotalBatches != 3 || len(cp.Results) != 4 {
		t.Errorf("checkpoint = %d/%d batches, %d results", cp.CompletedBatches, cp.TotalBatches, len(cp.Results))
	}
}

func TestRunRequireCheckpoint(t *testing.T) {
	o := batch.New(fileStore(t), (&harness{}).factory(), discard())

	_, err := o.Run(context.Background(), corpus(2), batch.Options{
		BatchSize: 1, Workers: 1, RunID: "missing", RequireCheckpoint: true,
	})
	if !errors.Is(err, batch.ErrNoCheckpoint) {
		t.Errorf("err = %v, want ErrNoCheckpoint", err)
	}
}

// flakyStore fails every save after the first ok saves.
type flakyStore struct {
	checkpoint.Store
	ok    int32
	saves atomic.Int32
}

func (f *flakyStore) Save(ctx context.Context, cp *checkpoint.Checkpoint) error {
	if f.saves.Add(1) > f.ok {
		return errors.New("disk full")
	}
	return f.Store.Save(ctx, cp)
}

func TestRunCheckpointWriteFailure(t *testing.T) {
	inner := fileStore(t)
	store := &flakyStore{Store: inner, ok: 1}
	h := &harness{}

	results, err := batch.New(store, h.factory(), discard()).Run(context.Background(), corpus(6), batch.Options{
		BatchSize: 2, Workers: 1, RunID: "flaky",
	})
	if !errors.Is(err, batch.ErrCheckpointWrite) {
		t.Fatalf("err = %v, want ErrCheckpointWrite", err)
	}

	if len(results) != 2 {
		t.Errorf("committed results = %d, want 2", len(results))
	}
	if h.calls.Load() != 4 {
		t.Errorf("documents screened = %d, want 4 (no batch after the failed one)", h.calls.Load())
	}

	cp, err := inner.Load(context.Background(), "flaky")
	if err != nil {
		t.Fatalf("last good checkpoint missing: %v", err)
	}
	if cp.CompletedBatches != 1 {
		t.Errorf("CompletedBatches = %d, want 1", cp.CompletedBatches)
	}
}

func TestRunCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := &harness{}
	results, err := batch.New(fileStore(t), h.factory(), discard()).Run(ctx, corpus(4), batch.Options{
		BatchSize: 2, Workers: 2, RunID: "cancelled",
	})
	if !errors.Is(err, batch.ErrInterrupted) || !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want ErrInterrupted wrapping context.Canceled", err)
	}
	if len(results) != 0 || h.calls.Load() != 0 {
		t.Errorf("results = %d, calls = %d", len(results), h.calls.Load())
	}
}

func TestRunFactoryError(t *testing.T) {
	factory := func(int) (batch.Comparer, error) { return nil, errors.New("no credentials") }

	_, err := batch.New(fileStore(t), factory, discard()).Run(context.Background(), corpus(2), batch.Options{
		BatchSize: 1, Workers: 1, RunID: "factory",
	})
	if err == nil {
		t.Error("expected factory error")
	}
}

func TestRunInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts batch.Options
	}{
		{"zero batch size", batch.Options{Workers: 1, RunID: "r"}},
		{"zero workers", batch.Options{BatchSize: 1, RunID: "r"}},
		{"empty run id", batch.Options{BatchSize: 1, Workers: 1}},
		{"path run id", batch.Options{BatchSize: 1, Workers: 1, RunID: "../r"}},
	}

	o := batch.New(fileStore(t), (&harness{}).factory(), discard())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := o.Run(context.Background(), corpus(1), tt.opts); !errors.Is(err, batch.ErrInvalidOptions) {
				t.Errorf("err = %v, want ErrInvalidOptions", err)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	f := &fake{calls: new(atomic.Int32), shared: new(atomic.Int32)}
	var results []compare.DualResult
	for _, d := range corpus(10) {
		results = append(results, f.ClassifyBoth(context.Background(), d))
	}

	s := batch.Summarize(results, 20, 5, 2)

	if s.Completed != 10 || s.Total != 20 || s.Percent != 50 {
		t.Errorf("progress fields = %+v", s)
	}
	if s.Agreements+s.Disagreements+s.Errors != 10 {
		t.Errorf("outcome counts do not cover every document: %+v", s)
	}
	if s.Errors != 1 {
		t.Errorf("Errors = %d, want 1", s.Errors)
	}

	priorities := 0
	for _, n := range s.Priorities {
		priorities += n
	}
	if priorities != 10 {
		t.Errorf("priority counts = %v", s.Priorities)
	}

	primary := s.Classifiers["primary"]
	if primary.Documents != 10 || primary.AvgDuration != time.Second {
		t.Errorf("primary stats = %+v", primary)
	}
	secondary := s.Classifiers["secondary"]
	if secondary.Errors != 1 || secondary.AvgDuration != 3*time.Second {
		t.Errorf("secondary stats = %+v", secondary)
	}
	if want := float64(s.Agreements) / 10; s.AgreementRate != want {
		t.Errorf("AgreementRate = %v, want %v", s.AgreementRate, want)
	}
}
