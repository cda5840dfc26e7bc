package prompts_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JaimeStill/screener/internal/prompts"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseStage(t *testing.T) {
	for _, s := range prompts.Stages() {
		got, err := prompts.ParseStage(string(s))
		if err != nil || got != s {
			t.Errorf("ParseStage(%q) = %q, %v", s, got, err)
		}
	}

	if _, err := prompts.ParseStage("classify"); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("unknown stage err = %v", err)
	}
}

func TestDefaults(t *testing.T) {
	ps, err := prompts.New("", discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	for _, stage := range prompts.Stages() {
		t.Run(string(stage), func(t *testing.T) {
			inst, err := ps.Instructions(ctx, stage)
			if err != nil || inst == "" {
				t.Fatalf("Instructions = %q, %v", inst, err)
			}
			spec, err := ps.Spec(ctx, stage)
			if err != nil || !strings.Contains(spec, "criteria_evaluation") {
				t.Fatalf("Spec = %q, %v", spec, err)
			}
		})
	}

	if _, err := ps.Instructions(ctx, prompts.Stage("bogus")); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("bogus stage err = %v", err)
	}
}

func TestFileOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "assess.txt"), []byte("  custom assess instructions \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "followup.md"), []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	ps, err := prompts.New(dir, discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()

	got, _ := ps.Instructions(ctx, prompts.StageAssess)
	if got != "custom assess instructions" {
		t.Errorf("override not applied: %q", got)
	}

	def, _ := prompts.Instructions(prompts.StageFollowUp)
	if got, _ := ps.Instructions(ctx, prompts.StageFollowUp); got != def {
		t.Error("empty override file should fall back to default")
	}

	spec, _ := prompts.Spec(prompts.StageAssess)
	if got, _ := ps.Spec(ctx, prompts.StageAssess); got != spec {
		t.Error("spec should not be overridable")
	}
}
