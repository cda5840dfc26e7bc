// Package prompts supplies the instruction and response-format text sent to
// classifiers at each screening stage. Instructions can be overridden from a
// directory of text files; response specifications are fixed.
package prompts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// System resolves prompt text for a stage.
type System interface {
	Instructions(ctx context.Context, stage Stage) (string, error)
	Spec(ctx context.Context, stage Stage) (string, error)
}

type system struct {
	overrides map[Stage]string
}

// New creates a prompt system. When dir is non-empty, a file named
// <stage>.txt or <stage>.md in dir replaces that stage's default
// instructions. Overrides are read once; the result is read-only.
func New(dir string, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "prompts")
	s := &system{overrides: make(map[Stage]string)}

	if dir == "" {
		return s, nil
	}

	for _, stage := range stages {
		for _, ext := range []string{".txt", ".md"} {
			path := filepath.Join(dir, string(stage)+ext)
			data, err := os.ReadFile(path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("read prompt override %s: %w", path, err)
			}

			text := strings.TrimSpace(string(data))
			if text == "" {
				continue
			}
			s.overrides[stage] = text
			logger.Info("prompt override loaded", "stage", stage, "path", path)
			break
		}
	}

	return s, nil
}

func (s *system) Instructions(_ context.Context, stage Stage) (string, error) {
	if text, ok := s.overrides[stage]; ok {
		return text, nil
	}
	return Instructions(stage)
}

func (s *system) Spec(_ context.Context, stage Stage) (string, error) {
	return Spec(stage)
}
