package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/JaimeStill/screener/internal/entities"
	"github.com/JaimeStill/screener/internal/oracle"
	"github.com/JaimeStill/screener/internal/prompts"
	"github.com/JaimeStill/screener/internal/rules"
)

// Runtime bundles the dependencies that workflow nodes require.
// A Runtime holds one Oracle and must not be shared between goroutines
// that screen documents concurrently.
type Runtime struct {
	Oracle      oracle.Oracle
	Prompts     prompts.System
	Matcher     *entities.Matcher
	Engine      *rules.Engine
	Logger      *slog.Logger
	CallTimeout time.Duration
	FollowUp    bool
}

// call sends one prompt to the oracle under the configured per-call timeout.
func (rt *Runtime) call(ctx context.Context, prompt string) (string, error) {
	if rt.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rt.CallTimeout)
		defer cancel()
	}
	return rt.Oracle.Assess(ctx, prompt)
}
