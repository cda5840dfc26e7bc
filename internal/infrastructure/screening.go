package infrastructure

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/screener/internal/batch"
	"github.com/JaimeStill/screener/internal/compare"
	"github.com/JaimeStill/screener/internal/config"
	"github.com/JaimeStill/screener/internal/entities"
	"github.com/JaimeStill/screener/internal/oracle"
	"github.com/JaimeStill/screener/internal/prompts"
	"github.com/JaimeStill/screener/internal/rules"
	"github.com/JaimeStill/screener/internal/workflow"
)

// OracleBuilder creates one oracle handle for a classifier.
type OracleBuilder func(ctx context.Context, cfg *config.ClassifierConfig) (oracle.Oracle, error)

// NewOracle builds an oracle for cfg.Provider.
func NewOracle(ctx context.Context, cfg *config.ClassifierConfig) (oracle.Oracle, error) {
	switch cfg.Provider {
	case config.ProviderAgent:
		return oracle.NewAgentClient(cfg.Name, cfg.AgentConfig())
	case config.ProviderGemini:
		return oracle.NewGeminiClient(ctx, cfg.Name, oracle.GeminiConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: float32(cfg.Temperature),
		})
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.Provider)
	}
}

// Screening holds the read-only dependencies shared by every worker: the
// entity matcher, rule engine, and prompt text. Oracles are not shared;
// Factory builds fresh ones per worker.
type Screening struct {
	Matcher  *entities.Matcher
	Engine   *rules.Engine
	Prompts  prompts.System
	FollowUp bool

	classifiers config.ClassifiersConfig
	build       OracleBuilder
	logger      *slog.Logger
}

// NewScreening loads the entity dictionary and prompt overrides named in
// cfg. An empty dictionary path selects the built-in dictionary.
func NewScreening(cfg *config.Config, build OracleBuilder, logger *slog.Logger) (*Screening, error) {
	dict := entities.Default()
	if cfg.Run.Entities != "" {
		loaded, err := entities.Load(cfg.Run.Entities)
		if err != nil {
			return nil, err
		}
		dict = loaded
	}

	matcher, err := entities.NewMatcher(dict)
	if err != nil {
		return nil, err
	}

	ps, err := prompts.New(cfg.Run.PromptsDir, logger)
	if err != nil {
		return nil, err
	}

	if build == nil {
		build = NewOracle
	}

	return &Screening{
		Matcher:     matcher,
		Engine:      rules.New(cfg.Rules, logger),
		Prompts:     ps,
		FollowUp:    cfg.Run.FollowUpEnabled(),
		classifiers: cfg.Classifiers,
		build:       build,
		logger:      logger,
	}, nil
}

// ClassifierNames returns the primary and secondary classifier names.
func (s *Screening) ClassifierNames() []string {
	return []string{s.classifiers.Primary.Name, s.classifiers.Secondary.Name}
}

// Factory returns a batch.ComparatorFactory that gives each worker its own
// pair of oracle handles.
func (s *Screening) Factory(ctx context.Context) batch.ComparatorFactory {
	return func(worker int) (batch.Comparer, error) {
		primary, err := s.runtime(ctx, &s.classifiers.Primary, worker)
		if err != nil {
			return nil, err
		}
		secondary, err := s.runtime(ctx, &s.classifiers.Secondary, worker)
		if err != nil {
			return nil, err
		}

		return compare.New(
			compare.NewWorkflowClassifier(primary),
			compare.NewWorkflowClassifier(secondary),
			worker,
			s.logger,
		), nil
	}
}

func (s *Screening) runtime(ctx context.Context, cfg *config.ClassifierConfig, worker int) (*workflow.Runtime, error) {
	o, err := s.build(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("worker %d: classifier %s: %w", worker, cfg.Name, err)
	}

	return &workflow.Runtime{
		Oracle:      o,
		Prompts:     s.Prompts,
		Matcher:     s.Matcher,
		Engine:      s.Engine,
		Logger:      s.logger.With("classifier", cfg.Name, "worker", worker),
		CallTimeout: cfg.TimeoutDuration(),
		FollowUp:    s.FollowUp,
	}, nil
}
