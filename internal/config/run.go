package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvRunBatchSize  = "SCREENER_RUN_BATCH_SIZE"
	EnvRunWorkers    = "SCREENER_RUN_WORKERS"
	EnvRunFollowUp   = "SCREENER_RUN_FOLLOW_UP"
	EnvRunEntities   = "SCREENER_RUN_ENTITIES"
	EnvRunPromptsDir = "SCREENER_RUN_PROMPTS_DIR"
	EnvRunOutput     = "SCREENER_RUN_OUTPUT"
	EnvRunRows       = "SCREENER_RUN_ROWS"
)

// RunConfig holds batch and workflow settings for a run.
type RunConfig struct {
	BatchSize  int    `toml:"batch_size"`
	Workers    int    `toml:"workers"`
	FollowUp   *bool  `toml:"follow_up"`
	Entities   string `toml:"entities"`
	PromptsDir string `toml:"prompts_dir"`
	Output     string `toml:"output"`
	Rows       string `toml:"rows"`
}

// FollowUpEnabled reports whether unresolved first passes get a follow-up
// call. Defaults to true.
func (c *RunConfig) FollowUpEnabled() bool {
	return c.FollowUp == nil || *c.FollowUp
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *RunConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *RunConfig) Merge(overlay *RunConfig) {
	if overlay.BatchSize != 0 {
		c.BatchSize = overlay.BatchSize
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.FollowUp != nil {
		v := *overlay.FollowUp
		c.FollowUp = &v
	}
	if overlay.Entities != "" {
		c.Entities = overlay.Entities
	}
	if overlay.PromptsDir != "" {
		c.PromptsDir = overlay.PromptsDir
	}
	if overlay.Output != "" {
		c.Output = overlay.Output
	}
	if overlay.Rows != "" {
		c.Rows = overlay.Rows
	}
}

func (c *RunConfig) loadDefaults() {
	if c.BatchSize == 0 {
		c.BatchSize = 10
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.Output == "" {
		c.Output = "results.json"
	}
}

func (c *RunConfig) loadEnv() {
	if v := os.Getenv(EnvRunBatchSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BatchSize = n
		}
	}
	if v := os.Getenv(EnvRunWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv(EnvRunFollowUp); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.FollowUp = &b
		}
	}
	if v := os.Getenv(EnvRunEntities); v != "" {
		c.Entities = v
	}
	if v := os.Getenv(EnvRunPromptsDir); v != "" {
		c.PromptsDir = v
	}
	if v := os.Getenv(EnvRunOutput); v != "" {
		c.Output = v
	}
	if v := os.Getenv(EnvRunRows); v != "" {
		c.Rows = v
	}
}

func (c *RunConfig) validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be positive: %d", c.BatchSize)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive: %d", c.Workers)
	}
	return nil
}
