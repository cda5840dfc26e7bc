package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// Supported classifier providers.
const (
	ProviderAgent  = "agent"
	ProviderGemini = "gemini"
)

// ClassifierEnv maps classifier fields to environment variable names.
type ClassifierEnv struct {
	Provider     string
	Name         string
	ProviderName string
	BaseURL      string
	Model        string
	Token        string
	Deployment   string
	APIVersion   string
	AuthType     string
	APIKey       string
	Temperature  string
	Timeout      string
}

func classifierEnv(side string) *ClassifierEnv {
	prefix := "SCREENER_" + side + "_"
	return &ClassifierEnv{
		Provider:     prefix + "PROVIDER",
		Name:         prefix + "NAME",
		ProviderName: prefix + "PROVIDER_NAME",
		BaseURL:      prefix + "BASE_URL",
		Model:        prefix + "MODEL",
		Token:        prefix + "TOKEN",
		Deployment:   prefix + "DEPLOYMENT",
		APIVersion:   prefix + "API_VERSION",
		AuthType:     prefix + "AUTH_TYPE",
		APIKey:       prefix + "API_KEY",
		Temperature:  prefix + "TEMPERATURE",
		Timeout:      prefix + "TIMEOUT",
	}
}

// ClassifierConfig describes one oracle endpoint. Provider "agent" routes
// through go-agents (ollama, azure, openai-compatible, selected by
// ProviderName); provider "gemini" uses the Gemini API directly.
type ClassifierConfig struct {
	Provider     string  `toml:"provider"`
	Name         string  `toml:"name"`
	ProviderName string  `toml:"provider_name"`
	BaseURL      string  `toml:"base_url"`
	Model        string  `toml:"model"`
	Token        string  `toml:"token"`
	Deployment   string  `toml:"deployment"`
	APIVersion   string  `toml:"api_version"`
	AuthType     string  `toml:"auth_type"`
	APIKey       string  `toml:"api_key"`
	Temperature  float64 `toml:"temperature"`
	Timeout      string  `toml:"timeout"`
}

// TimeoutDuration returns the per-call timeout as a time.Duration.
func (c *ClassifierConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// AgentConfig builds a go-agents configuration starting from go-agents
// defaults and overriding every field this classifier sets.
func (c *ClassifierConfig) AgentConfig() *gaconfig.AgentConfig {
	ac := gaconfig.DefaultAgentConfig()

	if ac.Provider == nil {
		ac.Provider = &gaconfig.ProviderConfig{}
	}
	if ac.Provider.Options == nil {
		ac.Provider.Options = make(map[string]any)
	}
	if ac.Model == nil {
		ac.Model = &gaconfig.ModelConfig{}
	}

	if c.Name != "" {
		ac.Name = c.Name
	}
	if c.ProviderName != "" {
		ac.Provider.Name = c.ProviderName
	}
	if c.BaseURL != "" {
		ac.Provider.BaseURL = c.BaseURL
	}
	if c.Model != "" {
		ac.Model.Name = c.Model
	}

	setOption := func(key, value string) {
		if value != "" {
			ac.Provider.Options[key] = value
		}
	}
	setOption("token", c.Token)
	setOption("deployment", c.Deployment)
	setOption("api_version", c.APIVersion)
	setOption("auth_type", c.AuthType)

	return &ac
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ClassifierConfig) Finalize(env *ClassifierEnv) error {
	if env != nil {
		c.loadEnv(env)
	}
	c.loadDefaults()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ClassifierConfig) Merge(overlay *ClassifierConfig) {
	mergeString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	mergeString(&c.Provider, overlay.Provider)
	mergeString(&c.Name, overlay.Name)
	mergeString(&c.ProviderName, overlay.ProviderName)
	mergeString(&c.BaseURL, overlay.BaseURL)
	mergeString(&c.Model, overlay.Model)
	mergeString(&c.Token, overlay.Token)
	mergeString(&c.Deployment, overlay.Deployment)
	mergeString(&c.APIVersion, overlay.APIVersion)
	mergeString(&c.AuthType, overlay.AuthType)
	mergeString(&c.APIKey, overlay.APIKey)
	mergeString(&c.Timeout, overlay.Timeout)
	if overlay.Temperature != 0 {
		c.Temperature = overlay.Temperature
	}
}

func (c *ClassifierConfig) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderAgent
	}
	if c.Timeout == "" {
		c.Timeout = "2m"
	}
	if c.Provider == ProviderGemini && c.Model == "" {
		c.Model = "gemini-2.0-flash"
	}
}

func (c *ClassifierConfig) loadEnv(env *ClassifierEnv) {
	setString := func(key string, dst *string) {
		if key == "" {
			return
		}
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString(env.Provider, &c.Provider)
	setString(env.Name, &c.Name)
	setString(env.ProviderName, &c.ProviderName)
	setString(env.BaseURL, &c.BaseURL)
	setString(env.Model, &c.Model)
	setString(env.Token, &c.Token)
	setString(env.Deployment, &c.Deployment)
	setString(env.APIVersion, &c.APIVersion)
	setString(env.AuthType, &c.AuthType)
	setString(env.APIKey, &c.APIKey)
	setString(env.Timeout, &c.Timeout)

	if env.Temperature != "" {
		if v := os.Getenv(env.Temperature); v != "" {
			if t, err := strconv.ParseFloat(v, 64); err == nil {
				c.Temperature = t
			}
		}
	}
}

func (c *ClassifierConfig) validate() error {
	if c.Name == "" {
		return fmt.Errorf("name required")
	}
	switch c.Provider {
	case ProviderAgent:
	case ProviderGemini:
		if c.APIKey == "" {
			return fmt.Errorf("api_key required for gemini")
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}

// ClassifiersConfig holds the two independent classifiers compared per document.
type ClassifiersConfig struct {
	Primary   ClassifierConfig `toml:"primary"`
	Secondary ClassifierConfig `toml:"secondary"`
}

// Finalize finalizes both classifiers and requires distinct names.
func (c *ClassifiersConfig) Finalize() error {
	if c.Primary.Name == "" {
		c.Primary.Name = "primary"
	}
	if c.Secondary.Name == "" {
		c.Secondary.Name = "secondary"
	}

	if err := c.Primary.Finalize(classifierEnv("PRIMARY")); err != nil {
		return fmt.Errorf("primary: %w", err)
	}
	if err := c.Secondary.Finalize(classifierEnv("SECONDARY")); err != nil {
		return fmt.Errorf("secondary: %w", err)
	}
	if c.Primary.Name == c.Secondary.Name {
		return fmt.Errorf("classifier names must differ: %q", c.Primary.Name)
	}
	return nil
}

// Merge merges both classifiers from overlay.
func (c *ClassifiersConfig) Merge(overlay *ClassifiersConfig) {
	c.Primary.Merge(&overlay.Primary)
	c.Secondary.Merge(&overlay.Secondary)
}
