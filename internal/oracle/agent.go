package oracle

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// AgentClient is an Oracle backed by a go-agents chat agent. Any provider
// go-agents supports (Ollama, Azure OpenAI, OpenAI-compatible) can serve.
type AgentClient struct {
	name  string
	agent agent.Agent
}

// NewAgentClient creates a client with its own agent instance.
func NewAgentClient(name string, cfg *gaconfig.AgentConfig) (*AgentClient, error) {
	a, err := agent.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create agent %s: %w", name, err)
	}
	return &AgentClient{name: name, agent: a}, nil
}

func (c *AgentClient) Name() string {
	return c.name
}

func (c *AgentClient) Assess(ctx context.Context, prompt string) (string, error) {
	resp, err := c.agent.Chat(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %s: chat: %w", ErrAssessFailed, c.name, err)
	}
	return resp.Content(), nil
}
