package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"alfredoptarigan/project-matcher/internal/metrics"
)

// GenerateOptions controls a single agent invocation.
type GenerateOptions struct {
	Temperature     float32
	JSON            bool
	MaxOutputTokens int32
}

// Agent is an LLM endpoint that turns a prompt into text.
type Agent interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// Embedder turns text into a vector for the knowledge base.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// AgentRegistry resolves agent references from requests.
type AgentRegistry struct {
	agents      map[string]Agent
	defaultName string
}

func NewAgentRegistry(defaultName string, agents ...Agent) (*AgentRegistry, error) {
	r := &AgentRegistry{
		agents:      make(map[string]Agent, len(agents)),
		defaultName: defaultName,
	}
	for _, a := range agents {
		r.agents[a.Name()] = a
	}
	if _, ok := r.agents[defaultName]; !ok {
		return nil, fmt.Errorf("default agent %q is not registered", defaultName)
	}
	return r, nil
}

// Get returns the agent named ref, or the default agent when ref is empty.
func (r *AgentRegistry) Get(ref string) (Agent, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		ref = r.defaultName
	}
	a, ok := r.agents[ref]
	if !ok {
		return nil, fmt.Errorf("unknown agent %q (available: %s): %w",
			ref, strings.Join(r.Names(), ", "), ErrInvalidArgument)
	}
	return a, nil
}

// Default returns the default agent.
func (r *AgentRegistry) Default() Agent {
	return r.agents[r.defaultName]
}

// Names lists registered agent names in sorted order.
func (r *AgentRegistry) Names() []string {
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// instrumentedAgent records Prometheus metrics around an inner agent.
type instrumentedAgent struct {
	inner Agent
}

func NewInstrumentedAgent(inner Agent) Agent {
	return &instrumentedAgent{inner: inner}
}

func (a *instrumentedAgent) Name() string {
	return a.inner.Name()
}

func (a *instrumentedAgent) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	start := time.Now()
	out, err := a.inner.Generate(ctx, prompt, opts)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.AgentRequestsTotal.WithLabelValues(a.inner.Name(), status).Inc()
	metrics.AgentRequestDuration.WithLabelValues(a.inner.Name()).Observe(time.Since(start).Seconds())

	return out, err
}
