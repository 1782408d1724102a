package ai

import (
	"context"
	"time"
)

// Runtime is the minimal interface the proxy needs from a generation backend.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// RuntimeConfig carries the knobs used to build a Runtime.
type RuntimeConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	HTTPTimeout time.Duration
}

// RuntimeFactory builds a Runtime from a RuntimeConfig.
type RuntimeFactory func(RuntimeConfig) Runtime

// NewGeminiRuntime is the default RuntimeFactory.
func NewGeminiRuntime(c RuntimeConfig) Runtime {
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 60 * time.Second
	}
	return NewClientWithBaseURL(c.APIKey, c.Model, c.HTTPTimeout, c.BaseURL)
}
