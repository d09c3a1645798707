// File: internal/llmclient/factory.go
package llmclient

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tanvirb/websight-cli/internal/config"
)

// NewClient builds the provider client named by the configuration.
func NewClient(cfg config.LLMConfig, logger *zap.Logger) (Client, error) {
	switch cfg.Provider {
	case config.ProviderOpenRouter:
		return NewOpenRouterClient(cfg, logger)
	case config.ProviderGemini:
		return NewGeminiClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown or unsupported LLM provider configured: %q. Supported: [%s, %s]",
			cfg.Provider, config.ProviderOpenRouter, config.ProviderGemini)
	}
}

// NewRouterFromConfig builds a tier router backed by the configured provider.
// Both tiers share one client; the client selects the planner or vision model
// per request.
func NewRouterFromConfig(cfg config.LLMConfig, logger *zap.Logger) (*Router, error) {
	client, err := NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewRouter(logger, client, client)
}
