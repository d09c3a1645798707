// File: internal/llmclient/client.go

// Package llmclient provides HTTP transports for the language and vision
// models the agent consults. All clients retry transient failures with
// exponential backoff and share a request rate limiter.
package llmclient

import (
	"context"

	"github.com/tanvirb/websight-cli/api/schemas"
	"github.com/tanvirb/websight-cli/internal/config"
)

// Client generates a text completion for a (possibly multimodal) request.
type Client interface {
	Generate(ctx context.Context, req schemas.GenerationRequest) (string, error)
}

// dataURLPrefix is prepended to raw base64 screenshots before they are sent
// as image parts.
const dataURLPrefix = "data:image/png;base64,"

// asDataURL normalizes a screenshot into a data URL, tolerating inputs that
// already carry the prefix.
func asDataURL(b64 string) string {
	if len(b64) >= len(dataURLPrefix) && b64[:len(dataURLPrefix)] == dataURLPrefix {
		return b64
	}
	return dataURLPrefix + b64
}

// resolveOptions applies the configured sampling defaults to a request whose
// options were left unset.
func resolveOptions(opts schemas.GenerationOptions, cfg config.LLMConfig) (temperature float32, maxTokens int) {
	temperature = opts.Temperature
	if temperature == 0 {
		temperature = cfg.Temperature
	}
	maxTokens = opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = cfg.MaxTokens
	}
	return temperature, maxTokens
}
