// File: internal/llmclient/router.go
package llmclient

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tanvirb/websight-cli/api/schemas"
)

// Router implements Client and dispatches each request to the client
// registered for its tier. Planning and vision can be served by different
// providers.
type Router struct {
	logger  *zap.Logger
	clients map[schemas.ModelTier]Client
}

// NewRouter creates a router with clients for the planner and vision tiers.
func NewRouter(logger *zap.Logger, plannerClient, visionClient Client) (*Router, error) {
	if plannerClient == nil || visionClient == nil {
		return nil, fmt.Errorf("both planner and vision tier clients must be provided")
	}
	return &Router{
		logger: logger.Named("llm_router"),
		clients: map[schemas.ModelTier]Client{
			schemas.TierPlanner: plannerClient,
			schemas.TierVision:  visionClient,
		},
	}, nil
}

// Generate routes by the request's tier, defaulting to the vision tier when
// unspecified.
func (r *Router) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	tier := req.Tier
	if tier == "" {
		tier = schemas.TierVision
	}

	client, ok := r.clients[tier]
	if !ok {
		return "", fmt.Errorf("no LLM client configured for tier: %s", tier)
	}

	r.logger.Debug("Routing LLM request", zap.String("tier", string(tier)))
	return client.Generate(ctx, req)
}
