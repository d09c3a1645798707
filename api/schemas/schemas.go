// File: api/schemas/schemas.go
package schemas

import "time"

// Observation is an opaque snapshot of the current browser state, captured by
// the actuator and handed to the oracle for visual grounding. The screenshot
// is a base64-encoded PNG; URL identifies the current location.
type Observation struct {
	ScreenshotB64 string    `json:"screenshot_b64"`
	URL           string    `json:"url"`
	CapturedAt    time.Time `json:"captured_at"`
}

// ModelTier selects which model class a generation request should be routed
// to. Planning is plain text; deciding the next action requires vision.
type ModelTier string

const (
	TierPlanner ModelTier = "planner"
	TierVision  ModelTier = "vision"
)

// GenerationOptions carries per-request sampling parameters.
type GenerationOptions struct {
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// HistoryTurn is one prior (reasoning, action) exchange replayed to the model
// so it can see what it already tried.
type HistoryTurn struct {
	Reasoning string `json:"reasoning"`
	Action    string `json:"action"`
}

// GenerationRequest is the provider-agnostic input to an LLM client.
// ImageB64, when non-empty, makes the request multimodal.
type GenerationRequest struct {
	Tier         ModelTier         `json:"tier"`
	SystemPrompt string            `json:"system_prompt"`
	UserPrompt   string            `json:"user_prompt"`
	ImageB64     string            `json:"image_b64,omitempty"`
	History      []HistoryTurn     `json:"history,omitempty"`
	Options      GenerationOptions `json:"options"`
}
