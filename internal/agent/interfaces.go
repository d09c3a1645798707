// File: internal/agent/interfaces.go
package agent

import (
	"context"

	"github.com/tanvirb/websight-cli/api/schemas"
	"github.com/tanvirb/websight-cli/internal/action"
)

// Oracle is the external decision-making collaborator: a language/vision
// model that proposes a plan for a task and, given the accumulated context,
// the next action to take.
type Oracle interface {
	// MakePlan turns the task into an ordered list of step descriptions.
	MakePlan(ctx context.Context, task string) ([]string, error)

	// NextAction proposes the next action given the task, the plan, the
	// history of prior turns, and the current visual observation. It returns
	// the model's reasoning and the raw action text.
	NextAction(ctx context.Context, task string, plan []string, history []HistoryEntry, obs *schemas.Observation) (reasoning, actionText string, err error)
}

// Actuator is the external browser collaborator. One actuator session is
// exclusively owned by one agent session for its entire lifetime.
type Actuator interface {
	// CaptureState snapshots the current browser state for the oracle.
	CaptureState(ctx context.Context) (*schemas.Observation, error)

	// Dispatch executes one structured action. An unknown action kind is a
	// programming error, not a runtime condition.
	Dispatch(ctx context.Context, act action.Action) error
}

// IterationHook observes each completed iteration: the finalized history
// entry and the observation it was decided on. Used for transcripts and
// screenshot persistence; errors in the hook do not affect the loop.
type IterationHook func(iteration int, entry HistoryEntry, obs *schemas.Observation)
