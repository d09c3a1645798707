// File: internal/agent/models.go
package agent

import (
	"time"

	"github.com/google/uuid"
)

// State represents the loop's current phase. One session moves Planning →
// {Observing → Deciding → Acting}* → Done.
type State string

const (
	StatePlanning  State = "PLANNING"  // Asking the oracle for a step plan.
	StateObserving State = "OBSERVING" // Capturing the current browser state.
	StateDeciding  State = "DECIDING"  // Asking the oracle for the next action.
	StateActing    State = "ACTING"    // Parsing and dispatching the action.
	StateDone      State = "DONE"      // Terminal; a Result has been produced.
)

// HistoryEntry is one (reasoning, action) pair recorded after a Deciding
// phase. Entries are append-only and never mutated after their iteration
// completes. Error is set when the iteration's Acting phase failed, so the
// oracle can see the failure on the next turn.
type HistoryEntry struct {
	Reasoning  string `json:"reasoning"`
	ActionText string `json:"action_text"`
	Error      string `json:"error,omitempty"`
}

// Status classifies how a session ended.
type Status string

const (
	StatusCompleted    Status = "completed"     // The oracle issued a terminal action.
	StatusNotCompleted Status = "not_completed" // The iteration budget ran out.
	StatusFailed       Status = "failed"        // Planning, observation, or decision failed.
)

// Result is the terminal outcome handed to the caller. Summary is always
// populated: the final answer, a "not completed" notice, or an error
// description. No unrecovered error crosses the loop boundary.
type Result struct {
	Status     Status `json:"status"`
	Summary    string `json:"summary"`
	Iterations int    `json:"iterations"`
}

// Succeeded reports whether the session reached a terminal action.
func (r Result) Succeeded() bool { return r.Status == StatusCompleted }

// Session is the process-scoped state of one task execution. It is created at
// task start, mutated only by the loop, and discarded when the loop exits.
type Session struct {
	ID        string         `json:"id"`
	Task      string         `json:"task"`
	Plan      []string       `json:"plan,omitempty"`
	History   []HistoryEntry `json:"history"`
	Iteration int            `json:"iteration"`
	State     State          `json:"state"`
	StartedAt time.Time      `json:"started_at"`
}

// NewSession creates a fresh session for the given task.
func NewSession(task string) *Session {
	return &Session{
		ID:        uuid.New().String(),
		Task:      task,
		State:     StatePlanning,
		StartedAt: time.Now().UTC(),
	}
}
