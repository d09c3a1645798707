// File: internal/oracle/oracle.go

// Package oracle implements the decision-making side of the agent loop: it
// turns a task into a step plan and, each iteration, turns the current
// screenshot plus history into a (reasoning, action) pair. All model traffic
// goes through the llmclient transport.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tanvirb/websight-cli/api/schemas"
	"github.com/tanvirb/websight-cli/internal/agent"
	"github.com/tanvirb/websight-cli/internal/llmclient"
)

// OracleError wraps transport failures and unparsable model responses.
type OracleError struct {
	Op  string
	Err error
}

func (e *OracleError) Error() string { return fmt.Sprintf("oracle %s: %v", e.Op, e.Err) }
func (e *OracleError) Unwrap() error { return e.Err }

// Oracle implements agent.Oracle on top of an LLM client. The planner tier is
// used for MakePlan and the vision tier for NextAction.
type Oracle struct {
	client llmclient.Client
	logger *zap.Logger
}

var _ agent.Oracle = (*Oracle)(nil)

// New creates an Oracle backed by the given client.
func New(client llmclient.Client, logger *zap.Logger) (*Oracle, error) {
	if client == nil {
		return nil, errors.New("client cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Oracle{client: client, logger: logger.Named("oracle")}, nil
}

// MakePlan asks the planner model for an ordered list of step descriptions.
// A response without a single <step> tag is an OracleError; the loop cannot
// start without a plan.
func (o *Oracle) MakePlan(ctx context.Context, task string) ([]string, error) {
	resp, err := o.client.Generate(ctx, schemas.GenerationRequest{
		Tier:         schemas.TierPlanner,
		SystemPrompt: plannerSystemPrompt,
		UserPrompt:   fmt.Sprintf(plannerPromptTemplate, task),
	})
	if err != nil {
		return nil, &OracleError{Op: "make_plan", Err: err}
	}

	steps := extractSteps(resp)
	if len(steps) == 0 {
		o.logger.Warn("Planner response carried no steps", zap.String("response", truncate(resp, 500)))
		return nil, &OracleError{Op: "make_plan", Err: errors.New("no <step> entries in planner response")}
	}
	o.logger.Debug("Plan extracted", zap.Int("steps", len(steps)))
	return steps, nil
}

// NextAction asks the vision model for the next move given the task, the
// plan, the rendered history, and the current screenshot.
func (o *Oracle) NextAction(
	ctx context.Context,
	task string,
	plan []string,
	history []agent.HistoryEntry,
	obs *schemas.Observation,
) (string, string, error) {
	if obs == nil {
		return "", "", &OracleError{Op: "next_action", Err: errors.New("observation cannot be nil")}
	}

	resp, err := o.client.Generate(ctx, schemas.GenerationRequest{
		Tier:         schemas.TierVision,
		SystemPrompt: fmt.Sprintf(decisionSystemPromptTemplate, task),
		UserPrompt:   fmt.Sprintf(decisionPromptTemplate, task, obs.URL, renderPlan(plan)),
		ImageB64:     obs.ScreenshotB64,
		History:      renderHistory(history),
	})
	if err != nil {
		return "", "", &OracleError{Op: "next_action", Err: err}
	}

	reasoning, actionText, err := splitDecision(resp)
	if err != nil {
		o.logger.Warn("Unparsable decision response", zap.String("response", truncate(resp, 500)))
		return "", "", &OracleError{Op: "next_action", Err: err}
	}
	return reasoning, actionText, nil
}

// extractSteps pulls <step>...</step> contents line by line; prose lines
// without a complete tag pair are ignored.
func extractSteps(resp string) []string {
	var steps []string
	for _, line := range strings.Split(resp, "\n") {
		open := strings.Index(line, "<step>")
		close := strings.Index(line, "</step>")
		if open == -1 || close == -1 || close < open {
			continue
		}
		step := strings.TrimSpace(line[open+len("<step>") : close])
		if step != "" {
			steps = append(steps, step)
		}
	}
	return steps
}

func renderPlan(plan []string) string {
	var b strings.Builder
	for i, step := range plan {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderHistory converts loop history into model turns. Entries whose action
// failed render with a failure suffix so the model can change course instead
// of repeating the action.
func renderHistory(history []agent.HistoryEntry) []schemas.HistoryTurn {
	turns := make([]schemas.HistoryTurn, 0, len(history))
	for _, e := range history {
		act := e.ActionText
		if e.Error != "" {
			act = fmt.Sprintf("%s (failed: %s)", act, e.Error)
		}
		turns = append(turns, schemas.HistoryTurn{Reasoning: e.Reasoning, Action: act})
	}
	return turns
}

// splitDecision separates the Thought and Action parts of a decision
// response. Models occasionally wrap the output in a code fence; that is
// stripped before splitting.
func splitDecision(resp string) (string, string, error) {
	text := stripFence(strings.TrimSpace(resp))

	idx := strings.LastIndex(text, "Action:")
	if idx == -1 {
		return "", "", errors.New(`decision response missing "Action:" marker`)
	}
	actionText := strings.TrimSpace(text[idx+len("Action:"):])
	if actionText == "" {
		return "", "", errors.New("decision response carried an empty action")
	}

	reasoning := strings.TrimSpace(text[:idx])
	reasoning = strings.TrimSpace(strings.TrimPrefix(reasoning, "Thought:"))
	return reasoning, actionText, nil
}

func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl != -1 && !strings.ContainsAny(text[:nl], " \t") {
		// Drop a language tag on the opening fence line.
		text = text[nl+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
