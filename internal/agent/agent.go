// File: internal/agent/agent.go

// Package agent drives one web task to completion: plan once, then iterate
// observe → decide → act until the oracle issues a terminal action or the
// iteration budget runs out. The loop is single-threaded and strictly
// sequential; exactly one observe/decide/act triple runs per iteration.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tanvirb/websight-cli/api/schemas"
	"github.com/tanvirb/websight-cli/internal/action"
)

// DefaultMaxIterations bounds the loop when the caller does not.
const DefaultMaxIterations = 25

// Agent coordinates the oracle, the parser, and the actuator for one task at
// a time. It is not safe for concurrent Run calls: the single actuator
// session is exclusively owned by the running session.
type Agent struct {
	oracle        Oracle
	actuator      Actuator
	logger        *zap.Logger
	maxIterations int
	hook          IterationHook
}

// New creates an Agent. maxIterations <= 0 selects DefaultMaxIterations.
func New(oracle Oracle, actuator Actuator, maxIterations int, logger *zap.Logger) (*Agent, error) {
	if oracle == nil {
		return nil, errors.New("oracle cannot be nil")
	}
	if actuator == nil {
		return nil, errors.New("actuator cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Agent{
		oracle:        oracle,
		actuator:      actuator,
		logger:        logger.Named("agent"),
		maxIterations: maxIterations,
	}, nil
}

// SetIterationHook installs an observer invoked once per completed iteration.
// Must be called before Run.
func (a *Agent) SetIterationHook(hook IterationHook) { a.hook = hook }

// Run executes the task and always returns a terminal Result; failures are
// summarized into it rather than escaping as errors. The returned Session
// exposes the plan and full history for transcripts.
func (a *Agent) Run(ctx context.Context, task string) (*Session, Result) {
	sess := NewSession(task)
	logger := a.logger.With(zap.String("session_id", sess.ID))
	logger.Info("Starting task", zap.String("task", task))

	// Planning. Failure here is fatal: no plan, no action.
	plan, err := a.oracle.MakePlan(ctx, task)
	if err != nil {
		logger.Error("Planning failed", zap.Error(err))
		return a.finish(sess, Result{
			Status:  StatusFailed,
			Summary: fmt.Sprintf("planning failed: %v", err),
		})
	}
	sess.Plan = plan
	logger.Info("Plan generated", zap.Int("steps", len(plan)))
	for i, step := range plan {
		logger.Debug("Plan step", zap.Int("step", i+1), zap.String("description", step))
	}

	for sess.Iteration = 0; sess.Iteration < a.maxIterations; sess.Iteration++ {
		if ctx.Err() != nil {
			return a.finish(sess, Result{
				Status:     StatusFailed,
				Summary:    fmt.Sprintf("session cancelled: %v", ctx.Err()),
				Iterations: sess.Iteration,
			})
		}
		iterLogger := logger.With(zap.Int("iteration", sess.Iteration+1))

		// Observing. An unreachable actuator is fatal.
		sess.State = StateObserving
		obs, err := a.actuator.CaptureState(ctx)
		if err != nil {
			iterLogger.Error("Observation failed", zap.Error(err))
			return a.finish(sess, Result{
				Status:     StatusFailed,
				Summary:    fmt.Sprintf("observation failed: %v", err),
				Iterations: sess.Iteration,
			})
		}

		// Deciding. A failed decision call aborts the session.
		sess.State = StateDeciding
		reasoning, actionText, err := a.oracle.NextAction(ctx, task, sess.Plan, sess.History, obs)
		if err != nil {
			iterLogger.Error("Decision failed", zap.Error(err))
			return a.finish(sess, Result{
				Status:     StatusFailed,
				Summary:    fmt.Sprintf("decision failed: %v", err),
				Iterations: sess.Iteration,
			})
		}
		iterLogger.Info("Decision received",
			zap.String("reasoning", reasoning),
			zap.String("action", actionText),
		)

		// One history append per iteration, after Deciding, regardless of the
		// Acting outcome. The entry's Error field is finalized below.
		sess.History = append(sess.History, HistoryEntry{
			Reasoning:  reasoning,
			ActionText: actionText,
		})
		entry := &sess.History[len(sess.History)-1]

		// Terminal recognition: a case-insensitive substring match on the
		// decision text, checked before any Acting phase.
		if isTerminal(actionText) {
			sess.State = StateDone
			summary := finishedContent(actionText)
			iterLogger.Info("Task completed", zap.String("result", summary))
			a.notify(sess.Iteration, *entry, obs)
			return a.finish(sess, Result{
				Status:     StatusCompleted,
				Summary:    summary,
				Iterations: sess.Iteration + 1,
			})
		}

		// Acting. Parse and dispatch failures are recorded on the entry and
		// the loop continues; the oracle sees the failure next turn.
		sess.State = StateActing
		if act, perr := action.Parse(actionText, reasoning); perr != nil {
			iterLogger.Warn("Action text did not parse", zap.Error(perr))
			entry.Error = perr.Error()
		} else if derr := a.actuator.Dispatch(ctx, act); derr != nil {
			iterLogger.Warn("Action dispatch failed", zap.Error(derr))
			entry.Error = derr.Error()
		}

		a.notify(sess.Iteration, *entry, obs)
	}

	logger.Warn("Iteration budget exhausted", zap.Int("max_iterations", a.maxIterations))
	return a.finish(sess, Result{
		Status:     StatusNotCompleted,
		Summary:    fmt.Sprintf("task not completed within %d iterations", a.maxIterations),
		Iterations: a.maxIterations,
	})
}

func (a *Agent) finish(sess *Session, res Result) (*Session, Result) {
	sess.State = StateDone
	return sess, res
}

func (a *Agent) notify(iteration int, entry HistoryEntry, obs *schemas.Observation) {
	if a.hook != nil {
		a.hook(iteration, entry, obs)
	}
}

// isTerminal reports whether the decision text carries the terminal marker.
func isTerminal(actionText string) bool {
	return strings.Contains(strings.ToLower(actionText), "finished")
}

// finishedContent extracts the final answer from a terminal decision. When
// the text is a well-formed finished(...) action the content argument is
// returned; otherwise the raw text stands in.
func finishedContent(actionText string) string {
	if act, err := action.Parse(actionText, ""); err == nil && act.Kind == action.KindFinished {
		return act.Args["content"]
	}
	return strings.TrimSpace(actionText)
}
