// File: internal/reporting/transcript.go

// Package reporting persists the artifacts of one agent session: a JSON
// transcript of the plan, every decision, and the final result, plus the
// per-iteration screenshots when enabled.
package reporting

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/tanvirb/websight-cli/api/schemas"
	"github.com/tanvirb/websight-cli/internal/agent"
)

const transcriptFileName = "transcript.json"

// envelope is the on-disk transcript layout.
type envelope struct {
	SessionID  string               `json:"session_id"`
	Task       string               `json:"task"`
	Plan       []string             `json:"plan,omitempty"`
	History    []agent.HistoryEntry `json:"history"`
	Result     agent.Result         `json:"result"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
}

// Transcript accumulates one session's turns and writes them out at session
// end. It is driven by the sequential agent loop and is not safe for
// concurrent use.
type Transcript struct {
	runDir          string
	saveScreenshots bool
	logger          *zap.Logger
}

// NewTranscript creates the run directory under outputDir and returns a
// transcript bound to it.
func NewTranscript(outputDir, sessionID string, saveScreenshots bool, logger *zap.Logger) (*Transcript, error) {
	short := sessionID
	if len(short) > 8 {
		short = short[:8]
	}
	runDir := filepath.Join(outputDir, fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102-150405"), short))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run directory %s: %w", runDir, err)
	}
	return &Transcript{
		runDir:          runDir,
		saveScreenshots: saveScreenshots,
		logger:          logger.Named("transcript"),
	}, nil
}

// RunDir returns the directory artifacts are written into.
func (t *Transcript) RunDir() string { return t.runDir }

// Hook returns the per-iteration observer to install on the agent. It writes
// the iteration's screenshot when enabled; persistence failures are logged
// and never disturb the loop.
func (t *Transcript) Hook() agent.IterationHook {
	return func(iteration int, _ agent.HistoryEntry, obs *schemas.Observation) {
		if !t.saveScreenshots || obs == nil || obs.ScreenshotB64 == "" {
			return
		}
		if err := t.writeScreenshot(iteration, obs.ScreenshotB64); err != nil {
			t.logger.Warn("Failed to persist screenshot",
				zap.Int("iteration", iteration),
				zap.Error(err),
			)
		}
	}
}

func (t *Transcript) writeScreenshot(iteration int, b64 string) error {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return fmt.Errorf("screenshot is not valid base64: %w", err)
	}
	path := filepath.Join(t.runDir, fmt.Sprintf("screenshot_%03d.png", iteration+1))
	return os.WriteFile(path, data, 0o644)
}

// Finalize writes the transcript JSON for the completed session.
func (t *Transcript) Finalize(sess *agent.Session, res agent.Result) error {
	env := envelope{
		SessionID:  sess.ID,
		Task:       sess.Task,
		Plan:       sess.Plan,
		History:    sess.History,
		Result:     res,
		StartedAt:  sess.StartedAt,
		FinishedAt: time.Now().UTC(),
	}
	if env.History == nil {
		env.History = []agent.HistoryEntry{}
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	path := filepath.Join(t.runDir, transcriptFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write transcript %s: %w", path, err)
	}
	t.logger.Info("Transcript written", zap.String("path", path))
	return nil
}
