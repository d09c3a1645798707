// File: internal/oracle/oracle_test.go
package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tanvirb/websight-cli/api/schemas"
	"github.com/tanvirb/websight-cli/internal/agent"
)

// stubClient records the last request and replays a canned response.
type stubClient struct {
	lastReq  schemas.GenerationRequest
	response string
	err      error
}

func (s *stubClient) Generate(_ context.Context, req schemas.GenerationRequest) (string, error) {
	s.lastReq = req
	return s.response, s.err
}

func newTestOracle(t *testing.T, client *stubClient) *Oracle {
	t.Helper()
	o, err := New(client, zap.NewNop())
	require.NoError(t, err)
	return o
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil, zap.NewNop())
	assert.ErrorContains(t, err, "client")

	_, err = New(&stubClient{}, nil)
	assert.ErrorContains(t, err, "logger")
}

func TestMakePlanExtractsSteps(t *testing.T) {
	client := &stubClient{response: `Here is the plan:
<step> Open the login page </step>
Some commentary the model added.
<step>Fill in the username field</step>
<step> Click the submit button </step>`}

	o := newTestOracle(t, client)
	steps, err := o.MakePlan(context.Background(), "log in")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Open the login page",
		"Fill in the username field",
		"Click the submit button",
	}, steps)
	assert.Equal(t, schemas.TierPlanner, client.lastReq.Tier)
	assert.Contains(t, client.lastReq.UserPrompt, "log in")
	assert.Empty(t, client.lastReq.ImageB64)
}

func TestMakePlanNoSteps(t *testing.T) {
	client := &stubClient{response: "1. Open the page\n2. Click things"}
	o := newTestOracle(t, client)

	_, err := o.MakePlan(context.Background(), "task")
	var oerr *OracleError
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, "make_plan", oerr.Op)
}

func TestMakePlanTransportError(t *testing.T) {
	transport := errors.New("connection refused")
	client := &stubClient{err: transport}
	o := newTestOracle(t, client)

	_, err := o.MakePlan(context.Background(), "task")
	var oerr *OracleError
	require.ErrorAs(t, err, &oerr)
	assert.ErrorIs(t, err, transport)
}

func TestNextActionSplitsThoughtAndAction(t *testing.T) {
	client := &stubClient{response: "Thought: The search box is focused, I should type the query.\nAction: type(content='golang\\n')"}
	o := newTestOracle(t, client)

	obs := &schemas.Observation{ScreenshotB64: "aW1n", URL: "https://example.com/search"}
	reasoning, actionText, err := o.NextAction(context.Background(), "search golang", []string{"step"}, nil, obs)
	require.NoError(t, err)

	assert.Equal(t, "The search box is focused, I should type the query.", reasoning)
	assert.Equal(t, "type(content='golang\\n')", actionText)
	assert.Equal(t, schemas.TierVision, client.lastReq.Tier)
	assert.Equal(t, "aW1n", client.lastReq.ImageB64)
	assert.Contains(t, client.lastReq.UserPrompt, "https://example.com/search")
	assert.Contains(t, client.lastReq.SystemPrompt, "search golang")
}

func TestNextActionStripsCodeFence(t *testing.T) {
	client := &stubClient{response: "```\nThought: done looking\nAction: wait()\n```"}
	o := newTestOracle(t, client)

	reasoning, actionText, err := o.NextAction(context.Background(), "task", nil, nil, &schemas.Observation{ScreenshotB64: "x"})
	require.NoError(t, err)
	assert.Equal(t, "done looking", reasoning)
	assert.Equal(t, "wait()", actionText)
}

func TestNextActionRendersFailedHistory(t *testing.T) {
	client := &stubClient{response: "Thought: retry elsewhere\nAction: click(point='(5,5)')"}
	o := newTestOracle(t, client)

	history := []agent.HistoryEntry{
		{Reasoning: "click the button", ActionText: "click(point='(10,20)')", Error: "element vanished"},
		{Reasoning: "wait for load", ActionText: "wait()"},
	}
	_, _, err := o.NextAction(context.Background(), "task", nil, history, &schemas.Observation{ScreenshotB64: "x"})
	require.NoError(t, err)

	require.Len(t, client.lastReq.History, 2)
	assert.Equal(t, "click(point='(10,20)') (failed: element vanished)", client.lastReq.History[0].Action)
	assert.Equal(t, "wait()", client.lastReq.History[1].Action)
}

func TestNextActionMissingMarker(t *testing.T) {
	client := &stubClient{response: "I think we should click the button."}
	o := newTestOracle(t, client)

	_, _, err := o.NextAction(context.Background(), "task", nil, nil, &schemas.Observation{ScreenshotB64: "x"})
	var oerr *OracleError
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, "next_action", oerr.Op)
}

func TestNextActionNilObservation(t *testing.T) {
	o := newTestOracle(t, &stubClient{})
	_, _, err := o.NextAction(context.Background(), "task", nil, nil, nil)
	assert.ErrorContains(t, err, "observation")
}
