// File: internal/agent/agent_test.go
package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tanvirb/websight-cli/api/schemas"
	"github.com/tanvirb/websight-cli/internal/action"
)

// MockOracle mocks the Oracle interface.
type MockOracle struct {
	mock.Mock
}

func (m *MockOracle) MakePlan(ctx context.Context, task string) ([]string, error) {
	args := m.Called(ctx, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockOracle) NextAction(ctx context.Context, task string, plan []string, history []HistoryEntry, obs *schemas.Observation) (string, string, error) {
	args := m.Called(ctx, task, plan, history, obs)
	return args.String(0), args.String(1), args.Error(2)
}

// MockActuator mocks the Actuator interface.
type MockActuator struct {
	mock.Mock
}

func (m *MockActuator) CaptureState(ctx context.Context) (*schemas.Observation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schemas.Observation), args.Error(1)
}

func (m *MockActuator) Dispatch(ctx context.Context, act action.Action) error {
	args := m.Called(ctx, act)
	return args.Error(0)
}

func testObservation() *schemas.Observation {
	return &schemas.Observation{ScreenshotB64: "aGVsbG8=", URL: "https://example.com"}
}

func newTestAgent(t *testing.T, oracle Oracle, actuator Actuator, maxIters int) *Agent {
	t.Helper()
	a, err := New(oracle, actuator, maxIters, zap.NewNop())
	require.NoError(t, err)
	return a
}

func TestNewValidation(t *testing.T) {
	oracle := new(MockOracle)
	actuator := new(MockActuator)

	_, err := New(nil, actuator, 1, zap.NewNop())
	assert.ErrorContains(t, err, "oracle")

	_, err = New(oracle, nil, 1, zap.NewNop())
	assert.ErrorContains(t, err, "actuator")

	_, err = New(oracle, actuator, 1, nil)
	assert.ErrorContains(t, err, "logger")

	a, err := New(oracle, actuator, 0, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxIterations, a.maxIterations)
}

func TestRunPlanningFailureIsFatal(t *testing.T) {
	oracle := new(MockOracle)
	actuator := new(MockActuator)
	oracle.On("MakePlan", mock.Anything, "do the thing").Return(nil, errors.New("api down"))

	a := newTestAgent(t, oracle, actuator, 5)
	sess, res := a.Run(context.Background(), "do the thing")

	assert.Equal(t, StatusFailed, res.Status)
	assert.Contains(t, res.Summary, "planning failed")
	assert.Equal(t, StateDone, sess.State)
	assert.Empty(t, sess.History)
	// The actuator is never touched when planning fails.
	actuator.AssertNotCalled(t, "CaptureState", mock.Anything)
	actuator.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestRunFinishedEndsWithoutActing(t *testing.T) {
	oracle := new(MockOracle)
	actuator := new(MockActuator)
	oracle.On("MakePlan", mock.Anything, mock.Anything).Return([]string{"step one"}, nil)
	actuator.On("CaptureState", mock.Anything).Return(testObservation(), nil)
	oracle.On("NextAction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("all done", "finished(content='The answer is 42')", nil)

	a := newTestAgent(t, oracle, actuator, 5)
	sess, res := a.Run(context.Background(), "answer the question")

	assert.Equal(t, StatusCompleted, res.Status)
	assert.True(t, res.Succeeded())
	assert.Equal(t, "The answer is 42", res.Summary)
	assert.Equal(t, 1, res.Iterations)
	require.Len(t, sess.History, 1)
	assert.Equal(t, "all done", sess.History[0].Reasoning)
	actuator.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestRunFinishedRecognizedAsSubstring(t *testing.T) {
	// Even when the terminal text is not a well-formed action, the marker is
	// recognized and the raw text becomes the result.
	oracle := new(MockOracle)
	actuator := new(MockActuator)
	oracle.On("MakePlan", mock.Anything, mock.Anything).Return([]string{"step"}, nil)
	actuator.On("CaptureState", mock.Anything).Return(testObservation(), nil)
	oracle.On("NextAction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("done", "FINISHED: task complete", nil)

	a := newTestAgent(t, oracle, actuator, 5)
	_, res := a.Run(context.Background(), "task")

	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, "FINISHED: task complete", res.Summary)
}

func TestRunExhaustsIterationBudget(t *testing.T) {
	oracle := new(MockOracle)
	actuator := new(MockActuator)
	oracle.On("MakePlan", mock.Anything, mock.Anything).Return([]string{"step"}, nil)
	actuator.On("CaptureState", mock.Anything).Return(testObservation(), nil)
	oracle.On("NextAction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("keep going", "click(point='(10,20)')", nil)
	actuator.On("Dispatch", mock.Anything, mock.Anything).Return(nil)

	a := newTestAgent(t, oracle, actuator, 3)
	sess, res := a.Run(context.Background(), "endless task")

	assert.Equal(t, StatusNotCompleted, res.Status)
	assert.False(t, res.Succeeded())
	assert.Equal(t, 3, res.Iterations)
	assert.Len(t, sess.History, 3)
	// Exactly three observe/decide/act triples, never more.
	actuator.AssertNumberOfCalls(t, "CaptureState", 3)
	actuator.AssertNumberOfCalls(t, "Dispatch", 3)
}

func TestRunDispatchFailureIsRecoverable(t *testing.T) {
	oracle := new(MockOracle)
	actuator := new(MockActuator)
	oracle.On("MakePlan", mock.Anything, mock.Anything).Return([]string{"step"}, nil)
	actuator.On("CaptureState", mock.Anything).Return(testObservation(), nil)
	oracle.On("NextAction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("try click", "click(point='(10,20)')", nil)
	actuator.On("Dispatch", mock.Anything, mock.Anything).Return(errors.New("element vanished"))

	a := newTestAgent(t, oracle, actuator, 2)
	sess, res := a.Run(context.Background(), "fragile page")

	// The session survives dispatch failures and runs to exhaustion.
	assert.Equal(t, StatusNotCompleted, res.Status)
	require.Len(t, sess.History, 2)
	for _, entry := range sess.History {
		assert.Contains(t, entry.Error, "element vanished")
	}
}

func TestRunParseFailureIsRecoverable(t *testing.T) {
	oracle := new(MockOracle)
	actuator := new(MockActuator)
	oracle.On("MakePlan", mock.Anything, mock.Anything).Return([]string{"step"}, nil)
	actuator.On("CaptureState", mock.Anything).Return(testObservation(), nil)
	oracle.On("NextAction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("confused", "unknown_cmd(foo='bar')", nil)

	a := newTestAgent(t, oracle, actuator, 2)
	sess, res := a.Run(context.Background(), "task")

	assert.Equal(t, StatusNotCompleted, res.Status)
	require.Len(t, sess.History, 2)
	assert.Contains(t, sess.History[0].Error, "unknown_cmd")
	// Nothing is dispatched for unparsable text.
	actuator.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestRunObservationFailureIsFatal(t *testing.T) {
	oracle := new(MockOracle)
	actuator := new(MockActuator)
	oracle.On("MakePlan", mock.Anything, mock.Anything).Return([]string{"step"}, nil)
	actuator.On("CaptureState", mock.Anything).Return(nil, errors.New("browser gone"))

	a := newTestAgent(t, oracle, actuator, 5)
	sess, res := a.Run(context.Background(), "task")

	assert.Equal(t, StatusFailed, res.Status)
	assert.Contains(t, res.Summary, "observation failed")
	assert.Empty(t, sess.History)
}

func TestRunDecisionFailureIsFatal(t *testing.T) {
	oracle := new(MockOracle)
	actuator := new(MockActuator)
	oracle.On("MakePlan", mock.Anything, mock.Anything).Return([]string{"step"}, nil)
	actuator.On("CaptureState", mock.Anything).Return(testObservation(), nil)
	oracle.On("NextAction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", "", errors.New("rate limited"))

	a := newTestAgent(t, oracle, actuator, 5)
	sess, res := a.Run(context.Background(), "task")

	assert.Equal(t, StatusFailed, res.Status)
	assert.Contains(t, res.Summary, "decision failed")
	assert.Empty(t, sess.History)
}

func TestRunHistoryReflectsPriorIterationsOnly(t *testing.T) {
	oracle := new(MockOracle)
	actuator := new(MockActuator)
	oracle.On("MakePlan", mock.Anything, mock.Anything).Return([]string{"step"}, nil)
	actuator.On("CaptureState", mock.Anything).Return(testObservation(), nil)
	actuator.On("Dispatch", mock.Anything, mock.Anything).Return(nil)

	var seenLengths []int
	oracle.On("NextAction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			history := args.Get(3).([]HistoryEntry)
			seenLengths = append(seenLengths, len(history))
		}).
		Return("next", "wait()", nil)

	a := newTestAgent(t, oracle, actuator, 3)
	a.Run(context.Background(), "task")

	// Iteration i sees exactly i prior entries.
	assert.Equal(t, []int{0, 1, 2}, seenLengths)
}

func TestRunCancelledContext(t *testing.T) {
	oracle := new(MockOracle)
	actuator := new(MockActuator)
	oracle.On("MakePlan", mock.Anything, mock.Anything).Return([]string{"step"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newTestAgent(t, oracle, actuator, 5)
	_, res := a.Run(ctx, "task")

	assert.Equal(t, StatusFailed, res.Status)
	assert.Contains(t, res.Summary, "cancelled")
	actuator.AssertNotCalled(t, "CaptureState", mock.Anything)
}

func TestRunIterationHook(t *testing.T) {
	oracle := new(MockOracle)
	actuator := new(MockActuator)
	oracle.On("MakePlan", mock.Anything, mock.Anything).Return([]string{"step"}, nil)
	actuator.On("CaptureState", mock.Anything).Return(testObservation(), nil)
	actuator.On("Dispatch", mock.Anything, mock.Anything).Return(nil)

	// Finish on the third decision.
	oracle.On("NextAction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("thinking", "wait()", nil).
		Times(2)
	oracle.On("NextAction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("done", "finished(content='ok')", nil)

	var hookIterations []int
	a := newTestAgent(t, oracle, actuator, 10)
	a.SetIterationHook(func(iteration int, entry HistoryEntry, obs *schemas.Observation) {
		hookIterations = append(hookIterations, iteration)
		assert.NotNil(t, obs)
	})

	_, res := a.Run(context.Background(), "task")
	require.Equal(t, StatusCompleted, res.Status)
	// The hook fires for the two wait iterations and the terminal one.
	assert.Equal(t, []int{0, 1, 2}, hookIterations)
}

func TestRunNotCompletedSummaryNamesBudget(t *testing.T) {
	oracle := new(MockOracle)
	actuator := new(MockActuator)
	oracle.On("MakePlan", mock.Anything, mock.Anything).Return([]string{"step"}, nil)
	actuator.On("CaptureState", mock.Anything).Return(testObservation(), nil)
	actuator.On("Dispatch", mock.Anything, mock.Anything).Return(nil)
	oracle.On("NextAction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("loop", "wait()", nil)

	a := newTestAgent(t, oracle, actuator, 4)
	_, res := a.Run(context.Background(), "task")

	assert.Equal(t, fmt.Sprintf("task not completed within %d iterations", 4), res.Summary)
}
