// File: internal/browser/dispatch_test.go
package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanvirb/websight-cli/internal/action"
)

func TestScrollDeltas(t *testing.T) {
	testCases := []struct {
		direction string
		dx, dy    float64
	}{
		{direction: "up", dx: 0, dy: -scrollDelta},
		{direction: "down", dx: 0, dy: scrollDelta},
		{direction: "left", dx: -scrollDelta, dy: 0},
		{direction: "right", dx: scrollDelta, dy: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.direction, func(t *testing.T) {
			dx, dy, err := scrollDeltas(tc.direction)
			require.NoError(t, err)
			assert.Equal(t, tc.dx, dx)
			assert.Equal(t, tc.dy, dy)
		})
	}

	_, _, err := scrollDeltas("sideways")
	assert.Error(t, err)
}

func TestPointArgs(t *testing.T) {
	act := action.Action{
		Kind: action.KindClick,
		Args: map[string]string{"x": "120", "y": "-4"},
	}
	x, y, err := pointArgs(act, "x", "y")
	require.NoError(t, err)
	assert.Equal(t, 120.0, x)
	assert.Equal(t, -4.0, y)

	_, _, err = pointArgs(act, "start_x", "start_y")
	assert.ErrorContains(t, err, "start_x")

	act.Args["x"] = "twelve"
	_, _, err = pointArgs(act, "x", "y")
	assert.ErrorContains(t, err, "twelve")
}
