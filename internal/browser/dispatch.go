// File: internal/browser/dispatch.go
package browser

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/tanvirb/websight-cli/internal/action"
)

const (
	// waitDuration is the pause performed by the wait action.
	waitDuration = 5 * time.Second

	// scrollDelta is the wheel distance of one scroll action, in pixels.
	scrollDelta = 500

	// inputTimeout bounds a single input event exchange with the tab.
	inputTimeout = 10 * time.Second
)

// Dispatch executes one structured action against the tab. Failures come
// back as ActuatorError so the loop can record them; an action kind the
// grammar does not produce is a programming error and panics.
func (b *Browser) Dispatch(ctx context.Context, act action.Action) error {
	b.logger.Debug("Dispatching action", zap.String("kind", string(act.Kind)))

	switch act.Kind {
	case action.KindClick:
		return b.click(ctx, act, input.Left, 1)
	case action.KindLeftDouble:
		return b.click(ctx, act, input.Left, 2)
	case action.KindRightSingle:
		return b.click(ctx, act, input.Right, 1)
	case action.KindDrag:
		return b.drag(ctx, act)
	case action.KindHotkey:
		return b.hotkey(ctx, act.Args["key"])
	case action.KindType:
		return b.typeText(ctx, act.Args["content"])
	case action.KindScroll:
		return b.scroll(ctx, act)
	case action.KindWait:
		return b.wait(ctx)
	case action.KindGotoURL:
		return b.Navigate(ctx, act.Args["url"])
	case action.KindFinished:
		// Terminal actions are consumed by the loop before dispatch.
		return nil
	default:
		panic(fmt.Sprintf("browser: unknown action kind %q", act.Kind))
	}
}

func (b *Browser) click(ctx context.Context, act action.Action, button input.MouseButton, clicks int) error {
	x, y, err := pointArgs(act, "x", "y")
	if err != nil {
		return &ActuatorError{Op: "click", Err: err}
	}

	events := []chromedp.Action{
		input.DispatchMouseEvent(input.MouseMoved, x, y),
	}
	// A double click is two press/release pairs with an incrementing count,
	// matching what a real mouse produces.
	for i := 1; i <= clicks; i++ {
		events = append(events,
			input.DispatchMouseEvent(input.MousePressed, x, y).
				WithButton(button).
				WithClickCount(int64(i)),
			input.DispatchMouseEvent(input.MouseReleased, x, y).
				WithButton(button).
				WithClickCount(int64(i)),
		)
	}

	if err := b.run(ctx, inputTimeout, events...); err != nil {
		return &ActuatorError{Op: "click", Err: err}
	}
	return nil
}

func (b *Browser) drag(ctx context.Context, act action.Action) error {
	sx, sy, err := pointArgs(act, "start_x", "start_y")
	if err != nil {
		return &ActuatorError{Op: "drag", Err: err}
	}
	ex, ey, err := pointArgs(act, "end_x", "end_y")
	if err != nil {
		return &ActuatorError{Op: "drag", Err: err}
	}

	if err := b.run(ctx, inputTimeout,
		input.DispatchMouseEvent(input.MouseMoved, sx, sy),
		input.DispatchMouseEvent(input.MousePressed, sx, sy).
			WithButton(input.Left).
			WithClickCount(1),
		input.DispatchMouseEvent(input.MouseMoved, (sx+ex)/2, (sy+ey)/2).
			WithButton(input.Left),
		input.DispatchMouseEvent(input.MouseMoved, ex, ey).
			WithButton(input.Left),
		input.DispatchMouseEvent(input.MouseReleased, ex, ey).
			WithButton(input.Left).
			WithClickCount(1),
	); err != nil {
		return &ActuatorError{Op: "drag", Err: err}
	}
	return nil
}

func (b *Browser) hotkey(ctx context.Context, combo string) error {
	modifiers, key, err := parseCombo(combo)
	if err != nil {
		return &ActuatorError{Op: "hotkey", Err: err}
	}

	if err := b.run(ctx, inputTimeout,
		input.DispatchKeyEvent(input.KeyDown).
			WithModifiers(modifiers).
			WithKey(key),
		input.DispatchKeyEvent(input.KeyUp).
			WithModifiers(modifiers).
			WithKey(key),
	); err != nil {
		return &ActuatorError{Op: "hotkey", Err: err}
	}
	return nil
}

func (b *Browser) typeText(ctx context.Context, content string) error {
	if err := b.run(ctx, inputTimeout, chromedp.KeyEvent(content)); err != nil {
		return &ActuatorError{Op: "type", Err: err}
	}
	return nil
}

func (b *Browser) scroll(ctx context.Context, act action.Action) error {
	x, y, err := pointArgs(act, "x", "y")
	if err != nil {
		return &ActuatorError{Op: "scroll", Err: err}
	}
	dx, dy, err := scrollDeltas(act.Args["direction"])
	if err != nil {
		return &ActuatorError{Op: "scroll", Err: err}
	}

	if err := b.run(ctx, inputTimeout,
		input.DispatchMouseEvent(input.MouseWheel, x, y).
			WithDeltaX(dx).
			WithDeltaY(dy),
	); err != nil {
		return &ActuatorError{Op: "scroll", Err: err}
	}
	return nil
}

// wait sleeps the fixed settle period, honoring cancellation.
func (b *Browser) wait(ctx context.Context) error {
	timer := time.NewTimer(waitDuration)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return &ActuatorError{Op: "wait", Err: ctx.Err()}
	}
}

// scrollDeltas maps a direction to wheel deltas. Scrolling "down" reveals
// content below, so the delta points the same way the direction names.
func scrollDeltas(direction string) (dx, dy float64, err error) {
	switch direction {
	case "up":
		return 0, -scrollDelta, nil
	case "down":
		return 0, scrollDelta, nil
	case "left":
		return -scrollDelta, 0, nil
	case "right":
		return scrollDelta, 0, nil
	default:
		return 0, 0, fmt.Errorf("unknown scroll direction %q", direction)
	}
}

func pointArgs(act action.Action, xKey, yKey string) (float64, float64, error) {
	x, err := strconv.Atoi(act.Args[xKey])
	if err != nil {
		return 0, 0, fmt.Errorf("bad %s coordinate %q", xKey, act.Args[xKey])
	}
	y, err := strconv.Atoi(act.Args[yKey])
	if err != nil {
		return 0, 0, fmt.Errorf("bad %s coordinate %q", yKey, act.Args[yKey])
	}
	return float64(x), float64(y), nil
}
