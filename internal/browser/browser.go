// File: internal/browser/browser.go

// Package browser is the actuator side of the agent loop: one Chrome tab,
// driven over CDP, that can report its current state as a screenshot and
// execute the structured actions the parser produces.
package browser

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/tanvirb/websight-cli/api/schemas"
	"github.com/tanvirb/websight-cli/internal/config"
)

// ActuatorError wraps a failed browser operation with the operation name.
type ActuatorError struct {
	Op  string
	Err error
}

func (e *ActuatorError) Error() string { return fmt.Sprintf("browser %s: %v", e.Op, e.Err) }
func (e *ActuatorError) Unwrap() error { return e.Err }

// Browser owns one Chrome process and one tab for the lifetime of a session.
// It is not safe for concurrent use; the agent loop is strictly sequential.
type Browser struct {
	cfg    config.BrowserConfig
	logger *zap.Logger

	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
}

// New launches Chrome and opens the session tab. The allocator derives from
// ctx, so cancelling it tears the whole browser down.
func New(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}
	if cfg.IgnoreTLSErrors {
		opts = append(opts, chromedp.Flag("ignore-certificate-errors", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// Force the target (tab) into existence so launch failures surface here
	// rather than on the first action.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, &ActuatorError{Op: "launch", Err: err}
	}

	b := &Browser{
		cfg:         cfg,
		logger:      logger.Named("browser"),
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
	}
	b.logger.Info("Browser launched",
		zap.Bool("headless", cfg.Headless),
		zap.Int("width", cfg.WindowWidth),
		zap.Int("height", cfg.WindowHeight),
	)
	return b, nil
}

// CaptureState snapshots the tab: viewport screenshot plus current URL.
func (b *Browser) CaptureState(ctx context.Context) (*schemas.Observation, error) {
	opCtx, cancel := b.opContext(ctx, b.cfg.NavigationTimeout)
	defer cancel()

	var shot []byte
	var url string
	if err := chromedp.Run(opCtx,
		chromedp.CaptureScreenshot(&shot),
		chromedp.Location(&url),
	); err != nil {
		return nil, &ActuatorError{Op: "capture_state", Err: err}
	}

	return &schemas.Observation{
		ScreenshotB64: base64.StdEncoding.EncodeToString(shot),
		URL:           url,
		CapturedAt:    time.Now().UTC(),
	}, nil
}

// Navigate loads url in the session tab, waits for the document body, then
// pauses for the configured settle period so late content can render.
func (b *Browser) Navigate(ctx context.Context, url string) error {
	opCtx, cancel := b.opContext(ctx, b.cfg.NavigationTimeout)
	defer cancel()

	b.logger.Debug("Navigating", zap.String("url", url))
	if err := chromedp.Run(opCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return &ActuatorError{Op: "navigate", Err: err}
	}

	if b.cfg.PostLoadWait > 0 {
		if err := chromedp.Run(opCtx, chromedp.Sleep(b.cfg.PostLoadWait)); err != nil {
			return &ActuatorError{Op: "navigate", Err: err}
		}
	}
	return nil
}

// Close tears down the tab and the Chrome process.
func (b *Browser) Close() {
	b.logger.Debug("Closing browser")
	b.tabCancel()
	b.allocCancel()
}

// run executes CDP actions against the session tab with a per-operation
// timeout derived from the caller's context.
func (b *Browser) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	opCtx, cancel := b.opContext(ctx, timeout)
	defer cancel()
	return chromedp.Run(opCtx, actions...)
}

// opContext combines the caller's deadline with the tab's lifetime: the
// returned context is cancelled by whichever ends first.
func (b *Browser) opContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	opCtx, cancel := context.WithTimeout(b.tabCtx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}
