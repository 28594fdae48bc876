package navigator

import (
	"context"
	"time"

	"github.com/pfrederiksen/league-schedule/internal/schedule"
)

// Page is the browser surface the engine needs. internal/browser provides
// the chromedp-backed implementation.
type Page interface {
	// Navigate loads url and waits for the document to be ready
	Navigate(ctx context.Context, url string) error
	// Exists reports whether selector currently matches an element
	Exists(ctx context.Context, selector string) (bool, error)
	// Options reads every entry of the select control matched by selector
	Options(ctx context.Context, selector string) ([]schedule.SelectOption, error)
	// Select sets the control to value and fires its change event
	Select(ctx context.Context, selector, value string) error
	// Fingerprint summarizes the rendered content so a refresh can be detected
	Fingerprint(ctx context.Context) (string, error)
	// WaitNetworkIdle waits until no request has been in flight for quiet,
	// giving up after max. It reports whether idle was reached.
	WaitNetworkIdle(ctx context.Context, quiet, max time.Duration) (bool, error)
	// HTML returns the outer HTML of the document
	HTML(ctx context.Context) (string, error)
	// Text returns at most max characters of the visible body text
	Text(ctx context.Context, max int) (string, error)
}
