package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/pfrederiksen/league-schedule/internal/logger"
	"github.com/pfrederiksen/league-schedule/internal/navigator"
	"github.com/pfrederiksen/league-schedule/internal/schedule"
)

const idlePollInterval = 50 * time.Millisecond

var _ navigator.Page = (*Page)(nil)

// Page is one browser tab. Every operation is bounded by the session's
// default timeout unless the caller's context expires first.
type Page struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	tracker *requestTracker
}

// NewPage opens a tab with the configured identity and network tracking enabled
func (s *Session) NewPage(ctx context.Context) (*Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil, errSessionReleased
	}

	tabCtx, cancel := chromedp.NewContext(s.browserCtx)
	p := &Page{
		ctx:     tabCtx,
		cancel:  cancel,
		timeout: s.cfg.DefaultTimeout,
		tracker: newRequestTracker(),
	}
	chromedp.ListenTarget(tabCtx, p.tracker.handle)

	if err := startTarget(ctx, tabCtx, s.cfg.DefaultTimeout); err != nil {
		cancel()
		return nil, schedule.NewError(schedule.CodeSessionUnavailable, "could not open page").Wrap(err)
	}

	err := p.run(ctx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": s.cfg.AcceptLanguage}),
		emulation.SetUserAgentOverride(s.cfg.UserAgent).WithAcceptLanguage(s.cfg.AcceptLanguage),
		chromedp.EmulateViewport(int64(s.cfg.ViewportWidth), int64(s.cfg.ViewportHeight)),
	)
	if err != nil {
		cancel()
		return nil, schedule.NewError(schedule.CodeSessionUnavailable, "could not open page").Wrap(err)
	}

	s.pages = append(s.pages, p)
	s.log.Debug("Opened page", logger.Fields{"pages": len(s.pages)})
	return p, nil
}

func (p *Page) close() {
	p.cancel()
}

// run executes actions on the tab with the default timeout, cut short
// when ctx is done.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	opCtx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(opCtx, actions...)
}

// Navigate loads url and waits for the body to be ready
func (p *Page) Navigate(ctx context.Context, url string) error {
	return p.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Exists reports whether selector matches an element right now
func (p *Page) Exists(ctx context.Context, selector string) (bool, error) {
	var found bool
	js := fmt.Sprintf(`document.querySelector(%s) !== null`, jsString(selector))
	if err := p.run(ctx, chromedp.Evaluate(js, &found)); err != nil {
		return false, err
	}
	return found, nil
}

// Options reads value, label and selected state of every option of a select control
func (p *Page) Options(ctx context.Context, selector string) ([]schedule.SelectOption, error) {
	var opts []schedule.SelectOption
	js := fmt.Sprintf(`(function(sel) {
		const el = document.querySelector(sel);
		if (!el || !el.options) { return []; }
		return Array.from(el.options).map(o => ({
			value: o.value,
			label: (o.textContent || '').trim(),
			selected: o.selected
		}));
	})(%s)`, jsString(selector))
	if err := p.run(ctx, chromedp.Evaluate(js, &opts)); err != nil {
		return nil, err
	}
	return opts, nil
}

// Select sets the control's value through the native setter, so framework
// bound controls see it, and dispatches input and change events.
func (p *Page) Select(ctx context.Context, selector, value string) error {
	var result string
	js := fmt.Sprintf(`(function(sel, val) {
		const el = document.querySelector(sel);
		if (!el) { return 'missing'; }
		if (el.options && !Array.from(el.options).some(o => o.value === val)) { return 'no-option'; }
		const setter = Object.getOwnPropertyDescriptor(Object.getPrototypeOf(el), 'value').set;
		setter.call(el, val);
		el.dispatchEvent(new Event('input', { bubbles: true }));
		el.dispatchEvent(new Event('change', { bubbles: true }));
		return 'ok';
	})(%s, %s)`, jsString(selector), jsString(value))
	if err := p.run(ctx, chromedp.Evaluate(js, &result)); err != nil {
		return err
	}
	switch result {
	case "ok":
		return nil
	case "no-option":
		return fmt.Errorf("option %q not present in %s", value, selector)
	default:
		return fmt.Errorf("no element matches %s", selector)
	}
}

// Fingerprint summarizes table rows, control state and body text length
func (p *Page) Fingerprint(ctx context.Context) (string, error) {
	var fp string
	js := `(function() {
		const rows = document.querySelectorAll('table tr').length;
		const controls = Array.from(document.querySelectorAll('select'))
			.map(s => s.options.length + ':' + s.value).join('|');
		const text = document.body ? document.body.innerText.length : 0;
		return rows + '/' + controls + '/' + text;
	})()`
	if err := p.run(ctx, chromedp.Evaluate(js, &fp)); err != nil {
		return "", err
	}
	return fp, nil
}

// WaitNetworkIdle polls the request tracker until quiet has passed with
// nothing in flight, or max elapses.
func (p *Page) WaitNetworkIdle(ctx context.Context, quiet, max time.Duration) (bool, error) {
	deadline := time.NewTimer(max)
	defer deadline.Stop()
	ticker := time.NewTicker(idlePollInterval)
	defer ticker.Stop()

	for {
		if p.tracker.idle(quiet) {
			return true, nil
		}
		select {
		case <-ticker.C:
		case <-deadline.C:
			return false, nil
		case <-ctx.Done():
			return false, ctx.Err()
		case <-p.ctx.Done():
			return false, p.ctx.Err()
		}
	}
}

// HTML returns the document's outer HTML
func (p *Page) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Text returns up to max characters of visible body text
func (p *Page) Text(ctx context.Context, max int) (string, error) {
	var text string
	js := fmt.Sprintf(`(document.body ? document.body.innerText : '').slice(0, %d)`, max)
	if err := p.run(ctx, chromedp.Evaluate(js, &text)); err != nil {
		return "", err
	}
	return text, nil
}

// jsString quotes s as a JavaScript string literal
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
