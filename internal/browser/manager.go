package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/pfrederiksen/league-schedule/internal/logger"
	"github.com/pfrederiksen/league-schedule/internal/navigator"
	"github.com/pfrederiksen/league-schedule/internal/schedule"
)

// errSessionReleased is returned by NewPage after Release
var errSessionReleased = errors.New("browser session already released")

// Manager launches browser sessions. It holds no browser itself; every
// Acquire starts a fresh one that the caller must Release.
type Manager struct {
	cfg Config
	log *logger.Logger
}

// NewManager creates a manager for cfg
func NewManager(cfg Config, log *logger.Logger) *Manager {
	return &Manager{
		cfg: cfg.withDefaults(),
		log: logger.OrDefault(log).With(logger.Fields{"component": "browser"}),
	}
}

// Session is one running browser and the tabs opened in it
type Session struct {
	cfg Config
	log *logger.Logger

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu       sync.Mutex
	pages    []*Page
	released bool
}

// Acquire starts a browser, or attaches to RemoteURL when configured.
// Any start failure is reported as SessionUnavailable.
func (m *Manager) Acquire(ctx context.Context) (*Session, error) {
	start := time.Now()

	// the session outlives ctx's cancellation; Release owns teardown
	base := context.WithoutCancel(ctx)

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if m.cfg.RemoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(base, m.cfg.RemoteURL)
	} else {
		allocCtx, allocCancel = chromedp.NewExecAllocator(base, m.execOptions()...)
	}

	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...interface{}) {
			m.log.Debug("chromedp: "+fmt.Sprintf(format, args...), nil)
		}),
	)

	s := &Session{
		cfg:           m.cfg,
		log:           m.log,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}

	err := startTarget(ctx, browserCtx, m.cfg.DefaultTimeout)
	if err != nil {
		browserCancel()
		allocCancel()
		logger.IncrCounter("browser.start_failures")
		return nil, schedule.NewError(schedule.CodeSessionUnavailable, "browser could not be started").
			With("env", string(m.cfg.Env)).
			With("execPath", m.cfg.ExecPath).
			With("remoteURL", m.cfg.RemoteURL).
			Wrap(err)
	}

	logger.Since("browser.start", start)
	m.log.Debug("Browser session started", logger.Fields{"env": string(m.cfg.Env)})
	return s, nil
}

// startTarget performs the first Run on a chromedp context, which
// allocates its browser or tab. The Run itself carries no deadline: the
// context given to a target's first Run bounds the target's whole life.
func startTarget(ctx, targetCtx context.Context, timeout time.Duration) error {
	started := make(chan error, 1)
	go func() {
		started <- chromedp.Run(targetCtx)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-started:
		return err
	case <-timer.C:
		return fmt.Errorf("target did not start within %s", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) execOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for _, f := range launchFlags(m.cfg) {
		opts = append(opts, chromedp.Flag(f.name, f.value))
	}
	opts = append(opts,
		chromedp.UserAgent(m.cfg.UserAgent),
		chromedp.WindowSize(m.cfg.ViewportWidth, m.cfg.ViewportHeight),
	)
	if m.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(m.cfg.ExecPath))
	}
	return opts
}

// Release closes every page, asks the browser to close, and kills the
// process if that takes longer than the grace period. Safe to call more
// than once and with a nil session.
func (m *Manager) Release(s *Session) {
	if s == nil {
		return
	}
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	pages := s.pages
	s.pages = nil
	s.mu.Unlock()

	for _, p := range pages {
		p.close()
	}

	closed := make(chan error, 1)
	go func() {
		closed <- chromedp.Cancel(s.browserCtx)
	}()

	timer := time.NewTimer(s.cfg.CloseGrace)
	defer timer.Stop()

	select {
	case err := <-closed:
		if err != nil && !errors.Is(err, context.Canceled) {
			m.log.Warn("Graceful browser close failed", logger.Fields{"error": err.Error()})
		}
	case <-timer.C:
		m.log.Warn("Browser close exceeded grace period, killing process", logger.Fields{
			"grace": s.cfg.CloseGrace.String(),
		})
		logger.IncrCounter("browser.forced_kills")
	}

	s.browserCancel()
	s.allocCancel()
}

// Run acquires a session, opens one page, calls fn and releases the
// session on every exit path, panics included.
func (m *Manager) Run(ctx context.Context, fn func(context.Context, navigator.Page) error) error {
	s, err := m.Acquire(ctx)
	if err != nil {
		return err
	}
	defer m.Release(s)

	page, err := s.NewPage(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, page)
}
