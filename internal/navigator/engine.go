package navigator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pfrederiksen/league-schedule/internal/logger"
	"github.com/pfrederiksen/league-schedule/internal/schedule"
)

const (
	// DefaultSeasonParam is the query parameter that pre-selects a season
	DefaultSeasonParam = "season"

	snippetLength = 300
)

// Config bounds every wait the engine performs
type Config struct {
	BaseURL      string
	SeasonParam  string
	MountMarkers []string
	Locators     Locators

	BootTimeout    time.Duration // mount marker must appear within this
	BootSettle     time.Duration // cap on the network-idle wait after mount
	ControlTimeout time.Duration // a selectable control must appear within this
	OptionSettle   time.Duration // pad before reading a control's options
	SettleMin      time.Duration // fixed pad used when no refresh was observed
	SettleMax      time.Duration // cap on the fingerprint poll after a selection
	IdleWindow     time.Duration // quiet period that counts as network idle
	IdleTimeout    time.Duration // cap on the network-idle wait after a selection
	PollInterval   time.Duration
}

// DefaultConfig returns the production timings for baseURL
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:        baseURL,
		SeasonParam:    DefaultSeasonParam,
		MountMarkers:   DefaultMountMarkers,
		Locators:       DefaultLocators,
		BootTimeout:    15 * time.Second,
		BootSettle:     5 * time.Second,
		ControlTimeout: 10 * time.Second,
		OptionSettle:   300 * time.Millisecond,
		SettleMin:      750 * time.Millisecond,
		SettleMax:      8 * time.Second,
		IdleWindow:     500 * time.Millisecond,
		IdleTimeout:    8 * time.Second,
		PollInterval:   200 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig(c.BaseURL)
	if c.SeasonParam == "" {
		c.SeasonParam = d.SeasonParam
	}
	if c.MountMarkers == nil {
		c.MountMarkers = d.MountMarkers
	}
	if c.Locators == nil {
		c.Locators = d.Locators
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	return c
}

// Engine drives one page through the selection funnel. It is not safe for
// concurrent use; each call owns its page exclusively.
type Engine struct {
	page  Page
	cfg   Config
	log   *logger.Logger
	state State
}

// New creates an engine over page. Zero durations in cfg are used as-is, so
// start from DefaultConfig when in doubt.
func New(page Page, cfg Config, log *logger.Logger) *Engine {
	return &Engine{
		page:  page,
		cfg:   cfg.withDefaults(),
		log:   logger.OrDefault(log).With(logger.Fields{"component": "navigator"}),
		state: StateUnloaded,
	}
}

// State returns the current funnel position
func (e *Engine) State() State {
	return e.state
}

// PageURL builds the source URL, embedding seasonID as a query parameter when set
func PageURL(baseURL, seasonParam, seasonID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid source url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid source url %q: scheme and host required", baseURL)
	}
	if seasonID != "" {
		q := u.Query()
		q.Set(seasonParam, seasonID)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Load navigates to the source page and waits for it to bootstrap. With a
// season id the page pre-selects the season and the engine enters
// SeasonSelected directly.
func (e *Engine) Load(ctx context.Context, seasonID string) error {
	if e.state != StateUnloaded {
		return transitionError(e.state, StateLoaded)
	}
	start := time.Now()
	defer logger.Since("navigator.load", start)

	target, err := PageURL(e.cfg.BaseURL, e.cfg.SeasonParam, seasonID)
	if err != nil {
		return err
	}

	e.log.Debug("Loading schedule page", logger.Fields{"url": target})
	if err := e.page.Navigate(ctx, target); err != nil {
		return schedule.NewError(schedule.CodeRenderTimeout, "navigation failed").
			With("url", target).
			Wrap(err)
	}

	if len(e.cfg.MountMarkers) > 0 {
		mounted, err := e.poll(ctx, e.cfg.BootTimeout, func(ctx context.Context) (bool, error) {
			return e.anyExists(ctx, e.cfg.MountMarkers)
		})
		if err != nil {
			return err
		}
		if !mounted {
			return e.renderTimeout(ctx, target, "client application did not mount").
				With("markers", strings.Join(e.cfg.MountMarkers, ", "))
		}
	}

	if idle, err := e.page.WaitNetworkIdle(ctx, e.cfg.IdleWindow, e.cfg.BootSettle); err != nil {
		return fmt.Errorf("waiting for boot settle: %w", err)
	} else if !idle {
		e.log.Debug("Network still busy after boot settle", logger.Fields{"url": target})
	}

	if seasonID != "" {
		e.state = StateSeasonSelected
		return nil
	}

	ready, err := e.poll(ctx, e.cfg.ControlTimeout, func(ctx context.Context) (bool, error) {
		for _, role := range Roles {
			if sel, err := e.findControl(ctx, role); err != nil || sel != "" {
				return sel != "", err
			}
		}
		return false, nil
	})
	if err != nil {
		return err
	}
	if !ready {
		return e.renderTimeout(ctx, target, "no selectable control appeared")
	}

	e.state = StateLoaded
	return nil
}

// SelectSeason selects value on the season control and waits for the division list to refresh
func (e *Engine) SelectSeason(ctx context.Context, value string) error {
	if e.state != StateLoaded {
		return transitionError(e.state, StateSeasonSelected)
	}
	if err := e.selectAndSettle(ctx, RoleSeason, value); err != nil {
		return err
	}
	e.state = StateSeasonSelected
	return nil
}

// SelectDivision selects value on the division control and waits for the team list to refresh
func (e *Engine) SelectDivision(ctx context.Context, value string) error {
	if e.state != StateSeasonSelected {
		return transitionError(e.state, StateDivisionSelected)
	}
	if err := e.selectAndSettle(ctx, RoleDivision, value); err != nil {
		return err
	}
	e.state = StateDivisionSelected
	return nil
}

// SelectTeam selects value on the team control. An empty value leaves the
// control alone and enters AllTeams.
func (e *Engine) SelectTeam(ctx context.Context, value string) error {
	if e.state != StateDivisionSelected {
		target := StateTeamSelected
		if value == "" {
			target = StateAllTeams
		}
		return transitionError(e.state, target)
	}
	if value == "" {
		e.state = StateAllTeams
		return nil
	}
	if err := e.selectAndSettle(ctx, RoleTeam, value); err != nil {
		return err
	}
	e.state = StateTeamSelected
	return nil
}

// ResolveControl returns the first candidate selector for role that exists
// and yields at least one non-empty option.
func (e *Engine) ResolveControl(ctx context.Context, role Role) (string, error) {
	sel, err := e.findControl(ctx, role)
	if err != nil {
		return "", err
	}
	if sel == "" {
		return "", schedule.NewError(schedule.CodeControlNotFound, "no candidate locator matched").
			With("role", string(role)).
			With("candidates", strings.Join(e.cfg.Locators.For(role), " | "))
	}
	return sel, nil
}

// Options reads the valid entries of the control for role. A control that
// never appears, or that holds only placeholders, yields an empty list.
// Only page transport failures are returned as errors.
func (e *Engine) Options(ctx context.Context, role Role) ([]schedule.SelectOption, error) {
	candidates := e.cfg.Locators.For(role)

	found, err := e.poll(ctx, e.cfg.ControlTimeout, func(ctx context.Context) (bool, error) {
		return e.anyExists(ctx, candidates)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		e.log.Debug("Control never appeared", logger.Fields{"role": string(role)})
		return []schedule.SelectOption{}, nil
	}

	if err := sleep(ctx, e.cfg.OptionSettle); err != nil {
		return nil, err
	}

	for _, sel := range candidates {
		opts, err := e.validOptions(ctx, sel)
		if err != nil {
			return nil, err
		}
		if len(opts) > 0 {
			e.log.Debug("Read control options", logger.Fields{
				"role":     string(role),
				"selector": sel,
				"count":    len(opts),
			})
			return opts, nil
		}
	}
	return []schedule.SelectOption{}, nil
}

// HTML returns the rendered document
func (e *Engine) HTML(ctx context.Context) (string, error) {
	if e.state == StateUnloaded {
		return "", fmt.Errorf("%w: page not loaded", ErrInvalidTransition)
	}
	return e.page.HTML(ctx)
}

func (e *Engine) selectAndSettle(ctx context.Context, role Role, value string) error {
	start := time.Now()
	defer logger.Since("navigator.select."+string(role), start)

	sel, err := e.ResolveControl(ctx, role)
	if err != nil {
		return err
	}

	before, err := e.page.Fingerprint(ctx)
	if err != nil {
		return fmt.Errorf("fingerprint before %s selection: %w", role, err)
	}

	if err := e.page.Select(ctx, sel, value); err != nil {
		return fmt.Errorf("select %s %q via %s: %w", role, value, sel, err)
	}

	return e.settle(ctx, role, before)
}

// settle waits for the content to change after a selection, then for the
// network to go quiet. The fixed pad only applies when no change was seen.
func (e *Engine) settle(ctx context.Context, role Role, before string) error {
	changed, err := e.poll(ctx, e.cfg.SettleMax, func(ctx context.Context) (bool, error) {
		now, err := e.page.Fingerprint(ctx)
		if err != nil {
			return false, err
		}
		return now != before, nil
	})
	if err != nil {
		return err
	}
	if !changed {
		e.log.Debug("No refresh observed after selection", logger.Fields{"role": string(role)})
		if err := sleep(ctx, e.cfg.SettleMin); err != nil {
			return err
		}
	}

	idle, err := e.page.WaitNetworkIdle(ctx, e.cfg.IdleWindow, e.cfg.IdleTimeout)
	if err != nil {
		return fmt.Errorf("waiting for network idle after %s selection: %w", role, err)
	}
	if !idle {
		e.log.Warn("Network still busy after selection", logger.Fields{"role": string(role)})
	}
	return nil
}

func (e *Engine) findControl(ctx context.Context, role Role) (string, error) {
	for _, sel := range e.cfg.Locators.For(role) {
		ok, err := e.page.Exists(ctx, sel)
		if err != nil {
			return "", err
		}
		if !ok {
			continue
		}
		opts, err := e.validOptions(ctx, sel)
		if err != nil {
			return "", err
		}
		if len(opts) > 0 {
			return sel, nil
		}
	}
	return "", nil
}

func (e *Engine) validOptions(ctx context.Context, sel string) ([]schedule.SelectOption, error) {
	raw, err := e.page.Options(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("reading options of %s: %w", sel, err)
	}
	return FilterPlaceholders(raw), nil
}

// FilterPlaceholders drops entries with an empty value or label
func FilterPlaceholders(opts []schedule.SelectOption) []schedule.SelectOption {
	out := make([]schedule.SelectOption, 0, len(opts))
	for _, o := range opts {
		o.Value = strings.TrimSpace(o.Value)
		o.Label = strings.TrimSpace(o.Label)
		if o.Value == "" || o.Label == "" {
			continue
		}
		out = append(out, o)
	}
	return out
}

func (e *Engine) anyExists(ctx context.Context, selectors []string) (bool, error) {
	for _, sel := range selectors {
		ok, err := e.page.Exists(ctx, sel)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// poll runs check until it reports true or timeout elapses. It returns
// false with no error on timeout; a check error or a cancelled parent
// context is returned as-is.
func (e *Engine) poll(ctx context.Context, timeout time.Duration, check func(context.Context) (bool, error)) (bool, error) {
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		ok, err := check(pollCtx)
		if err != nil {
			if pollCtx.Err() != nil && ctx.Err() == nil {
				return false, nil
			}
			return false, err
		}
		if ok {
			return true, nil
		}

		select {
		case <-ticker.C:
		case <-pollCtx.Done():
			if err := ctx.Err(); err != nil {
				return false, err
			}
			return false, nil
		}
	}
}

func (e *Engine) renderTimeout(ctx context.Context, target, message string) *schedule.Error {
	err := schedule.NewError(schedule.CodeRenderTimeout, message).With("url", target)
	snippet, textErr := e.page.Text(ctx, snippetLength)
	if textErr != nil {
		e.log.Debug("Could not read page text for diagnosis", logger.Fields{"error": textErr.Error()})
	}
	return err.With("snippet", snippet)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsTransitionError reports whether err came from an out-of-order step
func IsTransitionError(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}
