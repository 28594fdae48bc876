package navigator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pfrederiksen/league-schedule/internal/schedule"
)

// fakePage simulates a client-rendered page: controls appear once mounted,
// and selecting a value swaps in the dependent control's options.
type fakePage struct {
	mu sync.Mutex

	mounted     bool
	mountMarker string
	controls    map[string][]schedule.SelectOption
	// children maps "selector=value" to the controls rendered after that selection
	children map[string]map[string][]schedule.SelectOption
	version  int
	busy     bool
	text     string

	navigated []string
	selected  []string
	selectErr error
	existsErr error
}

func newFakePage() *fakePage {
	return &fakePage{
		mountMarker: "#root > *",
		controls:    map[string][]schedule.SelectOption{},
		children:    map[string]map[string][]schedule.SelectOption{},
		text:        "Loading schedule...",
	}
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigated = append(p.navigated, url)
	p.mounted = true
	return nil
}

func (p *fakePage) Exists(ctx context.Context, selector string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.existsErr != nil {
		return false, p.existsErr
	}
	if !p.mounted {
		return false, nil
	}
	if selector == p.mountMarker {
		return true, nil
	}
	_, ok := p.controls[selector]
	return ok, nil
}

func (p *fakePage) Options(ctx context.Context, selector string) ([]schedule.SelectOption, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	opts := p.controls[selector]
	out := make([]schedule.SelectOption, len(opts))
	copy(out, opts)
	return out, nil
}

func (p *fakePage) Select(ctx context.Context, selector, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selectErr != nil {
		return p.selectErr
	}
	if _, ok := p.controls[selector]; !ok {
		return fmt.Errorf("no element matches %s", selector)
	}
	p.selected = append(p.selected, selector+"="+value)
	for sel, opts := range p.children[selector+"="+value] {
		p.controls[sel] = opts
		p.version++
	}
	return nil
}

func (p *fakePage) Fingerprint(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("v%d", p.version), nil
}

func (p *fakePage) WaitNetworkIdle(ctx context.Context, quiet, max time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.busy, nil
}

func (p *fakePage) HTML(ctx context.Context) (string, error) {
	return "<html><body><table></table></body></html>", nil
}

func (p *fakePage) Text(ctx context.Context, max int) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.text) > max {
		return p.text[:max], nil
	}
	return p.text, nil
}

func (p *fakePage) selections() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return strings.Join(p.selected, ",")
}

var errTransport = errors.New("websocket closed")

func fastConfig() Config {
	return Config{
		BaseURL:        "https://schedule.example.com/games",
		SeasonParam:    "season",
		MountMarkers:   []string{"[data-reactroot]", "#root > *"},
		Locators:       DefaultLocators,
		BootTimeout:    50 * time.Millisecond,
		BootSettle:     10 * time.Millisecond,
		ControlTimeout: 50 * time.Millisecond,
		SettleMax:      30 * time.Millisecond,
		SettleMin:      time.Millisecond,
		IdleWindow:     time.Millisecond,
		IdleTimeout:    10 * time.Millisecond,
		PollInterval:   time.Millisecond,
	}
}

func opts(pairs ...string) []schedule.SelectOption {
	out := make([]schedule.SelectOption, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, schedule.SelectOption{Value: pairs[i], Label: pairs[i+1]})
	}
	return out
}

// funnelPage returns a page with a season control whose "2025" selection
// renders divisions, and whose "12AA" division renders teams.
func funnelPage() *fakePage {
	p := newFakePage()
	p.controls[`select[name="season"]`] = opts("", "Select season", "2025", "2025-26 Tier 1", "2024", "2024-25 Tier 1")
	p.children[`select[name="season"]=2025`] = map[string][]schedule.SelectOption{
		`select#ddlDivision`: opts("", "-- Division --", "12AA", "12u AA", "14A", "14u A"),
	}
	p.children[`select#ddlDivision=12AA`] = map[string][]schedule.SelectOption{
		`select[name="team"]`: opts("", "All Teams", "t1", "Las Vegas Storm 12u AA", "t2", "Jr. Kings 12u AA"),
	}
	return p
}
