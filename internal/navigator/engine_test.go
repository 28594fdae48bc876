package navigator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pfrederiksen/league-schedule/internal/logger"
	"github.com/pfrederiksen/league-schedule/internal/schedule"
)

func quietLogger() *logger.Logger {
	return logger.New(logger.LevelError, &strings.Builder{})
}

func TestPageURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		seasonID string
		want     string
		wantErr  bool
	}{
		{name: "no season", base: "https://schedule.example.com/games", want: "https://schedule.example.com/games"},
		{name: "season appended", base: "https://schedule.example.com/games", seasonID: "2025", want: "https://schedule.example.com/games?season=2025"},
		{name: "existing query kept", base: "https://schedule.example.com/games?league=7", seasonID: "2025", want: "https://schedule.example.com/games?league=7&season=2025"},
		{name: "relative url rejected", base: "/games", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PageURL(tt.base, "season", tt.seasonID)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("PageURL() = %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("PageURL() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("PageURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_FullFunnel(t *testing.T) {
	ctx := context.Background()
	page := funnelPage()
	e := New(page, fastConfig(), quietLogger())

	if err := e.Load(ctx, ""); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if e.State() != StateLoaded {
		t.Fatalf("state = %s, want Loaded", e.State())
	}

	seasons, err := e.Options(ctx, RoleSeason)
	if err != nil {
		t.Fatalf("Options(season) error: %v", err)
	}
	if diff := cmp.Diff(opts("2025", "2025-26 Tier 1", "2024", "2024-25 Tier 1"), seasons); diff != "" {
		t.Errorf("season options mismatch (-want +got):\n%s", diff)
	}

	if err := e.SelectSeason(ctx, "2025"); err != nil {
		t.Fatalf("SelectSeason() error: %v", err)
	}
	divisions, err := e.Options(ctx, RoleDivision)
	if err != nil {
		t.Fatalf("Options(division) error: %v", err)
	}
	if len(divisions) != 2 || divisions[0].Label != "12u AA" {
		t.Errorf("divisions = %+v, want 12u AA and 14u A", divisions)
	}

	if err := e.SelectDivision(ctx, "12AA"); err != nil {
		t.Fatalf("SelectDivision() error: %v", err)
	}
	if err := e.SelectTeam(ctx, "t1"); err != nil {
		t.Fatalf("SelectTeam() error: %v", err)
	}
	if e.State() != StateTeamSelected {
		t.Errorf("state = %s, want TeamSelected", e.State())
	}

	want := `select[name="season"]=2025,select#ddlDivision=12AA,select[name="team"]=t1`
	if got := page.selections(); got != want {
		t.Errorf("selections = %s, want %s", got, want)
	}
	if len(page.navigated) != 1 {
		t.Errorf("page navigated %d times, want 1", len(page.navigated))
	}
}

func TestEngine_LoadWithSeasonIDSkipsSeasonControl(t *testing.T) {
	ctx := context.Background()
	page := newFakePage()
	page.controls[`select#ddlDivision`] = opts("12AA", "12u AA")
	e := New(page, fastConfig(), quietLogger())

	if err := e.Load(ctx, "2025"); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if e.State() != StateSeasonSelected {
		t.Errorf("state = %s, want SeasonSelected", e.State())
	}
	if got := page.navigated[0]; !strings.HasSuffix(got, "?season=2025") {
		t.Errorf("navigated to %s, want season query parameter", got)
	}
}

func TestEngine_LoadRenderTimeout(t *testing.T) {
	page := newFakePage()
	page.text = "Something went wrong. Please reload."
	e := New(page, fastConfig(), quietLogger())

	err := e.Load(context.Background(), "")
	if !errors.Is(err, schedule.ErrRenderTimeout) {
		t.Fatalf("Load() error = %v, want RenderTimeout", err)
	}
	sErr, _ := schedule.AsError(err)
	if !strings.Contains(sErr.Details["snippet"], "Something went wrong") {
		t.Errorf("snippet = %q, want page text", sErr.Details["snippet"])
	}
	if e.State() != StateUnloaded {
		t.Errorf("state = %s, want Unloaded after failure", e.State())
	}
}

func TestEngine_LoadMountMarkerMissing(t *testing.T) {
	page := newFakePage()
	page.mountMarker = "#never"
	page.controls[`select[name="season"]`] = opts("2025", "2025-26")
	e := New(page, fastConfig(), quietLogger())

	err := e.Load(context.Background(), "")
	if !errors.Is(err, schedule.ErrRenderTimeout) {
		t.Fatalf("Load() error = %v, want RenderTimeout", err)
	}
}

func TestEngine_InvalidTransitions(t *testing.T) {
	ctx := context.Background()
	e := New(funnelPage(), fastConfig(), quietLogger())

	if err := e.SelectDivision(ctx, "12AA"); !IsTransitionError(err) {
		t.Errorf("SelectDivision before Load: error = %v, want invalid transition", err)
	}
	if _, err := e.HTML(ctx); !IsTransitionError(err) {
		t.Errorf("HTML before Load: error = %v, want invalid transition", err)
	}
	if err := e.Load(ctx, ""); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if err := e.Load(ctx, ""); !IsTransitionError(err) {
		t.Errorf("second Load: error = %v, want invalid transition", err)
	}
	if err := e.SelectTeam(ctx, ""); !IsTransitionError(err) {
		t.Errorf("SelectTeam from Loaded: error = %v, want invalid transition", err)
	}
}

func TestEngine_SelectTeamEmptyEntersAllTeams(t *testing.T) {
	ctx := context.Background()
	page := funnelPage()
	e := New(page, fastConfig(), quietLogger())

	for _, step := range []func() error{
		func() error { return e.Load(ctx, "") },
		func() error { return e.SelectSeason(ctx, "2025") },
		func() error { return e.SelectDivision(ctx, "12AA") },
		func() error { return e.SelectTeam(ctx, "") },
	} {
		if err := step(); err != nil {
			t.Fatalf("funnel step error: %v", err)
		}
	}
	if e.State() != StateAllTeams {
		t.Errorf("state = %s, want AllTeams", e.State())
	}
	if strings.Contains(page.selections(), "team") {
		t.Errorf("team control was touched: %s", page.selections())
	}
}

func TestEngine_ResolveControl(t *testing.T) {
	ctx := context.Background()

	t.Run("skips candidates holding only placeholders", func(t *testing.T) {
		page := newFakePage()
		page.mounted = true
		page.controls[`select[name="division"]`] = opts("", "Select division")
		page.controls[`select[id*="division" i]`] = opts("12AA", "12u AA")
		e := New(page, fastConfig(), quietLogger())

		got, err := e.ResolveControl(ctx, RoleDivision)
		if err != nil {
			t.Fatalf("ResolveControl() error: %v", err)
		}
		if got != `select[id*="division" i]` {
			t.Errorf("ResolveControl() = %s", got)
		}
	})

	t.Run("names role and candidates when nothing matches", func(t *testing.T) {
		page := newFakePage()
		page.mounted = true
		e := New(page, fastConfig(), quietLogger())

		_, err := e.ResolveControl(ctx, RoleTeam)
		if !errors.Is(err, schedule.ErrControlNotFound) {
			t.Fatalf("ResolveControl() error = %v, want ControlNotFound", err)
		}
		sErr, _ := schedule.AsError(err)
		if sErr.Details["role"] != "team" {
			t.Errorf("role detail = %q, want team", sErr.Details["role"])
		}
		if !strings.Contains(sErr.Details["candidates"], `select#ddlTeam`) {
			t.Errorf("candidates detail = %q, want the tried selectors", sErr.Details["candidates"])
		}
	})

	t.Run("custom locator table", func(t *testing.T) {
		page := newFakePage()
		page.mounted = true
		page.controls[`#custom-season`] = opts("2025", "2025-26")
		cfg := fastConfig()
		cfg.Locators = Locators{RoleSeason: {`#custom-season`}}
		e := New(page, cfg, quietLogger())

		got, err := e.ResolveControl(ctx, RoleSeason)
		if err != nil || got != `#custom-season` {
			t.Errorf("ResolveControl() = %q, %v", got, err)
		}
	})
}

func TestEngine_Options(t *testing.T) {
	ctx := context.Background()

	t.Run("missing control yields empty list", func(t *testing.T) {
		page := newFakePage()
		page.mounted = true
		e := New(page, fastConfig(), quietLogger())

		got, err := e.Options(ctx, RoleTeam)
		if err != nil {
			t.Fatalf("Options() error: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("Options() = %#v, want empty non-nil slice", got)
		}
	})

	t.Run("placeholders only yields empty list", func(t *testing.T) {
		page := newFakePage()
		page.mounted = true
		page.controls[`select[name="team"]`] = opts("", "All Teams", "0", "")
		e := New(page, fastConfig(), quietLogger())

		got, err := e.Options(ctx, RoleTeam)
		if err != nil || len(got) != 0 {
			t.Errorf("Options() = %+v, %v; want empty", got, err)
		}
	})

	t.Run("transport failure propagates", func(t *testing.T) {
		page := newFakePage()
		page.mounted = true
		page.existsErr = errTransport
		e := New(page, fastConfig(), quietLogger())

		if _, err := e.Options(ctx, RoleSeason); !errors.Is(err, errTransport) {
			t.Errorf("Options() error = %v, want transport error", err)
		}
	})
}

func TestEngine_SelectFailurePropagates(t *testing.T) {
	ctx := context.Background()
	page := funnelPage()
	e := New(page, fastConfig(), quietLogger())
	if err := e.Load(ctx, ""); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	page.selectErr = errTransport

	if err := e.SelectSeason(ctx, "2025"); !errors.Is(err, errTransport) {
		t.Errorf("SelectSeason() error = %v, want wrapped transport error", err)
	}
	if e.State() != StateLoaded {
		t.Errorf("state = %s, want Loaded after failed selection", e.State())
	}
}

func TestEngine_SettleWithoutRefreshFallsBackToPad(t *testing.T) {
	ctx := context.Background()
	page := newFakePage()
	page.controls[`select[name="season"]`] = opts("2025", "2025-26")
	page.busy = true
	e := New(page, fastConfig(), quietLogger())

	if err := e.Load(ctx, ""); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	// selecting renders nothing new and the network never idles; both waits are bounded
	if err := e.SelectSeason(ctx, "2025"); err != nil {
		t.Fatalf("SelectSeason() error: %v", err)
	}
	if e.State() != StateSeasonSelected {
		t.Errorf("state = %s, want SeasonSelected", e.State())
	}
}

func TestFilterPlaceholders(t *testing.T) {
	in := []schedule.SelectOption{
		{Value: "", Label: "Select"},
		{Value: " 2025 ", Label: " 2025-26 ", Selected: true},
		{Value: "x", Label: "  "},
	}
	want := []schedule.SelectOption{{Value: "2025", Label: "2025-26", Selected: true}}
	if diff := cmp.Diff(want, FilterPlaceholders(in)); diff != "" {
		t.Errorf("FilterPlaceholders() mismatch (-want +got):\n%s", diff)
	}
}
