package scraper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/pfrederiksen/league-schedule/internal/logger"
	"github.com/pfrederiksen/league-schedule/internal/navigator"
	"github.com/pfrederiksen/league-schedule/internal/schedule"
)

func quietLogger() *logger.Logger {
	return logger.New(logger.LevelError, &strings.Builder{})
}

func loadFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/schedule_table.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}
	return string(data)
}

func TestParseGames_Fixture(t *testing.T) {
	skippedBefore := logger.CounterValue("scraper.rows_skipped")
	dupBefore := logger.CounterValue("scraper.duplicate_headers")

	games, err := ParseGames(strings.NewReader(loadFixture(t)), "12u AA", "2025-26 Tier 1", quietLogger())
	if err != nil {
		t.Fatalf("ParseGames failed: %v", err)
	}

	want := []schedule.Game{
		{
			Date: "2025-09-13", Time: "19:15",
			Home: "Las Vegas Storm", Away: "Jr. Kings 12u AA",
			Venue: "City National Arena", Rink: "Rink 2",
			Division: "12u AA", Status: "Final",
		},
		{
			Date: "2025-09-14", Time: "09:00",
			Home: "Jr. Kings 12u AA", Away: "Las Vegas Storm",
			Venue:    "Toyota Sports Performance Center",
			Division: "12u AA",
		},
		{
			Date: "2026-01-10",
			Home: "Las Vegas Storm", Away: "Desert Youth",
			Venue: "SoBe Ice Arena", Rink: "Sheet A",
			Division: "12u AA", Status: "Scheduled",
		},
	}
	if diff := cmp.Diff(want, games); diff != "" {
		t.Errorf("ParseGames() mismatch (-want +got):\n%s", diff)
	}

	if got := logger.CounterValue("scraper.rows_skipped") - skippedBefore; got != 3 {
		t.Errorf("rows skipped = %d, want 3 (bad date, same teams, note row)", got)
	}
	if got := logger.CounterValue("scraper.duplicate_headers") - dupBefore; got != 1 {
		t.Errorf("duplicate headers = %d, want 1", got)
	}
}

func TestParseGames_DuplicateHeaderRowDropped(t *testing.T) {
	html := `<table>
		<tr><th>Date</th><th>Home</th><th>Away</th></tr>
		<tr><td>Date</td><td>Home</td><td>Away</td></tr>
	</table>`

	games, err := ParseGames(strings.NewReader(html), "12u AA", "2025-26", quietLogger())
	if err != nil {
		t.Fatalf("ParseGames failed: %v", err)
	}
	if len(games) != 0 {
		t.Errorf("got %d games from a repeated header, want 0: %+v", len(games), games)
	}
}

func TestParseGames_GenericTeamColumnsAndInlineTime(t *testing.T) {
	html := `<table>
		<tr><th>Game Date</th><th>Team</th><th>Opponent</th><th>Rink</th><th>Division</th></tr>
		<tr><td>09/13/2025 7:15 PM</td><td>Las Vegas Storm</td><td>Desert Youth</td><td>SoBe Ice Arena - Rink 1</td><td>12u AA</td></tr>
		<tr><td>10/4/2025</td><td>Las Vegas Storm</td><td>Jr. Kings</td><td>SoBe Ice Arena</td><td></td></tr>
	</table>`

	games, err := ParseGames(strings.NewReader(html), "", "2025-26", quietLogger())
	if err != nil {
		t.Fatalf("ParseGames failed: %v", err)
	}
	want := []schedule.Game{
		{
			Date: "2025-09-13", Time: "19:15",
			Home: "Las Vegas Storm", Away: "Desert Youth",
			Venue: "SoBe Ice Arena", Rink: "Rink 1", Division: "12u AA",
		},
	}
	// the second row has no division anywhere and is dropped
	if diff := cmp.Diff(want, games); diff != "" {
		t.Errorf("ParseGames() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseGames_ColumnOrderIndependent(t *testing.T) {
	html := `<table>
		<tr><th>Visitor</th><th>Home Team</th><th>Time</th><th>Date</th></tr>
		<tr><td>Desert Youth</td><td>Las Vegas Storm 12u AA</td><td>19:15</td><td>2025-09-13</td></tr>
	</table>`

	games, err := ParseGames(strings.NewReader(html), "", "2025-26", quietLogger())
	if err != nil {
		t.Fatalf("ParseGames failed: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}
	g := games[0]
	if g.Home != "Las Vegas Storm 12u AA" || g.Away != "Desert Youth" || g.Date != "2025-09-13" || g.Time != "19:15" {
		t.Errorf("game = %+v", g)
	}
	if g.Division != "12u AA" {
		t.Errorf("division = %q, want inferred 12u AA", g.Division)
	}
}

func TestParseGames_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		html string
		want error
	}{
		{
			name: "no tables",
			html: `<html><body><p>No games scheduled</p></body></html>`,
			want: schedule.ErrTableNotFound,
		},
		{
			name: "no qualifying header",
			html: `<table><tr><th>Team</th><th>W</th><th>L</th></tr><tr><td>Storm</td><td>3</td><td>1</td></tr></table>`,
			want: schedule.ErrTableNotFound,
		},
		{
			name: "away column missing",
			html: `<table><tr><th>Date</th><th>Team</th><th>Location</th></tr></table>`,
			want: schedule.ErrTableFormatUnrecognized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGames(strings.NewReader(tt.html), "12u AA", "2025-26", quietLogger())
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseGames() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseGames_MissingColumnNamesField(t *testing.T) {
	html := `<table><tr><th>Date</th><th>Home</th></tr></table>`
	_, err := ParseGames(strings.NewReader(html), "12u AA", "2025-26", quietLogger())
	sErr, ok := schedule.AsError(err)
	if !ok {
		t.Fatalf("error %v is not a schedule.Error", err)
	}
	if sErr.Details["field"] != "away" {
		t.Errorf("field detail = %q, want away", sErr.Details["field"])
	}
}

func TestMapColumns(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    columns
	}{
		{
			name:    "standard",
			headers: []string{"Date", "Time", "Home", "Away", "Venue", "Status"},
			want:    columns{roleDate: 0, roleTime: 1, roleHome: 2, roleAway: 3, roleVenue: 4, roleStatus: 5},
		},
		{
			name:    "arena and rink",
			headers: []string{"Date", "Home", "Visitor", "Arena", "Rink"},
			want:    columns{roleDate: 0, roleHome: 1, roleAway: 2, roleVenue: 3, roleRink: 4},
		},
		{
			name:    "generic team",
			headers: []string{"Date", "Team", "Opponent"},
			want:    columns{roleDate: 0, roleHome: 1, roleAway: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, mapColumns(tt.headers)); diff != "" {
				t.Errorf("mapColumns() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// pageStub serves fixed HTML and records selections
type pageStub struct {
	html     string
	options  map[string][]schedule.SelectOption
	selected []string
	url      string
}

func (p *pageStub) Navigate(ctx context.Context, url string) error {
	p.url = url
	return nil
}

func (p *pageStub) Exists(ctx context.Context, selector string) (bool, error) {
	return selector == `#root > *` || strings.HasPrefix(selector, `select[name="`), nil
}

func (p *pageStub) Options(ctx context.Context, selector string) ([]schedule.SelectOption, error) {
	if opts, ok := p.options[selector]; ok {
		return opts, nil
	}
	return []schedule.SelectOption{{Value: "x", Label: "X"}}, nil
}

func (p *pageStub) Select(ctx context.Context, selector, value string) error {
	p.selected = append(p.selected, fmt.Sprintf("%s=%s", selector, value))
	return nil
}

func (p *pageStub) Fingerprint(ctx context.Context) (string, error) {
	return fmt.Sprint(len(p.selected)), nil
}

func (p *pageStub) WaitNetworkIdle(ctx context.Context, quiet, max time.Duration) (bool, error) {
	return true, nil
}

func (p *pageStub) HTML(ctx context.Context) (string, error) { return p.html, nil }

func (p *pageStub) Text(ctx context.Context, max int) (string, error) { return "", nil }

type runnerStub struct {
	page *pageStub
	runs int
}

func (r *runnerStub) Run(ctx context.Context, fn func(context.Context, navigator.Page) error) error {
	r.runs++
	return fn(ctx, r.page)
}

func testNavConfig() navigator.Config {
	return navigator.Config{
		BaseURL:        "https://schedule.example.com/games",
		MountMarkers:   []string{"#root > *"},
		BootTimeout:    20 * time.Millisecond,
		ControlTimeout: 20 * time.Millisecond,
		SettleMax:      20 * time.Millisecond,
		PollInterval:   time.Millisecond,
	}
}

func TestTableSource_FetchGames(t *testing.T) {
	page := &pageStub{html: loadFixture(t)}
	runner := &runnerStub{page: page}
	src := NewTableSource(runner, testNavConfig(), quietLogger())

	games, err := src.FetchGames(context.Background(), schedule.Query{
		SeasonID:   "2025",
		DivisionID: "12AA",
		TeamID:     "t1",
		Season:     "2025-26 Tier 1",
		Division:   "12u AA",
	})
	if err != nil {
		t.Fatalf("FetchGames() error: %v", err)
	}
	if len(games) != 3 {
		t.Fatalf("got %d games, want 3", len(games))
	}
	for i := 1; i < len(games); i++ {
		if games[i-1].Date > games[i].Date {
			t.Errorf("games not sorted: %s before %s", games[i-1].Date, games[i].Date)
		}
	}
	if !strings.HasSuffix(page.url, "?season=2025") {
		t.Errorf("navigated to %s, want season in query", page.url)
	}
	want := []string{`select[name="division"]=12AA`, `select[name="team"]=t1`}
	if diff := cmp.Diff(want, page.selected); diff != "" {
		t.Errorf("selections mismatch (-want +got):\n%s", diff)
	}
	if runner.runs != 1 {
		t.Errorf("runs = %d, want 1", runner.runs)
	}
}

func TestTableSource_FetchGames_IDsOnly(t *testing.T) {
	page := &pageStub{
		html: loadFixture(t),
		options: map[string][]schedule.SelectOption{
			`select[name="season"]`: {
				{Value: "1080", Label: "2024-25 Tier 1"},
				{Value: "1081", Label: "2025-26 Tier 1", Selected: true},
			},
			`select[name="division"]`: {
				{Value: "5510", Label: "12u AA", Selected: true},
				{Value: "5512", Label: "14u A"},
			},
		},
	}
	src := NewTableSource(&runnerStub{page: page}, testNavConfig(), quietLogger())

	games, err := src.FetchGames(context.Background(), schedule.Query{SeasonID: "1081", DivisionID: "5510"})
	if err != nil {
		t.Fatalf("FetchGames() error: %v", err)
	}
	var dates, divisions []string
	for _, g := range games {
		dates = append(dates, g.Date)
		divisions = append(divisions, g.Division)
	}
	// weekday dates are anchored on the season label read from the page
	if diff := cmp.Diff([]string{"2025-09-13", "2025-09-14", "2026-01-10"}, dates); diff != "" {
		t.Errorf("dates mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"12u AA", "12u AA", "12u AA"}, divisions); diff != "" {
		t.Errorf("divisions mismatch (-want +got):\n%s", diff)
	}
}

func TestTableSource_FetchGames_SelectedSeasonLabel(t *testing.T) {
	page := &pageStub{
		html: loadFixture(t),
		options: map[string][]schedule.SelectOption{
			`select[name="season"]`: {{Value: "2025", Label: "2025-26 Tier 1", Selected: true}},
		},
	}
	src := NewTableSource(&runnerStub{page: page}, testNavConfig(), quietLogger())

	games, err := src.FetchGames(context.Background(), schedule.Query{SeasonID: "current", DivisionID: "12AA", Division: "12u AA"})
	if err != nil {
		t.Fatalf("FetchGames() error: %v", err)
	}
	if len(games) != 3 {
		t.Errorf("got %d games, want 3", len(games))
	}
}

func TestTableSource_Validation(t *testing.T) {
	src := NewTableSource(&runnerStub{page: &pageStub{}}, testNavConfig(), quietLogger())

	if _, err := src.FetchGames(context.Background(), schedule.Query{}); err == nil {
		t.Error("expected error without season id")
	}
	_, err := src.FetchGames(context.Background(), schedule.Query{SeasonID: "2025", TeamID: "t1"})
	if !errors.Is(err, ErrTeamWithoutDivision) {
		t.Errorf("error = %v, want ErrTeamWithoutDivision", err)
	}
}
