package filter

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/pfrederiksen/league-schedule/internal/schedule"
)

func sampleGames() []schedule.Game {
	return []schedule.Game{
		{Date: "2025-09-13", Time: "09:00", Home: "Las Vegas Storm 12u AA", Away: "SoCal Bears 12u AA", Venue: "City National Arena", Rink: "Rink 1", Division: "12u AA"},
		{Date: "2025-09-17", Time: "18:30", Home: "SoCal Bears 12u AA", Away: "Las Vegas Storm 12u AA", Venue: "Great Park Ice", Division: "12u AA"},
		{Date: "2025-09-21", Time: "11:15", Home: "Arizona Coyotes 12u AA", Away: "SoCal Bears 12u AA", Venue: "Ice Den Scottsdale", Division: "12u AA", GameType: "away"},
		{Date: "2025-10-04", Time: "", Home: "Las Vegas Storm 12u AA", Away: "Arizona Coyotes 12u AA", Venue: "City National Arena", Rink: "Rink 2", Division: "12u AA", GameType: "home"},
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestFilter_IsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   bool
	}{
		{name: "empty filter", filter: NewFilter(), want: true},
		{name: "date from", filter: &Filter{DateFrom: timePtr(time.Now())}, want: false},
		{name: "weekends only", filter: &Filter{WeekendsOnly: true}, want: false},
		{name: "team", filter: &Filter{Teams: []string{"storm"}}, want: false},
		{name: "side", filter: &Filter{Side: SideAway}, want: false},
		{name: "venue", filter: &Filter{Venues: []string{"arena"}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.IsEmpty(); got != tt.want {
				t.Errorf("Filter.IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_Matches(t *testing.T) {
	games := sampleGames()
	sep1 := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	sep15 := time.Date(2025, 9, 15, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		name   string
		filter *Filter
		game   schedule.Game
		want   bool
	}{
		{name: "empty filter matches all", filter: NewFilter(), game: games[1], want: true},
		{name: "team matches home", filter: &Filter{Teams: []string{"storm 12u"}}, game: games[0], want: true},
		{name: "team matches away", filter: &Filter{Teams: []string{"Las Vegas Storm"}}, game: games[1], want: true},
		{name: "team absent", filter: &Filter{Teams: []string{"storm"}}, game: games[2], want: false},
		{name: "any of several teams", filter: &Filter{Teams: []string{"kings", "coyotes"}}, game: games[2], want: true},
		{name: "home only keeps home game", filter: &Filter{Teams: []string{"storm"}, Side: SideHome}, game: games[0], want: true},
		{name: "home only drops away game", filter: &Filter{Teams: []string{"storm"}, Side: SideHome}, game: games[1], want: false},
		{name: "away only keeps away game", filter: &Filter{Teams: []string{"storm"}, Side: SideAway}, game: games[1], want: true},
		{name: "side without team uses game type", filter: &Filter{Side: SideAway}, game: games[2], want: true},
		{name: "side without team and no game type", filter: &Filter{Side: SideHome}, game: games[0], want: false},
		{name: "venue substring", filter: &Filter{Venues: []string{"national"}}, game: games[0], want: true},
		{name: "venue matches rink", filter: &Filter{Venues: []string{"rink 2"}}, game: games[3], want: true},
		{name: "venue miss", filter: &Filter{Venues: []string{"national"}}, game: games[1], want: false},
		{name: "weekend game", filter: &Filter{WeekendsOnly: true}, game: games[0], want: true},
		{name: "weekday game", filter: &Filter{WeekendsOnly: true}, game: games[1], want: false},
		{name: "within range", filter: &Filter{DateFrom: &sep1, DateTo: &sep15}, game: games[0], want: true},
		{name: "after range", filter: &Filter{DateFrom: &sep1, DateTo: &sep15}, game: games[2], want: false},
		{name: "range end is inclusive", filter: &Filter{DateTo: timePtr(time.Date(2025, 9, 13, 23, 59, 59, 0, time.UTC))}, game: games[0], want: true},
		{name: "range start is inclusive", filter: &Filter{DateFrom: timePtr(time.Date(2025, 10, 4, 0, 0, 0, 0, time.UTC))}, game: games[3], want: true},
		{name: "unparseable date fails date filter", filter: &Filter{DateFrom: &sep1}, game: schedule.Game{Date: "Sep 13"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tt.game); got != tt.want {
				t.Errorf("Filter.Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_Apply(t *testing.T) {
	games := sampleGames()

	t.Run("empty filter returns input", func(t *testing.T) {
		got := NewFilter().Apply(games)
		if diff := cmp.Diff(games, got); diff != "" {
			t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("combined criteria", func(t *testing.T) {
		f := &Filter{Teams: []string{"storm"}, WeekendsOnly: true}
		got := f.Apply(games)
		want := []schedule.Game{games[0], games[3]}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no matches is empty, not nil", func(t *testing.T) {
		got := (&Filter{Teams: []string{"kings"}}).Apply(games)
		if got == nil || len(got) != 0 {
			t.Errorf("Apply() = %#v, want empty slice", got)
		}
	})
}

func TestFilter_String(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   string
	}{
		{name: "empty", filter: NewFilter(), want: "No active filters"},
		{
			name: "all criteria",
			filter: &Filter{
				DateFrom:     timePtr(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)),
				DateTo:       timePtr(time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)),
				Teams:        []string{"Storm 12u"},
				Side:         SideHome,
				Venues:       []string{"Arena"},
				WeekendsOnly: true,
			},
			want: "From: Sep 1, 2025 | To: Sep 15, 2025 | Teams: Storm 12u | Home only | Venues: Arena | Weekends only",
		},
		{name: "away only", filter: &Filter{Side: SideAway}, want: "Away only"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.String(); got != tt.want {
				t.Errorf("Filter.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilter_Clone(t *testing.T) {
	original := &Filter{
		DateFrom:     timePtr(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)),
		Teams:        []string{"storm"},
		Venues:       []string{"arena"},
		Side:         SideAway,
		WeekendsOnly: true,
	}

	clone := original.Clone()
	if diff := cmp.Diff(original, clone); diff != "" {
		t.Fatalf("Clone() mismatch (-want +got):\n%s", diff)
	}

	clone.Teams[0] = "bears"
	clone.Venues = append(clone.Venues, "ice")
	*clone.DateFrom = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if original.Teams[0] != "storm" || len(original.Venues) != 1 {
		t.Error("modifying clone slices changed the original")
	}
	if original.DateFrom.Year() != 2025 {
		t.Error("modifying clone date changed the original")
	}
}

func TestParseSide(t *testing.T) {
	tests := []struct {
		input   string
		want    Side
		wantErr bool
	}{
		{input: "", want: SideAny},
		{input: "any", want: SideAny},
		{input: "HOME", want: SideHome},
		{input: " away ", want: SideAway},
		{input: "visitor", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSide(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSide(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSide(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
