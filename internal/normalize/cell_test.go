package normalize

import "testing"

func TestCleanCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Las Vegas StormLVS", "Las Vegas Storm"},
		{"Las Vegas Storm 12u AALV Storm 12u AA", "Las Vegas Storm 12u AA"},
		{"Las Vegas Storm 12u AA", "Las Vegas Storm 12u AA"},
		{"  Jr.\n  Kings ", "Jr. Kings"},
		{"McDonald Eagles", "McDonald Eagles"},
		{"Team USA", "Team USA"},
		{"NorCal Stars", "NorCal Stars"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CleanCell(tt.in); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFirstTeam(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Las Vegas Storm vs Jr. Kings at City National Arena", "Las Vegas Storm"},
		{"Jets @ Storm", "Jets"},
		{"Storm VS. Jets", "Storm"},
		{"Las Vegas Storm", "Las Vegas Storm"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := FirstTeam(tt.in); got != tt.want {
				t.Errorf("FirstTeam(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
