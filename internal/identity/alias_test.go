package identity

import "testing"

func TestResolveTeamAbbrev(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Red Sox", "BOS"},
		{"red sox", "BOS"},
		{"Boston Red Sox", "BOS"},
		{"  Yankees  ", "NYY"},
		{"St. Louis Cardinals", "STL"},
		{"Blue Jays", "TOR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := resolveTeamAbbrev(tt.name)
			if !ok {
				t.Fatalf("resolveTeamAbbrev(%q) not found", tt.name)
			}
			if got != tt.want {
				t.Errorf("resolveTeamAbbrev(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestResolveTeamAbbrev_Unknown(t *testing.T) {
	if _, ok := resolveTeamAbbrev("Not A Real Team"); ok {
		t.Error("expected unknown team name to not resolve")
	}
}
