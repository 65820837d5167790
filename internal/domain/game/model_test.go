package game

import (
	"strings"
	"testing"
	"time"
)

// TestGame_Validate tests catalog entry validation rules.
func TestGame_Validate(t *testing.T) {
	valid := Game{
		ID:              "g1",
		Name:            "Catan",
		Category:        "strategy",
		MinPlayers:      3,
		MaxPlayers:      4,
		DurationMinutes: 90,
		Available:       true,
		AcquisitionDate: time.Now(),
		State:           StateGood,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid game, got: %v", err)
	}

	tests := []struct {
		name    string
		modify  func(g *Game)
		wantErr string
	}{
		{"empty name", func(g *Game) { g.Name = "" }, "name cannot be empty"},
		{"whitespace name", func(g *Game) { g.Name = "   " }, "name cannot be empty"},
		{"name too long", func(g *Game) { g.Name = strings.Repeat("x", MaxNameLength+1) }, "name cannot exceed"},
		{"zero min players", func(g *Game) { g.MinPlayers = 0 }, "minimum players"},
		{"max below min", func(g *Game) { g.MinPlayers = 4; g.MaxPlayers = 2 }, "maximum players"},
		{"zero duration", func(g *Game) { g.DurationMinutes = 0 }, "duration"},
		{"invalid state", func(g *Game) { g.State = "mint" }, "state must be"},
		{"description too long", func(g *Game) { g.Description = strings.Repeat("x", MaxDescriptionLength+1) }, "description cannot exceed"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := valid
			tc.modify(&g)
			err := g.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got: %v", tc.wantErr, err)
			}
		})
	}
}

// TestGame_PlayerRange tests the player count display string.
func TestGame_PlayerRange(t *testing.T) {
	g := Game{MinPlayers: 2, MaxPlayers: 4}
	if got := g.PlayerRange(); got != "2-4 players" {
		t.Errorf("PlayerRange() = %q, want %q", got, "2-4 players")
	}
	g = Game{MinPlayers: 4, MaxPlayers: 4}
	if got := g.PlayerRange(); got != "4 players" {
		t.Errorf("PlayerRange() = %q, want %q", got, "4 players")
	}
}
