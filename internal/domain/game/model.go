package game

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Physical condition of a copy in the library.
const (
	StateNew        = "new"
	StateGood       = "good"
	StateAcceptable = "acceptable"
	StateDamaged    = "damaged"
)

// ValidStates contains all valid state values.
var ValidStates = []string{StateNew, StateGood, StateAcceptable, StateDamaged}

// Max length constants for user-editable fields.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 2000
	MaxCategoryLength    = 100
)

// Domain errors
var (
	ErrEmptyName         = errors.New("game name cannot be empty")
	ErrInvalidState      = errors.New("state must be one of: new, good, acceptable, damaged")
	ErrInvalidMinPlayers = errors.New("minimum players must be at least 1")
	ErrInvalidMaxPlayers = errors.New("maximum players cannot be less than minimum players")
	ErrInvalidDuration   = errors.New("duration must be a positive number of minutes")
	ErrNotAvailable      = errors.New("game is not available for loans")
)

// Game represents a catalog entry in the library.
// INVARIANT: 1 <= MinPlayers <= MaxPlayers when both are set.
type Game struct {
	ID              string
	Name            string
	Description     string // markdown, rendered safely
	Category        string
	MinPlayers      int
	MaxPlayers      int
	DurationMinutes int
	Available       bool
	AcquisitionDate time.Time
	State           string
	ImagePath       string
}

// Validate checks the catalog entry's invariants.
// PRE: Game struct is populated
// POST: returns nil if valid, error describing the first violation otherwise
func (g *Game) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if len(g.Name) > MaxNameLength {
		return errors.New("game name cannot exceed 100 characters")
	}
	if len(g.Description) > MaxDescriptionLength {
		return errors.New("game description cannot exceed 2000 characters")
	}
	if len(g.Category) > MaxCategoryLength {
		return errors.New("game category cannot exceed 100 characters")
	}
	if g.MinPlayers < 1 {
		return ErrInvalidMinPlayers
	}
	if g.MaxPlayers < g.MinPlayers {
		return ErrInvalidMaxPlayers
	}
	if g.DurationMinutes < 1 {
		return ErrInvalidDuration
	}
	if !isValidState(g.State) {
		return ErrInvalidState
	}
	return nil
}

// PlayerRange returns a display string like "2-4 players" or "4 players".
// INVARIANT: Game fields are not mutated
func (g *Game) PlayerRange() string {
	if g.MinPlayers == g.MaxPlayers {
		return fmt.Sprintf("%d players", g.MinPlayers)
	}
	return fmt.Sprintf("%d-%d players", g.MinPlayers, g.MaxPlayers)
}

func isValidState(state string) bool {
	for _, s := range ValidStates {
		if s == state {
			return true
		}
	}
	return false
}
