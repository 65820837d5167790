package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"gameshelf/internal/domain/game"
)

// GameDraftForm is the form name under which new-game drafts are stored.
const GameDraftForm = "new-game"

// GameStoreForCreate defines the store interface needed by CreateGame.
type GameStoreForCreate interface {
	Save(ctx context.Context, g game.Game) error
}

// DraftStoreForCreate defines the draft interface needed by CreateGame.
type DraftStoreForCreate interface {
	Delete(ctx context.Context, userID, form string) error
}

// CreateGameInput carries input for the orchestrator.
type CreateGameInput struct {
	ActorID         string
	Name            string
	Description     string
	Category        string
	MinPlayers      int
	MaxPlayers      int
	DurationMinutes int
	State           string
	ImagePath       string
}

// CreateGameDeps holds dependencies for CreateGame.
type CreateGameDeps struct {
	GameStore  GameStoreForCreate
	DraftStore DraftStoreForCreate
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteCreateGame coordinates adding a game to the catalog. On success any
// saved new-game draft for the actor is discarded.
// PRE: input fields populated, State defaults to good when empty
// POST: game persisted as available, actor's draft cleared
func ExecuteCreateGame(ctx context.Context, input CreateGameInput, deps CreateGameDeps) (game.Game, error) {
	state := input.State
	if state == "" {
		state = game.StateGood
	}

	g := game.Game{
		ID:              deps.GenerateID(),
		Name:            input.Name,
		Description:     input.Description,
		Category:        input.Category,
		MinPlayers:      input.MinPlayers,
		MaxPlayers:      input.MaxPlayers,
		DurationMinutes: input.DurationMinutes,
		Available:       true,
		AcquisitionDate: deps.Now(),
		State:           state,
		ImagePath:       input.ImagePath,
	}

	if err := g.Validate(); err != nil {
		return game.Game{}, err
	}
	if err := deps.GameStore.Save(ctx, g); err != nil {
		return game.Game{}, err
	}

	if deps.DraftStore != nil && input.ActorID != "" {
		if err := deps.DraftStore.Delete(ctx, input.ActorID, GameDraftForm); err != nil {
			slog.Warn("draft_event", "event", "draft_clear_failed", "user_id", input.ActorID, "error", err)
		}
	}

	slog.Info("catalog_event", "event", "game_created", "game_id", g.ID, "name", g.Name)

	return g, nil
}
