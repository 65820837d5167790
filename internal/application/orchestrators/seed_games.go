package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"gameshelf/internal/domain/game"
)

// GameStoreForSeed defines the store interface needed by the game seeder.
type GameStoreForSeed interface {
	Save(ctx context.Context, g game.Game) error
	List(ctx context.Context) ([]game.Game, error)
}

// SeedGamesDeps holds dependencies for seeding.
type SeedGamesDeps struct {
	GameStore  GameStoreForSeed
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteSeedSampleGames populates an empty catalog with a starter set so a
// fresh install has something to browse.
// PRE: database is initialized
// POST: sample games created when the catalog is empty, no-op otherwise
func ExecuteSeedSampleGames(ctx context.Context, deps SeedGamesDeps) error {
	existing, err := deps.GameStore.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	samples := []game.Game{
		{Name: "Catan", Category: "Strategy", MinPlayers: 3, MaxPlayers: 4, DurationMinutes: 90, State: game.StateGood,
			Description: "Trade, build and settle the island of Catan."},
		{Name: "Carcassonne", Category: "Tile placement", MinPlayers: 2, MaxPlayers: 5, DurationMinutes: 45, State: game.StateNew,
			Description: "Build a medieval landscape one tile at a time."},
		{Name: "Pandemic", Category: "Cooperative", MinPlayers: 2, MaxPlayers: 4, DurationMinutes: 60, State: game.StateAcceptable,
			Description: "Work together to cure four diseases before they spread."},
		{Name: "Azul", Category: "Abstract", MinPlayers: 2, MaxPlayers: 4, DurationMinutes: 40, State: game.StateGood,
			Description: "Draft tiles to decorate the palace walls."},
	}

	for _, g := range samples {
		g.ID = deps.GenerateID()
		g.Available = true
		g.AcquisitionDate = deps.Now()
		if err := g.Validate(); err != nil {
			return err
		}
		if err := deps.GameStore.Save(ctx, g); err != nil {
			return err
		}
	}

	slog.Info("catalog_event", "event", "sample_games_seeded", "count", len(samples))
	return nil
}
