package projections

import (
	"context"
	"time"
)

// GameDetailResult carries everything the game detail page needs.
type GameDetailResult struct {
	Game             GameSummary      `json:"game"`
	OnLoan           bool             `json:"onLoan"`
	DueBack          string           `json:"dueBack,omitempty"`
	Overdue          bool             `json:"overdue"`
	UpcomingSessions []SessionSummary `json:"upcomingSessions"`
}

// GameDetailDeps holds dependencies for GetGameDetail.
type GameDetailDeps struct {
	GameStore    GameStore
	SessionStore SessionStore
	LoanStore    LoanStore
	UserStore    UserStore
	Now          func() time.Time
}

// QueryGetGameDetail assembles the detail view for one game: catalog fields,
// current loan state, and upcoming sessions.
// PRE: gameID is non-empty
// POST: returns an error when the game does not exist
func QueryGetGameDetail(ctx context.Context, gameID string, deps GameDetailDeps) (GameDetailResult, error) {
	g, err := deps.GameStore.GetByID(ctx, gameID)
	if err != nil {
		return GameDetailResult{}, err
	}

	now := deps.Now()
	result := GameDetailResult{Game: summarizeGame(g)}

	active, err := deps.LoanStore.ListActiveByGame(ctx, gameID)
	if err != nil {
		return GameDetailResult{}, err
	}
	if len(active) > 0 {
		l := active[0]
		result.OnLoan = true
		result.DueBack = l.EstimatedReturnDate.Format("2006-01-02")
		result.Overdue = l.IsOverdue(now)
	}

	upcoming, _, err := upcomingSessionsForGame(ctx, gameID, now, GameInfoDeps{
		GameStore:    deps.GameStore,
		SessionStore: deps.SessionStore,
		UserStore:    deps.UserStore,
		Now:          deps.Now,
	})
	if err != nil {
		return GameDetailResult{}, err
	}
	result.UpcomingSessions = upcoming

	return result, nil
}
