package projections

import (
	"context"
	"time"

	domainGame "gameshelf/internal/domain/game"
	domainSession "gameshelf/internal/domain/gamesession"
	domainLoan "gameshelf/internal/domain/loan"
	domainUser "gameshelf/internal/domain/user"
)

// GameStore is the game read interface used by projections.
type GameStore interface {
	GetByID(ctx context.Context, id string) (domainGame.Game, error)
	List(ctx context.Context) ([]domainGame.Game, error)
	ListAvailable(ctx context.Context) ([]domainGame.Game, error)
}

// SessionStore is the session read interface used by projections.
type SessionStore interface {
	GetByID(ctx context.Context, id string) (domainSession.Session, error)
	List(ctx context.Context) ([]domainSession.Session, error)
	ListUpcomingByGame(ctx context.Context, gameID, fromDate string) ([]domainSession.Session, error)
}

// LoanStore is the loan read interface used by projections.
type LoanStore interface {
	GetByID(ctx context.Context, id string) (domainLoan.Loan, error)
	List(ctx context.Context) ([]domainLoan.Loan, error)
	ListByUser(ctx context.Context, userID string) ([]domainLoan.Loan, error)
	ListActiveByGame(ctx context.Context, gameID string) ([]domainLoan.Loan, error)
}

// UserStore is the user read interface used by projections.
type UserStore interface {
	GetByID(ctx context.Context, id string) (domainUser.User, error)
	List(ctx context.Context) ([]domainUser.User, error)
	UsernameExists(ctx context.Context, username, excludeID string) (bool, error)
	EmailExists(ctx context.Context, email, excludeID string) (bool, error)
}

// GameSummary is the slice of a game the enrichment endpoints expose.
type GameSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PlayerRange string `json:"playerRange"`
	Duration    int    `json:"durationMinutes"`
	State       string `json:"state"`
	Available   bool   `json:"available"`
	ImagePath   string `json:"imagePath,omitempty"`
}

// SessionSummary describes an upcoming session in enrichment responses.
type SessionSummary struct {
	Title       string `json:"title"`
	CreatorName string `json:"creatorName"`
	DateRange   string `json:"dateRange"`
	TimeRange   string `json:"timeRange"`
}

// GameInfoResult is the payload behind the game-info endpoints.
type GameInfoResult struct {
	Success             bool             `json:"success"`
	Message             string           `json:"message,omitempty"`
	Game                GameSummary      `json:"game"`
	UpcomingSessions    []SessionSummary `json:"upcomingSessions"`
	HasConflicts        bool             `json:"hasConflicts"`
	ConflictMessage     string           `json:"conflictMessage,omitempty"`
	SuggestedReturnDate string           `json:"suggestedReturnDate,omitempty"`
}

// GameInfoDeps holds dependencies for the game-info projections.
type GameInfoDeps struct {
	GameStore    GameStore
	SessionStore SessionStore
	UserStore    UserStore
	Now          func() time.Time
}

// QueryGetLoanGameInfo enriches the new-loan form: game details, the game's
// upcoming sessions, and whether the default one-week return date collides
// with any of them. When it does, the suggested date is the day before the
// earliest conflicting session.
// PRE: gameID is non-empty
// POST: Success is false when the game does not exist or is already on loan
func QueryGetLoanGameInfo(ctx context.Context, gameID string, deps GameInfoDeps) (GameInfoResult, error) {
	g, err := deps.GameStore.GetByID(ctx, gameID)
	if err != nil {
		return GameInfoResult{Success: false, Message: "Game not found"}, nil
	}
	if !g.Available {
		return GameInfoResult{
			Success: false,
			Message: "This game is currently on loan and not available",
			Game:    summarizeGame(g),
		}, nil
	}

	now := deps.Now()
	upcoming, sessionRefs, err := upcomingSessionsForGame(ctx, gameID, now, deps)
	if err != nil {
		return GameInfoResult{}, err
	}

	proposed := domainLoan.DefaultReturnDate(now)
	conflict := domainLoan.CheckConflicts(sessionRefs, proposed, now)

	return GameInfoResult{
		Success:             true,
		Game:                summarizeGame(g),
		UpcomingSessions:    upcoming,
		HasConflicts:        conflict.HasConflicts,
		ConflictMessage:     conflict.Warning,
		SuggestedReturnDate: conflict.SuggestedReturnDate.Format("2006-01-02"),
	}, nil
}

// QueryGetSessionGameInfo enriches the new-session form with catalog details
// for a selected library game. No conflict detection: a session does not block
// other sessions.
// PRE: gameID is non-empty
// POST: Success is false only when the game does not exist
func QueryGetSessionGameInfo(ctx context.Context, gameID string, deps GameInfoDeps) (GameInfoResult, error) {
	g, err := deps.GameStore.GetByID(ctx, gameID)
	if err != nil {
		return GameInfoResult{Success: false, Message: "Game not found"}, nil
	}

	upcoming, _, err := upcomingSessionsForGame(ctx, gameID, deps.Now(), deps)
	if err != nil {
		return GameInfoResult{}, err
	}

	return GameInfoResult{
		Success:          true,
		Game:             summarizeGame(g),
		UpcomingSessions: upcoming,
	}, nil
}

// upcomingSessionsForGame loads scheduled sessions from today onward, in both
// display form and the reference form conflict detection consumes.
func upcomingSessionsForGame(ctx context.Context, gameID string, now time.Time, deps GameInfoDeps) ([]SessionSummary, []domainLoan.SessionRef, error) {
	sessions, err := deps.SessionStore.ListUpcomingByGame(ctx, gameID, now.Format("2006-01-02"))
	if err != nil {
		return nil, nil, err
	}

	var summaries []SessionSummary
	var refs []domainLoan.SessionRef
	for _, s := range sessions {
		creatorName := ""
		if creator, err := deps.UserStore.GetByID(ctx, s.CreatorID); err == nil {
			creatorName = creator.FullName()
		}
		start, err := time.Parse("2006-01-02", s.StartDate)
		if err != nil {
			continue
		}
		summaries = append(summaries, SessionSummary{
			Title:       s.Title,
			CreatorName: creatorName,
			DateRange:   s.FormattedDateRange(),
			TimeRange:   s.FormattedTimeRange(),
		})
		refs = append(refs, domainLoan.SessionRef{
			Title:       s.Title,
			CreatorName: creatorName,
			StartDate:   start,
			DateRange:   s.FormattedDateRange(),
			TimeRange:   s.FormattedTimeRange(),
		})
	}
	return summaries, refs, nil
}

func summarizeGame(g domainGame.Game) GameSummary {
	return GameSummary{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Category:    g.Category,
		PlayerRange: g.PlayerRange(),
		Duration:    g.DurationMinutes,
		State:       g.State,
		Available:   g.Available,
		ImagePath:   g.ImagePath,
	}
}
