package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"gameshelf/internal/domain/audit"
	"gameshelf/internal/domain/game"
	"gameshelf/internal/domain/gamesession"
	domain "gameshelf/internal/domain/loan"
)

// GameStoreForLoan defines the game store interface needed by the loan orchestrators.
type GameStoreForLoan interface {
	GetByID(ctx context.Context, id string) (game.Game, error)
	Save(ctx context.Context, g game.Game) error
}

// LoanStoreForCreate defines the loan store interface needed by CreateLoan.
type LoanStoreForCreate interface {
	Save(ctx context.Context, l domain.Loan) error
	ListActiveByGame(ctx context.Context, gameID string) ([]domain.Loan, error)
}

// AuditStoreForLoan records loan lifecycle events.
type AuditStoreForLoan interface {
	Save(ctx context.Context, event audit.Event) error
}

// SessionStoreForLoan lists a game's upcoming sessions for conflict checks.
type SessionStoreForLoan interface {
	ListUpcomingByGame(ctx context.Context, gameID, fromDate string) ([]gamesession.Session, error)
}

// CreateLoanInput carries input for the orchestrator.
type CreateLoanInput struct {
	ActorID             string
	ActorName           string
	ActorRole           string
	UserID              string
	GameID              string
	EstimatedReturnDate time.Time
}

// CreateLoanDeps holds dependencies for CreateLoan.
type CreateLoanDeps struct {
	LoanStore    LoanStoreForCreate
	GameStore    GameStoreForLoan
	SessionStore SessionStoreForLoan
	AuditStore   AuditStoreForLoan
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteCreateLoan coordinates checking out a game. The game must be
// available and not already on an active loan, and the return date must fall
// after today.
// PRE: UserID and GameID reference existing rows
// POST: loan persisted as active, game marked unavailable, audit event recorded
func ExecuteCreateLoan(ctx context.Context, input CreateLoanInput, deps CreateLoanDeps) (domain.Loan, error) {
	now := deps.Now()

	g, err := deps.GameStore.GetByID(ctx, input.GameID)
	if err != nil {
		return domain.Loan{}, err
	}
	if !g.Available {
		return domain.Loan{}, game.ErrNotAvailable
	}
	active, err := deps.LoanStore.ListActiveByGame(ctx, input.GameID)
	if err != nil {
		return domain.Loan{}, err
	}
	if len(active) > 0 {
		return domain.Loan{}, game.ErrNotAvailable
	}

	returnDate := input.EstimatedReturnDate
	if returnDate.IsZero() {
		returnDate = domain.DefaultReturnDate(now)
	}
	if !returnDate.After(now) {
		return domain.Loan{}, domain.ErrReturnDateNotAhead
	}

	l := domain.Loan{
		ID:                  deps.GenerateID(),
		UserID:              input.UserID,
		GameID:              input.GameID,
		LoanDate:            now,
		EstimatedReturnDate: returnDate,
		Status:              domain.StatusActive,
	}
	if err := l.Validate(); err != nil {
		return domain.Loan{}, err
	}
	if err := deps.LoanStore.Save(ctx, l); err != nil {
		return domain.Loan{}, err
	}

	g.Available = false
	if err := deps.GameStore.Save(ctx, g); err != nil {
		return domain.Loan{}, err
	}

	// Conflicts with upcoming sessions never block the loan; they are recorded
	// so the librarian can chase the game back in time.
	conflictNote := ""
	if deps.SessionStore != nil {
		conflict := sessionConflictsForLoan(ctx, deps, input.GameID, returnDate, now)
		if conflict.HasConflicts {
			conflictNote = " WARNING: " + conflict.Warning
			slog.Warn("loan_event", "event", "loan_conflicts_with_session", "loan_id", l.ID, "game_id", g.ID)
		}
	}

	if deps.AuditStore != nil {
		event := audit.NewEvent(input.ActorID, input.ActorName, input.ActorRole, audit.CategoryLoan, audit.ActionCreate).
			WithResource("loan", l.ID).
			WithDescription("Loan of '" + g.Name + "' until " + returnDate.Format("2006-01-02") + conflictNote)
		if err := deps.AuditStore.Save(ctx, event); err != nil {
			slog.Warn("audit_event", "event", "audit_save_failed", "error", err)
		}
	}

	slog.Info("loan_event", "event", "loan_created", "loan_id", l.ID, "game_id", g.ID, "user_id", l.UserID)

	return l, nil
}

// sessionConflictsForLoan checks the return date against the game's upcoming
// sessions. Store errors degrade to "no conflicts"; the loan itself already
// succeeded.
func sessionConflictsForLoan(ctx context.Context, deps CreateLoanDeps, gameID string, returnDate, now time.Time) domain.ConflictInfo {
	sessions, err := deps.SessionStore.ListUpcomingByGame(ctx, gameID, now.Format("2006-01-02"))
	if err != nil {
		slog.Warn("loan_event", "event", "conflict_check_failed", "game_id", gameID, "error", err)
		return domain.ConflictInfo{}
	}
	var refs []domain.SessionRef
	for _, s := range sessions {
		start, err := time.Parse("2006-01-02", s.StartDate)
		if err != nil {
			continue
		}
		refs = append(refs, domain.SessionRef{
			Title:     s.Title,
			StartDate: start,
			DateRange: s.FormattedDateRange(),
			TimeRange: s.FormattedTimeRange(),
		})
	}
	return domain.CheckConflicts(refs, returnDate, now)
}
