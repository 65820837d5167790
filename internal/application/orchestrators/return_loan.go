package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"gameshelf/internal/domain/audit"
	domain "gameshelf/internal/domain/loan"
)

// LoanStoreForReturn defines the loan store interface needed by ReturnLoan.
type LoanStoreForReturn interface {
	GetByID(ctx context.Context, id string) (domain.Loan, error)
	Save(ctx context.Context, l domain.Loan) error
}

// ReturnLoanInput carries input for the orchestrator.
type ReturnLoanInput struct {
	LoanID    string
	ActorID   string
	ActorName string
	ActorRole string
}

// ReturnLoanDeps holds dependencies for ReturnLoan.
type ReturnLoanDeps struct {
	LoanStore  LoanStoreForReturn
	GameStore  GameStoreForLoan
	AuditStore AuditStoreForLoan
	Now        func() time.Time
}

// ExecuteReturnLoan closes a loan and makes the game available again.
// PRE: LoanID references an active loan
// POST: loan status is returned or late, game available, audit event recorded
func ExecuteReturnLoan(ctx context.Context, input ReturnLoanInput, deps ReturnLoanDeps) (domain.Loan, error) {
	l, err := deps.LoanStore.GetByID(ctx, input.LoanID)
	if err != nil {
		return domain.Loan{}, err
	}

	if err := l.Return(deps.Now()); err != nil {
		return domain.Loan{}, err
	}
	if err := deps.LoanStore.Save(ctx, l); err != nil {
		return domain.Loan{}, err
	}

	g, err := deps.GameStore.GetByID(ctx, l.GameID)
	if err != nil {
		return domain.Loan{}, err
	}
	g.Available = true
	if err := deps.GameStore.Save(ctx, g); err != nil {
		return domain.Loan{}, err
	}

	if deps.AuditStore != nil {
		event := audit.NewEvent(input.ActorID, input.ActorName, input.ActorRole, audit.CategoryLoan, audit.ActionReturn).
			WithResource("loan", l.ID).
			WithDescription("Returned '" + g.Name + "' (" + l.Status + ")")
		if err := deps.AuditStore.Save(ctx, event); err != nil {
			slog.Warn("audit_event", "event", "audit_save_failed", "error", err)
		}
	}

	slog.Info("loan_event", "event", "loan_returned", "loan_id", l.ID, "status", l.Status)

	return l, nil
}
