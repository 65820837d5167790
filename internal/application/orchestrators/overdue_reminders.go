package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gameshelf/internal/adapters/email"
	"gameshelf/internal/domain/game"
	domain "gameshelf/internal/domain/loan"
	"gameshelf/internal/domain/user"
)

// LoanStoreForReminders defines the loan store interface needed by the reminder job.
type LoanStoreForReminders interface {
	ListActive(ctx context.Context) ([]domain.Loan, error)
}

// UserStoreForReminders resolves borrowers for reminder delivery.
type UserStoreForReminders interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// GameStoreForReminders resolves game names for reminder bodies.
type GameStoreForReminders interface {
	GetByID(ctx context.Context, id string) (game.Game, error)
}

// OverdueReminderDeps holds dependencies for the reminder job.
type OverdueReminderDeps struct {
	LoanStore LoanStoreForReminders
	UserStore UserStoreForReminders
	GameStore GameStoreForReminders
	Sender    email.Sender
	From      string
	Now       func() time.Time
}

// OverdueReminderConfig controls the background reminder scheduler.
type OverdueReminderConfig struct {
	Interval time.Duration
	Enabled  bool
}

// DefaultOverdueReminderConfig returns sensible defaults.
func DefaultOverdueReminderConfig() OverdueReminderConfig {
	return OverdueReminderConfig{
		Interval: 12 * time.Hour,
		Enabled:  true,
	}
}

// ExecuteSendOverdueReminders emails every borrower holding an overdue loan.
// A failed send for one borrower does not block the rest.
// PRE: deps are initialized
// POST: returns the number of reminders sent
func ExecuteSendOverdueReminders(ctx context.Context, deps OverdueReminderDeps) (int, error) {
	loans, err := deps.LoanStore.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	now := deps.Now()
	sent := 0
	for _, l := range loans {
		if !l.IsOverdue(now) {
			continue
		}

		borrower, err := deps.UserStore.GetByID(ctx, l.UserID)
		if err != nil {
			slog.Warn("reminder_event", "event", "borrower_lookup_failed", "loan_id", l.ID, "error", err)
			continue
		}
		g, err := deps.GameStore.GetByID(ctx, l.GameID)
		if err != nil {
			slog.Warn("reminder_event", "event", "game_lookup_failed", "loan_id", l.ID, "error", err)
			continue
		}

		_, err = deps.Sender.Send(ctx, email.SendRequest{
			To:      []string{borrower.Email},
			From:    deps.From,
			Subject: fmt.Sprintf("Overdue loan: %s", g.Name),
			HTML: fmt.Sprintf("<p>Hi %s,</p><p>The game <strong>%s</strong> was due back on %s. Please return it to the library.</p>",
				borrower.FullName(), g.Name, l.EstimatedReturnDate.Format("2006-01-02")),
		})
		if err != nil {
			slog.Warn("reminder_event", "event", "reminder_send_failed", "loan_id", l.ID, "error", err)
			continue
		}
		sent++
	}

	slog.Info("reminder_event", "event", "overdue_reminders_sent", "count", sent)
	return sent, nil
}

// StartOverdueReminderScheduler starts a background goroutine that
// periodically sends overdue reminders.
// PRE: Context is valid, deps are initialized
// POST: Goroutine started, returns cancel function
func StartOverdueReminderScheduler(ctx context.Context, deps OverdueReminderDeps, cfg OverdueReminderConfig) func() {
	if !cfg.Enabled {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := ExecuteSendOverdueReminders(ctx, deps); err != nil {
					slog.Error("reminder_scheduler_error", "error", err)
				}
			}
		}
	}()

	return cancel
}
