package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gameshelf/internal/domain/audit"
	"gameshelf/internal/domain/gamesession"
	"gameshelf/internal/domain/timerange"
)

// SessionStoreForWrite defines the store interface needed by the session orchestrators.
type SessionStoreForWrite interface {
	Save(ctx context.Context, s gamesession.Session) error
	GetByID(ctx context.Context, id string) (gamesession.Session, error)
}

// ValidationError carries the per-field outcome of the scheduling rules so the
// form layer can highlight each field independently.
type ValidationError struct {
	Fields []timerange.FieldState
}

// Error returns the first failing field's message.
func (e *ValidationError) Error() string {
	var msgs []string
	for _, f := range e.Fields {
		if !f.Valid {
			msgs = append(msgs, f.Message)
		}
	}
	if len(msgs) == 0 {
		return "validation failed"
	}
	return strings.Join(msgs, "; ")
}

// SessionInput carries input shared by create and update.
type SessionInput struct {
	CreatorID             string
	GameID                string
	CustomGameName        string
	CustomGameDescription string
	Title                 string
	StartDate             string
	StartTime             string
	EndDate               string
	EndTime               string
	MaxPlayers            int
	Description           string
}

// AuditStoreForSession records session lifecycle events.
type AuditStoreForSession interface {
	Save(ctx context.Context, event audit.Event) error
}

// SessionDeps holds dependencies for the session orchestrators.
type SessionDeps struct {
	SessionStore SessionStoreForWrite
	AuditStore   AuditStoreForSession
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteCreateGameSession validates and persists a new session. Past start
// dates are rejected; the full date/time rule set runs before any store call.
// PRE: input fields populated
// POST: session persisted with status scheduled, or *ValidationError returned
func ExecuteCreateGameSession(ctx context.Context, input SessionInput, deps SessionDeps) (gamesession.Session, error) {
	sess := sessionFromInput(input)
	sess.ID = deps.GenerateID()
	sess.Status = gamesession.StatusScheduled

	if err := validateSession(&sess, timerange.Context{Editing: false}, deps.Now()); err != nil {
		return gamesession.Session{}, err
	}
	if err := deps.SessionStore.Save(ctx, sess); err != nil {
		return gamesession.Session{}, err
	}

	recordSessionAudit(ctx, deps, audit.ActionCreate, &sess, "Session '"+sess.Title+"' scheduled for "+sess.FormattedDateRange())
	slog.Info("session_event", "event", "session_created", "session_id", sess.ID, "start_date", sess.StartDate)

	return sess, nil
}

// ExecuteUpdateGameSession validates and persists changes to an existing
// session. The past-date rule is skipped so sessions that have already begun
// can still be corrected.
// PRE: input.CreatorID may differ from the original creator (admin edits)
// POST: session persisted, or *ValidationError returned
func ExecuteUpdateGameSession(ctx context.Context, id string, input SessionInput, deps SessionDeps) (gamesession.Session, error) {
	existing, err := deps.SessionStore.GetByID(ctx, id)
	if err != nil {
		return gamesession.Session{}, err
	}

	sess := sessionFromInput(input)
	sess.ID = existing.ID
	sess.CreatorID = existing.CreatorID
	sess.Status = existing.Status

	if err := validateSession(&sess, timerange.Context{Editing: true}, deps.Now()); err != nil {
		return gamesession.Session{}, err
	}
	if err := deps.SessionStore.Save(ctx, sess); err != nil {
		return gamesession.Session{}, err
	}

	recordSessionAudit(ctx, deps, audit.ActionUpdate, &sess, "Session '"+sess.Title+"' rescheduled to "+sess.FormattedDateRange())
	slog.Info("session_event", "event", "session_updated", "session_id", sess.ID)

	return sess, nil
}

// recordSessionAudit writes a best-effort audit entry for a session change.
func recordSessionAudit(ctx context.Context, deps SessionDeps, action audit.Action, sess *gamesession.Session, description string) {
	if deps.AuditStore == nil {
		return
	}
	event := audit.NewEvent(sess.CreatorID, "", "", audit.CategorySession, action).
		WithResource("game_session", sess.ID).
		WithDescription(description)
	if err := deps.AuditStore.Save(ctx, event); err != nil {
		slog.Warn("audit_event", "event", "audit_save_failed", "error", err)
	}
}

// validateSession runs the structural rules then the date/time rules.
func validateSession(sess *gamesession.Session, tctx timerange.Context, now time.Time) error {
	if err := sess.Validate(); err != nil {
		return err
	}

	result := timerange.Evaluate(timerange.Range{
		StartDate: sess.StartDate,
		EndDate:   sess.EndDate,
		StartTime: sess.StartTime,
		EndTime:   sess.EndTime,
	}, tctx, now.Format(timerange.DateLayout))

	if !result.Valid() {
		return &ValidationError{Fields: result.Fields}
	}
	return nil
}

func sessionFromInput(input SessionInput) gamesession.Session {
	return gamesession.Session{
		CreatorID:             input.CreatorID,
		GameID:                input.GameID,
		CustomGameName:        input.CustomGameName,
		CustomGameDescription: input.CustomGameDescription,
		Title:                 input.Title,
		StartDate:             input.StartDate,
		StartTime:             input.StartTime,
		EndDate:               input.EndDate,
		EndTime:               input.EndTime,
		MaxPlayers:            input.MaxPlayers,
		Description:           input.Description,
	}
}
