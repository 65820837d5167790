package draft

import (
	"context"
	"time"
)

// Draft is a saved snapshot of an in-progress form, keyed by user and form
// name. Payload is the raw JSON the form page produced; the server never
// interprets it beyond storing and returning it.
type Draft struct {
	UserID    string    `json:"-"`
	Form      string    `json:"-"`
	Payload   string    `json:"payload"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists form drafts.
type Store interface {
	// Get retrieves a user's draft for a form.
	// PRE: userID and form are non-empty
	// POST: returns the draft or error if not found
	Get(ctx context.Context, userID, form string) (Draft, error)

	// Put inserts or replaces a draft.
	// PRE: d.UserID and d.Form are non-empty
	// POST: the draft is persisted, replacing any previous one
	Put(ctx context.Context, d Draft) error

	// Delete removes a user's draft for a form. Deleting a missing draft
	// is not an error.
	Delete(ctx context.Context, userID, form string) error
}
