package projections

import (
	"context"

	domainUser "gameshelf/internal/domain/user"
)

// AvailabilityResult is the payload behind the username and email checks.
type AvailabilityResult struct {
	Available bool   `json:"available"`
	Message   string `json:"message,omitempty"`
}

// CheckIdentityDeps holds dependencies for the availability checks.
type CheckIdentityDeps struct {
	UserStore UserStore
}

// QueryCheckUsername reports whether a username is well-formed and free.
// Format problems are reported before uniqueness so the caller can show the
// most actionable message. ExcludeID lets profile edits keep their own name.
// PRE: none; empty input yields an unavailable result, not an error
// POST: Available implies the username passes format rules and is unclaimed
func QueryCheckUsername(ctx context.Context, username, excludeID string, deps CheckIdentityDeps) (AvailabilityResult, error) {
	if err := domainUser.ValidateUsername(username); err != nil {
		return AvailabilityResult{Available: false, Message: err.Error()}, nil
	}
	taken, err := deps.UserStore.UsernameExists(ctx, username, excludeID)
	if err != nil {
		return AvailabilityResult{}, err
	}
	if taken {
		return AvailabilityResult{Available: false, Message: domainUser.ErrUsernameTaken.Error()}, nil
	}
	return AvailabilityResult{Available: true}, nil
}

// QueryCheckEmail reports whether an email is well-formed and free. The
// uniqueness check runs on the normalized (lowercased) form.
// PRE: none; empty input yields an unavailable result, not an error
// POST: Available implies the email passes format rules and is unclaimed
func QueryCheckEmail(ctx context.Context, email, excludeID string, deps CheckIdentityDeps) (AvailabilityResult, error) {
	if err := domainUser.ValidateEmail(email); err != nil {
		return AvailabilityResult{Available: false, Message: err.Error()}, nil
	}
	taken, err := deps.UserStore.EmailExists(ctx, email, excludeID)
	if err != nil {
		return AvailabilityResult{}, err
	}
	if taken {
		return AvailabilityResult{Available: false, Message: domainUser.ErrEmailTaken.Error()}, nil
	}
	return AvailabilityResult{Available: true}, nil
}
