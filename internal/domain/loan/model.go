package loan

import (
	"errors"
	"fmt"
	"time"
)

// Loan status constants.
const (
	StatusActive   = "active"
	StatusReturned = "returned"
	StatusLate     = "late"
)

// ValidStatuses contains all valid status values.
var ValidStatuses = []string{StatusActive, StatusReturned, StatusLate}

// DefaultLoanPeriod is how far out the proposed return date defaults when
// the borrower has not picked one.
const DefaultLoanPeriod = 7 * 24 * time.Hour

// Domain errors
var (
	ErrEmptyUser          = errors.New("loan user cannot be empty")
	ErrEmptyGame          = errors.New("loan game cannot be empty")
	ErrEmptyReturnDate    = errors.New("estimated return date is required")
	ErrReturnDateNotAhead = errors.New("return date must be after today")
	ErrInvalidStatus      = errors.New("status must be one of: active, returned, late")
	ErrAlreadyReturned    = errors.New("loan has already been returned")
)

// Loan represents a game checked out to a user.
// INVARIANT: ActualReturnDate is zero while Status is active.
type Loan struct {
	ID                  string
	UserID              string
	GameID              string
	LoanDate            time.Time
	EstimatedReturnDate time.Time
	ActualReturnDate    time.Time // zero until returned
	Status              string
}

// Validate checks the loan's invariants.
// PRE: Loan struct is populated
// POST: returns nil if valid, error describing the first violation otherwise
func (l *Loan) Validate() error {
	if l.UserID == "" {
		return ErrEmptyUser
	}
	if l.GameID == "" {
		return ErrEmptyGame
	}
	if l.EstimatedReturnDate.IsZero() {
		return ErrEmptyReturnDate
	}
	if !isValidStatus(l.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// IsOverdue reports whether an active loan is past its estimated return date.
// PRE: now is the current time
// INVARIANT: Loan fields are not mutated
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.Status == StatusActive && dayOf(now).After(dayOf(l.EstimatedReturnDate))
}

// Return closes the loan on the given date. The status becomes late when the
// game came back after the estimated return date.
// PRE: loan is active
// POST: ActualReturnDate set, Status is returned or late
func (l *Loan) Return(date time.Time) error {
	if l.Status != StatusActive {
		return ErrAlreadyReturned
	}
	l.ActualReturnDate = date
	if dayOf(date).After(dayOf(l.EstimatedReturnDate)) {
		l.Status = StatusLate
	} else {
		l.Status = StatusReturned
	}
	return nil
}

// DefaultReturnDate returns the proposed return date for a new loan:
// one week from today.
func DefaultReturnDate(now time.Time) time.Time {
	return dayOf(now).Add(DefaultLoanPeriod)
}

// SessionRef is the slice of a scheduled game session that conflict
// detection needs: when it starts and how to describe it to the borrower.
type SessionRef struct {
	Title       string
	CreatorName string
	StartDate   time.Time
	DateRange   string // preformatted, e.g. "2025-03-10 - 2025-03-12"
	TimeRange   string // preformatted, e.g. "18:00 - 21:00"
}

// ConflictInfo describes whether a proposed return date collides with
// upcoming sessions for the game, and the adjusted date that avoids them.
type ConflictInfo struct {
	HasConflicts        bool
	SuggestedReturnDate time.Time
	Warning             string
}

// CheckConflicts compares a proposed return date against the game's
// upcoming sessions. A conflict exists when any session starts on or before
// the proposed date; the suggestion is then the day before the earliest such
// session, but never earlier than tomorrow. With no conflict the proposed
// date is returned unchanged.
// PRE: upcoming contains only sessions starting today or later
// POST: SuggestedReturnDate is never before tomorrow when HasConflicts
func CheckConflicts(upcoming []SessionRef, proposed, now time.Time) ConflictInfo {
	var earliest *SessionRef
	for i := range upcoming {
		s := &upcoming[i]
		if s.StartDate.After(proposed) {
			continue
		}
		if earliest == nil || s.StartDate.Before(earliest.StartDate) {
			earliest = s
		}
	}
	if earliest == nil {
		return ConflictInfo{SuggestedReturnDate: proposed}
	}

	tomorrow := dayOf(now).AddDate(0, 0, 1)
	suggestion := dayOf(earliest.StartDate).AddDate(0, 0, -1)
	if suggestion.Before(tomorrow) {
		suggestion = tomorrow
	}

	return ConflictInfo{
		HasConflicts:        true,
		SuggestedReturnDate: suggestion,
		Warning: fmt.Sprintf("This game is scheduled for an upcoming session: '%s' on %s. Please return it by %s.",
			earliest.Title, earliest.StartDate.Format("2006-01-02"), suggestion.Format("2006-01-02")),
	}
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isValidStatus(status string) bool {
	for _, v := range ValidStatuses {
		if v == status {
			return true
		}
	}
	return false
}
