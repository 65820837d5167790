package gamesession

import (
	"errors"
	"strings"
)

// Session status constants.
const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
	StatusCancelled  = "cancelled"
)

// ValidStatuses contains all valid status values.
var ValidStatuses = []string{StatusScheduled, StatusInProgress, StatusFinished, StatusCancelled}

// Max length constants for user-editable fields.
const (
	MaxTitleLength       = 100
	MaxGameNameLength    = 100
	MaxDescriptionLength = 500
)

// Domain errors
var (
	ErrEmptyTitle        = errors.New("session title cannot be empty")
	ErrEmptyGameName     = errors.New("game name is required")
	ErrEmptyCreator      = errors.New("session creator cannot be empty")
	ErrEmptyStartDate    = errors.New("session start date is required")
	ErrEmptyEndDate      = errors.New("session end date is required")
	ErrEmptyStartTime    = errors.New("session start time is required")
	ErrInvalidMaxPlayers = errors.New("maximum players must be at least 1")
	ErrInvalidStatus     = errors.New("status must be one of: scheduled, in_progress, finished, cancelled")
)

// Session represents a scheduled play session. A session either references a
// library game by GameID or describes a player-owned game through the
// CustomGameName fields; the free-text name is required in both cases so
// listings stay readable when a catalog entry is later removed.
// Dates are YYYY-MM-DD strings, times HH:MM; EndTime may be empty for
// multi-day sessions. Temporal ordering across the four fields is enforced
// by the timerange rules at the operation layer, not here.
type Session struct {
	ID                    string
	CreatorID             string
	GameID                string // optional library game reference
	CustomGameName        string
	CustomGameDescription string
	CustomGameImagePath   string
	Title                 string
	StartDate             string
	StartTime             string
	EndDate               string
	EndTime               string
	MaxPlayers            int
	Description           string
	Status                string
}

// Validate checks presence and shape of the session's own fields.
// PRE: Session struct is populated
// POST: returns nil if valid, error describing the first violation otherwise
func (s *Session) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return ErrEmptyTitle
	}
	if len(s.Title) > MaxTitleLength {
		return errors.New("session title cannot exceed 100 characters")
	}
	if strings.TrimSpace(s.CustomGameName) == "" {
		return ErrEmptyGameName
	}
	if len(s.CustomGameName) > MaxGameNameLength {
		return errors.New("game name cannot exceed 100 characters")
	}
	if strings.TrimSpace(s.CreatorID) == "" {
		return ErrEmptyCreator
	}
	if s.StartDate == "" {
		return ErrEmptyStartDate
	}
	if s.EndDate == "" {
		return ErrEmptyEndDate
	}
	if s.StartTime == "" {
		return ErrEmptyStartTime
	}
	if s.MaxPlayers < 1 {
		return ErrInvalidMaxPlayers
	}
	if len(s.Description) > MaxDescriptionLength {
		return errors.New("session description cannot exceed 500 characters")
	}
	if !isValidStatus(s.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// IsMultiDay returns true if the session spans more than one calendar day.
// INVARIANT: Session fields are not mutated
func (s *Session) IsMultiDay() bool {
	return s.EndDate != "" && s.EndDate != s.StartDate
}

// FormattedDateRange returns "start - end" for multi-day sessions, otherwise
// just the start date. Used by loan conflict warnings and listings.
func (s *Session) FormattedDateRange() string {
	if s.IsMultiDay() {
		return s.StartDate + " - " + s.EndDate
	}
	return s.StartDate
}

// FormattedTimeRange returns "start - end" when an end time is set,
// otherwise just the start time.
func (s *Session) FormattedTimeRange() string {
	if s.EndTime != "" {
		return s.StartTime + " - " + s.EndTime
	}
	return s.StartTime
}

func isValidStatus(status string) bool {
	for _, v := range ValidStatuses {
		if v == status {
			return true
		}
	}
	return false
}
