package gamesession

import (
	"strings"
	"testing"
)

func validSession() Session {
	return Session{
		ID:             "s1",
		CreatorID:      "u1",
		CustomGameName: "Catan",
		Title:          "Friday night Catan",
		StartDate:      "2025-03-10",
		StartTime:      "18:00",
		EndDate:        "2025-03-10",
		EndTime:        "21:00",
		MaxPlayers:     4,
		Status:         StatusScheduled,
	}
}

// TestSession_Validate tests presence and shape rules.
func TestSession_Validate(t *testing.T) {
	s := validSession()
	if err := s.Validate(); err != nil {
		t.Fatalf("expected valid session, got: %v", err)
	}

	tests := []struct {
		name    string
		modify  func(s *Session)
		wantErr string
	}{
		{"empty title", func(s *Session) { s.Title = "" }, "title cannot be empty"},
		{"empty game name", func(s *Session) { s.CustomGameName = "  " }, "game name is required"},
		{"empty creator", func(s *Session) { s.CreatorID = "" }, "creator cannot be empty"},
		{"missing start date", func(s *Session) { s.StartDate = "" }, "start date is required"},
		{"missing end date", func(s *Session) { s.EndDate = "" }, "end date is required"},
		{"missing start time", func(s *Session) { s.StartTime = "" }, "start time is required"},
		{"zero max players", func(s *Session) { s.MaxPlayers = 0 }, "maximum players"},
		{"invalid status", func(s *Session) { s.Status = "pending" }, "status must be"},
		{"description too long", func(s *Session) { s.Description = strings.Repeat("x", MaxDescriptionLength+1) }, "description cannot exceed"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := validSession()
			tc.modify(&s)
			err := s.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got: %v", tc.wantErr, err)
			}
		})
	}
}

// TestSession_IsMultiDay tests calendar-day span detection.
func TestSession_IsMultiDay(t *testing.T) {
	s := validSession()
	if s.IsMultiDay() {
		t.Error("same-day session should not be multi-day")
	}
	s.EndDate = "2025-03-12"
	if !s.IsMultiDay() {
		t.Error("session ending on a later day should be multi-day")
	}
	s.EndDate = ""
	if s.IsMultiDay() {
		t.Error("session without end date should not be multi-day")
	}
}

// TestSession_FormattedRanges tests the display strings used by loan
// conflict warnings.
func TestSession_FormattedRanges(t *testing.T) {
	s := validSession()
	if got := s.FormattedDateRange(); got != "2025-03-10" {
		t.Errorf("FormattedDateRange() = %q, want start date only", got)
	}
	if got := s.FormattedTimeRange(); got != "18:00 - 21:00" {
		t.Errorf("FormattedTimeRange() = %q, want both times", got)
	}

	s.EndDate = "2025-03-12"
	s.EndTime = ""
	if got := s.FormattedDateRange(); got != "2025-03-10 - 2025-03-12" {
		t.Errorf("FormattedDateRange() = %q, want both dates", got)
	}
	if got := s.FormattedTimeRange(); got != "18:00" {
		t.Errorf("FormattedTimeRange() = %q, want start time only", got)
	}
}
