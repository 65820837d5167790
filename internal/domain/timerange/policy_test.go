package timerange

import (
	"strings"
	"testing"
)

// TestEndTimeRequired tests the same-day requirement toggle.
func TestEndTimeRequired(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		want bool
	}{
		{"same day", Range{StartDate: "2025-03-10", EndDate: "2025-03-10"}, true},
		{"multi day", Range{StartDate: "2025-03-10", EndDate: "2025-03-12"}, false},
		{"end date blank", Range{StartDate: "2025-03-10"}, false},
		{"both blank", Range{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EndTimeRequired(tt.r); got != tt.want {
				t.Errorf("EndTimeRequired(%+v) = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}

// TestHelpText_MultiDay tests the optional variant.
func TestHelpText_MultiDay(t *testing.T) {
	text, alarm := HelpText(Range{StartDate: "2025-03-10", EndDate: "2025-03-12", EndTime: "09:00"})
	if alarm {
		t.Error("multi-day help text must not alarm")
	}
	if !strings.Contains(text, "optional") {
		t.Errorf("expected optional variant, got %q", text)
	}
}

// TestHelpText_SameDayNoConflict tests the calm required variant.
func TestHelpText_SameDayNoConflict(t *testing.T) {
	text, alarm := HelpText(Range{StartDate: "2025-03-10", EndDate: "2025-03-10", StartTime: "14:00", EndTime: "16:00"})
	if alarm {
		t.Error("non-conflicting same-day help text must not alarm")
	}
	if !strings.Contains(text, "required") {
		t.Errorf("expected required variant, got %q", text)
	}
}

// TestHelpText_Conflict tests that the conflict variant names the start time.
func TestHelpText_Conflict(t *testing.T) {
	text, alarm := HelpText(Range{StartDate: "2025-03-10", EndDate: "2025-03-10", StartTime: "14:30", EndTime: "13:00"})
	if !alarm {
		t.Error("conflicting end time must alarm")
	}
	if !strings.Contains(text, "14:30") {
		t.Errorf("conflict text must name the start time, got %q", text)
	}
}

// TestHelpText_ToggleBackToMultiDay tests that moving the end date off the
// start date resets the projection to the optional variant even when an end
// time value is still present.
func TestHelpText_ToggleBackToMultiDay(t *testing.T) {
	r := Range{StartDate: "2025-03-10", EndDate: "2025-03-10", StartTime: "14:00", EndTime: "13:00"}
	if _, alarm := HelpText(r); !alarm {
		t.Fatal("precondition: same-day conflict should alarm")
	}
	r.EndDate = "2025-03-11"
	text, alarm := HelpText(r)
	if alarm {
		t.Error("multi-day range must not alarm regardless of end time value")
	}
	if !strings.Contains(text, "optional") {
		t.Errorf("expected optional variant after toggle, got %q", text)
	}
	if EndTimeRequired(r) {
		t.Error("end time must no longer be required after toggle")
	}
}
