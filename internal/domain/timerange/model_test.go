package timerange

import (
	"reflect"
	"strings"
	"testing"
)

const today = "2025-03-01"

// TestIsPastDate tests day-granularity past detection.
func TestIsPastDate(t *testing.T) {
	tests := []struct {
		name string
		date string
		want bool
	}{
		{"yesterday", "2025-02-28", true},
		{"today", "2025-03-01", false},
		{"tomorrow", "2025-03-02", false},
		{"previous year", "2024-12-31", true},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPastDate(tt.date, today); got != tt.want {
				t.Errorf("IsPastDate(%q) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

// TestIsEndBeforeStart tests calendar ordering of the two dates.
func TestIsEndBeforeStart(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"end after start", "2025-03-10", "2025-03-12", false},
		{"end equals start", "2025-03-10", "2025-03-10", false},
		{"end before start", "2025-03-10", "2025-03-09", true},
		{"across month boundary", "2025-03-31", "2025-04-01", false},
		{"missing end", "2025-03-10", "", false},
		{"missing start", "", "2025-03-09", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEndBeforeStart(tt.start, tt.end); got != tt.want {
				t.Errorf("IsEndBeforeStart(%q, %q) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

// TestIsEndTimeInvalid tests same-day time ordering.
func TestIsEndTimeInvalid(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"end after start", "14:00", "16:00", false},
		{"end equals start", "14:00", "14:00", true},
		{"end before start", "14:00", "13:00", true},
		{"zero-padded ordering", "09:30", "10:00", false},
		{"end missing", "14:00", "", false},
		{"start missing", "", "13:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEndTimeInvalid(tt.start, tt.end); got != tt.want {
				t.Errorf("IsEndTimeInvalid(%q, %q) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

// TestEvaluate_PastStartDate tests that the past-date rule applies only when
// not editing an existing record.
func TestEvaluate_PastStartDate(t *testing.T) {
	r := Range{StartDate: "2020-01-01", EndDate: "2020-01-01", StartTime: "14:00", EndTime: "16:00"}

	res := Evaluate(r, Context{Editing: false}, today)
	state, _ := res.State(FieldStartDate)
	if state.Valid {
		t.Error("expected startDate invalid for past date when creating")
	}
	if !strings.Contains(state.Message, "past") {
		t.Errorf("expected past-date message, got %q", state.Message)
	}

	res = Evaluate(r, Context{Editing: true}, today)
	state, _ = res.State(FieldStartDate)
	if !state.Valid {
		t.Error("expected startDate valid for past date when editing")
	}
}

// TestEvaluate_EndBeforeStart tests that the ordering rule ignores the
// editing context.
func TestEvaluate_EndBeforeStart(t *testing.T) {
	r := Range{StartDate: "2025-03-12", EndDate: "2025-03-10"}
	for _, editing := range []bool{false, true} {
		res := Evaluate(r, Context{Editing: editing}, today)
		state, _ := res.State(FieldEndDate)
		if state.Valid {
			t.Errorf("editing=%v: expected endDate invalid", editing)
		}
	}
}

// TestEvaluate_SameDayEndTimeRequired tests rule 3.
func TestEvaluate_SameDayEndTimeRequired(t *testing.T) {
	r := Range{StartDate: "2025-03-10", EndDate: "2025-03-10", StartTime: "14:00"}
	res := Evaluate(r, Context{}, today)
	state, _ := res.State(FieldEndTime)
	if state.Valid {
		t.Fatal("expected endTime invalid when same-day and missing")
	}
	if state.Message != "End time is required for same-day sessions." {
		t.Errorf("unexpected message: %q", state.Message)
	}
}

// TestEvaluate_SameDayEndTimeOrdering tests rule 4 and that the message
// names both times.
func TestEvaluate_SameDayEndTimeOrdering(t *testing.T) {
	r := Range{StartDate: "2025-03-10", EndDate: "2025-03-10", StartTime: "14:00", EndTime: "13:00"}
	res := Evaluate(r, Context{}, today)
	state, _ := res.State(FieldEndTime)
	if state.Valid {
		t.Fatal("expected endTime invalid when end <= start on the same day")
	}
	if !strings.Contains(state.Message, "13:00") || !strings.Contains(state.Message, "14:00") {
		t.Errorf("message must name both times, got %q", state.Message)
	}
}

// TestEvaluate_MultiDayEndTimeOptional tests that multi-day ranges do not
// require an end time even when one was previously entered then cleared.
func TestEvaluate_MultiDayEndTimeOptional(t *testing.T) {
	r := Range{StartDate: "2025-03-10", EndDate: "2025-03-12", StartTime: "14:00"}
	res := Evaluate(r, Context{}, today)
	if !res.Valid() {
		t.Errorf("expected multi-day range without end time to be valid, got %+v", res.Fields)
	}
}

// TestEvaluate_IndependentFailures tests that failures on different fields
// coexist in one pass.
func TestEvaluate_IndependentFailures(t *testing.T) {
	r := Range{StartDate: "2020-01-02", EndDate: "2020-01-01"}
	res := Evaluate(r, Context{}, today)
	start, _ := res.State(FieldStartDate)
	end, _ := res.State(FieldEndDate)
	if start.Valid || end.Valid {
		t.Errorf("expected both startDate and endDate flagged, got start=%+v end=%+v", start, end)
	}
}

// TestEvaluate_Idempotent tests that repeated passes over unchanged input
// produce identical states.
func TestEvaluate_Idempotent(t *testing.T) {
	r := Range{StartDate: "2025-03-10", EndDate: "2025-03-10", StartTime: "14:00", EndTime: "13:00"}
	first := Evaluate(r, Context{}, today)
	second := Evaluate(r, Context{}, today)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Evaluate is not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
}

// TestEvaluate_AllValid tests the happy path.
func TestEvaluate_AllValid(t *testing.T) {
	r := Range{StartDate: "2025-03-10", EndDate: "2025-03-10", StartTime: "14:00", EndTime: "16:00"}
	res := Evaluate(r, Context{}, today)
	if !res.Valid() {
		t.Errorf("expected valid result, got %+v", res.Fields)
	}
}
