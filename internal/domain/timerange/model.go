package timerange

import (
	"fmt"
	"time"
)

// Governed field identifiers. These match the form field names on the
// game-session and loan forms so a failure can be attached to its input.
const (
	FieldStartDate = "startDate"
	FieldEndDate   = "endDate"
	FieldStartTime = "startTime"
	FieldEndTime   = "endTime"
)

// Date and time layouts for the governed fields.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Range holds the start/end date and time values of a form as submitted.
// Dates are YYYY-MM-DD, times are zero-padded HH:MM; empty string means
// the field was left blank. A Range is rebuilt from the current field
// values on every validation pass and never stored.
type Range struct {
	StartDate string
	EndDate   string
	StartTime string
	EndTime   string
}

// Context carries the per-form facts that change which rules apply.
// Editing is true when the form updates an existing record; historical
// sessions and loans may legitimately start in the past, so the past-date
// rule is skipped while editing.
type Context struct {
	Editing bool
}

// FieldState is the validation outcome for a single governed field.
// Each pass overwrites the state wholesale; there is no incremental diffing.
type FieldState struct {
	Field   string
	Valid   bool
	Message string
}

// Result holds one FieldState per governed field in a fixed order.
type Result struct {
	Fields []FieldState
}

// Valid reports whether every governed field passed.
// INVARIANT: Result fields are not mutated
func (r Result) Valid() bool {
	for _, f := range r.Fields {
		if !f.Valid {
			return false
		}
	}
	return true
}

// State returns the FieldState for the given field identifier.
// PRE: field is one of the Field* constants
// POST: returns the state and true, or a zero state and false
func (r Result) State(field string) (FieldState, bool) {
	for _, f := range r.Fields {
		if f.Field == field {
			return f, true
		}
	}
	return FieldState{}, false
}

// Today returns now formatted as a comparison-ready date string.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// IsPastDate reports whether date falls before today at day granularity.
// Lexicographic comparison is correct because both values are fixed-width
// ISO dates.
// PRE: date and today are YYYY-MM-DD or empty
// POST: returns false when date is empty
func IsPastDate(date, today string) bool {
	return date != "" && date < today
}

// IsEndBeforeStart reports whether the end date precedes the start date.
// PRE: both values are YYYY-MM-DD or empty
// POST: returns false when either value is empty
func IsEndBeforeStart(startDate, endDate string) bool {
	return startDate != "" && endDate != "" && endDate < startDate
}

// IsSameDay reports whether both dates are present and equal.
func IsSameDay(startDate, endDate string) bool {
	return startDate != "" && startDate == endDate
}

// IsEndTimeInvalid reports whether the end time is present but not strictly
// after the start time. Zero-padded HH:MM strings compare correctly as text.
// PRE: both values are HH:MM or empty
// POST: returns false when either value is empty
func IsEndTimeInvalid(startTime, endTime string) bool {
	return startTime != "" && endTime != "" && endTime <= startTime
}

// Evaluate applies the temporal rules to a Range and returns the state of
// every governed field. Rules are evaluated independently so every invalid
// field is flagged in the same pass; the fixed order below decides which
// message a field carries when more than one rule could apply to it.
//
//  1. startDate must not be in the past (skipped while editing).
//  2. endDate must not precede startDate.
//  3. endTime is required for same-day ranges.
//  4. endTime must be strictly after startTime for same-day ranges.
//
// PRE: today is YYYY-MM-DD
// POST: Result contains exactly one FieldState per governed field;
// calling Evaluate again with the same inputs yields an identical Result
func Evaluate(r Range, ctx Context, today string) Result {
	start := FieldState{Field: FieldStartDate, Valid: true}
	end := FieldState{Field: FieldEndDate, Valid: true}
	startTime := FieldState{Field: FieldStartTime, Valid: true}
	endTime := FieldState{Field: FieldEndTime, Valid: true}

	if !ctx.Editing && IsPastDate(r.StartDate, today) {
		start.Valid = false
		start.Message = "Start date cannot be in the past"
	}

	if IsEndBeforeStart(r.StartDate, r.EndDate) {
		end.Valid = false
		end.Message = "End date cannot be before start date"
	}

	if IsSameDay(r.StartDate, r.EndDate) {
		switch {
		case r.EndTime == "":
			endTime.Valid = false
			endTime.Message = "End time is required for same-day sessions."
		case IsEndTimeInvalid(r.StartTime, r.EndTime):
			endTime.Valid = false
			endTime.Message = fmt.Sprintf("End time (%s) must be after start time (%s)", r.EndTime, r.StartTime)
		}
	}

	return Result{Fields: []FieldState{start, end, startTime, endTime}}
}
