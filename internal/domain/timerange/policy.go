package timerange

import "fmt"

// Help texts projected next to the end-time field. The conflict variant must
// name the conflicting start time so the user knows what to move past.
const (
	helpOptional = "End time is optional for multi-day sessions."
	helpRequired = "End time is required for same-day sessions."
)

// EndTimeRequired reports whether the end-time field is mandatory for the
// given range. It is required exactly when the range starts and ends on the
// same calendar day.
func EndTimeRequired(r Range) bool {
	return IsSameDay(r.StartDate, r.EndDate)
}

// HelpText projects the explanation shown beside the end-time field, and
// whether it should render with alarm styling. It must be re-derived on
// every change to any of the four governed fields; stale text is a defect.
// POST: alarm is true only when the range is same-day and the current end
// time conflicts with the start time
func HelpText(r Range) (text string, alarm bool) {
	if !EndTimeRequired(r) {
		return helpOptional, false
	}
	if r.EndTime != "" && IsEndTimeInvalid(r.StartTime, r.EndTime) {
		return fmt.Sprintf("End time must be later than start time (%s)", r.StartTime), true
	}
	return helpRequired, false
}
