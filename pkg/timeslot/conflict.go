package timeslot

import (
	"errors"
	"fmt"
)

// Days a subject may be scheduled on. Sunday is not a class day.
var classDays = map[string]struct{}{
	"Monday":    {},
	"Tuesday":   {},
	"Wednesday": {},
	"Thursday":  {},
	"Friday":    {},
	"Saturday":  {},
}

// ValidDay reports whether day is a recognised class day.
func ValidDay(day string) bool {
	_, ok := classDays[day]
	return ok
}

// Assignment is one candidate claim on a weekly slot: a subject taught on
// a given day over a "HH:MM-HH:MM" range.
type Assignment struct {
	SubjectID string
	Day       string
	Time      string
}

// AssignmentError reports a structurally invalid assignment. Index is the
// position of the offending entry in the input list.
type AssignmentError struct {
	Index  int
	Reason string
}

// Error implements the error interface.
func (e *AssignmentError) Error() string {
	return fmt.Sprintf("assignment %d: %s", e.Index, e.Reason)
}

// SlotConflictError reports a genuine double-booking between two subjects.
type SlotConflictError struct {
	Day               string
	Slot              string
	ExistingSubjectID string
	IncomingSubjectID string
}

// Error implements the error interface.
func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("subject %s conflicts with subject %s on %s at %s",
		e.IncomingSubjectID, e.ExistingSubjectID, e.Day, e.Slot)
}

// IsConflict reports whether err is a double-booking as opposed to a
// structural validation failure.
func IsConflict(err error) bool {
	var conflict *SlotConflictError
	return errors.As(err, &conflict)
}

type dayAndSlot struct {
	day  string
	slot string
}

// CheckAssignments scans a teacher's candidate assignment list in order and
// returns the first problem found: an *AssignmentError for a missing field,
// unknown day, or malformed time range, or a *SlotConflictError when an
// expanded slot is already claimed by an earlier assignment on the same day.
// Only the first colliding slot is reported; nil means the whole list is
// free of overlaps.
func CheckAssignments(assignments []Assignment) error {
	claimed := make(map[dayAndSlot]string)

	for i, a := range assignments {
		if a.SubjectID == "" || a.Day == "" || a.Time == "" {
			return &AssignmentError{Index: i, Reason: "subject, day and time are required"}
		}
		if _, ok := classDays[a.Day]; !ok {
			return &AssignmentError{Index: i, Reason: fmt.Sprintf("unknown day %q", a.Day)}
		}

		slots, err := Expand(a.Time)
		if err != nil {
			return &AssignmentError{Index: i, Reason: err.Error()}
		}

		for _, slot := range slots {
			key := dayAndSlot{day: a.Day, slot: slot}
			if owner, taken := claimed[key]; taken {
				return &SlotConflictError{
					Day:               a.Day,
					Slot:              slot,
					ExistingSubjectID: owner,
					IncomingSubjectID: a.SubjectID,
				}
			}
			claimed[key] = a.SubjectID
		}
	}

	return nil
}
