package timeslot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAssignmentsReportsFirstOverlap(t *testing.T) {
	err := CheckAssignments([]Assignment{
		{SubjectID: "S1", Day: "Monday", Time: "08:00-09:00"},
		{SubjectID: "S2", Day: "Monday", Time: "08:30-09:30"},
	})
	require.Error(t, err)

	var conflict *SlotConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "S1", conflict.ExistingSubjectID)
	assert.Equal(t, "S2", conflict.IncomingSubjectID)
	assert.Equal(t, "Monday", conflict.Day)
	assert.Equal(t, "08:30", conflict.Slot)
	assert.True(t, IsConflict(err))
}

func TestCheckAssignmentsOrderFlipsConflictParties(t *testing.T) {
	err := CheckAssignments([]Assignment{
		{SubjectID: "S2", Day: "Monday", Time: "08:30-09:30"},
		{SubjectID: "S1", Day: "Monday", Time: "08:00-09:00"},
	})
	require.Error(t, err)

	var conflict *SlotConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "S2", conflict.ExistingSubjectID)
	assert.Equal(t, "S1", conflict.IncomingSubjectID)
	assert.Equal(t, "08:30", conflict.Slot)
}

func TestCheckAssignmentsTouchingRangesCollide(t *testing.T) {
	// Inclusive end labels make 09:00 shared between the two ranges.
	err := CheckAssignments([]Assignment{
		{SubjectID: "S1", Day: "Monday", Time: "08:00-09:00"},
		{SubjectID: "S2", Day: "Monday", Time: "09:00-10:00"},
	})
	require.Error(t, err)

	var conflict *SlotConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "09:00", conflict.Slot)
}

func TestCheckAssignmentsNoConflictAcrossDays(t *testing.T) {
	err := CheckAssignments([]Assignment{
		{SubjectID: "S1", Day: "Monday", Time: "08:00-09:00"},
		{SubjectID: "S2", Day: "Tuesday", Time: "08:00-09:00"},
	})
	assert.NoError(t, err)
}

func TestCheckAssignmentsDisjointSameDay(t *testing.T) {
	err := CheckAssignments([]Assignment{
		{SubjectID: "S1", Day: "Wednesday", Time: "08:00-09:00"},
		{SubjectID: "S2", Day: "Wednesday", Time: "09:30-10:30"},
	})
	assert.NoError(t, err)
}

func TestCheckAssignmentsValidationFailures(t *testing.T) {
	cases := []struct {
		name        string
		assignments []Assignment
		index       int
	}{
		{
			name: "missing subject",
			assignments: []Assignment{
				{Day: "Monday", Time: "08:00-09:00"},
			},
			index: 0,
		},
		{
			name: "unknown day",
			assignments: []Assignment{
				{SubjectID: "S1", Day: "Monday", Time: "08:00-09:00"},
				{SubjectID: "S2", Day: "Sunday", Time: "08:00-09:00"},
			},
			index: 1,
		},
		{
			name: "bad time format",
			assignments: []Assignment{
				{SubjectID: "S1", Day: "Monday", Time: "08:15-09:00"},
			},
			index: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckAssignments(tc.assignments)
			require.Error(t, err)
			assert.False(t, IsConflict(err))

			var assignErr *AssignmentError
			require.ErrorAs(t, err, &assignErr)
			assert.Equal(t, tc.index, assignErr.Index)
		})
	}
}

func TestCheckAssignmentsEmptyListIsValid(t *testing.T) {
	assert.NoError(t, CheckAssignments(nil))
}
