package timeslot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandReturnsInclusiveSlots(t *testing.T) {
	slots, err := Expand("08:00-08:30")
	require.NoError(t, err)
	assert.Equal(t, []string{"08:00", "08:30"}, slots)

	slots, err = Expand("08:00-09:30")
	require.NoError(t, err)
	assert.Equal(t, []string{"08:00", "08:30", "09:00", "09:30"}, slots)
}

func TestExpandSlotCountAndOrdering(t *testing.T) {
	cases := []struct {
		timeRange string
		count     int
		first     string
		last      string
	}{
		{"07:00-17:00", 21, "07:00", "17:00"},
		{"07:30-08:00", 2, "07:30", "08:00"},
		{"10:00-12:00", 5, "10:00", "12:00"},
		{"16:30-17:00", 2, "16:30", "17:00"},
	}

	for _, tc := range cases {
		slots, err := Expand(tc.timeRange)
		require.NoError(t, err, tc.timeRange)
		assert.Len(t, slots, tc.count, tc.timeRange)
		assert.Equal(t, tc.first, slots[0], tc.timeRange)
		assert.Equal(t, tc.last, slots[len(slots)-1], tc.timeRange)
		for i := 1; i < len(slots); i++ {
			assert.Less(t, slots[i-1], slots[i], tc.timeRange)
		}
	}
}

func TestExpandRejectsInvalidRanges(t *testing.T) {
	cases := []struct {
		timeRange string
		reason    string
	}{
		{"06:30-08:00", "before the operating window"},
		{"08:15-09:00", "off-grid minutes"},
		{"09:00-08:00", "inverted range"},
		{"17:00-17:30", "after closing"},
		{"08:00-08:00", "zero-length range"},
		{"8:00-9:00", "single-digit hours"},
		{"08:00", "missing end"},
		{"25:00-26:00", "not a clock time"},
		{"", "empty input"},
	}

	for _, tc := range cases {
		slots, err := Expand(tc.timeRange)
		require.Error(t, err, tc.reason)
		assert.Nil(t, slots, tc.reason)

		var invalidErr *InvalidTimeError
		require.ErrorAs(t, err, &invalidErr, tc.reason)
		assert.Equal(t, tc.timeRange, invalidErr.Input, tc.reason)
		assert.NotEmpty(t, invalidErr.Reason, tc.reason)
	}
}

func TestExpandAcceptsFullWindow(t *testing.T) {
	_, err := Expand("07:00-17:00")
	assert.NoError(t, err)
}
