package punch

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/punch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nominal(t *testing.T, date string) time.Time {
	t.Helper()
	d, err := time.Parse(punch.DateLayout, date)
	require.NoError(t, err)
	return d
}

func TestBuildEvents_OvernightShift(t *testing.T) {
	events, err := BuildEvents(punch.Shift{
		EmployeeID:  "emp-1",
		NominalDate: nominal(t, "2024-03-04"),
		Inputs:      []punch.ClockTimeInput{in(punch.KindEntry, "20:00"), in(punch.KindExit, "01:00")},
	})
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, punch.KindEntry, events[0].Kind)
	assert.Equal(t, "2024-03-04T20:00:00", events[0].ISOLocal())
	assert.Equal(t, punch.KindExit, events[1].Kind)
	assert.Equal(t, "2024-03-05T01:00:00", events[1].ISOLocal())
	assert.Equal(t, 1, events[1].DayOffset)

	for _, e := range events {
		assert.Equal(t, "emp-1", e.EmployeeID)
		assert.Equal(t, "2024-03-04", e.NominalDate.Format(punch.DateLayout))
	}
}

func TestBuildEvents_MonthAndYearRollover(t *testing.T) {
	events, err := BuildEvents(punch.Shift{
		EmployeeID:  "emp-1",
		NominalDate: nominal(t, "2023-12-31"),
		Inputs:      []punch.ClockTimeInput{in(punch.KindEntry, "23:00"), in(punch.KindExit, "07:00")},
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01T07:00:00", events[1].ISOLocal())
}

func TestBuildEvents_EqualTimestampsKeepKindOrder(t *testing.T) {
	events, err := BuildEvents(punch.Shift{
		EmployeeID:  "emp-1",
		NominalDate: nominal(t, "2024-03-04"),
		Inputs: []punch.ClockTimeInput{
			in(punch.KindExit, "12:00"), in(punch.KindLunchIn, "12:00"),
			in(punch.KindLunchOut, "12:00"), in(punch.KindEntry, "08:00"),
		},
	})
	require.NoError(t, err)
	require.Len(t, events, 4)

	assert.Equal(t, []punch.Kind{punch.KindEntry, punch.KindLunchOut, punch.KindLunchIn, punch.KindExit},
		[]punch.Kind{events[0].Kind, events[1].Kind, events[2].Kind, events[3].Kind})
	assert.True(t, events[1].LocalDateTime.Equal(events[3].LocalDateTime))
}

func TestBuildEvents_TimestampsAreMonotonic(t *testing.T) {
	events, err := BuildEvents(punch.Shift{
		EmployeeID:  "emp-1",
		NominalDate: nominal(t, "2024-03-04"),
		Inputs: []punch.ClockTimeInput{
			in(punch.KindEntry, "22:00"), in(punch.KindLunchOut, "02:00"),
			in(punch.KindLunchIn, "02:30"), in(punch.KindExit, "06:00"),
		},
	})
	require.NoError(t, err)

	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].LocalDateTime.Before(events[i-1].LocalDateTime))
	}
}

func TestBuildEvents_PropagatesInferenceErrors(t *testing.T) {
	_, err := BuildEvents(punch.Shift{
		EmployeeID:  "emp-1",
		NominalDate: nominal(t, "2024-03-04"),
		Inputs:      []punch.ClockTimeInput{in(punch.KindExit, "17:00")},
	})
	assert.ErrorIs(t, err, punch.ErrMissingRequiredField)
}
