package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func at(y int, m time.Month, d, h, min, s int) time.Time {
	return time.Date(y, m, d, h, min, s, 0, time.Local)
}

func TestDueAtFirstStepWithoutWait(t *testing.T) {
	w := DefaultWindow()
	cases := []struct {
		name string
		ref  time.Time
		want time.Time
	}{
		{"early morning", at(2024, 1, 10, 3, 15, 20), at(2024, 1, 10, 6, 0, 0)},
		{"inside window", at(2024, 1, 10, 11, 42, 7), at(2024, 1, 10, 6, 0, 0)},
		{"last open hour", at(2024, 1, 10, 15, 59, 59), at(2024, 1, 10, 6, 0, 0)},
		{"exactly at close", at(2024, 1, 10, 16, 0, 0), at(2024, 1, 11, 6, 0, 0)},
		{"evening", at(2024, 1, 10, 20, 0, 0), at(2024, 1, 11, 6, 0, 0)},
		{"month rollover", at(2024, 1, 31, 22, 0, 0), at(2024, 2, 1, 6, 0, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, DueAt(tc.ref, 0, 0, true, w))
		})
	}
}

func TestDueAtClampsOffsets(t *testing.T) {
	w := DefaultWindow()
	cases := []struct {
		name      string
		ref       time.Time
		days, hrs int
		want      time.Time
	}{
		{"inside window keeps clock", at(2024, 1, 10, 9, 30, 12), 2, 0, at(2024, 1, 12, 9, 30, 12)},
		{"hours push past close", at(2024, 1, 10, 14, 30, 0), 0, 2, at(2024, 1, 11, 6, 0, 0)},
		{"before open snaps forward", at(2024, 1, 10, 2, 45, 0), 1, 0, at(2024, 1, 11, 6, 0, 0)},
		{"evening plus days rolls", at(2024, 1, 10, 20, 0, 0), 2, 0, at(2024, 1, 13, 6, 0, 0)},
		{"zero offsets still clamp", at(2024, 1, 10, 18, 5, 0), 0, 0, at(2024, 1, 11, 6, 0, 0)},
		{"hours wrap past midnight", at(2024, 1, 10, 15, 0, 0), 0, 10, at(2024, 1, 11, 6, 0, 0)},
		{"landing on close rolls", at(2024, 1, 10, 12, 0, 0), 0, 4, at(2024, 1, 11, 6, 0, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, DueAt(tc.ref, tc.days, tc.hrs, false, w))
		})
	}
}

func TestDueAtCustomWindow(t *testing.T) {
	w := Window{Start: 9, End: 17}
	require.Equal(t, at(2024, 3, 4, 9, 0, 0), DueAt(at(2024, 3, 4, 7, 0, 0), 0, 0, true, w))
	require.Equal(t, at(2024, 3, 5, 9, 0, 0), DueAt(at(2024, 3, 4, 16, 30, 0), 0, 1, false, w))
	require.Equal(t, at(2024, 3, 4, 16, 30, 0), DueAt(at(2024, 3, 4, 16, 30, 0), 0, 0, false, w))
}

func TestWindowValidate(t *testing.T) {
	require.NoError(t, DefaultWindow().Validate())
	require.NoError(t, Window{Start: 0, End: 24}.Validate())
	require.Error(t, Window{Start: 16, End: 6}.Validate())
	require.Error(t, Window{Start: 8, End: 8}.Validate())
	require.Error(t, Window{Start: -1, End: 8}.Validate())
	require.Error(t, Window{Start: 8, End: 25}.Validate())
}

func TestAddHoursDoesNotClamp(t *testing.T) {
	require.Equal(t, at(2024, 1, 11, 21, 10, 0), AddHours(at(2024, 1, 10, 21, 10, 0), 24))
}
