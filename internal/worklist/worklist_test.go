package worklist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"outreach/internal/domain"
)

func ids(tasks []domain.Task) []string {
	out := []string{}
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestPartition(t *testing.T) {
	now := time.Date(2024, 5, 15, 10, 0, 0, 0, time.Local)
	tasks := []domain.Task{
		{ID: "tomorrow", DueAt: now.Add(24 * time.Hour)},
		{ID: "in3h", DueAt: now.Add(3 * time.Hour)},
		{ID: "yesterday", DueAt: now.Add(-24 * time.Hour)},
		{ID: "lastweek", DueAt: now.AddDate(0, 0, -7)},
		{ID: "midnight", DueAt: time.Date(2024, 5, 15, 0, 0, 0, 0, time.Local)},
		{ID: "lastsecond", DueAt: time.Date(2024, 5, 15, 23, 59, 59, 0, time.Local)},
		{ID: "past-end", DueAt: time.Date(2024, 5, 15, 23, 59, 59, 500, time.Local)},
		{ID: "done-old", DueAt: now.AddDate(0, 0, -3), Outcome: domain.OutcomeDone},
		{ID: "done-today", DueAt: now.Add(time.Hour), Outcome: domain.OutcomeDone},
		{ID: "done-future", DueAt: now.AddDate(0, 0, 2), Outcome: domain.OutcomeDone},
	}
	wl := Partition(tasks, now)
	require.Equal(t, []string{"lastweek", "yesterday"}, ids(wl.Overdue))
	require.Equal(t, []string{"midnight", "in3h", "lastsecond"}, ids(wl.DueToday))
	require.Equal(t, []string{"done-today", "done-old"}, ids(wl.Completed))
}

func TestPartitionEmpty(t *testing.T) {
	wl := Partition(nil, time.Now())
	require.NotNil(t, wl.Overdue)
	require.Empty(t, wl.Overdue)
	require.Empty(t, wl.DueToday)
	require.Empty(t, wl.Completed)
}

func TestBounds(t *testing.T) {
	start, end := Bounds(time.Date(2024, 2, 29, 17, 45, 3, 9, time.Local))
	require.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.Local), start)
	require.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 0, time.Local), end)
}
