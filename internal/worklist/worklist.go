// Package worklist splits tasks into the buckets of the daily worklist.
package worklist

import (
	"sort"
	"time"

	"outreach/internal/domain"
)

// Worklist is the Today view partition. Tasks due after today are in none
// of the buckets.
type Worklist struct {
	Overdue   []domain.Task `json:"overdue"`
	DueToday  []domain.Task `json:"due_today"`
	Completed []domain.Task `json:"completed"`
}

// Bounds returns local midnight and 23:59:59 of now's calendar day.
func Bounds(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), time.Date(y, m, d, 23, 59, 59, 0, now.Location())
}

// Partition classifies tasks relative to now.
//
// Overdue and DueToday hold pending tasks sorted by due time ascending;
// Completed holds done tasks due no later than the end of today, most
// recent first.
func Partition(tasks []domain.Task, now time.Time) Worklist {
	start, end := Bounds(now)
	wl := Worklist{
		Overdue:   []domain.Task{},
		DueToday:  []domain.Task{},
		Completed: []domain.Task{},
	}
	for _, t := range tasks {
		switch {
		case t.Outcome == domain.OutcomePending && t.DueAt.Before(start):
			wl.Overdue = append(wl.Overdue, t)
		case t.Outcome == domain.OutcomePending && !t.DueAt.After(end):
			wl.DueToday = append(wl.DueToday, t)
		case t.Outcome == domain.OutcomeDone && !t.DueAt.After(end):
			wl.Completed = append(wl.Completed, t)
		}
	}
	sort.SliceStable(wl.Overdue, func(i, j int) bool { return wl.Overdue[i].DueAt.Before(wl.Overdue[j].DueAt) })
	sort.SliceStable(wl.DueToday, func(i, j int) bool { return wl.DueToday[i].DueAt.Before(wl.DueToday[j].DueAt) })
	sort.SliceStable(wl.Completed, func(i, j int) bool { return wl.Completed[i].DueAt.After(wl.Completed[j].DueAt) })
	return wl
}
