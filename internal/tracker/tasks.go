package tracker

import (
	"outreach/internal/domain"
	"outreach/internal/schedule"
)

// DefaultSnoozeHours is the "snooze one day" increment.
const DefaultSnoozeHours = 24

func taskIndex(s domain.State, id string) int {
	for i, t := range s.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// CompleteTask marks a task done. Completing a done task changes nothing.
func CompleteTask(s domain.State, id string) (domain.State, error) {
	idx := taskIndex(s, id)
	if idx < 0 {
		return s, domain.Missing("task", id)
	}
	next := s.Clone()
	next.Tasks[idx].Outcome = domain.OutcomeDone
	return next, nil
}

// SnoozeTask pushes a pending task's due time by hours on the wall clock.
// The result is not clamped into business hours.
func SnoozeTask(s domain.State, id string, hours int) (domain.State, error) {
	idx := taskIndex(s, id)
	if idx < 0 {
		return s, domain.Missing("task", id)
	}
	if hours <= 0 {
		return s, domain.Invalid("hours", "must be positive")
	}
	if !s.Tasks[idx].Pending() {
		return s, domain.Invalid("task", "completed tasks cannot be snoozed")
	}
	next := s.Clone()
	next.Tasks[idx].DueAt = schedule.AddHours(next.Tasks[idx].DueAt, hours)
	return next, nil
}

// DeleteTask removes a task in any state. Contacts and companies are not
// affected.
func DeleteTask(s domain.State, id string) (domain.State, error) {
	idx := taskIndex(s, id)
	if idx < 0 {
		return s, domain.Missing("task", id)
	}
	next := s.Clone()
	next.Tasks = append(next.Tasks[:idx], next.Tasks[idx+1:]...)
	return next, nil
}

func EditTaskNotes(s domain.State, id, notes string) (domain.State, error) {
	idx := taskIndex(s, id)
	if idx < 0 {
		return s, domain.Missing("task", id)
	}
	next := s.Clone()
	next.Tasks[idx].Notes = notes
	return next, nil
}
