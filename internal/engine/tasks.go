package engine

import (
	"context"
	"time"

	"outreach/internal/domain"
	"outreach/internal/events"
	"outreach/internal/tracker"
	"outreach/internal/worklist"
)

// Enroll expands the contact's sequence into tasks scheduled from now. A
// non-empty sequenceID assigns that sequence first.
func (e Engine) Enroll(ctx context.Context, contactID, sequenceID string) ([]domain.Task, error) {
	var created []domain.Task
	_, err := e.mutate(ctx, func(s domain.State, now time.Time) (domain.State, change, error) {
		next, tasks, err := tracker.Enroll(s, contactID, sequenceID, now, e.window(), e.newID)
		if err != nil {
			return s, change{}, err
		}
		created = tasks
		c, _ := next.Contact(contactID)
		return next, change{
			Type:     events.TypeEnrolled,
			Kind:     "contact",
			EntityID: contactID,
			Payload:  events.EventPayload{"sequence_id": c.SequenceID, "tasks": len(tasks)},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (e Engine) CompleteTask(ctx context.Context, id string) (domain.Task, error) {
	return e.taskCommand(ctx, id, events.TypeTaskCompleted, nil, func(s domain.State) (domain.State, error) {
		return tracker.CompleteTask(s, id)
	})
}

// SnoozeTask pushes a pending task back by hours; zero or less means the
// configured default.
func (e Engine) SnoozeTask(ctx context.Context, id string, hours int) (domain.Task, error) {
	if hours <= 0 {
		hours = e.Config.Schedule.SnoozeHours
	}
	if hours <= 0 {
		hours = tracker.DefaultSnoozeHours
	}
	return e.taskCommand(ctx, id, events.TypeTaskSnoozed, events.EventPayload{"hours": hours}, func(s domain.State) (domain.State, error) {
		return tracker.SnoozeTask(s, id, hours)
	})
}

func (e Engine) EditTaskNotes(ctx context.Context, id, notes string) (domain.Task, error) {
	return e.taskCommand(ctx, id, events.TypeTaskNotes, nil, func(s domain.State) (domain.State, error) {
		return tracker.EditTaskNotes(s, id, notes)
	})
}

func (e Engine) DeleteTask(ctx context.Context, id string) error {
	_, err := e.mutate(ctx, func(s domain.State, _ time.Time) (domain.State, change, error) {
		next, err := tracker.DeleteTask(s, id)
		return next, change{Type: events.TypeTaskDeleted, Kind: "task", EntityID: id}, err
	})
	return err
}

// taskCommand applies fn and returns the task as it is afterwards. A zero
// Task is returned when id no longer exists.
func (e Engine) taskCommand(ctx context.Context, id, evtType string, payload events.EventPayload, fn func(domain.State) (domain.State, error)) (domain.Task, error) {
	next, err := e.mutate(ctx, func(s domain.State, _ time.Time) (domain.State, change, error) {
		next, err := fn(s)
		if err != nil {
			return s, change{}, err
		}
		p := events.EventPayload{}
		for k, v := range payload {
			p[k] = v
		}
		if t, ok := next.Task(id); ok {
			p["due_at"] = t.DueAt.Format(time.RFC3339)
		}
		return next, change{Type: evtType, Kind: "task", EntityID: id, Payload: p}, nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	t, _ := next.Task(id)
	return t, nil
}

// TaskFilter narrows ListTasks. Zero fields match everything.
type TaskFilter struct {
	ContactID string
	Pending   bool
}

func (e Engine) ListTasks(ctx context.Context, f TaskFilter) ([]domain.Task, error) {
	s, err := e.State(ctx)
	if err != nil {
		return nil, err
	}
	res := []domain.Task{}
	for _, t := range s.Tasks {
		if f.ContactID != "" && t.ContactID != f.ContactID {
			continue
		}
		if f.Pending && !t.Pending() {
			continue
		}
		res = append(res, t)
	}
	return res, nil
}

// Today partitions the stored tasks relative to the current time.
func (e Engine) Today(ctx context.Context) (worklist.Worklist, error) {
	s, err := e.State(ctx)
	if err != nil {
		return worklist.Worklist{}, err
	}
	return worklist.Partition(s.Tasks, e.now()), nil
}
