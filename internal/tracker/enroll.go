package tracker

import (
	"time"

	"outreach/internal/domain"
	"outreach/internal/schedule"
)

// Expand materializes one pending task per step. Every due time is computed
// from the single enrollment instant at, never from the previous step.
// steps must already be in execution order.
func Expand(contact domain.Contact, seq domain.Sequence, steps []domain.Step, at time.Time, w schedule.Window, newID IDFunc) ([]domain.Task, error) {
	if contact.SequenceID == "" {
		return nil, domain.Invalid("sequence", "select a sequence first")
	}
	if len(steps) == 0 {
		return nil, domain.Invalid("sequence", "selected sequence has no steps")
	}
	tasks := make([]domain.Task, 0, len(steps))
	for i, st := range steps {
		firstWithoutWait := i == 0 && st.WaitDays == 0 && st.WaitHours == 0
		tasks = append(tasks, domain.Task{
			ID:         newID(),
			ContactID:  contact.ID,
			SequenceID: st.SequenceID,
			StepID:     st.ID,
			ActionType: st.ActionType,
			Name:       StepName(seq.Name, st),
			DueAt:      schedule.DueAt(at, st.WaitDays, st.WaitHours, firstWithoutWait, w),
			Outcome:    domain.OutcomePending,
		})
	}
	return tasks, nil
}

// Enroll expands the contact's sequence into tasks appended after the
// existing ones. A non-empty sequenceID is first assigned to the contact.
// Tasks from earlier enrollments are left untouched.
func Enroll(s domain.State, contactID, sequenceID string, at time.Time, w schedule.Window, newID IDFunc) (domain.State, []domain.Task, error) {
	idx := -1
	for i, c := range s.Contacts {
		if c.ID == contactID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, nil, domain.Missing("contact", contactID)
	}
	contact := s.Contacts[idx]
	if sequenceID != "" {
		if _, ok := SequenceByID(s, sequenceID); !ok {
			return s, nil, domain.Invalid("sequence", "selected sequence does not exist")
		}
		contact.SequenceID = sequenceID
	}
	seq, _ := SequenceByID(s, contact.SequenceID)
	tasks, err := Expand(contact, seq, StepsFor(s, contact.SequenceID), at, w, newID)
	if err != nil {
		return s, nil, err
	}
	next := s.Clone()
	next.Contacts[idx] = contact
	next.Tasks = append(next.Tasks, tasks...)
	return next, tasks, nil
}
