package tracker

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"outreach/internal/domain"
	"outreach/internal/schedule"
)

func sequentialIDs(prefix string) IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func local(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.Local)
}

func twoStepState() domain.State {
	s := domain.State{
		Companies: []domain.Company{},
		Contacts: []domain.Contact{
			{ID: "c1", FirstName: "Ada", LastName: "L.", Status: domain.StatusActive, SequenceID: "seq1"},
			{ID: "c2", FirstName: "Bo", LastName: "K.", Status: domain.StatusActive},
		},
		Sequences: []domain.Sequence{{ID: "seq1", Name: "Intro"}, {ID: "empty", Name: "Empty"}},
		Steps: []domain.Step{
			{ID: "st2", SequenceID: "seq1", Order: 2, ActionType: domain.ActionCall, WaitDays: 2},
			{ID: "st1", SequenceID: "seq1", Order: 1, ActionType: domain.ActionEmail},
		},
		Tasks: []domain.Task{},
	}
	return s
}

func TestEnrollSchedulesFromEnrollmentInstant(t *testing.T) {
	s := twoStepState()
	next, tasks, err := Enroll(s, "c1", "", local(2024, 1, 10, 20, 0), schedule.DefaultWindow(), sequentialIDs("t"))
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	require.Equal(t, "st1", tasks[0].StepID)
	require.Equal(t, local(2024, 1, 11, 6, 0), tasks[0].DueAt)
	require.Equal(t, "Intro - Day 0 - email", tasks[0].Name)

	require.Equal(t, "st2", tasks[1].StepID)
	require.Equal(t, local(2024, 1, 13, 6, 0), tasks[1].DueAt)
	require.Equal(t, "Intro - Day 2 - call", tasks[1].Name)

	for _, task := range tasks {
		require.Equal(t, "c1", task.ContactID)
		require.Equal(t, "seq1", task.SequenceID)
		require.True(t, task.Pending())
	}
	require.Equal(t, tasks, next.Tasks)
	require.Empty(t, s.Tasks, "input state must not change")
}

func TestEnrollOffsetsAreNotChained(t *testing.T) {
	s := twoStepState()
	s.Steps = append(s.Steps, domain.Step{ID: "st3", SequenceID: "seq1", Order: 3, ActionType: domain.ActionEmail, WaitDays: 3, WaitHours: 1})
	_, tasks, err := Enroll(s, "c1", "", local(2024, 1, 10, 9, 30), schedule.DefaultWindow(), sequentialIDs("t"))
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	require.Equal(t, local(2024, 1, 10, 6, 0), tasks[0].DueAt)
	require.Equal(t, local(2024, 1, 12, 9, 30), tasks[1].DueAt)
	require.Equal(t, local(2024, 1, 13, 10, 30), tasks[2].DueAt)
	require.Equal(t, "Intro - Day 3 + 1h - email", tasks[2].Name)
}

func TestEnrollFirstStepWithWaitIsClamped(t *testing.T) {
	s := twoStepState()
	s.Steps[1].WaitHours = 1
	_, tasks, err := Enroll(s, "c1", "", local(2024, 1, 10, 23, 0), schedule.DefaultWindow(), sequentialIDs("t"))
	require.NoError(t, err)
	// 23:00 + 1h lands at midnight of the 11th, before opening.
	require.Equal(t, local(2024, 1, 11, 6, 0), tasks[0].DueAt)
}

func TestEnrollAppendsWithoutTouchingEarlierTasks(t *testing.T) {
	s := twoStepState()
	at := local(2024, 1, 10, 8, 0)
	s, first, err := Enroll(s, "c1", "", at, schedule.DefaultWindow(), sequentialIDs("a"))
	require.NoError(t, err)
	s, err = CompleteTask(s, first[0].ID)
	require.NoError(t, err)

	before := append([]domain.Task{}, s.Tasks...)
	next, second, err := Enroll(s, "c1", "", at.Add(time.Hour), schedule.DefaultWindow(), sequentialIDs("b"))
	require.NoError(t, err)
	require.Len(t, second, 2)
	require.Len(t, next.Tasks, 4)
	require.Equal(t, before, next.Tasks[:2])
	stepIDs := map[string]bool{}
	for _, task := range second {
		stepIDs[task.StepID] = true
	}
	require.Len(t, stepIDs, 2)
}

func TestEnrollValidation(t *testing.T) {
	s := twoStepState()
	w := schedule.DefaultWindow()

	next, tasks, err := Enroll(s, "c2", "", local(2024, 1, 10, 8, 0), w, sequentialIDs("t"))
	require.True(t, domain.IsValidation(err))
	require.Contains(t, err.Error(), "select a sequence first")
	require.Empty(t, tasks)
	require.Equal(t, s, next)

	next, tasks, err = Enroll(s, "c2", "empty", local(2024, 1, 10, 8, 0), w, sequentialIDs("t"))
	require.True(t, domain.IsValidation(err))
	require.Contains(t, err.Error(), "no steps")
	require.Empty(t, tasks)
	require.Equal(t, s, next, "a failed enrollment must not assign the sequence")

	_, _, err = Enroll(s, "c2", "ghost", local(2024, 1, 10, 8, 0), w, sequentialIDs("t"))
	require.True(t, domain.IsValidation(err))

	_, _, err = Enroll(s, "nobody", "", local(2024, 1, 10, 8, 0), w, sequentialIDs("t"))
	require.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestEnrollAssignsExplicitSequence(t *testing.T) {
	s := twoStepState()
	next, tasks, err := Enroll(s, "c2", "seq1", local(2024, 1, 10, 8, 0), schedule.DefaultWindow(), sequentialIDs("t"))
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	c, _ := next.Contact("c2")
	require.Equal(t, "seq1", c.SequenceID)
}

func TestExpandRequiresAssignmentAndSteps(t *testing.T) {
	_, err := Expand(domain.Contact{ID: "c"}, domain.Sequence{}, []domain.Step{{ID: "s"}}, time.Now(), schedule.DefaultWindow(), sequentialIDs("t"))
	require.True(t, domain.IsValidation(err))
	_, err = Expand(domain.Contact{ID: "c", SequenceID: "x"}, domain.Sequence{ID: "x"}, nil, time.Now(), schedule.DefaultWindow(), sequentialIDs("t"))
	require.True(t, domain.IsValidation(err))
}

func TestTaskLifecycle(t *testing.T) {
	s := twoStepState()
	s, tasks, err := Enroll(s, "c1", "", local(2024, 1, 10, 8, 0), schedule.DefaultWindow(), sequentialIDs("t"))
	require.NoError(t, err)
	id := tasks[1].ID

	s, err = SnoozeTask(s, id, DefaultSnoozeHours)
	require.NoError(t, err)
	task, _ := s.Task(id)
	require.Equal(t, local(2024, 1, 13, 8, 0), task.DueAt)

	s, err = EditTaskNotes(s, id, "left voicemail")
	require.NoError(t, err)

	s, err = CompleteTask(s, id)
	require.NoError(t, err)
	again, err := CompleteTask(s, id)
	require.NoError(t, err)
	require.Equal(t, s, again)
	task, _ = again.Task(id)
	require.Equal(t, domain.OutcomeDone, task.Outcome)
	require.Equal(t, "left voicemail", task.Notes)

	_, err = SnoozeTask(s, id, 24)
	require.True(t, domain.IsValidation(err))
	_, err = SnoozeTask(s, tasks[0].ID, 0)
	require.True(t, domain.IsValidation(err))

	s, err = EditTaskNotes(s, id, "done notes")
	require.NoError(t, err)

	s, err = DeleteTask(s, id)
	require.NoError(t, err)
	require.Len(t, s.Tasks, 1)
	require.Len(t, s.Contacts, 2)

	unchanged, err := DeleteTask(s, id)
	require.True(t, errors.Is(err, domain.ErrNotFound))
	require.Equal(t, s, unchanged)
}

func TestStepNameRecomputedOnEdits(t *testing.T) {
	s := twoStepState()
	days, hours, action := 5, 3, domain.ActionCall
	s, st, err := UpdateStep(s, "st1", StepPatch{WaitDays: &days, WaitHours: &hours, ActionType: &action})
	require.NoError(t, err)
	require.Equal(t, "Intro - Day 5 + 3h - call", st.Name)

	name := "Warm Intro"
	s, err = UpdateSequence(s, "seq1", SequencePatch{Name: &name})
	require.NoError(t, err)
	for _, step := range StepsFor(s, "seq1") {
		require.Contains(t, step.Name, "Warm Intro - Day")
	}

	bad := "fax"
	_, _, err = UpdateStep(s, "st1", StepPatch{ActionType: &bad})
	require.True(t, domain.IsValidation(err))
	neg := -1
	_, _, err = UpdateStep(s, "st1", StepPatch{WaitDays: &neg})
	require.True(t, domain.IsValidation(err))
	dup := 2
	_, _, err = UpdateStep(s, "st1", StepPatch{Order: &dup})
	require.True(t, domain.IsValidation(err))
}

func TestAddStepAppendsAfterLastOrder(t *testing.T) {
	s := twoStepState()
	s, st, err := AddStep(s, "seq1", "st9")
	require.NoError(t, err)
	require.Equal(t, 3, st.Order)
	require.Equal(t, domain.ActionEmail, st.ActionType)
	require.Equal(t, "Intro - Day 0 - email", st.Name)
	steps := StepsFor(s, "seq1")
	require.Equal(t, []string{"st1", "st2", "st9"}, []string{steps[0].ID, steps[1].ID, steps[2].ID})

	_, _, err = AddStep(s, "", "x")
	require.True(t, domain.IsValidation(err))
	_, _, err = AddStep(s, "ghost", "x")
	require.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCascadingDeletes(t *testing.T) {
	s := twoStepState()
	s, _, err := Enroll(s, "c1", "", local(2024, 1, 10, 8, 0), schedule.DefaultWindow(), sequentialIDs("a"))
	require.NoError(t, err)
	s, _, err = Enroll(s, "c2", "seq1", local(2024, 1, 10, 8, 0), schedule.DefaultWindow(), sequentialIDs("b"))
	require.NoError(t, err)
	require.Len(t, s.Tasks, 4)

	afterStep, err := DeleteStep(s, "st2")
	require.NoError(t, err)
	require.Len(t, afterStep.Tasks, 2)
	for _, task := range afterStep.Tasks {
		require.Equal(t, "st1", task.StepID)
	}

	afterContact, err := DeleteContact(s, "c1")
	require.NoError(t, err)
	require.Len(t, afterContact.Contacts, 1)
	for _, task := range afterContact.Tasks {
		require.Equal(t, "c2", task.ContactID)
	}

	afterSeq, err := DeleteSequence(s, "seq1")
	require.NoError(t, err)
	require.Empty(t, afterSeq.Tasks)
	require.Empty(t, StepsFor(afterSeq, "seq1"))
	require.Len(t, afterSeq.Sequences, 1)
	for _, c := range afterSeq.Contacts {
		require.Empty(t, c.SequenceID)
	}
	require.Len(t, s.Tasks, 4, "input state must not change")
}

func TestCompanyCreatedImplicitly(t *testing.T) {
	s := twoStepState()
	ids := sequentialIDs("co")
	s, err := SetContactCompany(s, "c1", "Acme", ids)
	require.NoError(t, err)
	s, err = SetContactCompany(s, "c2", "Acme", ids)
	require.NoError(t, err)
	require.Len(t, s.Companies, 1)
	require.Equal(t, "Acme", s.Companies[0].Name)

	s, err = SetContactCompany(s, "c2", "", ids)
	require.NoError(t, err)
	require.Len(t, s.Companies, 1)
	c, _ := s.Contact("c2")
	require.Empty(t, c.Company)

	s, err = SetCompanyNotes(s, "Acme", "renewal in May", ids)
	require.NoError(t, err)
	s, err = SetCompanyNotes(s, "Globex", "met at expo", ids)
	require.NoError(t, err)
	require.Len(t, s.Companies, 2)
	co, ok := s.CompanyByName("Globex")
	require.True(t, ok)
	require.Equal(t, "met at expo", co.Notes)
}

func TestAddAndUpdateContact(t *testing.T) {
	s := twoStepState()
	s, c, err := AddContact(s, domain.Contact{ID: "c3", Company: "Initech"}, sequentialIDs("co"))
	require.NoError(t, err)
	require.Equal(t, "First", c.FirstName)
	require.Equal(t, domain.StatusActive, c.Status)
	require.Equal(t, "Initech", c.Company)
	_, ok := s.CompanyByName("Initech")
	require.True(t, ok)

	status := domain.StatusPaused
	seq := "seq1"
	s, c, err = UpdateContact(s, "c3", ContactPatch{Status: &status, SequenceID: &seq})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaused, c.Status)
	require.Equal(t, "seq1", c.SequenceID)

	bad := "archived"
	_, _, err = UpdateContact(s, "c3", ContactPatch{Status: &bad})
	require.True(t, domain.IsValidation(err))
	ghost := "ghost"
	_, _, err = UpdateContact(s, "c3", ContactPatch{SequenceID: &ghost})
	require.True(t, domain.IsValidation(err))

	s, err = SetContactNotes(s, "c3", "prefers calls")
	require.NoError(t, err)
	c, _ = s.Contact("c3")
	require.Equal(t, "prefers calls", c.ContactNotes)
}

func TestSeed(t *testing.T) {
	s := Seed(sequentialIDs("id"))
	require.Len(t, s.Sequences, 3)
	require.Len(t, s.Steps, 21)
	for _, seq := range s.Sequences {
		steps := StepsFor(s, seq.ID)
		require.Len(t, steps, 7)
		require.Equal(t, 1, steps[0].Order)
	}
	require.Equal(t, "General Prospecting - Day 0 + 2h - call", StepsFor(s, s.Sequences[0].ID)[1].Name)
	require.Equal(t, "Nurture - Day 45 - call", StepsFor(s, s.Sequences[2].ID)[6].Name)
	require.Len(t, s.Contacts, 2)
	require.Equal(t, s.Sequences[0].ID, s.Contacts[0].SequenceID)
	require.Equal(t, s.Sequences[1].ID, s.Contacts[1].SequenceID)
	for _, c := range s.Contacts {
		_, ok := s.CompanyByName(c.Company)
		require.True(t, ok)
	}
	require.NotNil(t, s.Tasks)
}
