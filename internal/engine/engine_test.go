package engine_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"outreach/internal/backup"
	"outreach/internal/config"
	"outreach/internal/db"
	"outreach/internal/domain"
	"outreach/internal/engine"
	"outreach/internal/events"
	"outreach/internal/logging"
	"outreach/internal/migrate"
	"outreach/internal/repo"
	"outreach/internal/tracker"
)

type testEnv struct {
	Engine engine.Engine
	Ctx    context.Context
	Clock  *time.Time
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, migrate.Migrate(conn))

	clock := time.Date(2024, 1, 10, 20, 0, 0, 0, time.Local)
	n := 0
	eng := engine.New(conn, config.Default())
	eng.Now = func() time.Time { return clock }
	eng.NewID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	eng.Logger = logging.Nop()
	ctx := context.Background()
	seeded, err := eng.EnsureSeeded(ctx)
	require.NoError(t, err)
	require.True(t, seeded)
	return testEnv{Engine: eng, Ctx: ctx, Clock: &clock}
}

func (env testEnv) state(t *testing.T) domain.State {
	t.Helper()
	s, err := env.Engine.Repo.Load(env.Ctx)
	require.NoError(t, err)
	return s
}

func (env testEnv) eventCount(t *testing.T) int {
	t.Helper()
	evts, err := env.Engine.ListEvents(env.Ctx, 1000, 0, repo.EventFilter{})
	require.NoError(t, err)
	return len(evts)
}

func TestEnsureSeededOnce(t *testing.T) {
	env := newTestEnv(t)
	seeded, err := env.Engine.EnsureSeeded(env.Ctx)
	require.NoError(t, err)
	require.False(t, seeded)

	s := env.state(t)
	require.Len(t, s.Sequences, 3)
	require.Len(t, s.Contacts, 2)
	require.Empty(t, s.Tasks)
}

func TestEnrollPersistsTasks(t *testing.T) {
	env := newTestEnv(t)
	contact := env.state(t).Contacts[0]

	tasks, err := env.Engine.Enroll(env.Ctx, contact.ID, "")
	require.NoError(t, err)
	require.Len(t, tasks, 7)
	require.Equal(t, time.Date(2024, 1, 11, 6, 0, 0, 0, time.Local), tasks[0].DueAt)
	require.Equal(t, "General Prospecting - Day 0 - email", tasks[0].Name)

	s := env.state(t)
	require.Equal(t, tasks, s.Tasks)

	evts, err := env.Engine.ListEvents(env.Ctx, 1, 0, repo.EventFilter{Type: events.TypeEnrolled})
	require.NoError(t, err)
	require.Len(t, evts, 1)
	require.Equal(t, contact.ID, evts[0].EntityID)
}

func TestEnrollValidationLeavesStateUntouched(t *testing.T) {
	env := newTestEnv(t)
	before := env.state(t)
	c, err := env.Engine.AddContact(env.Ctx, domain.Contact{FirstName: "Nia"})
	require.NoError(t, err)

	_, err = env.Engine.Enroll(env.Ctx, c.ID, "")
	require.True(t, domain.IsValidation(err))
	require.Len(t, env.state(t).Tasks, len(before.Tasks))
}

func TestTaskCommands(t *testing.T) {
	env := newTestEnv(t)
	tasks, err := env.Engine.Enroll(env.Ctx, env.state(t).Contacts[1].ID, "")
	require.NoError(t, err)

	done, err := env.Engine.CompleteTask(env.Ctx, tasks[0].ID)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeDone, done.Outcome)

	_, err = env.Engine.SnoozeTask(env.Ctx, tasks[0].ID, 0)
	require.True(t, domain.IsValidation(err))

	snoozed, err := env.Engine.SnoozeTask(env.Ctx, tasks[1].ID, 0)
	require.NoError(t, err)
	require.Equal(t, tasks[1].DueAt.Add(24*time.Hour), snoozed.DueAt)

	snoozed, err = env.Engine.SnoozeTask(env.Ctx, tasks[1].ID, 3)
	require.NoError(t, err)
	require.Equal(t, tasks[1].DueAt.Add(27*time.Hour), snoozed.DueAt)

	noted, err := env.Engine.EditTaskNotes(env.Ctx, tasks[2].ID, "asked for pricing")
	require.NoError(t, err)
	require.Equal(t, "asked for pricing", noted.Notes)

	require.NoError(t, env.Engine.DeleteTask(env.Ctx, tasks[3].ID))
	s := env.state(t)
	require.Len(t, s.Tasks, 6)
	_, ok := s.Task(tasks[3].ID)
	require.False(t, ok)

	pending, err := env.Engine.ListTasks(env.Ctx, engine.TaskFilter{Pending: true})
	require.NoError(t, err)
	require.Len(t, pending, 5)
}

func TestStaleReferencesAreIgnored(t *testing.T) {
	env := newTestEnv(t)
	before := env.eventCount(t)

	task, err := env.Engine.CompleteTask(env.Ctx, "gone")
	require.NoError(t, err)
	require.Equal(t, domain.Task{}, task)
	require.NoError(t, env.Engine.DeleteTask(env.Ctx, "gone"))
	require.NoError(t, env.Engine.DeleteContact(env.Ctx, "gone"))
	tasks, err := env.Engine.Enroll(env.Ctx, "gone", "")
	require.NoError(t, err)
	require.Empty(t, tasks)

	require.Equal(t, before, env.eventCount(t))
}

func TestToday(t *testing.T) {
	env := newTestEnv(t)
	tasks, err := env.Engine.Enroll(env.Ctx, env.state(t).Contacts[0].ID, "")
	require.NoError(t, err)
	_, err = env.Engine.CompleteTask(env.Ctx, tasks[0].ID)
	require.NoError(t, err)

	*env.Clock = time.Date(2024, 1, 13, 9, 0, 0, 0, time.Local)
	wl, err := env.Engine.Today(env.Ctx)
	require.NoError(t, err)
	require.Len(t, wl.Overdue, 1)
	require.Equal(t, tasks[1].ID, wl.Overdue[0].ID)
	require.Len(t, wl.DueToday, 1)
	require.Equal(t, tasks[2].ID, wl.DueToday[0].ID)
	require.Len(t, wl.Completed, 1)
}

func TestSequenceAndStepCommands(t *testing.T) {
	env := newTestEnv(t)
	seq, err := env.Engine.AddSequence(env.Ctx, "", "")
	require.NoError(t, err)
	require.Equal(t, "New Sequence", seq.Name)

	st, err := env.Engine.AddStep(env.Ctx, seq.ID)
	require.NoError(t, err)
	require.Equal(t, 1, st.Order)

	days, action := 3, domain.ActionCall
	st, err = env.Engine.UpdateStep(env.Ctx, st.ID, tracker.StepPatch{WaitDays: &days, ActionType: &action})
	require.NoError(t, err)
	require.Equal(t, "New Sequence - Day 3 - call", st.Name)

	name := "Follow Up"
	_, err = env.Engine.UpdateSequence(env.Ctx, seq.ID, tracker.SequencePatch{Name: &name})
	require.NoError(t, err)
	detail, err := env.Engine.Sequence(env.Ctx, seq.ID)
	require.NoError(t, err)
	require.Equal(t, "Follow Up", detail.Name)
	require.Equal(t, "Follow Up - Day 3 - call", detail.Steps[0].Name)

	require.NoError(t, env.Engine.DeleteStep(env.Ctx, st.ID))
	require.NoError(t, env.Engine.DeleteSequence(env.Ctx, seq.ID))
	_, err = env.Engine.Sequence(env.Ctx, seq.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestContactCommands(t *testing.T) {
	env := newTestEnv(t)
	c, err := env.Engine.AddContact(env.Ctx, domain.Contact{FirstName: "Ray", LastName: "T.", Company: "Acme"})
	require.NoError(t, err)
	require.Equal(t, "Acme", c.Company)
	_, ok := env.state(t).CompanyByName("Acme")
	require.True(t, ok)

	c, err = env.Engine.SetContactCompany(env.Ctx, c.ID, "Globex")
	require.NoError(t, err)
	require.Equal(t, "Globex", c.Company)

	c, err = env.Engine.SetContactNotes(env.Ctx, c.ID, "met at expo")
	require.NoError(t, err)
	require.Equal(t, "met at expo", c.ContactNotes)

	status := domain.StatusPaused
	c, err = env.Engine.UpdateContact(env.Ctx, c.ID, tracker.ContactPatch{Status: &status})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaused, c.Status)

	co, err := env.Engine.SetCompanyNotes(env.Ctx, "Globex", "parent co")
	require.NoError(t, err)
	require.Equal(t, "parent co", co.Notes)

	require.NoError(t, env.Engine.DeleteContact(env.Ctx, c.ID))
	_, err = env.Engine.Contact(env.Ctx, c.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEditContactIsOneTransition(t *testing.T) {
	env := newTestEnv(t)
	c := env.state(t).Contacts[0]
	before := env.eventCount(t)

	bad := "archived"
	company := "Initech"
	_, err := env.Engine.EditContact(env.Ctx, c.ID, tracker.ContactPatch{Status: &bad}, &company)
	require.True(t, domain.IsValidation(err))
	s := env.state(t)
	_, ok := s.CompanyByName(company)
	require.False(t, ok)
	got, _ := s.Contact(c.ID)
	require.Equal(t, c, got)
	require.Equal(t, before, env.eventCount(t))

	paused := domain.StatusPaused
	got, err = env.Engine.EditContact(env.Ctx, c.ID, tracker.ContactPatch{Status: &paused}, &company)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaused, got.Status)
	require.Equal(t, company, got.Company)
	_, ok = env.state(t).CompanyByName(company)
	require.True(t, ok)
	require.Equal(t, before+1, env.eventCount(t))
}

func TestImportAndReset(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.Enroll(env.Ctx, env.state(t).Contacts[0].ID, "")
	require.NoError(t, err)
	before := env.state(t)

	_, err = env.Engine.Import(env.Ctx, []byte(`{"contacts":[{"firstName":"no id"}]}`), backup.FormatJSON)
	require.True(t, domain.IsValidation(err))
	require.Equal(t, before, env.state(t))

	data, err := env.Engine.Export(env.Ctx, backup.FormatYAML)
	require.NoError(t, err)

	s, err := env.Engine.Reset(env.Ctx)
	require.NoError(t, err)
	require.Empty(t, s.Tasks)
	require.Empty(t, env.state(t).Tasks)

	s, err = env.Engine.Import(env.Ctx, data, backup.FormatYAML)
	require.NoError(t, err)
	require.Equal(t, before, s)
	require.Equal(t, before, env.state(t))
}
