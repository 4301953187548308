package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"outreach/internal/domain"
)

// Repo persists the whole application state in the workspace database.
type Repo struct {
	DB *sql.DB
}

// ErrNotFound is returned by Load when nothing has been saved yet.
var ErrNotFound = errors.New("not found")

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Load returns the last saved state.
func (r Repo) Load(ctx context.Context) (domain.State, error) {
	return load(ctx, r.DB)
}

func (r Repo) LoadTx(ctx context.Context, tx *sql.Tx) (domain.State, error) {
	return load(ctx, tx)
}

// Save replaces the persisted state with s.
func (r Repo) Save(ctx context.Context, s domain.State, savedAt time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := r.SaveTx(ctx, tx, s, savedAt); err != nil {
		return err
	}
	return tx.Commit()
}

func (r Repo) SaveTx(ctx context.Context, tx *sql.Tx, s domain.State, savedAt time.Time) error {
	return save(ctx, tx, s, savedAt)
}

// SavedAt reports when the state was last written.
func (r Repo) SavedAt(ctx context.Context) (time.Time, error) {
	var raw string
	err := r.DB.QueryRowContext(ctx, `SELECT saved_at FROM store_meta WHERE id=1`).Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, err
	}
	return parseTime(raw)
}

func load(ctx context.Context, q queryer) (domain.State, error) {
	var savedAt string
	err := q.QueryRowContext(ctx, `SELECT saved_at FROM store_meta WHERE id=1`).Scan(&savedAt)
	if err == sql.ErrNoRows {
		return domain.State{}, ErrNotFound
	}
	if err != nil {
		return domain.State{}, fmt.Errorf("read store meta: %w", err)
	}
	var s domain.State
	if s.Companies, err = loadCompanies(ctx, q); err != nil {
		return domain.State{}, fmt.Errorf("load companies: %w", err)
	}
	if s.Contacts, err = loadContacts(ctx, q); err != nil {
		return domain.State{}, fmt.Errorf("load contacts: %w", err)
	}
	if s.Sequences, err = loadSequences(ctx, q); err != nil {
		return domain.State{}, fmt.Errorf("load sequences: %w", err)
	}
	if s.Steps, err = loadSteps(ctx, q); err != nil {
		return domain.State{}, fmt.Errorf("load steps: %w", err)
	}
	if s.Tasks, err = loadTasks(ctx, q); err != nil {
		return domain.State{}, fmt.Errorf("load tasks: %w", err)
	}
	return s, nil
}

func loadCompanies(ctx context.Context, q queryer) ([]domain.Company, error) {
	rows, err := q.QueryContext(ctx, `SELECT id,name,notes FROM companies ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []domain.Company{}
	for rows.Next() {
		var c domain.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Notes); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func loadContacts(ctx context.Context, q queryer) ([]domain.Contact, error) {
	rows, err := q.QueryContext(ctx, `SELECT id,first_name,last_name,email,phone_office,phone_mobile,company,status,notes,sequence_id FROM contacts ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []domain.Contact{}
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.PhoneOffice, &c.PhoneMobile, &c.Company, &c.Status, &c.ContactNotes, &c.SequenceID); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func loadSequences(ctx context.Context, q queryer) ([]domain.Sequence, error) {
	rows, err := q.QueryContext(ctx, `SELECT id,name,description FROM sequences ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []domain.Sequence{}
	for rows.Next() {
		var s domain.Sequence
		if err := rows.Scan(&s.ID, &s.Name, &s.Description); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func loadSteps(ctx context.Context, q queryer) ([]domain.Step, error) {
	rows, err := q.QueryContext(ctx, `SELECT id,sequence_id,step_order,action_type,wait_days,wait_hours,name FROM steps ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []domain.Step{}
	for rows.Next() {
		var st domain.Step
		if err := rows.Scan(&st.ID, &st.SequenceID, &st.Order, &st.ActionType, &st.WaitDays, &st.WaitHours, &st.Name); err != nil {
			return nil, err
		}
		res = append(res, st)
	}
	return res, rows.Err()
}

func loadTasks(ctx context.Context, q queryer) ([]domain.Task, error) {
	rows, err := q.QueryContext(ctx, `SELECT id,contact_id,sequence_id,step_id,action_type,name,due_at,outcome,notes FROM tasks ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []domain.Task{}
	for rows.Next() {
		var t domain.Task
		var due string
		if err := rows.Scan(&t.ID, &t.ContactID, &t.SequenceID, &t.StepID, &t.ActionType, &t.Name, &due, &t.Outcome, &t.Notes); err != nil {
			return nil, err
		}
		if t.DueAt, err = parseTime(due); err != nil {
			return nil, fmt.Errorf("task %s: %w", t.ID, err)
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func save(ctx context.Context, q queryer, s domain.State, savedAt time.Time) error {
	for _, table := range []string{"tasks", "steps", "contacts", "sequences", "companies"} {
		if _, err := q.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	for i, c := range s.Companies {
		if _, err := q.ExecContext(ctx, `INSERT INTO companies(id,position,name,notes) VALUES (?,?,?,?)`,
			c.ID, i, c.Name, c.Notes); err != nil {
			return fmt.Errorf("insert company %s: %w", c.ID, err)
		}
	}
	for i, c := range s.Contacts {
		if _, err := q.ExecContext(ctx, `INSERT INTO contacts(id,position,first_name,last_name,email,phone_office,phone_mobile,company,status,notes,sequence_id) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			c.ID, i, c.FirstName, c.LastName, c.Email, c.PhoneOffice, c.PhoneMobile, c.Company, c.Status, c.ContactNotes, c.SequenceID); err != nil {
			return fmt.Errorf("insert contact %s: %w", c.ID, err)
		}
	}
	for i, seq := range s.Sequences {
		if _, err := q.ExecContext(ctx, `INSERT INTO sequences(id,position,name,description) VALUES (?,?,?,?)`,
			seq.ID, i, seq.Name, seq.Description); err != nil {
			return fmt.Errorf("insert sequence %s: %w", seq.ID, err)
		}
	}
	for i, st := range s.Steps {
		if _, err := q.ExecContext(ctx, `INSERT INTO steps(id,position,sequence_id,step_order,action_type,wait_days,wait_hours,name) VALUES (?,?,?,?,?,?,?,?)`,
			st.ID, i, st.SequenceID, st.Order, st.ActionType, st.WaitDays, st.WaitHours, st.Name); err != nil {
			return fmt.Errorf("insert step %s: %w", st.ID, err)
		}
	}
	for i, t := range s.Tasks {
		if _, err := q.ExecContext(ctx, `INSERT INTO tasks(id,position,contact_id,sequence_id,step_id,action_type,name,due_at,outcome,notes) VALUES (?,?,?,?,?,?,?,?,?,?)`,
			t.ID, i, t.ContactID, t.SequenceID, t.StepID, t.ActionType, t.Name, formatTime(t.DueAt), t.Outcome, t.Notes); err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}
	_, err := q.ExecContext(ctx, `INSERT INTO store_meta(id,saved_at) VALUES (1,?) ON CONFLICT(id) DO UPDATE SET saved_at=excluded.saved_at`, formatTime(savedAt))
	return err
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(time.Local), nil
}
