package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"outreach/internal/config"
	"outreach/internal/domain"
	"outreach/internal/events"
	"outreach/internal/logging"
	"outreach/internal/repo"
	"outreach/internal/schedule"
	"outreach/internal/tracker"
)

// Engine applies tracker transitions to the stored state. Every mutation
// loads, transforms, saves and records an event inside one transaction.
type Engine struct {
	DB     *sql.DB
	Repo   repo.Repo
	Events events.Writer
	Config *config.Config
	Now    func() time.Time
	NewID  func() string
	Logger zerolog.Logger

	mu *sync.Mutex
}

func New(db *sql.DB, cfg *config.Config) Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return Engine{
		DB:     db,
		Repo:   repo.Repo{DB: db},
		Events: events.Writer{DB: db},
		Config: cfg,
		Now:    time.Now,
		NewID:  uuid.NewString,
		Logger: logging.Component("engine"),
		mu:     &sync.Mutex{},
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now().Round(0)
	}
	return time.Now().Round(0)
}

// Clock returns the engine's current time.
func (e Engine) Clock() time.Time {
	return e.now()
}

func (e Engine) newID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return uuid.NewString()
}

func (e Engine) window() schedule.Window {
	return e.Config.Window()
}

func (e Engine) lock() func() {
	if e.mu == nil {
		return func() {}
	}
	e.mu.Lock()
	return e.mu.Unlock
}

// change describes the event a transition records.
type change struct {
	Type     string
	Kind     string
	EntityID string
	Payload  events.EventPayload
}

type transition func(s domain.State, now time.Time) (domain.State, change, error)

// mutate runs fn against the stored state. A reference to an entity that
// no longer exists is not an error: nothing is saved and the current state
// is returned.
func (e Engine) mutate(ctx context.Context, fn transition) (domain.State, error) {
	defer e.lock()()
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.State{}, err
	}
	defer tx.Rollback()

	s, err := e.loadTx(ctx, tx)
	if err != nil {
		return domain.State{}, err
	}
	now := e.now()
	next, ch, err := fn(s, now)
	if errors.Is(err, domain.ErrNotFound) {
		e.Logger.Debug().Err(err).Msg("ignoring stale reference")
		return s, nil
	}
	if err != nil {
		return s, err
	}
	if err := e.Repo.SaveTx(ctx, tx, next, now); err != nil {
		return s, fmt.Errorf("save state: %w", err)
	}
	if err := e.Events.Append(ctx, tx, ch.Type, ch.Kind, ch.EntityID, ch.Payload); err != nil {
		return s, fmt.Errorf("append event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return s, err
	}
	e.Logger.Debug().Str("event", ch.Type).Str("entity_kind", ch.Kind).Str("entity_id", ch.EntityID).Msg("state saved")
	return next, nil
}

// loadTx returns the stored state, or the default seed when nothing has
// been saved yet.
func (e Engine) loadTx(ctx context.Context, tx *sql.Tx) (domain.State, error) {
	s, err := e.Repo.LoadTx(ctx, tx)
	if errors.Is(err, repo.ErrNotFound) {
		return tracker.Seed(e.newID), nil
	}
	if err != nil {
		return domain.State{}, fmt.Errorf("load state: %w", err)
	}
	return s, nil
}

// EnsureSeeded saves the default seed if the store is empty. It reports
// whether a seed was written.
func (e Engine) EnsureSeeded(ctx context.Context) (bool, error) {
	defer e.lock()()
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()
	_, err = e.Repo.LoadTx(ctx, tx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return false, fmt.Errorf("load state: %w", err)
	}
	if err := e.Repo.SaveTx(ctx, tx, tracker.Seed(e.newID), e.now()); err != nil {
		return false, fmt.Errorf("save seed: %w", err)
	}
	if err := e.Events.Append(ctx, tx, events.TypeStateSeeded, "state", "", nil); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	e.Logger.Info().Msg("seeded default state")
	return true, nil
}

// State returns the current stored state.
func (e Engine) State(ctx context.Context) (domain.State, error) {
	defer e.lock()()
	s, err := e.Repo.Load(ctx)
	if errors.Is(err, repo.ErrNotFound) {
		return tracker.Seed(e.newID), nil
	}
	if err != nil {
		return domain.State{}, fmt.Errorf("load state: %w", err)
	}
	return s, nil
}
