package engine

import (
	"context"
	"time"

	"outreach/internal/backup"
	"outreach/internal/domain"
	"outreach/internal/events"
	"outreach/internal/repo"
	"outreach/internal/tracker"
)

// Export renders the stored state as a backup file.
func (e Engine) Export(ctx context.Context, format string) ([]byte, error) {
	s, err := e.State(ctx)
	if err != nil {
		return nil, err
	}
	return backup.Export(s, format)
}

// Import replaces the stored state with a backup. An invalid file leaves
// the store untouched.
func (e Engine) Import(ctx context.Context, data []byte, format string) (domain.State, error) {
	imported, err := backup.Import(data, format)
	if err != nil {
		return domain.State{}, err
	}
	return e.replace(ctx, imported, events.TypeStateImported)
}

// Reset discards everything and restores the default seed.
func (e Engine) Reset(ctx context.Context) (domain.State, error) {
	return e.replace(ctx, tracker.Seed(e.newID), events.TypeStateReset)
}

func (e Engine) replace(ctx context.Context, with domain.State, evtType string) (domain.State, error) {
	return e.mutate(ctx, func(_ domain.State, _ time.Time) (domain.State, change, error) {
		return with, change{Type: evtType, Kind: "state", Payload: events.EventPayload{
			"contacts":  len(with.Contacts),
			"sequences": len(with.Sequences),
			"tasks":     len(with.Tasks),
		}}, nil
	})
}

// ListEvents returns recorded events, newest first.
func (e Engine) ListEvents(ctx context.Context, limit int, cursor int64, f repo.EventFilter) ([]domain.Event, error) {
	return e.Repo.LatestEvents(ctx, limit, cursor, f)
}
