package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Event types recorded by the engine.
const (
	TypeEnrolled        = "contact.enrolled"
	TypeContactAdded    = "contact.added"
	TypeContactUpdated  = "contact.updated"
	TypeContactDeleted  = "contact.deleted"
	TypeCompanyUpdated  = "company.updated"
	TypeSequenceAdded   = "sequence.added"
	TypeSequenceUpdated = "sequence.updated"
	TypeSequenceDeleted = "sequence.deleted"
	TypeStepAdded       = "step.added"
	TypeStepUpdated     = "step.updated"
	TypeStepDeleted     = "step.deleted"
	TypeTaskCompleted   = "task.completed"
	TypeTaskSnoozed     = "task.snoozed"
	TypeTaskNotes       = "task.notes_updated"
	TypeTaskDeleted     = "task.deleted"
	TypeStateImported   = "state.imported"
	TypeStateReset      = "state.reset"
	TypeStateSeeded     = "state.seeded"
)

type Writer struct {
	DB  *sql.DB
	Now func() time.Time
}

type EventPayload map[string]any

func (w Writer) Append(ctx context.Context, tx *sql.Tx, evtType, entityKind, entityID string, payload EventPayload) error {
	if w.Now == nil {
		w.Now = time.Now
	}
	ts := w.Now().UTC().Format(time.RFC3339)
	if payload == nil {
		payload = EventPayload{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO events(ts,type,entity_kind,entity_id,payload_json) VALUES (?,?,?,?,?)`,
		ts, evtType, entityKind, nullable(entityID), string(data))
	return err
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
