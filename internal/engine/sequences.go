package engine

import (
	"context"
	"time"

	"outreach/internal/domain"
	"outreach/internal/events"
	"outreach/internal/tracker"
)

// SequenceDetail is a sequence with its steps in order.
type SequenceDetail struct {
	domain.Sequence
	Steps []domain.Step `json:"steps"`
}

func (e Engine) AddSequence(ctx context.Context, name, description string) (domain.Sequence, error) {
	seq := domain.Sequence{ID: e.newID(), Name: name, Description: description}
	next, err := e.mutate(ctx, func(s domain.State, _ time.Time) (domain.State, change, error) {
		next, err := tracker.AddSequence(s, seq)
		return next, change{Type: events.TypeSequenceAdded, Kind: "sequence", EntityID: seq.ID,
			Payload: events.EventPayload{"name": seq.Name}}, err
	})
	if err != nil {
		return domain.Sequence{}, err
	}
	got, _ := tracker.SequenceByID(next, seq.ID)
	return got, nil
}

func (e Engine) UpdateSequence(ctx context.Context, id string, patch tracker.SequencePatch) (domain.Sequence, error) {
	next, err := e.mutate(ctx, func(s domain.State, _ time.Time) (domain.State, change, error) {
		next, err := tracker.UpdateSequence(s, id, patch)
		return next, change{Type: events.TypeSequenceUpdated, Kind: "sequence", EntityID: id}, err
	})
	if err != nil {
		return domain.Sequence{}, err
	}
	got, _ := tracker.SequenceByID(next, id)
	return got, nil
}

// DeleteSequence removes the sequence with its steps and tasks.
func (e Engine) DeleteSequence(ctx context.Context, id string) error {
	_, err := e.mutate(ctx, func(s domain.State, _ time.Time) (domain.State, change, error) {
		next, err := tracker.DeleteSequence(s, id)
		return next, change{Type: events.TypeSequenceDeleted, Kind: "sequence", EntityID: id}, err
	})
	return err
}

// Sequence returns a sequence and its ordered steps.
func (e Engine) Sequence(ctx context.Context, id string) (SequenceDetail, error) {
	s, err := e.State(ctx)
	if err != nil {
		return SequenceDetail{}, err
	}
	seq, ok := tracker.SequenceByID(s, id)
	if !ok {
		return SequenceDetail{}, domain.Missing("sequence", id)
	}
	return SequenceDetail{Sequence: seq, Steps: tracker.StepsFor(s, id)}, nil
}

// AddStep appends a default email step to the sequence.
func (e Engine) AddStep(ctx context.Context, sequenceID string) (domain.Step, error) {
	var added domain.Step
	_, err := e.mutate(ctx, func(s domain.State, _ time.Time) (domain.State, change, error) {
		next, st, err := tracker.AddStep(s, sequenceID, e.newID())
		added = st
		return next, change{Type: events.TypeStepAdded, Kind: "step", EntityID: st.ID,
			Payload: events.EventPayload{"sequence_id": sequenceID, "order": st.Order}}, err
	})
	return added, err
}

func (e Engine) UpdateStep(ctx context.Context, id string, patch tracker.StepPatch) (domain.Step, error) {
	var updated domain.Step
	_, err := e.mutate(ctx, func(s domain.State, _ time.Time) (domain.State, change, error) {
		next, st, err := tracker.UpdateStep(s, id, patch)
		updated = st
		return next, change{Type: events.TypeStepUpdated, Kind: "step", EntityID: id,
			Payload: events.EventPayload{"name": st.Name}}, err
	})
	return updated, err
}

// DeleteStep removes a step and the tasks generated from it.
func (e Engine) DeleteStep(ctx context.Context, id string) error {
	_, err := e.mutate(ctx, func(s domain.State, _ time.Time) (domain.State, change, error) {
		next, err := tracker.DeleteStep(s, id)
		return next, change{Type: events.TypeStepDeleted, Kind: "step", EntityID: id}, err
	})
	return err
}
