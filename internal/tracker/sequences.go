// Package tracker holds the pure state transitions of the outreach tracker.
// Every command takes a domain.State and returns a new one; the input is
// never modified. Errors leave the returned state equal to the input.
package tracker

import (
	"fmt"
	"sort"
	"strings"

	"outreach/internal/domain"
)

// IDFunc mints identifiers for entities created by a transition.
type IDFunc func() string

// StepName is the derived display label of a step.
func StepName(sequenceName string, st domain.Step) string {
	if sequenceName == "" {
		sequenceName = "Sequence"
	}
	hours := ""
	if st.WaitHours != 0 {
		hours = fmt.Sprintf(" + %dh", st.WaitHours)
	}
	return fmt.Sprintf("%s - Day %d%s - %s", sequenceName, st.WaitDays, hours, st.ActionType)
}

func SequenceByID(s domain.State, id string) (domain.Sequence, bool) {
	for _, seq := range s.Sequences {
		if seq.ID == id {
			return seq, true
		}
	}
	return domain.Sequence{}, false
}

// StepsFor returns the steps of a sequence ordered by Order; equal orders
// keep insertion order.
func StepsFor(s domain.State, sequenceID string) []domain.Step {
	var steps []domain.Step
	for _, st := range s.Steps {
		if st.SequenceID == sequenceID {
			steps = append(steps, st)
		}
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Order < steps[j].Order })
	return steps
}

func sequenceName(s domain.State, id string) string {
	seq, _ := SequenceByID(s, id)
	return seq.Name
}

func AddSequence(s domain.State, seq domain.Sequence) (domain.State, error) {
	if strings.TrimSpace(seq.ID) == "" {
		return s, domain.Invalid("id", "sequence id is required")
	}
	if _, ok := SequenceByID(s, seq.ID); ok {
		return s, domain.Invalid("id", fmt.Sprintf("sequence %s already exists", seq.ID))
	}
	if seq.Name == "" {
		seq.Name = "New Sequence"
	}
	next := s.Clone()
	next.Sequences = append(next.Sequences, seq)
	return next, nil
}

type SequencePatch struct {
	Name        *string
	Description *string
}

// UpdateSequence edits a sequence. A rename relabels every step it owns.
func UpdateSequence(s domain.State, id string, patch SequencePatch) (domain.State, error) {
	next := s.Clone()
	idx := -1
	for i, seq := range next.Sequences {
		if seq.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, domain.Missing("sequence", id)
	}
	seq := next.Sequences[idx]
	if patch.Name != nil {
		seq.Name = *patch.Name
	}
	if patch.Description != nil {
		seq.Description = *patch.Description
	}
	next.Sequences[idx] = seq
	if patch.Name != nil {
		for i, st := range next.Steps {
			if st.SequenceID == id {
				next.Steps[i].Name = StepName(seq.Name, st)
			}
		}
	}
	return next, nil
}

// DeleteSequence removes a sequence together with its steps and every task
// generated from it. Contacts assigned to it become unassigned.
func DeleteSequence(s domain.State, id string) (domain.State, error) {
	if _, ok := SequenceByID(s, id); !ok {
		return s, domain.Missing("sequence", id)
	}
	next := domain.State{
		Companies: append([]domain.Company{}, s.Companies...),
		Contacts:  make([]domain.Contact, 0, len(s.Contacts)),
		Sequences: make([]domain.Sequence, 0, len(s.Sequences)),
		Steps:     make([]domain.Step, 0, len(s.Steps)),
		Tasks:     make([]domain.Task, 0, len(s.Tasks)),
	}
	for _, c := range s.Contacts {
		if c.SequenceID == id {
			c.SequenceID = ""
		}
		next.Contacts = append(next.Contacts, c)
	}
	for _, seq := range s.Sequences {
		if seq.ID != id {
			next.Sequences = append(next.Sequences, seq)
		}
	}
	for _, st := range s.Steps {
		if st.SequenceID != id {
			next.Steps = append(next.Steps, st)
		}
	}
	for _, t := range s.Tasks {
		if t.SequenceID != id {
			next.Tasks = append(next.Tasks, t)
		}
	}
	return next, nil
}

// AddStep appends an email step with no wait after the last step of the
// sequence.
func AddStep(s domain.State, sequenceID, id string) (domain.State, domain.Step, error) {
	if sequenceID == "" {
		return s, domain.Step{}, domain.Invalid("sequence", "select a sequence")
	}
	seq, ok := SequenceByID(s, sequenceID)
	if !ok {
		return s, domain.Step{}, domain.Missing("sequence", sequenceID)
	}
	maxOrder := 0
	for _, st := range s.Steps {
		if st.SequenceID == sequenceID && st.Order > maxOrder {
			maxOrder = st.Order
		}
	}
	st := domain.Step{
		ID:         id,
		SequenceID: sequenceID,
		Order:      maxOrder + 1,
		ActionType: domain.ActionEmail,
	}
	st.Name = StepName(seq.Name, st)
	next := s.Clone()
	next.Steps = append(next.Steps, st)
	return next, st, nil
}

type StepPatch struct {
	Order      *int
	ActionType *string
	WaitDays   *int
	WaitHours  *int
}

// UpdateStep edits a step and recomputes its label.
func UpdateStep(s domain.State, id string, patch StepPatch) (domain.State, domain.Step, error) {
	idx := -1
	for i, st := range s.Steps {
		if st.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, domain.Step{}, domain.Missing("step", id)
	}
	st := s.Steps[idx]
	if patch.Order != nil {
		if *patch.Order <= 0 {
			return s, domain.Step{}, domain.Invalid("order", "must be positive")
		}
		for _, other := range s.Steps {
			if other.ID != id && other.SequenceID == st.SequenceID && other.Order == *patch.Order {
				return s, domain.Step{}, domain.Invalid("order", fmt.Sprintf("order %d already used in this sequence", *patch.Order))
			}
		}
		st.Order = *patch.Order
	}
	if patch.ActionType != nil {
		if !validAction(*patch.ActionType) {
			return s, domain.Step{}, domain.Invalid("actionType", fmt.Sprintf("unknown action %q", *patch.ActionType))
		}
		st.ActionType = *patch.ActionType
	}
	if patch.WaitDays != nil {
		if *patch.WaitDays < 0 {
			return s, domain.Step{}, domain.Invalid("waitDays", "must not be negative")
		}
		st.WaitDays = *patch.WaitDays
	}
	if patch.WaitHours != nil {
		if *patch.WaitHours < 0 {
			return s, domain.Step{}, domain.Invalid("waitHours", "must not be negative")
		}
		st.WaitHours = *patch.WaitHours
	}
	st.Name = StepName(sequenceName(s, st.SequenceID), st)
	next := s.Clone()
	next.Steps[idx] = st
	return next, st, nil
}

// DeleteStep removes a step and the tasks generated from it.
func DeleteStep(s domain.State, id string) (domain.State, error) {
	found := false
	next := s.Clone()
	next.Steps = next.Steps[:0]
	for _, st := range s.Steps {
		if st.ID == id {
			found = true
			continue
		}
		next.Steps = append(next.Steps, st)
	}
	if !found {
		return s, domain.Missing("step", id)
	}
	next.Tasks = next.Tasks[:0]
	for _, t := range s.Tasks {
		if t.StepID != id {
			next.Tasks = append(next.Tasks, t)
		}
	}
	return next, nil
}

func validAction(a string) bool {
	return a == domain.ActionEmail || a == domain.ActionCall
}
