package server

import (
	"encoding/json"
	"time"

	"outreach/internal/digest"
	"outreach/internal/domain"
	"outreach/internal/engine"
	"outreach/internal/worklist"
)

// Request payloads

type CreateContactRequest struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneOffice string `json:"phone_office,omitempty"`
	PhoneMobile string `json:"phone_mobile,omitempty"`
	Company     string `json:"company,omitempty"`
	Status      string `json:"status,omitempty" enum:"active,paused,completed"`
	Notes       string `json:"notes,omitempty"`
	SequenceID  string `json:"sequence_id,omitempty"`
}

type UpdateContactRequest struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	PhoneOffice *string `json:"phone_office,omitempty"`
	PhoneMobile *string `json:"phone_mobile,omitempty"`
	Company     *string `json:"company,omitempty"`
	Status      *string `json:"status,omitempty" enum:"active,paused,completed"`
	Notes       *string `json:"notes,omitempty"`
	SequenceID  *string `json:"sequence_id,omitempty"`
}

type EnrollRequest struct {
	SequenceID string `json:"sequence_id,omitempty" doc:"Assign this sequence before enrolling"`
}

type CompanyNotesRequest struct {
	Name  string `json:"name" minLength:"1"`
	Notes string `json:"notes"`
}

type CreateSequenceRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

type UpdateSequenceRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type UpdateStepRequest struct {
	Order      *int    `json:"order,omitempty"`
	ActionType *string `json:"action_type,omitempty" enum:"email,call"`
	WaitDays   *int    `json:"wait_days,omitempty"`
	WaitHours  *int    `json:"wait_hours,omitempty"`
}

type SnoozeTaskRequest struct {
	Hours int `json:"hours,omitempty" doc:"Defaults to the configured snooze hours"`
}

type UpdateTaskRequest struct {
	Notes string `json:"notes"`
}

// Response payloads

type ContactResponse struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneOffice string `json:"phone_office"`
	PhoneMobile string `json:"phone_mobile"`
	Company     string `json:"company"`
	Status      string `json:"status" enum:"active,paused,completed"`
	Notes       string `json:"notes"`
	SequenceID  string `json:"sequence_id,omitempty"`
}

type CompanyResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Notes string `json:"notes"`
}

type StepResponse struct {
	ID         string `json:"id"`
	SequenceID string `json:"sequence_id"`
	Order      int    `json:"order"`
	ActionType string `json:"action_type" enum:"email,call"`
	WaitDays   int    `json:"wait_days"`
	WaitHours  int    `json:"wait_hours"`
	Name       string `json:"name"`
}

type SequenceResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Steps       []StepResponse `json:"steps,omitempty"`
}

type TaskResponse struct {
	ID         string `json:"id"`
	ContactID  string `json:"contact_id"`
	SequenceID string `json:"sequence_id"`
	StepID     string `json:"step_id"`
	ActionType string `json:"action_type" enum:"email,call"`
	Name       string `json:"name"`
	DueAt      string `json:"due_at" format:"date-time"`
	Outcome    string `json:"outcome" doc:"Empty while pending"`
	Notes      string `json:"notes"`
}

type TodayResponse struct {
	Date      string         `json:"date" format:"date"`
	Overdue   []TaskResponse `json:"overdue"`
	DueToday  []TaskResponse `json:"due_today"`
	Completed []TaskResponse `json:"completed"`
	Summary   digest.Summary `json:"summary"`
}

type EventResponse struct {
	ID         int64          `json:"id"`
	TS         string         `json:"ts" format:"date-time"`
	Type       string         `json:"type"`
	EntityKind string         `json:"entity_kind"`
	EntityID   string         `json:"entity_id,omitempty"`
	Payload    map[string]any `json:"payload"`
}

type StateSummaryResponse struct {
	Companies int `json:"companies"`
	Contacts  int `json:"contacts"`
	Sequences int `json:"sequences"`
	Steps     int `json:"steps"`
	Tasks     int `json:"tasks"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

type paginatedEvents struct {
	Items      []EventResponse `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// Conversion helpers

func contactResponse(c domain.Contact) ContactResponse {
	return ContactResponse{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		PhoneOffice: c.PhoneOffice,
		PhoneMobile: c.PhoneMobile,
		Company:     c.Company,
		Status:      c.Status,
		Notes:       c.ContactNotes,
		SequenceID:  c.SequenceID,
	}
}

func companyResponse(c domain.Company) CompanyResponse {
	return CompanyResponse(c)
}

func stepResponse(st domain.Step) StepResponse {
	return StepResponse(st)
}

func sequenceResponse(seq domain.Sequence) SequenceResponse {
	return SequenceResponse{ID: seq.ID, Name: seq.Name, Description: seq.Description}
}

func sequenceDetailResponse(d engine.SequenceDetail) SequenceResponse {
	res := sequenceResponse(d.Sequence)
	res.Steps = mapSlice(d.Steps, stepResponse)
	return res
}

func taskResponse(t domain.Task) TaskResponse {
	return TaskResponse{
		ID:         t.ID,
		ContactID:  t.ContactID,
		SequenceID: t.SequenceID,
		StepID:     t.StepID,
		ActionType: t.ActionType,
		Name:       t.Name,
		DueAt:      t.DueAt.Format(time.RFC3339),
		Outcome:    t.Outcome,
		Notes:      t.Notes,
	}
}

func todayResponse(wl worklist.Worklist, now time.Time) TodayResponse {
	return TodayResponse{
		Date:      now.Format(time.DateOnly),
		Overdue:   mapSlice(wl.Overdue, taskResponse),
		DueToday:  mapSlice(wl.DueToday, taskResponse),
		Completed: mapSlice(wl.Completed, taskResponse),
		Summary:   digest.Summarize(wl),
	}
}

func eventResponse(e domain.Event) EventResponse {
	return EventResponse{
		ID:         e.ID,
		TS:         e.TS,
		Type:       e.Type,
		EntityKind: e.EntityKind,
		EntityID:   e.EntityID,
		Payload:    decodeJSONMap(e.Payload),
	}
}

func stateSummary(s domain.State) StateSummaryResponse {
	return StateSummaryResponse{
		Companies: len(s.Companies),
		Contacts:  len(s.Contacts),
		Sequences: len(s.Sequences),
		Steps:     len(s.Steps),
		Tasks:     len(s.Tasks),
	}
}

func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

// JSON helpers

func decodeJSONMap(raw string) map[string]any {
	if raw == "" {
		return map[string]any{}
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
		return map[string]any{}
	}
	return obj
}
