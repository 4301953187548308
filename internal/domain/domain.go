package domain

import "time"

const (
	ActionEmail = "email"
	ActionCall  = "call"

	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"

	OutcomePending = ""
	OutcomeDone    = "done"
)

type Sequence struct {
	ID          string `json:"id" yaml:"id" validate:"required"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

type Step struct {
	ID         string `json:"id" yaml:"id" validate:"required"`
	SequenceID string `json:"sequenceId" yaml:"sequenceId" validate:"required"`
	Order      int    `json:"order" yaml:"order"`
	ActionType string `json:"actionType" yaml:"actionType" validate:"oneof=email call"`
	WaitDays   int    `json:"waitDays" yaml:"waitDays" validate:"gte=0"`
	WaitHours  int    `json:"waitHours" yaml:"waitHours" validate:"gte=0"`
	Name       string `json:"name" yaml:"name"`
}

type Contact struct {
	ID           string `json:"id" yaml:"id" validate:"required"`
	FirstName    string `json:"firstName" yaml:"firstName"`
	LastName     string `json:"lastName" yaml:"lastName"`
	Email        string `json:"email" yaml:"email"`
	PhoneOffice  string `json:"phoneOffice" yaml:"phoneOffice"`
	PhoneMobile  string `json:"phoneMobile" yaml:"phoneMobile"`
	Company      string `json:"company" yaml:"company"`
	Status       string `json:"status" yaml:"status" validate:"omitempty,oneof=active paused completed"`
	ContactNotes string `json:"contactNotes" yaml:"contactNotes"`
	SequenceID   string `json:"sequenceId" yaml:"sequenceId"`
}

// FullName is the display name used by worklist rows.
func (c Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}

type Company struct {
	ID    string `json:"id" yaml:"id" validate:"required"`
	Name  string `json:"name" yaml:"name" validate:"required"`
	Notes string `json:"notes" yaml:"notes"`
}

type Task struct {
	ID         string    `json:"id" yaml:"id" validate:"required"`
	ContactID  string    `json:"contactId" yaml:"contactId"`
	SequenceID string    `json:"sequenceId" yaml:"sequenceId"`
	StepID     string    `json:"stepId" yaml:"stepId"`
	ActionType string    `json:"actionType" yaml:"actionType"`
	Name       string    `json:"name" yaml:"name"`
	DueAt      time.Time `json:"dueAt" yaml:"dueAt"`
	Outcome    string    `json:"outcome" yaml:"outcome" validate:"omitempty,oneof=done"`
	Notes      string    `json:"notes" yaml:"notes"`
}

// Pending reports whether the task still needs work.
func (t Task) Pending() bool { return t.Outcome == OutcomePending }

// State is the whole application state. Slice order is insertion order.
type State struct {
	Companies []Company  `json:"companies" yaml:"companies" validate:"dive"`
	Contacts  []Contact  `json:"contacts" yaml:"contacts" validate:"dive"`
	Sequences []Sequence `json:"sequences" yaml:"sequences" validate:"dive"`
	Steps     []Step     `json:"steps" yaml:"steps" validate:"dive"`
	Tasks     []Task     `json:"tasks" yaml:"tasks" validate:"dive"`
}

// Clone returns a copy whose slices share no backing arrays with s.
func (s State) Clone() State {
	return State{
		Companies: append([]Company{}, s.Companies...),
		Contacts:  append([]Contact{}, s.Contacts...),
		Sequences: append([]Sequence{}, s.Sequences...),
		Steps:     append([]Step{}, s.Steps...),
		Tasks:     append([]Task{}, s.Tasks...),
	}
}

func (s State) Contact(id string) (Contact, bool) {
	for _, c := range s.Contacts {
		if c.ID == id {
			return c, true
		}
	}
	return Contact{}, false
}

func (s State) Task(id string) (Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// CompanyByName looks a company up by its natural key.
func (s State) CompanyByName(name string) (Company, bool) {
	for _, c := range s.Companies {
		if c.Name == name {
			return c, true
		}
	}
	return Company{}, false
}

type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	Payload    string `json:"payload_json"`
}
