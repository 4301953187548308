package tracker

import (
	"fmt"
	"strings"

	"outreach/internal/domain"
)

func contactIndex(s domain.State, id string) int {
	for i, c := range s.Contacts {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// AddContact appends a contact. Blank names and status take the same
// placeholders the contact sheet starts new rows with.
func AddContact(s domain.State, c domain.Contact, newID IDFunc) (domain.State, domain.Contact, error) {
	if strings.TrimSpace(c.ID) == "" {
		return s, domain.Contact{}, domain.Invalid("id", "contact id is required")
	}
	if contactIndex(s, c.ID) >= 0 {
		return s, domain.Contact{}, domain.Invalid("id", fmt.Sprintf("contact %s already exists", c.ID))
	}
	if c.FirstName == "" && c.LastName == "" {
		c.FirstName, c.LastName = "First", "Last"
	}
	if c.Status == "" {
		c.Status = domain.StatusActive
	}
	if !validStatus(c.Status) {
		return s, domain.Contact{}, domain.Invalid("status", fmt.Sprintf("unknown status %q", c.Status))
	}
	if c.SequenceID != "" {
		if _, ok := SequenceByID(s, c.SequenceID); !ok {
			return s, domain.Contact{}, domain.Invalid("sequence", "selected sequence does not exist")
		}
	}
	company := c.Company
	c.Company = ""
	next := s.Clone()
	next.Contacts = append(next.Contacts, c)
	if company == "" {
		return next, c, nil
	}
	next, err := SetContactCompany(next, c.ID, company, newID)
	if err != nil {
		return s, domain.Contact{}, err
	}
	added, _ := next.Contact(c.ID)
	return next, added, nil
}

type ContactPatch struct {
	FirstName    *string
	LastName     *string
	Email        *string
	PhoneOffice  *string
	PhoneMobile  *string
	Status       *string
	SequenceID   *string
	ContactNotes *string
}

// UpdateContact edits plain contact fields. The company goes through
// SetContactCompany because it may create a Company.
func UpdateContact(s domain.State, id string, patch ContactPatch) (domain.State, domain.Contact, error) {
	idx := contactIndex(s, id)
	if idx < 0 {
		return s, domain.Contact{}, domain.Missing("contact", id)
	}
	c := s.Contacts[idx]
	if patch.Status != nil {
		if !validStatus(*patch.Status) {
			return s, domain.Contact{}, domain.Invalid("status", fmt.Sprintf("unknown status %q", *patch.Status))
		}
		c.Status = *patch.Status
	}
	if patch.SequenceID != nil {
		if *patch.SequenceID != "" {
			if _, ok := SequenceByID(s, *patch.SequenceID); !ok {
				return s, domain.Contact{}, domain.Invalid("sequence", "selected sequence does not exist")
			}
		}
		c.SequenceID = *patch.SequenceID
	}
	setIf(&c.FirstName, patch.FirstName)
	setIf(&c.LastName, patch.LastName)
	setIf(&c.Email, patch.Email)
	setIf(&c.PhoneOffice, patch.PhoneOffice)
	setIf(&c.PhoneMobile, patch.PhoneMobile)
	setIf(&c.ContactNotes, patch.ContactNotes)
	next := s.Clone()
	next.Contacts[idx] = c
	return next, c, nil
}

// DeleteContact removes a contact and all of its tasks.
func DeleteContact(s domain.State, id string) (domain.State, error) {
	idx := contactIndex(s, id)
	if idx < 0 {
		return s, domain.Missing("contact", id)
	}
	next := s.Clone()
	next.Contacts = append(next.Contacts[:idx], next.Contacts[idx+1:]...)
	next.Tasks = next.Tasks[:0]
	for _, t := range s.Tasks {
		if t.ContactID != id {
			next.Tasks = append(next.Tasks, t)
		}
	}
	return next, nil
}

// SetContactCompany sets the contact's company name. A non-empty name not
// yet known inserts a new Company record with that name.
func SetContactCompany(s domain.State, contactID, name string, newID IDFunc) (domain.State, error) {
	idx := contactIndex(s, contactID)
	if idx < 0 {
		return s, domain.Missing("contact", contactID)
	}
	next := s.Clone()
	next.Contacts[idx].Company = name
	if name != "" {
		if _, ok := next.CompanyByName(name); !ok {
			next.Companies = append(next.Companies, domain.Company{ID: newID(), Name: name})
		}
	}
	return next, nil
}

func SetContactNotes(s domain.State, contactID, notes string) (domain.State, error) {
	idx := contactIndex(s, contactID)
	if idx < 0 {
		return s, domain.Missing("contact", contactID)
	}
	next := s.Clone()
	next.Contacts[idx].ContactNotes = notes
	return next, nil
}

// SetCompanyNotes updates the notes of the company with the given name,
// creating the company when it does not exist yet.
func SetCompanyNotes(s domain.State, name, notes string, newID IDFunc) (domain.State, error) {
	if name == "" {
		return s, domain.Invalid("company", "company name is required")
	}
	next := s.Clone()
	for i, c := range next.Companies {
		if c.Name == name {
			next.Companies[i].Notes = notes
			return next, nil
		}
	}
	next.Companies = append(next.Companies, domain.Company{ID: newID(), Name: name, Notes: notes})
	return next, nil
}

func validStatus(status string) bool {
	switch status {
	case domain.StatusActive, domain.StatusPaused, domain.StatusCompleted:
		return true
	}
	return false
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
