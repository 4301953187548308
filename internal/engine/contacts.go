package engine

import (
	"context"
	"time"

	"outreach/internal/domain"
	"outreach/internal/events"
	"outreach/internal/tracker"
)

func (e Engine) AddContact(ctx context.Context, c domain.Contact) (domain.Contact, error) {
	if c.ID == "" {
		c.ID = e.newID()
	}
	var added domain.Contact
	_, err := e.mutate(ctx, func(s domain.State, _ time.Time) (domain.State, change, error) {
		next, got, err := tracker.AddContact(s, c, e.newID)
		added = got
		return next, change{Type: events.TypeContactAdded, Kind: "contact", EntityID: c.ID,
			Payload: events.EventPayload{"name": got.FullName(), "company": got.Company}}, err
	})
	return added, err
}

func (e Engine) UpdateContact(ctx context.Context, id string, patch tracker.ContactPatch) (domain.Contact, error) {
	return e.EditContact(ctx, id, patch, nil)
}

// EditContact applies patch and, when company is set, moves the contact to
// that company, as a single transition.
func (e Engine) EditContact(ctx context.Context, id string, patch tracker.ContactPatch, company *string) (domain.Contact, error) {
	next, err := e.mutate(ctx, func(s domain.State, _ time.Time) (domain.State, change, error) {
		ch := change{Type: events.TypeContactUpdated, Kind: "contact", EntityID: id}
		next, _, err := tracker.UpdateContact(s, id, patch)
		if err != nil {
			return s, ch, err
		}
		if company != nil {
			if next, err = tracker.SetContactCompany(next, id, *company, e.newID); err != nil {
				return s, ch, err
			}
			ch.Payload = events.EventPayload{"company": *company}
		}
		return next, ch, nil
	})
	if err != nil {
		return domain.Contact{}, err
	}
	c, _ := next.Contact(id)
	return c, nil
}

// SetContactCompany moves a contact to the named company, creating it if
// needed.
func (e Engine) SetContactCompany(ctx context.Context, id, company string) (domain.Contact, error) {
	next, err := e.mutate(ctx, func(s domain.State, _ time.Time) (domain.State, change, error) {
		next, err := tracker.SetContactCompany(s, id, company, e.newID)
		return next, change{Type: events.TypeContactUpdated, Kind: "contact", EntityID: id,
			Payload: events.EventPayload{"company": company}}, err
	})
	if err != nil {
		return domain.Contact{}, err
	}
	c, _ := next.Contact(id)
	return c, nil
}

func (e Engine) SetContactNotes(ctx context.Context, id, notes string) (domain.Contact, error) {
	next, err := e.mutate(ctx, func(s domain.State, _ time.Time) (domain.State, change, error) {
		next, err := tracker.SetContactNotes(s, id, notes)
		return next, change{Type: events.TypeContactUpdated, Kind: "contact", EntityID: id}, err
	})
	if err != nil {
		return domain.Contact{}, err
	}
	c, _ := next.Contact(id)
	return c, nil
}

// DeleteContact removes the contact and its tasks.
func (e Engine) DeleteContact(ctx context.Context, id string) error {
	_, err := e.mutate(ctx, func(s domain.State, _ time.Time) (domain.State, change, error) {
		next, err := tracker.DeleteContact(s, id)
		return next, change{Type: events.TypeContactDeleted, Kind: "contact", EntityID: id}, err
	})
	return err
}

func (e Engine) SetCompanyNotes(ctx context.Context, name, notes string) (domain.Company, error) {
	next, err := e.mutate(ctx, func(s domain.State, _ time.Time) (domain.State, change, error) {
		next, err := tracker.SetCompanyNotes(s, name, notes, e.newID)
		if err != nil {
			return s, change{}, err
		}
		co, _ := next.CompanyByName(name)
		return next, change{Type: events.TypeCompanyUpdated, Kind: "company", EntityID: co.ID,
			Payload: events.EventPayload{"name": name}}, nil
	})
	if err != nil {
		return domain.Company{}, err
	}
	co, _ := next.CompanyByName(name)
	return co, nil
}

// Contact looks up a single contact.
func (e Engine) Contact(ctx context.Context, id string) (domain.Contact, error) {
	s, err := e.State(ctx)
	if err != nil {
		return domain.Contact{}, err
	}
	c, ok := s.Contact(id)
	if !ok {
		return domain.Contact{}, domain.Missing("contact", id)
	}
	return c, nil
}
