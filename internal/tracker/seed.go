package tracker

import "outreach/internal/domain"

type seedStep struct {
	action    string
	waitDays  int
	waitHours int
}

var prospectingSteps = []seedStep{
	{domain.ActionEmail, 0, 0},
	{domain.ActionCall, 0, 2},
	{domain.ActionEmail, 2, 0},
	{domain.ActionCall, 4, 0},
	{domain.ActionEmail, 6, 0},
	{domain.ActionCall, 8, 0},
	{domain.ActionEmail, 11, 0},
}

var nurtureSteps = []seedStep{
	{domain.ActionEmail, 0, 0},
	{domain.ActionEmail, 7, 0},
	{domain.ActionCall, 14, 0},
	{domain.ActionEmail, 21, 0},
	{domain.ActionCall, 28, 0},
	{domain.ActionEmail, 35, 0},
	{domain.ActionCall, 45, 0},
}

// Seed returns the state a fresh workspace starts with: three sequences of
// seven steps and two contacts assigned to the first two sequences.
func Seed(newID IDFunc) domain.State {
	general := domain.Sequence{ID: newID(), Name: "General Prospecting", Description: "12 day light touch sequence"}
	gofish := domain.Sequence{ID: newID(), Name: "GoFish Sequence", Description: "Variant of General Prospecting"}
	nurture := domain.Sequence{ID: newID(), Name: "Nurture", Description: "45 day slow follow up"}

	s := domain.State{
		Companies: []domain.Company{},
		Contacts:  []domain.Contact{},
		Sequences: []domain.Sequence{general, gofish, nurture},
		Steps:     []domain.Step{},
		Tasks:     []domain.Task{},
	}
	for _, def := range []struct {
		seq   domain.Sequence
		steps []seedStep
	}{
		{general, prospectingSteps},
		{gofish, prospectingSteps},
		{nurture, nurtureSteps},
	} {
		for i, ss := range def.steps {
			st := domain.Step{
				ID:         newID(),
				SequenceID: def.seq.ID,
				Order:      i + 1,
				ActionType: ss.action,
				WaitDays:   ss.waitDays,
				WaitHours:  ss.waitHours,
			}
			st.Name = StepName(def.seq.Name, st)
			s.Steps = append(s.Steps, st)
		}
	}

	contacts := []domain.Contact{
		{ID: newID(), FirstName: "Mikaela", LastName: "B.", Email: "mikaela@example.com", PhoneOffice: "3035550100", PhoneMobile: "3035550101", Company: "Urban Interiors", Status: domain.StatusActive, SequenceID: general.ID},
		{ID: newID(), FirstName: "Lexi", LastName: "R.", Email: "lexi@example.com", PhoneOffice: "7205550190", PhoneMobile: "7205550199", Company: "PB Teen", Status: domain.StatusActive, SequenceID: gofish.ID},
	}
	for _, c := range contacts {
		s.Contacts = append(s.Contacts, c)
		s.Companies = append(s.Companies, domain.Company{ID: newID(), Name: c.Company})
	}
	return s
}
