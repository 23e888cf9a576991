package entity

import (
	"testing"

	"jmapclient/internal/jmap/protocol"
)

func TestContactFromWire(t *testing.T) {
	card := protocol.ContactCard{
		Id:  "c1",
		UID: "uid-123",
		Name: &protocol.CardName{
			Full: "Jan Kowalski",
			Components: []protocol.CardNameComponent{
				{Kind: "given", Value: "Jan"},
				{Kind: "surname", Value: "Kowalski"},
			},
		},
		Emails: map[string]protocol.CardEmail{
			"e1": {Address: "jan@work.example", Contexts: map[string]bool{"work": true}},
			"e2": {Address: "jan@home.example", Contexts: map[string]bool{"private": true}},
		},
		Phones: map[string]protocol.CardPhone{
			"p1": {Number: "+48123456789"},
		},
		Organizations: map[string]protocol.CardOrganization{
			"o1": {Name: "Example Sp. z o.o."},
		},
		Titles: map[string]protocol.CardTitle{
			"t1": {Name: "Engineer"},
		},
		Keywords: map[string]bool{"friends": true, "business": true},
	}

	c := ContactFromWire(card)

	if c.Id != "c1" || c.UID != "uid-123" {
		t.Errorf("Id/UID = %q/%q, want c1/uid-123", c.Id, c.UID)
	}
	if c.Name != "Jan Kowalski" || c.FirstName != "Jan" || c.LastName != "Kowalski" {
		t.Errorf("name mapping wrong: %q / %q / %q", c.Name, c.FirstName, c.LastName)
	}
	if len(c.Emails) != 2 {
		t.Fatalf("Emails length = %d, want 2", len(c.Emails))
	}
	// Wire keys sort lexicographically, so e1 (work) comes first.
	if c.Emails[0].Value != "jan@work.example" || c.Emails[0].Type != "work" {
		t.Errorf("Emails[0] = %+v, want work address", c.Emails[0])
	}
	if c.Emails[1].Type != "home" {
		t.Errorf("Emails[1].Type = %q, want home (from private context)", c.Emails[1].Type)
	}
	if len(c.Phones) != 1 || c.Phones[0].Type != "other" {
		t.Errorf("phone without contexts should map to type other, got %+v", c.Phones)
	}
	if c.Organization != "Example Sp. z o.o." {
		t.Errorf("Organization = %q", c.Organization)
	}
	if c.JobTitle != "Engineer" {
		t.Errorf("JobTitle = %q", c.JobTitle)
	}
	// Categories are sorted.
	if len(c.Categories) != 2 || c.Categories[0] != "business" || c.Categories[1] != "friends" {
		t.Errorf("Categories = %v, want [business friends]", c.Categories)
	}
}

func TestContactToWire_ContextsOmittedForOther(t *testing.T) {
	c := Contact{
		UID: "uid-9",
		Emails: []TypedValue{
			{Value: "a@work.example", Type: "work"},
			{Value: "a@other.example", Type: "other"},
		},
	}

	card := ContactToWire(c)

	if len(card.Emails) != 2 {
		t.Fatalf("Emails length = %d, want 2", len(card.Emails))
	}

	work, ok := card.Emails["email-0"]
	if !ok {
		t.Fatal("missing keyed entry email-0")
	}
	if !work.Contexts["work"] {
		t.Errorf("work entry contexts = %v, want {work: true}", work.Contexts)
	}

	other, ok := card.Emails["email-1"]
	if !ok {
		t.Fatal("missing keyed entry email-1")
	}
	if other.Contexts != nil {
		t.Errorf("other entry contexts = %v, want omitted", other.Contexts)
	}
}

func TestContact_RoundTrip(t *testing.T) {
	c := Contact{
		UID:       "uid-rt",
		Name:      "Anna Nowak",
		FirstName: "Anna",
		LastName:  "Nowak",
		Emails: []TypedValue{
			{Value: "anna@work.example", Type: "work"},
			{Value: "anna@other.example", Type: "other"},
		},
		Phones: []TypedValue{
			{Value: "+48111222333", Type: "home"},
		},
		Organization: "Nowak i Wsp.",
		JobTitle:     "Director",
		Notes:        "met at conference",
		Categories:   []string{"business"},
	}

	got := ContactFromWire(ContactToWire(c))

	if got.UID != c.UID || got.Name != c.Name || got.FirstName != c.FirstName || got.LastName != c.LastName {
		t.Errorf("identity fields changed in round trip: %+v", got)
	}
	if len(got.Emails) != 2 {
		t.Fatalf("Emails length = %d, want 2", len(got.Emails))
	}
	if got.Emails[0].Value != "anna@work.example" || got.Emails[0].Type != "work" {
		t.Errorf("Emails[0] = %+v", got.Emails[0])
	}
	if got.Emails[1].Value != "anna@other.example" || got.Emails[1].Type != "other" {
		t.Errorf("Emails[1] = %+v", got.Emails[1])
	}
	if len(got.Phones) != 1 || got.Phones[0].Type != "home" {
		t.Errorf("Phones = %+v", got.Phones)
	}
	if got.Organization != c.Organization || got.JobTitle != c.JobTitle || got.Notes != c.Notes {
		t.Errorf("org fields changed: %+v", got)
	}
	if len(got.Categories) != 1 || got.Categories[0] != "business" {
		t.Errorf("Categories = %v", got.Categories)
	}
}

func TestContactFromWire_EmptyCard(t *testing.T) {
	c := ContactFromWire(protocol.ContactCard{Id: "c0"})

	if c.Id != "c0" {
		t.Errorf("Id = %q", c.Id)
	}
	if c.Name != "" || len(c.Emails) != 0 || len(c.Phones) != 0 {
		t.Errorf("empty card should map to empty fields: %+v", c)
	}
}
