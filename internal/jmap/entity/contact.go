package entity

import (
	"fmt"
	"sort"
	"time"

	"jmapclient/internal/jmap/protocol"
)

// TypedValue is one entry of a multi-valued contact field, tagged with a
// context type of "home", "work" or "other".
type TypedValue struct {
	Value string
	Type  string
}

// Contact is the domain view of a JSContact card. Multi-valued fields are
// plain ordered slices; the wire format keys them by synthetic ids instead.
type Contact struct {
	Id  string
	UID string

	Name      string
	FirstName string
	LastName  string

	Emails    []TypedValue
	Phones    []TypedValue
	Addresses []TypedValue

	Organization string
	JobTitle     string
	Notes        string
	Avatar       string

	Categories []string

	Created time.Time
	Updated time.Time
}

// typeFromContexts derives the domain type tag from a wire contexts map.
// "private" is the RFC 9553 spelling of home.
func typeFromContexts(contexts map[string]bool) string {
	switch {
	case contexts["work"]:
		return "work"
	case contexts["home"], contexts["private"]:
		return "home"
	default:
		return "other"
	}
}

// contextsFromType is the inverse of typeFromContexts. Type "other" maps to
// no contexts at all: the field is omitted on the wire rather than sent as
// an empty object.
func contextsFromType(t string) map[string]bool {
	switch t {
	case "work":
		return map[string]bool{"work": true}
	case "home":
		return map[string]bool{"home": true}
	default:
		return nil
	}
}

// sortedKeys returns map keys in lexicographic order so mapping is
// deterministic regardless of wire key spelling.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ContactFromWire maps a wire contact card into the domain. Keyed
// multi-valued fields become slices ordered by wire key.
func ContactFromWire(card protocol.ContactCard) Contact {
	c := Contact{
		Id:      string(card.Id),
		UID:     card.UID,
		Avatar:  card.Avatar,
		Created: parseUTCDate(card.Created),
		Updated: parseUTCDate(card.Updated),
	}

	if card.Name != nil {
		c.Name = card.Name.Full
		for _, comp := range card.Name.Components {
			switch comp.Kind {
			case "given":
				c.FirstName = comp.Value
			case "surname":
				c.LastName = comp.Value
			}
		}
	}

	for _, k := range sortedKeys(card.Emails) {
		e := card.Emails[k]
		c.Emails = append(c.Emails, TypedValue{Value: e.Address, Type: typeFromContexts(e.Contexts)})
	}
	for _, k := range sortedKeys(card.Phones) {
		p := card.Phones[k]
		c.Phones = append(c.Phones, TypedValue{Value: p.Number, Type: typeFromContexts(p.Contexts)})
	}
	for _, k := range sortedKeys(card.Addresses) {
		a := card.Addresses[k]
		c.Addresses = append(c.Addresses, TypedValue{Value: a.Full, Type: typeFromContexts(a.Contexts)})
	}

	for _, k := range sortedKeys(card.Organizations) {
		c.Organization = card.Organizations[k].Name
		break
	}
	for _, k := range sortedKeys(card.Titles) {
		c.JobTitle = card.Titles[k].Name
		break
	}
	for _, k := range sortedKeys(card.Notes) {
		c.Notes = card.Notes[k].Note
		break
	}

	c.Categories = sortedKeys(card.Keywords)

	return c
}

// ContactToWire maps a domain contact back to a wire card. Multi-valued
// entries are keyed "email-0", "phone-1" and so on; contexts are omitted for
// type "other".
func ContactToWire(c Contact) protocol.ContactCard {
	card := protocol.ContactCard{
		Id:     protocol.Id(c.Id),
		UID:    c.UID,
		Avatar: c.Avatar,
	}

	if c.Name != "" || c.FirstName != "" || c.LastName != "" {
		name := &protocol.CardName{Full: c.Name}
		if c.FirstName != "" {
			name.Components = append(name.Components, protocol.CardNameComponent{Kind: "given", Value: c.FirstName})
		}
		if c.LastName != "" {
			name.Components = append(name.Components, protocol.CardNameComponent{Kind: "surname", Value: c.LastName})
		}
		card.Name = name
	}

	if len(c.Emails) > 0 {
		card.Emails = make(map[string]protocol.CardEmail, len(c.Emails))
		for i, e := range c.Emails {
			card.Emails[fmt.Sprintf("email-%d", i)] = protocol.CardEmail{
				Address:  e.Value,
				Contexts: contextsFromType(e.Type),
			}
		}
	}
	if len(c.Phones) > 0 {
		card.Phones = make(map[string]protocol.CardPhone, len(c.Phones))
		for i, p := range c.Phones {
			card.Phones[fmt.Sprintf("phone-%d", i)] = protocol.CardPhone{
				Number:   p.Value,
				Contexts: contextsFromType(p.Type),
			}
		}
	}
	if len(c.Addresses) > 0 {
		card.Addresses = make(map[string]protocol.CardAddress, len(c.Addresses))
		for i, a := range c.Addresses {
			card.Addresses[fmt.Sprintf("address-%d", i)] = protocol.CardAddress{
				Full:     a.Value,
				Contexts: contextsFromType(a.Type),
			}
		}
	}

	if c.Organization != "" {
		card.Organizations = map[string]protocol.CardOrganization{
			"org-0": {Name: c.Organization},
		}
	}
	if c.JobTitle != "" {
		card.Titles = map[string]protocol.CardTitle{
			"title-0": {Name: c.JobTitle},
		}
	}
	if c.Notes != "" {
		card.Notes = map[string]protocol.CardNote{
			"note-0": {Note: c.Notes},
		}
	}

	if len(c.Categories) > 0 {
		card.Keywords = make(map[string]bool, len(c.Categories))
		for _, cat := range c.Categories {
			card.Keywords[cat] = true
		}
	}

	return card
}

// AddressBook is a named contact collection.
type AddressBook struct {
	Id          string
	Name        string
	Description string
	IsDefault   bool
	IsShared    bool
}

// AddressBookFromWire maps a wire address book into the domain.
func AddressBookFromWire(w protocol.AddressBook) AddressBook {
	return AddressBook{
		Id:          string(w.Id),
		Name:        w.Name,
		Description: w.Description,
		IsDefault:   w.IsDefault,
		IsShared:    w.IsShared,
	}
}
