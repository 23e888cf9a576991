package client

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"jmapclient/internal/common/logger"
	"jmapclient/internal/jmap/entity"
	"jmapclient/internal/jmap/protocol"
)

// autoCollectedBookName is the address book new correspondents land in.
const autoCollectedBookName = "Auto collected"

// GetAddressBooks lists the contact collections on the contacts account.
func (c *Client) GetAddressBooks(ctx context.Context) ([]entity.AddressBook, error) {
	if err := c.requireCapability(protocol.ContactsCapability); err != nil {
		return nil, err
	}
	accountId, err := c.AccountIdForCapability(protocol.ContactsCapability)
	if err != nil {
		return nil, err
	}

	calls := []protocol.MethodCall{
		{
			Name:      protocol.MethodAddressBookGet,
			Arguments: protocol.GetRequest{AccountId: accountId},
			CallId:    "0",
		},
	}
	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.ContactsCapability}, calls)
	if err != nil {
		return nil, err
	}
	r, err := resultFor(responses, "0", protocol.MethodAddressBookGet)
	if err != nil {
		return nil, err
	}

	var result struct {
		List []protocol.AddressBook `json:"list"`
	}
	if err := unmarshalArguments(r, &result); err != nil {
		return nil, err
	}

	books := make([]entity.AddressBook, 0, len(result.List))
	for _, w := range result.List {
		books = append(books, entity.AddressBookFromWire(w))
	}
	return books, nil
}

// GetContacts fetches every contact card on the contacts account.
func (c *Client) GetContacts(ctx context.Context) ([]entity.Contact, error) {
	if err := c.requireCapability(protocol.ContactsCapability); err != nil {
		return nil, err
	}
	accountId, err := c.AccountIdForCapability(protocol.ContactsCapability)
	if err != nil {
		return nil, err
	}

	calls := []protocol.MethodCall{
		{
			Name:      protocol.MethodContactQuery,
			Arguments: protocol.QueryRequest{AccountId: accountId},
			CallId:    "0",
		},
		{
			Name: protocol.MethodContactGet,
			Arguments: map[string]interface{}{
				"accountId": accountId,
				"#ids":      protocol.BackReference("0", protocol.MethodContactQuery, "/ids"),
			},
			CallId: "1",
		},
	}
	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.ContactsCapability}, calls)
	if err != nil {
		return nil, err
	}
	r, err := resultFor(responses, "1", protocol.MethodContactGet)
	if err != nil {
		return nil, err
	}

	var result struct {
		List []protocol.ContactCard `json:"list"`
	}
	if err := unmarshalArguments(r, &result); err != nil {
		return nil, err
	}

	contacts := make([]entity.Contact, 0, len(result.List))
	for _, w := range result.List {
		contacts = append(contacts, entity.ContactFromWire(w))
	}
	return contacts, nil
}

// CreateContact creates a contact card, optionally inside a specific address
// book, and returns the new id.
func (c *Client) CreateContact(ctx context.Context, contact entity.Contact, addressBookId string) (string, error) {
	if err := c.requireCapability(protocol.ContactsCapability); err != nil {
		return "", err
	}
	accountId, err := c.AccountIdForCapability(protocol.ContactsCapability)
	if err != nil {
		return "", err
	}

	card := entity.ContactToWire(contact)
	if card.UID == "" {
		card.UID = uuid.NewString()
	}
	if addressBookId != "" {
		card.AddressBookIds = map[protocol.Id]bool{protocol.Id(addressBookId): true}
	}

	creationId := "card-" + uuid.NewString()
	set := protocol.SetRequest{
		AccountId: accountId,
		Create:    map[string]interface{}{creationId: card},
	}

	calls := []protocol.MethodCall{
		{Name: protocol.MethodContactSet, Arguments: set, CallId: "0"},
	}
	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.ContactsCapability}, calls)
	if err != nil {
		return "", err
	}
	setResp, err := setResultFor(responses, "0", protocol.MethodContactSet)
	if err != nil {
		return "", err
	}

	id := setResp.CreatedId(creationId)
	if id == "" {
		return "", &ProtocolError{Reason: "contact created but no id returned"}
	}
	return string(id), nil
}

// UpdateContact replaces the mutable fields of an existing contact card.
func (c *Client) UpdateContact(ctx context.Context, contact entity.Contact) error {
	if err := c.requireCapability(protocol.ContactsCapability); err != nil {
		return err
	}
	if contact.Id == "" {
		return &NotFoundError{Kind: "contact", Id: ""}
	}
	accountId, err := c.AccountIdForCapability(protocol.ContactsCapability)
	if err != nil {
		return err
	}

	card := entity.ContactToWire(contact)
	card.Id = ""

	set := protocol.SetRequest{
		AccountId: accountId,
		Update:    map[protocol.Id]interface{}{protocol.Id(contact.Id): card},
	}
	calls := []protocol.MethodCall{
		{Name: protocol.MethodContactSet, Arguments: set, CallId: "0"},
	}
	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.ContactsCapability}, calls)
	if err != nil {
		return err
	}
	_, err = setResultFor(responses, "0", protocol.MethodContactSet)
	return err
}

// DeleteContact destroys a contact card.
func (c *Client) DeleteContact(ctx context.Context, id string) error {
	if err := c.requireCapability(protocol.ContactsCapability); err != nil {
		return err
	}
	accountId, err := c.AccountIdForCapability(protocol.ContactsCapability)
	if err != nil {
		return err
	}

	set := protocol.SetRequest{
		AccountId: accountId,
		Destroy:   []protocol.Id{protocol.Id(id)},
	}
	calls := []protocol.MethodCall{
		{Name: protocol.MethodContactSet, Arguments: set, CallId: "0"},
	}
	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.ContactsCapability}, calls)
	if err != nil {
		return err
	}
	_, err = setResultFor(responses, "0", protocol.MethodContactSet)
	return err
}

// ensureAutoCollectedBook finds or creates the auto-collected address book.
func (c *Client) ensureAutoCollectedBook(ctx context.Context) (string, error) {
	books, err := c.GetAddressBooks(ctx)
	if err != nil {
		return "", err
	}
	for _, book := range books {
		if book.Name == autoCollectedBookName {
			return book.Id, nil
		}
	}

	accountId, err := c.AccountIdForCapability(protocol.ContactsCapability)
	if err != nil {
		return "", err
	}

	creationId := "book-" + uuid.NewString()
	set := protocol.SetRequest{
		AccountId: accountId,
		Create: map[string]interface{}{
			creationId: protocol.AddressBook{Name: autoCollectedBookName},
		},
	}
	calls := []protocol.MethodCall{
		{Name: protocol.MethodAddressBookSet, Arguments: set, CallId: "0"},
	}
	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.ContactsCapability}, calls)
	if err != nil {
		return "", err
	}
	setResp, err := setResultFor(responses, "0", protocol.MethodAddressBookSet)
	if err != nil {
		return "", err
	}
	return string(setResp.CreatedId(creationId)), nil
}

// autoCollectRecipients adds previously unseen recipient addresses to the
// auto-collected address book, deduplicating by lower-cased address. Best
// effort only: every failure is swallowed and logged, never propagated.
func (c *Client) autoCollectRecipients(ctx context.Context, recipients []entity.Address) {
	if !c.SupportsContacts() {
		return
	}

	existing, err := c.GetContacts(ctx)
	if err != nil {
		logger.LogDebug(c.logger, "auto-collect skipped", "error", err)
		return
	}

	known := make(map[string]bool)
	for _, contact := range existing {
		for _, e := range contact.Emails {
			known[strings.ToLower(e.Value)] = true
		}
	}

	bookId, err := c.ensureAutoCollectedBook(ctx)
	if err != nil {
		logger.LogDebug(c.logger, "auto-collect skipped", "error", err)
		return
	}

	for _, rcpt := range recipients {
		addr := strings.ToLower(rcpt.Email)
		if addr == "" || known[addr] {
			continue
		}
		known[addr] = true

		contact := entity.Contact{
			Name:   rcpt.Name,
			Emails: []entity.TypedValue{{Value: rcpt.Email, Type: "other"}},
		}
		if _, err := c.CreateContact(ctx, contact, bookId); err != nil {
			logger.LogDebug(c.logger, "auto-collect create failed",
				"address", addr, "error", err)
		}
	}
}
