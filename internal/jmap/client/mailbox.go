package client

import (
	"context"
	"sort"
	"strconv"

	"jmapclient/internal/jmap/entity"
	"jmapclient/internal/jmap/protocol"
)

// GetMailboxes fetches mailboxes from every account visible in the session
// in a single batch, one Mailbox/get per account. Mailboxes of non-default
// accounts come back with namespaced ids.
func (c *Client) GetMailboxes(ctx context.Context) ([]entity.Mailbox, error) {
	snap, err := c.current()
	if err != nil {
		return nil, err
	}

	// Default account first, remaining accounts in id order.
	accountIds := []protocol.Id{snap.accountId}
	var rest []string
	for id := range snap.session.Accounts {
		if id != snap.accountId {
			rest = append(rest, string(id))
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		accountIds = append(accountIds, protocol.Id(id))
	}

	calls := make([]protocol.MethodCall, len(accountIds))
	for i, accountId := range accountIds {
		calls[i] = protocol.MethodCall{
			Name:      protocol.MethodMailboxGet,
			Arguments: protocol.GetRequest{AccountId: accountId},
			CallId:    strconv.Itoa(i),
		}
	}

	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.MailCapability}, calls)
	if err != nil {
		return nil, err
	}

	var mailboxes []entity.Mailbox
	for i, accountId := range accountIds {
		r, err := resultFor(responses, strconv.Itoa(i), protocol.MethodMailboxGet)
		if err != nil {
			// A secondary account without mail access must not sink the
			// whole listing.
			if i > 0 {
				continue
			}
			return nil, err
		}
		result, err := protocol.ParseMailboxGetResponse(r)
		if err != nil {
			return nil, &ProtocolError{Reason: "malformed Mailbox/get response", Err: err}
		}

		accountName := snap.session.Accounts[accountId].Name
		for _, w := range result.List {
			mailboxes = append(mailboxes, entity.MailboxFromWire(
				w, string(accountId), accountName, string(snap.accountId)))
		}
	}

	return mailboxes, nil
}

// mailboxByRole finds the default account's mailbox with the given role.
func (c *Client) mailboxByRole(ctx context.Context, role string) (*entity.Mailbox, error) {
	mailboxes, err := c.GetMailboxes(ctx)
	if err != nil {
		return nil, err
	}
	for i := range mailboxes {
		if mailboxes[i].Role == role && !mailboxes[i].IsShared {
			return &mailboxes[i], nil
		}
	}
	return nil, nil
}

// MailboxState fetches the default account's mailbox state token without
// fetching any mailbox objects.
func (c *Client) MailboxState(ctx context.Context) (string, error) {
	snap, err := c.current()
	if err != nil {
		return "", err
	}

	calls := []protocol.MethodCall{
		{
			Name:      protocol.MethodMailboxGet,
			Arguments: protocol.GetRequest{AccountId: snap.accountId, Ids: []protocol.Id{}},
			CallId:    "0",
		},
	}
	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.MailCapability}, calls)
	if err != nil {
		return "", err
	}
	r, err := resultFor(responses, "0", protocol.MethodMailboxGet)
	if err != nil {
		return "", err
	}
	result, err := protocol.ParseMailboxGetResponse(r)
	if err != nil {
		return "", &ProtocolError{Reason: "malformed Mailbox/get response", Err: err}
	}
	return result.State, nil
}
