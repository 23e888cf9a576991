package client

import (
	"context"
	"encoding/json"
	"sort"

	"jmapclient/internal/jmap/entity"
	"jmapclient/internal/jmap/protocol"
)

// listProperties is the summary set fetched for list views.
var listProperties = []string{
	"id", "blobId", "threadId", "mailboxIds", "keywords", "size",
	"receivedAt", "subject", "from", "to", "preview", "hasAttachment",
}

// fullProperties is fetched when a single message is opened.
var fullProperties = []string{
	"id", "blobId", "threadId", "mailboxIds", "keywords", "size",
	"receivedAt", "sentAt", "messageId", "inReplyTo", "references",
	"subject", "from", "to", "cc", "bcc", "replyTo", "preview",
	"hasAttachment", "textBody", "htmlBody", "bodyValues", "attachments",
}

// GetEmailsOptions selects which emails to list.
type GetEmailsOptions struct {
	// MailboxId restricts the listing to one mailbox. Namespaced ids of
	// shared mailboxes carry their own account.
	MailboxId string
	// AccountId overrides the account; empty means the mailbox's account or
	// the default.
	AccountId string
	Limit     uint32
	Position  uint32
}

// EmailPage is one page of a mailbox listing.
type EmailPage struct {
	Emails []entity.Email
	// Total is nil when the server declined to compute it.
	Total      *uint32
	Position   uint32
	QueryState string
}

// resolveEmailAccount picks the account for an email operation and strips
// the namespace prefix off a shared mailbox id.
func (c *Client) resolveEmailAccount(opts GetEmailsOptions) (accountId protocol.Id, mailboxId string, err error) {
	snap, err := c.current()
	if err != nil {
		return "", "", err
	}

	accountId = snap.accountId
	mailboxId = opts.MailboxId
	if ns, original := entity.SplitMailboxId(opts.MailboxId); ns != "" {
		accountId = protocol.Id(ns)
		mailboxId = original
	}
	if opts.AccountId != "" {
		accountId = protocol.Id(opts.AccountId)
	}
	return accountId, mailboxId, nil
}

// GetEmails lists emails newest-first, joining Email/query and Email/get
// through a back-reference so one round trip suffices. An empty mailbox
// yields an empty page, not an error.
func (c *Client) GetEmails(ctx context.Context, opts GetEmailsOptions) (*EmailPage, error) {
	accountId, mailboxId, err := c.resolveEmailAccount(opts)
	if err != nil {
		return nil, err
	}

	var filter interface{}
	if mailboxId != "" {
		filter = map[string]interface{}{"inMailbox": mailboxId}
	}

	return c.queryEmails(ctx, accountId, filter, opts.Limit, opts.Position)
}

// SearchEmails runs a server-side full-text search across the default
// account.
func (c *Client) SearchEmails(ctx context.Context, query string, limit uint32) (*EmailPage, error) {
	snap, err := c.current()
	if err != nil {
		return nil, err
	}
	filter := map[string]interface{}{"text": query}
	return c.queryEmails(ctx, snap.accountId, filter, limit, 0)
}

func (c *Client) queryEmails(ctx context.Context, accountId protocol.Id, filter interface{}, limit, position uint32) (*EmailPage, error) {
	query := protocol.QueryRequest{
		AccountId:      accountId,
		Filter:         filter,
		Sort:           []protocol.SortOrder{{Property: "receivedAt", IsAscending: false}},
		Position:       position,
		CalculateTotal: true,
	}
	if limit > 0 {
		query.Limit = &limit
	}

	calls := []protocol.MethodCall{
		{
			Name:      protocol.MethodEmailQuery,
			Arguments: query,
			CallId:    "0",
		},
		{
			Name: protocol.MethodEmailGet,
			Arguments: map[string]interface{}{
				"accountId":  accountId,
				"#ids":       protocol.BackReference("0", protocol.MethodEmailQuery, "/ids"),
				"properties": listProperties,
			},
			CallId: "1",
		},
	}

	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.MailCapability}, calls)
	if err != nil {
		return nil, err
	}

	queryResp, err := resultFor(responses, "0", protocol.MethodEmailQuery)
	if err != nil {
		return nil, err
	}
	queryResult, err := protocol.ParseQueryResponse(queryResp)
	if err != nil {
		return nil, &ProtocolError{Reason: "malformed Email/query response", Err: err}
	}

	getResp, err := resultFor(responses, "1", protocol.MethodEmailGet)
	if err != nil {
		return nil, err
	}
	getResult, err := protocol.ParseEmailGetResponse(getResp)
	if err != nil {
		return nil, &ProtocolError{Reason: "malformed Email/get response", Err: err}
	}

	emails := make([]entity.Email, 0, len(getResult.List))
	for _, w := range getResult.List {
		emails = append(emails, entity.EmailFromWire(w))
	}
	entity.SortEmailsByReceivedAt(emails)

	return &EmailPage{
		Emails:     emails,
		Total:      queryResult.Total,
		Position:   queryResult.Position,
		QueryState: queryResult.QueryState,
	}, nil
}

// GetEmail fetches a single email with full bodies and attachments.
func (c *Client) GetEmail(ctx context.Context, id string) (*entity.Email, error) {
	snap, err := c.current()
	if err != nil {
		return nil, err
	}

	calls := []protocol.MethodCall{
		{
			Name: protocol.MethodEmailGet,
			Arguments: map[string]interface{}{
				"accountId":          snap.accountId,
				"ids":                []string{id},
				"properties":         fullProperties,
				"fetchAllBodyValues": true,
				"maxBodyValueBytes":  1024 * 1024,
			},
			CallId: "0",
		},
	}

	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.MailCapability}, calls)
	if err != nil {
		return nil, err
	}
	r, err := resultFor(responses, "0", protocol.MethodEmailGet)
	if err != nil {
		return nil, err
	}
	result, err := protocol.ParseEmailGetResponse(r)
	if err != nil {
		return nil, &ProtocolError{Reason: "malformed Email/get response", Err: err}
	}
	if len(result.List) == 0 {
		return nil, &NotFoundError{Kind: "email", Id: id}
	}

	email := entity.EmailFromWire(result.List[0])
	return &email, nil
}

// GetThread fetches a thread's member ids.
func (c *Client) GetThread(ctx context.Context, threadId string) (*entity.Thread, error) {
	snap, err := c.current()
	if err != nil {
		return nil, err
	}

	calls := []protocol.MethodCall{
		{
			Name:      protocol.MethodThreadGet,
			Arguments: protocol.GetRequest{AccountId: snap.accountId, Ids: []protocol.Id{protocol.Id(threadId)}},
			CallId:    "0",
		},
	}
	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.MailCapability}, calls)
	if err != nil {
		return nil, err
	}
	r, err := resultFor(responses, "0", protocol.MethodThreadGet)
	if err != nil {
		return nil, err
	}

	var result struct {
		List []protocol.Thread `json:"list"`
	}
	if err := unmarshalArguments(r, &result); err != nil {
		return nil, err
	}
	if len(result.List) == 0 {
		return nil, &NotFoundError{Kind: "thread", Id: threadId}
	}

	thread := entity.ThreadFromWire(result.List[0])
	return &thread, nil
}

// GetThreadEmails fetches all messages of a conversation newest-first,
// joining Thread/get and Email/get with a back-reference.
func (c *Client) GetThreadEmails(ctx context.Context, threadId string) ([]entity.Email, error) {
	snap, err := c.current()
	if err != nil {
		return nil, err
	}

	calls := []protocol.MethodCall{
		{
			Name:      protocol.MethodThreadGet,
			Arguments: protocol.GetRequest{AccountId: snap.accountId, Ids: []protocol.Id{protocol.Id(threadId)}},
			CallId:    "0",
		},
		{
			Name: protocol.MethodEmailGet,
			Arguments: map[string]interface{}{
				"accountId":  snap.accountId,
				"#ids":       protocol.BackReference("0", protocol.MethodThreadGet, "/list/*/emailIds"),
				"properties": listProperties,
			},
			CallId: "1",
		},
	}

	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.MailCapability}, calls)
	if err != nil {
		return nil, err
	}

	r, err := resultFor(responses, "1", protocol.MethodEmailGet)
	if err != nil {
		return nil, err
	}
	result, err := protocol.ParseEmailGetResponse(r)
	if err != nil {
		return nil, &ProtocolError{Reason: "malformed Email/get response", Err: err}
	}

	emails := make([]entity.Email, 0, len(result.List))
	for _, w := range result.List {
		emails = append(emails, entity.EmailFromWire(w))
	}
	entity.SortEmailsByReceivedAt(emails)
	return emails, nil
}

// BulkResult reports the outcome of a multi-object mutation per id instead
// of failing the whole batch on the first rejection.
type BulkResult struct {
	Succeeded []string
	Failed    map[string]string
}

// MarkEmailsRead sets or clears the $seen keyword on a set of emails.
func (c *Client) MarkEmailsRead(ctx context.Context, ids []string, read bool) (*BulkResult, error) {
	return c.patchEmails(ctx, ids, "keywords/$seen", read)
}

// FlagEmails sets or clears the $flagged keyword on a set of emails.
func (c *Client) FlagEmails(ctx context.Context, ids []string, flagged bool) (*BulkResult, error) {
	return c.patchEmails(ctx, ids, "keywords/$flagged", flagged)
}

// patchEmails applies the same keyword patch to every id. Clearing a keyword
// is a null patch per JMAP patch semantics.
func (c *Client) patchEmails(ctx context.Context, ids []string, path string, set bool) (*BulkResult, error) {
	snap, err := c.current()
	if err != nil {
		return nil, err
	}

	var value interface{}
	if set {
		value = true
	}

	update := make(map[protocol.Id]interface{}, len(ids))
	for _, id := range ids {
		update[protocol.Id(id)] = map[string]interface{}{path: value}
	}

	return c.emailSet(ctx, protocol.SetRequest{AccountId: snap.accountId, Update: update}, ids)
}

// MoveEmails moves a set of emails into a single mailbox, replacing their
// previous mailbox membership.
func (c *Client) MoveEmails(ctx context.Context, ids []string, mailboxId string) (*BulkResult, error) {
	snap, err := c.current()
	if err != nil {
		return nil, err
	}
	_, original := entity.SplitMailboxId(mailboxId)

	update := make(map[protocol.Id]interface{}, len(ids))
	for _, id := range ids {
		update[protocol.Id(id)] = map[string]interface{}{
			"mailboxIds": map[string]bool{original: true},
		}
	}

	return c.emailSet(ctx, protocol.SetRequest{AccountId: snap.accountId, Update: update}, ids)
}

// DeleteEmails destroys a set of emails permanently.
func (c *Client) DeleteEmails(ctx context.Context, ids []string) (*BulkResult, error) {
	snap, err := c.current()
	if err != nil {
		return nil, err
	}

	destroy := make([]protocol.Id, len(ids))
	for i, id := range ids {
		destroy[i] = protocol.Id(id)
	}

	return c.emailSet(ctx, protocol.SetRequest{AccountId: snap.accountId, Destroy: destroy}, ids)
}

// emailSet runs an Email/set and folds the response into per-id outcomes.
func (c *Client) emailSet(ctx context.Context, set protocol.SetRequest, ids []string) (*BulkResult, error) {
	calls := []protocol.MethodCall{
		{Name: protocol.MethodEmailSet, Arguments: set, CallId: "0"},
	}
	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.MailCapability}, calls)
	if err != nil {
		return nil, err
	}

	setResp, err := setResultFor(responses, "0", protocol.MethodEmailSet)
	if setResp == nil {
		return nil, err
	}

	result := &BulkResult{Failed: make(map[string]string)}
	var pf *PartialFailure
	if err != nil {
		var ok bool
		if pf, ok = err.(*PartialFailure); !ok {
			return nil, err
		}
		for id, se := range pf.Errors {
			desc := se.Description
			if desc == "" {
				desc = se.Type
			}
			result.Failed[id] = desc
		}
	}

	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	for _, id := range sorted {
		if _, failed := result.Failed[id]; !failed {
			result.Succeeded = append(result.Succeeded, id)
		}
	}
	return result, nil
}

// unmarshalArguments decodes a method response's arguments, wrapping decode
// failures as ProtocolError.
func unmarshalArguments(r *protocol.MethodResponse, v interface{}) error {
	if err := json.Unmarshal(r.Arguments, v); err != nil {
		return &ProtocolError{Reason: "malformed " + r.Name + " response", Err: err}
	}
	return nil
}
