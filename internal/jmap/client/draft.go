package client

import (
	"context"

	"github.com/google/uuid"

	"jmapclient/internal/common/logger"
	"jmapclient/internal/common/validation"
	"jmapclient/internal/jmap/entity"
	"jmapclient/internal/jmap/protocol"
)

// Draft is an outgoing message under composition. Id is empty for a brand
// new draft and set when replacing a previously saved one.
type Draft struct {
	Id string

	// IdentityId selects the sending persona explicitly; empty falls back
	// to matching From, then the server's first identity.
	IdentityId string
	From       string

	To  []entity.Address
	Cc  []entity.Address
	Bcc []entity.Address

	Subject  string
	TextBody string
	HtmlBody string

	// InReplyTo and References carry threading headers when replying.
	InReplyTo  []string
	References []string

	// Attachments reference blobs previously uploaded via UploadBlob.
	Attachments []entity.Attachment
}

// buildEmailObject produces the Email/set create payload for a draft. Body
// text goes through bodyValues with fixed part ids.
func buildEmailObject(d Draft, from entity.Address, mailboxId string, keywords map[string]bool) map[string]interface{} {
	obj := map[string]interface{}{
		"mailboxIds": map[string]bool{mailboxId: true},
		"keywords":   keywords,
		"from":       entity.AddressesToWire([]entity.Address{from}),
		"subject":    d.Subject,
	}

	if len(d.To) > 0 {
		obj["to"] = entity.AddressesToWire(d.To)
	}
	if len(d.Cc) > 0 {
		obj["cc"] = entity.AddressesToWire(d.Cc)
	}
	if len(d.Bcc) > 0 {
		obj["bcc"] = entity.AddressesToWire(d.Bcc)
	}
	if len(d.InReplyTo) > 0 {
		obj["inReplyTo"] = d.InReplyTo
	}
	if len(d.References) > 0 {
		obj["references"] = d.References
	}

	bodyValues := make(map[string]interface{})
	if d.TextBody != "" || d.HtmlBody == "" {
		bodyValues["text"] = map[string]string{"value": d.TextBody}
		obj["textBody"] = []map[string]string{{"partId": "text", "type": "text/plain"}}
	}
	if d.HtmlBody != "" {
		bodyValues["html"] = map[string]string{"value": d.HtmlBody}
		obj["htmlBody"] = []map[string]string{{"partId": "html", "type": "text/html"}}
	}
	obj["bodyValues"] = bodyValues

	if len(d.Attachments) > 0 {
		attachments := make([]map[string]interface{}, len(d.Attachments))
		for i, a := range d.Attachments {
			attachments[i] = map[string]interface{}{
				"blobId":      a.BlobId,
				"name":        a.Name,
				"type":        a.Type,
				"disposition": "attachment",
			}
		}
		obj["attachments"] = attachments
	}

	return obj
}

// validateRecipients rejects malformed addresses before anything reaches
// the server.
func validateRecipients(groups ...[]entity.Address) error {
	for _, group := range groups {
		for _, a := range group {
			if err := validation.ValidateEmail(a.Email); err != nil {
				return err
			}
		}
	}
	return nil
}

// SaveDraft stores a draft in the drafts mailbox and returns the new email
// id. The sender of a stored email is immutable, so replacing an existing
// draft destroys the old object and creates a new one in the same batch;
// a brand new draft produces a create only.
func (c *Client) SaveDraft(ctx context.Context, d Draft) (string, error) {
	snap, err := c.current()
	if err != nil {
		return "", err
	}
	if err := validateRecipients(d.To, d.Cc, d.Bcc); err != nil {
		return "", err
	}

	drafts, err := c.mailboxByRole(ctx, "drafts")
	if err != nil {
		return "", err
	}
	if drafts == nil {
		return "", ErrNoDraftsMailbox
	}

	identities, err := c.GetIdentities(ctx)
	if err != nil {
		return "", err
	}
	identity, err := resolveIdentity(identities, d.IdentityId, d.From)
	if err != nil {
		return "", err
	}
	from := entity.Address{Name: identity.Name, Email: identity.Email}

	creationId := "draft-" + uuid.NewString()
	set := protocol.SetRequest{
		AccountId: snap.accountId,
		Create: map[string]interface{}{
			creationId: buildEmailObject(d, from, drafts.OriginalId, map[string]bool{"$draft": true}),
		},
	}
	if d.Id != "" {
		set.Destroy = []protocol.Id{protocol.Id(d.Id)}
	}

	calls := []protocol.MethodCall{
		{Name: protocol.MethodEmailSet, Arguments: set, CallId: "0"},
	}
	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.MailCapability}, calls)
	if err != nil {
		return "", err
	}

	setResp, err := setResultFor(responses, "0", protocol.MethodEmailSet)
	if err != nil {
		return "", err
	}

	newId := setResp.CreatedId(creationId)
	if newId == "" {
		return "", &ProtocolError{Reason: "draft created but no id returned"}
	}
	logger.LogDebug(c.logger, "draft saved", "id", string(newId), "replaced", d.Id)
	return string(newId), nil
}

// SendEmail submits a message. It is a two-call batch: Email/set creates the
// final message, then EmailSubmission/set references it by its batch-local
// creation id. On acceptance the server moves the message to the sent
// mailbox and marks it seen via onSuccessUpdateEmail. A previously saved
// draft id is destroyed in the same Email/set.
func (c *Client) SendEmail(ctx context.Context, d Draft) error {
	if err := c.requireCapability(protocol.SubmissionCapability); err != nil {
		return err
	}
	snap, err := c.current()
	if err != nil {
		return err
	}
	if err := validateRecipients(d.To, d.Cc, d.Bcc); err != nil {
		return err
	}
	if len(d.To)+len(d.Cc)+len(d.Bcc) == 0 {
		return &MethodError{Method: protocol.MethodSubmissionSet, Type: "noRecipients",
			Description: "message has no recipients"}
	}

	sent, err := c.mailboxByRole(ctx, "sent")
	if err != nil {
		return err
	}
	if sent == nil {
		return ErrNoSentMailbox
	}

	identities, err := c.GetIdentities(ctx)
	if err != nil {
		return err
	}
	identity, err := resolveIdentity(identities, d.IdentityId, d.From)
	if err != nil {
		return err
	}
	from := entity.Address{Name: identity.Name, Email: identity.Email}

	emailCreationId := "send-" + uuid.NewString()
	submissionCreationId := "sub-" + uuid.NewString()

	emailSet := protocol.SetRequest{
		AccountId: snap.accountId,
		Create: map[string]interface{}{
			emailCreationId: buildEmailObject(d, from, sent.OriginalId, map[string]bool{"$draft": true}),
		},
	}
	if d.Id != "" {
		emailSet.Destroy = []protocol.Id{protocol.Id(d.Id)}
	}

	var rcptTo []protocol.EnvelopeAddress
	for _, group := range [][]entity.Address{d.To, d.Cc, d.Bcc} {
		for _, a := range group {
			rcptTo = append(rcptTo, protocol.EnvelopeAddress{Email: a.Email})
		}
	}

	submissionSet := protocol.SetRequest{
		AccountId: snap.accountId,
		Create: map[string]interface{}{
			submissionCreationId: map[string]interface{}{
				"emailId":    "#" + emailCreationId,
				"identityId": identity.Id,
				"envelope": protocol.Envelope{
					MailFrom: protocol.EnvelopeAddress{Email: identity.Email},
					RcptTo:   rcptTo,
				},
			},
		},
		OnSuccessUpdateEmail: map[string]interface{}{
			"#" + submissionCreationId: map[string]interface{}{
				"mailboxIds/" + sent.OriginalId: true,
				"keywords/$seen":                true,
				"keywords/$draft":               nil,
			},
		},
	}

	calls := []protocol.MethodCall{
		{Name: protocol.MethodEmailSet, Arguments: emailSet, CallId: "0"},
		{Name: protocol.MethodSubmissionSet, Arguments: submissionSet, CallId: "1"},
	}
	responses, err := c.Do(ctx,
		[]string{protocol.CoreCapability, protocol.MailCapability, protocol.SubmissionCapability}, calls)
	if err != nil {
		return err
	}

	if _, err := setResultFor(responses, "0", protocol.MethodEmailSet); err != nil {
		return err
	}
	if _, err := setResultFor(responses, "1", protocol.MethodSubmissionSet); err != nil {
		return err
	}

	logger.LogInfo(c.logger, "email submitted", "identity", identity.Id, "recipients", len(rcptTo))

	// Best effort: remember the people this user writes to. Failures are
	// logged and never surface to the sender.
	c.autoCollectRecipients(ctx, append(append([]entity.Address{}, d.To...), d.Cc...))

	return nil
}
