// Package protocol provides JMAP protocol types and utilities.
package protocol

import (
	"encoding/json"
)

// Id represents a JMAP identifier string.
type Id string

// Session represents a JMAP session resource.
// See RFC 8620 Section 2.
type Session struct {
	// Capabilities contains the capabilities of the server.
	Capabilities map[string]json.RawMessage `json:"capabilities"`

	// Accounts contains information about the accounts available.
	Accounts map[Id]Account `json:"accounts"`

	// PrimaryAccounts maps data type URIs to the primary account ID.
	PrimaryAccounts map[string]Id `json:"primaryAccounts"`

	// Username is the username associated with the session.
	Username string `json:"username"`

	// APIURL is the URL for JMAP API requests.
	APIURL string `json:"apiUrl"`

	// DownloadURL is the URL template for downloading blobs.
	DownloadURL string `json:"downloadUrl"`

	// UploadURL is the URL template for uploading blobs.
	UploadURL string `json:"uploadUrl"`

	// EventSourceURL is the URL for push notifications.
	EventSourceURL string `json:"eventSourceUrl"`

	// State is an opaque string representing the current state.
	State string `json:"state"`
}

// Account represents a JMAP account.
type Account struct {
	// Name is a human-readable name for the account.
	Name string `json:"name"`

	// IsPersonal indicates if this is the user's personal account.
	IsPersonal bool `json:"isPersonal"`

	// IsReadOnly indicates if the account is read-only.
	IsReadOnly bool `json:"isReadOnly"`

	// AccountCapabilities contains account-specific capability data.
	AccountCapabilities map[string]json.RawMessage `json:"accountCapabilities"`
}

// Mailbox represents a JMAP mailbox.
type Mailbox struct {
	// Id is the unique identifier for the mailbox.
	Id Id `json:"id"`

	// Name is the user-visible name of the mailbox.
	Name string `json:"name"`

	// ParentId is the ID of the parent mailbox, or null for top-level.
	ParentId *Id `json:"parentId"`

	// Role is the mailbox role (inbox, drafts, sent, trash, etc.).
	Role *string `json:"role"`

	// SortOrder is the sort order for display.
	SortOrder uint32 `json:"sortOrder"`

	// TotalEmails is the total number of emails in the mailbox.
	TotalEmails uint32 `json:"totalEmails"`

	// UnreadEmails is the number of unread emails.
	UnreadEmails uint32 `json:"unreadEmails"`

	// TotalThreads is the total number of threads.
	TotalThreads uint32 `json:"totalThreads"`

	// UnreadThreads is the number of unread threads.
	UnreadThreads uint32 `json:"unreadThreads"`

	// MyRights contains the user's permissions on this mailbox.
	// Some servers omit it entirely.
	MyRights *MailboxRights `json:"myRights"`

	// IsSubscribed indicates if the mailbox is subscribed.
	IsSubscribed bool `json:"isSubscribed"`
}

// MailboxRights represents the user's permissions on a mailbox.
type MailboxRights struct {
	MayReadItems   bool `json:"mayReadItems"`
	MayAddItems    bool `json:"mayAddItems"`
	MayRemoveItems bool `json:"mayRemoveItems"`
	MaySetSeen     bool `json:"maySetSeen"`
	MaySetKeywords bool `json:"maySetKeywords"`
	MayCreateChild bool `json:"mayCreateChild"`
	MayRename      bool `json:"mayRename"`
	MayDelete      bool `json:"mayDelete"`
	MaySubmit      bool `json:"maySubmit"`
}

// Email represents a JMAP email object.
type Email struct {
	// Id is the unique identifier for the email.
	Id Id `json:"id"`

	// BlobId is the identifier for the raw email blob.
	BlobId Id `json:"blobId,omitempty"`

	// ThreadId is the identifier of the thread.
	ThreadId Id `json:"threadId,omitempty"`

	// MailboxIds maps mailbox IDs to true for each mailbox containing this email.
	MailboxIds map[Id]bool `json:"mailboxIds,omitempty"`

	// Keywords contains the email's keywords/flags.
	Keywords map[string]bool `json:"keywords,omitempty"`

	// Size is the size of the raw email in bytes.
	Size uint32 `json:"size,omitempty"`

	// ReceivedAt is when the email was received, as an ISO-8601 UTC date.
	ReceivedAt string `json:"receivedAt,omitempty"`

	// MessageId contains the Message-ID header values.
	MessageId []string `json:"messageId,omitempty"`

	// InReplyTo contains the In-Reply-To header values.
	InReplyTo []string `json:"inReplyTo,omitempty"`

	// References contains the References header values.
	References []string `json:"references,omitempty"`

	// Sender contains the Sender header addresses.
	Sender []EmailAddress `json:"sender,omitempty"`

	// From contains the From header addresses.
	From []EmailAddress `json:"from,omitempty"`

	// To contains the To header addresses.
	To []EmailAddress `json:"to,omitempty"`

	// Cc contains the Cc header addresses.
	Cc []EmailAddress `json:"cc,omitempty"`

	// Bcc contains the Bcc header addresses.
	Bcc []EmailAddress `json:"bcc,omitempty"`

	// ReplyTo contains the Reply-To header addresses.
	ReplyTo []EmailAddress `json:"replyTo,omitempty"`

	// Subject is the email subject.
	Subject string `json:"subject,omitempty"`

	// SentAt is when the email was sent.
	SentAt string `json:"sentAt,omitempty"`

	// Preview is a short plaintext preview of the email.
	Preview string `json:"preview,omitempty"`

	// HasAttachment indicates if there are attachments.
	HasAttachment bool `json:"hasAttachment,omitempty"`

	// TextBody references the parts forming the plaintext body.
	TextBody []BodyPart `json:"textBody,omitempty"`

	// HtmlBody references the parts forming the HTML body.
	HtmlBody []BodyPart `json:"htmlBody,omitempty"`

	// BodyValues contains fetched body content keyed by partId.
	BodyValues map[string]BodyValue `json:"bodyValues,omitempty"`

	// Attachments lists attachment parts.
	Attachments []Attachment `json:"attachments,omitempty"`
}

// EmailAddress represents an email address with optional name.
type EmailAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// BodyPart references a part of the email body.
type BodyPart struct {
	PartId string `json:"partId"`
	Type   string `json:"type"`
}

// BodyValue contains the actual body content for a part.
type BodyValue struct {
	Value             string `json:"value"`
	IsTruncated       bool   `json:"isTruncated,omitempty"`
	IsEncodingProblem bool   `json:"isEncodingProblem,omitempty"`
}

// Attachment represents an email attachment part.
type Attachment struct {
	PartId      string `json:"partId,omitempty"`
	BlobId      Id     `json:"blobId"`
	Name        string `json:"name,omitempty"`
	Type        string `json:"type"`
	Size        int64  `json:"size,omitempty"`
	Disposition string `json:"disposition,omitempty"`
	Cid         string `json:"cid,omitempty"`
}

// Thread represents a JMAP thread.
type Thread struct {
	Id       Id   `json:"id"`
	EmailIds []Id `json:"emailIds"`
}

// Identity represents a sending identity.
type Identity struct {
	Id            Id             `json:"id"`
	Name          string         `json:"name,omitempty"`
	Email         string         `json:"email"`
	ReplyTo       []EmailAddress `json:"replyTo,omitempty"`
	Bcc           []EmailAddress `json:"bcc,omitempty"`
	TextSignature string         `json:"textSignature,omitempty"`
	HtmlSignature string         `json:"htmlSignature,omitempty"`
	MayDelete     bool           `json:"mayDelete"`
}

// AddressBook represents a JMAP address book collection.
type AddressBook struct {
	Id          Id     `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsDefault   bool   `json:"isDefault,omitempty"`
	IsShared    bool   `json:"isShared,omitempty"`
}

// ContactCard represents a JSContact-flavored contact card.
// Multi-valued fields (emails, phones, addresses) are keyed objects on the
// wire rather than arrays.
type ContactCard struct {
	Id  Id     `json:"id,omitempty"`
	UID string `json:"uid,omitempty"`

	Name *CardName `json:"name,omitempty"`

	Emails    map[string]CardEmail   `json:"emails,omitempty"`
	Phones    map[string]CardPhone   `json:"phones,omitempty"`
	Addresses map[string]CardAddress `json:"addresses,omitempty"`

	Organizations map[string]CardOrganization `json:"organizations,omitempty"`
	Titles        map[string]CardTitle        `json:"titles,omitempty"`
	Notes         map[string]CardNote         `json:"notes,omitempty"`

	Avatar   string          `json:"avatar,omitempty"`
	Keywords map[string]bool `json:"keywords,omitempty"`

	AddressBookIds map[Id]bool `json:"addressBookIds,omitempty"`

	Created string `json:"created,omitempty"`
	Updated string `json:"updated,omitempty"`
}

// CardName holds the structured and full name of a contact.
type CardName struct {
	Full       string              `json:"full,omitempty"`
	Components []CardNameComponent `json:"components,omitempty"`
}

// CardNameComponent is one part of a structured name.
// Kind is "given" or "surname".
type CardNameComponent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// CardEmail is a single keyed email entry on a contact card.
type CardEmail struct {
	Address  string          `json:"address"`
	Contexts map[string]bool `json:"contexts,omitempty"`
}

// CardPhone is a single keyed phone entry on a contact card.
type CardPhone struct {
	Number   string          `json:"number"`
	Contexts map[string]bool `json:"contexts,omitempty"`
}

// CardAddress is a single keyed postal address entry on a contact card.
type CardAddress struct {
	Full     string          `json:"full,omitempty"`
	Contexts map[string]bool `json:"contexts,omitempty"`
}

// CardOrganization is a single keyed organization entry.
type CardOrganization struct {
	Name string `json:"name"`
}

// CardTitle is a single keyed job title entry.
type CardTitle struct {
	Name string `json:"name"`
}

// CardNote is a single keyed free-text note entry.
type CardNote struct {
	Note string `json:"note"`
}

// Calendar represents a JMAP calendar.
type Calendar struct {
	Id           Id     `json:"id,omitempty"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Color        string `json:"color,omitempty"`
	IsSubscribed *bool  `json:"isSubscribed,omitempty"`
	IsReadOnly   *bool  `json:"isReadOnly,omitempty"`
	SortOrder    uint32 `json:"sortOrder,omitempty"`
}

// CalendarEvent represents a JSCalendar event on the wire.
// See RFC 8984. The event end is never a wire field: servers send start plus
// an optional ISO-8601 duration.
type CalendarEvent struct {
	Id          Id          `json:"id,omitempty"`
	CalendarIds map[Id]bool `json:"calendarIds,omitempty"`

	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`

	// Start is a LocalDateTime without zone suffix; TimeZone qualifies it.
	Start    string `json:"start,omitempty"`
	Duration string `json:"duration,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`

	ShowWithoutTime bool   `json:"showWithoutTime,omitempty"`
	FreeBusyStatus  string `json:"freeBusyStatus,omitempty"`
	Privacy         string `json:"privacy,omitempty"`
	Status          string `json:"status,omitempty"`

	RecurrenceRules json.RawMessage `json:"recurrenceRules,omitempty"`

	Participants map[string]Participant `json:"participants,omitempty"`

	Keywords map[string]bool      `json:"keywords,omitempty"`
	Priority int                  `json:"priority,omitempty"`
	Links    map[string]EventLink `json:"links,omitempty"`
	Alerts   map[string]Alert     `json:"alerts,omitempty"`

	Created string `json:"created,omitempty"`
	Updated string `json:"updated,omitempty"`
}

// Participant is one attendee or organizer of an event.
type Participant struct {
	Name                string          `json:"name,omitempty"`
	Email               string          `json:"email,omitempty"`
	Kind                string          `json:"kind,omitempty"`
	Roles               map[string]bool `json:"roles,omitempty"`
	ParticipationStatus string          `json:"participationStatus,omitempty"`
}

// EventLink is an attachment or external resource linked from an event.
type EventLink struct {
	Href string `json:"href"`
	Type string `json:"contentType,omitempty"`
	Name string `json:"title,omitempty"`
}

// Alert is a reminder attached to an event.
type Alert struct {
	Trigger AlertTrigger `json:"trigger"`
	Action  string       `json:"action,omitempty"`
}

// AlertTrigger describes when an alert fires, as a signed ISO-8601 offset
// relative to the event start.
type AlertTrigger struct {
	Type   string `json:"@type,omitempty"`
	Offset string `json:"offset,omitempty"`
}

// EmailSubmission represents a message handed to the server for sending.
type EmailSubmission struct {
	Id         Id        `json:"id,omitempty"`
	EmailId    string    `json:"emailId"`
	IdentityId Id        `json:"identityId"`
	Envelope   *Envelope `json:"envelope,omitempty"`
}

// Envelope is the SMTP envelope for a submission.
type Envelope struct {
	MailFrom EnvelopeAddress   `json:"mailFrom"`
	RcptTo   []EnvelopeAddress `json:"rcptTo"`
}

// EnvelopeAddress is a bare address in a submission envelope.
type EnvelopeAddress struct {
	Email string `json:"email"`
}

// GetMailboxesResponse represents the response from Mailbox/get.
type GetMailboxesResponse struct {
	AccountId Id        `json:"accountId"`
	State     string    `json:"state"`
	List      []Mailbox `json:"list"`
	NotFound  []Id      `json:"notFound"`
}

// QueryResponse represents the common shape of a /query method response.
// Total is optional: servers only include it when calculateTotal was
// requested and the computation is cheap enough for them.
type QueryResponse struct {
	AccountId           Id      `json:"accountId"`
	QueryState          string  `json:"queryState"`
	CanCalculateChanges bool    `json:"canCalculateChanges"`
	Position            uint32  `json:"position"`
	Total               *uint32 `json:"total,omitempty"`
	Ids                 []Id    `json:"ids"`
}

// GetEmailsResponse represents the response from Email/get.
type GetEmailsResponse struct {
	AccountId Id      `json:"accountId"`
	State     string  `json:"state"`
	List      []Email `json:"list"`
	NotFound  []Id    `json:"notFound"`
}
