package entity

import (
	"sort"
	"strings"
	"time"

	"jmapclient/internal/jmap/protocol"
)

// Address is a display name plus email address.
type Address struct {
	Name  string
	Email string
}

// Attachment describes one downloadable attachment part of an email.
type Attachment struct {
	BlobId string
	Name   string
	Type   string
	Size   int64
}

// Email is an immutable snapshot of a message. State changes (read, flagged,
// moved) are expressed as targeted updates sent to the server; the client
// never mutates an Email value in place.
type Email struct {
	Id       string
	ThreadId string
	BlobId   string

	MailboxIds map[string]bool
	Keywords   map[string]bool

	Size       uint32
	ReceivedAt time.Time
	SentAt     time.Time

	MessageId  []string
	InReplyTo  []string
	References []string

	From    []Address
	To      []Address
	Cc      []Address
	Bcc     []Address
	ReplyTo []Address

	Subject string
	Preview string

	TextBody string
	HtmlBody string

	Attachments   []Attachment
	HasAttachment bool
}

// IsUnread reports whether the $seen keyword is absent.
func (e Email) IsUnread() bool { return !e.Keywords["$seen"] }

// IsFlagged reports whether the $flagged keyword is set.
func (e Email) IsFlagged() bool { return e.Keywords["$flagged"] }

// IsDraft reports whether the $draft keyword is set.
func (e Email) IsDraft() bool { return e.Keywords["$draft"] }

// parseUTCDate parses a JMAP UTCDate. Malformed or absent values map to the
// zero time rather than an error.
func parseUTCDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func addressesFromWire(ws []protocol.EmailAddress) []Address {
	if len(ws) == 0 {
		return nil
	}
	out := make([]Address, len(ws))
	for i, w := range ws {
		out[i] = Address{Name: w.Name, Email: w.Email}
	}
	return out
}

// AddressesToWire maps domain addresses to their wire form. Callers building
// Email/set payloads must go through this so the address keys marshal
// lowercase.
func AddressesToWire(as []Address) []protocol.EmailAddress {
	if len(as) == 0 {
		return nil
	}
	out := make([]protocol.EmailAddress, len(as))
	for i, a := range as {
		out[i] = protocol.EmailAddress{Name: a.Name, Email: a.Email}
	}
	return out
}

// resolveBody concatenates the fetched body values referenced by a part list.
// Parts whose value was not fetched contribute nothing.
func resolveBody(parts []protocol.BodyPart, values map[string]protocol.BodyValue) string {
	var sb strings.Builder
	for _, part := range parts {
		if v, ok := values[part.PartId]; ok {
			sb.WriteString(v.Value)
		}
	}
	return sb.String()
}

// EmailFromWire maps a wire email into the domain, resolving body part
// references into flat text/HTML bodies.
func EmailFromWire(w protocol.Email) Email {
	mailboxIds := make(map[string]bool, len(w.MailboxIds))
	for id, present := range w.MailboxIds {
		if present {
			mailboxIds[string(id)] = true
		}
	}

	keywords := make(map[string]bool, len(w.Keywords))
	for kw, set := range w.Keywords {
		if set {
			keywords[kw] = true
		}
	}

	var attachments []Attachment
	for _, a := range w.Attachments {
		attachments = append(attachments, Attachment{
			BlobId: string(a.BlobId),
			Name:   a.Name,
			Type:   a.Type,
			Size:   a.Size,
		})
	}

	return Email{
		Id:            string(w.Id),
		ThreadId:      string(w.ThreadId),
		BlobId:        string(w.BlobId),
		MailboxIds:    mailboxIds,
		Keywords:      keywords,
		Size:          w.Size,
		ReceivedAt:    parseUTCDate(w.ReceivedAt),
		SentAt:        parseUTCDate(w.SentAt),
		MessageId:     w.MessageId,
		InReplyTo:     w.InReplyTo,
		References:    w.References,
		From:          addressesFromWire(w.From),
		To:            addressesFromWire(w.To),
		Cc:            addressesFromWire(w.Cc),
		Bcc:           addressesFromWire(w.Bcc),
		ReplyTo:       addressesFromWire(w.ReplyTo),
		Subject:       w.Subject,
		Preview:       w.Preview,
		TextBody:      resolveBody(w.TextBody, w.BodyValues),
		HtmlBody:      resolveBody(w.HtmlBody, w.BodyValues),
		Attachments:   attachments,
		HasAttachment: w.HasAttachment,
	}
}

// SortEmailsByReceivedAt orders emails newest-first, the order a conversation
// view presents thread members in.
func SortEmailsByReceivedAt(emails []Email) {
	sort.SliceStable(emails, func(i, j int) bool {
		return emails[i].ReceivedAt.After(emails[j].ReceivedAt)
	})
}

// Thread is an ordered set of related email ids.
type Thread struct {
	Id       string
	EmailIds []string
}

// ThreadFromWire maps a wire thread into the domain.
func ThreadFromWire(w protocol.Thread) Thread {
	ids := make([]string, len(w.EmailIds))
	for i, id := range w.EmailIds {
		ids[i] = string(id)
	}
	return Thread{Id: string(w.Id), EmailIds: ids}
}

// Identity is a sender persona available for composing outgoing mail.
type Identity struct {
	Id            string
	Name          string
	Email         string
	ReplyTo       []Address
	Bcc           []Address
	TextSignature string
	HtmlSignature string
	MayDelete     bool
}

// IdentityFromWire maps a wire identity into the domain.
func IdentityFromWire(w protocol.Identity) Identity {
	return Identity{
		Id:            string(w.Id),
		Name:          w.Name,
		Email:         w.Email,
		ReplyTo:       addressesFromWire(w.ReplyTo),
		Bcc:           addressesFromWire(w.Bcc),
		TextSignature: w.TextSignature,
		HtmlSignature: w.HtmlSignature,
		MayDelete:     w.MayDelete,
	}
}
