// Package entity defines the typed domain objects handed to callers and the
// pure mappers translating them from and to the wire representation. Mappers
// never perform I/O and never fail on absent optional fields; every optional
// wire property falls back to a documented default.
package entity

import (
	"strings"

	"jmapclient/internal/jmap/protocol"
)

// MailboxRights is the caller's permission set on a mailbox.
type MailboxRights struct {
	MayReadItems   bool
	MayAddItems    bool
	MayRemoveItems bool
	MaySetSeen     bool
	MaySetKeywords bool
	MayCreateChild bool
	MayRename      bool
	MayDelete      bool
	MaySubmit      bool
}

// Mailbox is a folder in an account, possibly a shared one. Ids of mailboxes
// outside the client's default account are namespaced as
// "accountId:originalId" so the full mailbox set has globally unique keys.
type Mailbox struct {
	Id         string
	OriginalId string
	Name       string
	ParentId   string
	Role       string
	SortOrder  uint32

	TotalEmails   uint32
	UnreadEmails  uint32
	TotalThreads  uint32
	UnreadThreads uint32

	MyRights     MailboxRights
	IsSubscribed bool

	AccountId   string
	AccountName string
	IsShared    bool
}

// permissiveRights is the default when the server omits myRights entirely.
func permissiveRights() MailboxRights {
	return MailboxRights{
		MayReadItems:   true,
		MayAddItems:    true,
		MayRemoveItems: true,
		MaySetSeen:     true,
		MaySetKeywords: true,
		MayCreateChild: true,
		MayRename:      true,
		MayDelete:      true,
		MaySubmit:      true,
	}
}

// NamespaceMailboxId prefixes a raw mailbox id with its owning account.
func NamespaceMailboxId(accountId, id string) string {
	return accountId + ":" + id
}

// SplitMailboxId reverses NamespaceMailboxId. A non-namespaced id returns
// an empty account and the id unchanged.
func SplitMailboxId(id string) (accountId, originalId string) {
	if i := strings.Index(id, ":"); i >= 0 {
		return id[:i], id[i+1:]
	}
	return "", id
}

// MailboxFromWire maps a wire mailbox into the domain. Namespacing is applied
// only when the owning account is not the client's default account, and
// symmetrically to parentId so a hierarchy walk never crosses from a
// namespaced id to a raw parent.
func MailboxFromWire(w protocol.Mailbox, accountId, accountName, defaultAccountId string) Mailbox {
	shared := accountId != defaultAccountId

	id := string(w.Id)
	if shared {
		id = NamespaceMailboxId(accountId, id)
	}

	var parentId string
	if w.ParentId != nil {
		parentId = string(*w.ParentId)
		if shared {
			parentId = NamespaceMailboxId(accountId, parentId)
		}
	}

	var role string
	if w.Role != nil {
		role = *w.Role
	}

	rights := permissiveRights()
	if w.MyRights != nil {
		rights = MailboxRights{
			MayReadItems:   w.MyRights.MayReadItems,
			MayAddItems:    w.MyRights.MayAddItems,
			MayRemoveItems: w.MyRights.MayRemoveItems,
			MaySetSeen:     w.MyRights.MaySetSeen,
			MaySetKeywords: w.MyRights.MaySetKeywords,
			MayCreateChild: w.MyRights.MayCreateChild,
			MayRename:      w.MyRights.MayRename,
			MayDelete:      w.MyRights.MayDelete,
			MaySubmit:      w.MyRights.MaySubmit,
		}
	}

	return Mailbox{
		Id:            id,
		OriginalId:    string(w.Id),
		Name:          w.Name,
		ParentId:      parentId,
		Role:          role,
		SortOrder:     w.SortOrder,
		TotalEmails:   w.TotalEmails,
		UnreadEmails:  w.UnreadEmails,
		TotalThreads:  w.TotalThreads,
		UnreadThreads: w.UnreadThreads,
		MyRights:      rights,
		IsSubscribed:  w.IsSubscribed,
		AccountId:     accountId,
		AccountName:   accountName,
		IsShared:      shared,
	}
}
