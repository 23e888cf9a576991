package entity

import (
	"testing"

	"jmapclient/internal/jmap/protocol"
)

func strPtr(s string) *string { return &s }

func idPtr(s string) *protocol.Id {
	id := protocol.Id(s)
	return &id
}

func TestMailboxFromWire_DefaultAccount(t *testing.T) {
	w := protocol.Mailbox{
		Id:           "mb1",
		Name:         "Inbox",
		Role:         strPtr("inbox"),
		TotalEmails:  100,
		UnreadEmails: 5,
		IsSubscribed: true,
	}

	mb := MailboxFromWire(w, "A1", "user@example.com", "A1")

	if mb.Id != "mb1" {
		t.Errorf("Id = %q, want un-namespaced %q", mb.Id, "mb1")
	}
	if mb.OriginalId != "mb1" {
		t.Errorf("OriginalId = %q, want %q", mb.OriginalId, "mb1")
	}
	if mb.IsShared {
		t.Error("IsShared should be false for the default account")
	}
	if mb.Role != "inbox" {
		t.Errorf("Role = %q, want %q", mb.Role, "inbox")
	}
	if mb.AccountName != "user@example.com" {
		t.Errorf("AccountName = %q, want %q", mb.AccountName, "user@example.com")
	}
}

func TestMailboxFromWire_SharedAccountNamespacing(t *testing.T) {
	w := protocol.Mailbox{
		Id:       "mb9",
		Name:     "Team",
		ParentId: idPtr("mb8"),
	}

	mb := MailboxFromWire(w, "B2", "shared@example.com", "A1")

	if mb.Id != "B2:mb9" {
		t.Errorf("Id = %q, want namespaced %q", mb.Id, "B2:mb9")
	}
	// ParentId must be namespaced symmetrically so hierarchy walks stay
	// inside the namespaced id space.
	if mb.ParentId != "B2:mb8" {
		t.Errorf("ParentId = %q, want %q", mb.ParentId, "B2:mb8")
	}
	if mb.OriginalId != "mb9" {
		t.Errorf("OriginalId = %q, want %q", mb.OriginalId, "mb9")
	}
	if !mb.IsShared {
		t.Error("IsShared should be true for a non-default account")
	}
}

func TestMailboxFromWire_NamespacingDeterministic(t *testing.T) {
	w := protocol.Mailbox{Id: "mb5", Name: "Archive"}

	first := MailboxFromWire(w, "B2", "shared", "A1")
	second := MailboxFromWire(w, "B2", "shared", "A1")

	if first.Id != second.Id {
		t.Errorf("mapping is not deterministic: %q vs %q", first.Id, second.Id)
	}
}

func TestMailboxFromWire_MissingRightsDefaultPermissive(t *testing.T) {
	w := protocol.Mailbox{Id: "mb1", Name: "Inbox"}

	mb := MailboxFromWire(w, "A1", "user", "A1")

	if !mb.MyRights.MayReadItems || !mb.MyRights.MayAddItems || !mb.MyRights.MayDelete {
		t.Errorf("omitted myRights should default to permissive, got %+v", mb.MyRights)
	}
}

func TestMailboxFromWire_ExplicitRightsPreserved(t *testing.T) {
	w := protocol.Mailbox{
		Id:   "mb1",
		Name: "ReadOnly",
		MyRights: &protocol.MailboxRights{
			MayReadItems: true,
		},
	}

	mb := MailboxFromWire(w, "A1", "user", "A1")

	if !mb.MyRights.MayReadItems {
		t.Error("MayReadItems should be true")
	}
	if mb.MyRights.MayAddItems || mb.MyRights.MayDelete {
		t.Errorf("explicit rights must not be widened, got %+v", mb.MyRights)
	}
}

func TestSplitMailboxId(t *testing.T) {
	tests := []struct {
		id           string
		wantAccount  string
		wantOriginal string
	}{
		{"B2:mb9", "B2", "mb9"},
		{"mb9", "", "mb9"},
		{"B2:mb:9", "B2", "mb:9"},
	}

	for _, tt := range tests {
		account, original := SplitMailboxId(tt.id)
		if account != tt.wantAccount || original != tt.wantOriginal {
			t.Errorf("SplitMailboxId(%q) = (%q, %q), want (%q, %q)",
				tt.id, account, original, tt.wantAccount, tt.wantOriginal)
		}
	}
}
