package client

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"jmapclient/internal/jmap/protocol"
)

func TestGetEmails(t *testing.T) {
	c, rec, done := newScriptedClient(t, func(name string, args json.RawMessage, callId string) (string, string) {
		switch name {
		case protocol.MethodEmailQuery:
			return name, `{
				"queryState": "q1",
				"position": 0,
				"total": 2,
				"ids": ["e1", "e2"]
			}`
		case protocol.MethodEmailGet:
			// Older message first: the client must re-sort newest-first.
			return name, `{
				"state": "s1",
				"list": [
					{"id": "e2", "subject": "older", "receivedAt": "2026-08-01T10:00:00Z"},
					{"id": "e1", "subject": "newer", "receivedAt": "2026-08-02T10:00:00Z"}
				]
			}`
		}
		t.Errorf("unexpected method %s", name)
		return "error", `{"type":"unknownMethod"}`
	})
	defer done()

	page, err := c.GetEmails(context.Background(), GetEmailsOptions{MailboxId: "mb1", Limit: 50})
	if err != nil {
		t.Fatalf("GetEmails() error: %v", err)
	}

	if len(page.Emails) != 2 {
		t.Fatalf("got %d emails, want 2", len(page.Emails))
	}
	if page.Emails[0].Id != "e1" || page.Emails[1].Id != "e2" {
		t.Errorf("order = [%s %s], want newest-first [e1 e2]", page.Emails[0].Id, page.Emails[1].Id)
	}
	if page.Total == nil || *page.Total != 2 {
		t.Errorf("Total = %v, want 2", page.Total)
	}
	if page.QueryState != "q1" {
		t.Errorf("QueryState = %q", page.QueryState)
	}

	body := rec.last()
	if !strings.Contains(body, `"inMailbox":"mb1"`) {
		t.Errorf("query filter missing mailbox: %s", body)
	}
	if !strings.Contains(body, `"#ids"`) || !strings.Contains(body, `"resultOf":"0"`) {
		t.Errorf("Email/get not joined by back-reference: %s", body)
	}
}

func TestGetEmails_EmptyMailbox(t *testing.T) {
	c, _, done := newScriptedClient(t, func(name string, args json.RawMessage, callId string) (string, string) {
		switch name {
		case protocol.MethodEmailQuery:
			return name, `{"queryState": "q1", "position": 0, "ids": []}`
		case protocol.MethodEmailGet:
			return name, `{"state": "s1", "list": []}`
		}
		return "error", `{"type":"unknownMethod"}`
	})
	defer done()

	page, err := c.GetEmails(context.Background(), GetEmailsOptions{MailboxId: "mb1"})
	if err != nil {
		t.Fatalf("empty mailbox must not error: %v", err)
	}
	if len(page.Emails) != 0 {
		t.Errorf("got %d emails, want 0", len(page.Emails))
	}
	if page.Total != nil {
		t.Errorf("Total = %v, want nil when server omitted it", *page.Total)
	}
}

func TestGetEmails_NamespacedMailbox(t *testing.T) {
	c, rec, done := newScriptedClient(t, func(name string, args json.RawMessage, callId string) (string, string) {
		switch name {
		case protocol.MethodEmailQuery:
			return name, `{"queryState": "q1", "ids": []}`
		case protocol.MethodEmailGet:
			return name, `{"state": "s1", "list": []}`
		}
		return "error", `{"type":"unknownMethod"}`
	})
	defer done()

	_, err := c.GetEmails(context.Background(), GetEmailsOptions{MailboxId: "B2:mb9"})
	if err != nil {
		t.Fatalf("GetEmails() error: %v", err)
	}

	body := rec.last()
	if !strings.Contains(body, `"accountId":"B2"`) {
		t.Errorf("shared mailbox should address its own account: %s", body)
	}
	if !strings.Contains(body, `"inMailbox":"mb9"`) {
		t.Errorf("namespace prefix should be stripped from the filter: %s", body)
	}
}

func TestSearchEmails(t *testing.T) {
	c, rec, done := newScriptedClient(t, func(name string, args json.RawMessage, callId string) (string, string) {
		switch name {
		case protocol.MethodEmailQuery:
			return name, `{"queryState": "q1", "ids": ["e1"]}`
		case protocol.MethodEmailGet:
			return name, `{"state": "s1", "list": [{"id": "e1", "subject": "invoice"}]}`
		}
		return "error", `{"type":"unknownMethod"}`
	})
	defer done()

	page, err := c.SearchEmails(context.Background(), "invoice", 10)
	if err != nil {
		t.Fatalf("SearchEmails() error: %v", err)
	}
	if len(page.Emails) != 1 || page.Emails[0].Subject != "invoice" {
		t.Errorf("unexpected result: %+v", page.Emails)
	}
	if !strings.Contains(rec.last(), `"text":"invoice"`) {
		t.Errorf("search filter missing: %s", rec.last())
	}
}

func TestMarkEmailsRead_PartialFailure(t *testing.T) {
	c, rec, done := newScriptedClient(t, func(name string, args json.RawMessage, callId string) (string, string) {
		if name != protocol.MethodEmailSet {
			t.Errorf("unexpected method %s", name)
		}
		return name, `{
			"updated": {"e1": null, "e3": null},
			"notUpdated": {"e2": {"type": "notFound", "description": "gone"}}
		}`
	})
	defer done()

	result, err := c.MarkEmailsRead(context.Background(), []string{"e1", "e2", "e3"}, true)
	if err != nil {
		t.Fatalf("MarkEmailsRead() error: %v", err)
	}

	if !reflect.DeepEqual(result.Succeeded, []string{"e1", "e3"}) {
		t.Errorf("Succeeded = %v, want [e1 e3]", result.Succeeded)
	}
	if result.Failed["e2"] != "gone" {
		t.Errorf("Failed[e2] = %q, want gone", result.Failed["e2"])
	}

	if !strings.Contains(rec.last(), `"keywords/$seen":true`) {
		t.Errorf("seen patch missing: %s", rec.last())
	}
}

func TestMarkEmailsRead_ClearUsesNullPatch(t *testing.T) {
	c, rec, done := newScriptedClient(t, func(name string, args json.RawMessage, callId string) (string, string) {
		return name, `{"updated": {"e1": null}}`
	})
	defer done()

	if _, err := c.MarkEmailsRead(context.Background(), []string{"e1"}, false); err != nil {
		t.Fatalf("MarkEmailsRead() error: %v", err)
	}
	if !strings.Contains(rec.last(), `"keywords/$seen":null`) {
		t.Errorf("clearing a keyword must patch it to null: %s", rec.last())
	}
}

func TestFlagEmails(t *testing.T) {
	c, rec, done := newScriptedClient(t, func(name string, args json.RawMessage, callId string) (string, string) {
		return name, `{"updated": {"e1": null}}`
	})
	defer done()

	result, err := c.FlagEmails(context.Background(), []string{"e1"}, true)
	if err != nil {
		t.Fatalf("FlagEmails() error: %v", err)
	}
	if !reflect.DeepEqual(result.Succeeded, []string{"e1"}) {
		t.Errorf("Succeeded = %v", result.Succeeded)
	}
	if !strings.Contains(rec.last(), `"keywords/$flagged":true`) {
		t.Errorf("flagged patch missing: %s", rec.last())
	}
}

func TestMoveEmails_StripsNamespace(t *testing.T) {
	c, rec, done := newScriptedClient(t, func(name string, args json.RawMessage, callId string) (string, string) {
		return name, `{"updated": {"e1": null}}`
	})
	defer done()

	if _, err := c.MoveEmails(context.Background(), []string{"e1"}, "B2:mb9"); err != nil {
		t.Fatalf("MoveEmails() error: %v", err)
	}
	body := rec.last()
	if !strings.Contains(body, `"mailboxIds":{"mb9":true}`) {
		t.Errorf("move must replace mailboxIds with the bare id: %s", body)
	}
	if strings.Contains(body, "B2:mb9") {
		t.Errorf("namespaced id leaked to the wire: %s", body)
	}
}

func TestDeleteEmails(t *testing.T) {
	c, rec, done := newScriptedClient(t, func(name string, args json.RawMessage, callId string) (string, string) {
		return name, `{"destroyed": ["e1", "e2"]}`
	})
	defer done()

	result, err := c.DeleteEmails(context.Background(), []string{"e2", "e1"})
	if err != nil {
		t.Fatalf("DeleteEmails() error: %v", err)
	}
	if !reflect.DeepEqual(result.Succeeded, []string{"e1", "e2"}) {
		t.Errorf("Succeeded = %v", result.Succeeded)
	}
	if len(result.Failed) != 0 {
		t.Errorf("Failed = %v, want empty", result.Failed)
	}
	if !strings.Contains(rec.last(), `"destroy":["e2","e1"]`) {
		t.Errorf("destroy list missing: %s", rec.last())
	}
}

func TestGetEmail_NotFound(t *testing.T) {
	c, _, done := newScriptedClient(t, func(name string, args json.RawMessage, callId string) (string, string) {
		return name, `{"state": "s1", "list": [], "notFound": ["nope"]}`
	})
	defer done()

	_, err := c.GetEmail(context.Background(), "nope")
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("GetEmail() error = %v, want NotFoundError", err)
	}
	if nfErr.Kind != "email" || nfErr.Id != "nope" {
		t.Errorf("NotFoundError = %+v", nfErr)
	}
}

func TestGetThreadEmails(t *testing.T) {
	c, rec, done := newScriptedClient(t, func(name string, args json.RawMessage, callId string) (string, string) {
		switch name {
		case protocol.MethodThreadGet:
			return name, `{"list": [{"id": "t1", "emailIds": ["e1", "e2"]}]}`
		case protocol.MethodEmailGet:
			return name, `{
				"state": "s1",
				"list": [
					{"id": "e1", "receivedAt": "2026-08-01T08:00:00Z"},
					{"id": "e2", "receivedAt": "2026-08-01T09:00:00Z"}
				]
			}`
		}
		return "error", `{"type":"unknownMethod"}`
	})
	defer done()

	emails, err := c.GetThreadEmails(context.Background(), "t1")
	if err != nil {
		t.Fatalf("GetThreadEmails() error: %v", err)
	}
	if len(emails) != 2 {
		t.Fatalf("got %d emails, want 2", len(emails))
	}
	if emails[0].Id != "e2" {
		t.Errorf("first = %s, want newest e2", emails[0].Id)
	}
	if !strings.Contains(rec.last(), `"path":"/list/*/emailIds"`) {
		t.Errorf("thread join path missing: %s", rec.last())
	}
}
