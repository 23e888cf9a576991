// Package client implements the JMAP protocol client: session lifecycle,
// batched method calls, change polling, blob transfer and the draft and
// submission workflows. Every public operation either returns a typed value
// or fails with one of the error kinds defined here; raw transport errors
// never escape.
package client

import (
	"errors"
	"fmt"
	"sort"

	"jmapclient/internal/jmap/protocol"
)

// Sentinel errors for preconditions callers can test with errors.Is.
var (
	ErrNotConnected    = errors.New("not connected")
	ErrNoAccount       = errors.New("no account available in session")
	ErrNoDraftsMailbox = errors.New("no mailbox with role drafts")
	ErrNoSentMailbox   = errors.New("no mailbox with role sent")
	ErrNoIdentities    = errors.New("no sending identities available")
)

// AuthenticationError means the server rejected the credentials (HTTP 401).
// Never retried automatically; the caller must re-prompt.
type AuthenticationError struct {
	Status int
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed (status %d)", e.Status)
}

// ConnectionError is a non-2xx or transport failure during discovery or
// keep-alive. Body is truncated for logging.
type ConnectionError struct {
	Status int
	Body   string
	Err    error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("connection failed: %v", e.Err)
	}
	return fmt.Sprintf("connection failed (status %d): %s", e.Status, e.Body)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ProtocolError is a malformed response body, an unexpected response shape,
// or a transport failure during an API call. Always fatal to that call.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error: %s: %v", e.Reason, e.Err)
	}
	return "protocol error: " + e.Reason
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// MethodError is a method-level error pseudo-response, carrying the
// server-provided type and description verbatim.
type MethodError struct {
	Method      string
	Type        string
	Description string
}

func (e *MethodError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s failed: %s (%s)", e.Method, e.Type, e.Description)
	}
	return fmt.Sprintf("%s failed: %s", e.Method, e.Type)
}

// PartialFailure reports per-object errors from a /set call. Callers that
// submitted multiple objects must inspect Errors per id; single-object
// callers can treat the whole value as one error.
type PartialFailure struct {
	Method string
	Errors map[string]protocol.SetError
}

func (e *PartialFailure) Error() string {
	id, se := e.First()
	desc := se.Description
	if desc == "" {
		desc = se.Type
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("%s failed for %s: %s", e.Method, id, desc)
	}
	return fmt.Sprintf("%s failed for %d objects (first: %s: %s)", e.Method, len(e.Errors), id, desc)
}

// First returns the lexicographically first failed id and its error, so the
// single-object error message is deterministic.
func (e *PartialFailure) First() (string, protocol.SetError) {
	ids := make([]string, 0, len(e.Errors))
	for id := range e.Errors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		return "", protocol.SetError{}
	}
	return ids[0], e.Errors[ids[0]]
}

// NotFoundError means a fetch-by-id returned an empty list.
type NotFoundError struct {
	Kind string
	Id   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Id)
}

// CapabilityUnsupportedError means an operation was invoked against a session
// lacking the required capability.
type CapabilityUnsupportedError struct {
	Capability string
}

func (e *CapabilityUnsupportedError) Error() string {
	return "server does not support " + e.Capability
}

// UploadError wraps a blob upload failure.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("blob upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// setFailures converts a /set response's rejection maps into a PartialFailure,
// or nil when every object succeeded.
func setFailures(method string, resp *protocol.SetResponse) error {
	if !resp.HasFailures() {
		return nil
	}
	failed := make(map[string]protocol.SetError)
	for id, se := range resp.NotCreated {
		failed[id] = se
	}
	for id, se := range resp.NotUpdated {
		failed[string(id)] = se
	}
	for id, se := range resp.NotDestroyed {
		failed[string(id)] = se
	}
	return &PartialFailure{Method: method, Errors: failed}
}
