// Package protocol provides JMAP method request/response handling.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Request represents a JMAP API request.
// See RFC 8620 Section 3.2.
type Request struct {
	// Using contains the capability URIs used in this request.
	Using []string `json:"using"`

	// MethodCalls contains the method invocations.
	MethodCalls []MethodCall `json:"methodCalls"`

	// CreatedIds maps creation IDs to server-assigned IDs.
	CreatedIds map[Id]Id `json:"createdIds,omitempty"`
}

// Response represents a JMAP API response.
type Response struct {
	// MethodResponses contains the method responses.
	MethodResponses []MethodResponse `json:"methodResponses"`

	// CreatedIds maps creation IDs to server-assigned IDs.
	CreatedIds map[Id]Id `json:"createdIds,omitempty"`

	// SessionState is the new session state if changed.
	SessionState string `json:"sessionState,omitempty"`
}

// MethodCall represents a single method invocation.
// Format: [name, arguments, methodCallId]
type MethodCall struct {
	Name      string
	Arguments interface{}
	CallId    string
}

// MarshalJSON implements custom JSON marshaling for MethodCall.
func (m MethodCall) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{m.Name, m.Arguments, m.CallId})
}

// UnmarshalJSON implements custom JSON unmarshaling for MethodCall.
func (m *MethodCall) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("method call has %d elements, want 3", len(raw))
	}
	if err := json.Unmarshal(raw[0], &m.Name); err != nil {
		return err
	}
	m.Arguments = raw[1] // Keep as raw JSON
	if err := json.Unmarshal(raw[2], &m.CallId); err != nil {
		return err
	}
	return nil
}

// MethodResponse represents a single method response.
// Format: [name, arguments, methodCallId]
type MethodResponse struct {
	Name      string
	Arguments json.RawMessage
	CallId    string
}

// UnmarshalJSON implements custom JSON unmarshaling for MethodResponse.
func (m *MethodResponse) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("method response has %d elements, want 3", len(raw))
	}
	if err := json.Unmarshal(raw[0], &m.Name); err != nil {
		return err
	}
	m.Arguments = raw[1]
	if err := json.Unmarshal(raw[2], &m.CallId); err != nil {
		return err
	}
	return nil
}

// Error represents a JMAP method-level error.
type Error struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// ResultReference points a later call's argument at the result of an
// earlier call in the same batch. The server resolves it; the client only
// has to keep call ids unique and stable.
// See RFC 8620 Section 3.7.
type ResultReference struct {
	ResultOf string `json:"resultOf"`
	Name     string `json:"name"`
	Path     string `json:"path"`
}

// BackReference builds a ResultReference for the ids produced by an earlier
// call. The argument key carrying it must replace the literal argument and be
// prefixed with '#' per JMAP semantics, e.g. "#ids".
func BackReference(callId, methodName, path string) ResultReference {
	return ResultReference{ResultOf: callId, Name: methodName, Path: path}
}

// Common capability URIs.
const (
	CoreCapability       = "urn:ietf:params:jmap:core"
	MailCapability       = "urn:ietf:params:jmap:mail"
	SubmissionCapability = "urn:ietf:params:jmap:submission"
	QuotaCapability      = "urn:ietf:params:jmap:quota"
	CalendarsCapability  = "urn:ietf:params:jmap:calendars"
	ContactsCapability   = "urn:ietf:params:jmap:contacts"
)

// Common method names.
const (
	MethodEcho = "Core/echo"

	MethodMailboxGet   = "Mailbox/get"
	MethodMailboxQuery = "Mailbox/query"
	MethodMailboxSet   = "Mailbox/set"

	MethodEmailGet   = "Email/get"
	MethodEmailQuery = "Email/query"
	MethodEmailSet   = "Email/set"

	MethodThreadGet   = "Thread/get"
	MethodIdentityGet = "Identity/get"

	MethodSubmissionSet = "EmailSubmission/set"

	MethodAddressBookGet = "AddressBook/get"
	MethodAddressBookSet = "AddressBook/set"
	MethodContactGet     = "ContactCard/get"
	MethodContactQuery   = "ContactCard/query"
	MethodContactSet     = "ContactCard/set"

	MethodCalendarGet        = "Calendar/get"
	MethodCalendarSet        = "Calendar/set"
	MethodCalendarEventGet   = "CalendarEvent/get"
	MethodCalendarEventQuery = "CalendarEvent/query"
	MethodCalendarEventSet   = "CalendarEvent/set"
)

// GetRequest creates arguments for a /get method. Ids has no omitempty on
// purpose: nil marshals as null (fetch all), while an explicit empty slice
// marshals as [] and fetches nothing but the state token.
type GetRequest struct {
	AccountId  Id       `json:"accountId"`
	Ids        []Id     `json:"ids"`
	Properties []string `json:"properties,omitempty"`
}

// QueryRequest creates arguments for a /query method.
type QueryRequest struct {
	AccountId      Id          `json:"accountId"`
	Filter         interface{} `json:"filter,omitempty"`
	Sort           []SortOrder `json:"sort,omitempty"`
	Position       uint32      `json:"position,omitempty"`
	Anchor         *Id         `json:"anchor,omitempty"`
	AnchorOffset   int32       `json:"anchorOffset,omitempty"`
	Limit          *uint32     `json:"limit,omitempty"`
	CalculateTotal bool        `json:"calculateTotal,omitempty"`
}

// SortOrder specifies how to sort results.
type SortOrder struct {
	Property    string `json:"property"`
	IsAscending bool   `json:"isAscending"`
}

// SetRequest creates arguments for a /set method. Create is keyed by a
// batch-local creation id that later calls may reference as "#<id>".
type SetRequest struct {
	AccountId Id                     `json:"accountId"`
	Create    map[string]interface{} `json:"create,omitempty"`
	Update    map[Id]interface{}     `json:"update,omitempty"`
	Destroy   []Id                   `json:"destroy,omitempty"`

	// OnSuccessUpdateEmail is an EmailSubmission/set extension updating the
	// submitted email once the submission is accepted.
	OnSuccessUpdateEmail map[string]interface{} `json:"onSuccessUpdateEmail,omitempty"`
}

// SetResponse represents the common shape of a /set method response.
type SetResponse struct {
	AccountId Id     `json:"accountId"`
	OldState  string `json:"oldState"`
	NewState  string `json:"newState"`

	Created   map[string]json.RawMessage `json:"created,omitempty"`
	Updated   map[Id]json.RawMessage     `json:"updated,omitempty"`
	Destroyed []Id                       `json:"destroyed,omitempty"`

	NotCreated   map[string]SetError `json:"notCreated,omitempty"`
	NotUpdated   map[Id]SetError     `json:"notUpdated,omitempty"`
	NotDestroyed map[Id]SetError     `json:"notDestroyed,omitempty"`
}

// SetError describes why a single object in a /set call was rejected.
type SetError struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Properties  []string `json:"properties,omitempty"`
}

// CreatedId extracts the server-assigned id for a creation id from a /set
// response, or "" when the object was not created.
func (r *SetResponse) CreatedId(creationId string) Id {
	raw, ok := r.Created[creationId]
	if !ok {
		return ""
	}
	var obj struct {
		Id Id `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	return obj.Id
}

// HasFailures reports whether any object in the /set call was rejected.
func (r *SetResponse) HasFailures() bool {
	return len(r.NotCreated) > 0 || len(r.NotUpdated) > 0 || len(r.NotDestroyed) > 0
}

// ParseMailboxGetResponse parses a Mailbox/get response.
func ParseMailboxGetResponse(resp *MethodResponse) (*GetMailboxesResponse, error) {
	var result GetMailboxesResponse
	if err := json.Unmarshal(resp.Arguments, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ParseQueryResponse parses a /query response of any type.
func ParseQueryResponse(resp *MethodResponse) (*QueryResponse, error) {
	var result QueryResponse
	if err := json.Unmarshal(resp.Arguments, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ParseEmailGetResponse parses an Email/get response.
func ParseEmailGetResponse(resp *MethodResponse) (*GetEmailsResponse, error) {
	var result GetEmailsResponse
	if err := json.Unmarshal(resp.Arguments, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ParseSetResponse parses a /set response of any type.
func ParseSetResponse(resp *MethodResponse) (*SetResponse, error) {
	var result SetResponse
	if err := json.Unmarshal(resp.Arguments, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ParseError parses a method-level error response.
func ParseError(resp *MethodResponse) *Error {
	var e Error
	if err := json.Unmarshal(resp.Arguments, &e); err != nil {
		return &Error{Type: "unknown", Description: string(resp.Arguments)}
	}
	return &e
}

// IsErrorResponse checks if a method response is an error.
func IsErrorResponse(name string) bool {
	return name == "error"
}
