package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"jmapclient/internal/common/logger"
	"jmapclient/internal/jmap/protocol"
)

// Do sends an ordered method-call batch in a single HTTP round trip and
// returns the ordered method responses. It is reentrant: a heartbeat batch
// and a caller batch may be in flight at the same time, each using the
// session snapshot captured when it started. Call ids must be unique within
// the batch; back-references rely on them.
func (c *Client) Do(ctx context.Context, using []string, calls []protocol.MethodCall) ([]protocol.MethodResponse, error) {
	snap, err := c.current()
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &ConnectionError{Err: err}
	}

	request := protocol.Request{Using: using, MethodCalls: calls}
	body, err := json.Marshal(request)
	if err != nil {
		return nil, &ProtocolError{Reason: "marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, snap.session.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, &ProtocolError{Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	c.addAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ProtocolError{Reason: "transport", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &AuthenticationError{Status: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return nil, &ProtocolError{
			Reason: fmt.Sprintf("status %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProtocolError{Reason: "read response", Err: err}
	}

	var response protocol.Response
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, &ProtocolError{Reason: "malformed response body", Err: err}
	}

	logger.LogDebug(c.logger, "batch completed",
		"calls", len(calls), "responses", len(response.MethodResponses))
	return response.MethodResponses, nil
}

// resultFor locates the response slot for a call id, expecting the given
// method name. An "error" pseudo-response becomes a MethodError; a missing
// slot or unexpected name becomes a ProtocolError.
func resultFor(responses []protocol.MethodResponse, callId, wantName string) (*protocol.MethodResponse, error) {
	for i := range responses {
		r := &responses[i]
		if r.CallId != callId {
			continue
		}
		if protocol.IsErrorResponse(r.Name) {
			e := protocol.ParseError(r)
			return nil, &MethodError{Method: wantName, Type: e.Type, Description: e.Description}
		}
		if r.Name != wantName {
			return nil, &ProtocolError{
				Reason: fmt.Sprintf("response for call %s has method %q, want %q", callId, r.Name, wantName),
			}
		}
		return r, nil
	}
	return nil, &ProtocolError{Reason: fmt.Sprintf("no response for call %s (%s)", callId, wantName)}
}

// setResultFor parses the /set response for a call and surfaces per-object
// rejections as a PartialFailure.
func setResultFor(responses []protocol.MethodResponse, callId, wantName string) (*protocol.SetResponse, error) {
	r, err := resultFor(responses, callId, wantName)
	if err != nil {
		return nil, err
	}
	setResp, err := protocol.ParseSetResponse(r)
	if err != nil {
		return nil, &ProtocolError{Reason: "malformed /set response", Err: err}
	}
	if err := setFailures(wantName, setResp); err != nil {
		return setResp, err
	}
	return setResp, nil
}
