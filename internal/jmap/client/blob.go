package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jmapclient/internal/common/retry"
	"jmapclient/internal/jmap/protocol"
)

const octetStream = "application/octet-stream"

// Blob transfers retry on transient failures; method calls do not.
const (
	transferRetries   = 2
	transferBaseDelay = time.Second
)

// UploadBlob posts raw bytes to the session's upload URL and returns the
// normalized upload result. An empty mimeType falls back to
// application/octet-stream.
func (c *Client) UploadBlob(ctx context.Context, data []byte, mimeType string) (*protocol.UploadResult, error) {
	snap, err := c.current()
	if err != nil {
		return nil, err
	}
	if snap.session.UploadURL == "" {
		return nil, &UploadError{Err: fmt.Errorf("session has no uploadUrl")}
	}
	if mimeType == "" {
		mimeType = octetStream
	}

	uploadURL := strings.ReplaceAll(snap.session.UploadURL, "{accountId}", url.PathEscape(string(snap.accountId)))

	var result *protocol.UploadResult
	attempt := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return &UploadError{Err: err}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
		if err != nil {
			return &UploadError{Err: err}
		}
		req.Header.Set("Content-Type", mimeType)
		c.addAuth(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &UploadError{Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized {
			return &AuthenticationError{Status: resp.StatusCode}
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
			if retry.IsRetryableStatus(resp.StatusCode) {
				// The "temporary failure" prefix marks the status as
				// transient for the backoff classifier.
				return &UploadError{Err: fmt.Errorf("temporary failure: status %d: %s", resp.StatusCode, string(body))}
			}
			return &UploadError{Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body))}
		}

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return &UploadError{Err: err}
		}

		result, err = protocol.ParseUploadResponse(respBody, snap.accountId)
		if err != nil {
			return &UploadError{Err: err}
		}
		return nil
	}

	if err := retry.RetryWithBackoff(ctx, transferRetries, transferBaseDelay, attempt); err != nil {
		return nil, err
	}
	return result, nil
}

// BlobDownloadURL expands the session's download URL template for a blob.
// Pure string substitution, no network: the result serves both browser-level
// saves and programmatic fetches. Name defaults to "download" and mimeType
// to application/octet-stream.
func (c *Client) BlobDownloadURL(blobId, name, mimeType string) (string, error) {
	snap, err := c.current()
	if err != nil {
		return "", err
	}
	if name == "" {
		name = "download"
	}
	if mimeType == "" {
		mimeType = octetStream
	}

	u := snap.session.DownloadURL
	u = strings.ReplaceAll(u, "{accountId}", url.PathEscape(string(snap.accountId)))
	u = strings.ReplaceAll(u, "{blobId}", url.PathEscape(blobId))
	u = strings.ReplaceAll(u, "{name}", url.PathEscape(name))
	u = strings.ReplaceAll(u, "{type}", url.QueryEscape(mimeType))
	return u, nil
}

// DownloadBlob fetches a blob's bytes via the download URL template.
func (c *Client) DownloadBlob(ctx context.Context, blobId, name, mimeType string) ([]byte, error) {
	downloadURL, err := c.BlobDownloadURL(blobId, name, mimeType)
	if err != nil {
		return nil, err
	}

	var data []byte
	attempt := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return &ConnectionError{Err: err}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
		if err != nil {
			return &ProtocolError{Reason: "build download request", Err: err}
		}
		c.addAuth(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &ProtocolError{Reason: "download transport", Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized {
			return &AuthenticationError{Status: resp.StatusCode}
		}
		if resp.StatusCode == http.StatusNotFound {
			return &NotFoundError{Kind: "blob", Id: blobId}
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
			if retry.IsRetryableStatus(resp.StatusCode) {
				return &ProtocolError{Reason: fmt.Sprintf("temporary failure: download status %d: %s", resp.StatusCode, string(body))}
			}
			return &ProtocolError{Reason: fmt.Sprintf("download status %d: %s", resp.StatusCode, string(body))}
		}

		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return &ProtocolError{Reason: "read download body", Err: err}
		}
		return nil
	}

	if err := retry.RetryWithBackoff(ctx, transferRetries, transferBaseDelay, attempt); err != nil {
		return nil, err
	}
	return data, nil
}

// GetRawMessage fetches an email's raw RFC 5322 source. Two steps: a
// properties-scoped Email/get for the blob id, then a blob download with the
// media type fixed to message/rfc822.
func (c *Client) GetRawMessage(ctx context.Context, emailId string) ([]byte, error) {
	snap, err := c.current()
	if err != nil {
		return nil, err
	}

	calls := []protocol.MethodCall{
		{
			Name: protocol.MethodEmailGet,
			Arguments: protocol.GetRequest{
				AccountId:  snap.accountId,
				Ids:        []protocol.Id{protocol.Id(emailId)},
				Properties: []string{"blobId"},
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
	if len(result.List) == 0 || result.List[0].BlobId == "" {
		return nil, &NotFoundError{Kind: "email", Id: emailId}
	}

	return c.DownloadBlob(ctx, string(result.List[0].BlobId), emailId+".eml", "message/rfc822")
}
