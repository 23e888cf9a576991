package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"jmapclient/internal/jmap/protocol"
)

func newBlobClient(srv *httptest.Server) *Client {
	c := New(Config{HTTPClient: srv.Client(), AccessToken: "tok", AuthMethod: "bearer"})
	c.snap = &snapshot{
		accountId: "A1",
		session: &protocol.Session{
			APIURL:      srv.URL + "/api",
			UploadURL:   srv.URL + "/upload/{accountId}",
			DownloadURL: srv.URL + "/download/{accountId}/{blobId}/{name}?type={type}",
			Capabilities: map[string]json.RawMessage{
				protocol.CoreCapability: []byte("{}"),
				protocol.MailCapability: []byte("{}"),
			},
			Accounts: map[protocol.Id]protocol.Account{"A1": {}},
		},
	}
	return c
}

func TestUploadBlob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload/A1" {
			t.Errorf("upload path = %s, want /upload/A1", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "text/plain" {
			t.Errorf("Content-Type = %s, want text/plain", ct)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
			t.Errorf("Authorization = %s", auth)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "hello" {
			t.Errorf("body = %q", body)
		}
		_, _ = w.Write([]byte(`{"blobId": "b1", "type": "text/plain", "size": 5}`))
	}))
	defer srv.Close()

	c := newBlobClient(srv)
	result, err := c.UploadBlob(context.Background(), []byte("hello"), "text/plain")
	if err != nil {
		t.Fatalf("UploadBlob() error: %v", err)
	}
	if result.BlobId != "b1" {
		t.Errorf("BlobId = %s, want b1", result.BlobId)
	}
	if result.AccountId != "A1" {
		t.Errorf("AccountId = %s, want A1 filled in from the session", result.AccountId)
	}
}

func TestUploadBlob_AccountKeyedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"A1": {"blobId": "b2", "type": "image/png", "size": 9}}`))
	}))
	defer srv.Close()

	c := newBlobClient(srv)
	result, err := c.UploadBlob(context.Background(), []byte("something"), "image/png")
	if err != nil {
		t.Fatalf("UploadBlob() error: %v", err)
	}
	if result.BlobId != "b2" {
		t.Errorf("BlobId = %s, want b2", result.BlobId)
	}
}

func TestUploadBlob_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	c := newBlobClient(srv)
	_, err := c.UploadBlob(context.Background(), []byte("x"), "")
	var upErr *UploadError
	if !errors.As(err, &upErr) {
		t.Fatalf("UploadBlob() error = %v, want UploadError", err)
	}
}

func TestBlobDownloadURL(t *testing.T) {
	c := New(Config{})
	c.snap = &snapshot{
		accountId: "A1",
		session: &protocol.Session{
			DownloadURL: "https://mail.example.com/download/{accountId}/{blobId}/{name}?type={type}",
		},
	}

	tests := []struct {
		name     string
		blobId   string
		fileName string
		mimeType string
		want     string
	}{
		{
			name:     "all fields",
			blobId:   "b1",
			fileName: "report.pdf",
			mimeType: "application/pdf",
			want:     "https://mail.example.com/download/A1/b1/report.pdf?type=application%2Fpdf",
		},
		{
			name:   "defaults",
			blobId: "b1",
			want:   "https://mail.example.com/download/A1/b1/download?type=application%2Foctet-stream",
		},
		{
			name:     "name needs escaping",
			blobId:   "b1",
			fileName: "my file.txt",
			mimeType: "text/plain",
			want:     "https://mail.example.com/download/A1/b1/my%20file.txt?type=text%2Fplain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.BlobDownloadURL(tt.blobId, tt.fileName, tt.mimeType)
			if err != nil {
				t.Fatalf("error: %v", err)
			}
			if got != tt.want {
				t.Errorf("url = %q\nwant  %q", got, tt.want)
			}
		})
	}
}

func TestDownloadBlob_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newBlobClient(srv)
	_, err := c.DownloadBlob(context.Background(), "missing", "", "")
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("DownloadBlob() error = %v, want NotFoundError", err)
	}
	if nfErr.Kind != "blob" {
		t.Errorf("Kind = %q, want blob", nfErr.Kind)
	}
}

func TestGetRawMessage(t *testing.T) {
	raw := []byte("From: me@example.com\r\nSubject: test\r\n\r\nbody\r\n")

	mux := http.NewServeMux()
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		var request protocol.Request
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &request); err != nil {
			t.Errorf("malformed api request: %v", err)
		}
		_, _ = w.Write([]byte(`{"methodResponses": [
			["Email/get", {"state": "s1", "list": [{"id": "e1", "blobId": "b1"}]}, "0"]
		]}`))
	})
	mux.HandleFunc("/download/A1/b1/e1.eml", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("type"); got != "message/rfc822" {
			t.Errorf("type = %q, want message/rfc822", got)
		}
		_, _ = w.Write(raw)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newBlobClient(srv)
	got, err := c.GetRawMessage(context.Background(), "e1")
	if err != nil {
		t.Fatalf("GetRawMessage() error: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("raw message = %q", got)
	}
}

func TestGetRawMessage_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"methodResponses": [
			["Email/get", {"state": "s1", "list": [], "notFound": ["gone"]}, "0"]
		]}`))
	}))
	defer srv.Close()

	c := newBlobClient(srv)
	_, err := c.GetRawMessage(context.Background(), "gone")
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("GetRawMessage() error = %v, want NotFoundError", err)
	}
}
