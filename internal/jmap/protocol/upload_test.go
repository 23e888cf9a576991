package protocol

import "testing"

func TestParseUploadResponse_Flat(t *testing.T) {
	data := []byte(`{
		"accountId": "A123",
		"blobId": "blob-42",
		"type": "image/png",
		"size": 2048
	}`)

	result, err := ParseUploadResponse(data, "A123")
	if err != nil {
		t.Fatalf("ParseUploadResponse() error: %v", err)
	}

	if result.BlobId != "blob-42" {
		t.Errorf("BlobId = %q, want %q", result.BlobId, "blob-42")
	}
	if result.AccountId != "A123" {
		t.Errorf("AccountId = %q, want %q", result.AccountId, "A123")
	}
	if result.Type != "image/png" {
		t.Errorf("Type = %q, want %q", result.Type, "image/png")
	}
	if result.Size != 2048 {
		t.Errorf("Size = %d, want 2048", result.Size)
	}
}

func TestParseUploadResponse_FlatNoAccountId(t *testing.T) {
	data := []byte(`{"blobId": "blob-1", "type": "text/plain", "size": 10}`)

	result, err := ParseUploadResponse(data, "A9")
	if err != nil {
		t.Fatalf("ParseUploadResponse() error: %v", err)
	}

	if result.AccountId != "A9" {
		t.Errorf("AccountId = %q, want fallback %q", result.AccountId, "A9")
	}
}

func TestParseUploadResponse_AccountKeyed(t *testing.T) {
	data := []byte(`{
		"A123": {"blobId": "blob-7", "type": "application/pdf", "size": 99}
	}`)

	result, err := ParseUploadResponse(data, "A123")
	if err != nil {
		t.Fatalf("ParseUploadResponse() error: %v", err)
	}

	if result.BlobId != "blob-7" {
		t.Errorf("BlobId = %q, want %q", result.BlobId, "blob-7")
	}
	if result.AccountId != "A123" {
		t.Errorf("AccountId = %q, want %q", result.AccountId, "A123")
	}
}

func TestParseUploadResponse_KeyedUnexpectedAccount(t *testing.T) {
	// A single entry under a different account key is still usable.
	data := []byte(`{
		"B999": {"blobId": "blob-8", "type": "text/html", "size": 5}
	}`)

	result, err := ParseUploadResponse(data, "A123")
	if err != nil {
		t.Fatalf("ParseUploadResponse() error: %v", err)
	}

	if result.BlobId != "blob-8" {
		t.Errorf("BlobId = %q, want %q", result.BlobId, "blob-8")
	}
	if result.AccountId != "B999" {
		t.Errorf("AccountId = %q, want %q", result.AccountId, "B999")
	}
}

func TestParseUploadResponse_NoBlobId(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty object", `{}`},
		{"keyed without blobId", `{"A123": {"type": "x", "size": 1}}`},
		{"not json", `garbage`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseUploadResponse([]byte(tt.data), "A123"); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
