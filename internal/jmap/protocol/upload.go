package protocol

import (
	"encoding/json"
	"fmt"
)

// UploadResult is the normalized outcome of a blob upload.
type UploadResult struct {
	AccountId Id     `json:"accountId,omitempty"`
	BlobId    Id     `json:"blobId"`
	Type      string `json:"type"`
	Size      int64  `json:"size"`
}

// ParseUploadResponse decodes a blob upload response. Servers answer with one
// of two shapes: a flat {blobId, type, size} object, or the same object keyed
// by account id. Both are normalized to UploadResult via a fallible parse
// chain rather than untyped map access.
func ParseUploadResponse(data []byte, accountId Id) (*UploadResult, error) {
	// Flat shape first: the common case.
	var flat UploadResult
	if err := json.Unmarshal(data, &flat); err == nil && flat.BlobId != "" {
		if flat.AccountId == "" {
			flat.AccountId = accountId
		}
		return &flat, nil
	}

	// Account-keyed shape.
	var keyed map[Id]UploadResult
	if err := json.Unmarshal(data, &keyed); err == nil {
		if result, ok := keyed[accountId]; ok && result.BlobId != "" {
			result.AccountId = accountId
			return &result, nil
		}
		// Tolerate a single entry under an unexpected account key.
		if len(keyed) == 1 {
			for id, result := range keyed {
				if result.BlobId != "" {
					result.AccountId = id
					return &result, nil
				}
			}
		}
	}

	return nil, fmt.Errorf("upload response has no recognizable blobId")
}
