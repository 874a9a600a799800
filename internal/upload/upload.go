package upload

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
)

// Uploader stores an image payload and returns a durable public URL.
// The server uploads on the user's behalf; payloads arrive as base64
// data URLs from the client.
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType, folder string) (string, error)
}

var ErrEmptyPayload = errors.New("empty upload payload")

// DecodePayload accepts either a data URL ("data:image/png;base64,...")
// or a bare base64 string and returns the raw bytes plus content type.
func DecodePayload(payload string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, "", ErrEmptyPayload
	}
	contentType := "application/octet-stream"
	if rest, ok := strings.CutPrefix(payload, "data:"); ok {
		meta, b64, found := strings.Cut(rest, ",")
		if !found {
			return nil, "", errors.New("malformed data url")
		}
		if ct, _, _ := strings.Cut(meta, ";"); ct != "" {
			contentType = ct
		}
		payload = b64
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", ErrEmptyPayload
	}
	return data, contentType, nil
}
