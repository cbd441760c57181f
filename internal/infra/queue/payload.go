package queue

import (
	"encoding/base64"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Payload represents the message published by the event receiver and
// consumed by the dispatch loop. It travels base64-encoded, matching the
// transport encoding of the queue.
type Payload struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// EncodePayload serializes a payload to base64-encoded JSON.
func EncodePayload(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode payload")
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodePayload parses a base64-encoded JSON payload.
func DecodePayload(data string) (Payload, error) {
	var p Payload

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return p, errors.Wrap(err, "failed to decode payload")
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, errors.Wrap(err, "failed to parse payload")
	}

	return p, nil
}
