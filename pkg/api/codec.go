package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedMessage is returned for frames that are not a valid envelope.
var ErrMalformedMessage = errors.New("malformed message")

// Envelope общая обертка всех сообщений протокола
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Encode wraps the payload in an envelope of the given type.
func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("%w: empty message type", ErrMalformedMessage)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: nil payload for %q", ErrMalformedMessage, t)
	}

	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %q payload: %w", t, err)
	}

	return json.Marshal(Envelope{Type: t, Payload: pb})
}

// DecodeEnvelope parses a frame without touching the payload.
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("%w: empty frame", ErrMalformedMessage)
	}

	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrMalformedMessage)
	}

	return env, nil
}

// DecodePayload unmarshals the envelope payload into T.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.Payload) == 0 {
		return out, fmt.Errorf("%w: empty payload for %q", ErrMalformedMessage, env.Type)
	}
	if err := json.Unmarshal(env.Payload, &out); err != nil {
		return out, fmt.Errorf("%w: %q payload: %v", ErrMalformedMessage, env.Type, err)
	}
	return out, nil
}
