package platform

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Payload is a decoded JSON response object. The client does not interpret
// it beyond the optional "message" field of failures.
type Payload map[string]any

func decodePayload(data []byte) (Payload, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Payload{}, nil
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	if p == nil {
		// "null"
		return nil, fmt.Errorf("response is not a JSON object: null")
	}
	return p, nil
}

// Success reports the "success" flag of the response envelope
func (p Payload) Success() bool {
	return p.Bool("success")
}

// Data returns the "data" object of the response envelope, or nil
func (p Payload) Data() Payload {
	return p.Map("data")
}

// String returns the string at key, or ""
func (p Payload) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Bool returns the boolean at key, or false
func (p Payload) Bool(key string) bool {
	b, _ := p[key].(bool)
	return b
}

// Map returns the object at key, or nil
func (p Payload) Map(key string) Payload {
	if m, ok := p[key].(map[string]any); ok {
		return Payload(m)
	}
	return nil
}

// Has reports whether key is present with a non-null value
func (p Payload) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// Decode converts the payload into v through a JSON round trip
func (p Payload) Decode(v any) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	return nil
}
