package core

import (
	"encoding/json"
	"fmt"
)

// CodeSessionExpired is the envelope code the backend uses for an expired login.
const CodeSessionExpired = 407

// Envelope is the uniform reply shape of every backend call.
type Envelope struct {
	Code    int             `json:"code"`
	Success bool            `json:"success"`
	Msg     string          `json:"msg,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// SessionExpired reports whether the backend asked the client to log in again.
func (e Envelope) SessionExpired() bool {
	return e.Code == CodeSessionExpired
}

// Decode unmarshals the envelope payload into v.
func (e Envelope) Decode(v any) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode envelope data: %w", err)
	}
	return nil
}
