// Package protocol holds the JSON shapes exchanged with observers and the
// admin surface, plus the stable error codes they carry.
package protocol

import (
	"encoding/json"
	"fmt"
)

const Version = "1.0"

// Message types.
const (
	TypeWelcome = "WELCOME"
	TypeEffect  = "EFFECT"
	TypeState   = "STATE"
	TypeError   = "ERROR"
)

// Envelope is the part every message shares; observers switch on Type
// before decoding the rest.
type Envelope struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func KnownType(t string) bool {
	switch t {
	case TypeWelcome, TypeEffect, TypeState, TypeError:
		return true
	}
	return false
}

// DecodeEnvelope reads the envelope of b and rejects unknown types and
// foreign protocol versions. An absent version is accepted.
func DecodeEnvelope(b []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return e, err
	}
	if !KnownType(e.Type) {
		return e, fmt.Errorf("unknown message type %q", e.Type)
	}
	if e.ProtocolVersion != "" && e.ProtocolVersion != Version {
		return e, fmt.Errorf("protocol version %q, want %q", e.ProtocolVersion, Version)
	}
	return e, nil
}
