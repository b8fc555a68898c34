package domain

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Hash is a 256-bit digest rendered as 0x-prefixed lower-case hex.
type Hash [32]byte

// Bytes32 is a fixed-width identifier field, rendered like Hash.
type Bytes32 [32]byte

func (h Hash) String() string    { return "0x" + hex.EncodeToString(h[:]) }
func (b Bytes32) String() string { return "0x" + hex.EncodeToString(b[:]) }

// IsZero reports whether no digest has been set.
func (h Hash) IsZero() bool { return h == Hash{} }

func (h Hash) MarshalJSON() ([]byte, error)    { return json.Marshal(h.String()) }
func (b Bytes32) MarshalJSON() ([]byte, error) { return json.Marshal(b.String()) }

func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseHash(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHash decodes a 0x-prefixed 64 character hex string. Upper-case digits are accepted.
func ParseHash(s string) (Hash, error) {
	var h Hash
	raw := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(raw) != 64 {
		return h, fmt.Errorf("hash %q: want 64 hex chars, got %d", s, len(raw))
	}
	if _, err := hex.Decode(h[:], []byte(raw)); err != nil {
		return h, fmt.Errorf("hash %q: %w", s, err)
	}
	return h, nil
}
