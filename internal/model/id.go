package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is an entity identifier as it arrives over the wire.
//
// Older clients send job IDs as strings ("12") and newer ones as numbers (12).
// ID accepts both and converts once, at the boundary, so storage only ever
// sees int64. Anything that is not a positive integer is rejected.
type ID int64

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}

	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("model: decoding id: %w", err)
		}
	} else {
		raw = string(data)
	}

	n, err := ParseID(raw)
	if err != nil {
		return err
	}
	*id = ID(n)
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(id), 10)), nil
}

// Int64 returns the identifier as stored.
func (id ID) Int64() int64 {
	return int64(id)
}

// ParseID parses a positive decimal identifier, e.g. from a URL segment.
func ParseID(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("model: %q is not a valid id", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("model: id must be positive, got %d", n)
	}
	return n, nil
}
