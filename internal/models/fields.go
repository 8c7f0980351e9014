package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	time.RFC1123,
	time.RFC1123Z,
}

// Timestamp decodes the handful of date formats the backend emits.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}

	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// ParseTimestamp returns the zero time for an empty string.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Attributes holds a message's free-form metadata. The platform sends it
// either as an object or as a string containing an object.
type Attributes map[string]any

func (a *Attributes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*a = nil
		return nil
	}

	if trimmed[0] == '"' {
		var encoded string
		if err := json.Unmarshal(trimmed, &encoded); err != nil {
			return err
		}
		encoded = strings.TrimSpace(encoded)
		if encoded == "" {
			*a = Attributes{}
			return nil
		}
		trimmed = []byte(encoded)
	}

	m := map[string]any{}
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return fmt.Errorf("failed to decode attributes: %w", err)
	}
	*a = m
	return nil
}

// Pretty renders the attributes as indented JSON.
func (a Attributes) Pretty() string {
	if len(a) == 0 {
		return "{}"
	}
	out, err := json.MarshalIndent(map[string]any(a), "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(a))
	}
	return string(out)
}
