package dto

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes a JSON field that was absent from one that was
// explicitly set to null. Patch payloads need all three states: leave the
// field alone, clear it, or set a new value.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// UnmarshalJSON records that the field appeared in the payload. Absent
// fields never reach this method, so Set stays false for them.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Present reports whether the field carried a non-null value.
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}
