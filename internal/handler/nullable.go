package handler

import "encoding/json"

// Nullable records whether a JSON field was present and whether it was null,
// which a plain pointer cannot tell apart.  PATCH bodies use it for the
// fields that can be cleared (assignee, linked lead).
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// Null reports an explicit JSON null.
func (n Nullable[T]) Null() bool { return n.Set && n.Value == nil }
