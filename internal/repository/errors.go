package repository

import "errors"

// ErrNotFound is returned when no feedback record matches the given ID.
// Malformed IDs that cannot exist in the backing store also produce it.
var ErrNotFound = errors.New("feedback not found")
