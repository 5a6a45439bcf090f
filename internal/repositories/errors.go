package repositories

import "errors"

// ErrNotFound is returned when a row does not exist or is not visible to
// the requesting user. Callers check it with errors.Is.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a unique constraint,
// e.g. registering a username that already exists. Requires the gorm
// connection to be opened with TranslateError.
var ErrDuplicate = errors.New("duplicate record")
