// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrNotFound covers both a genuinely missing row and a frozen
// row queried without the archive opt-in, while ErrMustBeFrozen signals
// that a hard delete was attempted on a record that is still live.
package repository

import "errors"

// ErrNotFound is returned when no matching live record exists. A frozen
// record read through the default (paranoid) path reports this same
// error; callers that need frozen records must use the archive methods.
var ErrNotFound = errors.New("record not found")

// ErrEmailExists is returned when a user insert collides with the unique
// email index. Handlers should translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrNameExists is returned when a create collides with a live record
// holding the same unique name.
var ErrNameExists = errors.New("name already exists")

// ErrNameFrozen is returned when a create collides with a frozen record
// holding the same unique name. The name stays reserved until the frozen
// record is hard-deleted or restored under a new name.
var ErrNameFrozen = errors.New("name belongs to a frozen record")

// ErrMustBeFrozen is returned when a hard delete targets a record that is
// still live. Records must be frozen before they can be removed for good.
var ErrMustBeFrozen = errors.New("record must be frozen first")
