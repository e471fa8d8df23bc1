package session

import "errors"

// Sentinel errors for session operations, checked with errors.Is().
var (
	// ErrNotFound indicates the requested session does not exist.
	// Get never creates; callers that want create-if-absent use
	// [Manager.GetOrCreate] or [Store.Create].
	ErrNotFound = errors.New("session not found")
)
