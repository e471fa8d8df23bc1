package agent

import "errors"

// Sentinel errors for orchestrator operations, checked with errors.Is().
var (
	// ErrMissingSession indicates a tool ran without session identity on its
	// context. This is a programming error: Invoke always sets the identity
	// before generation.
	ErrMissingSession = errors.New("session identity missing from context")

	// ErrGenerationFailed indicates the hosted model call failed.
	ErrGenerationFailed = errors.New("generation failed")
)
