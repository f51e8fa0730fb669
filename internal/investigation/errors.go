package investigation

import "github.com/linnemanlabs/go-core/xerrors"

// Error kinds surfaced by the investigation core. Callers classify failures
// with errors.Is; operations wrap these with entity id and operation context.
var (
	// ErrNotFound means a referenced alert, customer, or transaction id does
	// not exist in the store. Recoverable, surfaced to the caller.
	ErrNotFound = xerrors.New("not found")

	// ErrInvalidInput means the request was rejected before any mutation,
	// e.g. a whitespace-only note or an unrecognized enum value.
	ErrInvalidInput = xerrors.New("invalid input")

	// ErrInvalidTransition means the requested status change is not allowed
	// by the lifecycle state machine. State is unchanged.
	ErrInvalidTransition = xerrors.New("invalid status transition")

	// ErrDataIntegrity means a stored record breaks a referential invariant,
	// e.g. an alert naming a transaction that does not resolve. Reported,
	// never silently patched.
	ErrDataIntegrity = xerrors.New("data integrity violation")

	// ErrCollaborator means an external AI service call failed. Always
	// recovered locally with a fallback value, never a core failure.
	ErrCollaborator = xerrors.New("collaborator failure")
)
