package email

import "errors"

// The three error kinds of the codec. Every error returned by this
// package and its subpackages wraps exactly one of them, so callers
// can classify failures with errors.Is.
var (
	// ErrSyntax reports text that does not match the wire grammar:
	// a malformed address, date, header line or boundary.
	ErrSyntax = errors.New("malformed text")

	// ErrInvalid reports a structurally invalid value: a missing
	// essential header, an empty required field, or an illegal
	// content-type/charset pairing.
	ErrInvalid = errors.New("invalid value")

	// ErrNilInput reports a required argument that was absent.
	ErrNilInput = errors.New("missing input")
)
