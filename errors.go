package uzkv

import (
	"errors"

	"github.com/eon-protocol/uzkv/registry"
)

var (
	// ErrMalformedInput wraps any parse failure of proof, key or public
	// input bytes. Malformed bytes are distinct from a well-formed proof
	// that does not verify; the latter is a false result, not an error.
	ErrMalformedInput = errors.New("malformed input")

	// ErrVKNotFound reports a verification against an unregistered key hash.
	ErrVKNotFound = registry.ErrNotFound

	ErrUnknownScheme = registry.ErrUnknownScheme

	// ErrLengthMismatch reports batch slices of unequal length.
	ErrLengthMismatch = errors.New("batch slices have mismatched lengths")

	ErrBatchTooLarge = errors.New("batch exceeds the configured size limit")
	ErrProofTooLarge = errors.New("proof exceeds the scheme size limit")
	ErrTooManyInputs = errors.New("too many public inputs")
)
