package domain

import "errors"

var (
	// ErrInvalidRequest marks input errors that are surfaced to the caller
	// as a 400 and never retried.
	ErrInvalidRequest = errors.New("invalid request")

	// Upstream shape errors. The provider responded, but the payload did not
	// match the documented envelope. Kept distinct so diagnostics name the
	// exact deviation instead of a generic "bad response".
	ErrMissingEnvelope = errors.New("upstream response missing data envelope")
	ErrAssetNotInData  = errors.New("upstream response missing requested asset")
	ErrEmptyQuotes     = errors.New("upstream response contained no quotes")

	// ErrHardFailure means every tier was exhausted: upstream failed, no
	// cached series exists and the persistent store had nothing either.
	ErrHardFailure = errors.New("no data available from any tier")
)
