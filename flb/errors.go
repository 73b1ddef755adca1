package flb

import "errors"

var (
	// ErrEmptyCandidates is returned when select is invoked with no candidates.
	ErrEmptyCandidates = errors.New("flb: no candidate endpoints")

	// ErrDigestUnavailable is returned when the MD5 digest required by
	// ConsistentHashPolicy cannot be computed. The standard library's
	// crypto/md5 never fails on the inputs this package feeds it, so this
	// error kind exists for interface parity only; no code path in this
	// package returns it.
	ErrDigestUnavailable = errors.New("flb: md5 digest unavailable")

	// ErrMisconfiguredHashNodes is returned when a method's hash.nodes
	// attribute is not a positive multiple of 4.
	ErrMisconfiguredHashNodes = errors.New("flb: hash.nodes must be a positive multiple of 4")
)
