package smq

import "errors"

// Sentinel errors for client operations
var (
	// ErrInvalidRequest indicates a request missing its URL or carrying an
	// unsupported method reached the transport.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrBadStatus indicates the broker answered outside the 2xx range.
	// Brokers signal an empty mailbox this way too.
	ErrBadStatus = errors.New("bad status")

	// ErrInvalidConfig indicates New was called with an unusable identity
	// or address.
	ErrInvalidConfig = errors.New("invalid client config")
)
