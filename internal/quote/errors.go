package quote

import "errors"

// Sentinel error kinds surfaced by sources. Callers branch with errors.Is;
// wrapping errors carry the provider detail.
var (
	// ErrCredentialRejected covers HTTP 401/403 from the quote endpoint and
	// provider-level rejections during token exchange.
	ErrCredentialRejected = errors.New("credential rejected by provider")

	// ErrMalformedResponse covers an unexpected JSON envelope shape.
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrTransport covers a request that never reached any server.
	ErrTransport = errors.New("network transport failure")

	// ErrRoutesExhausted is returned when the relay failover list ran out of
	// routes without any request reaching a server.
	ErrRoutesExhausted = errors.New("no route to provider succeeded")
)
