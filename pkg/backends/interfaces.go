// Package backends implements the writer variants behind a ddbg destination:
// append-mode files, connected TCP streams, and NATS subjects. A backend owns
// exactly one OS-level resource and knows how to append a line to it; it does
// not reconnect, retry, or buffer across calls. Lifecycle decisions (sharing,
// eviction after a failed write) belong to the caller.
package backends

// Backend is the single capability every writer variant provides: append the
// given bytes to the destination and make them durable before returning.
//
// Append never reopens the underlying resource. Once it returns an error the
// backend should be closed and replaced.
type Backend interface {
	// Append writes p to the destination and flushes.
	Append(p []byte) error

	// Close releases the underlying resource.
	Close() error
}
