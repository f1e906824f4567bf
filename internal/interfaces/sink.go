package interfaces

import "trading-console/internal/types"

// Sink renders asynchronous output. Implementations must serialize
// concurrent writers: stream workers and the command loop both write to it.
type Sink interface {
	// StreamEvent renders one live push event.
	StreamEvent(ev types.StreamEvent)

	// Fault reports a background stream failure.
	Fault(err error)
}
