package interfaces

import (
	"context"

	"trading-console/internal/types"
)

// EventHandler receives decoded events from a live stream worker. Calls are
// made from the worker's goroutine, strictly ordered, and never after the
// done channel returned by Open has been closed.
type EventHandler func(types.StreamEvent)

// Streamer opens one live subscription against the venue's push transport.
// The returned channel is closed once the worker has fully terminated;
// cancelling ctx is the only way to request termination.
type Streamer interface {
	Open(ctx context.Context, sub types.StreamSub, handler EventHandler) (<-chan struct{}, error)
}
