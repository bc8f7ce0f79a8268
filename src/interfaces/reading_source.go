package interfaces

import (
	"context"
	"sync"

	"sensor-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IReadingSource delivers raw sensor messages from a broker.
// -----------------------------------------------------------------------------

type IReadingSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// Start begins consuming messages.
	// ctx: controls the lifecycle (cancellation stops the source)
	// outputChan: channel to push decoded messages to
	// wg: WaitGroup to signal when the source has fully stopped
	Start(ctx context.Context, outputChan chan<- models.MSensorMessage, wg *sync.WaitGroup) error

	// -----------------------------------------------------------------------------

	// Stop disconnects from the broker. Cancelling the Start context is enough
	// in most cases; Stop exists for explicit shutdown ordering.
	Stop() error
}
