package interfaces

import (
	"context"

	"sensor-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IStatsSource fetches the current per-channel statistics.
// -----------------------------------------------------------------------------

type IStatsSource interface {

	// FetchStats performs one request for the given interval name.
	// An empty interval lets the endpoint pick its default.
	FetchStats(ctx context.Context, interval string) (*models.MStatsResponse, error)
}
