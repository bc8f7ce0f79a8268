package interfaces

import "sensor-dashboard/src/models"

// -----------------------------------------------------------------------------
// IDashboardController is the control surface of the polling loop used by
// the HTTP, websocket and gRPC front ends.
// -----------------------------------------------------------------------------

type IDashboardController interface {
	ListIntervals() []models.MInterval
	Selected() models.MInterval

	// Select switches the active interval, rejecting unknown names.
	Select(name string) error

	// Refresh triggers one out-of-schedule fetch.
	Refresh()

	Status() models.MPollStatus
	Frames() map[string]models.MChartFrame
}
