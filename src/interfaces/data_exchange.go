package interfaces

import "sensor-dashboard/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger defines the interface for pushing chart updates to clients.
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes a redraw notification to connected listeners and updates state.
	Broadcast(update *models.MDashboardUpdate)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
