package interfaces

import "sensor-dashboard/src/models"

// -----------------------------------------------------------------------------
// IBucketStore defines the contract for the in-memory bucket storage.
// -----------------------------------------------------------------------------

type IBucketStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the storage (schema, buffers).
	Initialize() error

	// -----------------------------------------------------------------------------

	// Append stores one closed minute bucket.
	Append(record models.MBucketRecord) error

	// -----------------------------------------------------------------------------

	// Query returns up to limit of the most recent buckets for a channel,
	// resampled to bucketSeconds and ordered oldest first.
	Query(channel string, bucketSeconds int64, limit int) ([]models.MBucketRecord, error)

	// -----------------------------------------------------------------------------

	// Close releases the storage
	Close() error
}
