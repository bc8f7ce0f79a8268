package utils

// -----------------------------------------------------------------------------

// Column layout of a bucket row inside RingBuffer.
const (
	RB_IDX_START_TIME = iota
	RB_IDX_MINIMUM
	RB_IDX_MAXIMUM
	RB_IDX_FIRST
	RB_IDX_LAST
	RB_IDX_AVERAGE
	RB_IDX_COUNT
	RB_NUM_FEATURES
)

// -----------------------------------------------------------------------------

// Bucket sizes in seconds.
const (
	MinuteSeconds int64 = 60
	DaySeconds    int64 = 24 * 60 * 60
)

// AlignBucket returns the start and end of the bucket containing ts.
func AlignBucket(ts int64, bucketSeconds int64) (int64, int64) {
	start := ts - (ts % bucketSeconds)
	return start, start + bucketSeconds
}
