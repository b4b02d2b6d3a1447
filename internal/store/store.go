package store

import "time"

// TimestampLayout is the format of [Observation.Timestamp].
const TimestampLayout = "2006-01-02 15:04:05"

// Observation is one recorded change of the monitored value.
//
// The JSON keys match the history files written by earlier versions of the
// monitor, so existing crash_records.json files load unchanged.
type Observation struct {
	// ID is derived from the capture time in Unix milliseconds and is
	// strictly increasing within a history.
	ID int64 `json:"id"`

	// Value is the extracted element text.
	Value string `json:"crash_value"`

	// Timestamp is the local capture time formatted with [TimestampLayout].
	Timestamp string `json:"timestamp"`
}

// Store defines the interface for recording and subscribing to observations.
//
// Store implementations must be safe for concurrent access. The pub/sub
// mechanism allows real-time updates to be pushed to connected clients
// (e.g., via Server-Sent Events).
type Store interface {
	// Record builds an Observation for value captured at the given time,
	// prepends it to the history and notifies all subscribers.
	Record(value string, at time.Time) (Observation, error)

	// GetAll returns the history, newest first.
	// The returned slice is a snapshot; modifications do not affect the store.
	GetAll() []Observation

	// Latest returns the newest observation, if any.
	Latest() (Observation, bool)

	// Len returns the number of stored observations.
	Len() int

	// Subscribe returns a channel that receives new observations.
	// The returned channel has a buffer; slow consumers may miss updates.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Observation

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Observation)
}

// nextID returns the identifier for an observation captured at the given
// time, given the newest identifier already stored (0 if none).
func nextID(at time.Time, newest int64) int64 {
	id := at.UnixMilli()
	if id <= newest {
		id = newest + 1
	}
	return id
}
