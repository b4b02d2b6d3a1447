package crashwatch

import (
	"time"

	"github.com/jpalmerr/crashwatch/internal/store"
)

// TimestampLayout is the format of [Observation.Timestamp] in both output
// files.
const TimestampLayout = store.TimestampLayout

// Observation is one recorded change of the watched value.
//
// Observation is passed by value to callbacks registered with
// [WithObservationCallback] after it has been written to both output files.
type Observation struct {
	// ID is the capture time in Unix milliseconds, bumped when needed so
	// that IDs are strictly increasing.
	ID int64

	// Value is the extracted element text, e.g. "2.31x".
	Value string

	// Timestamp is the local capture time formatted with [TimestampLayout].
	Timestamp string

	// CapturedAt is the capture time.
	CapturedAt time.Time
}

func fromStoreObservation(obs store.Observation, at time.Time) Observation {
	return Observation{
		ID:         obs.ID,
		Value:      obs.Value,
		Timestamp:  obs.Timestamp,
		CapturedAt: at,
	}
}
