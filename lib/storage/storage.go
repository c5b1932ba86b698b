package storage

import "rangepool/lib/events"

// Storage defines a sink for pool event records.
type Storage interface {
	PutEventBatch(recs []events.Record) error
}
