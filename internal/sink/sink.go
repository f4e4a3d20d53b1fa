package sink

import (
	"time"

	"tomoRelay/internal/entity"
)

// Broadcaster publishes decoded images under a fixed channel name.
// Start and Stop are idempotent; the relay calls them once around the
// stream loop's lifetime.
type Broadcaster interface {
	Start() error
	Stop() error
	Broadcast(frameID uint32, pixels []uint16, cols, rows int32, dtype entity.DType, ts time.Time) error
}

// MetaWriter accepts scalar key/value writes for the ancillary metadata
// published alongside image data.
type MetaWriter interface {
	Put(key string, value any) error
}
