package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	RunStarted Type = iota + 1
	BlockHashed
	BlockFailed
	BlockMismatch
	RunComplete
)

var typeNames = [...]string{
	RunStarted:    "RunStarted",
	BlockHashed:   "BlockHashed",
	BlockFailed:   "BlockFailed",
	BlockMismatch: "BlockMismatch",
	RunComplete:   "RunComplete",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from the engine. Events are sent
// from the collection loop in block order.
type Event struct {
	Timestamp time.Time
	Error     error
	Path      string // input path
	Type      Type
	Block     int64 // block index (BlockHashed, BlockFailed, BlockMismatch)
	Size      int64 // block length in bytes
	Total     int64 // total blocks (RunStarted, RunComplete)
	TotalSize int64 // input size in bytes (RunStarted)
}

// Emit stamps e and sends it on ch without blocking. Events are purely
// observational, so a full channel drops the event.
func Emit(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}
