// Package frame defines the CAN frame shape shared by trace readers.
package frame

// Frame is a single CAN frame: an arbitration ID, a microsecond-resolution
// timestamp relative to the trace's start, and the frame's data payload.
type Frame struct {
	ID     uint32
	TimeUs uint64
	Data   []byte
}
