// Package dbc parses and writes Vector DBC CAN-database files: message and
// signal definitions, including both multiplex dialects.
package dbc

// ByteOrder is a signal's bit layout within its message (the DBC "@0"/"@1"
// token).
type ByteOrder int

const (
	BigEndian ByteOrder = iota
	LittleEndian
)

// ValueType is a signal's raw encoding (the DBC "+"/"-" token).
type ValueType int

const (
	Unsigned ValueType = iota
	Signed
)

// emptyECU is the DBC sentinel node name meaning "no transmitter" /
// "no receiver".
const emptyECU = "Vector__XXX"

// Signal is one CAN signal within a Message, possibly the root of a
// multiplex tree: Multiplexed holds this signal's children grouped by
// selector value, populated only when this signal is itself a multiplexer.
type Signal struct {
	Name       string
	StartBit   uint32
	Size       uint32
	ByteOrder  ByteOrder
	ValueType  ValueType
	Factor     float64
	Offset     float64
	Minimum    float64
	Maximum    float64
	Unit       string
	Receivers  []string
	ValueDescriptions map[int64]string

	IsMultiplexer bool
	// Multiplexed maps a multiplexer selector value to the signals active
	// for it, each ordered by ascending StartBit.
	Multiplexed map[uint64][]*Signal
}

// Message is one CAN frame definition: its id, name, declared byte length,
// transmitting node (empty string if none), and top-level signals (signals
// that are themselves multiplex children are reached through their parent's
// Multiplexed map, not listed here).
type Message struct {
	ID          uint32
	Name        string
	Length      uint32
	Transmitter string // "" if the file names emptyECU ("Vector__XXX")
	Signals     []*Signal
}

// Database is an in-memory DBC message tree.
type Database struct {
	Messages []*Message

	byID              map[uint32]*Message
	byNameHash        map[uint64]*Message
	nameHashCollision bool
}
