package conversion_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mf4kit/mf4kit/mdf4/block"
	"github.com/mf4kit/mf4kit/mdf4/conversion"
)

// memSource is a read-only in-memory block.Source backed by a byte slice,
// used to exercise the conversion compiler without a file on disk.
type memSource struct{ data []byte }

func (m *memSource) ReadAt(p []byte, off int64) (int, error) {
	n := copy(p, m.data[off:])

	return n, nil
}

func (m *memSource) Close() error { return nil }

// ccBlockOffset is where buildCCBlock places its block: after a leading pad
// so offset 0 keeps meaning "absent" per Link.IsAbsent.
const ccBlockOffset = 16

// buildCCBlock encodes a ##CC block at ccBlockOffset with 4 leading non-ref
// links followed by one link per entry in refs, matching the layout
// mdf4/block/conversion.go decodes.
func buildCCBlock(convType uint8, values []float64, refs []uint64) []byte {
	linkCount := 4 + len(refs)
	valueCount := len(values)
	payloadLen := 24 + valueCount*8

	length := 24 + 8*linkCount + payloadLen
	buf := make([]byte, ccBlockOffset+length)

	blk := buf[ccBlockOffset:]
	copy(blk[0:4], "##CC")
	binary.LittleEndian.PutUint64(blk[8:16], uint64(length))
	binary.LittleEndian.PutUint64(blk[16:24], uint64(linkCount))

	off := 24
	off += 8 * 4 // leave the 4 non-ref links zero
	for _, r := range refs {
		binary.LittleEndian.PutUint64(blk[off:off+8], r)
		off += 8
	}

	payload := blk[off:]
	payload[0] = convType
	binary.LittleEndian.PutUint16(payload[6:8], uint16(valueCount))
	for i, v := range values {
		binary.LittleEndian.PutUint64(payload[24+i*8:32+i*8], math.Float64bits(v))
	}

	return buf
}

func TestCompileLinear(t *testing.T) {
	raw := buildCCBlock(1, []float64{3.0, 2.0}, nil)
	src := &memSource{data: raw}

	expr, err := conversion.Compile(src, block.Link[block.ChannelConversionBlock](0))
	require.NoError(t, err)
	assert.Equal(t, "x", expr.Display()) // absent link compiles to bare Arg

	expr, err = conversion.Compile(src, block.Link[block.ChannelConversionBlock](ccBlockOffset))
	require.NoError(t, err)
	assert.Equal(t, "((x * 2) + 3)", expr.Display())
}

func TestCompileOneToOneRejectsExtraValues(t *testing.T) {
	raw := buildCCBlock(0, []float64{1.0}, nil)
	src := &memSource{data: raw}

	_, err := conversion.Compile(src, block.Link[block.ChannelConversionBlock](ccBlockOffset))
	require.Error(t, err)
}

func TestCompileUnknownTypeEmitsPlaceholder(t *testing.T) {
	raw := buildCCBlock(200, nil, nil)
	src := &memSource{data: raw}

	expr, err := conversion.Compile(src, block.Link[block.ChannelConversionBlock](ccBlockOffset))
	require.NoError(t, err)
	assert.Equal(t, "unsupported()", expr.Display())
}
