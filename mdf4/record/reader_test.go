package record_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mf4kit/mf4kit/mdf4/block"
	"github.com/mf4kit/mf4kit/mdf4/record"
)

// memSource is a growable in-memory block.Source used to hand-assemble a
// minimal block graph without a file on disk.
type memSource struct{ data []byte }

func (m *memSource) ReadAt(p []byte, off int64) (int, error) {
	n := copy(p, m.data[off:])

	return n, nil
}

func (m *memSource) Close() error { return nil }

// builder lays out raw MDF4 blocks back to back and returns their offsets.
type builder struct{ buf []byte }

func (b *builder) put(blk []byte) uint64 {
	off := uint64(len(b.buf))
	b.buf = append(b.buf, blk...)

	return off
}

func putHeader(magic string, linkCount int, payload []byte) []byte {
	length := 24 + 8*linkCount + len(payload)
	out := make([]byte, length)
	copy(out[0:4], magic)
	binary.LittleEndian.PutUint64(out[8:16], uint64(length))
	binary.LittleEndian.PutUint64(out[16:24], uint64(linkCount))
	copy(out[24+8*linkCount:], payload)

	return out
}

func putLink(buf []byte, idx int, val uint64) {
	binary.LittleEndian.PutUint64(buf[24+8*idx:24+8*idx+8], val)
}

// TestDecodeDataGroupTwoRecordsTwoChannels builds a data group with a single
// channel group (record_id_size = 1, one u8 channel and one f32 channel) and
// a ##DT holding two records, then decodes it end to end.
func TestDecodeDataGroupTwoRecordsTwoChannels(t *testing.T) {
	// Leading pad so no block sits at offset 0, which a link reads as absent.
	b := &builder{buf: make([]byte, 8)}

	// ##CN channel 1: u8 at byte_offset 0 (data-relative, after the 1-byte
	// record id already stripped by the decoder), bit_count 8.
	ch1Payload := make([]byte, 12)
	ch1Payload[2] = byte(block.DataTypeUintLe)
	binary.LittleEndian.PutUint32(ch1Payload[4:8], 0) // byte_offset
	binary.LittleEndian.PutUint32(ch1Payload[8:12], 8) // bit_count
	ch1 := putHeader("##CN", 8, ch1Payload)
	ch1Off := b.put(ch1)

	// ##CN channel 0: f32 at byte_offset 1, chained to channel 1.
	ch0Payload := make([]byte, 12)
	ch0Payload[2] = byte(block.DataTypeFloatLe)
	binary.LittleEndian.PutUint32(ch0Payload[4:8], 1)
	binary.LittleEndian.PutUint32(ch0Payload[8:12], 32)
	ch0 := putHeader("##CN", 8, ch0Payload)
	putLink(ch0, 0, ch1Off) // channel_next -> ch1
	ch0Off := b.put(ch0)

	// ##CG: record_id 0, data_bytes 5 (u8 + f32).
	cgPayload := make([]byte, 32)
	binary.LittleEndian.PutUint64(cgPayload[0:8], 0) // record_id
	binary.LittleEndian.PutUint32(cgPayload[24:28], 5) // data_bytes
	cg := putHeader("##CG", 6, cgPayload)
	putLink(cg, 1, ch0Off) // channel_first
	cgOff := b.put(cg)

	// ##DT payload: record_id(1) + u8(1) + f32(4) per record, two records.
	rec1 := []byte{0x00, 0xAA, 0, 0, 0, 0}
	binary.LittleEndian.PutUint32(rec1[2:6], math.Float32bits(1.5))
	rec2 := []byte{0x00, 0xBB, 0, 0, 0, 0}
	binary.LittleEndian.PutUint32(rec2[2:6], math.Float32bits(2.5))
	dtPayload := append(append([]byte{}, rec1...), rec2...)
	dt := putHeader("##DT", 0, dtPayload)
	dtOff := b.put(dt)

	// ##DG: record_id_size 1, channel_group_first -> cg, data -> dt.
	dgPayload := []byte{1}
	dg := putHeader("##DG", 4, dgPayload)
	putLink(dg, 1, cgOff)
	putLink(dg, 2, dtOff)
	b.put(dg)

	src := &memSource{data: b.buf}

	dgBlock, err := block.ReadDataGroupBlock(src, uint64(len(b.buf)-len(dg)))
	require.NoError(t, err)

	decoded, err := record.DecodeDataGroup(src, dgBlock)
	require.NoError(t, err)
	require.Len(t, decoded.Groups, 1)

	group := decoded.Groups[0]
	require.Len(t, group.Channels, 2)

	f32Col := group.Channels[0].Column
	u8Col := group.Channels[1].Column

	assert.Equal(t, record.KindF32, f32Col.Kind)
	assert.InDeltaSlice(t, []float64{1.5, 2.5}, toFloat64s(f32Col.F32), 1e-6)

	assert.Equal(t, record.KindU8, u8Col.Kind)
	assert.Equal(t, []uint8{0xAA, 0xBB}, u8Col.U8)
}

func toFloat64s(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}

	return out
}
