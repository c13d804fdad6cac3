package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByteBufferWriteAndReset(t *testing.T) {
	bb := NewByteBuffer(RecordBufferDefaultSize)

	n, err := bb.Write([]byte{1, 2, 3})
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{1, 2, 3}, bb.Bytes())

	bb.Reset()
	assert.Equal(t, 0, bb.Len())
	assert.GreaterOrEqual(t, bb.Cap(), RecordBufferDefaultSize)
}

func TestByteBufferGrow(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.MustWrite([]byte{1, 2, 3, 4})

	bb.Grow(RecordBufferDefaultSize)
	assert.GreaterOrEqual(t, bb.Cap()-bb.Len(), RecordBufferDefaultSize)
}

func TestByteBufferPoolReusesBuffers(t *testing.T) {
	p := NewByteBufferPool(RecordBufferDefaultSize, RecordBufferMaxThreshold)

	bb := p.Get()
	bb.MustWrite(make([]byte, 100))
	p.Put(bb)

	reused := p.Get()
	assert.Equal(t, 0, reused.Len()) // Put calls Reset
}

func TestByteBufferPoolDiscardsOversizedBuffers(t *testing.T) {
	p := NewByteBufferPool(RecordBufferDefaultSize, 16)

	bb := NewByteBuffer(1024)
	p.Put(bb) // over maxThreshold: dropped, not pooled

	assert.NotPanics(t, func() { p.Get() })
}

func TestDefaultRecordBufferPool(t *testing.T) {
	bb := GetRecordBuffer()
	assert.NotNil(t, bb)

	bb.MustWrite([]byte{0xAA})
	PutRecordBuffer(bb)
}
