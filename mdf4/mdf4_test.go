package mdf4_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mf4kit/mf4kit/mdf4"
)

func putHeader(magic string, linkCount int, payload []byte) []byte {
	length := 24 + 8*linkCount + len(payload)
	out := make([]byte, length)
	copy(out[0:4], magic)
	binary.LittleEndian.PutUint64(out[8:16], uint64(length))
	binary.LittleEndian.PutUint64(out[16:24], uint64(linkCount))
	copy(out[24+8*linkCount:], payload)

	return out
}

// buildMinimalFile assembles a minimal valid MDF4 file: identification
// preamble, a ##HD with no data groups, and returns its bytes.
func buildMinimalFile(t *testing.T) string {
	t.Helper()

	id := make([]byte, 64)
	copy(id[0:8], "MDF     ")
	binary.LittleEndian.PutUint16(id[28:30], 410)

	hd := putHeader("##HD", 6, make([]byte, 8))
	// first_data_group (links[0]) stays absent: an empty file.

	buf := append(append([]byte{}, id...), hd...)

	path := filepath.Join(t.TempDir(), "minimal.mf4")
	require.NoError(t, os.WriteFile(path, buf, 0o644))

	return path
}

func TestOpenMinimalFile(t *testing.T) {
	path := buildMinimalFile(t)

	f, err := mdf4.Open(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, uint16(410), f.Version())

	groups, err := f.Channels()
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestOpenRejectsNonMDF4File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-mdf4.bin")
	require.NoError(t, os.WriteFile(path, []byte("not an mdf4 file at all, just junk"), 0o644))

	_, err := mdf4.Open(path)
	require.Error(t, err)
}

// fileBuilder assembles a valid MDF4 file's bytes one block at a time,
// tracking each appended block's offset so later blocks can link back to it.
type fileBuilder struct {
	buf []byte
}

func newFileBuilder() *fileBuilder {
	id := make([]byte, 64)
	copy(id[0:8], "MDF     ")
	binary.LittleEndian.PutUint16(id[28:30], 410)

	return &fileBuilder{buf: id}
}

// append writes a block and returns its file offset.
func (b *fileBuilder) append(magic string, links []uint64, payload []byte) uint64 {
	offset := uint64(len(b.buf))

	block := putHeader(magic, len(links), payload)
	for i, l := range links {
		binary.LittleEndian.PutUint64(block[24+8*i:24+8*i+8], l)
	}

	b.buf = append(b.buf, block...)

	return offset
}

func (b *fileBuilder) write(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, b.buf, 0o644))

	return path
}

func TestFileHistoryWalksChain(t *testing.T) {
	b := newFileBuilder()

	// ##HD must sit right after the identification preamble; its
	// file_history link (links[1]) is filled in once the ##FH blocks exist.
	hdPayload := make([]byte, 8)
	hdOffset := b.append("##HD", []uint64{0, 0, 0, 0, 0, 0}, hdPayload)

	fhPayload := make([]byte, 8)
	binary.LittleEndian.PutUint64(fhPayload, 1_700_000_000_000_000_000)
	fhOldest := b.append("##FH", []uint64{0}, fhPayload)

	fhPayload2 := make([]byte, 8)
	binary.LittleEndian.PutUint64(fhPayload2, 1_800_000_000_000_000_000)
	fhNewest := b.append("##FH", []uint64{fhOldest}, fhPayload2)

	binary.LittleEndian.PutUint64(b.buf[hdOffset+24+8:], fhNewest)

	path := b.write(t, "filehistory.mf4")

	f, err := mdf4.Open(path)
	require.NoError(t, err)
	defer f.Close()

	history, err := f.FileHistory()
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, time.Unix(0, 1_800_000_000_000_000_000).UTC(), history[0])
	assert.Equal(t, time.Unix(0, 1_700_000_000_000_000_000).UTC(), history[1])
}

func TestChannelGroupSurfacesSourceInformation(t *testing.T) {
	b := newFileBuilder()

	// ##HD must sit right after the identification preamble; its
	// first_data_group link (links[0]) is filled in once the ##DG exists.
	hdPayload := make([]byte, 8)
	hdOffset := b.append("##HD", []uint64{0, 0, 0, 0, 0, 0}, hdPayload)

	siOffset := b.append("##SI", nil, []byte{2, 1})

	cgPayload := make([]byte, 32)
	cgOffset := b.append("##CG", []uint64{0, 0, 0, siOffset}, cgPayload)

	dgPayload := []byte{0}
	dgOffset := b.append("##DG", []uint64{0, cgOffset, 0, 0}, dgPayload)

	binary.LittleEndian.PutUint64(b.buf[hdOffset+24:], dgOffset)

	path := b.write(t, "sourceinfo.mf4")

	f, err := mdf4.Open(path)
	require.NoError(t, err)
	defer f.Close()

	groups, err := f.Channels()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0], 1)

	cg := groups[0][0]
	assert.Equal(t, uint8(2), cg.SourceType)
	assert.Equal(t, uint8(1), cg.BusType)
}
