package trc_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mf4kit/mf4kit/frame"
	"github.com/mf4kit/mf4kit/trc"
)

func writeTrace(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "trace.trc")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

const trace11 = ";$FILEVERSION=1.1\n" +
	";$STARTTIME=37704.53648255\n" +
	"1) 1059.9 Rx 0300 7 00 00 00 00 04 00 00\n" +
	"2) 1298.9 Rx 0400 2 00 00\n"

func TestVersion11HeaderAndFrames(t *testing.T) {
	path := writeTrace(t, trace11)

	f, err := trc.Open(path)
	require.NoError(t, err)
	assert.Equal(t, "1.1", f.FileVersion())

	start, ok := f.StartTime()
	require.True(t, ok)
	assert.Equal(t, 2003, start.Year())
	assert.Equal(t, time.March, start.Month())
	assert.Equal(t, 24, start.Day())

	var got []frame.Frame

	for fr, err := range f.Frames() {
		require.NoError(t, err)
		got = append(got, fr)
	}

	require.Len(t, got, 2)
	assert.Equal(t, uint32(0x0300), got[0].ID)
	assert.Equal(t, uint64(1059900), got[0].TimeUs)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x00, 0x04, 0x00, 0x00}, got[0].Data)

	assert.Equal(t, uint32(0x0400), got[1].ID)
	assert.Equal(t, []byte{0x00, 0x00}, got[1].Data)
}

const trace10NoHeader = "1) 1841.0 0001 8 00 00 00 00 00 00 00 00\n"

func TestVersion10DefaultColumns(t *testing.T) {
	path := writeTrace(t, trace10NoHeader)

	f, err := trc.Open(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0", f.FileVersion())

	_, ok := f.StartTime()
	assert.False(t, ok)

	var got []frame.Frame

	for fr, err := range f.Frames() {
		require.NoError(t, err)
		got = append(got, fr)
	}

	require.Len(t, got, 1)
	assert.Equal(t, uint32(0x0001), got[0].ID)
	assert.Equal(t, uint64(1841000), got[0].TimeUs)
}

const traceSkipsMalformedRow = ";$FILEVERSION=1.1\n" +
	"1) 1059.9 Rx 0300 7 00 00 00 00 04 00 00\n" +
	"2) 1298.9 ?? 0400 2 00 00\n" + // bad Tx/Rx token: dropped
	"3) 1323.0 Rx 0300 7 00 00 00 00 06 00 00\n"

func TestMalformedRowIsSkipped(t *testing.T) {
	path := writeTrace(t, traceSkipsMalformedRow)

	f, err := trc.Open(path)
	require.NoError(t, err)

	var got []frame.Frame

	for fr, err := range f.Frames() {
		require.NoError(t, err)
		got = append(got, fr)
	}

	require.Len(t, got, 2)
	assert.Equal(t, uint64(1059900), got[0].TimeUs)
	assert.Equal(t, uint64(1323000), got[1].TimeUs)
}
