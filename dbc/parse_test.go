package dbc_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mf4kit/mf4kit/dbc"
)

const simpleDbc = `VERSION ""

NS_ :
    BA_
    BO_TX_BU_

BS_:

BU_: ECU1 ECU2

BO_ 100 EngineStatus: 8 ECU1
 SG_ RPM : 0|16@1+ (1,0) [0|8000] "rpm" ECU2
 SG_ Temp : 16|8@1- (1,-40) [-40|200] "C" ECU2

VAL_ 100 RPM 0 "stopped" 1 "running" ;
`

func TestParseSimpleMessage(t *testing.T) {
	db, err := dbc.Parse(simpleDbc)
	require.NoError(t, err)
	require.Len(t, db.Messages, 1)

	msg := db.Messages[0]
	assert.Equal(t, uint32(100), msg.ID)
	assert.Equal(t, "EngineStatus", msg.Name)
	assert.Equal(t, uint32(8), msg.Length)
	assert.Equal(t, "ECU1", msg.Transmitter)
	require.Len(t, msg.Signals, 2)

	rpm := msg.Signals[0]
	assert.Equal(t, "RPM", rpm.Name)
	assert.Equal(t, uint32(0), rpm.StartBit)
	assert.Equal(t, uint32(16), rpm.Size)
	assert.Equal(t, dbc.LittleEndian, rpm.ByteOrder)
	assert.Equal(t, dbc.Unsigned, rpm.ValueType)
	assert.Equal(t, []string{"ECU2"}, rpm.Receivers)
	assert.Equal(t, map[int64]string{0: "stopped", 1: "running"}, rpm.ValueDescriptions)

	temp := msg.Signals[1]
	assert.Equal(t, dbc.Signed, temp.ValueType)
	assert.Equal(t, -40.0, temp.Offset)
}

const inlineMuxDbc = `VERSION ""

BU_: ECU1

BO_ 200 MuxMsg: 8 ECU1
 SG_ Selector M : 0|8@1+ (1,0) [0|255] "" Vector__XXX
 SG_ ValueA m0 : 8|8@1+ (1,0) [0|255] "" Vector__XXX
 SG_ ValueB m1 : 8|8@1+ (1,0) [0|255] "" Vector__XXX
`

func TestParseInlineMultiplex(t *testing.T) {
	db, err := dbc.Parse(inlineMuxDbc)
	require.NoError(t, err)
	require.Len(t, db.Messages, 1)

	msg := db.Messages[0]
	require.Len(t, msg.Signals, 1)

	selector := msg.Signals[0]
	assert.Equal(t, "Selector", selector.Name)
	assert.True(t, selector.IsMultiplexer)
	require.Len(t, selector.Multiplexed, 2)

	require.Len(t, selector.Multiplexed[0], 1)
	assert.Equal(t, "ValueA", selector.Multiplexed[0][0].Name)
	require.Len(t, selector.Multiplexed[1], 1)
	assert.Equal(t, "ValueB", selector.Multiplexed[1][0].Name)
}

const extendedMuxDbc = `VERSION ""

BU_: ECU1

BO_ 300 ExtMux: 8 ECU1
 SG_ Sel M : 0|8@1+ (1,0) [0|255] "" Vector__XXX
 SG_ A m0 : 8|8@1+ (1,0) [0|255] "" Vector__XXX
 SG_ B m1 : 8|8@1+ (1,0) [0|255] "" Vector__XXX

SG_MUL_VAL_ 300 A Sel 0-0 ;
SG_MUL_VAL_ 300 B Sel 1-2 ;
`

func TestParseExtendedMultiplexOverridesInline(t *testing.T) {
	db, err := dbc.Parse(extendedMuxDbc)
	require.NoError(t, err)
	require.Len(t, db.Messages, 1)

	sel := db.Messages[0].Signals[0]
	require.Len(t, sel.Multiplexed, 3)
	assert.Equal(t, "A", sel.Multiplexed[0][0].Name)
	assert.Equal(t, "B", sel.Multiplexed[1][0].Name)
	assert.Equal(t, "B", sel.Multiplexed[2][0].Name)
}

func TestMessageLookup(t *testing.T) {
	db, err := dbc.Parse(simpleDbc)
	require.NoError(t, err)

	byID, ok := db.MessageByID(100)
	require.True(t, ok)
	assert.Equal(t, "EngineStatus", byID.Name)

	byName, ok := db.MessageByName("EngineStatus")
	require.True(t, ok)
	assert.Equal(t, uint32(100), byName.ID)

	_, ok = db.MessageByID(999)
	assert.False(t, ok)
}

func TestParseErrorReportsPosition(t *testing.T) {
	_, err := dbc.Parse("VERSION \"unterminated\n")

	var parseErr *dbc.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 1, parseErr.Line)
}

func TestRoundTripSaveAndParse(t *testing.T) {
	db, err := dbc.Parse(simpleDbc)
	require.NoError(t, err)

	var buf strings.Builder
	_, err = db.WriteTo(&buf)
	require.NoError(t, err)

	reparsed, err := dbc.Parse(buf.String())
	require.NoError(t, err)

	require.Len(t, reparsed.Messages, 1)
	assert.Equal(t, db.Messages[0].Name, reparsed.Messages[0].Name)
	require.Len(t, reparsed.Messages[0].Signals, 2)
	assert.Equal(t, db.Messages[0].Signals[0].Name, reparsed.Messages[0].Signals[0].Name)
}
