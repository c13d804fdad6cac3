// Package errs defines the sentinel errors returned by the mdf4, dbc and trc
// packages. Callers should use errors.Is against these values rather than
// matching on message text.
package errs

import "errors"

// MDF4 identification / block structure errors.
var (
	// ErrNotMDF4File is returned when the 64-byte identification preamble's
	// header field is neither "MDF     " nor "UnFinMF ".
	ErrNotMDF4File = errors.New("mdf4: not a valid MDF4 file")

	// ErrMagicMismatch is returned when a typed link is dereferenced and the
	// block found at that offset does not carry the expected 4-byte magic.
	ErrMagicMismatch = errors.New("mdf4: block magic mismatch")

	// ErrTruncatedBlock is returned when a block's declared length runs past
	// the bytes actually available to read.
	ErrTruncatedBlock = errors.New("mdf4: truncated block")

	// ErrChainTooLong is returned when a singly-linked block chain (data
	// group, channel group, channel, data list) exceeds the walker's
	// defensive length cap, guarding against cyclic "next" links in an
	// untrusted file.
	ErrChainTooLong = errors.New("mdf4: block chain exceeds maximum length")

	// ErrInvalidRecordIDSize is returned when a data group's record_id_size
	// is not one of 0, 1, 2, 4, 8.
	ErrInvalidRecordIDSize = errors.New("mdf4: invalid record_id_size")

	// ErrDuplicateRecordID is returned when two channel groups within the
	// same data group declare the same record_id.
	ErrDuplicateRecordID = errors.New("mdf4: duplicate record_id in data group")

	// ErrRecordIDOutOfRange is returned when a channel group's record_id
	// does not fit within record_id_size bytes.
	ErrRecordIDOutOfRange = errors.New("mdf4: record_id exceeds record_id_size")

	// ErrUnknownRecordID is returned when a record stream's record-id prefix
	// does not match any channel group in the data group.
	ErrUnknownRecordID = errors.New("mdf4: unknown record_id in record stream")

	// ErrVariableLengthChannel is returned for channel_type == 1, which this
	// library does not support.
	ErrVariableLengthChannel = errors.New("mdf4: variable-length channels are not supported")

	// ErrFloatBitOffset is returned when a Float channel has a non-zero
	// bit_offset.
	ErrFloatBitOffset = errors.New("mdf4: float channel with non-zero bit offset")

	// ErrUnsupportedFloatBitCount is returned when a Float channel's
	// bit_count is neither 32 nor 64.
	ErrUnsupportedFloatBitCount = errors.New("mdf4: unsupported float bit count")

	// ErrInvalidConversionParams is returned when a conversion block's value
	// or reference count does not satisfy the arity required by its
	// conversion_type.
	ErrInvalidConversionParams = errors.New("mdf4: invalid number of conversion parameters")
)

// DBC parse errors (structural, beyond the positional *dbc.ParseError).
var (
	// ErrUnterminatedString names a quoted string missing its closing quote
	// before end of input. The dbc lexer reports that case as a
	// *dbc.ParseError ("expected closing \""), which does not wrap this value.
	ErrUnterminatedString = errors.New("dbc: unterminated quoted string")

	// ErrDuplicateMessageName is returned when the same message name is
	// tracked twice while building a name index.
	ErrDuplicateMessageName = errors.New("dbc: duplicate message name")
)

// TRC errors.
var (
	// ErrUnsupportedColumns names a TRC file with no ";$COLUMNS" line and a
	// FILEVERSION this reader has no default column layout for. The trc
	// reader does not return it: such a file opens with an empty layout, and
	// every row token is then read as a data byte.
	ErrUnsupportedColumns = errors.New("trc: no column layout for file version")
)
