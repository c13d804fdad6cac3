package record

import (
	"encoding/binary"
	"fmt"

	"github.com/mf4kit/mf4kit/errs"
	"github.com/mf4kit/mf4kit/mdf4/block"
)

// channelDecoder extracts one channel's value from a record's data bytes and
// appends it to the channel's Column. byteOffset/byteLen locate the field
// within the record; the rest of the channel's (data_type, bit_offset,
// bit_count) is folded into decode at compile time.
type channelDecoder struct {
	byteOffset int
	byteLen    int
	decode     func(raw []byte, col *Column)
}

// compileChannelDecoder turns a ##CN block's (data_type, bit_offset,
// byte_offset, bit_count) into a channelDecoder and the empty Column it
// feeds, or reports that the channel is unsupported and should be dropped
// (ok == false, err == nil), or a hard structural error.
func compileChannelDecoder(ch block.ChannelBlock) (dec channelDecoder, col *Column, ok bool, err error) {
	if ch.ChannelType == 1 {
		return channelDecoder{}, nil, false, fmt.Errorf("%w: channel has variable-length data_type", errs.ErrVariableLengthChannel)
	}

	byteOffset := int(ch.ByteOffset)

	switch ch.DataType {
	case block.DataTypeFloatLe:
		if ch.BitOffset != 0 {
			return channelDecoder{}, nil, false, fmt.Errorf("%w: channel at byte %d", errs.ErrFloatBitOffset, byteOffset)
		}

		switch ch.BitCount {
		case 32:
			col = &Column{Kind: KindF32}
			dec = channelDecoder{byteOffset: byteOffset, byteLen: 4, decode: decodeF32}
		case 64:
			col = &Column{Kind: KindF64}
			dec = channelDecoder{byteOffset: byteOffset, byteLen: 8, decode: decodeF64}
		default:
			return channelDecoder{}, nil, false, fmt.Errorf("%w: %d", errs.ErrUnsupportedFloatBitCount, ch.BitCount)
		}

		return dec, col, true, nil

	case block.DataTypeIntLe, block.DataTypeUintLe:
		// Non-zero bit_offset packed integers are outside this library's
		// scope (no big-endian/non-zero-bit-offset decoding); such channels
		// are dropped like any other unsupported data_type.
		if ch.BitOffset != 0 || ch.BitCount == 0 || ch.BitCount > 64 {
			return channelDecoder{}, nil, false, nil
		}

		signed := ch.DataType == block.DataTypeIntLe
		byteLen := int((ch.BitCount + 7) / 8)
		kind := widthKind(ch.BitCount, signed)

		col = &Column{Kind: kind}
		dec = channelDecoder{
			byteOffset: byteOffset,
			byteLen:    byteLen,
			decode:     makeIntDecoder(ch.BitCount, signed, kind),
		}

		return dec, col, true, nil

	default:
		return channelDecoder{}, nil, false, nil
	}
}

func widthKind(bitCount uint32, signed bool) Kind {
	switch {
	case bitCount <= 8:
		if signed {
			return KindI8
		}

		return KindU8
	case bitCount <= 16:
		if signed {
			return KindI16
		}

		return KindU16
	case bitCount <= 32:
		if signed {
			return KindI32
		}

		return KindU32
	default:
		if signed {
			return KindI64
		}

		return KindU64
	}
}

func decodeF32(raw []byte, col *Column) {
	bits := binary.LittleEndian.Uint32(raw)
	col.F32 = append(col.F32, float32FromBits(bits))
}

func decodeF64(raw []byte, col *Column) {
	bits := binary.LittleEndian.Uint64(raw)
	col.F64 = append(col.F64, float64FromBits(bits))
}

// makeIntDecoder builds a decode func that reads byteLen little-endian
// bytes into a zero-extended u64, masks to bitCount bits, sign-extends if
// signed, and truncates into the column's narrowest fitting width.
func makeIntDecoder(bitCount uint32, signed bool, kind Kind) func(raw []byte, col *Column) {
	return func(raw []byte, col *Column) {
		var v uint64
		for i, b := range raw {
			v |= uint64(b) << (8 * uint(i))
		}

		v = maskToBits(v, bitCount)

		if signed {
			shift := 64 - bitCount
			sv := int64(v<<shift) >> shift
			appendSigned(col, kind, sv)

			return
		}

		appendUnsigned(col, kind, v)
	}
}

func maskToBits(v uint64, bits uint32) uint64 {
	if bits >= 64 {
		return v
	}

	return v & ((uint64(1) << bits) - 1)
}

func appendSigned(col *Column, kind Kind, v int64) {
	switch kind {
	case KindI8:
		col.I8 = append(col.I8, int8(v))
	case KindI16:
		col.I16 = append(col.I16, int16(v))
	case KindI32:
		col.I32 = append(col.I32, int32(v))
	default:
		col.I64 = append(col.I64, v)
	}
}

func appendUnsigned(col *Column, kind Kind, v uint64) {
	switch kind {
	case KindU8:
		col.U8 = append(col.U8, uint8(v))
	case KindU16:
		col.U16 = append(col.U16, uint16(v))
	case KindU32:
		col.U32 = append(col.U32, uint32(v))
	default:
		col.U64 = append(col.U64, v)
	}
}
