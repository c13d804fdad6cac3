package block

import (
	"math"

	"github.com/mf4kit/mf4kit/endian"
)

// le is the byte-order engine for MDF4's wire format: every integer and
// float in a block's raw payload is little-endian (spec ch. 6).
var le = endian.GetLittleEndianEngine()

func leUint16(b []byte) uint16 { return le.Uint16(b) }
func leUint32(b []byte) uint32 { return le.Uint32(b) }
func leUint64(b []byte) uint64 { return le.Uint64(b) }
func leFloat64(b []byte) float64 {
	return math.Float64frombits(le.Uint64(b))
}

func leFloat64Slice(b []byte, count int) []float64 {
	out := make([]float64, count)
	for i := range out {
		out[i] = leFloat64(b[i*8 : i*8+8])
	}

	return out
}
