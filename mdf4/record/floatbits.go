package record

import "math"

func float32FromBits(bits uint32) float32 { return math.Float32frombits(bits) }
func float64FromBits(bits uint64) float64 { return math.Float64frombits(bits) }
