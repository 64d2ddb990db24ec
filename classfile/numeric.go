package classfile

import "math"

// floatFromBits reconstructs a CONSTANT_Float value. Infinities and NaNs are
// mapped explicitly; NaN payloads are not preserved.
func floatFromBits(bits uint32) float32 {
	switch {
	case bits == 0x7f800000:
		return float32(math.Inf(1))
	case bits == 0xff800000:
		return float32(math.Inf(-1))
	case bits >= 0x7f800001 && bits <= 0x7fffffff,
		bits >= 0xff800001:
		return float32(math.NaN())
	}
	return math.Float32frombits(bits)
}

func doubleFromBits(bits uint64) float64 {
	switch {
	case bits == 0x7ff0000000000000:
		return math.Inf(1)
	case bits == 0xfff0000000000000:
		return math.Inf(-1)
	case bits >= 0x7ff0000000000001 && bits <= 0x7fffffffffffffff,
		bits >= 0xfff0000000000001:
		return math.NaN()
	}
	return math.Float64frombits(bits)
}

func longFromHalves(high, low uint32) int64 {
	return int64(uint64(high)<<32 + uint64(low))
}
