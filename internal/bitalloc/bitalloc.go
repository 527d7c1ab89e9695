// Package bitalloc implements the bit-allocation gradient and precision
// derivation spec C5 describes, ported directly from bit_allocation.c:
// CreateGradient, CalculateMask and CalculatePrecisions, plus the
// process-wide GradientCurves table GenerateGradientCurves builds once
// from a 48-entry base curve.
package bitalloc

import "github.com/RPCSX/LibAtrac9/internal/frame"

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// baseCurve is bit_allocation.c's BaseCurve, copied verbatim.
var baseCurve = [48]byte{
	1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 4, 4, 5, 5, 6, 7, 8, 9, 10, 11, 12, 13,
	15, 16, 18, 19, 20, 21, 22, 23, 24, 25, 26, 26, 27, 27, 28, 28, 28, 29, 29,
	29, 29, 30, 30, 30, 30,
}

// gradientCurves[length-1] is a resampling of baseCurve to `length` entries,
// built once by GenerateGradientCurves (bit_allocation.c).
var gradientCurves [48][48]byte

// GenerateGradientCurves builds gradientCurves from baseCurve. It is
// idempotent and meant to run once at decoder initialization, mirroring
// decinit.c's InitDecoder calling it unconditionally before any frame is
// decoded (spec §5 "Lifecycle": static tables are built exactly once).
func GenerateGradientCurves() {
	const baseLength = len(baseCurve)
	for length := 1; length <= baseLength; length++ {
		for i := 0; i < length; i++ {
			gradientCurves[length-1][i] = baseCurve[i*baseLength/length]
		}
	}
}

func init() {
	GenerateGradientCurves()
}

// CreateGradient fills block.Gradient from the gradient boundary
// parameters unpack already decoded (bit_allocation.c: CreateGradient).
func CreateGradient(block *frame.Block) {
	valueCount := block.GradientEndValue - block.GradientStartValue
	unitCount := block.GradientEndUnit - block.GradientStartUnit

	for i := 0; i < block.GradientEndUnit; i++ {
		block.Gradient[i] = block.GradientStartValue
	}
	for i := block.GradientEndUnit; i <= block.QuantizationUnitCount; i++ {
		block.Gradient[i] = block.GradientEndValue
	}
	if unitCount <= 0 || valueCount == 0 {
		return
	}

	curve := gradientCurves[unitCount-1]
	if valueCount <= 0 {
		scale := float64(-valueCount-1) / 31.0
		baseVal := block.GradientStartValue - 1
		for i := block.GradientStartUnit; i < block.GradientEndUnit; i++ {
			block.Gradient[i] = baseVal - int(float64(curve[i-block.GradientStartUnit])*scale)
		}
	} else {
		scale := float64(valueCount-1) / 31.0
		baseVal := block.GradientStartValue + 1
		for i := block.GradientStartUnit; i < block.GradientEndUnit; i++ {
			block.Gradient[i] = baseVal + int(float64(curve[i-block.GradientStartUnit])*scale)
		}
	}
}

// CalculateMask builds channel.PrecisionMask from adjacent scale-factor
// deltas (bit_allocation.c: CalculateMask).
func CalculateMask(channel *frame.Channel, quantizationUnitCount int) {
	for i := range channel.PrecisionMask {
		channel.PrecisionMask[i] = 0
	}
	for i := 1; i < quantizationUnitCount; i++ {
		delta := channel.ScaleFactors[i] - channel.ScaleFactors[i-1]
		if delta > 1 {
			channel.PrecisionMask[i] += minInt(delta-1, 5)
		} else if delta < -1 {
			channel.PrecisionMask[i-1] += minInt(-delta-1, 5)
		}
	}
}

// CalculatePrecisions derives channel.Precisions/PrecisionsFine from the
// scale factors, mask and gradient (bit_allocation.c: CalculatePrecisions).
func CalculatePrecisions(channel *frame.Channel, block *frame.Block) {
	if block.GradientMode != 0 {
		for i := 0; i < block.QuantizationUnitCount; i++ {
			p := channel.ScaleFactors[i] + channel.PrecisionMask[i] - block.Gradient[i]
			if p > 0 {
				switch block.GradientMode {
				case 1:
					p /= 2
				case 2:
					p = 3 * p / 8
				case 3:
					p /= 4
				}
			}
			channel.Precisions[i] = p
		}
	} else {
		for i := 0; i < block.QuantizationUnitCount; i++ {
			channel.Precisions[i] = channel.ScaleFactors[i] - block.Gradient[i]
		}
	}

	for i := 0; i < block.QuantizationUnitCount; i++ {
		if channel.Precisions[i] < 1 {
			channel.Precisions[i] = 1
		}
	}
	for i := 0; i < block.GradientBoundary; i++ {
		channel.Precisions[i]++
	}
	for i := 0; i < block.QuantizationUnitCount; i++ {
		channel.PrecisionsFine[i] = 0
		if channel.Precisions[i] > 15 {
			channel.PrecisionsFine[i] = channel.Precisions[i] - 15
			channel.Precisions[i] = 15
		}
	}
}
