// Copyright 2017 Hajime Hoshi
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package atrac9

// roundDouble implements decoder.c's RoundDouble: round half away from
// zero for positive values by adding 0.5 and truncating, then correcting
// the truncation's direction for negative values.
func roundDouble(x float64) int {
	x += 0.5
	i := int(x)
	if x < float64(i) {
		i--
	}
	return i
}

func clampS16(v int) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v)
	}
}

func clampS32(v int64) int32 {
	switch {
	case v > 2147483647:
		return 2147483647
	case v < -2147483648:
		return -2147483648
	default:
		return int32(v)
	}
}

// ToS16 converts interleaved float64 PCM (as returned by
// Decoder.DecodeFrame) to signed 16-bit saturated samples
// (decoder.c: PcmFloatToS16/ClampS16).
func ToS16(pcm []float64) []int16 {
	out := make([]int16, len(pcm))
	for i, v := range pcm {
		out[i] = clampS16(roundDouble(v * 32768))
	}
	return out
}

// ToS32 converts interleaved float64 PCM to signed 32-bit rounded samples
// (decoder.c: PcmFloatToS32).
func ToS32(pcm []float64) []int32 {
	out := make([]int32, len(pcm))
	for i, v := range pcm {
		out[i] = clampS32(int64(roundDouble(v * 2147483648)))
	}
	return out
}

// ToF32 converts interleaved float64 PCM to float32 samples
// (decoder.c: PcmFloatToF32).
func ToF32(pcm []float64) []float32 {
	out := make([]float32, len(pcm))
	for i, v := range pcm {
		out[i] = float32(v)
	}
	return out
}

// ToF64 returns pcm unchanged: float64 is the decoder's native format
// (decoder.c: PcmFloatToF64 is a pass-through).
func ToF64(pcm []float64) []float64 {
	return pcm
}
