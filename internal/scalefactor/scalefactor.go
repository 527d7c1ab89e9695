// Package scalefactor implements the four scale-factor coding modes spec
// C6 describes, ported directly from scale_factors.c's ReadScaleFactors
// and its four mode handlers.
package scalefactor

import (
	"github.com/RPCSX/LibAtrac9/internal/bits"
	"github.com/RPCSX/LibAtrac9/internal/frame"
	"github.com/RPCSX/LibAtrac9/internal/huffman"
	"github.com/RPCSX/LibAtrac9/internal/status"
	"github.com/RPCSX/LibAtrac9/internal/tables"
)

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ReadScaleFactors decodes channel.ScaleFactors for one channel, dispatching
// on channel index and scaleFactorCodingMode exactly as
// scale_factors.c:ReadScaleFactors does, then validates the result against
// block.ExtensionUnit and snapshots it into ScaleFactorsPrev.
func ReadScaleFactors(channel *frame.Channel, block *frame.Block, primary *frame.Channel, br *bits.Reader) status.Status {
	for i := range channel.ScaleFactors {
		channel.ScaleFactors[i] = 0
	}

	channel.ScaleFactorCodingMode = br.ReadInt(2)

	if channel.ChannelIndex == 0 {
		switch channel.ScaleFactorCodingMode {
		case 0:
			readVlcDeltaOffset(channel, block, br)
		case 1:
			readClcOffset(channel, block, br)
		case 2:
			if block.FirstInSuperframe {
				return status.UnpackScaleFactorModeInvalid
			}
			readVlcDistanceToBaseline(channel, block, br, channel.ScaleFactorsPrev[:], block.QuantizationUnitsPrev)
		case 3:
			if block.FirstInSuperframe {
				return status.UnpackScaleFactorModeInvalid
			}
			readVlcDeltaOffsetWithBaseline(channel, block, br, channel.ScaleFactorsPrev[:], block.QuantizationUnitsPrev)
		}
	} else {
		switch channel.ScaleFactorCodingMode {
		case 0:
			readVlcDeltaOffset(channel, block, br)
		case 1:
			readVlcDistanceToBaseline(channel, block, br, primary.ScaleFactors[:], block.ExtensionUnit)
		case 2:
			readVlcDeltaOffsetWithBaseline(channel, block, br, primary.ScaleFactors[:], block.ExtensionUnit)
		case 3:
			if block.FirstInSuperframe {
				return status.UnpackScaleFactorModeInvalid
			}
			readVlcDistanceToBaseline(channel, block, br, channel.ScaleFactorsPrev[:], block.QuantizationUnitsPrev)
		}
	}

	for i := 0; i < block.ExtensionUnit; i++ {
		if channel.ScaleFactors[i] < 0 || channel.ScaleFactors[i] > 31 {
			return status.UnpackScaleFactorOOB
		}
	}

	channel.ScaleFactorsPrev = channel.ScaleFactors
	return status.Success
}

func readClcOffset(channel *frame.Channel, block *frame.Block, br *bits.Reader) {
	const maxBits = 5
	sf := channel.ScaleFactors[:]
	bitLength := br.ReadInt(2) + 2
	baseValue := 0
	if bitLength < maxBits {
		baseValue = br.ReadInt(maxBits)
	}
	for i := 0; i < block.ExtensionUnit; i++ {
		sf[i] = br.ReadInt(bitLength) + baseValue
	}
}

func readVlcDeltaOffset(channel *frame.Channel, block *frame.Block, br *bits.Reader) {
	weightIndex := br.ReadInt(3)
	weights := tables.ScaleFactorWeights[weightIndex]

	sf := channel.ScaleFactors[:]
	baseValue := br.ReadInt(5)
	bitLength := br.ReadInt(2) + 3
	codebook := huffman.HuffmanScaleFactorsUnsigned[bitLength]

	sf[0] = br.ReadInt(bitLength)
	for i := 1; i < block.ExtensionUnit; i++ {
		delta := codebook.ReadHuffmanValue(br, false)
		sf[i] = (sf[i-1] + delta) & codebook.ValueMax
	}
	for i := 0; i < block.ExtensionUnit; i++ {
		sf[i] += baseValue - int(weights[i])
	}
}

func readVlcDistanceToBaseline(channel *frame.Channel, block *frame.Block, br *bits.Reader, baseline []int, baselineLength int) {
	sf := channel.ScaleFactors[:]
	bitLength := br.ReadInt(2) + 2
	codebook := huffman.HuffmanScaleFactorsSigned[bitLength]
	unitCount := minInt(block.ExtensionUnit, baselineLength)

	for i := 0; i < unitCount; i++ {
		distance := codebook.ReadHuffmanValue(br, true)
		sf[i] = (baseline[i] + distance) & 31
	}
	for i := unitCount; i < block.ExtensionUnit; i++ {
		sf[i] = br.ReadInt(5)
	}
}

func readVlcDeltaOffsetWithBaseline(channel *frame.Channel, block *frame.Block, br *bits.Reader, baseline []int, baselineLength int) {
	sf := channel.ScaleFactors[:]
	baseValue := br.ReadOffsetBinary(5)
	bitLength := br.ReadInt(2) + 1
	codebook := huffman.HuffmanScaleFactorsUnsigned[bitLength]
	unitCount := minInt(block.ExtensionUnit, baselineLength)

	sf[0] = br.ReadInt(bitLength)
	for i := 1; i < unitCount; i++ {
		delta := codebook.ReadHuffmanValue(br, false)
		sf[i] = (sf[i-1] + delta) & codebook.ValueMax
	}
	for i := 0; i < unitCount; i++ {
		sf[i] += baseValue + baseline[i]
	}
	for i := unitCount; i < block.ExtensionUnit; i++ {
		sf[i] = br.ReadInt(5)
	}
}
