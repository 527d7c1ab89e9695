// Package unpack implements the per-block header and parameter parsing
// spec C8 describes, ported directly from unpack.c: UnpackFrame,
// UnpackBlock, ReadBlockHeader, UnpackStandardBlock/UnpackLfeBlock and
// everything they call to drive bitalloc (C5) and scalefactor (C6) and to
// read the coded spectrum coefficients (Huffman or raw).
package unpack

import (
	"github.com/RPCSX/LibAtrac9/internal/bitalloc"
	"github.com/RPCSX/LibAtrac9/internal/bits"
	"github.com/RPCSX/LibAtrac9/internal/frame"
	"github.com/RPCSX/LibAtrac9/internal/huffman"
	"github.com/RPCSX/LibAtrac9/internal/scalefactor"
	"github.com/RPCSX/LibAtrac9/internal/status"
	"github.com/RPCSX/LibAtrac9/internal/tables"
)

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// UnpackFrame decodes every block's header and parameters from br and
// advances f.IndexInSuperframe (unpack.c: UnpackFrame).
func UnpackFrame(f *frame.Frame, br *bits.Reader) status.Status {
	blockCount := f.Config.ChannelConfig.BlockCount

	// ScaleFactors decoding snapshots into ScaleFactorsPrev block by block as
	// it goes (scale_factors.c does the same, one channel at a time); a
	// later block's failure must not leave an earlier block's snapshot
	// committed (spec §7: a failed decode call leaves cross-frame state
	// unchanged). Save every channel's prior history up front and restore
	// it on any early return.
	prevSnapshot := make([][31]int, len(f.Channels))
	unitsPrevSnapshot := make([]int, blockCount)
	for i, ch := range f.Channels {
		prevSnapshot[i] = ch.ScaleFactorsPrev
	}
	for i := 0; i < blockCount; i++ {
		unitsPrevSnapshot[i] = f.Blocks[i].QuantizationUnitsPrev
	}
	restore := func() {
		for i, ch := range f.Channels {
			ch.ScaleFactorsPrev = prevSnapshot[i]
		}
		for i := 0; i < blockCount; i++ {
			f.Blocks[i].QuantizationUnitsPrev = unitsPrevSnapshot[i]
		}
	}

	for i := 0; i < blockCount; i++ {
		if st := unpackBlock(&f.Blocks[i], &f.Config, br); !st.OK() {
			restore()
			return st
		}
		if f.Blocks[i].FirstInSuperframe && f.IndexInSuperframe != 0 {
			restore()
			return status.UnpackSuperframeFlagInvalid
		}
	}

	f.IndexInSuperframe++
	if f.IndexInSuperframe == f.Config.FramesPerSuperframe {
		f.IndexInSuperframe = 0
	}
	return status.Success
}

func unpackBlock(block *frame.Block, config *frame.ConfigData, br *bits.Reader) status.Status {
	if st := readBlockHeader(block, br); !st.OK() {
		return st
	}

	var st status.Status
	if block.BlockType == tables.LFE {
		st = unpackLfeBlock(block, br)
	} else {
		st = unpackStandardBlock(block, config, br)
	}
	if !st.OK() {
		return st
	}

	br.AlignPosition(8)
	return status.Success
}

func readBlockHeader(block *frame.Block, br *bits.Reader) status.Status {
	block.FirstInSuperframe = br.ReadInt(1) == 0
	block.ReuseBandParams = br.ReadInt(1) != 0

	if block.FirstInSuperframe && block.ReuseBandParams && block.BlockType != tables.LFE {
		return status.UnpackReuseBandParamsInvalid
	}
	return status.Success
}

func unpackStandardBlock(block *frame.Block, config *frame.ConfigData, br *bits.Reader) status.Status {
	if !block.ReuseBandParams {
		if st := readBandParams(block, config, br); !st.OK() {
			return st
		}
	}

	if st := readGradientParams(block, br); !st.OK() {
		return st
	}
	bitalloc.CreateGradient(block)
	readStereoParams(block, br)
	if st := readExtensionParams(block, br); !st.OK() {
		return st
	}

	for i := 0; i < block.ChannelCount; i++ {
		channel := &block.Channels[i]
		updateCodedUnits(channel, block)

		primary := &block.Channels[0]
		if st := scalefactor.ReadScaleFactors(channel, block, primary, br); !st.OK() {
			return st
		}
		bitalloc.CalculateMask(channel, block.QuantizationUnitCount)
		bitalloc.CalculatePrecisions(channel, block)
		calculateSpectrumCodebookIndex(channel, config)

		readSpectra(channel, config, br)
		readSpectraFine(channel, br)
	}

	if block.BandExtensionEnabled {
		block.QuantizationUnitsPrev = block.ExtensionUnit
	} else {
		block.QuantizationUnitsPrev = block.QuantizationUnitCount
	}
	return status.Success
}

func readBandParams(block *frame.Block, config *frame.ConfigData, br *bits.Reader) status.Status {
	highIdx := 0
	if config.HighSampleRate {
		highIdx = 1
	}
	minBandCount := tables.MinBandCount[highIdx]
	maxExtensionBand := tables.MaxExtensionBand[highIdx]

	block.BandCount = br.ReadInt(4) + minBandCount
	block.QuantizationUnitCount = tables.BandToQuantUnitCount[block.BandCount]

	if block.BandCount > tables.MaxBandCount[config.SampleRateIndex] {
		return status.UnpackBandParamsInvalid
	}

	if block.BlockType == tables.Stereo {
		block.StereoBand = br.ReadInt(4) + minBandCount
		block.StereoQuantizationUnit = tables.BandToQuantUnitCount[block.StereoBand]
	} else {
		block.StereoBand = block.BandCount
	}

	if block.StereoBand > block.BandCount {
		return status.UnpackBandParamsInvalid
	}

	block.BandExtensionEnabled = br.ReadInt(1) != 0
	if block.BandExtensionEnabled {
		// BexGroupInfo is indexed by quantizationUnitCount-13.
		if block.QuantizationUnitCount < 13 {
			return status.UnpackBandParamsInvalid
		}
		block.ExtensionBand = br.ReadInt(4) + minBandCount
		if block.ExtensionBand < block.BandCount || block.ExtensionBand > maxExtensionBand {
			return status.UnpackBandParamsInvalid
		}
		block.ExtensionUnit = tables.BandToQuantUnitCount[block.ExtensionBand]
	} else {
		block.ExtensionBand = block.BandCount
		block.ExtensionUnit = block.QuantizationUnitCount
	}

	return status.Success
}

func readGradientParams(block *frame.Block, br *bits.Reader) status.Status {
	block.GradientMode = br.ReadInt(2)
	if block.GradientMode > 0 {
		block.GradientEndUnit = 31
		block.GradientEndValue = 31
		block.GradientStartUnit = br.ReadInt(5)
		block.GradientStartValue = br.ReadInt(5)
	} else {
		block.GradientStartUnit = br.ReadInt(6)
		block.GradientEndUnit = br.ReadInt(6) + 1
		block.GradientStartValue = br.ReadInt(5)
		block.GradientEndValue = br.ReadInt(5)
	}
	block.GradientBoundary = br.ReadInt(4)

	switch {
	case block.GradientBoundary > block.QuantizationUnitCount:
		return status.UnpackGradBoundaryInvalid
	case block.GradientStartUnit < 0 || block.GradientStartUnit >= 48:
		return status.UnpackGradStartUnitOOB
	case block.GradientEndUnit < 0 || block.GradientEndUnit >= 48:
		return status.UnpackGradEndUnitOOB
	case block.GradientStartUnit > block.GradientEndUnit:
		return status.UnpackGradEndUnitInvalid
	case block.GradientStartValue < 0 || block.GradientStartValue >= 32:
		return status.UnpackGradStartValueOOB
	case block.GradientEndValue < 0 || block.GradientEndValue >= 32:
		return status.UnpackGradEndValueOOB
	}
	return status.Success
}

func readStereoParams(block *frame.Block, br *bits.Reader) {
	if block.BlockType != tables.Stereo {
		return
	}
	block.PrimaryChannelIndex = br.ReadInt(1)
	block.HasJointStereoSigns = br.ReadInt(1) != 0
	for i := range block.JointStereoSigns {
		block.JointStereoSigns[i] = 0
	}
	if block.HasJointStereoSigns {
		for i := block.StereoQuantizationUnit; i < block.QuantizationUnitCount; i++ {
			block.JointStereoSigns[i] = br.ReadInt(1)
		}
	}
}

func bexReadHeader(channel *frame.Channel, br *bits.Reader, bexBand int) {
	bexMode := br.ReadInt(2)
	if bexBand > 2 {
		channel.BexMode = bexMode
	} else {
		channel.BexMode = tables.BexModeFallback
	}
	channel.BexValueCount = tables.BexEncodedValueCounts[channel.BexMode][bexBand]
}

func bexReadData(channel *frame.Channel, br *bits.Reader, bexBand int) {
	for i := 0; i < channel.BexValueCount; i++ {
		dataLength := tables.BexDataLengths[channel.BexMode][bexBand][i]
		channel.BexValues[i] = br.ReadInt(dataLength)
	}
}

func readExtensionParams(block *frame.Block, br *bits.Reader) status.Status {
	bexBand := 0
	if block.BandExtensionEnabled {
		bexBand = tables.BexGroupInfo[block.QuantizationUnitCount-13].BandCount
		if block.BlockType == tables.Stereo {
			bexReadHeader(&block.Channels[1], br, bexBand)
		} else {
			br.Advance(1)
		}
	}
	block.HasExtensionData = br.ReadInt(1) != 0
	if !block.HasExtensionData {
		return status.Success
	}
	if !block.BandExtensionEnabled {
		block.BexMode = br.ReadInt(2)
		block.BexDataLength = br.ReadInt(5)
		br.Advance(block.BexDataLength)
		return status.Success
	}

	bexReadHeader(&block.Channels[0], br, bexBand)

	block.BexDataLength = br.ReadInt(5)
	if block.BexDataLength == 0 {
		return status.Success
	}
	bexDataEnd := br.Pos() + block.BexDataLength

	bexReadData(&block.Channels[0], br, bexBand)
	if block.BlockType == tables.Stereo {
		bexReadData(&block.Channels[1], br, bexBand)
	}

	if br.Pos() > bexDataEnd {
		return status.UnpackExtensionDataInvalid
	}
	return status.Success
}

func updateCodedUnits(channel *frame.Channel, block *frame.Block) {
	if block.PrimaryChannelIndex == channel.ChannelIndex {
		channel.CodedQuantUnits = block.QuantizationUnitCount
	} else {
		channel.CodedQuantUnits = block.StereoQuantizationUnit
	}
}

func calculateSpectrumCodebookIndex(channel *frame.Channel, config *frame.ConfigData) {
	for i := range channel.CodebookSet {
		channel.CodebookSet[i] = 0
	}
	quantUnits := channel.CodedQuantUnits
	sf := channel.ScaleFactors[:]

	if quantUnits <= 1 || config.HighSampleRate {
		return
	}

	originalScaleTmp := sf[quantUnits]
	sf[quantUnits] = sf[quantUnits-1]

	avg := 0
	if quantUnits > 12 {
		for i := 0; i < 12; i++ {
			avg += sf[i]
		}
		avg = (avg + 6) / 12
	}

	for i := 8; i < quantUnits; i++ {
		prevSf := sf[i-1]
		nextSf := sf[i+1]
		minSf := minInt(prevSf, nextSf)
		if sf[i]-minSf >= 3 || sf[i]-prevSf+sf[i]-nextSf >= 3 {
			channel.CodebookSet[i] = 1
		}
	}

	for i := 12; i < quantUnits; i++ {
		if channel.CodebookSet[i] == 0 {
			minSf := minInt(sf[i-1], sf[i+1])
			bias := 0
			if tables.QuantUnitToCoeffCount[i] == 16 {
				bias = 1
			}
			if sf[i]-minSf >= 2 && sf[i] >= avg-bias {
				channel.CodebookSet[i] = 1
			}
		}
	}

	sf[quantUnits] = originalScaleTmp
}

func readSpectra(channel *frame.Channel, config *frame.ConfigData, br *bits.Reader) {
	var values [16]int
	for i := range channel.QuantizedSpectra {
		channel.QuantizedSpectra[i] = 0
	}
	highIdx := 0
	if config.HighSampleRate {
		highIdx = 1
	}
	maxHuffPrecision := tables.MaxHuffPrecision[highIdx]

	for i := 0; i < channel.CodedQuantUnits; i++ {
		subbandCount := tables.QuantUnitToCoeffCount[i]
		precision := channel.Precisions[i] + 1
		if precision <= maxHuffPrecision {
			huff := huffman.HuffmanSpectrum[channel.CodebookSet[i]][precision][tables.QuantUnitToCodebookIndex[i]]
			groupCount := subbandCount >> uint(huff.ValueCountPower)
			huff.DecodeHuffmanValues(channel.QuantizedSpectra[:], tables.QuantUnitToCoeffIndex[i], groupCount, br, values[:])
		} else {
			subbandIndex := tables.QuantUnitToCoeffIndex[i]
			for j := subbandIndex; j < tables.QuantUnitToCoeffIndex[i+1]; j++ {
				channel.QuantizedSpectra[j] = br.ReadSignedInt(precision)
			}
		}
	}
}

func readSpectraFine(channel *frame.Channel, br *bits.Reader) {
	for i := range channel.QuantizedSpectraFine {
		channel.QuantizedSpectraFine[i] = 0
	}
	for i := 0; i < channel.CodedQuantUnits; i++ {
		if channel.PrecisionsFine[i] > 0 {
			overflowBits := channel.PrecisionsFine[i] + 1
			start := tables.QuantUnitToCoeffIndex[i]
			end := tables.QuantUnitToCoeffIndex[i+1]
			for j := start; j < end; j++ {
				channel.QuantizedSpectraFine[j] = br.ReadSignedInt(overflowBits)
			}
		}
	}
}

func unpackLfeBlock(block *frame.Block, br *bits.Reader) status.Status {
	channel := &block.Channels[0]
	block.QuantizationUnitCount = 2

	decodeLfeScaleFactors(channel, block, br)
	calculateLfePrecision(channel, block)
	channel.CodedQuantUnits = block.QuantizationUnitCount
	readLfeSpectra(channel, br)

	return status.Success
}

func decodeLfeScaleFactors(channel *frame.Channel, block *frame.Block, br *bits.Reader) {
	for i := range channel.ScaleFactors {
		channel.ScaleFactors[i] = 0
	}
	for i := 0; i < block.QuantizationUnitCount; i++ {
		channel.ScaleFactors[i] = br.ReadInt(5)
	}
}

func calculateLfePrecision(channel *frame.Channel, block *frame.Block) {
	precision := 4
	if block.ReuseBandParams {
		precision = 8
	}
	for i := 0; i < block.QuantizationUnitCount; i++ {
		channel.Precisions[i] = precision
		channel.PrecisionsFine[i] = 0
	}
}

func readLfeSpectra(channel *frame.Channel, br *bits.Reader) {
	for i := range channel.QuantizedSpectra {
		channel.QuantizedSpectra[i] = 0
	}
	for i := 0; i < channel.CodedQuantUnits; i++ {
		if channel.Precisions[i] <= 0 {
			continue
		}
		precision := channel.Precisions[i] + 1
		for j := tables.QuantUnitToCoeffIndex[i]; j < tables.QuantUnitToCoeffIndex[i+1]; j++ {
			channel.QuantizedSpectra[j] = br.ReadSignedInt(precision)
		}
	}
}
