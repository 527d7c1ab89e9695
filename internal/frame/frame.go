// Package frame holds the ATRAC9 data model — ConfigData, Frame, Block and
// Channel — and the per-frame dequantization/stereo/scale steps that
// operate directly on it. The type layout mirrors structures.h field for
// field; ParseConfigData mirrors decinit.c's InitConfigData/ReadConfigData,
// and DequantizeSpectra/ApplyIntensityStereo/ScaleSpectrumBlock mirror
// quantization.c and decoder.c's ApplyIntensityStereo.
package frame

import (
	"github.com/RPCSX/LibAtrac9/internal/bits"
	"github.com/RPCSX/LibAtrac9/internal/imdct"
	"github.com/RPCSX/LibAtrac9/internal/status"
	"github.com/RPCSX/LibAtrac9/internal/tables"
)

// ConfigData is the decoded form of the 4-byte configData blob every
// handle is initialized with.
type ConfigData struct {
	Raw [4]byte

	SampleRateIndex    int
	ChannelConfigIndex int
	FrameBytes         int
	SuperframeIndex    int

	ChannelConfig tables.ChannelConfig
	ChannelCount  int
	SampleRate    int
	HighSampleRate bool

	FramesPerSuperframe int
	FrameSamplesPower   int
	FrameSamples        int
	SuperframeBytes     int
	SuperframeSamples   int
}

// ParseConfigData decodes a 4-byte configData blob (spec §4.2). It mirrors
// decinit.c's ReadConfigData bit layout and InitConfigData's derived
// fields exactly.
func ParseConfigData(raw [4]byte) (ConfigData, status.Status) {
	var c ConfigData
	c.Raw = raw

	br := bits.New(raw[:])
	header := br.ReadInt(8)
	c.SampleRateIndex = br.ReadInt(4)
	c.ChannelConfigIndex = br.ReadInt(3)
	validationBit := br.ReadInt(1)
	c.FrameBytes = br.ReadInt(11) + 1
	c.SuperframeIndex = br.ReadInt(2)

	if header != 0xFE || validationBit != 0 {
		return ConfigData{}, status.BadConfigData
	}
	if c.ChannelConfigIndex >= len(tables.ChannelConfigs) {
		return ConfigData{}, status.BadConfigData
	}

	c.FramesPerSuperframe = 1 << uint(c.SuperframeIndex)
	c.SuperframeBytes = c.FrameBytes << uint(c.SuperframeIndex)

	c.ChannelConfig = tables.ChannelConfigs[c.ChannelConfigIndex]
	c.ChannelCount = c.ChannelConfig.ChannelCount
	c.SampleRate = tables.SampleRates[c.SampleRateIndex]
	c.HighSampleRate = tables.HighSampleRate(c.SampleRateIndex)
	c.FrameSamplesPower = tables.FrameSamplesPower[c.SampleRateIndex]
	c.FrameSamples = 1 << uint(c.FrameSamplesPower)
	c.SuperframeSamples = c.FrameSamples * c.FramesPerSuperframe

	return c, status.Success
}

// Rng is the per-channel band-extension noise generator (spec §4.7's "a
// per-channel noise RNG", spec §3's "seeded deterministically from the
// scale-factor pattern"). State shape and update rule are not described
// further in spec.md beyond "per-channel"; this is a four-register
// xorshift-style generator, reconstructed in the same spirit as
// decinit.c's Mdct/RngCxt being plain value state owned by the channel
// rather than anything exotic. See DESIGN.md.
type Rng struct {
	initialized bool
	a, b, c, d  uint16
}

// Seed folds a channel's decoded ScaleFactors into the generator's four
// 16-bit registers, so two channels (or two frames) coding different
// scale-factor patterns draw different noise sequences, per spec §3's
// "seeded deterministically from the scale-factor pattern." Called once
// per frame, before the first Next() call that frame consumes noise.
func (r *Rng) Seed(scaleFactors []int) {
	a, b, c, d := uint16(0x1234), uint16(0x5678), uint16(0x9abc), uint16(0xdef1)
	for i, sf := range scaleFactors {
		v := uint16(sf)
		switch i % 4 {
		case 0:
			a = (a<<3 | a>>13) ^ v
		case 1:
			b = (b<<5 | b>>11) ^ v
		case 2:
			c = (c<<7 | c>>9) ^ v
		case 3:
			d = (d<<11 | d>>5) ^ v
		}
	}
	if a|b|c|d == 0 {
		a = 0x1234
	}
	r.a, r.b, r.c, r.d = a, b, c, d
	r.initialized = true
}

// Next advances the generator and returns its next pseudo-random value.
// If Seed was never called, it falls back to a fixed seed so a Channel
// zero value still produces a valid (if content-independent) sequence.
func (r *Rng) Next() uint16 {
	if !r.initialized {
		r.Seed(nil)
	}
	t := r.d
	s := r.a ^ (r.a << 5)
	r.a, r.b, r.c = r.b, r.c, r.d
	t ^= t >> 3
	t ^= s ^ (s >> 4)
	r.d = t
	return t
}

// Channel mirrors the Channel_s fields spec §4 "Channel" describes.
type Channel struct {
	ChannelIndex int

	Mdct  *imdct.Mdct
	Carry [tables.MaxFrameSamples]float64

	Pcm     [tables.MaxFrameSamples]float64
	Spectra [tables.MaxFrameSamples]float64

	CodedQuantUnits       int
	ScaleFactorCodingMode int

	ScaleFactors     [31]int
	ScaleFactorsPrev [31]int

	Precisions     [tables.MaxQuantUnits]int
	PrecisionsFine [tables.MaxQuantUnits]int
	PrecisionMask  [tables.MaxQuantUnits]int

	CodebookSet [tables.MaxQuantUnits]int

	QuantizedSpectra     [tables.MaxFrameSamples]int
	QuantizedSpectraFine [tables.MaxFrameSamples]int

	BexMode       int
	BexValueCount int
	BexValues     [tables.MaxBexValues]int

	Rng Rng
}

// Block mirrors Block_s.
type Block struct {
	BlockType    tables.BlockType
	BlockIndex   int
	Channels     [2]Channel
	ChannelCount int

	FirstInSuperframe bool
	ReuseBandParams   bool

	BandCount              int
	StereoBand             int
	ExtensionBand          int
	QuantizationUnitCount  int
	StereoQuantizationUnit int
	ExtensionUnit          int
	QuantizationUnitsPrev  int

	Gradient          [32]int
	GradientMode      int
	GradientStartUnit int
	GradientStartValue int
	GradientEndUnit    int
	GradientEndValue   int
	GradientBoundary   int

	PrimaryChannelIndex  int
	HasJointStereoSigns  bool
	JointStereoSigns     [tables.MaxQuantUnits]int

	BandExtensionEnabled bool
	HasExtensionData     bool
	BexDataLength        int
	BexMode              int
}

// Frame mirrors Frame_s: the decoder's whole mutable per-superframe state.
type Frame struct {
	Config            ConfigData
	IndexInSuperframe int
	Blocks            []Block
	Channels          []*Channel
}

// NewFrame builds a Frame for config, wiring block/channel indices and
// per-size MDCT engines exactly as decinit.c's InitFrame/InitBlock/
// InitChannel do.
func NewFrame(config ConfigData) *Frame {
	f := &Frame{Config: config}
	blockCount := config.ChannelConfig.BlockCount
	f.Blocks = make([]Block, blockCount)
	mdct := imdct.Get(config.FrameSamples)

	for i := 0; i < blockCount; i++ {
		b := &f.Blocks[i]
		b.BlockType = config.ChannelConfig.Types[i]
		b.BlockIndex = i
		b.ChannelCount = b.BlockType.ChannelCount()
		for c := 0; c < b.ChannelCount; c++ {
			b.Channels[c].ChannelIndex = c
			b.Channels[c].Mdct = mdct
			f.Channels = append(f.Channels, &b.Channels[c])
		}
	}
	return f
}

// DequantizeSpectra reconstructs each channel's float spectrum from its
// coarse/fine quantized integers (quantization.c: DequantizeSpectra).
func DequantizeSpectra(block *Block) {
	for i := 0; i < block.ChannelCount; i++ {
		ch := &block.Channels[i]
		for k := range ch.Spectra {
			ch.Spectra[k] = 0
		}
		for band := 0; band < ch.CodedQuantUnits; band++ {
			subBandIndex := tables.QuantUnitToCoeffIndex[band]
			subBandCount := tables.QuantUnitToCoeffCount[band]
			stepSize := tables.QuantizerStepSize[ch.Precisions[band]]
			stepSizeFine := tables.QuantizerFineStepSize[ch.PrecisionsFine[band]]
			for sb := 0; sb < subBandCount; sb++ {
				coarse := float64(ch.QuantizedSpectra[subBandIndex+sb]) * stepSize
				fine := float64(ch.QuantizedSpectraFine[subBandIndex+sb]) * stepSizeFine
				ch.Spectra[subBandIndex+sb] = coarse + fine
			}
		}
	}
}

// ApplyIntensityStereo mirrors decoder.c's ApplyIntensityStereo: above
// stereoQuantizationUnit, the secondary channel's spectrum is copied (and
// optionally negated) from the primary channel instead of being decoded
// independently.
func ApplyIntensityStereo(block *Block) {
	if block.BlockType != tables.Stereo {
		return
	}
	totalUnits := block.QuantizationUnitCount
	stereoUnits := block.StereoQuantizationUnit
	if stereoUnits >= totalUnits {
		return
	}

	primary := 0
	secondary := 1
	if block.PrimaryChannelIndex != 0 {
		primary, secondary = 1, 0
	}
	source := &block.Channels[primary]
	dest := &block.Channels[secondary]

	for i := stereoUnits; i < totalUnits; i++ {
		sign := block.JointStereoSigns[i]
		for sb := tables.QuantUnitToCoeffIndex[i]; sb < tables.QuantUnitToCoeffIndex[i+1]; sb++ {
			if sign > 0 {
				dest.Spectra[sb] = -source.Spectra[sb]
			} else {
				dest.Spectra[sb] = source.Spectra[sb]
			}
		}
	}
}

// ScaleSpectrumBlock multiplies every coded coefficient by its quant
// unit's scale-factor gain (quantization.c: ScaleSpectrumBlock).
func ScaleSpectrumBlock(block *Block) {
	for i := 0; i < block.ChannelCount; i++ {
		ch := &block.Channels[i]
		quantUnitCount := block.QuantizationUnitCount
		for u := 0; u < quantUnitCount; u++ {
			scale := tables.SpectrumScale[ch.ScaleFactors[u]]
			for sb := tables.QuantUnitToCoeffIndex[u]; sb < tables.QuantUnitToCoeffIndex[u+1]; sb++ {
				ch.Spectra[sb] *= scale
			}
		}
	}
}

// ImdctBlock runs the inverse MDCT for every channel in block
// (decoder.c: ImdctBlock).
func ImdctBlock(block *Block) {
	n := block.Channels[0].Mdct.Size
	for i := 0; i < block.ChannelCount; i++ {
		ch := &block.Channels[i]
		ch.Mdct.RunImdct(ch.Spectra[:n], ch.Pcm[:n], ch.Carry[:n])
	}
}
