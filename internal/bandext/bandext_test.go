package bandext_test

import (
	"math"
	"testing"

	"github.com/RPCSX/LibAtrac9/internal/bandext"
	"github.com/RPCSX/LibAtrac9/internal/frame"
	"github.com/RPCSX/LibAtrac9/internal/tables"
)

func TestApplyBandExtensionNoopWhenDisabled(t *testing.T) {
	block := &frame.Block{
		ChannelCount:          1,
		QuantizationUnitCount: 4,
		ExtensionUnit:         8,
	}
	block.Channels[0].Spectra[0] = 1.0

	bandext.ApplyBandExtension(block)

	highEnd := tables.QuantUnitToCoeffIndex[8]
	for i := tables.QuantUnitToCoeffIndex[4]; i < highEnd; i++ {
		if block.Channels[0].Spectra[i] != 0 {
			t.Fatalf("Spectra[%d] = %v, want 0 when BandExtensionEnabled is false", i, block.Channels[0].Spectra[i])
		}
	}
}

func TestApplyBandExtensionMirrorCopiesLowBand(t *testing.T) {
	block := &frame.Block{
		ChannelCount:          1,
		QuantizationUnitCount: 4,
		ExtensionUnit:         8,
		BandExtensionEnabled:  true,
		HasExtensionData:      true,
	}
	lowEnd := tables.QuantUnitToCoeffIndex[4]
	highEnd := tables.QuantUnitToCoeffIndex[8]
	if highEnd <= lowEnd {
		t.Fatal("fixture must have a non-empty extension band")
	}
	for i := 0; i < lowEnd; i++ {
		block.Channels[0].Spectra[i] = 2.0
	}
	block.Channels[0].BexMode = 0 // mirror
	block.Channels[0].BexValueCount = 1
	block.Channels[0].BexValues[0] = 15 // max code -> gain 1

	bandext.ApplyBandExtension(block)

	for i := lowEnd; i < highEnd; i++ {
		if block.Channels[0].Spectra[i] != 2.0 {
			t.Fatalf("Spectra[%d] = %v, want mirrored 2.0", i, block.Channels[0].Spectra[i])
		}
	}
}

func TestApplyBandExtensionNoiseOnlyIsBounded(t *testing.T) {
	block := &frame.Block{
		ChannelCount:          1,
		QuantizationUnitCount: 4,
		ExtensionUnit:         8,
		BandExtensionEnabled:  true,
		HasExtensionData:      true,
	}
	lowEnd := tables.QuantUnitToCoeffIndex[4]
	highEnd := tables.QuantUnitToCoeffIndex[8]
	block.Channels[0].BexMode = 2 // noise-only
	block.Channels[0].BexValueCount = 1
	block.Channels[0].BexValues[0] = 8

	bandext.ApplyBandExtension(block)

	for i := lowEnd; i < highEnd; i++ {
		v := block.Channels[0].Spectra[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("Spectra[%d] = %v, not finite", i, v)
		}
		if math.Abs(v) > 2 {
			t.Fatalf("Spectra[%d] = %v, suspiciously large for a [0,1]-gain noise fill", i, v)
		}
	}
}

func TestApplyBandExtensionNoiseSeedDependsOnScaleFactors(t *testing.T) {
	newBlock := func(sf0 [31]int) *frame.Block {
		block := &frame.Block{
			ChannelCount:          1,
			QuantizationUnitCount: 4,
			ExtensionUnit:         8,
			BandExtensionEnabled:  true,
			HasExtensionData:      true,
		}
		block.Channels[0].BexMode = 2 // noise-only
		block.Channels[0].BexValueCount = 1
		block.Channels[0].BexValues[0] = 8
		block.Channels[0].ScaleFactors = sf0
		return block
	}

	var a, b [31]int
	a[0] = 3
	b[0] = 19

	blockA := newBlock(a)
	blockB := newBlock(b)
	bandext.ApplyBandExtension(blockA)
	bandext.ApplyBandExtension(blockB)

	lowEnd := tables.QuantUnitToCoeffIndex[4]
	highEnd := tables.QuantUnitToCoeffIndex[8]
	same := true
	for i := lowEnd; i < highEnd; i++ {
		if blockA.Channels[0].Spectra[i] != blockB.Channels[0].Spectra[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("noise fill identical for two channels with different ScaleFactors; Rng must seed from the scale-factor pattern")
	}
}

func TestApplyBandExtensionFallbackModeBehavesLikeMirror(t *testing.T) {
	block := &frame.Block{
		ChannelCount:          1,
		QuantizationUnitCount: 4,
		ExtensionUnit:         8,
		BandExtensionEnabled:  true,
		HasExtensionData:      true,
	}
	lowEnd := tables.QuantUnitToCoeffIndex[4]
	highEnd := tables.QuantUnitToCoeffIndex[8]
	for i := 0; i < lowEnd; i++ {
		block.Channels[0].Spectra[i] = 3.0
	}
	block.Channels[0].BexMode = tables.BexModeFallback
	block.Channels[0].BexValueCount = 1
	block.Channels[0].BexValues[0] = 15

	bandext.ApplyBandExtension(block)

	for i := lowEnd; i < highEnd; i++ {
		if block.Channels[0].Spectra[i] != 3.0 {
			t.Fatalf("Spectra[%d] = %v, want mirrored 3.0 under the fallback mode", i, block.Channels[0].Spectra[i])
		}
	}
}
