// Package bandext implements band extension (BEX) synthesis (spec §4.7):
// given a block's already-unpacked bexMode/bexValues and a channel's
// dequantized low-band spectrum, it fills in the high-band coefficients
// the bitstream never coded directly.
//
// unpack.c parses bexMode/bexValues (that parsing lives in
// internal/unpack, matching its source file) but the actual synthesis
// routine, band_extension.c, was not present in the retrieved original
// source. This package implements the four strategies spec.md §4.7 names
// — mirror, mirror+noise, noise-only, parameterized gain — directly from
// that prose, using the per-channel Rng spec §4 describes for every
// noise contribution. See DESIGN.md.
package bandext

import (
	"github.com/RPCSX/LibAtrac9/internal/frame"
	"github.com/RPCSX/LibAtrac9/internal/tables"
)

const (
	modeMirror        = 0
	modeMirrorNoise   = 1
	modeNoiseOnly     = 2
	modeParameterized = 3
	modeFallback      = tables.BexModeFallback
)

// ApplyBandExtension fills block.Channels[i].Spectra[extensionBand's
// coefficient range] for every channel, synthesizing from the already
// scaled low-band spectrum plus the channel's bexMode/bexValues.
func ApplyBandExtension(block *frame.Block) {
	if !block.BandExtensionEnabled || !block.HasExtensionData {
		return
	}

	lowEnd := tables.QuantUnitToCoeffIndex[block.QuantizationUnitCount]
	highEnd := tables.QuantUnitToCoeffIndex[block.ExtensionUnit]
	if highEnd <= lowEnd {
		return
	}

	for i := 0; i < block.ChannelCount; i++ {
		ch := &block.Channels[i]
		ch.Rng.Seed(ch.ScaleFactors[:])
		synthesizeChannel(ch, lowEnd, highEnd)
	}
}

// synthesizeChannel fills ch.Spectra[lowEnd:highEnd] from ch.Spectra[:lowEnd]
// according to ch.BexMode, one of the four strategies spec.md §4.7 names.
func synthesizeChannel(ch *frame.Channel, lowEnd, highEnd int) {
	if lowEnd == 0 {
		return
	}

	mode := ch.BexMode
	if mode == modeFallback {
		mode = modeMirror
	}

	gain := bexGain(ch, 0)

	switch mode {
	case modeMirror:
		for i, src := lowEnd, lowEnd-1; i < highEnd; i, src = i+1, src-1 {
			if src < 0 {
				src = 0
			}
			ch.Spectra[i] = ch.Spectra[src] * gain
		}
	case modeMirrorNoise:
		for i, src := lowEnd, lowEnd-1; i < highEnd; i, src = i+1, src-1 {
			if src < 0 {
				src = 0
			}
			noise := noiseUnit(ch)
			ch.Spectra[i] = ch.Spectra[src]*gain + noise*bexGain(ch, 1)
		}
	case modeNoiseOnly:
		for i := lowEnd; i < highEnd; i++ {
			ch.Spectra[i] = noiseUnit(ch) * gain
		}
	case modeParameterized:
		span := highEnd - lowEnd
		for i := lowEnd; i < highEnd; i++ {
			groupIndex := minInt(ch.BexValueCount-1, (i-lowEnd)*ch.BexValueCount/maxInt(span, 1))
			g := bexGain(ch, groupIndex)
			src := lowEnd - 1 - (i-lowEnd)%lowEnd
			if src < 0 {
				src = 0
			}
			ch.Spectra[i] = ch.Spectra[src] * g
		}
	}
}

// bexGain maps a raw bexValues entry (an unsigned code of up to a few
// bits, per BexDataLengths) onto a [0,1] linear gain; index values beyond
// BexValueCount fall back to unity gain.
func bexGain(ch *frame.Channel, index int) float64 {
	if index >= ch.BexValueCount || index >= len(ch.BexValues) {
		return 1
	}
	const maxCode = 15
	v := ch.BexValues[index]
	if v < 0 {
		v = 0
	}
	if v > maxCode {
		v = maxCode
	}
	return float64(v) / maxCode
}

// noiseUnit draws one signed unity-scale noise sample from the channel's
// RNG (spec §4 "RNG (per channel)").
func noiseUnit(ch *frame.Channel) float64 {
	v := ch.Rng.Next()
	return (float64(v)/32768.0 - 1.0)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
