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

// Package atrac9 decodes the ATRAC9 lossy perceptual audio codec used by
// the PlayStation Vita and PS4 audio subsystems. A Decoder is initialized
// once from a 4-byte configData blob and then fed one compressed frame at
// a time, in order, starting at a superframe boundary (decoder.c's
// DecodeFrame pipeline, composing internal/unpack, internal/frame,
// internal/bandext and internal/imdct exactly as spec §4.9 describes).
package atrac9

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/RPCSX/LibAtrac9/internal/bandext"
	"github.com/RPCSX/LibAtrac9/internal/bits"
	"github.com/RPCSX/LibAtrac9/internal/frame"
	"github.com/RPCSX/LibAtrac9/internal/status"
	"github.com/RPCSX/LibAtrac9/internal/unpack"
)

// A Decoder holds one ATRAC9 stream's config, frame state and MDCT overlap
// buffers for its lifetime (spec §5 "Ownership"). It is not safe for
// concurrent use by multiple goroutines.
type Decoder struct {
	config frame.ConfigData
	frame  *frame.Frame
	log    *zap.Logger
}

// Option configures a Decoder at construction time.
type Option func(*Decoder)

// WithLogger attaches a structured logger for init/decode diagnostics. The
// default is a no-op logger, matching how a codec library should stay
// silent unless the host opts in.
func WithLogger(l *zap.Logger) Option {
	return func(d *Decoder) {
		d.log = l
	}
}

// NewDecoder parses configData (spec §6 "Init input") and builds a Decoder
// ready to decode frames of ConfigData.FrameBytes each.
func NewDecoder(configData [4]byte, opts ...Option) (*Decoder, error) {
	cfg, st := frame.ParseConfigData(configData)
	if !st.OK() {
		return nil, errors.Wrap(st, "atrac9: new decoder")
	}

	d := &Decoder{
		config: cfg,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.frame = frame.NewFrame(cfg)
	d.log.Debug("decoder initialized",
		zap.Int("sampleRate", cfg.SampleRate),
		zap.Int("channelCount", cfg.ChannelCount),
		zap.Int("frameBytes", cfg.FrameBytes),
		zap.Int("framesPerSuperframe", cfg.FramesPerSuperframe),
	)
	return d, nil
}

// ConfigData returns the parsed configuration this Decoder was built from.
func (d *Decoder) ConfigData() frame.ConfigData {
	return d.config
}

// ChannelCount returns the number of output channels per sample.
func (d *Decoder) ChannelCount() int {
	return d.config.ChannelCount
}

// SampleRate returns the configured sample rate in Hz.
func (d *Decoder) SampleRate() int {
	return d.config.SampleRate
}

// DecodeFrame decodes exactly one compressed frame (spec §6 "Decode
// input"/"Decode output") and returns bytesUsed and interleaved float64
// PCM, channel-major within sample (out[sample*channelCount+ch]). The
// returned slice is newly allocated on every call and stays valid after
// later DecodeFrame calls.
func (d *Decoder) DecodeFrame(compressedFrame []byte) (pcm []float64, bytesUsed int, err error) {
	if len(compressedFrame) < d.config.FrameBytes {
		return nil, 0, errors.Errorf("atrac9: decode frame: need %d bytes, got %d", d.config.FrameBytes, len(compressedFrame))
	}

	br := bits.New(compressedFrame)
	if st := unpack.UnpackFrame(d.frame, br); !st.OK() {
		d.log.Warn("unpack failed", zap.Error(st), zap.Int("indexInSuperframe", d.frame.IndexInSuperframe))
		return nil, 0, errors.Wrap(st, "atrac9: decode frame")
	}

	for i := range d.frame.Blocks {
		block := &d.frame.Blocks[i]
		frame.DequantizeSpectra(block)
		frame.ApplyIntensityStereo(block)
		frame.ScaleSpectrumBlock(block)
		bandext.ApplyBandExtension(block)
		frame.ImdctBlock(block)
	}

	out := make([]float64, d.config.FrameSamples*d.config.ChannelCount)
	for _, block := range d.frame.Blocks {
		for ci := 0; ci < block.ChannelCount; ci++ {
			ch := &block.Channels[ci]
			outChannel := d.channelOutputIndex(&block, ci)
			for s := 0; s < d.config.FrameSamples; s++ {
				out[s*d.config.ChannelCount+outChannel] = ch.Pcm[s]
			}
		}
	}

	return out, br.BytesUsed(), nil
}

// channelOutputIndex maps a block-local channel to its position in the
// interleaved output, following ChannelConfig.Types's block order
// (decinit.c's BlockTypeToChannelCount walks blocks in the same order).
func (d *Decoder) channelOutputIndex(block *frame.Block, channelInBlock int) int {
	offset := 0
	for i := 0; i < block.BlockIndex; i++ {
		offset += d.frame.Blocks[i].ChannelCount
	}
	return offset + channelInBlock
}

// Reset clears cross-frame state (scale-factor history, MDCT overlap,
// superframe position) so the next DecodeFrame call is treated as the
// first frame of a superframe (spec §4.9's "indexInSuperframe" reset and
// §5's per-frame block/channel reset).
func (d *Decoder) Reset() {
	d.frame = frame.NewFrame(d.config)
}

// Status re-exports internal/status.Status so callers can compare decode
// errors against the stable numeric codes spec §6/§7 define without
// importing an internal package.
type Status = status.Status

const (
	StatusSuccess                      = status.Success
	StatusBadConfigData                = status.BadConfigData
	StatusUnpackReuseBandParamsInvalid = status.UnpackReuseBandParamsInvalid
	StatusUnpackBandParamsInvalid      = status.UnpackBandParamsInvalid
	StatusUnpackGradBoundaryInvalid    = status.UnpackGradBoundaryInvalid
	StatusUnpackGradStartUnitOOB       = status.UnpackGradStartUnitOOB
	StatusUnpackGradEndUnitOOB         = status.UnpackGradEndUnitOOB
	StatusUnpackGradEndUnitInvalid     = status.UnpackGradEndUnitInvalid
	StatusUnpackGradStartValueOOB      = status.UnpackGradStartValueOOB
	StatusUnpackGradEndValueOOB        = status.UnpackGradEndValueOOB
	StatusUnpackScaleFactorModeInvalid = status.UnpackScaleFactorModeInvalid
	StatusUnpackScaleFactorOOB         = status.UnpackScaleFactorOOB
	StatusUnpackExtensionDataInvalid   = status.UnpackExtensionDataInvalid
	StatusUnpackSuperframeFlagInvalid  = status.UnpackSuperframeFlagInvalid
)
