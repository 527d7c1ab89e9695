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

package main

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"

	atrac9 "github.com/RPCSX/LibAtrac9"
	"github.com/RPCSX/LibAtrac9/cmd/atrac9play/at9container"
)

const wavFormatPCM = 1

// writeWav decodes every frame in container through dec and encodes the
// result as a 16-bit PCM WAV file at path (go-audio/wav.Encoder, the same
// encoder ausocean-av's FLAC-to-WAV path uses).
func writeWav(dec *atrac9.Decoder, container *at9container.Container, path string) error {
	pcm, err := decodeAll(dec, container)
	if err != nil {
		return err
	}
	samples := atrac9.ToS16(pcm)

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "atrac9play: create wav")
	}
	defer f.Close()

	enc := wav.NewEncoder(f, dec.SampleRate(), 16, dec.ChannelCount(), wavFormatPCM)
	defer enc.Close()

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: dec.ChannelCount(), SampleRate: dec.SampleRate()},
		SourceBitDepth: 16,
		Data:           data,
	}
	if err := enc.Write(buf); err != nil {
		return errors.Wrap(err, "atrac9play: write wav")
	}
	return nil
}
