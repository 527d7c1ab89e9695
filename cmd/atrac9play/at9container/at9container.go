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

// Package at9container parses the minimal slice of a RIFF/AT9 container
// the CLI needs: the "fmt " chunk's trailing ATRAC9-specific extra data
// (which ends with the 4-byte configData blob the core decoder is
// initialized from) and the "data" chunk's frame boundaries. This is
// explicitly out of core-decoder scope (spec.md §1's non-goals) and lives
// only as example-CLI plumbing, the same way go-mp3's own package never
// parses ID3 tags beyond skipTags.
package at9container

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Container holds the parsed configData and the raw compressed frame
// buffers sliced out of the "data" chunk, each exactly FrameBytes long
// (taken from configData's encoded frameBytes field, bits [16..26]).
type Container struct {
	ConfigData [4]byte
	Frames     [][]byte

	dataBody []byte
}

type chunkHeader struct {
	ID   [4]byte
	Size uint32
}

// Parse reads a RIFF/WAVE-shaped AT9 container from r.
func Parse(r io.Reader) (*Container, error) {
	var riffHeader struct {
		RIFF [4]byte
		Size uint32
		WAVE [4]byte
	}
	if err := binary.Read(r, binary.LittleEndian, &riffHeader); err != nil {
		return nil, errors.Wrap(err, "at9container: read RIFF header")
	}
	if string(riffHeader.RIFF[:]) != "RIFF" || string(riffHeader.WAVE[:]) != "WAVE" {
		return nil, errors.New("at9container: not a RIFF/WAVE file")
	}

	c := &Container{}
	haveConfig := false

	for {
		var h chunkHeader
		if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrap(err, "at9container: read chunk header")
		}

		padded := int(h.Size)
		if padded%2 != 0 {
			padded++
		}
		body := make([]byte, padded)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, errors.Wrapf(err, "at9container: read %q chunk body", string(h.ID[:]))
		}
		body = body[:h.Size]

		switch string(h.ID[:]) {
		case "fmt ":
			if len(body) < 4 {
				return nil, errors.New("at9container: fmt chunk too short for ATRAC9 config data")
			}
			copy(c.ConfigData[:], body[len(body)-4:])
			haveConfig = true
		case "data":
			c.dataBody = body
		}
	}

	if !haveConfig {
		return nil, errors.New("at9container: no fmt chunk with ATRAC9 config data")
	}
	if c.dataBody == nil {
		return nil, errors.New("at9container: no data chunk")
	}

	frameBytes, err := frameBytesFromConfigData(c.ConfigData)
	if err != nil {
		return nil, err
	}
	for off := 0; off+frameBytes <= len(c.dataBody); off += frameBytes {
		c.Frames = append(c.Frames, c.dataBody[off:off+frameBytes])
	}
	c.dataBody = nil

	return c, nil
}

// frameBytesFromConfigData decodes just enough of configData (spec §6
// "Init input") to slice the data chunk into frames, without importing
// the core decoder package (keeping this package a standalone, reusable
// container reader).
func frameBytesFromConfigData(raw [4]byte) (int, error) {
	v := binary.BigEndian.Uint32(raw[:])
	header := v >> 24
	validationBit := (v >> 16) & 1
	frameBytes := int((v>>5)&0x7FF) + 1
	if header != 0xFE || validationBit != 0 {
		return 0, errors.New("at9container: invalid ATRAC9 config data")
	}
	return frameBytes, nil
}
