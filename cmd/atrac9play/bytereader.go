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

import "bytes"

// newByteReader wraps a fully-decoded PCM buffer as an io.Reader, the
// shape oto.Player consumes (mirroring go-mp3's own Decoder, which is
// itself an io.Reader fed straight into oto).
func newByteReader(buf []byte) *bytes.Reader {
	return bytes.NewReader(buf)
}
