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

package bits_test

import (
	"testing"

	. "github.com/RPCSX/LibAtrac9/internal/bits"
)

func TestReadInt(t *testing.T) {
	b1 := byte(85)  // 01010101
	b2 := byte(170) // 10101010
	b3 := byte(204) // 11001100
	b4 := byte(51)  // 00110011
	b := New([]byte{b1, b2, b3, b4})
	if v := b.ReadInt(1); v != 0 {
		t.Fatalf("got %d, want 0", v)
	}
	if v := b.ReadInt(1); v != 1 {
		t.Fatalf("got %d, want 1", v)
	}
	if v := b.ReadInt(1); v != 0 {
		t.Fatalf("got %d, want 0", v)
	}
	if v := b.ReadInt(1); v != 1 {
		t.Fatalf("got %d, want 1", v)
	}
	if v := b.ReadInt(8); v != 90 /* 01011010 */ {
		t.Fatalf("got %d, want 90", v)
	}
	if v := b.ReadInt(12); v != 2764 /* 101011001100 */ {
		t.Fatalf("got %d, want 2764", v)
	}
}

func TestReadIntRoundTrip(t *testing.T) {
	for n := 1; n <= 32; n++ {
		buf := make([]byte, 8)
		for i := range buf {
			buf[i] = 0xA5
		}
		max := uint64(1)<<uint(n) - 1
		for _, v := range []uint64{0, 1, max / 2, max} {
			writeBits(buf, 3, n, v)
			r := New(buf)
			r.SetPos(3)
			got := uint64(r.ReadInt(n))
			if got != v {
				t.Fatalf("n=%d v=%d: got %d", n, v, got)
			}
		}
	}
}

func writeBits(buf []byte, pos, n int, v uint64) {
	for i := 0; i < n; i++ {
		bit := (v >> uint(n-1-i)) & 1
		bytePos := (pos + i) / 8
		bitIdx := (pos + i) % 8
		if bit == 1 {
			buf[bytePos] |= 1 << uint(7-bitIdx)
		} else {
			buf[bytePos] &^= 1 << uint(7-bitIdx)
		}
	}
}

func TestReadSignedIntRoundTrip(t *testing.T) {
	for n := 2; n <= 32; n++ {
		buf := make([]byte, 8)
		vals := []int64{0, 1, -1, int64(1)<<uint(n-1) - 1, -(int64(1) << uint(n-1))}
		for _, v := range vals {
			writeBits(buf, 5, n, uint64(v)&((uint64(1)<<uint(n))-1))
			r := New(buf)
			r.SetPos(5)
			got := r.ReadSignedInt(n)
			if int64(got) != v {
				t.Fatalf("n=%d v=%d: got %d", n, v, got)
			}
		}
	}
}

func TestReadOffsetBinary(t *testing.T) {
	// 5 bits, bias -16: raw 0 -> -16, raw 31 -> 15, raw 16 -> 0.
	buf := []byte{0x00}
	r := New(buf)
	if v := r.ReadOffsetBinary(5); v != -16 {
		t.Fatalf("got %d, want -16", v)
	}

	buf = []byte{0xF8} // 11111 000
	r = New(buf)
	if v := r.ReadOffsetBinary(5); v != 15 {
		t.Fatalf("got %d, want 15", v)
	}
}

func TestAlignPosition(t *testing.T) {
	buf := make([]byte, 4)
	r := New(buf)
	r.ReadInt(3)
	r.AlignPosition(8)
	if r.Pos() != 8 {
		t.Fatalf("got %d, want 8", r.Pos())
	}
	r.AlignPosition(8)
	if r.Pos() != 8 {
		t.Fatalf("got %d, want 8 (already aligned)", r.Pos())
	}
}

func TestPeekIntDoesNotAdvance(t *testing.T) {
	buf := []byte{0xAB, 0xCD}
	r := New(buf)
	peeked := r.PeekInt(8)
	if peeked != 0xAB {
		t.Fatalf("got %#x, want 0xab", peeked)
	}
	if r.Pos() != 0 {
		t.Fatalf("PeekInt advanced position to %d", r.Pos())
	}
	if got := r.ReadInt(8); got != 0xAB {
		t.Fatalf("got %#x, want 0xab", got)
	}
}

func TestBytesUsed(t *testing.T) {
	buf := make([]byte, 4)
	r := New(buf)
	r.ReadInt(17)
	if got := r.BytesUsed(); got != 3 {
		t.Fatalf("got %d, want 3", got)
	}
}
