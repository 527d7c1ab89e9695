package huffman_test

import (
	"testing"

	"github.com/RPCSX/LibAtrac9/internal/bits"
	"github.com/RPCSX/LibAtrac9/internal/huffman"
)

func writeBitsMSB(buf []byte, pos, n int, v uint64) {
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

// TestNewCodebookCanonicalRoundTrip builds a codebook from an explicit,
// known-valid length list (one symbol of length 1, two of length 2) and
// checks every symbol's canonical code decodes back to itself — the
// property assignCanonicalCodes/ReadHuffmanValue must hold regardless of
// which lengths buildLengths happens to produce for the package's own
// runtime tables.
func TestNewCodebookCanonicalRoundTrip(t *testing.T) {
	lengths := []uint8{1, 2, 2}
	cb := huffman.NewCodebook(2, 0, lengths)

	// Canonical assignment: symbol0 -> code 0 (len1), symbol1 -> code 10
	// (len2), symbol2 -> code 11 (len2).
	cases := []struct {
		code, length, symbol int
	}{
		{0, 1, 0},
		{2, 2, 1},
		{3, 2, 2},
	}
	for _, c := range cases {
		buf := make([]byte, 8)
		writeBitsMSB(buf, 0, c.length, uint64(c.code))
		r := bits.New(buf)
		got := cb.ReadHuffmanValue(r, false)
		if got != c.symbol {
			t.Fatalf("code %b len %d: got symbol %d, want %d", c.code, c.length, got, c.symbol)
		}
		if r.Pos() != c.length {
			t.Fatalf("code %b len %d: reader advanced to %d, want %d", c.code, c.length, r.Pos(), c.length)
		}
	}
}

func TestHuffmanScaleFactorsTablesBuilt(t *testing.T) {
	for bitLength := 1; bitLength < 7; bitLength++ {
		if huffman.HuffmanScaleFactorsUnsigned[bitLength] == nil {
			t.Fatalf("HuffmanScaleFactorsUnsigned[%d] is nil", bitLength)
		}
	}
	for bitLength := 1; bitLength < 6; bitLength++ {
		if huffman.HuffmanScaleFactorsSigned[bitLength] == nil {
			t.Fatalf("HuffmanScaleFactorsSigned[%d] is nil", bitLength)
		}
	}
	for set := 0; set < 2; set++ {
		for precision := 0; precision < 8; precision++ {
			for class := 0; class < 4; class++ {
				if huffman.HuffmanSpectrum[set][precision][class] == nil {
					t.Fatalf("HuffmanSpectrum[%d][%d][%d] is nil", set, precision, class)
				}
			}
		}
	}
}

func TestReadHuffmanValueSignExtends(t *testing.T) {
	cb := huffman.HuffmanScaleFactorsSigned[2]
	buf := make([]byte, 8)
	r := bits.New(buf)
	v := cb.ReadHuffmanValue(r, true)
	if v < -2 || v > 1 {
		t.Fatalf("sign-extended 2-bit value out of range: %d", v)
	}
}

func TestDecodeHuffmanValuesAdvancesReader(t *testing.T) {
	cb := huffman.HuffmanSpectrum[0][1][0]
	buf := make([]byte, 32)
	r := bits.New(buf)
	out := make([]int, 64)
	tmp := make([]int, 4)
	before := r.Pos()
	cb.DecodeHuffmanValues(out, 0, 4, r, tmp)
	if r.Pos() <= before {
		t.Fatalf("DecodeHuffmanValues did not advance reader: before=%d after=%d", before, r.Pos())
	}
}
