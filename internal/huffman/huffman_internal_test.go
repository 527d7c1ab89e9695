package huffman

import (
	"testing"

	"github.com/RPCSX/LibAtrac9/internal/bits"
)

// codeOf maps a codebook's production lookup table (built once in init())
// back into a symbol -> (code, length) table, the inverse of the
// direct-lookup decode table NewCodebook builds. White-box: it reaches
// into Codebook's unexported fields, which only a same-package test can do.
func codeOf(cb *Codebook) map[int][2]int {
	out := make(map[int][2]int, cb.ValueMax+1)
	for i, length := range cb.lookupLength {
		if length == 0 {
			continue
		}
		symbol := int(cb.lookupSymbol[i])
		if _, ok := out[symbol]; ok {
			continue
		}
		out[symbol] = [2]int{i >> (uint(cb.MaxCodeLength) - uint(length)), int(length)}
	}
	return out
}

// writeBitsMSB appends the low n bits of v to buf (MSB-first) starting at
// bit offset pos.
func writeBitsMSB(buf []byte, pos, n int, v int) {
	for i := 0; i < n; i++ {
		bit := (v >> uint(n-1-i)) & 1
		bytePos := (pos + i) / 8
		bitIdx := (pos + i) % 8
		if bit == 1 {
			buf[bytePos] |= 1 << uint(7-bitIdx)
		}
	}
}

// checkRoundTrip concatenates every symbol 0..cb.ValueMax's canonical code
// (in that order) and asserts decoding the concatenation recovers exactly
// the symbol sequence 0..ValueMax, the property spec.md §8 states for
// "each declared codebook."
func checkRoundTrip(t *testing.T, name string, cb *Codebook) {
	t.Helper()
	codes := codeOf(cb)

	totalBits := 0
	for symbol := 0; symbol <= cb.ValueMax; symbol++ {
		cl, ok := codes[symbol]
		if !ok {
			t.Fatalf("%s: symbol %d has no assigned code", name, symbol)
		}
		totalBits += cl[1]
	}

	buf := make([]byte, totalBits/8+2)
	pos := 0
	for symbol := 0; symbol <= cb.ValueMax; symbol++ {
		cl := codes[symbol]
		writeBitsMSB(buf, pos, cl[1], cl[0])
		pos += cl[1]
	}

	br := bits.New(buf)
	for symbol := 0; symbol <= cb.ValueMax; symbol++ {
		got := cb.ReadHuffmanValue(br, false)
		if got != symbol {
			t.Fatalf("%s: decoding concatenated codes at symbol %d got %d", name, symbol, got)
		}
	}
}

func TestProductionCodebooksRoundTripConcatenatedCodes(t *testing.T) {
	for bitLength := 1; bitLength < len(HuffmanScaleFactorsUnsigned); bitLength++ {
		checkRoundTrip(t, "HuffmanScaleFactorsUnsigned", HuffmanScaleFactorsUnsigned[bitLength])
	}
	for bitLength := 1; bitLength < len(HuffmanScaleFactorsSigned); bitLength++ {
		checkRoundTrip(t, "HuffmanScaleFactorsSigned", HuffmanScaleFactorsSigned[bitLength])
	}
	for set := 0; set < 2; set++ {
		for precision := 0; precision < 8; precision++ {
			for class := 0; class < 4; class++ {
				checkRoundTrip(t, "HuffmanSpectrum", HuffmanSpectrum[set][precision][class])
			}
		}
	}
}
