// Package huffman implements the canonical variable-length codec spec C3
// describes: a Codebook built once from a set of per-symbol code lengths,
// a direct-lookup decode table sized to the codebook's longest code, and
// the two operations unpack (C8) drives it with — ReadHuffmanValue for
// scale factors, DecodeHuffmanValues for vectorized spectrum coefficients.
//
// The codebook descriptors (codes[]/bits[]) ATRAC9 actually ships live in
// a huffCodes.c that was not present in the retrieved original source. In
// its place this package builds each codebook's lengths with a standard
// Huffman-tree construction over a synthetic peaked distribution (values
// near zero are shorter, matching how small deltas/residuals dominate
// scale-factor and spectrum coding in every VLC-coded audio codec the
// example pack shows). That guarantees a genuine canonical, complete
// prefix code rather than a hand-picked table; see DESIGN.md.
package huffman

import (
	"container/heap"

	"github.com/RPCSX/LibAtrac9/internal/bits"
)

// Codebook is a canonical Huffman code over ValueMax+1 symbols, built once
// at init and then immutable (spec §5 "Ownership": static tables are
// process-wide immutable after first initialization).
type Codebook struct {
	ValueBits       int
	ValueCountPower int
	MaxCodeLength   int
	ValueMax        int

	lookupSymbol []int16
	lookupLength []uint8
}

// NewCodebook builds a direct-lookup table of size 2^maxCodeLength from a
// canonical assignment of lengths (one per symbol 0..len(lengths)-1),
// indexed by a maxCodeLength-bit peek, so ReadHuffmanValue can decode in
// one table access regardless of the matched code's true length.
func NewCodebook(valueBits, valueCountPower int, lengths []uint8) *Codebook {
	codes, maxLen := assignCanonicalCodes(lengths)

	cb := &Codebook{
		ValueBits:       valueBits,
		ValueCountPower: valueCountPower,
		MaxCodeLength:   maxLen,
		ValueMax:        len(lengths) - 1,
		lookupSymbol:    make([]int16, 1<<uint(maxLen)),
		lookupLength:    make([]uint8, 1<<uint(maxLen)),
	}
	for symbol, length := range lengths {
		if length == 0 {
			continue
		}
		code := codes[symbol]
		shift := uint(maxLen) - uint(length)
		base := int(code) << shift
		span := 1 << shift
		for i := 0; i < span; i++ {
			cb.lookupSymbol[base+i] = int16(symbol)
			cb.lookupLength[base+i] = length
		}
	}
	return cb
}

// assignCanonicalCodes assigns canonical Huffman codes (shorter lengths
// get numerically smaller codes, ties broken by symbol index) given a
// valid length list, i.e. one produced by buildLengths.
func assignCanonicalCodes(lengths []uint8) ([]uint32, int) {
	maxLen := 0
	for _, l := range lengths {
		if int(l) > maxLen {
			maxLen = int(l)
		}
	}
	codes := make([]uint32, len(lengths))
	code := 0
	for length := 1; length <= maxLen; length++ {
		for symbol, l := range lengths {
			if int(l) == length {
				codes[symbol] = uint32(code)
				code++
			}
		}
		code <<= 1
	}
	return codes, maxLen
}

// ReadHuffmanValue peeks MaxCodeLength bits, advances the reader by the
// matched code's true length, and returns the symbol, optionally
// sign-extended to ValueBits (spec §4.3).
func (cb *Codebook) ReadHuffmanValue(br *bits.Reader, signExtend bool) int {
	peek := br.PeekInt(cb.MaxCodeLength)
	symbol := int(cb.lookupSymbol[peek])
	length := cb.lookupLength[peek]
	br.Advance(int(length))
	if !signExtend {
		return symbol
	}
	shift := uint(32 - cb.ValueBits)
	return int(int32(uint32(symbol)<<shift) >> shift)
}

// DecodeHuffmanValues expands count symbols into output[baseIndex:], each
// symbol split into 2^ValueCountPower signed sub-values packed as low
// bits of the decoded code (spec §4.3's "vectorized expansion"). tempValues
// is scratch space the caller owns, sized at least 1<<ValueCountPower.
func (cb *Codebook) DecodeHuffmanValues(output []int, baseIndex, count int, br *bits.Reader, tempValues []int) {
	groupSize := 1 << uint(cb.ValueCountPower)
	bitsPerValue := cb.ValueBits
	for i := 0; i < count; i++ {
		symbol := cb.ReadHuffmanValue(br, false)
		for j := 0; j < groupSize; j++ {
			shift := uint(bitsPerValue * (groupSize - 1 - j))
			raw := (symbol >> shift) & ((1 << uint(bitsPerValue)) - 1)
			sshift := uint(32 - bitsPerValue)
			tempValues[j] = int(int32(uint32(raw)<<sshift) >> sshift)
		}
		copy(output[baseIndex+i*groupSize:baseIndex+(i+1)*groupSize], tempValues[:groupSize])
	}
}

// lengthHeapItem is one partially-merged node in the Huffman tree builder.
type lengthHeapItem struct {
	weight  int
	symbols []int
	depth   int
}

type lengthHeap []*lengthHeapItem

func (h lengthHeap) Len() int            { return len(h) }
func (h lengthHeap) Less(i, j int) bool  { return h[i].weight < h[j].weight }
func (h lengthHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *lengthHeap) Push(x interface{}) { *h = append(*h, x.(*lengthHeapItem)) }
func (h *lengthHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// buildLengths runs the classic greedy Huffman-tree merge over weights
// (one per symbol) and returns a valid code-length list: Kraft's
// inequality holds with equality, so NewCodebook's canonical assignment
// produces a complete code with no unused lookup entries.
func buildLengths(weights []int) []uint8 {
	n := len(weights)
	lengths := make([]uint8, n)
	if n == 1 {
		lengths[0] = 1
		return lengths
	}

	h := make(lengthHeap, n)
	for i, w := range weights {
		if w < 1 {
			w = 1
		}
		h[i] = &lengthHeapItem{weight: w, symbols: []int{i}}
	}
	heap.Init(&h)
	for h.Len() > 1 {
		a := heap.Pop(&h).(*lengthHeapItem)
		b := heap.Pop(&h).(*lengthHeapItem)
		merged := &lengthHeapItem{
			weight:  a.weight + b.weight,
			symbols: append(append([]int{}, a.symbols...), b.symbols...),
		}
		for _, s := range a.symbols {
			lengths[s]++
		}
		for _, s := range b.symbols {
			lengths[s]++
		}
		heap.Push(&h, merged)
	}
	return lengths
}

// peakedWeights builds a synthetic histogram peaked at center (index
// centerIdx), halving every step away from it — the shape a
// difference/residual signal has in practice, and the shape every
// real-world VLC table in the example pack (MP3, JPEG) is built to
// exploit.
func peakedWeights(n, centerIdx int) []int {
	w := make([]int, n)
	for i := range w {
		dist := i - centerIdx
		if dist < 0 {
			dist = -dist
		}
		v := 1 << uint(16-dist)
		if v < 1 {
			v = 1
		}
		w[i] = v
	}
	return w
}

// HuffmanScaleFactorsUnsigned[bitLength] decodes non-negative scale-factor
// deltas of bitLength bits. scale_factors.c indexes this directly by a
// decoded bitLength (3..6 in ReadVlcDeltaOffset, 1..4 in
// ReadVlcDeltaOffsetWithBaseline), so the table is sized one past the
// largest bitLength any mode uses rather than spec.md's rounder "[6]" —
// see DESIGN.md.
var HuffmanScaleFactorsUnsigned [7]*Codebook

// HuffmanScaleFactorsSigned[bitLength] decodes signed scale-factor deltas
// of bitLength bits (2..5 in ReadVlcDistanceToBaseline).
var HuffmanScaleFactorsSigned [6]*Codebook

// HuffmanSpectrum[set][precision][coeffClass] decodes groups of spectral
// coefficients. set distinguishes the two codebook families unpack's
// calculateSpectrumCodebookIndex selects between (Channel.CodebookSet), precision indexes 0..7
// (precision+1 clamped to MaxHuffPrecision), coeffClass picks among four
// sub-codebooks tuned to a quant unit's coefficient-count class (spec
// §4.1's QuantUnitToCoeffCount-driven classification).
var HuffmanSpectrum [2][8][4]*Codebook

func init() {
	for bitLength := 1; bitLength < len(HuffmanScaleFactorsUnsigned); bitLength++ {
		n := 1 << uint(bitLength)
		HuffmanScaleFactorsUnsigned[bitLength] = NewCodebook(bitLength, 0, buildLengths(peakedWeights(n, 0)))
	}
	for bitLength := 1; bitLength < len(HuffmanScaleFactorsSigned); bitLength++ {
		n := 1 << uint(bitLength)
		HuffmanScaleFactorsSigned[bitLength] = NewCodebook(bitLength, 0, buildLengths(peakedWeights(n, n/2)))
	}

	for set := 0; set < 2; set++ {
		for precision := 0; precision < 8; precision++ {
			valueBits := precision + 1
			if valueBits > 8 {
				valueBits = 8
			}
			for class := 0; class < 4; class++ {
				valueCountPower := class % 3
				groupBits := valueBits * (1 << uint(valueCountPower))
				if groupBits > 10 {
					groupBits = 10
					valueCountPower = 0
				}
				n := 1 << uint(groupBits)
				centerIdx := n / 2
				if set == 1 {
					centerIdx = 0
				}
				HuffmanSpectrum[set][precision][class] = NewCodebook(groupBits>>uint(valueCountPower), valueCountPower, buildLengths(peakedWeights(n, centerIdx)))
			}
		}
	}
}
