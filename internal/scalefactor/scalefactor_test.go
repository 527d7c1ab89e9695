package scalefactor_test

import (
	"testing"

	"github.com/RPCSX/LibAtrac9/internal/bits"
	"github.com/RPCSX/LibAtrac9/internal/frame"
	"github.com/RPCSX/LibAtrac9/internal/scalefactor"
	"github.com/RPCSX/LibAtrac9/internal/status"
)

func TestReadScaleFactorsRejectsMode2OnFirstInSuperframe(t *testing.T) {
	block := &frame.Block{
		FirstInSuperframe:     true,
		ExtensionUnit:         4,
		QuantizationUnitsPrev: 4,
	}
	ch := &frame.Channel{ChannelIndex: 0}
	primary := ch

	// channel 0, mode 2 ("distance to baseline") is written as the first
	// 2 bits of the bitstream.
	buf := []byte{0b10_000000}
	br := bits.New(buf)

	st := scalefactor.ReadScaleFactors(ch, block, primary, br)
	if st != status.UnpackScaleFactorModeInvalid {
		t.Fatalf("got status %v, want UnpackScaleFactorModeInvalid", st)
	}
}

func TestReadScaleFactorsClcModeInRange(t *testing.T) {
	block := &frame.Block{ExtensionUnit: 4}
	ch := &frame.Channel{ChannelIndex: 0}
	primary := ch

	// mode 1 (CLC): 2 bits "01", then bitLength(2 bits), baseValue(5 bits
	// if bitLength<5), then ExtensionUnit * bitLength value bits. Zero
	// buffer keeps every decoded scale factor at baseValue (0..31 range
	// either way).
	buf := make([]byte, 16)
	buf[0] = 0b01_000000
	br := bits.New(buf)

	st := scalefactor.ReadScaleFactors(ch, block, primary, br)
	if !st.OK() {
		t.Fatalf("unexpected status %v", st)
	}
	for i := 0; i < block.ExtensionUnit; i++ {
		if ch.ScaleFactors[i] < 0 || ch.ScaleFactors[i] > 31 {
			t.Fatalf("ScaleFactors[%d] = %d, out of [0,31]", i, ch.ScaleFactors[i])
		}
	}
}

func TestReadScaleFactorsSnapshotsPrev(t *testing.T) {
	block := &frame.Block{ExtensionUnit: 2}
	ch := &frame.Channel{ChannelIndex: 0}
	primary := ch
	buf := make([]byte, 16)
	buf[0] = 0b01_000000
	br := bits.New(buf)

	if st := scalefactor.ReadScaleFactors(ch, block, primary, br); !st.OK() {
		t.Fatalf("unexpected status %v", st)
	}
	if ch.ScaleFactorsPrev != ch.ScaleFactors {
		t.Fatalf("ScaleFactorsPrev was not snapshotted from ScaleFactors")
	}
}
