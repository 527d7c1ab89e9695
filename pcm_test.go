package atrac9

import "testing"

func TestRoundDoubleHalfUp(t *testing.T) {
	cases := map[float64]int{
		0.4:  0,
		0.5:  1,
		0.6:  1,
		-0.4: 0,
		-0.5: 0,
		-0.6: -1,
		1.5:  2,
		-1.5: -1,
	}
	for in, want := range cases {
		if got := roundDouble(in); got != want {
			t.Errorf("roundDouble(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestClampS16Saturates(t *testing.T) {
	if got := clampS16(40000); got != 32767 {
		t.Errorf("clampS16(40000) = %d, want 32767", got)
	}
	if got := clampS16(-40000); got != -32768 {
		t.Errorf("clampS16(-40000) = %d, want -32768", got)
	}
	if got := clampS16(100); got != 100 {
		t.Errorf("clampS16(100) = %d, want 100", got)
	}
}

func TestClampS32Saturates(t *testing.T) {
	if got := clampS32(1 << 40); got != 2147483647 {
		t.Errorf("clampS32(2^40) = %d, want 2147483647", got)
	}
	if got := clampS32(-(1 << 40)); got != -2147483648 {
		t.Errorf("clampS32(-2^40) = %d, want -2147483648", got)
	}
}

func TestToS16RoundTripsUnityGain(t *testing.T) {
	out := ToS16([]float64{1.0, -1.0, 0.0})
	if out[0] != 32767 {
		t.Errorf("ToS16(1.0) = %d, want 32767 (saturated, not 32768)", out[0])
	}
	if out[1] != -32768 {
		t.Errorf("ToS16(-1.0) = %d, want -32768", out[1])
	}
	if out[2] != 0 {
		t.Errorf("ToS16(0.0) = %d, want 0", out[2])
	}
}

func TestToF64IsPassThrough(t *testing.T) {
	in := []float64{0.1, -0.2, 3.0}
	out := ToF64(in)
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("ToF64 mutated sample %d: got %v, want %v", i, out[i], in[i])
		}
	}
}
