package imx219_test

import (
	"testing"

	"github.com/jonas-koeritz/imx219"
)

func TestGainCodeUnity(t *testing.T) {
	code, ok := imx219.GainCode(16)
	if !ok || code != 0x01 {
		t.Errorf("GainCode(16) = %d, %v; want 0x01", code, ok)
	}
}

func TestGainBandTable(t *testing.T) {
	bands := imx219.GainBands()
	if len(bands) != 66 {
		t.Fatalf("got %d bands, want 66", len(bands))
	}
	if bands[0] != (imx219.GainBand{Lower: 160, Upper: 176, Code: 24}) {
		t.Errorf("first band %+v", bands[0])
	}
	if last := bands[len(bands)-1]; last != (imx219.GainBand{Lower: 1600, Upper: 1696, Code: 232}) {
		t.Errorf("last band %+v", last)
	}
	for i, b := range bands {
		if b.Lower >= b.Upper {
			t.Errorf("band %d is empty: %+v", i, b)
		}
	}
}

// Gains whose scaled value sits exactly on a band's upper bound belong to
// that band, the next gain step belongs to the next one.
func TestGainBandBoundaries(t *testing.T) {
	tests := []struct {
		gain int
		want uint8
	}{
		{17, 24},
		{24, 85},
		{25, 96},
		{32, 128},
		{33, 134},
		{40, 154},
		{48, 171},
		{56, 183},
		{64, 192},
		{72, 200},
		{80, 205},
		{88, 210},
		{89, 211},
		{104, 217},
		{120, 222},
		{128, 224},
		{129, 225},
		{136, 226},
		{159, 231},
		{160, 231},
		{163, 231},
		{164, 232},
		{169, 232},
	}
	for _, tt := range tests {
		code, ok := imx219.GainCode(tt.gain)
		if !ok || code != tt.want {
			t.Errorf("GainCode(%d) = %d, %v; want %d", tt.gain, code, ok, tt.want)
		}
	}
}

func TestGainCodePlateau(t *testing.T) {
	for _, g := range []int{141, 145, 146, 150} {
		if code, _ := imx219.GainCode(g); code != 228 {
			t.Errorf("GainCode(%d) = %d, want 228", g, code)
		}
	}
}

func TestGainCodeCoverage(t *testing.T) {
	for g := 16; g <= imx219.ExposureGainMaxGain; g++ {
		if _, ok := imx219.GainCode(g); !ok {
			t.Errorf("GainCode(%d) has no band", g)
		}
	}
	for g := 170; g <= imx219.GainMaxGain; g++ {
		if code, ok := imx219.GainCode(g); ok {
			t.Errorf("GainCode(%d) = %d, want no band", g, code)
		}
	}
}

func TestGainCodeMonotonic(t *testing.T) {
	for _, limit := range []int{imx219.ExposureGainMaxGain, imx219.GainMaxGain} {
		prev := uint8(0)
		for g := 16; g <= limit; g++ {
			code, ok := imx219.GainCode(g)
			if !ok {
				continue
			}
			if code < prev {
				t.Errorf("GainCode(%d) = %d after %d", g, code, prev)
			}
			prev = code
		}
	}
}

func TestClampGain(t *testing.T) {
	if got := imx219.ClampGain(3, 159); got != 16 {
		t.Errorf("ClampGain(3) = %d", got)
	}
	if got := imx219.ClampGain(400, 159); got != 159 {
		t.Errorf("ClampGain(400, 159) = %d", got)
	}
	if got := imx219.ClampGain(400, 511); got != 400 {
		t.Errorf("ClampGain(400, 511) = %d", got)
	}
}
