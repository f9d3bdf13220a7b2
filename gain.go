package imx219

// GainBand maps an analog gain interval to its calibrated ANALOG_GAIN code.
// Lower and Upper are ratios scaled by 160; a gain g in 1/16 steps belongs to
// the band when Lower < g*10 <= Upper.
type GainBand struct {
	Lower uint16
	Upper uint16
	Code  uint8
}

const (
	unityGain     = 16
	unityGainCode = 0x01
)

// gainBands is scanned in order and the first match wins. The codes are
// measured, not derived. 8.8x-9.1x and 9.1x-9.4x share code 228 and the last
// two bands overlap on (1600, 1632]; both are kept as calibrated.
var gainBands = []GainBand{
	{160, 176, 24},    // 1.0x - 1.1x
	{176, 192, 42},    // 1.1x - 1.2x
	{192, 208, 60},    // 1.2x - 1.3x
	{208, 224, 73},    // 1.3x - 1.4x
	{224, 240, 85},    // 1.4x - 1.5x
	{240, 256, 96},    // 1.5x - 1.6x
	{256, 272, 105},   // 1.6x - 1.7x
	{272, 288, 114},   // 1.7x - 1.8x
	{288, 304, 122},   // 1.8x - 1.9x
	{304, 320, 128},   // 1.9x - 2.0x
	{320, 336, 134},   // 2.0x - 2.1x
	{336, 352, 140},   // 2.1x - 2.2x
	{352, 368, 145},   // 2.2x - 2.3x
	{368, 384, 150},   // 2.3x - 2.4x
	{384, 400, 154},   // 2.4x - 2.5x
	{400, 416, 158},   // 2.5x - 2.6x
	{416, 432, 162},   // 2.6x - 2.7x
	{432, 448, 165},   // 2.7x - 2.8x
	{448, 464, 168},   // 2.8x - 2.9x
	{464, 480, 171},   // 2.9x - 3.0x
	{480, 496, 174},   // 3.0x - 3.1x
	{496, 512, 176},   // 3.1x - 3.2x
	{512, 528, 179},   // 3.2x - 3.3x
	{528, 544, 181},   // 3.3x - 3.4x
	{544, 560, 183},   // 3.4x - 3.5x
	{560, 576, 185},   // 3.5x - 3.6x
	{576, 592, 187},   // 3.6x - 3.7x
	{592, 608, 189},   // 3.7x - 3.8x
	{608, 624, 191},   // 3.8x - 3.9x
	{624, 640, 192},   // 3.9x - 4.0x
	{640, 656, 194},   // 4.0x - 4.1x
	{656, 672, 195},   // 4.1x - 4.2x
	{672, 688, 197},   // 4.2x - 4.3x
	{688, 704, 198},   // 4.3x - 4.4x
	{704, 720, 200},   // 4.4x - 4.5x
	{720, 736, 201},   // 4.5x - 4.6x
	{736, 752, 202},   // 4.6x - 4.7x
	{752, 768, 203},   // 4.7x - 4.8x
	{768, 784, 204},   // 4.8x - 4.9x
	{784, 800, 205},   // 4.9x - 5.0x
	{800, 816, 206},   // 5.0x - 5.1x
	{816, 832, 207},   // 5.1x - 5.2x
	{832, 848, 208},   // 5.2x - 5.3x
	{848, 864, 209},   // 5.3x - 5.4x
	{864, 880, 210},   // 5.4x - 5.5x
	{880, 912, 211},   // 5.5x - 5.7x
	{912, 928, 212},   // 5.7x - 5.8x
	{928, 944, 213},   // 5.8x - 5.9x
	{944, 992, 215},   // 5.9x - 6.2x
	{992, 1024, 216},  // 6.2x - 6.4x
	{1024, 1040, 217}, // 6.4x - 6.5x
	{1040, 1072, 218}, // 6.5x - 6.7x
	{1072, 1104, 219}, // 6.7x - 6.9x
	{1104, 1136, 220}, // 6.9x - 7.1x
	{1136, 1168, 221}, // 7.1x - 7.3x
	{1168, 1200, 222}, // 7.3x - 7.5x
	{1200, 1232, 223}, // 7.5x - 7.7x
	{1232, 1280, 224}, // 7.7x - 8.0x
	{1280, 1328, 225}, // 8.0x - 8.3x
	{1328, 1360, 226}, // 8.3x - 8.5x
	{1360, 1408, 227}, // 8.5x - 8.8x
	{1408, 1456, 228}, // 8.8x - 9.1x
	{1456, 1504, 228}, // 9.1x - 9.4x
	{1504, 1568, 230}, // 9.4x - 9.8x
	{1568, 1632, 231}, // 9.8x - 10.2x
	{1600, 1696, 232}, // 10.0x - 10.6x
}

// Contains reports whether gain (1/16 steps) falls inside the band.
func (b GainBand) Contains(gain int) bool {
	v := gain * 10
	return int(b.Lower) < v && v <= int(b.Upper)
}

// GainBands returns a copy of the calibration table.
func GainBands() []GainBand {
	bands := make([]GainBand, len(gainBands))
	copy(bands, gainBands)
	return bands
}

// GainCode returns the ANALOG_GAIN code for gain in 1/16 steps. Unity gain
// has a dedicated code. ok is false when no band covers gain, in which case
// nothing should be written.
func GainCode(gain int) (code uint8, ok bool) {
	if gain == unityGain {
		return unityGainCode, true
	}
	for _, b := range gainBands {
		if b.Contains(gain) {
			return b.Code, true
		}
	}
	return 0, false
}

// ClampGain limits gain to [16, limit].
func ClampGain(gain, limit int) int {
	if gain < unityGain {
		return unityGain
	}
	if gain > limit {
		return limit
	}
	return gain
}
