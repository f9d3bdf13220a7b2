package imx219

import "fmt"

const (
	// MaxExposure is the 20-bit ceiling of the exposure control (1/16 lines).
	MaxExposure = 0xFFFFF

	// Gain ceilings of the two set paths. They differ and are kept apart.
	ExposureGainMaxGain = 10*16 - 1
	GainMaxGain         = 0x1FF
)

// EncodeExposure clamps e to [0, MaxExposure] and converts it to the coarse
// integration time in lines. The low four bits are truncated.
func EncodeExposure(e int) int {
	if e < 0 {
		e = 0
	}
	if e > MaxExposure {
		e = MaxExposure
	}
	return e >> 4
}

// FrameLength returns the frame length needed for shutter lines with the
// active mode's vts. Exposures longer than the nominal frame stretch it.
func FrameLength(shutter, vts int) int {
	if shutter > vts-frameLimit {
		return shutter + frameLimit
	}
	return vts
}

// writeExposure programs integration time then frame length, low byte first.
// Callers hold mu and the bus scope.
func (s *Sensor) writeExposure(shutter int) error {
	if err := s.writeRegister(COARSE_INTEGRATION_LOW, uint8(shutter&0xFF)); err != nil {
		return err
	}
	if err := s.writeRegister(COARSE_INTEGRATION_HIGH, uint8(shutter>>8&0xFF)); err != nil {
		return err
	}

	frameLength := FrameLength(shutter, s.vts)
	if err := s.writeRegister(FRAME_LENGTH_LOW, uint8(frameLength&0xFF)); err != nil {
		return err
	}
	return s.writeRegister(FRAME_LENGTH_HIGH, uint8(frameLength>>8))
}

// writeGain programs the gain code for gain. A gain outside every band is
// silently not written.
func (s *Sensor) writeGain(gain int) error {
	code, ok := GainCode(gain)
	if !ok {
		return nil
	}
	return s.writeRegister(ANALOG_GAIN, code)
}

// SetExposure sets the exposure in 1/16 line units. The value is clamped,
// never rejected. Exposure() afterwards reports the encoded line count.
func (s *Sensor) SetExposure(e int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}

	shutter := EncodeExposure(e)

	s.scope.Lock()
	err := s.writeExposure(shutter)
	s.scope.Unlock()
	if err != nil {
		return fmt.Errorf("failed to set exposure: %w", err)
	}

	s.exposure = shutter
	return nil
}

// SetGain sets the analog gain in 1/16 steps, clamped to [16, GainMaxGain].
func (s *Sensor) SetGain(gain int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}

	gain = ClampGain(gain, GainMaxGain)

	s.scope.Lock()
	err := s.writeGain(gain)
	s.scope.Unlock()
	if err != nil {
		return fmt.Errorf("failed to set gain: %w", err)
	}

	s.gain = gain
	return nil
}

// SetExposureGain sets exposure and gain in one batch. Gain is clamped to
// [16, ExposureGainMaxGain], which is narrower than SetGain's range.
func (s *Sensor) SetExposureGain(e, gain int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}

	gain = ClampGain(gain, ExposureGainMaxGain)
	shutter := EncodeExposure(e)

	s.scope.Lock()
	err := s.writeExposure(shutter)
	if err == nil {
		err = s.writeGain(gain)
	}
	s.scope.Unlock()
	if err != nil {
		return fmt.Errorf("failed to set exposure and gain: %w", err)
	}

	s.exposure = shutter
	s.gain = gain
	return nil
}

// Exposure returns the last programmed coarse integration time in lines.
func (s *Sensor) Exposure() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exposure
}

// Gain returns the last programmed gain in 1/16 steps.
func (s *Sensor) Gain() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gain
}
