package imx219

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// Sensor controls one IMX219. All operations are serialized; exposure and
// gain always see the frame timing of the last fully committed mode.
type Sensor struct {
	hw     Hardware
	scope  sync.Locker
	logger *log.Logger

	mu          sync.Mutex
	initialized bool
	power       PowerState
	fault       bool
	mode        *Mode
	format      *Format
	vts         int
	exposure    int
	gain        int
	interval    FrameInterval
	captureMode int
}

type Option func(*Sensor)

func WithLogger(logger *log.Logger) Option {
	return func(s *Sensor) {
		s.logger = logger
	}
}

// State is a snapshot of the sensor's software state.
type State struct {
	Initialized bool       `json:"initialized"`
	Power       PowerState `json:"power"`
	Fault       bool       `json:"fault,omitempty"`
	Streaming   bool       `json:"streaming"`
	Mode        string     `json:"mode,omitempty"`
	Width       int        `json:"width"`
	Height      int        `json:"height"`
	Format      MbusCode   `json:"format"`
	VTS         int        `json:"vts"`
	Exposure    int        `json:"exposure"`
	Gain        int        `json:"gain"`
}

func New(hw Hardware, opts ...Option) (*Sensor, error) {
	if hw.Bus == nil || hw.GPIO == nil || hw.Clock == nil || hw.Rails == nil {
		return nil, errors.New("failed to create sensor: incomplete hardware")
	}
	if hw.Sleep == nil {
		hw.Sleep = time.Sleep
	}

	s := &Sensor{
		hw:     hw,
		scope:  hw.Scope,
		logger: log.Default(),
		format: &formats[0],
	}
	if s.scope == nil {
		if l, ok := hw.Bus.(sync.Locker); ok {
			s.scope = l
		} else {
			s.scope = &sync.Mutex{}
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Sensor) writeRegister(reg register, value uint8) error {
	if reg.ReadOnly {
		return fmt.Errorf("register 0x%04X is read-only", reg.Address)
	}
	return s.write(reg.Address, value)
}

func (s *Sensor) write(address uint16, value uint8) error {
	if err := s.hw.Bus.WriteRegister(address, value); err != nil {
		return &BusError{Op: "write register", Address: address, Err: err}
	}
	return nil
}

func (s *Sensor) readRegister(reg register) (uint8, error) {
	value, err := s.hw.Bus.ReadRegister(reg.Address)
	if err != nil {
		return 0, &BusError{Op: "read register", Address: reg.Address, Err: err}
	}
	return value, nil
}

// writeArray writes regs in order and stops at the first failure.
func (s *Sensor) writeArray(regs []Register) error {
	for _, r := range regs {
		if err := s.write(r.Address, r.Value); err != nil {
			return err
		}
	}
	return nil
}

// Initialize checks the chip identity and resets the control state. The
// sensor must be powered. Nothing else but SetPower and Reset is accepted
// before Initialize succeeds.
func (s *Sensor) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scope.Lock()
	err := s.detect()
	s.scope.Unlock()
	if err != nil {
		s.logger.Printf("imx219: chip found is not a target chip: %v", err)
		return err
	}

	s.initialized = true
	s.exposure = 0
	s.gain = 0
	s.interval = defaultFrameInterval
	s.captureMode = 0
	return nil
}

func (s *Sensor) detect() error {
	high, err := s.readRegister(MODEL_ID_HIGH)
	if err != nil {
		return fmt.Errorf("failed to read model id: %w", err)
	}
	if high&modelIDHighMask != modelIDHigh {
		return fmt.Errorf("%w: model id high 0x%02X", ErrDeviceNotFound, high)
	}

	low, err := s.readRegister(MODEL_ID_LOW)
	if err != nil {
		return fmt.Errorf("failed to read model id: %w", err)
	}
	if low != modelIDLow {
		return fmt.Errorf("%w: model id low 0x%02X", ErrDeviceNotFound, low)
	}
	return nil
}

// SelectMode programs the catalog mode matching width x height exactly.
func (s *Sensor) SelectMode(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}

	m := findMode(width, height)
	if m == nil {
		return fmt.Errorf("%w: %dx%d", ErrUnsupportedMode, width, height)
	}

	if err := s.program(m); err != nil {
		return fmt.Errorf("failed to select mode %s: %w", m, err)
	}
	return nil
}

// program writes the default, format and mode registers, runs the mode hook
// and then commits m. vts is published last. Callers hold mu.
func (s *Sensor) program(m *Mode) error {
	s.scope.Lock()
	err := s.programRegisters(m)
	s.scope.Unlock()
	if err != nil {
		return err
	}

	s.mode = m
	s.vts = m.VTS
	s.logger.Printf("imx219: mode set %dx%d vts=%d", m.Width, m.Height, m.VTS)
	return nil
}

func (s *Sensor) programRegisters(m *Mode) error {
	if err := s.writeArray(defaultRegisters); err != nil {
		return fmt.Errorf("failed to write default registers: %w", err)
	}
	if err := s.writeArray(s.format.Registers); err != nil {
		return fmt.Errorf("failed to write format registers: %w", err)
	}
	if err := s.writeArray(m.Registers); err != nil {
		return fmt.Errorf("failed to write mode registers: %w", err)
	}
	if m.PostConfigure != nil {
		if err := m.PostConfigure(s.hw.Bus); err != nil {
			return fmt.Errorf("failed to post-configure: %w", err)
		}
	}
	return nil
}

// SetStreaming starts or stops the stream. Starting reprograms the active
// mode from scratch; stopping writes nothing.
func (s *Sensor) SetStreaming(enable bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !enable {
		if s.power == StateStreaming {
			s.power = StatePoweredOn
		}
		return nil
	}

	if !s.initialized {
		return ErrNotInitialized
	}
	switch s.power {
	case StateStreaming:
		return nil
	case StatePoweredOn:
	default:
		return fmt.Errorf("%w: cannot stream while %s", ErrInvalidTransition, s.power)
	}
	if s.mode == nil {
		return ErrNoActiveMode
	}

	if err := s.program(s.mode); err != nil {
		return fmt.Errorf("failed to start stream: %w", err)
	}
	s.power = StateStreaming
	return nil
}

// SetFormat selects the media-bus format used by the next mode programming.
func (s *Sensor) SetFormat(code MbusCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := findFormat(code)
	if f == nil {
		return fmt.Errorf("%w: 0x%04X", ErrUnsupportedFormat, uint32(code))
	}
	s.format = f
	return nil
}

// CurrentMode returns a copy of the active mode.
func (s *Sensor) CurrentMode() (Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == nil {
		return Mode{}, ErrNoActiveMode
	}
	return s.mode.snapshot(), nil
}

func (s *Sensor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Initialized: s.initialized,
		Power:       s.power,
		Fault:       s.fault,
		Streaming:   s.power == StateStreaming,
		Format:      s.format.Code,
		VTS:         s.vts,
		Exposure:    s.exposure,
		Gain:        s.gain,
	}
	if s.mode != nil {
		st.Mode = s.mode.Name
		st.Width = s.mode.Width
		st.Height = s.mode.Height
	}
	return st
}

func QueryControl(id ControlID) (ControlInfo, error) {
	info, ok := controls[id]
	if !ok {
		return ControlInfo{}, fmt.Errorf("%w: %d", ErrUnknownControl, id)
	}
	return info, nil
}

func (s *Sensor) BusConfig() BusConfig {
	return csi2BusConfig
}

func (s *Sensor) CaptureParams() CaptureParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CaptureParams{TimePerFrame: s.interval, CaptureMode: s.captureMode}
}

// SetCaptureMode records the capture mode. It fails until Initialize has set
// a frame interval.
func (s *Sensor) SetCaptureMode(mode int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.interval.Numerator == 0 {
		return ErrInvalidFrameInterval
	}
	s.captureMode = mode
	return nil
}
