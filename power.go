package imx219

import (
	"fmt"
	"strings"
	"time"
)

type PowerState uint8

const (
	StateOff PowerState = iota
	StateStandby
	StatePoweredOn
	StateStreaming
)

var powerStateNames = map[PowerState]string{
	StateOff:       "off",
	StateStandby:   "standby",
	StatePoweredOn: "powered-on",
	StateStreaming: "streaming",
}

func (p PowerState) String() string {
	if name, ok := powerStateNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PowerState(%d)", uint8(p))
}

func (p PowerState) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PowerState) UnmarshalText(text []byte) error {
	for state, name := range powerStateNames {
		if name == string(text) {
			*p = state
			return nil
		}
	}
	return fmt.Errorf("unknown power state %q", text)
}

type PowerCommand uint8

const (
	CmdOff PowerCommand = iota
	CmdStandbyOn
	CmdStandbyOff
	CmdPowerOn
	CmdPowerOff
)

var powerCommandNames = map[PowerCommand]string{
	CmdOff:        "off",
	CmdStandbyOn:  "standby-on",
	CmdStandbyOff: "standby-off",
	CmdPowerOn:    "power-on",
	CmdPowerOff:   "power-off",
}

func (c PowerCommand) String() string {
	if name, ok := powerCommandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("PowerCommand(%d)", uint8(c))
}

func (c PowerCommand) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *PowerCommand) UnmarshalText(text []byte) error {
	cmd, err := ParsePowerCommand(string(text))
	if err != nil {
		return err
	}
	*c = cmd
	return nil
}

// ParsePowerCommand accepts the names printed by PowerCommand.String.
func ParsePowerCommand(name string) (PowerCommand, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for cmd, n := range powerCommandNames {
		if n == name {
			return cmd, nil
		}
	}
	return 0, fmt.Errorf("unknown power command %q", name)
}

// Hardware settle times. These are lower bounds.
const (
	standbyClockSettle = 20 * time.Millisecond
	padSettle          = 1 * time.Millisecond
	clockSettle        = 10 * time.Millisecond
	railSettle         = 10 * time.Millisecond
	bootSettle         = 30 * time.Millisecond
	resetSettle        = 10 * time.Millisecond
)

// Rails come up in this order and go down in reverse.
var railOrder = []Rail{RailIOVDD, RailAVDD, RailDVDD, RailAFVDD}

// nextPowerState is the power state machine. A nil error with next == from
// and cmd == CmdOff means there is nothing to do.
func nextPowerState(from PowerState, cmd PowerCommand) (PowerState, error) {
	switch cmd {
	case CmdOff:
		return StateOff, nil
	case CmdPowerOn:
		if from == StateOff {
			return StatePoweredOn, nil
		}
	case CmdPowerOff:
		if from != StateOff {
			return StateOff, nil
		}
	case CmdStandbyOn:
		if from == StatePoweredOn || from == StateStreaming {
			return StateStandby, nil
		}
	case CmdStandbyOff:
		if from == StateStandby {
			return StatePoweredOn, nil
		}
	default:
		return from, fmt.Errorf("%w: unknown command %s", ErrInvalidTransition, cmd)
	}
	return from, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, cmd, from)
}

type step struct {
	name string
	do   func() error
}

func (s *Sensor) run(cmd PowerCommand, steps []step) error {
	for _, st := range steps {
		if err := st.do(); err != nil {
			return &PowerError{Command: cmd, Step: st.name, Err: err}
		}
	}
	return nil
}

// sequence runs scoped while holding the bus scope, then after without it.
func (s *Sensor) sequence(cmd PowerCommand, scoped, after []step) error {
	s.scope.Lock()
	err := s.run(cmd, scoped)
	s.scope.Unlock()
	if err != nil {
		return err
	}
	return s.run(cmd, after)
}

func (s *Sensor) gpioDirection(pin Pin, dir PinDirection) step {
	return step{fmt.Sprintf("gpio %s direction", pin), func() error {
		return s.hw.GPIO.SetDirection(pin, dir)
	}}
}

func (s *Sensor) gpioWrite(pin Pin, level Level) step {
	return step{fmt.Sprintf("gpio %s write", pin), func() error {
		return s.hw.GPIO.Write(pin, level)
	}}
}

func (s *Sensor) clockFrequency(hz uint32) step {
	return step{"mclk frequency", func() error {
		return s.hw.Clock.SetFrequency(hz)
	}}
}

func (s *Sensor) clockEnable(on bool) step {
	return step{"mclk enable", func() error {
		return s.hw.Clock.Enable(on)
	}}
}

func (s *Sensor) rail(r Rail, on bool) step {
	return step{fmt.Sprintf("rail %s", r), func() error {
		return s.hw.Rails.Enable(r, on)
	}}
}

func (s *Sensor) delay(d time.Duration) step {
	return step{"delay", func() error {
		s.hw.Sleep(d)
		return nil
	}}
}

func (s *Sensor) standbyOn() error {
	return s.sequence(CmdStandbyOn, []step{
		s.gpioWrite(PinReset, Low),
		s.clockEnable(false),
	}, nil)
}

func (s *Sensor) standbyOff() error {
	return s.sequence(CmdStandbyOff, []step{
		s.clockFrequency(MasterClockHz),
		s.clockEnable(true),
		s.delay(standbyClockSettle),
	}, []step{
		s.gpioWrite(PinReset, High),
	})
}

func (s *Sensor) powerOn() error {
	steps := []step{
		s.gpioDirection(PinPowerDown, PinOutput),
		s.gpioDirection(PinReset, PinOutput),
		s.gpioWrite(PinPowerDown, Low),
		s.gpioWrite(PinReset, Low),
		s.delay(padSettle),
		s.clockFrequency(MasterClockHz),
		s.clockEnable(true),
		s.delay(clockSettle),
		s.gpioWrite(PinPowerEnable, High),
	}
	for _, r := range railOrder {
		steps = append(steps, s.rail(r, true))
	}
	steps = append(steps,
		s.delay(railSettle),
		s.gpioWrite(PinPowerDown, High),
		s.gpioWrite(PinReset, High),
		s.delay(bootSettle),
	)
	return s.sequence(CmdPowerOn, steps, nil)
}

func (s *Sensor) powerOff(cmd PowerCommand) error {
	steps := []step{
		s.clockEnable(false),
		s.gpioWrite(PinPowerEnable, Low),
	}
	for i := len(railOrder) - 1; i >= 0; i-- {
		steps = append(steps, s.rail(railOrder[i], false))
	}
	steps = append(steps,
		s.delay(railSettle),
		s.gpioWrite(PinPowerDown, Low),
		s.gpioWrite(PinReset, Low),
		s.gpioDirection(PinReset, PinRelease),
		s.gpioDirection(PinPowerDown, PinRelease),
	)
	return s.sequence(cmd, steps, nil)
}

// SetPower drives the sensor through one power transition. Transitions not
// in the state machine are rejected with ErrInvalidTransition. On a
// *PowerError the recorded state is left unchanged and the sensor is marked
// faulted: only CmdOff and CmdPowerOff are accepted until one of them has run
// the full power-off sequence, whatever the recorded state.
//
// A completed power-off drops the identification and the active mode, so
// Initialize must run again after the next power-on.
func (s *Sensor) SetPower(cmd PowerCommand) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.transition(cmd)
	if err != nil {
		return err
	}
	if cmd == CmdOff && s.power == StateOff && !s.fault {
		return nil
	}

	switch cmd {
	case CmdStandbyOn:
		err = s.standbyOn()
	case CmdStandbyOff:
		err = s.standbyOff()
	case CmdPowerOn:
		err = s.powerOn()
	case CmdPowerOff, CmdOff:
		err = s.powerOff(cmd)
	}
	if err != nil {
		s.fault = true
		s.logger.Printf("imx219: %v", err)
		return err
	}

	s.logger.Printf("imx219: power %s -> %s", s.power, next)
	s.power = next
	s.fault = false
	if next == StateOff {
		s.initialized = false
		s.mode = nil
		s.vts = 0
	}
	return nil
}

func (s *Sensor) transition(cmd PowerCommand) (PowerState, error) {
	if !s.fault {
		return nextPowerState(s.power, cmd)
	}
	if cmd == CmdOff || cmd == CmdPowerOff {
		return StateOff, nil
	}
	return s.power, fmt.Errorf("%w: %s after a failed power sequence, power off first", ErrInvalidTransition, cmd)
}

// Faulted reports whether the last power sequence aborted.
func (s *Sensor) Faulted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fault
}

// PowerState returns the current state of the power state machine.
func (s *Sensor) PowerState() PowerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.power
}

// Reset drives the reset line: assert puts the sensor in reset (low), release
// lets it run (high). Each edge is followed by a settle delay.
func (s *Sensor) Reset(assert bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	level := High
	if assert {
		level = Low
	}

	s.scope.Lock()
	defer s.scope.Unlock()
	if err := s.hw.GPIO.Write(PinReset, level); err != nil {
		return fmt.Errorf("failed to write gpio %s: %w", PinReset, err)
	}
	s.hw.Sleep(resetSettle)
	return nil
}
