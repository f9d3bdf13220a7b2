package imx219

import (
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"
)

func TestNextPowerState(t *testing.T) {
	type result struct {
		next PowerState
		ok   bool
	}
	tests := map[PowerState]map[PowerCommand]result{
		StateOff: {
			CmdOff:        {StateOff, true},
			CmdStandbyOn:  {StateOff, false},
			CmdStandbyOff: {StateOff, false},
			CmdPowerOn:    {StatePoweredOn, true},
			CmdPowerOff:   {StateOff, false},
		},
		StatePoweredOn: {
			CmdOff:        {StateOff, true},
			CmdStandbyOn:  {StateStandby, true},
			CmdStandbyOff: {StatePoweredOn, false},
			CmdPowerOn:    {StatePoweredOn, false},
			CmdPowerOff:   {StateOff, true},
		},
		StateStreaming: {
			CmdOff:        {StateOff, true},
			CmdStandbyOn:  {StateStandby, true},
			CmdStandbyOff: {StateStreaming, false},
			CmdPowerOn:    {StateStreaming, false},
			CmdPowerOff:   {StateOff, true},
		},
		StateStandby: {
			CmdOff:        {StateOff, true},
			CmdStandbyOn:  {StateStandby, false},
			CmdStandbyOff: {StatePoweredOn, true},
			CmdPowerOn:    {StateStandby, false},
			CmdPowerOff:   {StateOff, true},
		},
	}

	for from, cmds := range tests {
		for cmd, want := range cmds {
			next, err := nextPowerState(from, cmd)
			if ok := err == nil; ok != want.ok || next != want.next {
				t.Errorf("%s from %s = %s, %v; want %s, ok=%v", cmd, from, next, err, want.next, want.ok)
			}
			if err != nil && !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("%s from %s: %v is not ErrInvalidTransition", cmd, from, err)
			}
		}
	}

	if _, err := nextPowerState(StateOff, PowerCommand(42)); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("unknown command: %v", err)
	}
}

type regBus struct {
	regs   map[uint16]uint8
	writes []Register
}

func (b *regBus) ReadRegister(address uint16) (uint8, error) { return b.regs[address], nil }

func (b *regBus) WriteRegister(address uint16, value uint8) error {
	b.writes = append(b.writes, Register{address, value})
	return nil
}

type nopPins struct{}

func (nopPins) SetDirection(Pin, PinDirection) error { return nil }
func (nopPins) Write(Pin, Level) error               { return nil }
func (nopPins) SetFrequency(uint32) error            { return nil }
func (nopPins) Enable(bool) error                    { return nil }

type nopRails struct{}

func (nopRails) Enable(Rail, bool) error { return nil }

func TestPostConfigureRunsAfterModeRegisters(t *testing.T) {
	bus := &regBus{regs: map[uint16]uint8{0x0000: 0x02, 0x0001: 0x19}}
	s, err := New(Hardware{Bus: bus, GPIO: nopPins{}, Clock: nopPins{}, Rails: nopRails{}, Sleep: func(time.Duration) {}},
		WithLogger(log.New(io.Discard, "", 0)))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Initialize(); err != nil {
		t.Fatal(err)
	}

	hookErr := errors.New("hook")
	m := modes[3]
	m.PostConfigure = func(b Bus) error {
		if len(bus.writes) != len(m.Registers) {
			t.Errorf("hook ran after %d writes, want %d", len(bus.writes), len(m.Registers))
		}
		return hookErr
	}

	if err := s.program(&m); !errors.Is(err, hookErr) {
		t.Fatalf("program: %v", err)
	}
	if s.mode != nil || s.vts != 0 {
		t.Errorf("failed hook committed mode %v vts %d", s.mode, s.vts)
	}

	m.PostConfigure = nil
	if err := s.program(&m); err != nil {
		t.Fatal(err)
	}
	if s.vts != m.VTS {
		t.Errorf("vts %d, want %d", s.vts, m.VTS)
	}
}

func TestBusLockerUsedAsScope(t *testing.T) {
	bus := &lockingBus{regBus: regBus{regs: map[uint16]uint8{}}}
	s, err := New(Hardware{Bus: bus, GPIO: nopPins{}, Clock: nopPins{}, Rails: nopRails{}})
	if err != nil {
		t.Fatal(err)
	}
	if s.scope != bus {
		t.Error("bus implementing sync.Locker not used as scope")
	}
}

type lockingBus struct {
	regBus
	sync.Mutex
}
