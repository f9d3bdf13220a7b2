// Package fakehw provides an in-memory IMX219 board for tests. Every
// primitive call is appended to one ordered log, which can be shared by
// several devices to observe interleaving on a common bus.
package fakehw

import (
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/jonas-koeritz/imx219"
)

var ErrInjected = errors.New("fakehw: injected failure")

type Kind string

const (
	KindRead      Kind = "read"
	KindWrite     Kind = "write"
	KindDirection Kind = "gdir"
	KindGPIO      Kind = "gpio"
	KindFrequency Kind = "mclk-freq"
	KindClock     Kind = "mclk"
	KindRail      Kind = "rail"
	KindSleep     Kind = "sleep"
)

// Op is one recorded primitive. Target is the register address, pin or
// rail; Value the register value, level, direction, frequency, on/off or
// sleep duration in nanoseconds.
type Op struct {
	Device string
	Kind   Kind
	Target uint32
	Value  uint64
}

type Log struct {
	mu  sync.Mutex
	ops []Op
}

func (l *Log) append(op Op) {
	l.mu.Lock()
	l.ops = append(l.ops, op)
	l.mu.Unlock()
}

func (l *Log) Ops() []Op {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Op(nil), l.ops...)
}

func (l *Log) Reset() {
	l.mu.Lock()
	l.ops = nil
	l.mu.Unlock()
}

// Device is one fake sensor board: bus, GPIOs, clock and rails.
type Device struct {
	Name string
	log  *Log

	mu         sync.Mutex
	registers  map[uint16]uint8
	levels     map[imx219.Pin]imx219.Level
	directions map[imx219.Pin]imx219.PinDirection
	rails      map[imx219.Rail]bool
	clockOn    bool
	clockHz    uint32
	fail       func(Op) bool
}

// New returns a board whose identity registers read as an IMX219.
func New(name string) *Device {
	return NewOnLog(name, &Log{})
}

func NewOnLog(name string, log *Log) *Device {
	return &Device{
		Name:       name,
		log:        log,
		registers:  map[uint16]uint8{0x0000: 0x02, 0x0001: 0x19},
		levels:     map[imx219.Pin]imx219.Level{},
		directions: map[imx219.Pin]imx219.PinDirection{},
		rails:      map[imx219.Rail]bool{},
	}
}

func (d *Device) Log() *Log { return d.log }

// Hardware returns the device wired as sensor hardware. Sleeps are recorded
// and yield instead of blocking.
func (d *Device) Hardware(scope sync.Locker) imx219.Hardware {
	return imx219.Hardware{
		Bus:   d,
		GPIO:  d,
		Clock: clock{d},
		Rails: rails{d},
		Sleep: d.Sleep,
		Scope: scope,
	}
}

// FailWhen makes every operation matching fn return ErrInjected. The
// operation is still logged.
func (d *Device) FailWhen(fn func(Op) bool) {
	d.mu.Lock()
	d.fail = fn
	d.mu.Unlock()
}

func (d *Device) record(kind Kind, target uint32, value uint64) error {
	op := Op{Device: d.Name, Kind: kind, Target: target, Value: value}
	d.log.append(op)
	runtime.Gosched()
	if d.fail != nil && d.fail(op) {
		return ErrInjected
	}
	return nil
}

func (d *Device) SetRegister(address uint16, value uint8) {
	d.mu.Lock()
	d.registers[address] = value
	d.mu.Unlock()
}

func (d *Device) Register(address uint16) uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.registers[address]
}

func (d *Device) ReadRegister(address uint16) (uint8, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	value := d.registers[address]
	if err := d.record(KindRead, uint32(address), uint64(value)); err != nil {
		return 0, err
	}
	return value, nil
}

func (d *Device) WriteRegister(address uint16, value uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(KindWrite, uint32(address), uint64(value)); err != nil {
		return err
	}
	d.registers[address] = value
	return nil
}

func (d *Device) SetDirection(pin imx219.Pin, direction imx219.PinDirection) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(KindDirection, uint32(pin), uint64(direction)); err != nil {
		return err
	}
	d.directions[pin] = direction
	return nil
}

func (d *Device) Write(pin imx219.Pin, level imx219.Level) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(KindGPIO, uint32(pin), uint64(level)); err != nil {
		return err
	}
	d.levels[pin] = level
	return nil
}

func (d *Device) Sleep(duration time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_ = d.record(KindSleep, 0, uint64(duration))
}

func (d *Device) Level(pin imx219.Pin) imx219.Level {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.levels[pin]
}

func (d *Device) Direction(pin imx219.Pin) imx219.PinDirection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.directions[pin]
}

func (d *Device) RailOn(rail imx219.Rail) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rails[rail]
}

func (d *Device) ClockOn() (bool, uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clockOn, d.clockHz
}

// Writes returns the register writes of this device in order.
func (d *Device) Writes() []imx219.Register {
	var writes []imx219.Register
	for _, op := range d.log.Ops() {
		if op.Device == d.Name && op.Kind == KindWrite {
			writes = append(writes, imx219.Register{Address: uint16(op.Target), Value: uint8(op.Value)})
		}
	}
	return writes
}

type clock struct{ d *Device }

func (c clock) SetFrequency(hz uint32) error {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	if err := c.d.record(KindFrequency, 0, uint64(hz)); err != nil {
		return err
	}
	c.d.clockHz = hz
	return nil
}

func (c clock) Enable(on bool) error {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	if err := c.d.record(KindClock, 0, onValue(on)); err != nil {
		return err
	}
	c.d.clockOn = on
	return nil
}

type rails struct{ d *Device }

func (r rails) Enable(rail imx219.Rail, on bool) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if err := r.d.record(KindRail, uint32(rail), onValue(on)); err != nil {
		return err
	}
	r.d.rails[rail] = on
	return nil
}

func onValue(on bool) uint64 {
	if on {
		return 1
	}
	return 0
}
