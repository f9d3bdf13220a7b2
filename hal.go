package imx219

import (
	"sync"
	"time"
)

// Bus is the register-addressed control bus (CCI) the sensor sits on.
// Addresses are 16 bit, values 8 bit.
type Bus interface {
	ReadRegister(address uint16) (uint8, error)
	WriteRegister(address uint16, value uint8) error
}

// Pin identifies one of the sensor control lines.
type Pin uint8

const (
	PinReset Pin = iota
	PinPowerDown
	PinPowerEnable
)

func (p Pin) String() string {
	switch p {
	case PinReset:
		return "RESET"
	case PinPowerDown:
		return "PWDN"
	case PinPowerEnable:
		return "POWER_EN"
	default:
		return "PIN?"
	}
}

type PinDirection uint8

const (
	// PinRelease hands the line back to the platform (input / high-Z).
	PinRelease PinDirection = iota
	PinOutput
)

type Level uint8

const (
	Low Level = iota
	High
)

// GPIO drives the reset, power-down and power-enable lines.
type GPIO interface {
	SetDirection(pin Pin, direction PinDirection) error
	Write(pin Pin, level Level) error
}

// Clock is the master clock (MCLK) fed to the sensor.
type Clock interface {
	SetFrequency(hz uint32) error
	Enable(on bool) error
}

// Rail identifies a regulator output.
type Rail uint8

const (
	RailIOVDD Rail = iota
	RailAVDD
	RailDVDD
	RailAFVDD
)

func (r Rail) String() string {
	switch r {
	case RailIOVDD:
		return "IOVDD"
	case RailAVDD:
		return "AVDD"
	case RailDVDD:
		return "DVDD"
	case RailAFVDD:
		return "AFVDD"
	default:
		return "RAIL?"
	}
}

type PowerRails interface {
	Enable(rail Rail, on bool) error
}

// Hardware bundles the primitives a Sensor drives.
//
// Scope is held for the whole of every register batch and power sequence.
// Sensors sharing one physical bus must share one Scope. When Scope is nil
// the Bus is used if it implements sync.Locker, otherwise the Sensor gets a
// private mutex. Sleep defaults to time.Sleep.
type Hardware struct {
	Bus   Bus
	GPIO  GPIO
	Clock Clock
	Rails PowerRails
	Sleep func(time.Duration)
	Scope sync.Locker
}
