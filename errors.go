package imx219

import (
	"errors"
	"fmt"
)

var (
	ErrDeviceNotFound       = errors.New("imx219: device not found")
	ErrUnsupportedMode      = errors.New("imx219: unsupported mode")
	ErrUnsupportedFormat    = errors.New("imx219: unsupported format")
	ErrInvalidTransition    = errors.New("imx219: invalid power transition")
	ErrNotInitialized       = errors.New("imx219: sensor not initialized")
	ErrNoActiveMode         = errors.New("imx219: no active mode")
	ErrInvalidFrameInterval = errors.New("imx219: invalid frame interval")
	ErrUnknownControl       = errors.New("imx219: unknown control")
)

// BusError is a failed primitive operation on one of the collaborators.
type BusError struct {
	Op      string
	Address uint16
	Err     error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("failed to %s 0x%04X: %v", e.Op, e.Address, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

// PowerError reports the step at which a power sequence was aborted. The
// hardware is left wherever that step stopped it; recover with a full
// PowerOff / PowerOn cycle.
type PowerError struct {
	Command PowerCommand
	Step    string
	Err     error
}

func (e *PowerError) Error() string {
	return fmt.Sprintf("power %s aborted at %s: %v", e.Command, e.Step, e.Err)
}

func (e *PowerError) Unwrap() error { return e.Err }
