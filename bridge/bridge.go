package bridge

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/jonas-koeritz/imx219"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Bridge is a USB-CDC adapter that exposes the sensor's CCI bus, control
// GPIOs, MCLK and regulators through a framed command protocol.
type Bridge struct {
	port   io.ReadWriter
	closer io.Closer

	// transferMutex covers one command and its response.
	transferMutex sync.Mutex
	// scopeMutex is the bus-sequence scope handed to sensors via Lock/Unlock.
	scopeMutex sync.Mutex
}

var ErrNack = errors.New("bridge: command rejected")

var errNoPort = errors.New("no matching serial port")

const (
	VENDOR_ID = "0483"
)

var PRODUCT_IDs = []string{"5740", "374B"}

// Open connects to the bridge on serialPort, or autodetects it by USB IDs.
func Open(serialPort ...string) (*Bridge, error) {
	portName := ""
	var err error

	if len(serialPort) == 0 || serialPort[0] == "" {
		portName, err = Detect(VENDOR_ID, PRODUCT_IDs)
		if err != nil {
			return nil, fmt.Errorf("failed to open bridge: %w", err)
		}
	} else {
		portName = serialPort[0]
	}

	p, err := serial.Open(portName, &serial.Mode{}) // baud rate is meaningless on USB-CDC
	if err != nil {
		return nil, fmt.Errorf("failed to open bridge: %w", err)
	}

	return New(p), nil
}

// New wraps an already open stream.
func New(port io.ReadWriter) *Bridge {
	b := &Bridge{port: port}
	if c, ok := port.(io.Closer); ok {
		b.closer = c
	}
	return b
}

// Detect returns the first serial port whose USB IDs match.
func Detect(vendorID string, productIDs []string) (string, error) {
	portDetails, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fmt.Errorf("failed to list serial ports: %w", err)
	}

	for _, port := range portDetails {
		if !port.IsUSB || !strings.EqualFold(port.VID, vendorID) {
			continue
		}
		if slices.ContainsFunc(productIDs, func(pid string) bool { return strings.EqualFold(pid, port.PID) }) {
			return port.Name, nil
		}
	}

	return "", fmt.Errorf("%w for %s:%v", errNoPort, vendorID, productIDs)
}

func (b *Bridge) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// Hardware wires the bridge into a sensor. The bridge is also the scope, so
// every sensor on one bridge excludes the others during sequences.
func (b *Bridge) Hardware() imx219.Hardware {
	return imx219.Hardware{Bus: b, GPIO: b, Clock: b, Rails: rails{b}, Scope: b}
}

type rails struct{ b *Bridge }

func (r rails) Enable(rail imx219.Rail, on bool) error {
	return r.b.EnableRail(rail, on)
}

func (b *Bridge) Lock()   { b.scopeMutex.Lock() }
func (b *Bridge) Unlock() { b.scopeMutex.Unlock() }

func (b *Bridge) WriteRegister(address uint16, value uint8) error {
	_, err := b.sendCommand(fmt.Sprintf("WREG%04X%02XXXXX", address, value))
	if err != nil {
		return fmt.Errorf("failed to write register: %w", err)
	}
	return nil
}

func (b *Bridge) ReadRegister(address uint16) (uint8, error) {
	response, err := b.sendCommand(fmt.Sprintf("RREG%04XXXXX", address))
	if err != nil {
		return 0, fmt.Errorf("failed to read register: %w", err)
	}
	if len(response) != 2 {
		return 0, fmt.Errorf("failed to read register: invalid response length (%d)", len(response))
	}

	value, err := hex.DecodeString(string(response))
	if err != nil {
		return 0, fmt.Errorf("failed to decode register value: %w", err)
	}
	return value[0], nil
}

func (b *Bridge) SetDirection(pin imx219.Pin, direction imx219.PinDirection) error {
	if _, err := b.sendCommand(fmt.Sprintf("GDIR%02X%02XXXXX", uint8(pin), uint8(direction))); err != nil {
		return fmt.Errorf("failed to set %s direction: %w", pin, err)
	}
	return nil
}

func (b *Bridge) Write(pin imx219.Pin, level imx219.Level) error {
	if _, err := b.sendCommand(fmt.Sprintf("GPIO%02X%02XXXXX", uint8(pin), uint8(level))); err != nil {
		return fmt.Errorf("failed to write %s: %w", pin, err)
	}
	return nil
}

func (b *Bridge) SetFrequency(hz uint32) error {
	if _, err := b.sendCommand(fmt.Sprintf("MCLK%08XXXXX", hz)); err != nil {
		return fmt.Errorf("failed to set mclk frequency: %w", err)
	}
	return nil
}

// Enable switches MCLK. Regulators are switched with EnableRail.
func (b *Bridge) Enable(on bool) error {
	if _, err := b.sendCommand(fmt.Sprintf("MCKE%02XXXXX", boolByte(on))); err != nil {
		return fmt.Errorf("failed to switch mclk: %w", err)
	}
	return nil
}

func (b *Bridge) EnableRail(rail imx219.Rail, on bool) error {
	if _, err := b.sendCommand(fmt.Sprintf("PMUC%02X%02XXXXX", uint8(rail), boolByte(on))); err != nil {
		return fmt.Errorf("failed to switch %s: %w", rail, err)
	}
	return nil
}

func boolByte(on bool) uint8 {
	if on {
		return 1
	}
	return 0
}

func (b *Bridge) sendCommand(cmd string) (data []byte, err error) {
	cmdType := cmd[0:4]

	// Reformat cmd, include length
	cmd = fmt.Sprintf("   #%04X%s", len(cmd), cmd)

	b.transferMutex.Lock()
	defer b.transferMutex.Unlock()

	_, err = b.port.Write([]byte(cmd))
	if err != nil {
		return nil, fmt.Errorf("failed to write to serial port: %w", err)
	}

	for {
		packetType, payload, err := b.readPacket()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		switch packetType {
		case cmdType:
			return payload, nil
		case "NACK":
			return nil, fmt.Errorf("%w: %s %s", ErrNack, cmdType, payload)
		}
	}
}

func (b *Bridge) readPacket() (packetType string, data []byte, err error) {
	header := make([]byte, 12)
	for string(header[:4]) != "   #" {
		if _, err = io.ReadFull(b.port, header); err != nil {
			return "", nil, fmt.Errorf("failed to read header from serial port: %w", err)
		}
	}

	packetType = string(header[8:])

	length, err := hex.DecodeString(string(header[4:8]))
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode packet length: %w", err)
	}

	// length counts type, payload and CRC
	total := binary.BigEndian.Uint16(length)
	if total < 8 {
		return "", nil, fmt.Errorf("invalid packet length %d", total)
	}

	data = make([]byte, total-8)
	if _, err = io.ReadFull(b.port, data); err != nil {
		return "", nil, fmt.Errorf("failed to read data from serial port: %w", err)
	}

	// The CRC trailer is not verified.
	crc := make([]byte, 4)
	if _, err = io.ReadFull(b.port, crc); err != nil {
		return "", nil, fmt.Errorf("failed to read CRC from serial port: %w", err)
	}

	return packetType, data, nil
}
