package imx219

type register struct {
	Address  uint16
	ReadOnly bool
}

var MODEL_ID_HIGH = register{0x0000, true}
var MODEL_ID_LOW = register{0x0001, true}
var ANALOG_GAIN = register{0x0157, false}
var COARSE_INTEGRATION_HIGH = register{0x015A, false}
var COARSE_INTEGRATION_LOW = register{0x015B, false}
var FRAME_LENGTH_HIGH = register{0x0160, false}
var FRAME_LENGTH_LOW = register{0x0161, false}

// Identity check: MODEL_ID_HIGH & 0x0F and MODEL_ID_LOW.
const (
	modelIDHigh     = 0x02
	modelIDHighMask = 0x0F
	modelIDLow      = 0x19
)

const (
	ChipIdent = 0x0219
	// I2CAddress is the 8-bit (write) form of the bus address.
	I2CAddress = 0x20
	// MasterClockHz is the MCLK the sensor PLL settings assume.
	MasterClockHz = 24 * 1000 * 1000
)

type MbusCode uint32

const (
	MbusSRGGB10_1X10 = MbusCode(0x300F)
)

type BusType uint8

const (
	BusCSI2 = BusType(1)
)

// BusConfig describes the data link to the receiver.
type BusConfig struct {
	Type    BusType `json:"type"`
	Lanes   int     `json:"lanes"`
	Channel int     `json:"channel"`
}

var csi2BusConfig = BusConfig{Type: BusCSI2, Lanes: 4, Channel: 0}

type ControlID uint8

const (
	ControlGain ControlID = iota
	ControlExposure
	ControlFrameRate
)

// ControlInfo is the advertised range of a control. Set paths clamp to their
// own bounds, they do not reject values outside these.
type ControlInfo struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Step    int `json:"step"`
	Default int `json:"default"`
}

var controls = map[ControlID]ControlInfo{
	ControlGain:      {Min: 1 * 16, Max: 11 * 16, Step: 1, Default: 1 * 16},
	ControlExposure:  {Min: 0, Max: 65535 * 16, Step: 1, Default: 16},
	ControlFrameRate: {Min: 15, Max: 120, Step: 1, Default: 120},
}

// FrameInterval is seconds per frame as a fraction.
type FrameInterval struct {
	Numerator   uint32 `json:"numerator"`
	Denominator uint32 `json:"denominator"`
}

var defaultFrameInterval = FrameInterval{Numerator: 1, Denominator: 30}

type CaptureParams struct {
	TimePerFrame FrameInterval `json:"time_per_frame"`
	CaptureMode  int           `json:"capture_mode"`
}
