package imx219

import (
	"fmt"
	"slices"
)

// Mode is a resolution profile: output window, sensor timing and the register
// list that programs it. Modes are immutable; the catalog is fixed.
type Mode struct {
	Name           string
	Width          int
	Height         int
	HOffset        int
	VOffset        int
	HTS            int    // pixel clocks per line
	VTS            int    // lines per frame
	PixelClock     uint32 // Hz
	MIPIBitrate    uint32 // bits/s per lane
	FPSFixed       int
	BinFactor      int
	IntegrationMin int
	IntegrationMax int
	GainMin        int
	GainMax        int
	Registers      []Register

	// PostConfigure runs after Registers have been written, if set.
	PostConfigure func(bus Bus) error
}

const (
	fullWidth  = 3280
	fullHeight = 2464
	frameLimit = 4
	pclk278    = 278 * 1000 * 1000
	pclk200    = 200 * 1000 * 1000
	mipi720    = 720 * 1000 * 1000
)

var modes = []Mode{
	{
		Name:           "full",
		Width:          3264,
		Height:         2448,
		HOffset:        (fullWidth - 3264) / 2,
		VOffset:        (fullHeight - 2448) / 2,
		HTS:            3448,
		VTS:            4037,
		PixelClock:     pclk278,
		MIPIBitrate:    mipi720,
		FPSFixed:       1,
		BinFactor:      1,
		IntegrationMin: 1 << 4,
		IntegrationMax: (4037 - frameLimit) << 4,
		GainMin:        1 << 4,
		GainMax:        10 << 4,
		Registers:      fullRegisters,
	},
	{
		Name:           "1080p",
		Width:          1920,
		Height:         1080,
		HTS:            3560,
		VTS:            2607,
		PixelClock:     pclk278,
		MIPIBitrate:    mipi720,
		FPSFixed:       1,
		BinFactor:      2,
		IntegrationMin: 1 << 4,
		IntegrationMax: (2607 - frameLimit) << 4,
		GainMin:        1 << 4,
		GainMax:        10 << 4,
		Registers:      hd1080Registers,
	},
	{
		Name:           "sxga",
		Width:          1280,
		Height:         960,
		HTS:            3560,
		VTS:            2607,
		PixelClock:     pclk278,
		MIPIBitrate:    mipi720,
		FPSFixed:       1,
		BinFactor:      2,
		IntegrationMin: 1 << 4,
		IntegrationMax: 2607 << 4,
		GainMin:        1 << 4,
		GainMax:        10 << 4,
		Registers:      sxgaRegisters,
	},
	{
		Name:           "720p",
		Width:          1280,
		Height:         720,
		HTS:            2560,
		VTS:            1303,
		PixelClock:     pclk200,
		MIPIBitrate:    mipi720,
		FPSFixed:       1,
		BinFactor:      2,
		IntegrationMin: 1 << 4,
		IntegrationMax: (1303 - frameLimit) << 4,
		GainMin:        1 << 4,
		GainMax:        10 << 4,
		Registers:      hd720Registers,
	},
}

func (m Mode) String() string {
	return fmt.Sprintf("%s %dx%d", m.Name, m.Width, m.Height)
}

// snapshot copies m so callers cannot reach the catalog's register slices.
func (m *Mode) snapshot() Mode {
	c := *m
	c.Registers = slices.Clone(m.Registers)
	return c
}

func findMode(width, height int) *Mode {
	for i := range modes {
		if modes[i].Width == width && modes[i].Height == height {
			return &modes[i]
		}
	}
	return nil
}

// FindMode looks up the catalog entry for exactly width x height.
func FindMode(width, height int) (Mode, bool) {
	m := findMode(width, height)
	if m == nil {
		return Mode{}, false
	}
	return m.snapshot(), true
}

// FrameSizes lists the catalog in enumeration order.
func FrameSizes() []Mode {
	sizes := make([]Mode, 0, len(modes))
	for i := range modes {
		sizes = append(sizes, modes[i].snapshot())
	}
	return sizes
}

// Format is a media-bus pixel format and the registers that select it.
type Format struct {
	Description   string
	Code          MbusCode
	BytesPerPixel int
	Registers     []Register
}

var formats = []Format{
	{
		Description:   "Raw RGB Bayer",
		Code:          MbusSRGGB10_1X10,
		BytesPerPixel: 1,
		Registers:     rawFormatRegisters,
	},
}

func findFormat(code MbusCode) *Format {
	for i := range formats {
		if formats[i].Code == code {
			return &formats[i]
		}
	}
	return nil
}

func Formats() []Format {
	return slices.Clone(formats)
}
