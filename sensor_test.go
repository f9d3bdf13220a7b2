package imx219_test

import (
	"errors"
	"io"
	"log"
	"testing"

	"github.com/jonas-koeritz/imx219"
	"github.com/jonas-koeritz/imx219/internal/fakehw"
)

func newSensor(t *testing.T) (*imx219.Sensor, *fakehw.Device) {
	t.Helper()
	dev := fakehw.New("sensor")
	s, err := imx219.New(dev.Hardware(nil), imx219.WithLogger(log.New(io.Discard, "", 0)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, dev
}

// readySensor is powered and initialized, with the log cleared.
func readySensor(t *testing.T) (*imx219.Sensor, *fakehw.Device) {
	t.Helper()
	s, dev := newSensor(t)
	if err := s.SetPower(imx219.CmdPowerOn); err != nil {
		t.Fatalf("power on: %v", err)
	}
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	dev.Log().Reset()
	return s, dev
}

func TestNewRequiresHardware(t *testing.T) {
	if _, err := imx219.New(imx219.Hardware{}); err == nil {
		t.Fatal("expected error for empty hardware")
	}
}

func TestInitialize(t *testing.T) {
	s, _ := newSensor(t)
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	st := s.State()
	if !st.Initialized {
		t.Error("expected initialized state")
	}
	if st.Format != imx219.MbusSRGGB10_1X10 {
		t.Errorf("format 0x%X, want raw bayer", st.Format)
	}
	if got := s.CaptureParams().TimePerFrame; got != (imx219.FrameInterval{Numerator: 1, Denominator: 30}) {
		t.Errorf("frame interval %+v, want 1/30", got)
	}
}

func TestInitializeIdentity(t *testing.T) {
	tests := []struct {
		name      string
		high, low uint8
		wantErr   error
	}{
		{"imx219", 0x02, 0x19, nil},
		{"masked high nibble", 0xF2, 0x19, nil},
		{"wrong high", 0x03, 0x19, imx219.ErrDeviceNotFound},
		{"wrong low", 0x02, 0x18, imx219.ErrDeviceNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, dev := newSensor(t)
			dev.SetRegister(0x0000, tt.high)
			dev.SetRegister(0x0001, tt.low)

			err := s.Initialize()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			if s.State().Initialized != (tt.wantErr == nil) {
				t.Errorf("initialized = %v after %v", s.State().Initialized, err)
			}
		})
	}
}

func TestInitializeBusError(t *testing.T) {
	s, dev := newSensor(t)
	dev.FailWhen(func(op fakehw.Op) bool { return op.Kind == fakehw.KindRead })

	err := s.Initialize()
	var busErr *imx219.BusError
	if !errors.As(err, &busErr) {
		t.Fatalf("got %v, want *BusError", err)
	}
	if busErr.Address != 0x0000 {
		t.Errorf("failed at 0x%04X, want 0x0000", busErr.Address)
	}
	if s.State().Initialized {
		t.Error("sensor must not be initialized after a failed identity read")
	}
}

func TestCommandsRequireInitialize(t *testing.T) {
	s, dev := newSensor(t)

	checks := map[string]error{
		"SelectMode":      s.SelectMode(1920, 1080),
		"SetExposure":     s.SetExposure(100),
		"SetGain":         s.SetGain(32),
		"SetExposureGain": s.SetExposureGain(100, 32),
		"SetStreaming":    s.SetStreaming(true),
	}
	for name, err := range checks {
		if !errors.Is(err, imx219.ErrNotInitialized) {
			t.Errorf("%s: got %v, want ErrNotInitialized", name, err)
		}
	}
	if writes := dev.Writes(); len(writes) != 0 {
		t.Errorf("unexpected writes %v", writes)
	}
}

func TestSetFormat(t *testing.T) {
	s, _ := newSensor(t)

	if err := s.SetFormat(imx219.MbusSRGGB10_1X10); err != nil {
		t.Errorf("SetFormat raw: %v", err)
	}
	if err := s.SetFormat(0x2008); !errors.Is(err, imx219.ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
	if len(imx219.Formats()) != 1 {
		t.Errorf("expected one format, got %d", len(imx219.Formats()))
	}
}

func TestQueryControl(t *testing.T) {
	gain, err := imx219.QueryControl(imx219.ControlGain)
	if err != nil {
		t.Fatalf("QueryControl gain: %v", err)
	}
	if gain.Min != 16 || gain.Max != 176 || gain.Default != 16 {
		t.Errorf("gain control %+v", gain)
	}

	exposure, _ := imx219.QueryControl(imx219.ControlExposure)
	if exposure.Max != 65535*16 {
		t.Errorf("exposure max %d", exposure.Max)
	}

	if _, err := imx219.QueryControl(imx219.ControlID(42)); !errors.Is(err, imx219.ErrUnknownControl) {
		t.Errorf("got %v, want ErrUnknownControl", err)
	}
}

func TestCaptureMode(t *testing.T) {
	s, _ := newSensor(t)

	if err := s.SetCaptureMode(1); !errors.Is(err, imx219.ErrInvalidFrameInterval) {
		t.Fatalf("before init: got %v, want ErrInvalidFrameInterval", err)
	}
	if err := s.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCaptureMode(1); err != nil {
		t.Fatalf("SetCaptureMode: %v", err)
	}
	if s.CaptureParams().CaptureMode != 1 {
		t.Errorf("capture mode not stored")
	}
}

func TestBusConfig(t *testing.T) {
	s, _ := newSensor(t)
	cfg := s.BusConfig()
	if cfg.Type != imx219.BusCSI2 || cfg.Lanes != 4 || cfg.Channel != 0 {
		t.Errorf("unexpected bus config %+v", cfg)
	}
}
