// Package mqttctl exposes a Sensor over MQTT. Commands arrive as JSON on
// <prefix>/cmd/<action>; every command is answered on <prefix>/state, and
// failures are repeated on <prefix>/error.
package mqttctl

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonas-koeritz/imx219"
)

// Controller is the part of *imx219.Sensor the control surface drives.
type Controller interface {
	SetPower(cmd imx219.PowerCommand) error
	Initialize() error
	SelectMode(width, height int) error
	SetStreaming(enable bool) error
	SetExposure(exposure int) error
	SetGain(gain int) error
	SetExposureGain(exposure, gain int) error
	SetFormat(code imx219.MbusCode) error
	Reset(assert bool) error
	State() imx219.State
}

type Request struct {
	ID       string `json:"id,omitempty"`
	Command  string `json:"command,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Enabled  bool   `json:"enabled,omitempty"`
	Exposure int    `json:"exposure,omitempty"`
	Gain     int    `json:"gain,omitempty"`
	Code     uint32 `json:"code,omitempty"`
	Assert   bool   `json:"assert,omitempty"`
}

type Reply struct {
	ID     string       `json:"id"`
	Action string       `json:"action"`
	OK     bool         `json:"ok"`
	Error  string       `json:"error,omitempty"`
	State  imx219.State `json:"state"`
}

var ErrUnknownAction = errors.New("unknown action")

type Dispatcher struct {
	c Controller
}

func NewDispatcher(c Controller) *Dispatcher {
	return &Dispatcher{c: c}
}

// Handle decodes payload, runs action and reports the resulting state. An
// empty payload is accepted for actions that need no arguments.
func (d *Dispatcher) Handle(action string, payload []byte) Reply {
	var req Request
	err := d.decode(payload, &req)
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if err == nil {
		err = d.run(action, req)
	}

	reply := Reply{ID: req.ID, Action: action, OK: err == nil, State: d.c.State()}
	if err != nil {
		reply.Error = err.Error()
	}
	return reply
}

func (d *Dispatcher) decode(payload []byte, req *Request) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, req); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}
	return nil
}

func (d *Dispatcher) run(action string, req Request) error {
	switch action {
	case "state":
		return nil
	case "power":
		cmd, err := imx219.ParsePowerCommand(req.Command)
		if err != nil {
			return err
		}
		return d.c.SetPower(cmd)
	case "init":
		return d.c.Initialize()
	case "mode":
		return d.c.SelectMode(req.Width, req.Height)
	case "stream":
		return d.c.SetStreaming(req.Enabled)
	case "exposure":
		return d.c.SetExposure(req.Exposure)
	case "gain":
		return d.c.SetGain(req.Gain)
	case "expgain":
		return d.c.SetExposureGain(req.Exposure, req.Gain)
	case "format":
		return d.c.SetFormat(imx219.MbusCode(req.Code))
	case "reset":
		return d.c.Reset(req.Assert)
	}
	return fmt.Errorf("%w %q", ErrUnknownAction, action)
}
