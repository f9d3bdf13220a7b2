// imx219d powers an IMX219 behind a USB bridge, applies the startup
// settings and serves the MQTT control surface until interrupted.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/jonas-koeritz/imx219"
	"github.com/jonas-koeritz/imx219/bridge"
	"github.com/jonas-koeritz/imx219/internal/config"
	"github.com/jonas-koeritz/imx219/internal/logging"
	"github.com/jonas-koeritz/imx219/internal/mqttctl"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML configuration file")
		port       = flag.String("port", "", "serial port of the bridge (overrides config)")
		noMQTT     = flag.Bool("no-mqtt", false, "apply startup settings only, do not serve MQTT")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	if *port != "" {
		cfg.Serial.Port = *port
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	logger := logging.Open(level, logging.File{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	defer logger.Close()

	serialPort := cfg.Serial.Port
	if serialPort == "" {
		serialPort, err = bridge.Detect(cfg.Serial.VendorID, cfg.Serial.ProductIDs)
		if err != nil {
			logger.Errorf("failed to find bridge: %v", err)
			return
		}
	}
	b, err := bridge.Open(serialPort)
	if err != nil {
		logger.Errorf("%v", err)
		return
	}
	defer b.Close()
	logger.Infof("opened bridge on %s", serialPort)

	sensor, err := imx219.New(b.Hardware(), imx219.WithLogger(logger.Std()))
	if err != nil {
		logger.Errorf("%v", err)
		return
	}
	defer shutdown(sensor, logger)

	if err := startup(sensor, cfg.Sensor); err != nil {
		logger.Errorf("%v", err)
		return
	}
	logger.Infof("sensor state %+v", sensor.State())

	if !cfg.MQTT.Enabled || *noMQTT {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := mqttctl.NewServer(cfg.MQTT, sensor, logger)
	if err := srv.Start(); err != nil {
		logger.Errorf("%v", err)
		return
	}
	logger.Infof("serving %s on %s", srv.CommandTopic(), cfg.MQTT.Broker)

	<-ctx.Done()
	logger.Infof("shutting down")
	srv.Stop()
}

func startup(sensor *imx219.Sensor, sc config.SensorConfig) error {
	if !sc.PowerOn {
		return nil
	}
	if err := sensor.SetPower(imx219.CmdPowerOn); err != nil {
		return err
	}
	if err := sensor.Initialize(); err != nil {
		return err
	}
	if sc.Width == 0 || sc.Height == 0 {
		return nil
	}
	if err := sensor.SelectMode(sc.Width, sc.Height); err != nil {
		return err
	}
	if err := sensor.SetExposureGain(sc.Exposure, sc.Gain); err != nil {
		return err
	}
	if sc.Stream {
		return sensor.SetStreaming(true)
	}
	return nil
}

func shutdown(sensor *imx219.Sensor, logger *logging.Logger) {
	if err := sensor.SetStreaming(false); err != nil {
		logger.Warningf("failed to stop stream: %v", err)
	}
	if sensor.PowerState() == imx219.StateOff && !sensor.Faulted() {
		return
	}
	if err := sensor.SetPower(imx219.CmdPowerOff); err != nil {
		logger.Errorf("%v", err)
	}
}
