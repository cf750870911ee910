package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/goburrow/modbus"
	"github.com/koding/multiconfig"
	"github.com/sirupsen/logrus"

	"github.com/nordfrost-se/controller/pkg/app"
	"github.com/nordfrost-se/controller/pkg/config"
	"github.com/nordfrost-se/controller/pkg/hardware"
	"github.com/nordfrost-se/controller/pkg/hardware/gpio"
	"github.com/nordfrost-se/controller/pkg/hardware/modbusio"
	"github.com/nordfrost-se/controller/pkg/meter"
	"github.com/nordfrost-se/controller/pkg/modbusclient"
	"github.com/nordfrost-se/controller/pkg/mqtt"
	"github.com/nordfrost-se/controller/pkg/store"
	"github.com/nordfrost-se/controller/pkg/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGQUIT, syscall.SIGTERM)
	defer stop()
	err := Run(ctx)
	if err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func Run(ctx context.Context) error {
	cli := &config.CliConfig{}
	err := multiconfig.New().Load(cli)
	if err != nil {
		return err
	}
	lvl, err := logrus.ParseLevel(cli.LogLevel)
	if err != nil {
		return fmt.Errorf("error setting logrus loglevel: %w", err)
	}
	logrus.SetLevel(lvl)
	logrus.Infof("starting fridgecontroller %s", version.Version)

	if err := cli.LoadSerial(); err != nil {
		logrus.Warnf("no serial number, using client id: %s", err)
		cli.Serial = cli.ClientID
	}

	hw, err := newHardware(cli)
	if err != nil {
		return err
	}

	db, err := store.Open(cli.StatePath)
	if err != nil {
		return err
	}
	defer db.Close()

	a := app.New(cli, config.DefaultControlConfig(), hw, db, nil)

	client := mqtt.New(cli.Broker, cli.SerialID(), a.OnCommand)
	if err := client.Connect(); err != nil {
		return err
	}
	defer client.Close()
	a.SetPublisher(client)

	if cli.MeterEnabled {
		m := meter.NewMbus(cli.MeterDevice)
		defer m.Close()
		a.SetMeterReader(func() (*meter.Data, error) {
			return m.ReadValues(cli.MeterModel, strconv.Itoa(cli.MeterPrimaryID))
		})
	}

	err = a.Start(ctx)
	if err != nil {
		return err
	}

	a.Wait()
	return nil
}

func newHardware(cli *config.CliConfig) (hardware.Interface, error) {
	switch cli.HardwareType {
	case "fake":
		logrus.Warn("using fake hardware")
		return hardware.NewFake(), nil
	case "modbus":
		handler := modbus.NewTCPClientHandler(cli.Address)
		c := modbusclient.New(modbus.NewClient(handler), handler.Close)
		return modbusio.New(c), nil
	case "gpio":
		return gpio.New(gpio.Config{
			Chip:           cli.GpioChip,
			RelayPin:       cli.RelayPin,
			AirSensorPath:  cli.AirSensorFile,
			EvapSensorPath: cli.EvapSensorFile,
		})
	}
	return nil, fmt.Errorf("unknown hardware type: %s", cli.HardwareType)
}
