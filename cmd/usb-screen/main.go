// usb-screen - stream still images to a serial attached display
//  Copyright (C) 2020, The Cacophony Project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"errors"
	"fmt"
	"log"

	arg "github.com/alexflint/go-arg"

	"github.com/TheCacophonyProject/usb-screen/device"
	"github.com/TheCacophonyProject/usb-screen/frames"
	"github.com/TheCacophonyProject/usb-screen/stream"
)

var version = "<not set>"

type Args struct {
	ConfigFile string `arg:"-c,--config" help:"path to configuration file"`
	Quick      bool   `arg:"-q,--quick" help:"don't cycle display power on startup"`
	Timestamps bool   `arg:"-t,--timestamps" help:"include timestamps in log output"`
	ListPorts  bool   `arg:"--list-ports" help:"list the serial ports found and exit"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	var args Args
	args.ConfigFile = "/etc/usb-screen.yaml"
	arg.MustParse(&args)
	return args
}

func main() {
	err := runMain()
	if err != nil {
		log.Fatal(err)
	}
}

func runMain() error {
	args := procArgs()
	if !args.Timestamps {
		log.SetFlags(0) // Removes default timestamp flag
	}

	if args.ListPorts {
		return listPorts(device.SystemPorts)
	}

	log.Printf("running version: %s", version)
	conf, err := ParseConfigFile(args.ConfigFile)
	if err != nil {
		return err
	}
	logConfig(conf)

	if !args.Quick {
		if err := cycleDisplayPower(conf.PowerPin); err != nil {
			return err
		}
	}

	target, err := openDisplay(conf)
	if err != nil {
		return err
	}
	defer target.Close()
	log.Printf("display connected on %s", target.Name)

	assets, err := frames.ListAssets(conf.ImageDir)
	if err != nil {
		return err
	}
	if len(assets) == 0 {
		return fmt.Errorf("%w in %s", stream.ErrNoAssets, conf.ImageDir)
	}
	log.Printf("found %d assets", len(assets))

	streamer := stream.New(
		conf.StreamConfig(),
		target,
		frames.NewResampler(conf.Width, conf.Height),
		stream.WithNotifier(stream.SystemdNotifier{}),
	)
	err = streamer.Run(assets)

	var streamErr *stream.Error
	if errors.As(err, &streamErr) {
		reportStreamFailure(err)
	}
	return err
}

func openDisplay(conf *Config) (*device.Target, error) {
	locator := device.NewLocator(conf.Serial.Identity(), conf.Serial.BaudRate)
	if conf.Serial.Port != "" {
		log.Printf("opening configured port %s", conf.Serial.Port)
		return locator.OpenPort(conf.Serial.Port)
	}
	log.Printf("looking for display %s", locator.Identity)
	return locator.LocateAndOpen()
}

func listPorts(lister device.PortLister) error {
	ports, err := lister.GetDetailedPortsList()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		log.Print("no serial ports found")
		return nil
	}
	for _, p := range ports {
		if p.IsUSB {
			log.Printf("%s usb %s:%s %s %s", p.Name, p.VID, p.PID, p.Product, p.SerialNumber)
		} else {
			log.Printf("%s", p.Name)
		}
	}
	return nil
}

func logConfig(conf *Config) {
	log.Printf("image dir: %s", conf.ImageDir)
	log.Printf("display: %dx%d at %d fps (frame budget %v)",
		conf.Width, conf.Height, conf.FPS, conf.FrameBudget())
	log.Printf("device: %s at %d baud", conf.Serial.Identity(), conf.Serial.BaudRate)
	if conf.Serial.Port != "" {
		log.Printf("port: %s", conf.Serial.Port)
	}
	if conf.PowerPin != "" {
		log.Printf("power pin: %s", conf.PowerPin)
	}
}
