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
	"fmt"
	"log"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
)

// cycleDisplayPower turns the display controller off and on again through
// pinName so it starts from a known state. An empty pinName does nothing.
func cycleDisplayPower(pinName string) error {
	if pinName == "" {
		return nil
	}

	log.Print("host initialisation")
	if _, err := host.Init(); err != nil {
		return err
	}

	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return fmt.Errorf("unknown display power pin %q", pinName)
	}

	log.Print("turning display power off")
	if err := pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("failed to set display power pin low: %v", err)
	}
	time.Sleep(time.Second)

	log.Print("turning display power on")
	if err := pin.Out(gpio.High); err != nil {
		return fmt.Errorf("failed to set display power pin high: %v", err)
	}

	log.Print("waiting for display to enumerate")
	time.Sleep(3 * time.Second)
	return nil
}
