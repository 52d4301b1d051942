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

package device

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strconv"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// ErrDeviceNotFound is returned when no port matches the display identity.
var ErrDeviceNotFound = errors.New("display device not found")

// Identity is the USB vendor/product pair of the display controller.
type Identity struct {
	VendorID  uint16
	ProductID uint16
}

func (id Identity) String() string {
	return fmt.Sprintf("%04x:%04x", id.VendorID, id.ProductID)
}

// PortLister enumerates the serial ports on the host.
type PortLister interface {
	GetDetailedPortsList() ([]*enumerator.PortDetails, error)
}

type systemPorts struct{}

func (systemPorts) GetDetailedPortsList() ([]*enumerator.PortDetails, error) {
	return enumerator.GetDetailedPortsList()
}

// SystemPorts lists the ports the operating system knows about.
var SystemPorts PortLister = systemPorts{}

// OpenFunc opens a byte stream to the named port.
type OpenFunc func(name string, baudRate int) (io.WriteCloser, error)

// OpenSerial opens name with 8 data bits, no parity and one stop bit.
func OpenSerial(name string, baudRate int) (io.WriteCloser, error) {
	return serial.Open(name, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
}

// Target is an open session with the display.
type Target struct {
	io.WriteCloser
	Name     string
	BaudRate int
}

func NewLocator(identity Identity, baudRate int) *Locator {
	return &Locator{
		Identity: identity,
		BaudRate: baudRate,
		Lister:   SystemPorts,
		Open:     OpenSerial,
	}
}

// Locator finds the display among the host's serial ports and opens it.
type Locator struct {
	Identity Identity
	BaudRate int
	Lister   PortLister
	Open     OpenFunc
}

// LocateAndOpen probes the ports once and opens the matching one. It does
// not retry or wait for the device to appear.
func (l *Locator) LocateAndOpen() (*Target, error) {
	ports, err := l.Lister.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("listing serial ports: %w", err)
	}
	port, err := Match(ports, l.Identity)
	if err != nil {
		return nil, err
	}
	return l.OpenPort(port.Name)
}

// OpenPort opens name directly, skipping discovery.
func (l *Locator) OpenPort(name string) (*Target, error) {
	w, err := l.Open(name, l.BaudRate)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return &Target{
		WriteCloser: w,
		Name:        name,
		BaudRate:    l.BaudRate,
	}, nil
}

// Match returns the USB port reporting identity. When several ports match
// the one with the lowest name is chosen.
func Match(ports []*enumerator.PortDetails, identity Identity) (*enumerator.PortDetails, error) {
	var matches []*enumerator.PortDetails
	for _, p := range ports {
		if p == nil || !p.IsUSB {
			continue
		}
		if parseID(p.VID) == int(identity.VendorID) && parseID(p.PID) == int(identity.ProductID) {
			matches = append(matches, p)
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w (%s)", ErrDeviceNotFound, identity)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Name < matches[j].Name
	})
	if len(matches) > 1 {
		log.Printf("%d ports match %s, using %s", len(matches), identity, matches[0].Name)
	}
	return matches[0], nil
}

func parseID(s string) int {
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return -1
	}
	return int(v)
}
