package device

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
)

var rp2040 = Identity{VendorID: 0x2E8A, ProductID: 0x000A}

type fakeLister struct {
	ports []*enumerator.PortDetails
	err   error
}

func (l *fakeLister) GetDetailedPortsList() ([]*enumerator.PortDetails, error) {
	return l.ports, l.err
}

type fakePort struct {
	bytes.Buffer
	closed bool
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

type opener struct {
	opened []string
	bauds  []int
	err    error
}

func (o *opener) open(name string, baudRate int) (io.WriteCloser, error) {
	if o.err != nil {
		return nil, o.err
	}
	o.opened = append(o.opened, name)
	o.bauds = append(o.bauds, baudRate)
	return new(fakePort), nil
}

func newTestLocator(ports ...*enumerator.PortDetails) (*Locator, *opener) {
	o := new(opener)
	l := NewLocator(rp2040, 115200)
	l.Lister = &fakeLister{ports: ports}
	l.Open = o.open
	return l, o
}

func usbPort(name, vid, pid string) *enumerator.PortDetails {
	return &enumerator.PortDetails{Name: name, IsUSB: true, VID: vid, PID: pid}
}

func TestLocateAndOpen(t *testing.T) {
	l, o := newTestLocator(
		usbPort("/dev/ttyUSB0", "0403", "6001"),
		usbPort("/dev/ttyACM0", "2e8a", "000a"),
	)

	target, err := l.LocateAndOpen()
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", target.Name)
	assert.Equal(t, 115200, target.BaudRate)
	assert.Equal(t, []string{"/dev/ttyACM0"}, o.opened)
	assert.Equal(t, []int{115200}, o.bauds)
}

func TestLocateNotFound(t *testing.T) {
	l, o := newTestLocator(
		usbPort("/dev/ttyUSB0", "0403", "6001"),
		usbPort("/dev/ttyACM1", "2e8a", "0005"),
		&enumerator.PortDetails{Name: "/dev/ttyS0"},
	)

	target, err := l.LocateAndOpen()
	assert.Nil(t, target)
	assert.True(t, errors.Is(err, ErrDeviceNotFound))
	assert.Empty(t, o.opened)
}

func TestLocateNoPorts(t *testing.T) {
	l, o := newTestLocator()

	_, err := l.LocateAndOpen()
	assert.True(t, errors.Is(err, ErrDeviceNotFound))
	assert.Empty(t, o.opened)
}

func TestLocateListError(t *testing.T) {
	l, _ := newTestLocator()
	l.Lister = &fakeLister{err: errors.New("no sysfs")}

	_, err := l.LocateAndOpen()
	assert.EqualError(t, err, "listing serial ports: no sysfs")
	assert.False(t, errors.Is(err, ErrDeviceNotFound))
}

func TestLocateOpenError(t *testing.T) {
	l, o := newTestLocator(usbPort("/dev/ttyACM0", "2E8A", "000A"))
	o.err = errors.New("permission denied")

	_, err := l.LocateAndOpen()
	assert.EqualError(t, err, "opening /dev/ttyACM0: permission denied")
}

func TestMatchIsCaseInsensitive(t *testing.T) {
	p, err := Match([]*enumerator.PortDetails{usbPort("COM3", "2E8A", "000A")}, rp2040)
	require.NoError(t, err)
	assert.Equal(t, "COM3", p.Name)
}

func TestMatchIgnoresNonUSB(t *testing.T) {
	port := usbPort("/dev/ttyS0", "2e8a", "000a")
	port.IsUSB = false

	_, err := Match([]*enumerator.PortDetails{port, nil}, rp2040)
	assert.True(t, errors.Is(err, ErrDeviceNotFound))
}

func TestMatchIgnoresBadIDs(t *testing.T) {
	_, err := Match([]*enumerator.PortDetails{usbPort("/dev/ttyACM0", "", "zz")}, rp2040)
	assert.True(t, errors.Is(err, ErrDeviceNotFound))
}

func TestMatchPicksLowestName(t *testing.T) {
	p, err := Match([]*enumerator.PortDetails{
		usbPort("/dev/ttyACM2", "2e8a", "000a"),
		usbPort("/dev/ttyACM0", "2e8a", "000a"),
		usbPort("/dev/ttyACM1", "2e8a", "000a"),
	}, rp2040)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", p.Name)
}

func TestMatchOtherIdentity(t *testing.T) {
	p, err := Match([]*enumerator.PortDetails{
		usbPort("/dev/ttyACM0", "2e8a", "000a"),
		usbPort("/dev/ttyUSB0", "1a86", "7523"),
	}, Identity{VendorID: 0x1A86, ProductID: 0x7523})
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", p.Name)
}

func TestOpenPortSkipsDiscovery(t *testing.T) {
	l, o := newTestLocator()
	l.Lister = &fakeLister{err: errors.New("should not be called")}

	target, err := l.OpenPort("/dev/ttyACM7")
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM7", target.Name)
	assert.Equal(t, []string{"/dev/ttyACM7"}, o.opened)

	require.NoError(t, target.Close())
	assert.True(t, target.WriteCloser.(*fakePort).closed)
}

func TestIdentityString(t *testing.T) {
	assert.Equal(t, "2e8a:000a", rp2040.String())
}
