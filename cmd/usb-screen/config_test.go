package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/usb-screen/device"
	"github.com/TheCacophonyProject/usb-screen/stream"
)

func TestAllDefaults(t *testing.T) {
	conf, err := ParseConfig([]byte(""))
	require.NoError(t, err)

	assert.Equal(t, Config{
		ImageDir: "./images",
		Width:    320,
		Height:   240,
		FPS:      24,
		Serial: SerialConfig{
			VendorID:  0x2E8A,
			ProductID: 0x000A,
			BaudRate:  115200,
		},
	}, *conf)
	assert.Equal(t, device.Identity{VendorID: 0x2E8A, ProductID: 0x000A}, conf.Serial.Identity())
	assert.Equal(t, stream.Config{
		Width:       320,
		Height:      240,
		FrameBudget: 41 * time.Millisecond,
	}, conf.StreamConfig())
}

func TestAllSet(t *testing.T) {
	// All config set at non-default values.
	config := []byte(`
image-dir: /var/lib/usb-screen
width: 160
height: 128
fps: 10
power-pin: "GPIO23"
serial:
    vendor-id: 0x1A86
    product-id: 0x7523
    baud-rate: 921600
    port: /dev/ttyUSB3
`)

	conf, err := ParseConfig(config)
	require.NoError(t, err)

	assert.Equal(t, Config{
		ImageDir: "/var/lib/usb-screen",
		Width:    160,
		Height:   128,
		FPS:      10,
		PowerPin: "GPIO23",
		Serial: SerialConfig{
			VendorID:  0x1A86,
			ProductID: 0x7523,
			BaudRate:  921600,
			Port:      "/dev/ttyUSB3",
		},
	}, *conf)
	assert.Equal(t, 100*time.Millisecond, conf.FrameBudget())
}

func TestPartialSerialKeepsDefaults(t *testing.T) {
	conf, err := ParseConfig([]byte(`
serial:
    port: /dev/ttyACM0
`))
	require.NoError(t, err)

	assert.Equal(t, SerialConfig{
		VendorID:  0x2E8A,
		ProductID: 0x000A,
		BaudRate:  115200,
		Port:      "/dev/ttyACM0",
	}, conf.Serial)
}

func TestInvalidFPS(t *testing.T) {
	conf, err := ParseConfig([]byte("fps: 0"))
	assert.Nil(t, conf)
	assert.EqualError(t, err, "fps should be in range 1 - 1000")
}

func TestInvalidGeometry(t *testing.T) {
	conf, err := ParseConfig([]byte("width: -1"))
	assert.Nil(t, conf)
	assert.EqualError(t, err, "width and height should be positive")
}

func TestInvalidBaudRate(t *testing.T) {
	conf, err := ParseConfig([]byte("serial:\n    baud-rate: 0"))
	assert.Nil(t, conf)
	assert.EqualError(t, err, "baud-rate should be positive")
}

func TestEmptyImageDir(t *testing.T) {
	conf, err := ParseConfig([]byte(`image-dir: ""`))
	assert.Nil(t, conf)
	assert.EqualError(t, err, "image-dir must be set")
}

func TestBadYAML(t *testing.T) {
	conf, err := ParseConfig([]byte("width: [1"))
	assert.Nil(t, conf)
	assert.Error(t, err)
}

func TestMissingConfigFile(t *testing.T) {
	conf, err := ParseConfigFile(filepath.Join(t.TempDir(), "usb-screen.yaml"))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig, *conf)
}

func TestConfigFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "usb-screen.yaml")
	require.NoError(t, ioutil.WriteFile(filename, []byte("fps: 30"), 0644))

	conf, err := ParseConfigFile(filename)
	require.NoError(t, err)
	assert.Equal(t, 30, conf.FPS)
	assert.Equal(t, 33*time.Millisecond, conf.FrameBudget())
}

func TestUnreadableConfigFile(t *testing.T) {
	_, err := ParseConfigFile(t.TempDir())
	assert.Error(t, err)
	assert.False(t, os.IsNotExist(err))
}
