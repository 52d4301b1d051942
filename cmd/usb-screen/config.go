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
	"io/ioutil"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"

	"github.com/TheCacophonyProject/usb-screen/device"
	"github.com/TheCacophonyProject/usb-screen/stream"
)

type Config struct {
	ImageDir string       `yaml:"image-dir"`
	Width    int          `yaml:"width"`
	Height   int          `yaml:"height"`
	FPS      int          `yaml:"fps"`
	PowerPin string       `yaml:"power-pin"`
	Serial   SerialConfig `yaml:"serial"`
}

type SerialConfig struct {
	VendorID  uint16 `yaml:"vendor-id"`
	ProductID uint16 `yaml:"product-id"`
	BaudRate  int    `yaml:"baud-rate"`
	Port      string `yaml:"port"`
}

func (conf *SerialConfig) Identity() device.Identity {
	return device.Identity{
		VendorID:  conf.VendorID,
		ProductID: conf.ProductID,
	}
}

func (conf *Config) Validate() error {
	if conf.ImageDir == "" {
		return errors.New("image-dir must be set")
	}
	if conf.Width <= 0 || conf.Height <= 0 {
		return errors.New("width and height should be positive")
	}
	if conf.FPS < 1 || conf.FPS > 1000 {
		return errors.New("fps should be in range 1 - 1000")
	}
	if conf.Serial.BaudRate <= 0 {
		return errors.New("baud-rate should be positive")
	}
	return nil
}

func (conf *Config) FrameBudget() time.Duration {
	return stream.FrameBudget(conf.FPS)
}

func (conf *Config) StreamConfig() stream.Config {
	return stream.Config{
		Width:       conf.Width,
		Height:      conf.Height,
		FrameBudget: conf.FrameBudget(),
	}
}

var defaultConfig = Config{
	ImageDir: "./images",
	Width:    320,
	Height:   240,
	FPS:      24,
	Serial: SerialConfig{
		VendorID:  0x2E8A,
		ProductID: 0x000A,
		BaudRate:  115200,
	},
}

// ParseConfigFile reads filename. A missing file gives the defaults.
func ParseConfigFile(filename string) (*Config, error) {
	buf, err := ioutil.ReadFile(filename)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return ParseConfig(buf)
}

func ParseConfig(buf []byte) (*Config, error) {
	conf := defaultConfig
	if err := yaml.Unmarshal(buf, &conf); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}
