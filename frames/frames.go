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

// Package frames finds the still images to show and turns them into frames
// that match the display geometry.
package frames

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

const assetExt = ".png"

// ListAssets returns the regular files directly inside dir with a "png"
// extension, in directory order. Anything else is skipped. An empty
// directory is not an error.
func ListAssets(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if filepath.Ext(name) != assetExt || name == assetExt {
			continue
		}
		path := filepath.Join(dir, name)
		// Stat rather than entry.Type() so that symlinks to files count.
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Decoder produces a display sized frame from an asset.
type Decoder interface {
	Decode(path string) (*image.NRGBA, error)
}

// NewResampler returns a Decoder that stretches every image to exactly
// width x height using a Lanczos filter.
func NewResampler(width, height int) *Resampler {
	return &Resampler{
		width:  width,
		height: height,
		filter: imaging.Lanczos,
	}
}

type Resampler struct {
	width  int
	height int
	filter imaging.ResampleFilter
}

func (r *Resampler) Decode(path string) (*image.NRGBA, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return r.Resample(img), nil
}

// Resample ignores the aspect ratio of img; the display has a single fixed
// canvas so the image is distorted rather than cropped or letterboxed.
func (r *Resampler) Resample(img image.Image) *image.NRGBA {
	return imaging.Resize(img, r.width, r.height, r.filter)
}
