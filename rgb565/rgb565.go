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

// Package rgb565 converts RGBA rasters into the packed 16-bit colour format
// understood by the display controller.
package rgb565

import (
	"encoding/binary"
	"image"
)

// BytesPerPixel is the number of bytes each pixel occupies on the wire.
const BytesPerPixel = 2

// Pack truncates an 8-bit per channel colour to 5-6-5.
func Pack(r, g, b uint8) uint16 {
	return uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b>>3)
}

// FrameSize returns the encoded size of a width x height frame.
func FrameSize(width, height int) int {
	return width * height * BytesPerPixel
}

// Encode returns the big-endian 5-6-5 encoding of img in row-major order.
// Alpha is ignored.
func Encode(img *image.NRGBA) []byte {
	return EncodeInto(nil, img)
}

// EncodeInto is like Encode but reuses dst when it is large enough.
func EncodeInto(dst []byte, img *image.NRGBA) []byte {
	b := img.Bounds()
	size := FrameSize(b.Dx(), b.Dy())
	if cap(dst) < size {
		dst = make([]byte, size)
	}
	dst = dst[:size]

	out := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			p := row[x*4 : x*4+3]
			binary.BigEndian.PutUint16(dst[out:], Pack(p[0], p[1], p[2]))
			out += BytesPerPixel
		}
	}
	return dst
}
