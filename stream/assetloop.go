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

package stream

func newAssetLoop(assets []string) *assetLoop {
	return &assetLoop{
		assets:       assets,
		currentIndex: 0,
	}
}

// assetLoop cycles through the assets, wrapping from the last back to the
// first.
type assetLoop struct {
	assets       []string
	currentIndex int
}

func (l *assetLoop) nextFrom(index int) int {
	return (index + 1) % len(l.assets)
}

func (l *assetLoop) Move() string {
	l.currentIndex = l.nextFrom(l.currentIndex)
	return l.Current()
}

func (l *assetLoop) Current() string {
	return l.assets[l.currentIndex]
}
