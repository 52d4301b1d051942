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

import "time"

// Pacer decides how long to wait after a frame so that frames go out no
// faster than one per Budget. It never shortens later frames to make up
// for a slow one.
type Pacer struct {
	Budget time.Duration
}

// Remaining returns the part of the budget left after elapsed, or zero if
// the budget has been used up.
func (p Pacer) Remaining(elapsed time.Duration) time.Duration {
	if elapsed >= p.Budget {
		return 0
	}
	return p.Budget - elapsed
}

// FPS is the approximate frame rate the budget allows.
func (p Pacer) FPS() int {
	return int(time.Second / p.minBudget())
}

func (p Pacer) minBudget() time.Duration {
	if p.Budget < time.Millisecond {
		return time.Millisecond
	}
	return p.Budget
}
