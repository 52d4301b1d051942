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

package loglimiter

import (
	"fmt"
	"log"
	"time"
)

// New returns a new LogLimiter with the configured minimum log interval.
func New(interval time.Duration) *LogLimiter {
	return &LogLimiter{
		interval: interval,
		nowFunc:  time.Now,
		logFunc:  func(s string) { log.Print(s) },
	}
}

// LogLimiter suppresses a message if the same message was logged within
// the interval. Suppressed repeats are counted and reported when the
// message is next let through, or before a different message is logged.
type LogLimiter struct {
	interval      time.Duration
	nowFunc       func() time.Time
	logFunc       func(string)
	previousEntry string
	previousTime  time.Time
	suppressed    int
}

func (limiter *LogLimiter) Printf(format string, v ...interface{}) {
	limiter.Print(fmt.Sprintf(format, v...))
}

func (limiter *LogLimiter) Print(s string) {
	now := limiter.nowFunc()
	if s == limiter.previousEntry && now.Sub(limiter.previousTime) < limiter.interval {
		limiter.suppressed++
		return
	}

	out := s
	if limiter.suppressed > 0 {
		if s == limiter.previousEntry {
			out = fmt.Sprintf("%s (%d more suppressed)", s, limiter.suppressed)
		} else {
			limiter.logFunc(fmt.Sprintf("last message repeated %d times", limiter.suppressed))
		}
		limiter.suppressed = 0
	}

	limiter.logFunc(out)
	limiter.previousTime = now
	limiter.previousEntry = s
}

// Suppressed returns the number of repeats currently held back.
func (limiter *LogLimiter) Suppressed() int {
	return limiter.suppressed
}
