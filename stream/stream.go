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

// Package stream sends frames to the display at a steady rate.
package stream

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/ratelimit"

	"github.com/TheCacophonyProject/usb-screen/device"
	"github.com/TheCacophonyProject/usb-screen/frames"
	"github.com/TheCacophonyProject/usb-screen/loglimiter"
	"github.com/TheCacophonyProject/usb-screen/rgb565"
)

const (
	watchdogInterval = 5 * time.Second
	rateLogFrames    = 100
	overrunLogPeriod = time.Minute
)

// ErrNoAssets is returned by Run when there is nothing to show.
var ErrNoAssets = errors.New("no assets found")

// Stage names the step of a frame that failed.
type Stage string

const (
	StageDecode Stage = "decode"
	StageEncode Stage = "encode"
	StageWrite  Stage = "write"
)

// Error describes the frame that stopped the stream.
type Error struct {
	Stage Stage
	Asset string
	Frame int
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s (frame %d): %v", e.Stage, e.Asset, e.Frame, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Config struct {
	Width       int
	Height      int
	FrameBudget time.Duration
}

// FrameBudget returns the time allowed for each frame at fps, truncated to
// whole milliseconds.
func FrameBudget(fps int) time.Duration {
	return time.Duration(1000/fps) * time.Millisecond
}

// Notifier passes service state to the supervisor.
type Notifier interface {
	Notify(state string)
}

// SystemdNotifier notifies systemd. It does nothing when not run as a
// systemd service.
type SystemdNotifier struct{}

func (SystemdNotifier) Notify(state string) {
	daemon.SdNotify(false, state)
}

type nullNotifier struct{}

func (nullNotifier) Notify(string) {}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

type Option func(*Streamer)

func WithClock(clock ratelimit.Clock) Option {
	return func(s *Streamer) { s.clock = clock }
}

func WithNotifier(notifier Notifier) Option {
	return func(s *Streamer) { s.notifier = notifier }
}

func WithLogLimiter(limiter *loglimiter.LogLimiter) Option {
	return func(s *Streamer) { s.limiter = limiter }
}

func New(conf Config, target io.Writer, decoder frames.Decoder, opts ...Option) *Streamer {
	s := &Streamer{
		conf:     conf,
		target:   target,
		decoder:  decoder,
		pacer:    Pacer{Budget: conf.FrameBudget},
		clock:    new(realClock),
		notifier: new(nullNotifier),
		limiter:  loglimiter.New(overrunLogPeriod),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Streamer owns the display target for the life of the process.
type Streamer struct {
	conf     Config
	target   io.Writer
	decoder  frames.Decoder
	pacer    Pacer
	clock    ratelimit.Clock
	notifier Notifier
	limiter  *loglimiter.LogLimiter
	buf      []byte
}

// Run shows assets in order, over and over. It only returns when a frame
// fails, and the returned error is never nil.
func (s *Streamer) Run(assets []string) error {
	if len(assets) == 0 {
		return ErrNoAssets
	}

	fps := max(s.pacer.FPS(), 1)
	frameLogIntervalFirstMin := 15 * fps
	frameLogInterval := 60 * 5 * fps

	loop := newAssetLoop(assets)
	// One watchdog ping per interval of clock time.
	watchdog := ratelimit.NewBucketWithClock(watchdogInterval, 1, s.clock)
	s.notifier.Notify("READY=1")
	log.Printf("streaming %d assets", len(assets))

	totalFrames := 0
	count := 0
	t0 := s.clock.Now()
	for {
		start := s.clock.Now()
		totalFrames++
		if err := s.sendFrame(loop.Current(), totalFrames); err != nil {
			return err
		}

		if watchdog.TakeAvailable(1) > 0 {
			s.notifier.Notify("WATCHDOG=1")
		}
		if totalFrames%frameLogIntervalFirstMin == 0 &&
			totalFrames <= 60*fps || totalFrames%frameLogInterval == 0 {
			log.Printf("%d frames sent", totalFrames)
		}

		elapsed := s.clock.Now().Sub(start)
		if wait := s.pacer.Remaining(elapsed); wait > 0 {
			s.clock.Sleep(wait)
		} else if elapsed > s.pacer.Budget {
			s.limiter.Printf("frames are taking longer than the %v budget", s.pacer.Budget)
		}

		if count++; count == rateLogFrames {
			t1 := s.clock.Now()
			if d := t1.Sub(t0); d > 0 {
				log.Printf("%.1f Hz", float64(count)/d.Seconds())
			}
			t0 = t1
			count = 0
		}

		loop.Move()
	}
}

func (s *Streamer) sendFrame(asset string, frameNum int) error {
	fail := func(stage Stage, err error) error {
		return &Error{Stage: stage, Asset: asset, Frame: frameNum, Err: err}
	}

	frame, err := s.decoder.Decode(asset)
	if err != nil {
		return fail(StageDecode, err)
	}

	b := frame.Bounds()
	if b.Dx() != s.conf.Width || b.Dy() != s.conf.Height {
		return fail(StageEncode, fmt.Errorf("frame is %dx%d but the display is %dx%d",
			b.Dx(), b.Dy(), s.conf.Width, s.conf.Height))
	}
	s.buf = rgb565.EncodeInto(s.buf, frame)

	if err := device.WriteAll(s.target, s.buf); err != nil {
		return fail(StageWrite, err)
	}
	return nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
