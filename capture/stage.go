package capture

import (
	"io"
	"time"

	"github.com/mel2oo/netsniff/lifecycle"
	"github.com/mel2oo/netsniff/mempool"
	"github.com/sirupsen/logrus"
)

// pollIdle is the pacing sleep between capture cycles, so a busy link
// doesn't starve the decode/aggregate goroutine of scheduler time.
const pollIdle = 100 * time.Microsecond

// Stage owns an open Handle and hands off RawFrames to out until the
// lifecycle transitions to Stop or Error. It never enqueues a frame while
// the state is Wait, and never calls NextPacket in that state either, so a
// paused capture cannot buffer frames that would later look time-shifted.
type Stage struct {
	Handle Handle
	Status *lifecycle.Status
	Pool   mempool.BufferPool
	Out    chan<- RawFrame
	Log    *logrus.Entry
}

// Run drives the capture loop. It returns once the lifecycle leaves
// Running for good (Stop or Error), closing nothing — the caller owns Out
// and closes it after Run returns, which is what unblocks the
// decode/aggregate stage's channel range.
func (s *Stage) Run() {
	for {
		state, _ := s.Status.Get()

		switch state {
		case lifecycle.Running:
			s.captureOne()
			time.Sleep(pollIdle)

		case lifecycle.Wait:
			s.Status.WaitWhileWaiting()

		case lifecycle.Stop, lifecycle.Error:
			return
		}
	}
}

func (s *Stage) captureOne() {
	data, ts, err := s.Handle.NextPacket()
	if err != nil {
		if ErrTimeout(err) {
			return
		}
		if err == io.EOF {
			// The handle is closed (or an offline capture is exhausted): no
			// further packet can arrive, so the run moves to Error.
			s.Log.WithError(err).Error("capture handle closed, stopping capture")
			s.Status.Fail("capture handle closed: " + err.Error())
			return
		}
		s.Log.WithError(err).Warn("capture error, continuing")
		return
	}

	frame, err := NewRawFrame(s.Pool, data, ts)
	if err != nil {
		s.Log.WithError(err).Warn("dropping frame, buffer pool exhausted")
		return
	}

	select {
	case s.Out <- frame:
	case <-s.Status.Done():
		// The decode/aggregate stage is gone or the run is ending; drop
		// this frame rather than block forever.
		frame.Release()
	}
}
