package report

import (
	"time"

	"github.com/mel2oo/netsniff/flow"
	"github.com/mel2oo/netsniff/lifecycle"
	"github.com/sirupsen/logrus"
)

// Reporter is the optional third task: while Running, it wakes every
// Interval, snapshots Table, and appends a rendered report to File. It is
// only started when the Facade's configured interval is greater than zero.
type Reporter struct {
	File     *File
	Table    *flow.Table
	Status   *lifecycle.Status
	Interval time.Duration
	Iface    string
	Addrs    []string
	Log      *logrus.Entry

	// now is overridable in tests; defaults to time.Now.
	now func() time.Time
}

// Run loops until the lifecycle leaves Running for good. It never holds the
// state lock while sleeping or writing, so Pause/Resume/SaveReport are never
// blocked behind a slow write.
func (r *Reporter) Run() {
	now := r.now
	if now == nil {
		now = time.Now
	}

	for {
		state, _ := r.Status.Get()

		switch state {
		case lifecycle.Running:
			// Sleeps through the whole interval regardless of what happens
			// to the lifecycle meanwhile; Stop is only observed on the next
			// wake, same as a real interval timer.
			time.Sleep(r.Interval)

			state, _ := r.Status.Get()
			if state != lifecycle.Running {
				continue
			}
			if err := r.writeOnce(now()); err != nil {
				r.Log.WithError(err).Error("report write failed, stopping reporter")
				return
			}

		case lifecycle.Wait:
			r.Status.WaitWhileWaiting()

		case lifecycle.Stop, lifecycle.Error:
			return
		}
	}
}

func (r *Reporter) writeOnce(now time.Time) error {
	content := Render(r.File, r.Iface, r.Addrs, r.Table, now)
	return r.File.Append([]byte(content))
}
