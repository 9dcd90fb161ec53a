// Package netsniff is a live network packet sniffer: it attaches to a host
// interface, decodes each captured frame through layers 2-4, aggregates
// per-flow traffic counters in memory, and periodically or on demand
// renders a human-readable report to a file.
//
// Sniffer is the Facade: it owns the shared lifecycle state and flow table,
// wires the capture/decode/report tasks together, and exposes the external
// control surface described by an interactive command loop (attach, run,
// pause, resume, save-report) that lives outside this package.
package netsniff

import (
	"sync"
	"time"

	"github.com/mel2oo/netsniff/capture"
	"github.com/mel2oo/netsniff/decode"
	"github.com/mel2oo/netsniff/flow"
	"github.com/mel2oo/netsniff/gid"
	"github.com/mel2oo/netsniff/lifecycle"
	"github.com/mel2oo/netsniff/optionals"
	"github.com/mel2oo/netsniff/pipeline"
	"github.com/mel2oo/netsniff/report"
	"github.com/mel2oo/netsniff/sets"

	"github.com/mel2oo/netsniff/mempool"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// channelCapacity bounds the hand-off channel between the capture and
// decode/aggregate stages; Capture blocks once it is full rather than
// growing memory without limit.
const channelCapacity = 1024

const (
	defaultPoolSize_bytes  = 64 << 20 // 64MB
	defaultChunkSize_bytes = 1 << 16  // 64KB, comfortably above any jumbo frame
)

// Sniffer is the concurrent capture-and-aggregation engine's external
// surface. The zero value is not usable; construct with NewSniffer.
type Sniffer struct {
	sessionID gid.SessionID
	log       *logrus.Entry

	status *lifecycle.Status
	table  *flow.Table
	pool   mempool.BufferPool

	// mu guards the fields below. It is only ever held for the duration of
	// a field read/write, never across a blocking call.
	mu       sync.Mutex
	device   optionals.Optional[capture.Device]
	file     optionals.Optional[*report.File]
	interval time.Duration

	wg sync.WaitGroup

	// Test seams: production code never overrides these. Set directly
	// (white-box, same package) from a test before calling Run/Attach.
	listDevices func() ([]capture.Device, error)
	openHandle  func(device string) (capture.Handle, error)
}

// NewSniffer constructs a Sniffer in the Stop state with no device or
// report file attached yet.
func NewSniffer(opts ...Option) *Sniffer {
	cfg := newConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	sessionID := gid.GenerateSessionID()

	pool, err := mempool.MakeBufferPool(defaultPoolSize_bytes, defaultChunkSize_bytes)
	if err != nil {
		// Unreachable: the constants above are a valid (chunk <= pool) pair.
		panic(errors.Wrap(err, "invalid buffer pool configuration"))
	}

	return &Sniffer{
		sessionID:   sessionID,
		log:         cfg.log.WithField("session", sessionID.String()),
		status:      lifecycle.New(),
		table:       flow.New(),
		pool:        pool,
		device:      optionals.None[capture.Device](),
		file:        optionals.None[*report.File](),
		interval:    cfg.interval,
		listDevices: capture.ListDevices,
		openHandle:  capture.Open,
	}
}

// SessionID returns the session identifier minted for this Sniffer, used
// to correlate its Capture/Decode/Reporter log lines.
func (s *Sniffer) SessionID() gid.SessionID {
	return s.sessionID
}

// ListDevices returns the host's capture interfaces.
func (s *Sniffer) ListDevices() ([]capture.Device, error) {
	return s.listDevices()
}

// Attach sets the interface the Sniffer will capture on. name must be one
// of the devices returned by ListDevices.
func (s *Sniffer) Attach(name string) error {
	devices, err := s.listDevices()
	if err != nil {
		return errors.Wrap(err, "failed to enumerate capture interfaces")
	}

	for _, d := range devices {
		if d.Name == name {
			s.mu.Lock()
			s.device = optionals.Some(d)
			s.mu.Unlock()
			s.log.WithField("device", name).Info("attached capture interface")
			return nil
		}
	}
	return newUserError("device %q is not in the list of capture interfaces", name)
}

// SetFile creates (or truncates) the report file at path.
func (s *Sniffer) SetFile(path string) error {
	file, err := report.Create(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.file = optionals.Some(file)
	s.mu.Unlock()
	return nil
}

// SetInterval stores the periodic report interval. 0 means "on demand
// only", the default.
func (s *Sniffer) SetInterval(d time.Duration) {
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()
}

// GetStatus returns the Sniffer's current lifecycle state and, if it is
// Error, the associated message.
func (s *Sniffer) GetStatus() (lifecycle.State, string) {
	return s.status.Get()
}

// Run spawns the Capture and Decode/Aggregate tasks and transitions the
// lifecycle to Running. It requires a device and a report file to already
// be set.
func (s *Sniffer) Run() error {
	return s.run(false)
}

// RunWithInterval additionally spawns the Periodic Reporter task, on top of
// everything Run does. It requires a positive interval to already be set.
func (s *Sniffer) RunWithInterval() error {
	return s.run(true)
}

func (s *Sniffer) run(withInterval bool) error {
	s.mu.Lock()
	device, hasDevice := s.device.Get()
	file, hasFile := s.file.Get()
	interval := s.interval
	s.mu.Unlock()

	if !hasFile {
		return newUserError("File is null, set a report file with SetFile before running")
	}
	if !hasDevice {
		return newUserError("You have to specify a device to sniff on, attach one first")
	}
	if withInterval && interval <= 0 {
		return newUserError("You have to specify a positive report interval to run with interval reporting")
	}

	if !s.status.Run() {
		return newUserWarning("Another scanning is already running, stop it before starting a new one")
	}

	handle, err := s.openHandle(device.Name)
	if err != nil {
		captureErr := NewCaptureError(err, "failed to open capture handle for %q", device.Name)
		s.status.Fail(captureErr.Error())
		return captureErr
	}

	ownAddrs := sets.NewSet[string]()
	for _, ip := range device.IPs {
		ownAddrs.Insert(decode.RenderAddr(ip))
	}

	ch := make(chan capture.RawFrame, channelCapacity)

	log := s.log.WithField("device", device.Name)
	capStage := &capture.Stage{
		Handle: handle,
		Status: s.status,
		Pool:   s.pool,
		Out:    ch,
		Log:    log.WithField("stage", "capture"),
	}
	pipeStage := &pipeline.Stage{
		In:       ch,
		Table:    s.table,
		OwnAddrs: ownAddrs,
		Log:      log.WithField("stage", "decode"),
	}

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		capStage.Run()
		handle.Close()
		close(ch)
	}()
	go func() {
		defer s.wg.Done()
		pipeStage.Run()
	}()

	if withInterval {
		rep := &report.Reporter{
			File:     file,
			Table:    s.table,
			Status:   s.status,
			Interval: interval,
			Iface:    device.Name,
			Addrs:    device.Addresses,
			Log:      log.WithField("stage", "report"),
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			rep.Run()
		}()
	}

	return nil
}

// Pause transitions a Running Sniffer to Wait. Workers observe this at
// their next safe point; no in-flight frame is lost.
func (s *Sniffer) Pause() error {
	state, _ := s.status.Get()
	if state == lifecycle.Wait {
		return newUserWarning("already paused")
	}
	if !s.status.Pause() {
		return newUserWarning("cannot pause while in state %s", state)
	}
	return nil
}

// Resume transitions a Wait Sniffer back to Running and wakes every worker
// blocked on the lifecycle condition.
func (s *Sniffer) Resume() error {
	if s.status.Resume() {
		return nil
	}
	state, _ := s.status.Get()
	return newUserWarning("cannot resume while in state %s", state)
}

// SaveReport renders and writes the full report, then transitions the
// lifecycle to Stop and blocks until every worker task has exited.
func (s *Sniffer) SaveReport() error {
	state, _ := s.status.Get()
	if state == lifecycle.Stop {
		return newUserWarning("sniffer is already stopped, nothing to save")
	}

	s.mu.Lock()
	file, hasFile := s.file.Get()
	device, _ := s.device.Get()
	interval := s.interval
	s.mu.Unlock()

	if !hasFile {
		return newUserError("File is null, set a report file with SetFile before saving")
	}

	// With no interval reporter running, nothing has been appended yet for
	// this run; rewind so the final report replaces any earlier content
	// instead of appending after it.
	if interval <= 0 {
		if err := file.Rewind(); err != nil {
			return errors.Wrap(err, "failed to rewind report file")
		}
	}

	content := report.Render(file, device.Name, device.Addresses, s.table, time.Now())
	if err := file.Append([]byte(content)); err != nil {
		return errors.Wrap(err, "failed to write report file")
	}

	s.status.SaveReport()
	s.wg.Wait()

	return nil
}
