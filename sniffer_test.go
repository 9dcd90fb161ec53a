package netsniff

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/mel2oo/netsniff/capture"
	"github.com/mel2oo/netsniff/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingHandle never produces a packet; NextPacket blocks briefly and
// returns a transient error (not the read-timeout sentinel), which the
// capture stage logs and continues past. Once closed it returns io.EOF.
type blockingHandle struct {
	closed chan struct{}
}

func newBlockingHandle() *blockingHandle {
	return &blockingHandle{closed: make(chan struct{})}
}

func (h *blockingHandle) NextPacket() ([]byte, capture.Timestamp, error) {
	select {
	case <-h.closed:
		return nil, capture.Timestamp{}, io.EOF
	case <-time.After(5 * time.Millisecond):
		// Not the timeout sentinel: the capture stage logs and continues
		// regardless, same as any other transient capture error.
		return nil, capture.Timestamp{}, io.ErrNoProgress
	}
}

func (h *blockingHandle) Close() {
	select {
	case <-h.closed:
	default:
		close(h.closed)
	}
}

func testDevice(name string) capture.Device {
	return capture.Device{Name: name, Addresses: []string{"10.0.0.5"}}
}

func newTestSniffer(t *testing.T) (*Sniffer, string) {
	t.Helper()
	s := NewSniffer()
	s.listDevices = func() ([]capture.Device, error) {
		return []capture.Device{testDevice("eth-test")}, nil
	}
	s.openHandle = func(name string) (capture.Handle, error) {
		return newBlockingHandle(), nil
	}

	dir := t.TempDir()
	return s, filepath.Join(dir, "report.txt")
}

func TestInitialStatusIsStop(t *testing.T) {
	s := NewSniffer()
	state, _ := s.GetStatus()
	assert.Equal(t, lifecycle.Stop, state)
}

func TestRunWithoutFileIsUserError(t *testing.T) {
	s, _ := newTestSniffer(t)
	require.NoError(t, s.Attach("eth-test"))

	err := s.Run()
	var userErr *UserError
	require.ErrorAs(t, err, &userErr)

	state, _ := s.GetStatus()
	assert.Equal(t, lifecycle.Stop, state)
}

func TestRunWithoutDeviceIsUserError(t *testing.T) {
	s, path := newTestSniffer(t)
	require.NoError(t, s.SetFile(path))

	err := s.Run()
	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
}

func TestDoubleRunIsUserWarning(t *testing.T) {
	s, path := newTestSniffer(t)
	require.NoError(t, s.Attach("eth-test"))
	require.NoError(t, s.SetFile(path))

	require.NoError(t, s.Run())

	err := s.Run()
	var warning *UserWarning
	require.ErrorAs(t, err, &warning)

	require.NoError(t, s.SaveReport())
}

func TestPauseThenResume(t *testing.T) {
	s, path := newTestSniffer(t)
	require.NoError(t, s.Attach("eth-test"))
	require.NoError(t, s.SetFile(path))
	require.NoError(t, s.Run())

	require.NoError(t, s.Pause())
	state, _ := s.GetStatus()
	assert.Equal(t, lifecycle.Wait, state)

	var warning *UserWarning
	require.ErrorAs(t, s.Pause(), &warning)

	require.NoError(t, s.Resume())
	state, _ = s.GetStatus()
	assert.Equal(t, lifecycle.Running, state)

	require.NoError(t, s.SaveReport())
}

func TestRunWithIntervalRequiresPositiveInterval(t *testing.T) {
	s, path := newTestSniffer(t)
	require.NoError(t, s.Attach("eth-test"))
	require.NoError(t, s.SetFile(path))

	err := s.RunWithInterval()
	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
}

func TestSaveReportLeavesStop(t *testing.T) {
	s, path := newTestSniffer(t)
	require.NoError(t, s.Attach("eth-test"))
	require.NoError(t, s.SetFile(path))
	require.NoError(t, s.Run())

	require.NoError(t, s.SaveReport())

	state, _ := s.GetStatus()
	assert.Equal(t, lifecycle.Stop, state)
}

func TestSaveReportWhenAlreadyStoppedIsUserWarning(t *testing.T) {
	s, path := newTestSniffer(t)
	require.NoError(t, s.Attach("eth-test"))
	require.NoError(t, s.SetFile(path))

	err := s.SaveReport()
	var warning *UserWarning
	require.ErrorAs(t, err, &warning)
}

func TestAttachRejectsUnknownDevice(t *testing.T) {
	s, _ := newTestSniffer(t)
	err := s.Attach("does-not-exist")
	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
}

func TestListDevicesIncludesAttachedDevice(t *testing.T) {
	s, _ := newTestSniffer(t)
	devices, err := s.ListDevices()
	require.NoError(t, err)
	require.Len(t, devices, 1)
	require.NoError(t, s.Attach(devices[0].Name))
}
