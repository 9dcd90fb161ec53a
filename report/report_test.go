package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mel2oo/netsniff/decode"
	"github.com/mel2oo/netsniff/flow"
	"github.com/mel2oo/netsniff/lifecycle"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTempFile(t *testing.T) *File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.txt")
	f, err := Create(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestRenderHeadingAndTableColumnOrder(t *testing.T) {
	table := flow.New()
	table.Merge(flow.Key{Addr: "93.184.216.34", Port: 443}, decode.ProtocolTCP, 512, time.Unix(0, 1_000_000_000).UnixNano())

	f := newTempFile(t)
	now := time.Date(2026, 7, 29, 10, 30, 0, 0, time.UTC)

	content := Render(f, "eth0", []string{"10.0.0.5"}, table, now)

	assert.Contains(t, content, "Scanning on:\n    - Interface eth0\n")
	assert.Contains(t, content, "Addresses:\n    - 10.0.0.5\n")
	assert.Contains(t, content, "Update Time: 2026-07-29 10:30:00")
	assert.Contains(t, content, "IP Address")
	assert.Contains(t, content, "Bytes Transmitted")

	// Column headers appear in the report format's fixed order.
	prev := -1
	for _, col := range []string{"IP Address", "Port", "Protocol", "Bytes Transmitted", "First Timestamp", "Last Timestamp"} {
		idx := strings.Index(content, col)
		assert.Greater(t, idx, prev, "column %q out of order", col)
		prev = idx
	}

	assert.Contains(t, content, "93.184.216.34")
	assert.Contains(t, content, "443")
	assert.Contains(t, content, "TCP")
	assert.Contains(t, content, "512")
}

func TestRenderOnlyWritesHeadingOnce(t *testing.T) {
	table := flow.New()
	f := newTempFile(t)
	now := time.Now()

	first := Render(f, "eth0", nil, table, now)
	second := Render(f, "eth0", nil, table, now)

	assert.Contains(t, first, "Scanning on:")
	assert.NotContains(t, second, "Scanning on:")
}

func TestRewindResetsHeaderAndTruncates(t *testing.T) {
	f := newTempFile(t)
	require.NoError(t, f.Append([]byte("stale content")))

	require.NoError(t, f.Rewind())

	data, err := os.ReadFile(f.path)
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.True(t, f.needsHeader())
}

func TestAppendAddsToEndOfFile(t *testing.T) {
	f := newTempFile(t)
	require.NoError(t, f.Append([]byte("first\n")))
	require.NoError(t, f.Append([]byte("second\n")))

	data, err := os.ReadFile(f.path)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}

func TestReporterWritesOnEachIntervalWhileRunning(t *testing.T) {
	table := flow.New()
	table.Merge(flow.Key{Addr: "1.2.3.4", Port: 80}, decode.ProtocolTCP, 10, 1)

	f := newTempFile(t)
	status := lifecycle.New()
	require.True(t, status.Run())

	reporter := &Reporter{
		File:     f,
		Table:    table,
		Status:   status,
		Interval: 10 * time.Millisecond,
		Iface:    "eth0",
		Addrs:    []string{"1.2.3.4"},
		Log:      logrus.NewEntry(logrus.New()),
		now:      time.Now,
	}

	done := make(chan struct{})
	go func() {
		reporter.Run()
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	status.SaveReport()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reporter did not exit after SaveReport")
	}

	data, err := os.ReadFile(f.path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1.2.3.4")
	assert.Contains(t, string(data), "Scanning on:")
	// More than one interval elapsed, so more than one table was appended.
	assert.GreaterOrEqual(t, strings.Count(string(data), "IP Address"), 2)
}

func TestReporterDoesNotWriteWhilePaused(t *testing.T) {
	table := flow.New()
	f := newTempFile(t)
	status := lifecycle.New()
	require.True(t, status.Run())
	require.True(t, status.Pause())

	reporter := &Reporter{
		File:     f,
		Table:    table,
		Status:   status,
		Interval: 5 * time.Millisecond,
		Iface:    "eth0",
		Log:      logrus.NewEntry(logrus.New()),
	}

	done := make(chan struct{})
	go func() {
		reporter.Run()
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	status.SaveReport()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reporter did not exit after SaveReport while paused")
	}

	data, err := os.ReadFile(f.path)
	require.NoError(t, err)
	assert.Empty(t, data)
}
