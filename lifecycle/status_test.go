package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialStateIsStop(t *testing.T) {
	s := New()
	state, _ := s.Get()
	assert.Equal(t, Stop, state)
}

func TestRunPauseResume(t *testing.T) {
	s := New()
	require.True(t, s.Run())

	state, _ := s.Get()
	assert.Equal(t, Running, state)

	require.True(t, s.Pause())
	state, _ = s.Get()
	assert.Equal(t, Wait, state)

	// A second pause is invalid from Wait.
	assert.False(t, s.Pause())

	require.True(t, s.Resume())
	state, _ = s.Get()
	assert.Equal(t, Running, state)
}

func TestInvalidTransitionsAreRejected(t *testing.T) {
	s := New()
	assert.False(t, s.Pause()) // pause from Stop
	assert.False(t, s.Resume())
	assert.False(t, s.SaveReport()) // save_report from Stop
	require.True(t, s.Run())        // run from Stop is fine once, but not twice
	assert.False(t, s.Run())        // already running
}

func TestSaveReportLeavesStop(t *testing.T) {
	s := New()
	require.True(t, s.Run())
	require.True(t, s.SaveReport())
	state, _ := s.Get()
	assert.Equal(t, Stop, state)
}

func TestSaveReportFromWaitLeavesStop(t *testing.T) {
	s := New()
	require.True(t, s.Run())
	require.True(t, s.Pause())
	require.True(t, s.SaveReport())
	state, _ := s.Get()
	assert.Equal(t, Stop, state)
}

func TestFailTransitionsFromAnyState(t *testing.T) {
	s := New()
	s.Fail("capture handle closed")
	state, msg := s.Get()
	assert.Equal(t, Error, state)
	assert.Equal(t, "capture handle closed", msg)
}

func TestWaitWhileWaitingBlocksUntilResume(t *testing.T) {
	s := New()
	require.True(t, s.Run())
	require.True(t, s.Pause())

	done := make(chan State, 1)
	go func() {
		done <- s.WaitWhileWaiting()
	}()

	select {
	case <-done:
		t.Fatal("WaitWhileWaiting returned before Resume")
	case <-time.After(50 * time.Millisecond):
	}

	require.True(t, s.Resume())

	select {
	case state := <-done:
		assert.Equal(t, Running, state)
	case <-time.After(time.Second):
		t.Fatal("WaitWhileWaiting did not wake after Resume")
	}
}
