package trainer

import (
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lowaak/smart-trainer/interval-timer/internal/clock"
	"github.com/lowaak/smart-trainer/interval-timer/internal/intervals"
)

const (
	waitFor = 2 * time.Second
	pollIn  = 5 * time.Millisecond
)

var testStart = time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)

type recordingAnnouncer struct {
	mu    sync.Mutex
	texts []string
}

func (r *recordingAnnouncer) Announce(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
}

func (r *recordingAnnouncer) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

type recordingSink struct {
	mu     sync.Mutex
	latest intervals.Snapshot
	count  int
}

func (r *recordingSink) SetSessionState(snapshot intervals.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest = snapshot
	r.count++
}

func (r *recordingSink) snapshot() intervals.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

type managerHarness struct {
	wm        *WorkoutManager
	clock     *clock.Fake
	announcer *recordingAnnouncer
	sink      *recordingSink
}

func newManagerHarness(t *testing.T, inputs intervals.Inputs) *managerHarness {
	t.Helper()
	h := &managerHarness{
		clock:     clock.NewFake(testStart),
		announcer: &recordingAnnouncer{},
		sink:      &recordingSink{},
	}
	h.wm = NewWorkoutManager(NewWorkoutManagerArg{
		Inputs:    inputs,
		Announcer: h.announcer,
		Sink:      h.sink,
		Clock:     h.clock,
		Logger:    log.New(io.Discard, "", 0),
	})
	t.Cleanup(h.wm.Shutdown)
	return h
}

// waitArmed blocks until the workout goroutine has armed its timer
func (h *managerHarness) waitArmed(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool { return h.clock.PendingTimers() == 1 }, waitFor, pollIn)
}

// step waits for the armed timer and moves the clock by d
func (h *managerHarness) step(t *testing.T, d time.Duration) {
	t.Helper()
	h.waitArmed(t)
	h.clock.Advance(d)
}

func (h *managerHarness) waitStatus(t *testing.T, status intervals.Status) {
	t.Helper()
	require.Eventually(t, func() bool { return h.sink.snapshot().Status == status }, waitFor, pollIn)
}

func (h *managerHarness) waitElapsed(t *testing.T, elapsed int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.sink.snapshot().Elapsed == elapsed }, waitFor, pollIn)
}

var scenarioInputs = intervals.Inputs{Leadin: "5", Work: "10", Break: "3", Sets: "2"}

func TestNewWorkoutManager_Panics(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	assert.Panics(t, func() {
		NewWorkoutManager(NewWorkoutManagerArg{Announcer: &recordingAnnouncer{}, Sink: &recordingSink{}, Clock: clock.Real})
	})
	assert.Panics(t, func() {
		NewWorkoutManager(NewWorkoutManagerArg{Announcer: &recordingAnnouncer{}, Sink: &recordingSink{}, Logger: logger})
	})
}

func TestWorkoutManager_StartsReady(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := newManagerHarness(t, scenarioInputs)

	snap := h.sink.snapshot()
	assert.Equal(t, intervals.StatusReady, snap.Status)
	assert.Equal(t, 28, snap.Total)
	assert.Equal(t, 0, h.clock.PendingTimers())

	h.wm.Shutdown()
}

func TestWorkoutManager_RunsScenarioToCompletion(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := newManagerHarness(t, scenarioInputs)

	h.wm.Play()
	h.waitStatus(t, intervals.StatusPlaying)
	for second := 1; second < 28; second++ {
		h.step(t, time.Second)
		h.waitElapsed(t, second)
	}
	h.step(t, time.Second)
	h.waitStatus(t, intervals.StatusReady)

	assert.Equal(t, []string{"3", "2", "1", "go", "3", "2", "1", "3", "2", "1", "go", "3", "2", "1", "done"}, h.announcer.all())
	assert.Equal(t, 0, h.sink.snapshot().Elapsed)
	assert.Equal(t, 0, h.clock.PendingTimers(), "a completed session must not stay armed")

	h.wm.Shutdown()
}

func TestWorkoutManager_PauseDisarmsTimer(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := newManagerHarness(t, scenarioInputs)

	h.wm.Play()
	h.step(t, time.Second)
	h.waitElapsed(t, 1)

	h.wm.Pause()
	h.waitStatus(t, intervals.StatusPaused)
	require.Eventually(t, func() bool { return h.clock.PendingTimers() == 0 }, waitFor, pollIn)

	// Time passing while paused is not counted
	h.clock.Advance(time.Minute)
	assert.Equal(t, 1, h.sink.snapshot().Elapsed)

	h.wm.Play()
	h.waitStatus(t, intervals.StatusPlaying)
	h.step(t, time.Second)
	h.waitElapsed(t, 2)
	assert.Equal(t, 3, h.sink.snapshot().Remaining.Leadin)

	h.wm.Shutdown()
}

func TestWorkoutManager_ToggleAndRestart(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := newManagerHarness(t, scenarioInputs)

	h.wm.Toggle()
	h.waitStatus(t, intervals.StatusPlaying)
	h.step(t, 3*time.Second)
	h.waitElapsed(t, 3)

	h.wm.Toggle()
	h.waitStatus(t, intervals.StatusPaused)

	h.wm.Restart()
	h.waitStatus(t, intervals.StatusReady)
	h.waitElapsed(t, 0)
	assert.Equal(t, 0, h.clock.PendingTimers())

	h.wm.Shutdown()
}

func TestWorkoutManager_InputWhilePlayingKeepsTicking(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := newManagerHarness(t, scenarioInputs)

	h.wm.Play()
	h.waitStatus(t, intervals.StatusPlaying)
	h.wm.SetInput(intervals.PhaseWork, "20")
	require.Eventually(t, func() bool { return h.sink.snapshot().Inputs.Work == "20" }, waitFor, pollIn)

	// Still the old durations, and the timer was re-armed
	assert.Equal(t, 10, h.sink.snapshot().Durations.Work)
	h.step(t, time.Second)
	h.waitElapsed(t, 1)

	h.wm.Restart()
	require.Eventually(t, func() bool { return h.sink.snapshot().Durations.Work == 20 }, waitFor, pollIn)

	h.wm.Shutdown()
}

func TestWorkoutManager_HiddenWakesForAnnouncementsOnly(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := newManagerHarness(t, scenarioInputs)

	h.wm.Play()
	h.waitStatus(t, intervals.StatusPlaying)
	h.wm.SetHidden(true)
	require.Eventually(t, func() bool { return h.sink.snapshot().Hidden }, waitFor, pollIn)

	// The first announcement is the countdown at 2s, so a 1s advance wakes nothing
	h.step(t, time.Second)
	assert.Equal(t, 1, h.clock.PendingTimers())
	assert.Equal(t, 0, h.sink.snapshot().Elapsed)

	h.clock.Advance(time.Second)
	h.waitElapsed(t, 2)
	assert.Equal(t, []string{"3"}, h.announcer.all())

	// Becoming visible ticks right away
	h.clock.Advance(1500 * time.Millisecond)
	h.wm.SetHidden(false)
	h.waitElapsed(t, 4)

	h.wm.Shutdown()
}

func TestWorkoutManager_NothingToPlay(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := newManagerHarness(t, intervals.Inputs{Leadin: "5", Work: "10", Break: "3", Sets: "0"})

	h.wm.Play()
	require.Eventually(t, func() bool {
		h.sink.mu.Lock()
		defer h.sink.mu.Unlock()
		return h.sink.count >= 2
	}, waitFor, pollIn)
	assert.Equal(t, intervals.StatusReady, h.sink.snapshot().Status)
	assert.Equal(t, 0, h.clock.PendingTimers())

	h.wm.Shutdown()
}

func TestWorkoutManager_ShutdownIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := newManagerHarness(t, scenarioInputs)

	h.wm.Play()
	h.waitArmed(t)
	h.wm.Shutdown()
	h.wm.Shutdown()

	// Commands after shutdown are dropped without blocking
	h.wm.Play()
	h.wm.Pause()
	assert.Equal(t, 0, h.clock.PendingTimers())
}
