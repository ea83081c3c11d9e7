package trainer

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lowaak/smart-trainer/interval-timer/internal/intervals"
)

func newTestModel(t *testing.T, store *InputsStore) (*UIModel, chan string) {
	t.Helper()
	logChan := make(chan string, 16)
	model := NewUIModel(discardLogger(), logChan, store)
	t.Cleanup(model.Shutdown)
	return model, logChan
}

func TestNewUIModel_Panics(t *testing.T) {
	assert.Panics(t, func() { NewUIModel(nil, make(chan string), nil) })
	assert.Panics(t, func() { NewUIModel(discardLogger(), nil, nil) })
}

func TestUIModel_LogTail(t *testing.T) {
	defer goleak.VerifyNone(t)
	model, logChan := newTestModel(t, nil)

	received := make(chan string, 16)
	unregister := model.ListenToLog(received)
	defer unregister()

	for i := 0; i < 5; i++ {
		logChan <- fmt.Sprintf("line %d", i)
	}
	require.Eventually(t, func() bool { return len(model.GetLogTail(10)) == 5 }, waitFor, pollIn)

	assert.Equal(t, []string{"line 3", "line 4"}, model.GetLogTail(2))
	assert.Empty(t, model.GetLogTail(0))
	assert.Equal(t, "line 0", <-received)

	model.Shutdown()
}

func TestUIModel_LogTailIsBounded(t *testing.T) {
	defer goleak.VerifyNone(t)
	model, logChan := newTestModel(t, nil)

	for i := 0; i < maxLogLines+10; i++ {
		logChan <- fmt.Sprintf("line %d", i)
	}
	require.Eventually(t, func() bool {
		tail := model.GetLogTail(1)
		return len(tail) == 1 && tail[0] == fmt.Sprintf("line %d", maxLogLines+9)
	}, waitFor, pollIn)

	all := model.GetLogTail(maxLogLines * 2)
	assert.Len(t, all, maxLogLines)
	assert.Equal(t, "line 10", all[0])

	model.Shutdown()
}

func TestUIModel_SetModeNotifiesOnChange(t *testing.T) {
	model, _ := newTestModel(t, nil)
	assert.Equal(t, UIModeTimer, model.GetUIState().Mode)

	states := make(chan UIState, 4)
	unregister := model.ListenToUIState(states)
	defer unregister()

	model.SetMode(UIModeTimer)
	model.SetMode(UIModeLog)
	model.SetMode(UIModeLog)

	require.Len(t, states, 1)
	assert.Equal(t, UIModeLog, (<-states).Mode)
	assert.Equal(t, UIModeLog, model.GetUIState().Mode)
}

func TestUIModel_SessionStateReplaysToLateListeners(t *testing.T) {
	model, _ := newTestModel(t, nil)
	snapshot := intervals.Snapshot{Status: intervals.StatusPaused, Elapsed: 7, Total: 28}

	model.SetSessionState(snapshot)
	assert.Equal(t, snapshot, model.GetSessionState())

	late := make(chan intervals.Snapshot, 1)
	unregister := model.ListenToSessionState(late)
	defer unregister()
	require.Len(t, late, 1)
	assert.Equal(t, snapshot, <-late)
}

func TestUIModel_Announce(t *testing.T) {
	model, _ := newTestModel(t, nil)

	var mu sync.Mutex
	var heard []string
	unregister := model.ListenToAnnouncements(func(text string) {
		mu.Lock()
		heard = append(heard, text)
		mu.Unlock()
	})

	model.Announce("go")
	model.Announce("3")
	unregister()
	model.Announce("done")

	mu.Lock()
	assert.Equal(t, []string{"go", "3"}, heard)
	mu.Unlock()
	assert.Equal(t, "done", model.GetLastAnnouncement())
}

func TestUIModel_SessionStateRemembersInputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_inputs.yaml")
	model, _ := newTestModel(t, NewInputsStore(path, discardLogger()))
	in := intervals.Inputs{Leadin: "0:03", Work: "45", Break: "15", Sets: "4", Halfway: true}

	model.SetSessionState(intervals.Snapshot{Inputs: in})

	got, ok, err := NewInputsStore(path, discardLogger()).Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, in, got)
}

func TestUIModel_CloseApplication(t *testing.T) {
	model, _ := newTestModel(t, nil)

	closed := make(chan struct{}, 1)
	unregister := model.ListenToCloseApplication(closed)
	defer unregister()

	model.RequestCloseApplication()
	require.Len(t, closed, 1)
}
