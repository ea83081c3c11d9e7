package trainer

import (
	"context"
	"log"
	"sync"

	"github.com/lowaak/smart-trainer/interval-timer/internal/events"
	"github.com/lowaak/smart-trainer/interval-timer/internal/go_func_utils"
	"github.com/lowaak/smart-trainer/interval-timer/internal/intervals"
)

// UIState holds the current state of the UI that views need to render
type UIState struct {
	Mode UIMode
}

// UIModel holds everything the views render. It is the session's StateSink and one of its
// announcers, so the workout goroutine pushes every snapshot and cue through it.
type UIModel struct {
	logEvent              *events.ChannelEvent[string]
	closeApplicationEvent *events.ChannelEvent[struct{}]
	uiStateEvent          *events.ChannelEvent[UIState]
	uiState               UIState
	sessionStateEvent     *events.ChannelEvent[intervals.Snapshot]
	sessionState          intervals.Snapshot
	announcementEvent     *events.CallbackEvent[string]
	lastAnnouncement      string
	inputsStore           *InputsStore
	logLines              []string
	logMu                 sync.RWMutex
	mu                    sync.RWMutex
	ctx                   context.Context
	cancel                context.CancelFunc
	wg                    sync.WaitGroup
	logger                *log.Logger
}

const maxLogLines = 1000

// NewUIModel creates the model. inputsStore may be nil, in which case inputs are not remembered.
func NewUIModel(logger *log.Logger, uiLogChan <-chan string, inputsStore *InputsStore) *UIModel {
	if logger == nil {
		panic("UIModel: logger cannot be nil")
	}
	if uiLogChan == nil {
		panic("UIModel: uiLogChan cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	model := &UIModel{
		logEvent:              events.NewChannelEvent[string](false),
		closeApplicationEvent: events.NewChannelEvent[struct{}](true),
		uiStateEvent:          events.NewChannelEvent[UIState](true),
		uiState:               UIState{Mode: UIModeTimer},
		sessionStateEvent:     events.NewChannelEvent[intervals.Snapshot](true),
		announcementEvent:     events.NewCallbackEvent[string](false),
		inputsStore:           inputsStore,
		logLines:              make([]string, 0, maxLogLines),
		ctx:                   ctx,
		cancel:                cancel,
		logger:                logger,
	}

	// Read from the UI log channel and populate logLines
	go_func_utils.SafeGoWG(model.logger, &model.wg, func() { model.readFromLogChannel(ctx, uiLogChan) })

	return model
}

// Shutdown stops all goroutines and waits for them to finish
func (m *UIModel) Shutdown() {
	m.logger.Println("UIModel: Shutting down")
	m.cancel()
	m.wg.Wait()
	m.logger.Println("UIModel: Shutdown complete")
}

// ListenToLog registers a channel to receive log messages
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToLog(ch chan<- string) func() {
	return m.logEvent.Listen(ch)
}

// ListenToCloseApplication registers a channel to receive close application signals
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToCloseApplication(ch chan<- struct{}) func() {
	return m.closeApplicationEvent.Listen(ch)
}

// RequestCloseApplication signals that the application should close
func (m *UIModel) RequestCloseApplication() {
	m.closeApplicationEvent.Notify(struct{}{})
}

// ListenToUIState registers a channel to receive UI state changes
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToUIState(ch chan<- UIState) func() {
	return m.uiStateEvent.Listen(ch)
}

// GetUIState returns the current UI state
func (m *UIModel) GetUIState() UIState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.uiState
}

// SetMode updates the current UI mode and notifies listeners
func (m *UIModel) SetMode(mode UIMode) {
	m.mu.Lock()
	if m.uiState.Mode == mode {
		m.mu.Unlock()
		return
	}
	m.uiState.Mode = mode
	state := m.uiState
	m.mu.Unlock()

	m.uiStateEvent.Notify(state)
}

// ListenToSessionState registers a channel to receive session snapshots
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToSessionState(ch chan<- intervals.Snapshot) func() {
	return m.sessionStateEvent.Listen(ch)
}

// GetSessionState returns the latest session snapshot
func (m *UIModel) GetSessionState() intervals.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessionState
}

// SetSessionState stores a snapshot, remembers its inputs and notifies listeners
func (m *UIModel) SetSessionState(snapshot intervals.Snapshot) {
	m.mu.Lock()
	m.sessionState = snapshot
	m.mu.Unlock()

	if m.inputsStore != nil {
		if err := m.inputsStore.Save(snapshot.Inputs); err != nil {
			m.logger.Printf("UIModel: %v", err)
		}
	}

	m.sessionStateEvent.Notify(snapshot)
}

// ListenToAnnouncements registers a callback for every announcement.
// Callbacks run on the workout goroutine and must not block.
func (m *UIModel) ListenToAnnouncements(callback func(text string)) func() {
	return m.announcementEvent.Listen(callback)
}

// GetLastAnnouncement returns the most recent announcement text
func (m *UIModel) GetLastAnnouncement() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastAnnouncement
}

// Announce records an announcement for display
func (m *UIModel) Announce(text string) {
	m.mu.Lock()
	m.lastAnnouncement = text
	m.mu.Unlock()

	m.announcementEvent.Notify(text)
}

// readFromLogChannel reads log lines from the channel and populates logLines
func (m *UIModel) readFromLogChannel(ctx context.Context, logChan <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-logChan:
			if !ok {
				return
			}

			m.logMu.Lock()
			m.logLines = append(m.logLines, line)
			if len(m.logLines) > maxLogLines {
				m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
			}
			m.logMu.Unlock()

			// Notify listeners for immediate display
			m.logEvent.Notify(line)
		}
	}
}

// GetLogTail returns the last n lines of logs
func (m *UIModel) GetLogTail(n int) []string {
	m.logMu.RLock()
	defer m.logMu.RUnlock()

	if n <= 0 {
		return []string{}
	}
	if n > len(m.logLines) {
		n = len(m.logLines)
	}
	result := make([]string, n)
	copy(result, m.logLines[len(m.logLines)-n:])
	return result
}
