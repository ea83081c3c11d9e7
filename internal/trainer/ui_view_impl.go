package trainer

import "github.com/lowaak/smart-trainer/interval-timer/internal/intervals"

// UIViewImpl defines the interface for framework-specific UI implementations
type UIViewImpl interface {
	// Initialize is called after construction to set up framework-specific widgets
	// controller is used to handle UI events
	Initialize(controller *UIController)

	// SetupKeyboardHandlers sets up keyboard event handlers
	// controller is used to handle keyboard events
	SetupKeyboardHandlers(controller *UIController)

	// Run starts the UI framework and blocks until it exits
	Run() error

	// Stop stops the UI framework
	Stop()

	// Draw refreshes/redraws the UI
	Draw() error

	// --- Mode Management ---

	// SetMode switches the UI to the specified mode
	SetMode(mode UIMode)

	// GetCurrentMode returns the currently active UI mode
	GetCurrentMode() UIMode

	// --- Log View (shared across modes) ---

	// GetLogViewHeight returns the visible height of the log view
	GetLogViewHeight() int

	// ClearLogView clears the log view
	ClearLogView()

	// WriteLogLine writes a line to the log view
	WriteLogLine(line string) error

	// SetLogHistory replaces the content of the Log mode page
	SetLogHistory(lines []string)

	// --- Timer Mode ---

	// UpdateSessionState updates the fields, remaining labels and status line
	UpdateSessionState(snapshot intervals.Snapshot)

	// UpdateAnnouncement shows the most recent announcement
	UpdateAnnouncement(text string)
}
