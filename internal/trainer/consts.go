package trainer

import "github.com/lowaak/smart-trainer/interval-timer/internal/intervals"

// UIMode represents the current UI mode/screen
type UIMode int

const (
	UIModeTimer UIMode = iota // Inputs, remaining labels and play controls
	UIModeLog                 // Full-height log
	UIModeAbout               // Usage and key bindings
)

// UIModeInfo contains display information for a UI mode
type UIModeInfo struct {
	Mode        UIMode
	DisplayName string
	KeyBinding  rune // The number key to activate this mode (1-9)
}

// AllUIModes defines all available UI modes in order
var AllUIModes = []UIModeInfo{
	{Mode: UIModeTimer, DisplayName: "Timer", KeyBinding: '1'},
	{Mode: UIModeLog, DisplayName: "Log", KeyBinding: '2'},
	{Mode: UIModeAbout, DisplayName: "About", KeyBinding: '3'},
}

// GetUIModeByKey returns the mode for a given key binding
func GetUIModeByKey(key rune) (UIMode, bool) {
	for _, info := range AllUIModes {
		if info.KeyBinding == key {
			return info.Mode, true
		}
	}
	return 0, false
}

// GetUIModeInfo returns the info for a given mode
func GetUIModeInfo(mode UIMode) (UIModeInfo, bool) {
	for _, info := range AllUIModes {
		if info.Mode == mode {
			return info, true
		}
	}
	return UIModeInfo{}, false
}

// PhaseDisplayInfo holds how a phase is shown on the timer page
type PhaseDisplayInfo struct {
	Phase       intervals.Phase
	DisplayName string
	Color       string // tview color tag used while the phase is running
	Placeholder string
}

// AllPhaseDisplays lists the phases in form order
var AllPhaseDisplays = []PhaseDisplayInfo{
	{Phase: intervals.PhaseLeadin, DisplayName: "Lead-in", Color: "yellow", Placeholder: "m:ss"},
	{Phase: intervals.PhaseWork, DisplayName: "Work", Color: "red", Placeholder: "m:ss"},
	{Phase: intervals.PhaseBreak, DisplayName: "Break", Color: "green", Placeholder: "m:ss"},
	{Phase: intervals.PhaseSets, DisplayName: "Sets", Color: "blue", Placeholder: "count"},
}

// GetPhaseDisplayInfo returns the display info for a phase. Every phase has one, so a miss
// is a programming error.
func GetPhaseDisplayInfo(phase intervals.Phase) PhaseDisplayInfo {
	for _, info := range AllPhaseDisplays {
		if info.Phase == phase {
			return info
		}
	}
	panic("trainer: no display info for phase " + phase.String())
}

// statusColors maps a session status to the color of the status line
var statusColors = map[intervals.Status]string{
	intervals.StatusReady:   "gray",
	intervals.StatusPlaying: "green",
	intervals.StatusPaused:  "yellow",
}
