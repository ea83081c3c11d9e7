package trainer

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lowaak/smart-trainer/interval-timer/internal/intervals"
)

// Page names for tview.Pages
const (
	pageTimer = "timer"
	pageLog   = "log"
	pageAbout = "about"
)

const halfwayLabel = "Halfway"

// playButtonIndex is the form focus index of the Play button: the phase fields, the checkbox, then buttons
var playButtonIndex = len(AllPhaseDisplays) + 1

// CursesUIViewImpl implements UIViewImpl using tview (curses-based terminal UI)
type CursesUIViewImpl struct {
	logger      *log.Logger
	app         *tview.Application
	currentMode UIMode

	// Root container that holds all pages
	pages *tview.Pages

	// Shared components (visible in all modes)
	logView  *tview.TextView
	mainFlex *tview.Flex // Main layout: mode content on left, logs on right

	// Timer mode components
	timerFlex        *tview.Flex
	settingsForm     *tview.Form
	inputFields      map[intervals.Phase]*tview.InputField
	halfwayCheckbox  *tview.Checkbox
	remainingPanel   *tview.TextView
	statusPanel      *tview.TextView
	statusMu         sync.Mutex // session and announcement listeners both render the status
	lastAnnouncement string
	lastSnapshot     intervals.Snapshot

	// Log mode components
	logHistoryView *tview.TextView

	// About mode components
	aboutView *tview.TextView
}

func NewCursesUIView(logger *log.Logger, app *tview.Application) *CursesUIViewImpl {
	return &CursesUIViewImpl{
		logger:      logger,
		app:         app,
		currentMode: UIModeTimer,
		inputFields: make(map[intervals.Phase]*tview.InputField),
	}
}

// Initialize sets up the tview widgets
func (ui *CursesUIViewImpl) Initialize(controller *UIController) {
	// No SetChangedFunc(app.Draw) here: it can hang during shutdown once the app is
	// stopped. BaseUIView draws after every update.
	ui.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	ui.logView.SetBorder(true).SetTitle(" Logs ")

	ui.pages = tview.NewPages()

	ui.initTimerMode(controller)
	ui.initLogMode()
	ui.initAboutMode()

	ui.pages.AddPage(pageTimer, ui.timerFlex, true, true)
	ui.pages.AddPage(pageLog, ui.logHistoryView, true, false)
	ui.pages.AddPage(pageAbout, ui.aboutView, true, false)

	ui.mainFlex = tview.NewFlex().
		AddItem(ui.pages, 0, 2, true).
		AddItem(ui.logView, 0, 1, false)

	ui.setFocusForCurrentMode()
}

// initTimerMode sets up the settings form, remaining labels and status line
func (ui *CursesUIViewImpl) initTimerMode(controller *UIController) {
	ui.settingsForm = tview.NewForm()
	for _, display := range AllPhaseDisplays {
		phase := display.Phase
		field := tview.NewInputField().
			SetLabel(display.DisplayName).
			SetFieldWidth(10).
			SetPlaceholder(display.Placeholder).
			SetAcceptanceFunc(acceptDurationRune)
		field.SetFinishedFunc(func(key tcell.Key) {
			controller.OnInputChanged(phase, field.GetText())
		})
		ui.inputFields[phase] = field
		ui.settingsForm.AddFormItem(field)
	}
	ui.halfwayCheckbox = tview.NewCheckbox().
		SetLabel(halfwayLabel).
		SetChangedFunc(controller.OnHalfwayChanged)
	ui.settingsForm.AddFormItem(ui.halfwayCheckbox)
	ui.settingsForm.
		AddButton("Play", controller.PlayWorkout).
		AddButton("Pause", controller.PauseWorkout).
		AddButton("Restart", controller.RestartWorkout)
	ui.settingsForm.SetBorder(true).SetTitle(" Settings ")

	ui.remainingPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.remainingPanel.SetBorder(true).SetTitle(" Remaining ")

	ui.statusPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	ui.statusPanel.SetBorder(true).SetTitle(" Status ")

	rightColumn := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.remainingPanel, 0, 1, false).
		AddItem(ui.statusPanel, 5, 0, false)

	ui.timerFlex = tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.settingsForm, 0, 1, true).
		AddItem(rightColumn, 0, 1, false)
}

// initLogMode sets up the scrollable full log
func (ui *CursesUIViewImpl) initLogMode() {
	ui.logHistoryView = tview.NewTextView().
		SetDynamicColors(false).
		SetScrollable(true)
	ui.logHistoryView.SetBorder(true).SetTitle(" Log History ")
}

// initAboutMode sets up the usage text
func (ui *CursesUIViewImpl) initAboutMode() {
	ui.aboutView = tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true)
	ui.aboutView.SetBorder(true).SetTitle(" About ")

	var modes []string
	for _, info := range AllUIModes {
		modes = append(modes, fmt.Sprintf("[yellow]%c[white] %s", info.KeyBinding, info.DisplayName))
	}
	text := "\n  [yellow]Interval Timer[white]\n\n"
	text += "  Counts down a lead-in, then work and break for every set,\n"
	text += "  and speaks a countdown before every change.\n\n"
	text += "  Durations are seconds or [yellow]m:ss[white] / [yellow]h:mm:ss[white]. Unreadable values count as 0.\n"
	text += "  Fields are applied when you leave them, unless the timer is playing.\n\n"
	text += "  [gray]Keys:[white]\n"
	text += "  [yellow]Space[white] Play/Pause  |  [yellow]R[white] Restart  |  [yellow]Esc[white] Quit\n"
	text += "  " + strings.Join(modes, "  |  ") + "\n"
	ui.aboutView.SetText(text)
}

// acceptDurationRune admits digits and colons only
func acceptDurationRune(text string, lastChar rune) bool {
	return (lastChar >= '0' && lastChar <= '9') || lastChar == ':'
}

// SetMode switches the UI to the specified mode
func (ui *CursesUIViewImpl) SetMode(mode UIMode) {
	if ui.currentMode == mode {
		return
	}

	ui.currentMode = mode

	switch mode {
	case UIModeTimer:
		ui.pages.SwitchToPage(pageTimer)
	case UIModeLog:
		ui.pages.SwitchToPage(pageLog)
	case UIModeAbout:
		ui.pages.SwitchToPage(pageAbout)
	}

	ui.setFocusForCurrentMode()
}

// GetCurrentMode returns the currently active UI mode
func (ui *CursesUIViewImpl) GetCurrentMode() UIMode {
	return ui.currentMode
}

// setFocusForCurrentMode sets focus to the main widget of the current mode
func (ui *CursesUIViewImpl) setFocusForCurrentMode() {
	switch ui.currentMode {
	case UIModeTimer:
		// Start on the Play button so the rune shortcuts work right away
		ui.settingsForm.SetFocus(playButtonIndex)
		ui.app.SetFocus(ui.settingsForm)
	case UIModeLog:
		ui.app.SetFocus(ui.logHistoryView)
	case UIModeAbout:
		ui.app.SetFocus(ui.aboutView)
	}
}

// SetupKeyboardHandlers sets up keyboard event handlers
func (ui *CursesUIViewImpl) SetupKeyboardHandlers(controller *UIController) {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// Escape to quit
		if event.Key() == tcell.KeyEscape {
			controller.OnEscapeKey()
			return nil
		}

		// Typed characters belong to the focused field
		if _, typing := ui.app.GetFocus().(*tview.InputField); typing {
			return event
		}

		if event.Key() != tcell.KeyRune {
			return event
		}

		// Number keys for mode switching (1-9)
		if mode, ok := GetUIModeByKey(event.Rune()); ok {
			controller.OnModeChange(mode)
			return nil
		}

		if ui.currentMode == UIModeTimer {
			switch event.Rune() {
			case ' ':
				// Space on a focused button or checkbox activates it instead
				switch ui.app.GetFocus().(type) {
				case *tview.Button, *tview.Checkbox:
					return event
				}
				controller.ToggleWorkout()
				return nil
			case 'r', 'R':
				controller.RestartWorkout()
				return nil
			}
		}

		return event
	})
}

// GetLogViewHeight returns the visible height of the log view
func (ui *CursesUIViewImpl) GetLogViewHeight() int {
	_, _, _, height := ui.logView.GetInnerRect()
	return height
}

// ClearLogView clears the log view
func (ui *CursesUIViewImpl) ClearLogView() {
	ui.logView.Clear()
}

// WriteLogLine writes a line to the log view
func (ui *CursesUIViewImpl) WriteLogLine(line string) error {
	_, err := fmt.Fprint(ui.logView, tview.Escape(line))
	return err
}

// SetLogHistory replaces the content of the Log mode page
func (ui *CursesUIViewImpl) SetLogHistory(lines []string) {
	ui.logHistoryView.SetText(strings.Join(lines, ""))
	ui.logHistoryView.ScrollToEnd()
}

// UpdateSessionState updates the fields, remaining labels and status line
func (ui *CursesUIViewImpl) UpdateSessionState(snapshot intervals.Snapshot) {
	ui.statusMu.Lock()
	defer ui.statusMu.Unlock()
	ui.lastSnapshot = snapshot

	for phase, field := range ui.inputFields {
		// Never overwrite what the user is typing
		if field.HasFocus() {
			continue
		}
		if value := snapshot.Inputs.Get(phase); field.GetText() != value {
			field.SetText(value)
		}
	}
	if ui.halfwayCheckbox.IsChecked() != snapshot.Inputs.Halfway {
		ui.halfwayCheckbox.SetChecked(snapshot.Inputs.Halfway)
	}

	ui.remainingPanel.SetText(formatRemaining(snapshot))
	ui.statusPanel.SetText(formatStatus(snapshot, ui.lastAnnouncement))
}

// UpdateAnnouncement shows the most recent announcement
func (ui *CursesUIViewImpl) UpdateAnnouncement(text string) {
	ui.statusMu.Lock()
	defer ui.statusMu.Unlock()
	ui.lastAnnouncement = text
	ui.statusPanel.SetText(formatStatus(ui.lastSnapshot, text))
}

// formatRemaining renders one line per phase, highlighting the running one
func formatRemaining(snapshot intervals.Snapshot) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, display := range AllPhaseDisplays {
		label := snapshot.Label(display.Phase)
		if display.Phase == snapshot.Phase && snapshot.Status != intervals.StatusReady {
			fmt.Fprintf(&b, "  [%s]▶ %-8s %8s[white]\n\n", display.Color, display.DisplayName, label)
			continue
		}
		fmt.Fprintf(&b, "    %-8s %8s\n\n", display.DisplayName, label)
	}
	return b.String()
}

// formatStatus renders the status word, progress and last announcement
func formatStatus(snapshot intervals.Snapshot, announcement string) string {
	color, ok := statusColors[snapshot.Status]
	if !ok {
		color = "white"
	}
	text := fmt.Sprintf("[%s]%s[white]  %s / %s",
		color, strings.ToUpper(snapshot.Status.String()),
		intervals.FormatSeconds(snapshot.Elapsed),
		intervals.FormatSeconds(snapshot.Total))
	if announcement != "" {
		text += fmt.Sprintf("\n[gray]Last call:[white] [yellow]%s[white]", tview.Escape(announcement))
	}
	return text
}

// Draw refreshes/redraws the UI
func (ui *CursesUIViewImpl) Draw() error {
	ui.app.Draw()
	return nil
}

// Run starts the UI and blocks until it exits
func (ui *CursesUIViewImpl) Run() error {
	// SetRoot must be called before setting focus, otherwise focus may be reset
	ui.app.SetRoot(ui.mainFlex, true)
	ui.setFocusForCurrentMode()
	return ui.app.Run()
}

// Stop stops the UI framework
func (ui *CursesUIViewImpl) Stop() {
	ui.app.Stop()
}
